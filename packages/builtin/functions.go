package builtin

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

type Func func(args []string) any

type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = func(_ []string) any { return r.now().UTC().Format(time.RFC3339) }
	r.funcs["timestamp"] = func(_ []string) any { return r.now().Unix() }
	r.funcs["date"] = func(args []string) any {
		layout := "2006-01-02"
		if len(args) >= 1 && args[0] != "" {
			layout = args[0]
		}
		return r.now().UTC().Format(layout)
	}
	r.funcs["env"] = funcEnv
	r.funcs["lower"] = stringFunc(strings.ToLower)
	r.funcs["upper"] = stringFunc(strings.ToUpper)
	r.funcs["trim"] = stringFunc(strings.TrimSpace)
	r.funcs["base64"] = stringFunc(func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	})
	r.funcs["base64Decode"] = stringFunc(func(s string) string {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return ""
		}
		return string(decoded)
	})
	r.funcs["md5"] = stringFunc(func(s string) string {
		hash := md5.Sum([]byte(s))
		return hex.EncodeToString(hash[:])
	})
	r.funcs["sha256"] = stringFunc(func(s string) string {
		hash := sha256.Sum256([]byte(s))
		return hex.EncodeToString(hash[:])
	})
	r.funcs["urlEncode"] = stringFunc(url.QueryEscape)
	r.funcs["urlDecode"] = stringFunc(func(s string) string {
		decoded, err := url.QueryUnescape(s)
		if err != nil {
			return s
		}
		return decoded
	})
}

// stringFunc adapts a one argument string function. A missing argument
// yields "".
func stringFunc(fn func(string) string) Func {
	return func(args []string) any {
		if len(args) < 1 {
			return ""
		}
		return fn(args[0])
	}
}

func funcEnv(args []string) any {
	if len(args) < 1 {
		return ""
	}
	if val, ok := os.LookupEnv(args[0]); ok {
		return val
	}
	if len(args) >= 2 {
		return args[1]
	}
	return ""
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// SetClock replaces the time source of now, date and timestamp.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates an expression such as `sha256("abc")`. It reports false
// when expr is not a call of a registered function.
func (r *Registry) Call(expr string) (any, bool) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return nil, false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}

	return fn(args), true
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inQuote && (ch == '"' || ch == '\'') {
			inQuote = true
			quoteChar = ch
		} else if inQuote && ch == quoteChar {
			inQuote = false
			quoteChar = 0
		} else if !inQuote && ch == ',' {
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		} else {
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}

	return args
}
