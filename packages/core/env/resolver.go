package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitassert/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is called for variables that cannot be resolved.
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{name}} references with variable values. It is safe
// for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// lookup resolves a variable name, a $NAME environment variable or a
// $func(args) builtin call.
func (r *Resolver) lookup(expr string) (any, bool) {
	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if val, called := r.funcs.Call(name); called {
			return val, true
		}
		if val, set := os.LookupEnv(name); set {
			return val, true
		}
		return nil, false
	}
	return r.GetVariable(expr)
}

// Resolve replaces every {{name}} in input. Unresolved references are left
// as they are.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := r.lookup(expr); ok {
			return fmt.Sprintf("%v", val)
		}
		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// ResolveValue resolves strings nested anywhere in v. A string that is
// exactly one reference is replaced by the raw variable value, so
// "{{limit}}" can stand for a number or a list.
func (r *Resolver) ResolveValue(v any) any {
	switch val := v.(type) {
	case string:
		if m := variablePattern.FindStringSubmatch(val); m != nil && m[0] == val {
			if raw, ok := r.lookup(strings.TrimSpace(m[1])); ok {
				return raw
			}
		}
		return r.Resolve(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.ResolveValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.ResolveValue(item)
		}
		return out
	}
	return v
}

// ResolveValues applies ResolveValue to each element.
func (r *Resolver) ResolveValues(values []any) []any {
	if values == nil {
		return nil
	}
	return r.ResolveValue(values).([]any)
}

func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

// GetUnresolvedVariables lists unresolved references in order of appearance.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var unresolved []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if _, ok := r.lookup(expr); !ok {
			unresolved = append(unresolved, expr)
		}
	}
	return unresolved
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	clone.funcs = r.funcs
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	clone.warnFunc = r.warnFunc
	return clone
}
