package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/abdul-hamid-achik/hitassert/packages/db"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Querier runs SQL for database sources. *db.Client implements it.
type Querier interface {
	QueryColumn(ctx context.Context, query, column string) ([]any, error)
	Close() error
}

// Opener connects to a database from a connection string.
type Opener func(conn string) (Querier, error)

func openClient(conn string) (Querier, error) {
	return db.NewClient(conn)
}

// Loader resolves sources relative to a base directory. Database
// connections are opened once per connection string and shared until Close.
type Loader struct {
	baseDir string
	open    Opener

	mu      sync.Mutex
	clients map[string]Querier
}

func NewLoader(baseDir string) *Loader {
	return &Loader{
		baseDir: baseDir,
		open:    openClient,
		clients: make(map[string]Querier),
	}
}

// WithOpener replaces how database connections are made.
func (l *Loader) WithOpener(open Opener) *Loader {
	l.open = open
	return l
}

// Load returns the elements described by src.
func (l *Loader) Load(ctx context.Context, src *parser.Source) ([]any, error) {
	if src == nil {
		return nil, errors.New("no source")
	}

	var values []any
	var err error
	switch src.Kind {
	case parser.SourceInline:
		values = src.Inline
	case parser.SourceFile:
		values, err = l.loadFile(src.File, src.Path)
	case parser.SourceSQL:
		values, err = l.loadSQL(ctx, src.DB, src.Query, src.Column)
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", src.Kind)
	}
	if err != nil {
		return nil, err
	}

	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Normalize(v)
	}
	return out, nil
}

// Close releases every database connection opened by the loader.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for conn, c := range l.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(l.clients, conn)
	}
	return errors.Join(errs...)
}

// Resolve loads a single source with a throwaway Loader.
func Resolve(ctx context.Context, src *parser.Source, baseDir string) ([]any, error) {
	l := NewLoader(baseDir)
	defer l.Close()
	return l.Load(ctx, src)
}

func (l *Loader) client(conn string) (Querier, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clients[conn]; ok {
		return c, nil
	}
	c, err := l.open(conn)
	if err != nil {
		return nil, err
	}
	l.clients[conn] = c
	return c, nil
}

func (l *Loader) loadSQL(ctx context.Context, conn, query, column string) ([]any, error) {
	c, err := l.client(conn)
	if err != nil {
		return nil, fmt.Errorf("database source: %w", err)
	}
	values, err := c.QueryColumn(ctx, query, column)
	if err != nil {
		return nil, fmt.Errorf("database source: %w", err)
	}
	return values, nil
}

func (l *Loader) loadFile(name, path string) ([]any, error) {
	full := name
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.baseDir, full)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(full)) {
	case ".json":
		return fromJSON(data, path)
	case ".yaml", ".yml":
		return fromYAML(data, path)
	default:
		if path != "" {
			return nil, fmt.Errorf("path %q is not supported for text file %s", path, name)
		}
		return fromLines(data)
	}
}

func fromJSON(data []byte, path string) ([]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("source file is not valid JSON")
	}

	result := gjson.ParseBytes(data)
	if path != "" {
		result = result.Get(path)
		if !result.Exists() {
			return nil, fmt.Errorf("path %q not found", path)
		}
	}
	return asList(result.Value(), path)
}

func fromYAML(data []byte, path string) ([]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source file is not valid YAML: %w", err)
	}

	if path != "" {
		for _, key := range strings.Split(path, ".") {
			switch node := doc.(type) {
			case map[string]any:
				v, ok := node[key]
				if !ok {
					return nil, fmt.Errorf("path %q not found", path)
				}
				doc = v
			case []any:
				i, err := strconv.Atoi(key)
				if err != nil || i < 0 || i >= len(node) {
					return nil, fmt.Errorf("path %q not found", path)
				}
				doc = node[i]
			default:
				return nil, fmt.Errorf("path %q not found", path)
			}
		}
	}
	return asList(doc, path)
}

func fromLines(data []byte) ([]any, error) {
	values := make([]any, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			values = append(values, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return values, nil
}

// asList accepts arrays as they are, wraps scalars, and rejects objects.
func asList(v any, path string) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case nil:
		return []any{}, nil
	case map[string]any:
		if path == "" {
			return nil, errors.New("source document is an object, expected an array")
		}
		return nil, fmt.Errorf("path %q is an object, expected an array", path)
	default:
		return []any{val}, nil
	}
}

// Normalize converts integral floats and sized integers to int, recursing
// into lists and objects.
func Normalize(v any) any {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return int(val)
		}
		return val
	case int64:
		return int(val)
	case int32:
		return int(val)
	case uint64:
		if val <= math.MaxInt64 {
			return int(val)
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	}
	return v
}
