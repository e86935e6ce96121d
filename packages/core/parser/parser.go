package parser

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var fileSchema = mustSchema(schemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("parser: invalid embedded schema: %v", err))
	}
	return schema
}

// Extensions lists the file suffixes recognised as check files.
var Extensions = []string{".check.yaml", ".check.yml", ".hitassert"}

// IsCheckFile reports whether path has a check file extension.
func IsCheckFile(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

type rawFile struct {
	Variables map[string]any `yaml:"variables"`
	Checks    []yaml.Node    `yaml:"checks"`
}

type rawCheck struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Tags        []string  `yaml:"tags"`
	Skip        string    `yaml:"skip"`
	Only        bool      `yaml:"only"`
	Container   string    `yaml:"container"`
	Elements    string    `yaml:"elements"`
	Sortable    *bool     `yaml:"sortable"`
	Source      rawSource `yaml:"source"`
	Expect      rawExpect `yaml:"expect"`
}

type rawSource struct {
	Inline []any  `yaml:"inline"`
	File   string `yaml:"file"`
	Path   string `yaml:"path"`
	DB     string `yaml:"db"`
	Query  string `yaml:"query"`
	Column string `yaml:"column"`
}

type rawExpect struct {
	Op       string           `yaml:"op"`
	Values   []any            `yaml:"values"`
	Matchers []map[string]any `yaml:"matchers"`
	Matcher  map[string]any   `yaml:"matcher"`
	Size     *int             `yaml:"size"`
	InOrder  bool             `yaml:"in_order"`
}

func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

func Parse(input, filename string) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(input), &root); err != nil {
		return nil, &ParseError{File: filename, Line: yamlErrorLine(err), Message: err.Error()}
	}
	if len(root.Content) == 0 {
		return nil, &ParseError{File: filename, Line: 1, Column: 1, Message: "empty check file"}
	}

	if err := validate(&root, filename); err != nil {
		return nil, err
	}

	var raw rawFile
	if err := root.Decode(&raw); err != nil {
		return nil, &ParseError{File: filename, Line: yamlErrorLine(err), Message: err.Error()}
	}

	file := &File{Path: filename, Variables: raw.Variables}
	if file.Variables == nil {
		file.Variables = make(map[string]any)
	}

	seen := make(map[string]int)
	for i := range raw.Checks {
		node := &raw.Checks[i]
		check, err := parseCheck(node, filename)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[check.Name]; ok {
			return nil, &ParseError{
				File:    filename,
				Line:    node.Line,
				Column:  node.Column,
				Message: fmt.Sprintf("duplicate check name %q (first defined on line %d)", check.Name, prev),
			}
		}
		seen[check.Name] = node.Line
		file.Checks = append(file.Checks, check)
	}

	return file, nil
}

// validate checks the document against the embedded schema and reports
// every violation in one error.
func validate(root *yaml.Node, filename string) error {
	var doc any
	if err := root.Decode(&doc); err != nil {
		return &ParseError{File: filename, Line: yamlErrorLine(err), Message: err.Error()}
	}

	result, err := fileSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ParseError{File: filename, Line: 1, Column: 1, Message: fmt.Sprintf("invalid document: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(problems)
	return &ParseError{File: filename, Line: 1, Column: 1, Message: "schema validation failed: " + strings.Join(problems, "; ")}
}

func parseCheck(node *yaml.Node, filename string) (*Check, error) {
	var raw rawCheck
	if err := node.Decode(&raw); err != nil {
		return nil, &ParseError{File: filename, Line: node.Line, Column: node.Column, Message: err.Error()}
	}

	check := &Check{
		Name:        raw.Name,
		Description: raw.Description,
		Tags:        raw.Tags,
		Skip:        raw.Skip,
		Only:        raw.Only,
		Container:   raw.Container,
		Elements:    raw.Elements,
		Sortable:    raw.Sortable,
		Line:        node.Line,
	}

	srcNode := mappingValue(node, "source")
	check.Source = &Source{
		Inline: raw.Source.Inline,
		File:   raw.Source.File,
		Path:   raw.Source.Path,
		DB:     raw.Source.DB,
		Query:  raw.Source.Query,
		Column: raw.Source.Column,
		Line:   lineOf(srcNode, node),
	}
	switch {
	case raw.Source.File != "":
		check.Source.Kind = SourceFile
	case raw.Source.DB != "":
		check.Source.Kind = SourceSQL
	default:
		check.Source.Kind = SourceInline
	}

	expNode := mappingValue(node, "expect")
	expect, err := parseExpect(raw.Expect, lineOf(expNode, node))
	if err != nil {
		return nil, &ParseError{
			File:    filename,
			Line:    lineOf(expNode, node),
			Message: fmt.Sprintf("check %q: %v", raw.Name, err),
		}
	}
	check.Expect = expect

	return check, nil
}

func parseExpect(raw rawExpect, line int) (*Expectation, error) {
	op, err := ParseOperator(raw.Op)
	if err != nil {
		return nil, err
	}

	exp := &Expectation{Operator: op, Values: raw.Values, InOrder: raw.InOrder, Line: line}

	for _, m := range raw.Matchers {
		spec, err := parseMatcherSpec(m)
		if err != nil {
			return nil, err
		}
		exp.Matchers = append(exp.Matchers, spec)
	}
	if raw.Matcher != nil {
		if exp.Matcher, err = parseMatcherSpec(raw.Matcher); err != nil {
			return nil, err
		}
	}
	if raw.Size != nil {
		exp.Size = *raw.Size
	}

	if raw.InOrder && !op.Ordered() {
		return nil, fmt.Errorf("in_order is not supported by %s", op)
	}

	switch op {
	case OpContainsExactly, OpContainsAtLeast:
		if raw.Values != nil && raw.Matchers != nil {
			return nil, fmt.Errorf("%s takes values or matchers, not both", op)
		}
	case OpContainsNoneOf, OpContains, OpNotContains:
		if len(raw.Values) == 0 {
			return nil, fmt.Errorf("%s requires values", op)
		}
	case OpContainsPredicate, OpNotContainsPredicate:
		if exp.Matcher == nil {
			return nil, fmt.Errorf("%s requires a matcher", op)
		}
	case OpHasSize:
		if raw.Size == nil {
			return nil, fmt.Errorf("%s requires size", op)
		}
	}

	return exp, nil
}

func parseMatcherSpec(m map[string]any) (*MatcherSpec, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("matcher must have exactly one key, got %d", len(m))
	}
	for kind, arg := range m {
		if kind == "not" {
			inner, ok := arg.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("not: expected a matcher, got %T", arg)
			}
			spec, err := parseMatcherSpec(inner)
			if err != nil {
				return nil, fmt.Errorf("not: %w", err)
			}
			return &MatcherSpec{Kind: kind, Not: spec}, nil
		}
		if _, ok := matcherKinds[kind]; !ok {
			return nil, fmt.Errorf("unknown matcher: %s", kind)
		}
		return &MatcherSpec{Kind: kind, Arg: arg}, nil
	}
	return nil, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func lineOf(node, fallback *yaml.Node) int {
	if node != nil {
		return node.Line
	}
	return fallback.Line
}

func yamlErrorLine(err error) int {
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		return line
	}
	return 0
}
