// Package source loads the actual collection a check asserts on.
//
// A source is an inline list, a data file (JSON, YAML or plain text) or a
// SQL query. JSON files are addressed with gjson paths, YAML files with
// dotted key paths. Numbers are normalized so that integral values compare
// equal to the integer literals written in check files.
package source
