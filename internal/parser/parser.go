// Package parser reads the RIPS interchange formats (delimited text,
// JSON, XML and zip bundles) into neutral record structures. Parsers
// never judge business content; structural problems come back as Issues
// that the validation engine turns into findings.
package parser

import "fmt"

// Issue is a structural problem found while reading a file.
type Issue struct {
	Line    int
	Field   string
	Message string
}

// Record is one logical register extracted from a structured file,
// with its field values keyed by the names the source used.
type Record struct {
	Line   int
	Fields map[string]string
}

// MaxStructuredRecords caps how many records are taken from a JSON or
// XML document. Records beyond the cap are ignored without an issue.
const MaxStructuredRecords = 100

func issuef(line int, field, format string, args ...interface{}) Issue {
	return Issue{Line: line, Field: field, Message: fmt.Sprintf(format, args...)}
}
