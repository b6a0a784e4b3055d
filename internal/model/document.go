package model

import (
	"fmt"
	"strings"
)

// RawDocument is one input transcript: an identifier and its raw lines
type RawDocument struct {
	ID    string   `json:"id"`    // Source identifier (file name)
	Path  string   `json:"path"`  // Source path, empty for stdin
	Lines []string `json:"lines"` // Raw lines, split on "\n"
}

// Document is a normalized transcript: one rendered line per kept raw line
// followed by the episode terminator
type Document struct {
	ID          string       `json:"id"`
	Lines       []string     `json:"lines"`
	Stats       LineStats    `json:"stats"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// LineStats counts what happened to the raw lines of one document
type LineStats struct {
	Raw        int `json:"raw"`        // Raw lines seen
	Empty      int `json:"empty"`      // Skipped because empty
	Character  int `json:"character"`  // Rendered as character utterances
	Exposition int `json:"exposition"` // Rendered as exposition
	Dropped    int `json:"dropped"`    // Dropped multi-speaker lines
	Tokens     int `json:"tokens"`     // Output tokens, markers included
	Markers    int `json:"markers"`    // Output marker tokens
}

// Text serializes the document the way it is written to disk: lines joined
// by newlines, no trailing newline.
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// DiagnosticKind classifies a recoverable line-level problem
type DiagnosticKind string

const (
	DiagMissingName     DiagnosticKind = "missing_name"     // Character line with an empty speaker
	DiagMissingText     DiagnosticKind = "missing_text"     // Character line with nothing after the colon
	DiagUnclosedBracket DiagnosticKind = "unclosed_bracket" // Exposition "[" without "]"
	DiagUnopenedBracket DiagnosticKind = "unopened_bracket" // Exposition "]" without "["
	DiagMissingBrackets DiagnosticKind = "missing_brackets" // Exposition with no brackets, raw line used
)

// Diagnostic records a recoverable problem found while parsing a line.
// Diagnostics never stop processing unless strict mode is enabled.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	LineNo  int            `json:"line_no,omitempty"` // 1-based, set by the document normalizer
	Line    string         `json:"line"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.LineNo > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.LineNo, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
