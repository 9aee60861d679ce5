package parser

import "github.com/imyousuf/javanav/internal/graph"

// Language represents a supported source language.
type Language string

const (
	LangJava Language = "java"
)

// FileExtensions maps each language to its recognized file extensions.
var FileExtensions = map[Language][]string{
	LangJava: {".java"},
}

// ParseResult is the isolated output of parsing one file. Classes[0] is the
// file's primary (first top-level) type; nested types follow it.
type ParseResult struct {
	FilePath string               `json:"file_path"`
	Language Language             `json:"language"`
	Package  string               `json:"package,omitempty"`
	Imports  []string             `json:"imports,omitempty"`
	Classes  []*graph.ClassRecord `json:"classes,omitempty"`
	// Recovered is set when the type was found by the textual fallback
	// rather than the syntax tree.
	Recovered bool `json:"recovered,omitempty"`
}

// Primary returns the file's top-level type, or nil when the file declared none.
func (r *ParseResult) Primary() *graph.ClassRecord {
	if r == nil || len(r.Classes) == 0 {
		return nil
	}
	return r.Classes[0]
}

// MethodCount returns the number of methods across all classes of the file.
func (r *ParseResult) MethodCount() int {
	n := 0
	for _, c := range r.Classes {
		n += len(c.Methods)
	}
	return n
}

// Configured is implemented by parsers whose output depends on options.
// Settings identifies the options in effect; cached results are only
// reused under identical settings.
type Configured interface {
	Settings() string
}

// Parser defines the interface for language-specific source parsers.
type Parser interface {
	// Language returns which language this parser handles.
	Language() Language

	// Extensions returns the file extensions this parser can handle.
	Extensions() []string

	// ParseFile parses the given file content. It never shares state
	// between calls, so files may be parsed concurrently.
	ParseFile(filePath string, content []byte) (*ParseResult, error)
}
