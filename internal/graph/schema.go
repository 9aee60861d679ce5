package graph

import (
	"fmt"
	"strings"
)

// HTTPMethod is the verb under which an endpoint is exposed.
type HTTPMethod string

const (
	MethodNone    HTTPMethod = ""
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodDelete  HTTPMethod = "DELETE"
	MethodPatch   HTTPMethod = "PATCH"
	MethodRequest HTTPMethod = "REQUEST"
)

// ClassKind distinguishes the Java type declaration a ClassRecord came from.
type ClassKind string

const (
	KindClass     ClassKind = "class"
	KindInterface ClassKind = "interface"
	KindEnum      ClassKind = "enum"
	KindRecord    ClassKind = "record"
)

// MethodRecord describes one parsed method. Calls holds raw call tokens
// straight out of the parser and resolved symbol keys after resolution.
type MethodRecord struct {
	Name         string            `json:"name"`
	ClassName    string            `json:"class_name"`
	FilePath     string            `json:"file_path"`
	StartLine    int               `json:"start_line"`
	EndLine      int               `json:"end_line"`
	IsPublic     bool              `json:"is_public"`
	IsEndpoint   bool              `json:"is_rest_endpoint"`
	EndpointPath string            `json:"endpoint_path"`
	HTTPMethod   HTTPMethod        `json:"http_method"`
	Annotations  map[string]string `json:"annotations,omitempty"`
	Calls        []string          `json:"called_functions"`
}

// Key returns the unsuffixed symbol key of the method.
func (m *MethodRecord) Key() string {
	return Key(m.ClassName, m.Name)
}

// Identity is the de-duplication identity used when the same method shows
// up at several places of a call chain.
func (m *MethodRecord) Identity() string {
	return fmt.Sprintf("%s.%s@%s:%d", m.ClassName, m.Name, m.FilePath, m.StartLine)
}

// Clone returns a copy whose slices and maps are not shared with m.
func (m *MethodRecord) Clone() *MethodRecord {
	c := *m
	if m.Calls != nil {
		c.Calls = append([]string(nil), m.Calls...)
	}
	if m.Annotations != nil {
		c.Annotations = make(map[string]string, len(m.Annotations))
		for k, v := range m.Annotations {
			c.Annotations[k] = v
		}
	}
	return &c
}

// ClassRecord describes one Java type declaration.
type ClassRecord struct {
	Name         string          `json:"class_name"`
	Kind         ClassKind       `json:"kind"`
	FilePath     string          `json:"file_path"`
	StartLine    int             `json:"start_line"`
	EndLine      int             `json:"end_line"`
	IsPublic     bool            `json:"is_public"`
	Package      string          `json:"package"`
	Imports      []string        `json:"imports"`
	Methods      []*MethodRecord `json:"functions"`
	IsEndpoint   bool            `json:"is_rest_endpoint"`
	EndpointPath string          `json:"endpoint_path"`
	HTTPMethod   HTTPMethod      `json:"http_method"`
	Extends      string          `json:"extends,omitempty"`
	Implements   []string        `json:"implements,omitempty"`
	Dependencies []string        `json:"dependencies"`
}

// QualifiedName returns package.Name, or Name when the package is unknown.
func (c *ClassRecord) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Key builds the symbol key for a method of a class.
func Key(className, methodName string) string {
	return className + "." + methodName
}

// MethodName returns the member part of a symbol key or raw call token.
func MethodName(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	return key
}

// ChainNode is one node of a call chain produced by Walk.
type ChainNode struct {
	Key      string        `json:"key"`
	Method   *MethodRecord `json:"function"`
	Depth    int           `json:"depth"`
	Children []*ChainNode  `json:"children,omitempty"`
}
