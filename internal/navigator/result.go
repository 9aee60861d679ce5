package navigator

import (
	"github.com/imyousuf/javanav/internal/graph"
)

// Result is the structured outcome of an analysis. On success it lists the
// chain's functions; when the start point matches nothing it carries Error
// and every known function instead.
type Result struct {
	StartPoint         string           `json:"start_point"`
	TargetFunction     string           `json:"target_function,omitempty"`
	MatchKind          graph.MatchKind  `json:"match_kind,omitempty"`
	TotalFunctions     int              `json:"total_functions"`
	MaxDepth           int              `json:"max_depth"`
	Functions          []Function       `json:"functions,omitempty"`
	Alternates         []string         `json:"alternates,omitempty"`
	Error              string           `json:"error,omitempty"`
	AvailableFunctions []AvailableEntry `json:"available_functions,omitempty"`

	// Chain is the walked tree; it is not serialized.
	Chain *graph.ChainNode `json:"-"`
}

// Found reports whether the start point resolved to a function.
func (r *Result) Found() bool {
	return r.Error == "" && r.TargetFunction != ""
}

// Function is one method of a call chain.
type Function struct {
	Name         string           `json:"name"`
	ClassName    string           `json:"class_name"`
	FilePath     string           `json:"file_path"`
	StartLine    int              `json:"start_line"`
	EndLine      int              `json:"end_line"`
	IsPublic     bool             `json:"is_public"`
	IsEndpoint   bool             `json:"is_rest_endpoint"`
	EndpointPath string           `json:"endpoint_path"`
	HTTPMethod   graph.HTTPMethod `json:"http_method"`
	Calls        []string         `json:"called_functions"`
}

func newFunction(m *graph.MethodRecord) Function {
	return Function{
		Name:         m.Name,
		ClassName:    m.ClassName,
		FilePath:     m.FilePath,
		StartLine:    m.StartLine,
		EndLine:      m.EndLine,
		IsPublic:     m.IsPublic,
		IsEndpoint:   m.IsEndpoint,
		EndpointPath: m.EndpointPath,
		HTTPMethod:   m.HTTPMethod,
		Calls:        append([]string{}, m.Calls...),
	}
}

// Kinds of AvailableEntry.
const (
	KindREST     = "REST"
	KindFunction = "FUNCTION"
)

// AvailableEntry describes one known function for callers whose start
// point matched nothing.
type AvailableEntry struct {
	Name   string           `json:"name"`
	Type   string           `json:"type"`
	Method graph.HTTPMethod `json:"method,omitempty"`
	Path   string           `json:"path,omitempty"`
}

// Available lists every method of t, sorted by key.
func Available(t *graph.SymbolTable) []AvailableEntry {
	keys := t.SortedKeys()
	out := make([]AvailableEntry, 0, len(keys))
	for _, key := range keys {
		m, _ := t.Method(key)
		e := AvailableEntry{Name: key, Type: KindFunction}
		if m.IsEndpoint {
			e.Type = KindREST
			e.Method = m.HTTPMethod
			e.Path = m.EndpointPath
		}
		out = append(out, e)
	}
	return out
}
