package render

import (
	"fmt"
	"strings"

	"github.com/imyousuf/javanav/internal/graph"
)

// ClassInfo is the exported view of one class.
type ClassInfo struct {
	Name         string           `json:"class_name"`
	Kind         graph.ClassKind  `json:"kind"`
	FilePath     string           `json:"file_path"`
	StartLine    int              `json:"start_line"`
	EndLine      int              `json:"end_line"`
	IsPublic     bool             `json:"is_public"`
	IsEndpoint   bool             `json:"is_rest_endpoint"`
	EndpointPath string           `json:"endpoint_path"`
	HTTPMethod   graph.HTTPMethod `json:"http_method"`
	Methods      int              `json:"method_count"`
	Dependencies []string         `json:"dependencies"`
}

// Classes describes every class of a resolved table in name order. A
// class depends on the types it declares plus every other class its
// methods call into.
func Classes(t *graph.SymbolTable) []ClassInfo {
	names := t.ClassNames()
	out := make([]ClassInfo, 0, len(names))
	for _, name := range names {
		c, _ := t.Class(name)
		out = append(out, ClassInfo{
			Name:         c.Name,
			Kind:         c.Kind,
			FilePath:     c.FilePath,
			StartLine:    c.StartLine,
			EndLine:      c.EndLine,
			IsPublic:     c.IsPublic,
			IsEndpoint:   c.IsEndpoint,
			EndpointPath: c.EndpointPath,
			HTTPMethod:   c.HTTPMethod,
			Methods:      len(c.Methods),
			Dependencies: dependencies(t, c),
		})
	}
	return out
}

// RestControllers returns the classes that carry a class-level endpoint.
func RestControllers(t *graph.SymbolTable) []ClassInfo {
	var out []ClassInfo
	for _, c := range Classes(t) {
		if c.IsEndpoint {
			out = append(out, c)
		}
	}
	return out
}

func dependencies(t *graph.SymbolTable, c *graph.ClassRecord) []string {
	deps := []string{}
	seen := map[string]bool{c.Name: true}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	for _, d := range c.Dependencies {
		add(d)
	}
	for _, m := range c.Methods {
		for _, key := range m.Calls {
			if callee, ok := t.Method(key); ok {
				add(callee.ClassName)
			}
		}
	}
	return deps
}

// ClassSummary renders the class overview report.
func ClassSummary(classes []ClassInfo, st Styles) string {
	var rest, public int
	for _, c := range classes {
		if c.IsEndpoint {
			rest++
		}
		if c.IsPublic {
			public++
		}
	}

	var b strings.Builder
	b.WriteString(st.Header.Render("=== Class Summary ===") + "\n\n")
	fmt.Fprintf(&b, "Total classes: %d\n", len(classes))
	fmt.Fprintf(&b, "REST controllers: %d\n", rest)
	fmt.Fprintf(&b, "Public classes: %d\n\n", public)

	for i, c := range classes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, st.Name.Render(c.Name))
		fmt.Fprintf(&b, "   File: %s\n", c.FilePath)
		fmt.Fprintf(&b, "   Lines: %d-%d\n", c.StartLine, c.EndLine)
		fmt.Fprintf(&b, "   Public: %s\n", yesNo(c.IsPublic))
		if c.IsEndpoint {
			fmt.Fprintf(&b, "   REST Endpoint: %s\n", st.Label.Render(fmt.Sprintf("%s %s", c.HTTPMethod, c.EndpointPath)))
		}
		fmt.Fprintf(&b, "   Methods: %d\n", c.Methods)
		if len(c.Dependencies) > 0 {
			fmt.Fprintf(&b, "   Dependencies: %s\n", strings.Join(c.Dependencies, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
