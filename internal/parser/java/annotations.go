package java

import (
	"strings"

	"github.com/imyousuf/javanav/internal/graph"
)

// Annotation is one annotation on a type or method. Value is the path-like
// argument (the positional string, value= or path=, or the first array
// element); Elements keeps every named element as cleaned text.
type Annotation struct {
	Name     string
	Value    string
	Elements map[string]string
}

// Endpoint is the REST exposure derived from a set of annotations.
type Endpoint struct {
	IsEndpoint bool
	Path       string
	Method     graph.HTTPMethod
}

// mappingAnnotations is checked in this order; the first present wins.
var mappingAnnotations = []struct {
	name   string
	method graph.HTTPMethod
}{
	{"GetMapping", graph.MethodGet},
	{"PostMapping", graph.MethodPost},
	{"PutMapping", graph.MethodPut},
	{"DeleteMapping", graph.MethodDelete},
	{"PatchMapping", graph.MethodPatch},
	{"RequestMapping", graph.MethodRequest},
}

// jaxrsVerbs are the bare JAX-RS verb annotations.
var jaxrsVerbs = []struct {
	name   string
	method graph.HTTPMethod
}{
	{"GET", graph.MethodGet},
	{"POST", graph.MethodPost},
	{"PUT", graph.MethodPut},
	{"DELETE", graph.MethodDelete},
	{"PATCH", graph.MethodPatch},
}

// Interpret derives a method's endpoint from its annotations. A non-empty
// classPath is joined in front of the method's own path fragment.
func Interpret(anns []Annotation, classPath string) Endpoint {
	method, fragment := verbAndFragment(anns)
	if method == graph.MethodNone {
		return Endpoint{}
	}
	return Endpoint{
		IsEndpoint: true,
		Path:       joinPath(classPath, fragment),
		Method:     method,
	}
}

// InterpretClass derives a type's endpoint. Besides the mapping rules, a
// bare RestController or Controller marks the type with REQUEST.
func InterpretClass(anns []Annotation) Endpoint {
	method, fragment := verbAndFragment(anns)
	if method == graph.MethodNone {
		if _, ok := find(anns, "RestController"); ok {
			method = graph.MethodRequest
		} else if _, ok := find(anns, "Controller"); ok {
			method = graph.MethodRequest
		}
	}
	if method == graph.MethodNone {
		return Endpoint{}
	}
	return Endpoint{IsEndpoint: true, Path: fragment, Method: method}
}

func verbAndFragment(anns []Annotation) (graph.HTTPMethod, string) {
	method := graph.MethodNone
	fragment := ""

	for _, m := range mappingAnnotations {
		a, ok := find(anns, m.name)
		if !ok {
			continue
		}
		method = m.method
		fragment = a.Value
		if method == graph.MethodRequest {
			if narrowed := requestMethod(a.Elements["method"]); narrowed != graph.MethodNone {
				method = narrowed
			}
		}
		break
	}

	if method == graph.MethodNone {
		for _, v := range jaxrsVerbs {
			if _, ok := find(anns, v.name); ok {
				method = v.method
				break
			}
		}
	}

	if a, ok := find(anns, "Path"); ok {
		if fragment == "" {
			fragment = a.Value
		}
		if method == graph.MethodNone {
			method = graph.MethodRequest
		}
	}
	return method, fragment
}

// requestMethod maps "RequestMethod.POST" (or "POST") to its verb.
func requestMethod(raw string) graph.HTTPMethod {
	if raw == "" {
		return graph.MethodNone
	}
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndex(raw, "."); i >= 0 {
		raw = raw[i+1:]
	}
	for _, v := range jaxrsVerbs {
		if strings.EqualFold(raw, v.name) {
			return v.method
		}
	}
	return graph.MethodNone
}

func joinPath(classPath, fragment string) string {
	if classPath == "" {
		return fragment
	}
	if fragment == "" {
		return classPath
	}
	return strings.TrimRight(classPath, "/") + "/" + strings.TrimLeft(fragment, "/")
}

func find(anns []Annotation, name string) (Annotation, bool) {
	for _, a := range anns {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// annotationMap flattens annotations to name → value for MethodRecord.
func annotationMap(anns []Annotation) map[string]string {
	if len(anns) == 0 {
		return nil
	}
	m := make(map[string]string, len(anns))
	for _, a := range anns {
		m[a.Name] = a.Value
	}
	return m
}
