package java

import (
	"testing"

	"github.com/imyousuf/javanav/internal/graph"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name      string
		anns      []Annotation
		classPath string
		want      Endpoint
	}{
		{
			name: "no annotations",
			want: Endpoint{},
		},
		{
			name: "plain annotation",
			anns: []Annotation{{Name: "Override"}},
			want: Endpoint{},
		},
		{
			name:      "get mapping joined with class path",
			anns:      []Annotation{{Name: "GetMapping", Value: "/{id}"}},
			classPath: "/api/users/",
			want:      Endpoint{IsEndpoint: true, Path: "/api/users/{id}", Method: graph.MethodGet},
		},
		{
			name:      "fragment without leading slash",
			anns:      []Annotation{{Name: "PutMapping", Value: "items"}},
			classPath: "/api",
			want:      Endpoint{IsEndpoint: true, Path: "/api/items", Method: graph.MethodPut},
		},
		{
			name:      "no method fragment uses class path",
			anns:      []Annotation{{Name: "PostMapping"}},
			classPath: "/api/users",
			want:      Endpoint{IsEndpoint: true, Path: "/api/users", Method: graph.MethodPost},
		},
		{
			name: "fixed precedence ignores declaration order",
			anns: []Annotation{
				{Name: "RequestMapping", Value: "/generic"},
				{Name: "DeleteMapping", Value: "/specific"},
			},
			want: Endpoint{IsEndpoint: true, Path: "/specific", Method: graph.MethodDelete},
		},
		{
			name: "request mapping narrowed by method element",
			anns: []Annotation{{
				Name:     "RequestMapping",
				Value:    "/x",
				Elements: map[string]string{"value": "/x", "method": "RequestMethod.PATCH"},
			}},
			want: Endpoint{IsEndpoint: true, Path: "/x", Method: graph.MethodPatch},
		},
		{
			name: "request mapping without method",
			anns: []Annotation{{Name: "RequestMapping", Value: "/x"}},
			want: Endpoint{IsEndpoint: true, Path: "/x", Method: graph.MethodRequest},
		},
		{
			name:      "jax-rs verb and path",
			anns:      []Annotation{{Name: "GET"}, {Name: "Path", Value: "/{id}"}},
			classPath: "/orders",
			want:      Endpoint{IsEndpoint: true, Path: "/orders/{id}", Method: graph.MethodGet},
		},
		{
			name: "jax-rs path alone",
			anns: []Annotation{{Name: "Path", Value: "/health"}},
			want: Endpoint{IsEndpoint: true, Path: "/health", Method: graph.MethodRequest},
		},
		{
			name: "mapping fragment wins over path",
			anns: []Annotation{{Name: "GetMapping", Value: "/a"}, {Name: "Path", Value: "/b"}},
			want: Endpoint{IsEndpoint: true, Path: "/a", Method: graph.MethodGet},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpret(tt.anns, tt.classPath); got != tt.want {
				t.Errorf("Interpret() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInterpretClass(t *testing.T) {
	tests := []struct {
		name string
		anns []Annotation
		want Endpoint
	}{
		{"rest controller", []Annotation{{Name: "RestController"}}, Endpoint{IsEndpoint: true, Method: graph.MethodRequest}},
		{"controller", []Annotation{{Name: "Controller"}}, Endpoint{IsEndpoint: true, Method: graph.MethodRequest}},
		{"controller with mapping", []Annotation{{Name: "RestController"}, {Name: "RequestMapping", Value: "/api"}},
			Endpoint{IsEndpoint: true, Path: "/api", Method: graph.MethodRequest}},
		{"service", []Annotation{{Name: "Service"}}, Endpoint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InterpretClass(tt.anns); got != tt.want {
				t.Errorf("InterpretClass() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsNoiseCall(t *testing.T) {
	for name, want := range map[string]bool{
		"equals":     true,
		"toString":   true,
		"getName":    true,
		"setId":      true,
		"isActive":   true,
		"get":        true,
		"is":         true,
		"getaway":    false,
		"issue":      false,
		"settle":     false,
		"findById":   false,
		"validateId": false,
		"if":         true,
		"":           true,
	} {
		if got := isNoiseCall(name); got != want {
			t.Errorf("isNoiseCall(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBlockEnd(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   int
		wantOK bool
	}{
		{"simple", "{ a; }", 5, true},
		{"nested", "x { { } }", 8, true},
		{"string brace", `{ s = "}"; }`, 11, true},
		{"char brace", `{ c = '}'; }`, 11, true},
		{"escaped quote", `{ s = "\"}"; }`, 13, true},
		{"line comment", "{ // }\n}", 7, true},
		{"block comment", "{ /* } */ }", 10, true},
		{"text block", "{ s = \"\"\"\n}\n\"\"\"; }", 17, true},
		{"unbalanced", "{ {", 0, false},
		{"no brace", "abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := blockEnd([]byte(tt.src), 0)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("blockEnd(%q) = %d, %v; want %d, %v", tt.src, got, ok, tt.want, tt.wantOK)
			}
			if ok && tt.src[got] != '}' {
				t.Errorf("offset %d is %q, not a closing brace", got, tt.src[got])
			}
		})
	}
}

func TestLineIndex(t *testing.T) {
	src := []byte("a\nbb\n\nccc\n")
	idx := newLineIndex(src)
	if idx.count() != 4 {
		t.Errorf("count = %d, want 4", idx.count())
	}
	for offset, want := range map[int]int{0: 1, 1: 1, 2: 2, 4: 2, 5: 3, 6: 4, 8: 4} {
		if got := idx.line(offset); got != want {
			t.Errorf("line(%d) = %d, want %d", offset, got, want)
		}
	}
}
