package render

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/imyousuf/javanav/internal/graph"
)

func rec(class, name string, start, end int, calls ...string) *graph.MethodRecord {
	return &graph.MethodRecord{
		Name:      name,
		ClassName: class,
		FilePath:  class + ".java",
		StartLine: start,
		EndLine:   end,
		IsPublic:  true,
		Calls:     calls,
	}
}

func node(m *graph.MethodRecord, depth int, children ...*graph.ChainNode) *graph.ChainNode {
	return &graph.ChainNode{Key: m.Key(), Method: m, Depth: depth, Children: children}
}

// diamond builds A -> B -> D and A -> C -> D.
func diamond() *graph.ChainNode {
	a := rec("A", "start", 1, 5, "B.left", "C.right")
	a.IsEndpoint = true
	a.HTTPMethod = graph.MethodGet
	a.EndpointPath = "/api/a"
	b := rec("B", "left", 2, 4, "D.end")
	c := rec("C", "right", 3, 6, "D.end")
	d := rec("D", "end", 7, 9)
	return node(a, 0,
		node(b, 1, node(d, 2)),
		node(c, 1, node(d, 2)),
	)
}

func TestFlattenDiamond(t *testing.T) {
	got := Flatten(diamond())
	var names []string
	for _, m := range got {
		names = append(names, m.Key())
	}
	want := []string{"A.start", "B.left", "D.end", "C.right"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Flatten = %v, want %v", names, want)
	}
}

func TestFlattenKeepsOverloads(t *testing.T) {
	// Same class and name at different lines are distinct methods.
	a := rec("A", "run", 1, 3)
	b := rec("A", "run", 10, 12)
	root := node(rec("Main", "main", 1, 2), 0, node(a, 1), node(b, 1))
	if got := len(Flatten(root)); got != 3 {
		t.Errorf("Flatten len = %d, want 3", got)
	}
}

func TestFlattenNil(t *testing.T) {
	if got := Flatten(nil); len(got) != 0 {
		t.Errorf("Flatten(nil) = %v", got)
	}
}

func TestMermaidDiamond(t *testing.T) {
	want := strings.Join([]string{
		"graph TD",
		`    node0["GET /api/a\nA.start\n1-5"]`,
		`    node1["B.left\n2-4"]`,
		`    node2["D.end\n7-9"]`,
		`    node3["C.right\n3-6"]`,
		"    node0 --> node1",
		"    node1 --> node2",
		"    node0 --> node3",
		"    node3 --> node2",
	}, "\n")
	if got := Mermaid(diamond()); got != want {
		t.Errorf("Mermaid =\n%s\nwant\n%s", got, want)
	}
}

func TestMermaidCycleRepeatsEdge(t *testing.T) {
	a := rec("A", "ping", 1, 3, "B.pong")
	b := rec("B", "pong", 5, 7, "A.ping")
	root := node(a, 0, node(b, 1, node(a, 2)))

	got := Mermaid(root)
	if strings.Count(got, "[") != 2 {
		t.Errorf("expected 2 node declarations:\n%s", got)
	}
	if !strings.Contains(got, "node0 --> node1") || !strings.Contains(got, "node1 --> node0") {
		t.Errorf("missing cycle edges:\n%s", got)
	}
}

func TestNodeLabel(t *testing.T) {
	m := rec("Ledger", "load", 12, 30)
	if got, want := NodeLabel(m), `Ledger.load\n12-30`; got != want {
		t.Errorf("NodeLabel = %q, want %q", got, want)
	}
	m.IsEndpoint, m.HTTPMethod, m.EndpointPath = true, graph.MethodPost, `/q"x`
	if got, want := NodeLabel(m), `POST /q#quot;x\nLedger.load\n12-30`; got != want {
		t.Errorf("NodeLabel = %q, want %q", got, want)
	}
}

func TestTextReport(t *testing.T) {
	root := diamond()
	functions := Flatten(root)
	out := Text(root, functions, PlainStyles())

	for _, want := range []string{
		"```mermaid\ngraph TD\n",
		"=== Call Chain Summary ===\nTotal functions in chain: 4\nStarting function: A.start\nREST Endpoint: GET /api/a\n",
		"=== Function Information ===\n\n1. A.start\n   REST Endpoint: GET /api/a\n   File: A.java\n   Lines: 1-5\n   Public: Yes\n   Calls: B.left, C.right\n",
		"3. D.end\n   File: D.java\n   Lines: 7-9\n   Public: Yes\n   Calls: None\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func classTable(t *testing.T) *graph.SymbolTable {
	t.Helper()
	b := graph.NewBuilder()
	ctrl := &graph.ClassRecord{
		Name: "UserController", Kind: graph.KindClass, FilePath: "UserController.java",
		StartLine: 1, EndLine: 20, IsPublic: true,
		IsEndpoint: true, HTTPMethod: graph.MethodRequest, EndpointPath: "/api/users",
		Dependencies: []string{"UserService"},
		Methods: []*graph.MethodRecord{
			rec("UserController", "get", 3, 6, "userService.find"),
		},
	}
	svc := &graph.ClassRecord{
		Name: "UserService", Kind: graph.KindClass, FilePath: "UserService.java",
		StartLine: 1, EndLine: 10,
		Methods: []*graph.MethodRecord{
			rec("UserService", "find", 2, 4, "Audit.log"),
		},
	}
	audit := &graph.ClassRecord{
		Name: "Audit", Kind: graph.KindClass, FilePath: "Audit.java",
		StartLine: 1, EndLine: 5, IsPublic: true,
		Methods: []*graph.MethodRecord{rec("Audit", "log", 2, 3)},
	}
	b.Add(ctrl)
	b.Add(svc)
	b.Add(audit)
	return graph.Resolve(b.Build(), zerolog.Nop())
}

func TestClasses(t *testing.T) {
	classes := Classes(classTable(t))
	if len(classes) != 3 {
		t.Fatalf("got %d classes", len(classes))
	}
	byName := map[string]ClassInfo{}
	for _, c := range classes {
		byName[c.Name] = c
	}
	if deps := byName["UserService"].Dependencies; !reflect.DeepEqual(deps, []string{"Audit"}) {
		t.Errorf("UserService deps = %v", deps)
	}
	if deps := byName["UserController"].Dependencies; !reflect.DeepEqual(deps, []string{"UserService"}) {
		t.Errorf("UserController deps = %v", deps)
	}
	if deps := byName["Audit"].Dependencies; len(deps) != 0 {
		t.Errorf("Audit deps = %v", deps)
	}

	rest := RestControllers(classTable(t))
	if len(rest) != 1 || rest[0].Name != "UserController" {
		t.Errorf("RestControllers = %+v", rest)
	}
}

func TestClassSummary(t *testing.T) {
	out := ClassSummary(Classes(classTable(t)), PlainStyles())
	for _, want := range []string{
		"Total classes: 3\nREST controllers: 1\nPublic classes: 2\n",
		"1. Audit\n   File: Audit.java\n   Lines: 1-5\n   Public: Yes\n   Methods: 1\n\n",
		"   REST Endpoint: REQUEST /api/users\n   Methods: 1\n   Dependencies: UserService\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestFunctionIndex(t *testing.T) {
	table := classTable(t)
	all := FunctionIndex(table, false, PlainStyles())
	want := "  Audit.log\n  UserController.get\n  UserService.find\n"
	if all != want {
		t.Errorf("FunctionIndex =\n%q\nwant\n%q", all, want)
	}
	if rest := FunctionIndex(table, true, PlainStyles()); rest != "" {
		t.Errorf("rest-only index = %q, want empty", rest)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"mermaid", FormatMermaid, false},
		{"text", FormatText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

type doc struct {
	Target    string                `json:"target_function"`
	Total     int                   `json:"total_functions"`
	Missing   *string               `json:"missing"`
	Functions []*graph.MethodRecord `json:"functions"`
}

func TestEncodeFormatsShareKeys(t *testing.T) {
	v := doc{Target: "A.start", Total: 1, Functions: []*graph.MethodRecord{rec("A", "start", 1, 5, "B.left")}}

	var js, ys, ts bytes.Buffer
	for f, buf := range map[Format]*bytes.Buffer{FormatJSON: &js, FormatYAML: &ys, FormatTOML: &ts} {
		if err := Encode(buf, f, v); err != nil {
			t.Fatalf("Encode(%s): %v", f, err)
		}
	}

	var fromJSON, fromYAML, fromTOML map[string]any
	if err := json.Unmarshal(js.Bytes(), &fromJSON); err != nil {
		t.Fatal(err)
	}
	if err := yaml.Unmarshal(ys.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}
	if err := toml.Unmarshal(ts.Bytes(), &fromTOML); err != nil {
		t.Fatalf("toml: %v\n%s", err, ts.String())
	}

	for name, m := range map[string]map[string]any{"yaml": fromYAML, "toml": fromTOML} {
		if m["target_function"] != "A.start" {
			t.Errorf("%s target_function = %v", name, m["target_function"])
		}
		if _, ok := m["missing"]; ok {
			t.Errorf("%s kept a null field", name)
		}
		fns, ok := m["functions"].([]any)
		if !ok || len(fns) != 1 {
			t.Fatalf("%s functions = %#v", name, m["functions"])
		}
	}
	if fromJSON["total_functions"] != float64(1) {
		t.Errorf("json total_functions = %v", fromJSON["total_functions"])
	}
	if !strings.Contains(ys.String(), "total_functions: 1\n") {
		t.Errorf("yaml should carry an integer:\n%s", ys.String())
	}
	if !strings.Contains(ts.String(), "total_functions = 1\n") {
		t.Errorf("toml should carry an integer:\n%s", ts.String())
	}
}

func TestEncodeTOMLList(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatTOML, []ClassInfo{{Name: "A"}}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "items") {
		t.Errorf("expected items table:\n%s", buf.String())
	}
}

func TestEncodeRejectsTextFormats(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, FormatMermaid, nil); err == nil {
		t.Error("expected error for mermaid")
	}
}
