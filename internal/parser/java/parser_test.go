package java

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/parser"
)

const testSource = `package com.example.demo;

import java.util.List;
import java.util.Map;
import com.example.repo.*;

@RestController
@RequestMapping(value = "/api/orders/")
public class OrderController extends BaseController implements Auditable {

    private final OrderService orderService;

    public OrderController(OrderService orderService) {
        this.orderService = orderService;
    }

    @GetMapping("/{id}")
    public Order findOrder(@PathVariable Long id) {
        // a } in a comment
        String s = "a { in a string";
        audit("find");
        return this.orderService.lookup(id);
    }

    @RequestMapping(path = {"/search", "/find"}, method = RequestMethod.POST)
    public List<Order> search(Query q) {
        List<Order> all = orderService.list(q);
        all.stream().filter(o -> o.isOpen()).forEach(o -> audit("row"));
        return helper.cleanup(all).getItems();
    }

    protected void audit(String what) {
        super.audit(what);
        getLog().info(what);
        Registry.record(new Event(what));
    }

    static class Builder {
        Builder() {}

        OrderController build() {
            return create();
        }
    }
}
`

func parse(t *testing.T, path, src string) *parser.ParseResult {
	t.Helper()
	result, err := NewParser().ParseFile(path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	return result
}

func methodsByName(c *graph.ClassRecord) map[string]*graph.MethodRecord {
	m := make(map[string]*graph.MethodRecord)
	for _, rec := range c.Methods {
		m[rec.Name] = rec
	}
	return m
}

func TestParseFile(t *testing.T) {
	result := parse(t, "demo/OrderController.java", testSource)

	if result.Package != "com.example.demo" {
		t.Errorf("Package = %q", result.Package)
	}
	wantImports := []string{"java.util.List", "java.util.Map", "com.example.repo.*"}
	if !reflect.DeepEqual(result.Imports, wantImports) {
		t.Errorf("Imports = %v, want %v", result.Imports, wantImports)
	}
	if len(result.Classes) != 2 {
		t.Fatalf("expected 2 classes (primary + nested), got %d", len(result.Classes))
	}

	c := result.Primary()
	if c.Name != "OrderController" || c.Kind != graph.KindClass || !c.IsPublic {
		t.Errorf("primary = %+v", c)
	}
	if c.StartLine != 7 || c.EndLine != 45 {
		t.Errorf("class span = %d-%d, want 7-45", c.StartLine, c.EndLine)
	}
	if !c.IsEndpoint || c.HTTPMethod != graph.MethodRequest || c.EndpointPath != "/api/orders/" {
		t.Errorf("class endpoint = %v %s %q", c.IsEndpoint, c.HTTPMethod, c.EndpointPath)
	}
	if c.Extends != "BaseController" || !reflect.DeepEqual(c.Implements, []string{"Auditable"}) {
		t.Errorf("extends/implements = %q %v", c.Extends, c.Implements)
	}
	wantDeps := []string{"BaseController", "Auditable", "OrderService", "Order", "Query"}
	if !reflect.DeepEqual(c.Dependencies, wantDeps) {
		t.Errorf("Dependencies = %v, want %v", c.Dependencies, wantDeps)
	}

	methods := methodsByName(c)
	if _, ok := methods["OrderController"]; ok {
		t.Error("constructor must not be recorded")
	}
	if len(methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(methods))
	}

	find := methods["findOrder"]
	if find.StartLine != 17 || find.EndLine != 23 {
		t.Errorf("findOrder span = %d-%d, want 17-23", find.StartLine, find.EndLine)
	}
	if !find.IsEndpoint || find.HTTPMethod != graph.MethodGet || find.EndpointPath != "/api/orders/{id}" {
		t.Errorf("findOrder endpoint = %s %q", find.HTTPMethod, find.EndpointPath)
	}
	if want := []string{"audit", "orderService.lookup"}; !reflect.DeepEqual(find.Calls, want) {
		t.Errorf("findOrder calls = %v, want %v", find.Calls, want)
	}
	if find.Annotations["GetMapping"] != "/{id}" {
		t.Errorf("annotations = %v", find.Annotations)
	}

	search := methods["search"]
	if search.HTTPMethod != graph.MethodPost || search.EndpointPath != "/api/orders/search" {
		t.Errorf("search endpoint = %s %q", search.HTTPMethod, search.EndpointPath)
	}
	// Builtins and accessors (stream, filter, isOpen, getItems) are dropped.
	if want := []string{"orderService.list", "audit", "helper.cleanup"}; !reflect.DeepEqual(search.Calls, want) {
		t.Errorf("search calls = %v, want %v", search.Calls, want)
	}

	audit := methods["audit"]
	if audit.IsPublic || audit.IsEndpoint {
		t.Errorf("audit should be a non-public plain method: %+v", audit)
	}
	if want := []string{"audit", "getLog.info", "Registry.record"}; !reflect.DeepEqual(audit.Calls, want) {
		t.Errorf("audit calls = %v, want %v", audit.Calls, want)
	}

	nested := result.Classes[1]
	if nested.Name != "OrderController.Builder" {
		t.Errorf("nested name = %q", nested.Name)
	}
	if len(nested.Methods) != 1 || nested.Methods[0].Name != "build" {
		t.Fatalf("nested methods = %+v", nested.Methods)
	}
	if nested.Methods[0].ClassName != "OrderController.Builder" {
		t.Errorf("nested method class = %q", nested.Methods[0].ClassName)
	}
}

func TestSpansContainFirstLine(t *testing.T) {
	result := parse(t, "demo/OrderController.java", testSource)
	for _, c := range result.Classes {
		for _, m := range c.Methods {
			if m.StartLine > m.EndLine {
				t.Errorf("%s: start %d > end %d", m.Key(), m.StartLine, m.EndLine)
			}
			if m.StartLine < c.StartLine || m.EndLine > c.EndLine {
				t.Errorf("%s: span %d-%d outside class %d-%d", m.Key(), m.StartLine, m.EndLine, c.StartLine, c.EndLine)
			}
		}
	}
}

func TestInterfaceAndEnum(t *testing.T) {
	src := `package x;

public interface Repo {
    User load(long id);
    default void touch() { refresh(); }
}
`
	result := parse(t, "x/Repo.java", src)
	c := result.Primary()
	if c.Kind != graph.KindInterface {
		t.Fatalf("kind = %s", c.Kind)
	}
	methods := methodsByName(c)
	load := methods["load"]
	if load == nil || !load.IsPublic || load.StartLine != 4 || load.EndLine != 4 {
		t.Errorf("load = %+v", load)
	}
	if touch := methods["touch"]; touch == nil || !reflect.DeepEqual(touch.Calls, []string{"refresh"}) {
		t.Errorf("touch = %+v", touch)
	}

	enumSrc := `enum Level {
    LOW, HIGH;

    Level next() { return escalate(this); }
}
`
	result = parse(t, "Level.java", enumSrc)
	c = result.Primary()
	if c.Kind != graph.KindEnum || len(c.Methods) != 1 || c.Methods[0].Name != "next" {
		t.Errorf("enum = %+v", c)
	}
}

func TestOnlyFirstTopLevelType(t *testing.T) {
	src := `class A { void a() {} }
class B { void b() {} }
`
	result := parse(t, "A.java", src)
	if len(result.Classes) != 1 || result.Primary().Name != "A" {
		t.Errorf("classes = %+v", result.Classes)
	}
}

func TestUnbalancedMethodFallsBack(t *testing.T) {
	src := "public class Broken {\n    public void run() {\n        work();\n"
	p := NewParser(WithMethodSpanFallback(50))
	result, err := p.ParseFile("Broken.java", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	c := result.Primary()
	if c == nil {
		t.Fatal("expected a class")
	}
	if c.EndLine != 3 {
		t.Errorf("class end = %d, want rest of file (3)", c.EndLine)
	}
	for _, m := range c.Methods {
		if m.EndLine != 3 {
			t.Errorf("%s end = %d, want clamped to 3", m.Name, m.EndLine)
		}
	}
}

func TestTextualFallback(t *testing.T) {
	src := "package com.x;\n\n@@@ ((( garbage\npublic final class Survivor {\n  int x = ;;; }\n}\n"
	result := parse(t, "Survivor.java", src)
	c := result.Primary()
	if c == nil {
		t.Fatal("expected the textual fallback to recover a type")
	}
	if c.Name != "Survivor" {
		t.Errorf("recovered = %+v", c)
	}
	if c.StartLine > c.EndLine {
		t.Errorf("span %d-%d", c.StartLine, c.EndLine)
	}
}

func TestEmptyFile(t *testing.T) {
	result := parse(t, "Empty.java", "// nothing here\n")
	if result.Primary() != nil {
		t.Errorf("expected no classes, got %+v", result.Classes)
	}
}

func TestLanguageAndExtensions(t *testing.T) {
	p := NewParser()
	if p.Language() != parser.LangJava {
		t.Errorf("Language() = %q, want %q", p.Language(), parser.LangJava)
	}
	exts := p.Extensions()
	if len(exts) != 1 || exts[0] != ".java" {
		t.Errorf("Extensions() = %v, want [\".java\"]", exts)
	}
}

func TestParseFixtureProject(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("could not determine test file path")
	}
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
	path := filepath.Join(projectRoot, "testdata", "java-project", "src", "main", "java",
		"com", "example", "controller", "UserController.java")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Skipf("fixture not found: %v", err)
	}
	result := parse(t, path, string(content))

	c := result.Primary()
	if c.Name != "UserController" || c.StartLine != 8 || c.EndLine != 29 {
		t.Errorf("class = %s %d-%d", c.Name, c.StartLine, c.EndLine)
	}
	if !reflect.DeepEqual(c.Dependencies, []string{"UserService", "UserResponse"}) {
		t.Errorf("dependencies = %v", c.Dependencies)
	}

	tests := []struct {
		name   string
		start  int
		end    int
		method graph.HTTPMethod
		path   string
		calls  []string
	}{
		{"getUserById", 15, 18, graph.MethodGet, "/api/users/{id}", []string{"userService.findUserById"}},
		{"createUser", 20, 23, graph.MethodPost, "/api/users", []string{"userService.createNewUser"}},
		{"deleteUser", 25, 28, graph.MethodDelete, "/api/users/{id}", []string{"userService.deleteUserById"}},
	}
	methods := methodsByName(c)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := methods[tt.name]
			if m == nil {
				t.Fatalf("method %s not found", tt.name)
			}
			if m.StartLine != tt.start || m.EndLine != tt.end {
				t.Errorf("span = %d-%d, want %d-%d", m.StartLine, m.EndLine, tt.start, tt.end)
			}
			if m.HTTPMethod != tt.method || m.EndpointPath != tt.path {
				t.Errorf("endpoint = %s %q, want %s %q", m.HTTPMethod, m.EndpointPath, tt.method, tt.path)
			}
			if !reflect.DeepEqual(m.Calls, tt.calls) {
				t.Errorf("calls = %v, want %v", m.Calls, tt.calls)
			}
		})
	}
}
