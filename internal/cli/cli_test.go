package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/imyousuf/javanav/internal/metrics"
	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
)

func fixtureRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("could not determine test file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "java-project")
}

// copyFixture copies the fixture project so commands may write into it.
func copyFixture(t *testing.T) string {
	t.Helper()
	src := fixtureRoot(t)
	dst := t.TempDir()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, path)
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		t.Fatal(err)
	}
	return dst
}

// runCLI executes a fresh command tree and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := runCLI(t, "analyze", "getUserById", fixtureRoot(t), "--format", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var doc struct {
		Mermaid string `json:"mermaid"`
		navigator.Result
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if doc.TargetFunction != "UserController.getUserById" || doc.TotalFunctions != 3 {
		t.Errorf("result = %+v", doc.Result)
	}
	if !strings.HasPrefix(doc.Mermaid, "graph TD\n") {
		t.Errorf("mermaid = %q", doc.Mermaid)
	}
	if len(doc.Alternates) != 1 || doc.Alternates[0] != "UserRepository.getUserById" {
		t.Errorf("alternates = %v", doc.Alternates)
	}
}

func TestAnalyzeFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"mermaid", "graph TD\n    node0[\"GET /api/users/{id}\\nUserController.getUserById\\n15-18\"]"},
		{"yaml", "target_function: UserController.getUserById\n"},
		{"toml", "target_function = "},
		{"text", "=== Call Chain Summary ==="},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := runCLI(t, "analyze", "UserController.getUserById", fixtureRoot(t), "-f", tt.format)
			if err != nil {
				t.Fatalf("analyze: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestAnalyzeMaxDepth(t *testing.T) {
	out, err := runCLI(t, "analyze", "createUser", fixtureRoot(t), "-f", "json", "--max-depth", "1")
	if err != nil {
		t.Fatal(err)
	}
	var r navigator.Result
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatal(err)
	}
	if r.MaxDepth != 1 || r.TotalFunctions != 2 {
		t.Errorf("max_depth = %d, total = %d", r.MaxDepth, r.TotalFunctions)
	}
}

func TestAnalyzeNotFound(t *testing.T) {
	out, err := runCLI(t, "analyze", "nothingHere", fixtureRoot(t), "-f", "text")
	if !errors.Is(err, errNotFound) {
		t.Fatalf("err = %v, want errNotFound", err)
	}
	if !strings.Contains(out, "Available functions:") || !strings.Contains(out, "UserService.generateUserId") {
		t.Errorf("output:\n%s", out)
	}
}

func TestAnalyzeInputErrors(t *testing.T) {
	if _, err := runCLI(t, "analyze", "x", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing project")
	}
	if _, err := runCLI(t, "analyze", "x", fixtureRoot(t), "-f", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := runCLI(t, "analyze", "only-one-arg"); err == nil {
		t.Error("expected error for missing argument")
	}
}

func TestAnalyzeOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.md")
	if _, err := runCLI(t, "analyze", "createUser", fixtureRoot(t), "-o", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "```mermaid\ngraph TD\n") {
		t.Errorf("file content:\n%s", data)
	}
}

func TestListJSON(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{[]string{"list", "--json"}, 15},
		{[]string{"list", "--json", "--rest"}, 3},
	}
	for _, tt := range tests {
		out, err := runCLI(t, append(tt.args, fixtureRoot(t))...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		var entries []navigator.AvailableEntry
		if err := json.Unmarshal([]byte(out), &entries); err != nil {
			t.Fatal(err)
		}
		if len(entries) != tt.want {
			t.Errorf("%v: got %d entries, want %d", tt.args, len(entries), tt.want)
		}
	}
}

func TestClassesJSON(t *testing.T) {
	out, err := runCLI(t, "classes", fixtureRoot(t), "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	var classes []render.ClassInfo
	if err := json.Unmarshal([]byte(out), &classes); err != nil {
		t.Fatal(err)
	}
	if len(classes) != 4 {
		t.Fatalf("got %d classes", len(classes))
	}

	out, err = runCLI(t, "classes", fixtureRoot(t), "--rest", "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	classes = nil
	if err := json.Unmarshal([]byte(out), &classes); err != nil {
		t.Fatal(err)
	}
	if len(classes) != 1 || classes[0].Name != "UserController" {
		t.Errorf("rest classes = %+v", classes)
	}
}

func TestExtractJSON(t *testing.T) {
	out, err := runCLI(t, "extract", "UserService.buildUserResponse", fixtureRoot(t), "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	var snippets []navigator.Snippet
	if err := json.Unmarshal([]byte(out), &snippets); err != nil {
		t.Fatal(err)
	}
	if len(snippets) != 2 || snippets[0].Function != "UserService.buildUserResponse" {
		t.Errorf("snippets = %+v", snippets)
	}
	if _, err := runCLI(t, "extract", "nothingHere", fixtureRoot(t)); err == nil {
		t.Error("expected error for unmatched start point")
	}
}

func TestIndexAndCacheCommands(t *testing.T) {
	root := copyFixture(t)
	home := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		t.Setenv("HOME", home)
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	out := run("index", root)
	if !strings.Contains(out, "Files:    4 (4 parsed, 0 cached, 0 failed)") {
		t.Errorf("first index:\n%s", out)
	}
	if !strings.Contains(out, "Registered project in") {
		t.Errorf("first index did not register:\n%s", out)
	}
	out = run("index", root)
	if !strings.Contains(out, "Updated project in") {
		t.Errorf("second index did not update registration:\n%s", out)
	}
	if !strings.Contains(out, "Files:    4 (0 parsed, 4 cached, 0 failed)") {
		t.Errorf("second index:\n%s", out)
	}

	if out := run("cache", "stats", root); !strings.Contains(out, "Entries: 4") {
		t.Errorf("stats:\n%s", out)
	}
	if out := run("cache", "dump", root); strings.Count(out, "\n") != 4 {
		t.Errorf("dump:\n%s", out)
	}
	if out := run("projects"); !strings.Contains(out, filepath.Base(root)) {
		t.Errorf("projects:\n%s", out)
	}
	if out := run("index", root, "--no-register"); strings.Contains(out, "project in") {
		t.Errorf("--no-register still registered:\n%s", out)
	}
	if out := run("projects", "--prune"); strings.Contains(out, "Removed") {
		t.Errorf("prune removed a live project:\n%s", out)
	}

	run("cache", "clear", root)
	if out := run("cache", "stats", root); !strings.Contains(out, "Entries: 0") {
		t.Errorf("stats after clear:\n%s", out)
	}
}

func TestCacheWithoutIndex(t *testing.T) {
	if _, err := runCLI(t, "cache", "stats", t.TempDir()); err == nil {
		t.Error("expected error for project without a cache")
	}
}

func TestExportNeo4jDryRun(t *testing.T) {
	out, err := runCLI(t, "export", "neo4j", fixtureRoot(t), "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"CREATE INDEX java_method_key", "MERGE (m:JavaMethod {key: row.key})", "MERGE (caller)-[r:CALLS]->(callee)"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run missing %q", want)
		}
	}
}

func TestExportNeo4jRequiresURI(t *testing.T) {
	_, err := runCLI(t, "export", "neo4j", fixtureRoot(t))
	if err == nil || !strings.Contains(err.Error(), "neo4j.uri") {
		t.Errorf("err = %v", err)
	}
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := runCLI(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".javanav.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "max_depth: 10") {
		t.Errorf("config:\n%s", data)
	}
	if _, err := runCLI(t, "init"); err == nil {
		t.Error("expected error when config exists")
	}
	if _, err := runCLI(t, "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "javanav version dev\n") {
		t.Errorf("version output:\n%s", out)
	}
}

func TestMetricsJSON(t *testing.T) {
	out, err := runCLI(t, "metrics", "createUser", fixtureRoot(t), "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	var report metrics.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(report.Methods) != 6 {
		t.Fatalf("got %d functions", len(report.Methods))
	}
	if report.MaxComplexity != "ValidationUtil.validateUsername" {
		t.Errorf("max complexity = %q", report.MaxComplexity)
	}
	if report.Total.Complexity < len(report.Methods) {
		t.Errorf("total complexity = %d", report.Total.Complexity)
	}

	if _, err := runCLI(t, "metrics", "createUser", fixtureRoot(t), "-f", "mermaid"); err == nil {
		t.Error("expected error for mermaid format")
	}
}

func TestCompletion(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "javanav") {
		t.Errorf("bash completion does not mention javanav")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompletionInstall(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"completion", "install", "--shell", "fish"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(home, ".config", "fish", "completions", "javanav.fish")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("completion file not written: %v", err)
	}
}
