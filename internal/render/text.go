package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imyousuf/javanav/internal/graph"
)

// Styles controls how text reports are decorated.
type Styles struct {
	Header lipgloss.Style
	Name   lipgloss.Style
	Label  lipgloss.Style
	Faint  lipgloss.Style
}

// DefaultStyles returns the terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}),
		Name: lipgloss.NewStyle().Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}),
		Faint: lipgloss.NewStyle().Faint(true),
	}
}

// PlainStyles returns styles that leave text untouched, for pipes and files.
func PlainStyles() Styles {
	return Styles{}
}

// Summary renders the call chain summary block.
func Summary(root *graph.ChainNode, functions []*graph.MethodRecord, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("=== Call Chain Summary ===") + "\n")
	fmt.Fprintf(&b, "Total functions in chain: %d\n", len(functions))
	if root != nil && root.Method != nil {
		m := root.Method
		fmt.Fprintf(&b, "Starting function: %s\n", st.Name.Render(m.ClassName+"."+m.Name))
		if m.IsEndpoint {
			fmt.Fprintf(&b, "REST Endpoint: %s\n", st.Label.Render(fmt.Sprintf("%s %s", m.HTTPMethod, m.EndpointPath)))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// FunctionInfo renders the numbered detail list of functions.
func FunctionInfo(functions []*graph.MethodRecord, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("=== Function Information ===") + "\n\n")
	for i, m := range functions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, st.Name.Render(m.ClassName+"."+m.Name))
		if m.IsEndpoint {
			fmt.Fprintf(&b, "   REST Endpoint: %s\n", st.Label.Render(fmt.Sprintf("%s %s", m.HTTPMethod, m.EndpointPath)))
		}
		fmt.Fprintf(&b, "   File: %s\n", m.FilePath)
		fmt.Fprintf(&b, "   Lines: %d-%d\n", m.StartLine, m.EndLine)
		fmt.Fprintf(&b, "   Public: %s\n", yesNo(m.IsPublic))
		if len(m.Calls) > 0 {
			fmt.Fprintf(&b, "   Calls: %s\n", strings.Join(m.Calls, ", "))
		} else {
			b.WriteString("   Calls: " + st.Faint.Render("None") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Text renders the complete report for one chain: the fenced diagram, the
// summary and the function details.
func Text(root *graph.ChainNode, functions []*graph.MethodRecord, st Styles) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\n")
	b.WriteString(st.Header.Render("Call Graph (Mermaid)") + "\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("```mermaid\n" + Mermaid(root) + "\n```\n\n")
	b.WriteString(Summary(root, functions, st))
	b.WriteString(FunctionInfo(functions, st))
	b.WriteString(rule + "\n")
	return b.String()
}

// FunctionIndex lists every method key of the table in sorted order,
// annotating endpoints. With restOnly set, plain methods are omitted.
func FunctionIndex(t *graph.SymbolTable, restOnly bool, st Styles) string {
	var b strings.Builder
	for _, key := range t.SortedKeys() {
		m, _ := t.Method(key)
		switch {
		case m.IsEndpoint:
			fmt.Fprintf(&b, "  %s %s\n", key, st.Label.Render(fmt.Sprintf("(REST: %s %s)", m.HTTPMethod, m.EndpointPath)))
		case !restOnly:
			fmt.Fprintf(&b, "  %s\n", key)
		}
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
