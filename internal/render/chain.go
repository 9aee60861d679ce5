// Package render turns call chains and symbol tables into diagrams,
// reports and serialized documents.
package render

import (
	"fmt"
	"strings"

	"github.com/imyousuf/javanav/internal/graph"
)

// Flatten lists the distinct methods of a chain depth first, in discovery
// order. A method reached along several paths is listed once, at its first
// visit.
func Flatten(root *graph.ChainNode) []*graph.MethodRecord {
	var out []*graph.MethodRecord
	seen := make(map[string]bool)
	var visit func(n *graph.ChainNode)
	visit = func(n *graph.ChainNode) {
		if n == nil || n.Method == nil {
			return
		}
		if id := n.Method.Identity(); !seen[id] {
			seen[id] = true
			out = append(out, n.Method)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)
	return out
}

// Mermaid renders a chain as a top-down flowchart. Nodes are declared once
// per (class, method) pair in discovery order; edges follow every tree
// edge, so a method reached twice contributes two incoming edges.
func Mermaid(root *graph.ChainNode) string {
	lines := []string{"graph TD"}
	if root == nil {
		return lines[0]
	}

	ids := make(map[string]string)
	var declare func(n *graph.ChainNode)
	declare = func(n *graph.ChainNode) {
		id := nodeKey(n.Method)
		if _, ok := ids[id]; !ok {
			ids[id] = fmt.Sprintf("node%d", len(ids))
			lines = append(lines, fmt.Sprintf("    %s[\"%s\"]", ids[id], NodeLabel(n.Method)))
		}
		for _, c := range n.Children {
			declare(c)
		}
	}
	declare(root)

	var connect func(n *graph.ChainNode)
	connect = func(n *graph.ChainNode) {
		from := ids[nodeKey(n.Method)]
		for _, c := range n.Children {
			lines = append(lines, fmt.Sprintf("    %s --> %s", from, ids[nodeKey(c.Method)]))
			connect(c)
		}
	}
	connect(root)

	return strings.Join(lines, "\n")
}

func nodeKey(m *graph.MethodRecord) string {
	return m.ClassName + "." + m.Name
}

// NodeLabel is the diagram label of a method: the endpoint if any, the
// qualified name and the line span, separated by Mermaid line breaks.
func NodeLabel(m *graph.MethodRecord) string {
	var parts []string
	if m.IsEndpoint {
		parts = append(parts, fmt.Sprintf("%s %s", m.HTTPMethod, m.EndpointPath))
	}
	parts = append(parts,
		fmt.Sprintf("%s.%s", m.ClassName, m.Name),
		fmt.Sprintf("%d-%d", m.StartLine, m.EndLine),
	)
	return strings.ReplaceAll(strings.Join(parts, `\n`), `"`, "#quot;")
}
