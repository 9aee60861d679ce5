package graph

// DefaultMaxDepth is the chain depth used when none is configured.
const DefaultMaxDepth = 10

// Walk builds the call chain rooted at startKey over a resolved table.
// A node is expanded only while its depth is below maxDepth and its key
// is not already on the path from the root, so recursion ends at the
// first repeated method. A negative maxDepth is treated as zero. The
// second result is false when startKey is not in the table.
func Walk(t *SymbolTable, startKey string, maxDepth int) (*ChainNode, bool) {
	if maxDepth < 0 {
		maxDepth = 0
	}
	m, ok := t.methods[startKey]
	if !ok {
		return nil, false
	}
	root := &ChainNode{Key: startKey, Method: m}
	walk(t, root, maxDepth, map[string]bool{})
	return root, true
}

func walk(t *SymbolTable, node *ChainNode, maxDepth int, visited map[string]bool) {
	if node.Depth >= maxDepth || visited[node.Key] {
		return
	}
	path := make(map[string]bool, len(visited)+1)
	for k := range visited {
		path[k] = true
	}
	path[node.Key] = true

	for _, callee := range node.Method.Calls {
		m, ok := t.methods[callee]
		if !ok {
			continue
		}
		child := &ChainNode{Key: callee, Method: m, Depth: node.Depth + 1}
		node.Children = append(node.Children, child)
		walk(t, child, maxDepth, path)
	}
}

// Size returns the number of nodes in the chain, counting repeats.
func (n *ChainNode) Size() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}
