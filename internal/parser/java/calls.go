package java

import (
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// Java builtin method names to skip in call extraction.
var javaBuiltins = map[string]bool{
	"toString": true, "hashCode": true, "equals": true, "getClass": true,
	"notify": true, "notifyAll": true, "wait": true, "clone": true, "finalize": true,
	"valueOf": true, "length": true, "size": true, "get": true, "set": true,
	"add": true, "remove": true, "contains": true, "isEmpty": true,
	"iterator": true, "compareTo": true, "println": true, "print": true,
	"printf": true, "format": true, "append": true, "substring": true,
	"trim": true, "split": true, "replace": true, "matches": true,
	"charAt": true, "indexOf": true, "lastIndexOf": true, "toUpperCase": true,
	"toLowerCase": true, "startsWith": true, "endsWith": true, "toArray": true,
	"stream": true, "collect": true, "map": true, "filter": true,
	"forEach": true, "of": true, "asList": true, "sort": true,
	"getName": true, "getBytes": true, "close": true, "flush": true,
	"read": true, "write": true, "next": true, "hasNext": true,
	"put": true, "containsKey": true, "keySet": true, "values": true,
	"entrySet": true, "getOrDefault": true, "putIfAbsent": true,
}

// javaKeywords can show up as invocation names in malformed sources.
var javaKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"synchronized": true, "return": true, "new": true, "throw": true,
	"super": true, "this": true, "assert": true, "try": true, "do": true,
	"else": true, "case": true, "instanceof": true,
}

// isNoiseCall reports whether a member name is dropped from call tokens.
func isNoiseCall(name string) bool {
	if name == "" || javaBuiltins[name] || javaKeywords[name] {
		return true
	}
	return isAccessor(name)
}

// isAccessor matches get/set/is followed by an upper-case letter or nothing.
func isAccessor(name string) bool {
	for _, prefix := range []string{"get", "set", "is"} {
		if len(name) < len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		rest := name[len(prefix):]
		if rest == "" || unicode.IsUpper([]rune(rest)[0]) {
			return true
		}
	}
	return false
}

// collectCalls walks a method body and returns its raw call tokens,
// de-duplicated in first-seen order.
func (e *extractor) collectCalls(body *sitter.Node) []string {
	var calls []string
	seen := make(map[string]bool)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "method_invocation" {
			if token := e.callToken(n); token != "" && !seen[token] {
				seen[token] = true
				calls = append(calls, token)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)
	return calls
}

// callToken renders one invocation as "qualifier.member" or "member".
func (e *extractor) callToken(node *sitter.Node) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	member := e.nodeText(nameNode)
	if isNoiseCall(member) {
		return ""
	}
	qualifier := e.qualifier(node.ChildByFieldName("object"))
	if qualifier == "" {
		return member
	}
	return qualifier + "." + member
}

// qualifier reduces an invocation's object expression to one name. It
// returns "" for an absent object and for this/super.
func (e *extractor) qualifier(obj *sitter.Node) string {
	if obj == nil {
		return ""
	}
	switch obj.Type() {
	case "this", "super":
		return ""
	case "identifier", "type_identifier":
		return e.nodeText(obj)
	case "field_access":
		if f := obj.ChildByFieldName("field"); f != nil {
			return e.nodeText(f)
		}
	case "method_invocation":
		if n := obj.ChildByFieldName("name"); n != nil {
			return e.nodeText(n)
		}
	case "object_creation_expression":
		if t := obj.ChildByFieldName("type"); t != nil {
			return e.baseTypeName(t)
		}
	case "parenthesized_expression", "cast_expression":
		if obj.NamedChildCount() > 0 {
			return e.qualifier(obj.NamedChild(int(obj.NamedChildCount()) - 1))
		}
	}
	if id := lastIdentifier(obj); id != nil {
		return e.nodeText(id)
	}
	return "expr"
}

func lastIdentifier(n *sitter.Node) *sitter.Node {
	var found *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "identifier" {
			found = c
		} else if id := lastIdentifier(c); id != nil {
			found = id
		}
	}
	return found
}
