package java

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/parser"
)

// DefaultMethodSpanFallback is how many lines a method is assumed to span
// when its braces never balance.
const DefaultMethodSpanFallback = 50

// JavaParser extracts class and method records from Java source files.
type JavaParser struct {
	fallbackSpan int
}

// Option configures a JavaParser.
type Option func(*JavaParser)

// WithMethodSpanFallback sets the fallback method span in lines.
func WithMethodSpanFallback(lines int) Option {
	return func(p *JavaParser) {
		if lines > 0 {
			p.fallbackSpan = lines
		}
	}
}

// NewParser creates a new Java parser.
func NewParser(opts ...Option) *JavaParser {
	p := &JavaParser{fallbackSpan: DefaultMethodSpanFallback}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings names the options that shape parse results.
func (p *JavaParser) Settings() string {
	return fmt.Sprintf("method_span_fallback=%d", p.fallbackSpan)
}

func (p *JavaParser) Language() parser.Language {
	return parser.LangJava
}

func (p *JavaParser) Extensions() []string {
	return parser.FileExtensions[parser.LangJava]
}

func (p *JavaParser) ParseFile(filePath string, content []byte) (result *parser.ParseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("parsing %s: %v", filePath, r)
		}
	}()

	sitterParser := sitter.NewParser()
	sitterParser.SetLanguage(java.GetLanguage())

	tree, err := sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}

	e := &extractor{
		filePath:     filePath,
		content:      content,
		lines:        newLineIndex(content),
		fallbackSpan: p.fallbackSpan,
	}
	root := tree.RootNode()
	e.walkProgram(root)

	result = &parser.ParseResult{
		FilePath: filePath,
		Language: parser.LangJava,
		Package:  e.pkgName,
		Imports:  e.imports,
		Classes:  e.classes,
	}
	if len(e.classes) == 0 && root.HasError() {
		if c := e.recoverType(); c != nil {
			result.Package = c.Package
			result.Classes = []*graph.ClassRecord{c}
			result.Recovered = true
		}
	}
	return result, nil
}

// extractor walks a tree-sitter Java AST of one file.
type extractor struct {
	filePath     string
	content      []byte
	lines        *lineIndex
	fallbackSpan int

	pkgName string
	imports []string
	classes []*graph.ClassRecord
}

var typeKinds = map[string]graph.ClassKind{
	"class_declaration":     graph.KindClass,
	"interface_declaration": graph.KindInterface,
	"enum_declaration":      graph.KindEnum,
	"record_declaration":    graph.KindRecord,
}

func (e *extractor) walkProgram(root *sitter.Node) {
	primary := false
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			e.pkgName = e.declaredName(child)
		case "import_declaration":
			e.extractImport(child)
		default:
			// Only the first top-level type of a file is recorded.
			if _, ok := typeKinds[child.Type()]; ok && !primary {
				primary = e.extractType(child, "") != nil
			}
		}
	}
}

// declaredName returns the (scoped) identifier of a package or import.
func (e *extractor) declaredName(node *sitter.Node) string {
	name := ""
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			name = e.nodeText(child)
		}
	}
	return name
}

func (e *extractor) extractImport(node *sitter.Node) {
	name := e.declaredName(node)
	if name == "" {
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == "asterisk" {
			name += ".*"
		}
	}
	e.imports = append(e.imports, name)
}

// extractType records a class, interface, enum or record declaration and
// everything declared inside it. Nested types are named Outer.Inner.
func (e *extractor) extractType(node *sitter.Node, outer string) *graph.ClassRecord {
	kind := typeKinds[node.Type()]
	name := ""
	modifiers := ""
	var anns []Annotation
	var body, recordParams *sitter.Node
	var extends string
	var implements []string

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			name = e.nodeText(child)
		case "modifiers":
			modifiers, anns = e.extractModifiers(child)
		case "superclass":
			extends = e.extractSuperclass(child)
		case "super_interfaces", "extends_interfaces":
			implements = append(implements, e.extractTypeList(child)...)
		case "formal_parameters":
			recordParams = child
		case "class_body", "interface_body", "enum_body", "annotation_type_body":
			body = child
		}
	}
	if name == "" {
		return nil
	}

	fullName := name
	if outer != "" {
		fullName = outer + "." + name
	}

	c := &graph.ClassRecord{
		Name:       fullName,
		Kind:       kind,
		FilePath:   e.filePath,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    e.lines.count(),
		IsPublic:   hasModifier(modifiers, "public"),
		Package:    e.pkgName,
		Imports:    e.imports,
		Extends:    extends,
		Implements: implements,
	}
	if body != nil {
		if off, ok := blockEnd(e.content, int(body.StartByte())); ok {
			c.EndLine = e.lines.line(off)
		}
	}

	ep := InterpretClass(anns)
	c.IsEndpoint = ep.IsEndpoint
	c.EndpointPath = ep.Path
	c.HTTPMethod = ep.Method
	e.classes = append(e.classes, c)

	deps := newDepSet(name)
	if extends != "" {
		deps.add(baseName(extends))
	}
	for _, iface := range implements {
		deps.add(baseName(iface))
	}
	if recordParams != nil {
		e.collectTypes(recordParams, deps)
	}

	if body != nil {
		e.walkTypeBody(body, c, name, ep.Path, deps)
	}
	c.Dependencies = deps.list()
	return c
}

func (e *extractor) walkTypeBody(body *sitter.Node, c *graph.ClassRecord, simpleName, classPath string, deps *depSet) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration":
			if m := e.extractMethod(child, c, simpleName, classPath, deps); m != nil {
				c.Methods = append(c.Methods, m)
			}
		case "field_declaration", "constant_declaration":
			if t := child.ChildByFieldName("type"); t != nil {
				e.collectTypes(t, deps)
			}
		case "enum_body_declarations":
			e.walkTypeBody(child, c, simpleName, classPath, deps)
		default:
			if _, ok := typeKinds[child.Type()]; ok {
				e.extractType(child, c.Name)
			}
		}
	}
}

func (e *extractor) extractMethod(node *sitter.Node, c *graph.ClassRecord, simpleName, classPath string, deps *depSet) *graph.MethodRecord {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = e.nodeText(n)
	}
	// Constructors are never recorded, whatever node type they parse as.
	if name == "" || name == simpleName {
		return nil
	}

	modifiers := ""
	var anns []Annotation
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "modifiers" {
			modifiers, anns = e.extractModifiers(child)
		}
	}

	if t := node.ChildByFieldName("type"); t != nil {
		e.collectTypes(t, deps)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		e.collectTypes(params, deps)
	}

	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1
	body := node.ChildByFieldName("body")
	var calls []string
	if body != nil {
		if off, ok := blockEnd(e.content, int(body.StartByte())); ok {
			endLine = e.lines.line(off)
		} else {
			endLine = min(startLine+e.fallbackSpan, e.lines.count())
		}
		calls = e.collectCalls(body)
	}

	public := hasModifier(modifiers, "public")
	if c.Kind == graph.KindInterface && !hasModifier(modifiers, "private") {
		public = true
	}

	ep := Interpret(anns, classPath)
	return &graph.MethodRecord{
		Name:         name,
		ClassName:    c.Name,
		FilePath:     e.filePath,
		StartLine:    startLine,
		EndLine:      max(endLine, startLine),
		IsPublic:     public,
		IsEndpoint:   ep.IsEndpoint,
		EndpointPath: ep.Path,
		HTTPMethod:   ep.Method,
		Annotations:  annotationMap(anns),
		Calls:        calls,
	}
}

// extractModifiers returns the keyword modifiers and parsed annotations.
func (e *extractor) extractModifiers(node *sitter.Node) (string, []Annotation) {
	var mods []string
	var anns []Annotation
	// Iterate all children (named and unnamed) to get keyword modifiers and annotations
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			if a, ok := e.extractAnnotation(child); ok {
				anns = append(anns, a)
			}
		default:
			text := e.nodeText(child)
			switch text {
			case "public", "private", "protected", "static", "final", "abstract",
				"synchronized", "volatile", "transient", "native", "default":
				mods = append(mods, text)
			}
		}
	}
	return strings.Join(mods, " "), anns
}

func (e *extractor) extractAnnotation(node *sitter.Node) (Annotation, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Annotation{}, false
	}
	a := Annotation{Name: baseName(e.nodeText(nameNode))}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return a, true
	}
	positional := ""
	hasPositional := false
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "element_value_pair" {
			key, value := arg.ChildByFieldName("key"), arg.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			if a.Elements == nil {
				a.Elements = make(map[string]string)
			}
			a.Elements[e.nodeText(key)] = e.elementValue(value)
			continue
		}
		if !hasPositional && !isComment(arg) {
			positional = e.elementValue(arg)
			hasPositional = true
		}
	}

	switch {
	case hasPositional:
		a.Value = positional
	case a.Elements["value"] != "":
		a.Value = a.Elements["value"]
	default:
		a.Value = a.Elements["path"]
	}
	return a, true
}

// elementValue renders an annotation element as plain text: strings lose
// their quotes and arrays yield their first element.
func (e *extractor) elementValue(node *sitter.Node) string {
	switch node.Type() {
	case "string_literal":
		return cleanJavaString(e.nodeText(node))
	case "element_value_array_initializer":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if c := node.NamedChild(i); !isComment(c) {
				return e.elementValue(c)
			}
		}
		return ""
	case "binary_expression":
		return e.extractConcatPath(node)
	}
	return e.nodeText(node)
}

// extractConcatPath extracts string parts from a binary expression (string concatenation).
func (e *extractor) extractConcatPath(node *sitter.Node) string {
	if node.Type() == "string_literal" {
		return cleanJavaString(e.nodeText(node))
	}
	if node.Type() != "binary_expression" {
		return ""
	}

	var parts []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "string_literal":
			parts = append(parts, cleanJavaString(e.nodeText(child)))
		case "binary_expression":
			if sub := e.extractConcatPath(child); sub != "" {
				parts = append(parts, sub)
			}
		default:
			// Constant reference: replace with wildcard
			parts = append(parts, "*")
		}
	}
	return strings.Join(parts, "")
}

func (e *extractor) extractSuperclass(node *sitter.Node) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_identifier", "generic_type", "scoped_type_identifier":
			return e.nodeText(child)
		}
	}
	return ""
}

func (e *extractor) extractTypeList(node *sitter.Node) []string {
	var types []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				types = append(types, e.nodeText(child.NamedChild(j)))
			}
		case "type_identifier", "generic_type", "scoped_type_identifier":
			types = append(types, e.nodeText(child))
		}
	}
	return types
}

// collectTypes adds every type identifier below node to deps.
func (e *extractor) collectTypes(node *sitter.Node, deps *depSet) {
	if node.Type() == "type_identifier" {
		deps.add(e.nodeText(node))
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.collectTypes(node.NamedChild(i), deps)
	}
}

// baseTypeName returns the simple name of a type node, without generics.
func (e *extractor) baseTypeName(node *sitter.Node) string {
	switch node.Type() {
	case "generic_type", "array_type":
		if node.NamedChildCount() > 0 {
			return e.baseTypeName(node.NamedChild(0))
		}
	}
	return baseName(e.nodeText(node))
}

func (e *extractor) nodeText(node *sitter.Node) string {
	return node.Content(e.content)
}

// Helper functions

func isComment(n *sitter.Node) bool {
	return n.Type() == "line_comment" || n.Type() == "block_comment"
}

func hasModifier(modifiers, mod string) bool {
	for _, m := range strings.Fields(modifiers) {
		if m == mod {
			return true
		}
	}
	return false
}

// baseName strips package qualifiers and type arguments from a type name.
func baseName(s string) string {
	if i := strings.Index(s, "<"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// cleanJavaString removes surrounding quotes from a Java string literal.
func cleanJavaString(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
