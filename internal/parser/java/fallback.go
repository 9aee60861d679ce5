package java

import (
	"regexp"
	"strings"

	"github.com/imyousuf/javanav/internal/graph"
)

var (
	typeHeaderRe = regexp.MustCompile(`(?m)^[ \t]*((?:(?:public|protected|private|abstract|final|static|sealed|strictfp)\s+)*)(class|interface|enum|record)\s+([A-Za-z_$][\w$]*)`)
	packageRe    = regexp.MustCompile(`(?m)^[ \t]*package\s+([\w.]+)\s*;`)
)

// recoverType scans the raw text for a type header when the syntax tree
// is too damaged to yield one. Only the type name, visibility and span
// are recovered.
func (e *extractor) recoverType() *graph.ClassRecord {
	m := typeHeaderRe.FindSubmatchIndex(e.content)
	if m == nil {
		return nil
	}
	pkg := e.pkgName
	if pkg == "" {
		if pm := packageRe.FindSubmatch(e.content); pm != nil {
			pkg = string(pm[1])
		}
	}

	c := &graph.ClassRecord{
		Name:      string(e.content[m[6]:m[7]]),
		Kind:      graph.ClassKind(e.content[m[4]:m[5]]),
		FilePath:  e.filePath,
		StartLine: e.lines.line(m[0]),
		EndLine:   e.lines.count(),
		IsPublic:  strings.Contains(string(e.content[m[2]:m[3]]), "public"),
		Package:   pkg,
		Imports:   e.imports,
	}
	if off, ok := blockEnd(e.content, m[1]); ok {
		c.EndLine = e.lines.line(off)
	}
	return c
}
