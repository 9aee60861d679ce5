// Package metrics computes size and complexity figures for Java method
// source, such as the snippets extracted along a call chain.
package metrics

import (
	"regexp"
	"strings"

	"github.com/imyousuf/javanav/internal/navigator"
)

// Counts holds the figures for one piece of source.
type Counts struct {
	// Complexity is the cyclomatic complexity: 1 plus one per branch point.
	Complexity   int `json:"cyclomatic_complexity"`
	Lines        int `json:"lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`
	Todos        int `json:"todo_count"`
	Fixmes       int `json:"fixme_count"`
	Hacks        int `json:"hack_count"`
}

// Add accumulates o into c. Complexities add up as well, which gives the
// number of independent paths if every call were inlined.
func (c *Counts) Add(o Counts) {
	c.Complexity += o.Complexity
	c.Lines += o.Lines
	c.CodeLines += o.CodeLines
	c.CommentLines += o.CommentLines
	c.BlankLines += o.BlankLines
	c.Todos += o.Todos
	c.Fixmes += o.Fixmes
	c.Hacks += o.Hacks
}

// Method is the figures of one chain function.
type Method struct {
	Function  string `json:"function_name"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Counts
}

// Report covers every function of a chain.
type Report struct {
	StartPoint string   `json:"start_point"`
	Methods    []Method `json:"functions"`
	Total      Counts   `json:"total"`
	// MaxComplexity names the most complex function.
	MaxComplexity string `json:"max_complexity_function,omitempty"`
}

// Chain measures every snippet, in chain order.
func Chain(startPoint string, snippets []navigator.Snippet) Report {
	r := Report{StartPoint: startPoint, Methods: make([]Method, 0, len(snippets))}
	best := 0
	for _, s := range snippets {
		m := Method{
			Function:  s.Function,
			FilePath:  s.FilePath,
			StartLine: s.StartLine,
			EndLine:   s.EndLine,
			Counts:    Compute(s.CodeContents),
		}
		if m.Complexity > best {
			best = m.Complexity
			r.MaxComplexity = m.Function
		}
		r.Total.Add(m.Counts)
		r.Methods = append(r.Methods, m)
	}
	return r
}

var (
	branchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bif\b`),
		regexp.MustCompile(`\bcase\b`),
		regexp.MustCompile(`\bfor\b`),
		regexp.MustCompile(`\bwhile\b`),
		regexp.MustCompile(`\bcatch\b`),
		regexp.MustCompile(`&&`),
		regexp.MustCompile(`\|\|`),
	}

	todoPattern  = regexp.MustCompile(`(?i)\bTODO\b`)
	fixmePattern = regexp.MustCompile(`(?i)\bFIXME\b`)
	hackPattern  = regexp.MustCompile(`(?i)\bHACK\b`)

	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	literal      = regexp.MustCompile(`"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'`)
)

// Compute measures a piece of Java source.
func Compute(source string) Counts {
	var c Counts
	c.Todos = len(todoPattern.FindAllStringIndex(source, -1))
	c.Fixmes = len(fixmePattern.FindAllStringIndex(source, -1))
	c.Hacks = len(hackPattern.FindAllStringIndex(source, -1))

	// Literals go first so "//" inside a string is not taken for a comment.
	code := literal.ReplaceAllString(source, `""`)
	code = blockComment.ReplaceAllString(code, "")
	code = lineComment.ReplaceAllString(code, "")
	c.Complexity = 1
	for _, p := range branchPatterns {
		c.Complexity += len(p.FindAllStringIndex(code, -1))
	}

	countLines(&c, source)
	return c
}

// countLines classifies every line as blank, comment or code.
func countLines(c *Counts, source string) {
	lines := strings.Split(source, "\n")
	// Trim trailing empty line from final newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	c.Lines = len(lines)

	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			c.BlankLines++
		case inBlock:
			c.CommentLines++
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
		case strings.HasPrefix(trimmed, "/*"):
			c.CommentLines++
			if !strings.Contains(trimmed[2:], "*/") {
				inBlock = true
			}
		case strings.HasPrefix(trimmed, "//"):
			c.CommentLines++
		}
	}
	c.CodeLines = c.Lines - c.BlankLines - c.CommentLines
}
