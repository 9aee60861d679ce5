package java

import "sort"

// scanState tracks which lexical region the brace scanner is inside.
type scanState int

const (
	stCode scanState = iota
	stLineComment
	stBlockComment
	stString
	stChar
	stTextBlock
)

// blockEnd finds the first '{' at or after from, outside literals and
// comments, and returns the offset of the '}' that brings the balance back
// to zero. The second result is false when the balance is never restored.
func blockEnd(src []byte, from int) (int, bool) {
	depth := 0
	opened := false
	st := stCode

	for i := from; i < len(src); i++ {
		c := src[i]
		switch st {
		case stLineComment:
			if c == '\n' {
				st = stCode
			}
			continue
		case stBlockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				st = stCode
				i++
			}
			continue
		case stString, stChar:
			if c == '\\' {
				i++
				continue
			}
			if (st == stString && c == '"') || (st == stChar && c == '\'') || c == '\n' {
				st = stCode
			}
			continue
		case stTextBlock:
			if c == '\\' {
				i++
				continue
			}
			if hasPrefixAt(src, i, `"""`) {
				st = stCode
				i += 2
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(src) {
				switch src[i+1] {
				case '/':
					st = stLineComment
					i++
				case '*':
					st = stBlockComment
					i++
				}
			}
		case '"':
			if hasPrefixAt(src, i, `"""`) {
				st = stTextBlock
				i += 2
			} else {
				st = stString
			}
		case '\'':
			st = stChar
		case '{':
			depth++
			opened = true
		case '}':
			if !opened {
				continue
			}
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func hasPrefixAt(src []byte, i int, prefix string) bool {
	if i+len(prefix) > len(src) {
		return false
	}
	return string(src[i:i+len(prefix)]) == prefix
}

// lineIndex converts byte offsets to 1-based line numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// line returns the 1-based line holding offset.
func (l *lineIndex) line(offset int) int {
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
}

// count returns the number of lines in the source.
func (l *lineIndex) count() int {
	return len(l.starts)
}
