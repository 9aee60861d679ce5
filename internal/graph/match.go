package graph

import (
	"sort"
	"strings"
)

// MatchKind names the start-point strategy that produced a match.
type MatchKind string

const (
	MatchExact  MatchKind = "exact"
	MatchSuffix MatchKind = "suffix"
	MatchPath   MatchKind = "path"
)

// Match finds the methods a user-supplied start point refers to. The
// strategies are tried in order (exact key, ".name" suffix, endpoint path
// substring) and the first one with any hit wins. Hits are sorted by file,
// start line and key so the first element is a stable target.
func Match(t *SymbolTable, input string) ([]string, MatchKind) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ""
	}
	if _, ok := t.methods[input]; ok {
		return []string{input}, MatchExact
	}

	var hits []string
	suffix := "." + input
	for _, key := range t.keys {
		if strings.HasSuffix(key, suffix) {
			hits = append(hits, key)
		}
	}
	if len(hits) > 0 {
		sortMatches(t, hits)
		return hits, MatchSuffix
	}

	for _, key := range t.keys {
		m := t.methods[key]
		if m.IsEndpoint && m.EndpointPath != "" && strings.Contains(m.EndpointPath, input) {
			hits = append(hits, key)
		}
	}
	if len(hits) > 0 {
		sortMatches(t, hits)
		return hits, MatchPath
	}
	return nil, ""
}

func sortMatches(t *SymbolTable, keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := t.methods[keys[i]], t.methods[keys[j]]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return keys[i] < keys[j]
	})
}
