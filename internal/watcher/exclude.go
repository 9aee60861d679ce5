package watcher

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Matcher decides which paths under a source root are excluded. Rules come
// from configured patterns, anchored at the root, and from .gitignore files
// found below it. Later rules override earlier ones, as in git.
type Matcher struct {
	root  string
	rules []ignoreRule
}

type ignoreRule struct {
	pattern  string
	negation bool
	dirOnly  bool
	basePath string
}

// NewMatcher creates a matcher for root from gitignore-style patterns.
func NewMatcher(root string, patterns []string) *Matcher {
	m := &Matcher{root: root}
	for _, p := range patterns {
		if r, ok := parsePattern(p, root); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// LoadGitIgnore appends the rules of every .gitignore file below the root.
func (m *Matcher) LoadGitIgnore() error {
	if m.root == "" {
		return nil
	}
	return filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == ".gitignore" {
			rules, loadErr := loadGitIgnoreFile(path)
			if loadErr == nil {
				m.rules = append(m.rules, rules...)
			}
		}
		return nil
	})
}

// Len returns the number of loaded rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Match reports whether path is excluded. isDir tells whether path itself
// is a directory; files inside an excluded directory are excluded too.
func (m *Matcher) Match(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	matched := false
	for _, r := range m.rules {
		if r.matches(path, isDir) {
			matched = !r.negation
		}
	}
	return matched
}

func loadGitIgnoreFile(path string) ([]ignoreRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Dir(path)
	var rules []ignoreRule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if r, ok := parsePattern(scanner.Text(), base); ok {
			rules = append(rules, r)
		}
	}
	return rules, scanner.Err()
}

func parsePattern(line, base string) (ignoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}
	r := ignoreRule{basePath: base}
	if strings.HasPrefix(line, "!") {
		r.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	r.pattern = strings.TrimPrefix(line, "/")
	return r, r.pattern != ""
}

func (r ignoreRule) matches(path string, isDir bool) bool {
	rel := path
	if r.basePath != "" {
		var err error
		rel, err = filepath.Rel(r.basePath, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false
		}
	}
	parts := splitPath(rel)
	if len(parts) == 0 {
		return false
	}

	// Only the last component may be a file; every earlier one is a directory.
	last := len(parts) - 1
	if !strings.Contains(r.pattern, "/") {
		for i, part := range parts {
			if i == last && r.dirOnly && !isDir {
				break
			}
			if ok, _ := filepath.Match(r.pattern, part); ok {
				return true
			}
		}
		return false
	}

	pattern := splitPath(r.pattern)
	// A match on a leading run of directories excludes everything below it.
	for n := 1; n <= len(parts); n++ {
		if n-1 == last && r.dirOnly && !isDir {
			break
		}
		if matchParts(pattern, parts[:n]) {
			return true
		}
	}
	return false
}

func matchParts(patternParts, pathParts []string) bool {
	if len(patternParts) == 0 {
		return len(pathParts) == 0
	}
	if patternParts[0] == "**" {
		// ** matches zero or more directories.
		for i := 0; i <= len(pathParts); i++ {
			if matchParts(patternParts[1:], pathParts[i:]) {
				return true
			}
		}
		return false
	}
	if len(pathParts) == 0 {
		return false
	}
	if ok, _ := filepath.Match(patternParts[0], pathParts[0]); !ok {
		return false
	}
	return matchParts(patternParts[1:], pathParts[1:])
}

func splitPath(path string) []string {
	var result []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p != "" && p != "." {
			result = append(result, p)
		}
	}
	return result
}
