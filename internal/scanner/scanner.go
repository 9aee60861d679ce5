// Package scanner locates the Java source root of a project and lists the
// source files below it.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imyousuf/javanav/internal/watcher"
)

var (
	// ErrNoProjectRoot is returned when the project directory does not exist.
	ErrNoProjectRoot = errors.New("project root not found")
	// ErrNoSourceRoot is returned when neither src/main/java nor src exists.
	ErrNoSourceRoot = errors.New("no source directory found")
)

// JavaExt is the only extension the scanner keeps.
const JavaExt = ".java"

// prunedDirs are skipped wherever they appear, compared case-insensitively.
var prunedDirs = map[string]bool{
	"test":      true,
	"tests":     true,
	"resource":  true,
	"resources": true,
	"target":    true,
	"build":     true,
}

// SourceRoot returns <projectRoot>/src/main/java when it exists, else
// <projectRoot>/src.
func SourceRoot(projectRoot string) (string, error) {
	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNoProjectRoot, projectRoot)
	}
	for _, candidate := range []string{
		filepath.Join(projectRoot, "src", "main", "java"),
		filepath.Join(projectRoot, "src"),
	} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w under %s (looked for src/main/java and src)", ErrNoSourceRoot, projectRoot)
}

// Scanner walks a source root for Java files.
type Scanner struct {
	matcher *watcher.Matcher
	log     zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMatcher adds user exclusion rules on top of the built-in pruning.
func WithMatcher(m *watcher.Matcher) Option {
	return func(s *Scanner) { s.matcher = m }
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns every .java file below root in sorted order.
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if Pruned(d.Name()) || s.matcher.Match(path, true) {
				s.log.Debug().Str("dir", path).Msg("pruned")
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), JavaExt) {
			return nil
		}
		if s.matcher.Match(path, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Pruned reports whether a directory with this name is never descended into.
func Pruned(name string) bool {
	return prunedDirs[strings.ToLower(name)]
}
