package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps file extensions to the parser that handles them.
type Registry struct {
	mu       sync.RWMutex
	parsers  map[Language]Parser
	extIndex map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:  make(map[Language]Parser),
		extIndex: make(map[string]Parser),
	}
}

// Register adds a parser, indexing it by language and file extensions.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers[p.Language()] = p
	for _, ext := range p.Extensions() {
		r.extIndex[strings.ToLower(ext)] = p
	}
}

// ForFile returns the parser responsible for path, matched by extension.
func (r *Registry) ForFile(path string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.extIndex[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// Extensions returns every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extIndex))
	for ext := range r.extIndex {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
