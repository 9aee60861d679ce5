// Package indexer turns a list of Java source files into a resolved symbol
// table: files are parsed in parallel, folded serially in path order, and
// their call tokens resolved.
package indexer

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/graph/embedded"
	"github.com/imyousuf/javanav/internal/parser"
	"github.com/imyousuf/javanav/internal/parser/java"
	"github.com/imyousuf/javanav/internal/watcher"
)

// ParseCache stores parse results keyed by file path and content hash.
// *embedded.Cache satisfies it.
type ParseCache interface {
	Get(path, hash string) (*parser.ParseResult, bool, error)
	Put(path, hash string, result *parser.ParseResult) error
}

// Config holds configuration for the Indexer.
type Config struct {
	Registry *parser.Registry // defaults to DefaultRegistry()
	Cache    ParseCache       // optional
	// Workers bounds parallel parsing; zero means GOMAXPROCS.
	Workers        int
	QualifyClasses bool
	Logger         zerolog.Logger
}

// Stats holds statistics about the last indexing pass.
type Stats struct {
	Files    int           `json:"files"`
	Parsed   int           `json:"parsed"`
	Cached   int           `json:"cached"`
	Failed   int           `json:"failed"`
	Classes  int           `json:"classes"`
	Methods  int           `json:"methods"`
	Warnings []string      `json:"warnings,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Index is the immutable outcome of an indexing pass.
type Index struct {
	// Results holds the per-file parse results in fold order.
	Results []*parser.ParseResult
	// Raw is the folded table before call resolution.
	Raw *graph.SymbolTable
	// Table is the resolved table every query runs against.
	Table *graph.SymbolTable
	Stats Stats
}

// Indexer parses source files and keeps the latest result per file so
// watch mode can re-parse only what changed.
type Indexer struct {
	registry *parser.Registry
	cache    ParseCache
	workers  int
	qualify  bool
	log      zerolog.Logger

	mu      sync.Mutex
	results map[string]*parser.ParseResult
	errors  map[string]string
	parsed  int
	cached  int
}

// DefaultRegistry returns a registry with the Java parser registered.
func DefaultRegistry(opts ...java.Option) *parser.Registry {
	r := parser.NewRegistry()
	r.Register(java.NewParser(opts...))
	return r
}

// NewIndexer creates a new Indexer with the given configuration.
func NewIndexer(cfg Config) *Indexer {
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Indexer{
		registry: registry,
		cache:    cfg.Cache,
		workers:  workers,
		qualify:  cfg.QualifyClasses,
		log:      cfg.Logger,
		results:  make(map[string]*parser.ParseResult),
		errors:   make(map[string]string),
	}
}

// IndexFiles parses every file and returns the resolved index. Files that
// fail to read or parse are logged and skipped; only cancellation of ctx
// is returned as an error.
func (idx *Indexer) IndexFiles(ctx context.Context, files []string) (*Index, error) {
	start := time.Now()

	idx.mu.Lock()
	idx.results = make(map[string]*parser.ParseResult, len(files))
	idx.errors = make(map[string]string)
	idx.parsed, idx.cached = 0, 0
	idx.mu.Unlock()

	if err := idx.parseAll(ctx, files); err != nil {
		return nil, err
	}
	return idx.snapshot(start), nil
}

// Apply updates the index for a batch of watched changes: created or
// written files are re-parsed, removed or renamed files are dropped.
func (idx *Indexer) Apply(ctx context.Context, changes []watcher.Change) (*Index, error) {
	start := time.Now()

	var reparse []string
	idx.mu.Lock()
	idx.parsed, idx.cached = 0, 0
	for _, c := range changes {
		switch c.Op {
		case watcher.Create, watcher.Write:
			reparse = append(reparse, c.Path)
		case watcher.Remove, watcher.Rename:
			delete(idx.results, c.Path)
			delete(idx.errors, c.Path)
		}
	}
	idx.mu.Unlock()

	if err := idx.parseAll(ctx, reparse); err != nil {
		return nil, err
	}
	return idx.snapshot(start), nil
}

func (idx *Indexer) parseAll(ctx context.Context, files []string) error {
	type outcome struct {
		result *parser.ParseResult
		cached bool
		err    error
	}
	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			r, cached, err := idx.parseFile(path)
			outcomes[i] = outcome{result: r, cached: cached, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("index cancelled: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, path := range files {
		o := outcomes[i]
		if o.err != nil {
			idx.log.Warn().Err(o.err).Str("file", path).Msg("skipping file")
			delete(idx.results, path)
			idx.errors[path] = o.err.Error()
			continue
		}
		if o.result == nil {
			continue
		}
		delete(idx.errors, path)
		idx.results[path] = o.result
		if o.cached {
			idx.cached++
		} else {
			idx.parsed++
		}
	}
	return nil
}

// parseFile reads and parses one file, consulting the cache first.
func (idx *Indexer) parseFile(path string) (*parser.ParseResult, bool, error) {
	p, ok := idx.registry.ForFile(path)
	if !ok {
		return nil, false, nil // no parser for this extension
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}

	var hash string
	if idx.cache != nil {
		var settings string
		if c, ok := p.(parser.Configured); ok {
			settings = c.Settings()
		}
		hash = embedded.HashWith(settings, content)
		r, hit, err := idx.cache.Get(path, hash)
		if err != nil {
			idx.log.Debug().Err(err).Str("file", path).Msg("cache read failed")
		} else if hit {
			return r, true, nil
		}
	}

	result, err := p.ParseFile(path, content)
	if err != nil {
		return nil, false, fmt.Errorf("parse: %w", err)
	}
	if result.Recovered {
		idx.log.Warn().Str("file", path).Msg("syntax errors; type recovered from source text")
	}

	if idx.cache != nil {
		if err := idx.cache.Put(path, hash, result); err != nil {
			idx.log.Debug().Err(err).Str("file", path).Msg("cache write failed")
		}
	}
	return result, false, nil
}

// snapshot folds the current per-file results in sorted path order and
// resolves the resulting table.
func (idx *Indexer) snapshot(start time.Time) *Index {
	idx.mu.Lock()
	paths := make([]string, 0, len(idx.results))
	for p := range idx.results {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	results := make([]*parser.ParseResult, len(paths))
	for i, p := range paths {
		results[i] = idx.results[p]
	}
	failed := make([]string, 0, len(idx.errors))
	for p, msg := range idx.errors {
		failed = append(failed, p+": "+msg)
	}
	sort.Strings(failed)
	stats := Stats{
		Files:  len(paths) + len(failed),
		Parsed: idx.parsed,
		Cached: idx.cached,
		Failed: len(failed),
		Errors: failed,
	}
	idx.mu.Unlock()

	b := graph.NewBuilder(graph.WithQualifiedClasses(idx.qualify), graph.WithLogger(idx.log))
	for _, r := range results {
		for _, c := range r.Classes {
			b.Add(c)
		}
	}
	raw := b.Build()
	table := graph.Resolve(raw, idx.log)

	stats.Classes = len(table.ClassNames())
	stats.Methods = table.Len()
	stats.Warnings = table.Warnings()
	stats.Elapsed = time.Since(start)

	idx.log.Debug().
		Int("files", stats.Files).
		Int("parsed", stats.Parsed).
		Int("cached", stats.Cached).
		Int("failed", stats.Failed).
		Int("methods", stats.Methods).
		Dur("elapsed", stats.Elapsed).
		Msg("index built")

	return &Index{Results: results, Raw: raw, Table: table, Stats: stats}
}
