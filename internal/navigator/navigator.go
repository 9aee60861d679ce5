// Package navigator is the engine entry point: it loads a Java project,
// resolves a start point and renders the call chain below it.
package navigator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/indexer"
	"github.com/imyousuf/javanav/internal/parser/java"
	"github.com/imyousuf/javanav/internal/render"
	"github.com/imyousuf/javanav/internal/scanner"
	"github.com/imyousuf/javanav/internal/watcher"
)

// Options configures a Navigator.
type Options struct {
	// Workers bounds parallel parsing; zero means GOMAXPROCS.
	Workers        int
	QualifyClasses bool
	// MethodSpanFallback is the span given to methods whose braces never
	// balance; zero means java.DefaultMethodSpanFallback.
	MethodSpanFallback int
	// Exclude holds gitignore-style patterns relative to the source root.
	Exclude []string
	// GitIgnore also applies .gitignore files found under the source root.
	GitIgnore bool
	Cache     indexer.ParseCache
	Logger    zerolog.Logger
}

// Navigator loads projects and analyzes call chains.
type Navigator struct {
	opts Options
}

// New creates a Navigator.
func New(opts Options) *Navigator {
	return &Navigator{opts: opts}
}

// Project is a loaded, indexed source tree.
type Project struct {
	Root       string
	SourceRoot string
	Files      []string
	Index      *indexer.Index

	indexer *indexer.Indexer
	matcher *watcher.Matcher
}

// Table returns the resolved symbol table of the project.
func (p *Project) Table() *graph.SymbolTable {
	return p.Index.Table
}

// Matcher returns the exclusion rules the project was scanned with.
func (p *Project) Matcher() *watcher.Matcher {
	return p.matcher
}

// Load locates the source root of projectRoot, scans it and builds the
// resolved symbol table. Only input errors and cancellation are returned;
// files that fail to parse are logged and skipped.
func (n *Navigator) Load(ctx context.Context, projectRoot string) (*Project, error) {
	src, err := scanner.SourceRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	matcher := watcher.NewMatcher(src, n.opts.Exclude)
	if n.opts.GitIgnore {
		if err := matcher.LoadGitIgnore(); err != nil {
			n.opts.Logger.Warn().Err(err).Msg("cannot load .gitignore rules")
		}
	}

	files, err := scanner.New(scanner.WithMatcher(matcher), scanner.WithLogger(n.opts.Logger)).Scan(src)
	if err != nil {
		return nil, err
	}
	n.opts.Logger.Debug().Str("source_root", src).Int("files", len(files)).Msg("scanned")

	var parserOpts []java.Option
	if n.opts.MethodSpanFallback > 0 {
		parserOpts = append(parserOpts, java.WithMethodSpanFallback(n.opts.MethodSpanFallback))
	}
	idx := indexer.NewIndexer(indexer.Config{
		Registry:       indexer.DefaultRegistry(parserOpts...),
		Cache:          n.opts.Cache,
		Workers:        n.opts.Workers,
		QualifyClasses: n.opts.QualifyClasses,
		Logger:         n.opts.Logger,
	})
	index, err := idx.IndexFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:       projectRoot,
		SourceRoot: src,
		Files:      files,
		Index:      index,
		indexer:    idx,
		matcher:    matcher,
	}, nil
}

// Refresh applies watched changes to the project's index.
func (p *Project) Refresh(ctx context.Context, changes []watcher.Change) error {
	index, err := p.indexer.Apply(ctx, changes)
	if err != nil {
		return err
	}
	p.Index = index
	return nil
}

// Analyze loads projectRoot and analyzes the chain rooted at startPoint.
// The error is non-nil only for input errors; an unmatched start point is
// reported through Result.Error.
func (n *Navigator) Analyze(ctx context.Context, startPoint, projectRoot string, maxDepth int) (string, *Result, error) {
	p, err := n.Load(ctx, projectRoot)
	if err != nil {
		return "", nil, fmt.Errorf("load project: %w", err)
	}
	diagram, result := p.Analyze(startPoint, maxDepth)
	return diagram, result, nil
}

// Analyze resolves startPoint against the project and walks its chain.
func (p *Project) Analyze(startPoint string, maxDepth int) (string, *Result) {
	if maxDepth < 0 {
		maxDepth = 0
	}
	t := p.Table()
	result := &Result{StartPoint: startPoint, MaxDepth: maxDepth}

	matches, kind := graph.Match(t, startPoint)
	if len(matches) == 0 {
		result.Error = fmt.Sprintf("no function matches %q", startPoint)
		result.AvailableFunctions = Available(t)
		return "", result
	}

	target := matches[0]
	root, ok := graph.Walk(t, target, maxDepth)
	if !ok {
		// Match only returns keys of t.
		result.Error = fmt.Sprintf("cannot build call chain for %s", target)
		return "", result
	}

	functions := render.Flatten(root)
	result.TargetFunction = target
	result.MatchKind = kind
	if len(matches) > 1 {
		result.Alternates = matches[1:]
	}
	result.TotalFunctions = len(functions)
	result.Functions = make([]Function, len(functions))
	for i, m := range functions {
		result.Functions[i] = newFunction(m)
	}
	result.Chain = root
	return render.Mermaid(root), result
}
