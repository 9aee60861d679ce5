// Package export loads a resolved symbol table into external graph stores.
package export

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/imyousuf/javanav/internal/graph"
)

// DefaultBatchSize bounds the rows sent with one UNWIND statement.
const DefaultBatchSize = 500

// Statement is one parameterized Cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Runner executes Cypher statements.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// Neo4jRunner runs statements through a neo4j driver.
type Neo4jRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// Connect opens a driver for uri and verifies connectivity.
func Connect(ctx context.Context, uri, user, password, database string) (*Neo4jRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to %s: %w", uri, err)
	}
	return &Neo4jRunner{driver: driver, database: database}, nil
}

// Run executes a single statement and discards its records.
func (r *Neo4jRunner) Run(ctx context.Context, cypher string, params map[string]any) error {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if r.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(r.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	return err
}

// Close releases the driver.
func (r *Neo4jRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Exporter writes JavaClass and JavaMethod nodes with HAS_METHOD and CALLS
// relationships.
type Exporter struct {
	runner    Runner
	batchSize int
	clean     bool
	log       zerolog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithBatchSize sets the UNWIND batch size.
func WithBatchSize(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithClean removes previously exported nodes before loading.
func WithClean(clean bool) Option {
	return func(e *Exporter) { e.clean = clean }
}

// WithLogger sets the exporter logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// NewExporter creates an exporter running statements through r.
func NewExporter(r Runner, opts ...Option) *Exporter {
	e := &Exporter{runner: r, batchSize: DefaultBatchSize, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportStats counts what was written.
type ExportStats struct {
	Classes    int `json:"classes"`
	Methods    int `json:"methods"`
	Calls      int `json:"calls"`
	Statements int `json:"statements"`
}

// Export loads t into the store.
func (e *Exporter) Export(ctx context.Context, t *graph.SymbolTable) (ExportStats, error) {
	stmts, stats := e.Statements(t)
	for i, s := range stmts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := e.runner.Run(ctx, s.Cypher, s.Params); err != nil {
			return stats, fmt.Errorf("statement %d of %d: %w", i+1, len(stmts), err)
		}
	}
	stats.Statements = len(stmts)
	e.log.Info().Int("classes", stats.Classes).Int("methods", stats.Methods).
		Int("calls", stats.Calls).Msg("exported to neo4j")
	return stats, nil
}

var (
	cleanQueries = []string{
		"MATCH (n:JavaMethod) DETACH DELETE n",
		"MATCH (n:JavaClass) DETACH DELETE n",
	}
	indexQueries = []string{
		"CREATE INDEX java_class_name IF NOT EXISTS FOR (n:JavaClass) ON (n.name)",
		"CREATE INDEX java_method_key IF NOT EXISTS FOR (n:JavaMethod) ON (n.key)",
	}
)

const (
	classQuery = `UNWIND $batch AS row
MERGE (c:JavaClass {name: row.name})
SET c.kind = row.kind, c.package = row.package, c.file = row.file,
    c.start_line = row.start_line, c.end_line = row.end_line,
    c.is_public = row.is_public, c.is_rest_endpoint = row.is_rest_endpoint,
    c.endpoint_path = row.endpoint_path, c.http_method = row.http_method`

	methodQuery = `UNWIND $batch AS row
MERGE (m:JavaMethod {key: row.key})
SET m.name = row.name, m.class_name = row.class_name, m.file = row.file,
    m.start_line = row.start_line, m.end_line = row.end_line,
    m.is_public = row.is_public, m.is_rest_endpoint = row.is_rest_endpoint,
    m.endpoint_path = row.endpoint_path, m.http_method = row.http_method
WITH m, row
MATCH (c:JavaClass {name: row.class_name})
MERGE (c)-[:HAS_METHOD]->(m)`

	callQuery = `UNWIND $batch AS row
MATCH (caller:JavaMethod {key: row.caller}), (callee:JavaMethod {key: row.callee})
MERGE (caller)-[r:CALLS]->(callee)
SET r.position = row.position`
)

// Statements builds the statements Export would run, in order: optional
// cleanup, indexes, then batched classes, methods and calls.
func (e *Exporter) Statements(t *graph.SymbolTable) ([]Statement, ExportStats) {
	var stmts []Statement
	if e.clean {
		for _, q := range cleanQueries {
			stmts = append(stmts, Statement{Cypher: q})
		}
	}
	for _, q := range indexQueries {
		stmts = append(stmts, Statement{Cypher: q})
	}

	var stats ExportStats
	var classes []map[string]any
	for _, name := range t.ClassNames() {
		c, _ := t.Class(name)
		classes = append(classes, map[string]any{
			"name":             name,
			"kind":             string(c.Kind),
			"package":          c.Package,
			"file":             c.FilePath,
			"start_line":       c.StartLine,
			"end_line":         c.EndLine,
			"is_public":        c.IsPublic,
			"is_rest_endpoint": c.IsEndpoint,
			"endpoint_path":    c.EndpointPath,
			"http_method":      string(c.HTTPMethod),
		})
	}
	stats.Classes = len(classes)
	stmts = append(stmts, e.batched(classQuery, classes)...)

	var methods, calls []map[string]any
	for _, key := range t.SortedKeys() {
		m, _ := t.Method(key)
		methods = append(methods, map[string]any{
			"key":              key,
			"name":             m.Name,
			"class_name":       m.ClassName,
			"file":             m.FilePath,
			"start_line":       m.StartLine,
			"end_line":         m.EndLine,
			"is_public":        m.IsPublic,
			"is_rest_endpoint": m.IsEndpoint,
			"endpoint_path":    m.EndpointPath,
			"http_method":      string(m.HTTPMethod),
		})
		for i, callee := range m.Calls {
			calls = append(calls, map[string]any{"caller": key, "callee": callee, "position": i})
		}
	}
	stats.Methods = len(methods)
	stats.Calls = len(calls)
	stmts = append(stmts, e.batched(methodQuery, methods)...)
	stmts = append(stmts, e.batched(callQuery, calls)...)
	return stmts, stats
}

func (e *Exporter) batched(cypher string, rows []map[string]any) []Statement {
	var out []Statement
	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))
		out = append(out, Statement{Cypher: cypher, Params: map[string]any{"batch": rows[start:end]}})
	}
	return out
}
