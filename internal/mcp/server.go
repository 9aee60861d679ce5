// Package mcp exposes call-chain analysis as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/metrics"
	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
)

const serverName = "javanav"

// Server wraps the MCP server with tool handlers. Loaded projects are kept
// in memory and reused until a caller asks for a reload.
type Server struct {
	mcp         *mcp.Server
	nav         *navigator.Navigator
	defaultRoot string
	maxDepth    int
	log         zerolog.Logger

	mu       sync.Mutex
	projects map[string]*navigator.Project
}

// Config configures a Server.
type Config struct {
	Navigator *navigator.Navigator
	// DefaultRoot is used when a tool call names no project_root.
	DefaultRoot string
	MaxDepth    int
	Version     string
	Logger      zerolog.Logger
}

// NewServer creates an MCP server with all tools registered.
func NewServer(cfg Config) *Server {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = graph.DefaultMaxDepth
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{
		mcp:         mcp.NewServer(&mcp.Implementation{Name: serverName, Version: cfg.Version}, nil),
		nav:         cfg.Navigator,
		defaultRoot: cfg.DefaultRoot,
		maxDepth:    cfg.MaxDepth,
		log:         cfg.Logger,
		projects:    make(map[string]*navigator.Project),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves tool calls over stdin and stdout until ctx is done or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "analyze_call_chain",
		Description: "Build the call chain below a Java method or REST endpoint. The start point may be Class.method, a bare method name or part of an endpoint path. Returns a Mermaid flowchart and the chain's functions, or the list of available functions when nothing matches.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"start_point": {
					"type": "string",
					"description": "Class.method, method name, or endpoint path such as /api/users/{id}"
				},
				"project_root": {
					"type": "string",
					"description": "Project directory containing src/main/java or src. Defaults to the server's project."
				},
				"max_depth": {
					"type": "integer",
					"description": "Maximum chain depth (default 10)"
				},
				"reload": {
					"type": "boolean",
					"description": "Re-scan the project before analyzing"
				}
			},
			"required": ["start_point"]
		}`),
	}, s.handleAnalyze)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_functions",
		Description: "List every indexed method of a Java project with its REST endpoint, if any.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_root": {"type": "string", "description": "Project directory. Defaults to the server's project."},
				"rest_only": {"type": "boolean", "description": "Only list REST endpoints"}
			}
		}`),
	}, s.handleListFunctions)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_classes",
		Description: "List the classes of a Java project with their endpoints, method counts and dependencies.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_root": {"type": "string", "description": "Project directory. Defaults to the server's project."},
				"rest_only": {"type": "boolean", "description": "Only list REST controllers"}
			}
		}`),
	}, s.handleListClasses)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "extract_code",
		Description: "Return the source text of every method in the call chain below a start point.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"start_point": {"type": "string", "description": "Class.method, method name, or endpoint path"},
				"project_root": {"type": "string", "description": "Project directory. Defaults to the server's project."},
				"max_depth": {"type": "integer", "description": "Maximum chain depth (default 10)"}
			},
			"required": ["start_point"]
		}`),
	}, s.handleExtract)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "chain_metrics",
		Description: "Measure cyclomatic complexity, line counts and TODO markers of every method in the call chain below a start point.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"start_point": {"type": "string", "description": "Class.method, method name, or endpoint path"},
				"project_root": {"type": "string", "description": "Project directory. Defaults to the server's project."},
				"max_depth": {"type": "integer", "description": "Maximum chain depth (default 10)"}
			},
			"required": ["start_point"]
		}`),
	}, s.handleMetrics)
}

// project returns the loaded project for root, loading it on first use.
func (s *Server) project(ctx context.Context, root string, reload bool) (*navigator.Project, error) {
	if root == "" {
		root = s.defaultRoot
	}
	if root == "" {
		return nil, fmt.Errorf("project_root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[abs]; ok && !reload {
		return p, nil
	}
	p, err := s.nav.Load(ctx, abs)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("project", abs).Int("methods", p.Table().Len()).Msg("project loaded")
	s.projects[abs] = p
	return p, nil
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	start := getStringArg(args, "start_point")
	if start == "" {
		return errResult("start_point is required"), nil
	}
	p, err := s.project(ctx, getStringArg(args, "project_root"), getBoolArg(args, "reload"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	diagram, result := p.Analyze(start, getIntArg(args, "max_depth", s.maxDepth))
	if !result.Found() {
		res := jsonResult(result)
		res.IsError = true
		return res, nil
	}
	return jsonResult(map[string]any{
		"mermaid": diagram,
		"result":  result,
	}), nil
}

func (s *Server) handleListFunctions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	p, err := s.project(ctx, getStringArg(args, "project_root"), false)
	if err != nil {
		return errResult(err.Error()), nil
	}

	entries := navigator.Available(p.Table())
	if getBoolArg(args, "rest_only") {
		rest := entries[:0]
		for _, e := range entries {
			if e.Type == navigator.KindREST {
				rest = append(rest, e)
			}
		}
		entries = rest
	}
	return jsonResult(map[string]any{
		"total":     len(entries),
		"functions": entries,
	}), nil
}

func (s *Server) handleListClasses(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	p, err := s.project(ctx, getStringArg(args, "project_root"), false)
	if err != nil {
		return errResult(err.Error()), nil
	}

	classes := render.Classes(p.Table())
	if getBoolArg(args, "rest_only") {
		classes = render.RestControllers(p.Table())
	}
	return jsonResult(map[string]any{
		"total":   len(classes),
		"classes": classes,
	}), nil
}

func (s *Server) handleExtract(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	start := getStringArg(args, "start_point")
	if start == "" {
		return errResult("start_point is required"), nil
	}
	p, err := s.project(ctx, getStringArg(args, "project_root"), false)
	if err != nil {
		return errResult(err.Error()), nil
	}

	_, result := p.Analyze(start, getIntArg(args, "max_depth", s.maxDepth))
	snippets, err := navigator.Extract(result, s.log)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(snippets), nil
}

func (s *Server) handleMetrics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	start := getStringArg(args, "start_point")
	if start == "" {
		return errResult("start_point is required"), nil
	}
	p, err := s.project(ctx, getStringArg(args, "project_root"), false)
	if err != nil {
		return errResult(err.Error()), nil
	}

	_, result := p.Analyze(start, getIntArg(args, "max_depth", s.maxDepth))
	snippets, err := navigator.Extract(result, s.log)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(metrics.Chain(result.TargetFunction, snippets)), nil
}

// jsonResult marshals data as the text content of a tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

func getStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// getIntArg extracts an integer argument; JSON numbers decode as float64.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	f, ok := args[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(f)
}

func getBoolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
