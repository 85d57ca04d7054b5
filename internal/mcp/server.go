package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/saeedalam/dramarec/internal/logging"
	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/internal/worker"
	"github.com/saeedalam/dramarec/pkg/types"
)

// Options configures tool defaults and limits.
type Options struct {
	Version      string
	DefaultCount int
	MaxCount     int
	PageSize     int
	CacheSize    int
}

// Server is the MCP server
type Server struct {
	live    *recommend.Live
	watcher *worker.Manager
	opts    Options
	tools   map[string]ToolHandler
	cache   *lru.Cache[cacheKey, *types.RecommendationResult]

	out   io.Writer
	outMu sync.Mutex
	log   zerolog.Logger
}

// cacheKey ties a cached answer to the engine version that produced it.
type cacheKey struct {
	version int64
	query   string
	id      int
	count   int
}

// ToolHandler handles a tool call
type ToolHandler func(params json.RawMessage) (interface{}, error)

// Request is a JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// InitializeResult is the result of initialize
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// ServerInfo contains server information
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities contains server capabilities
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability contains tools capability
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ToolInfo describes a tool
type ToolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema describes tool input
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a property
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// NewServer creates a server answering from live. Cached recommendations are
// dropped whenever live swaps engines.
func NewServer(live *recommend.Live, opts Options) (*Server, error) {
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = 5
	}
	if opts.MaxCount < opts.DefaultCount {
		opts.MaxCount = opts.DefaultCount
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	cache, err := lru.New[cacheKey, *types.RecommendationResult](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}

	s := &Server{
		live:  live,
		opts:  opts,
		tools: make(map[string]ToolHandler),
		cache: cache,
		log:   logging.With().Str("component", "mcp").Logger(),
	}

	live.OnSwap(func(*recommend.Engine) {
		s.cache.Purge()
	})

	s.registerTools()
	return s, nil
}

// SetWatcher enables the reload tool and includes watcher stats in get_stats.
func (s *Server) SetWatcher(m *worker.Manager) {
	s.watcher = m
}

func (s *Server) registerTools() {
	s.tools["recommend"] = s.handleRecommend
	s.tools["resolve"] = s.handleResolve
	s.tools["top_rated"] = s.handleTopRated
	s.tools["search"] = s.handleSearch
	s.tools["get_item"] = s.handleGetItem
	s.tools["get_stats"] = s.handleGetStats
	s.tools["reload"] = s.handleReload
}

// Run serves newline-delimited JSON-RPC requests from in until EOF.
func (s *Server) Run(in io.Reader, out io.Writer) error {
	s.out = out

	scanner := bufio.NewScanner(in)
	// Increase buffer size for large messages
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			// Clients reject error responses with a null id
			s.log.Warn().Err(err).Msg("Parse error")
			continue
		}

		s.handleRequest(&req)
	}

	if err := scanner.Err(); err != nil {
		s.log.Error().Err(err).Msg("Scanner error")
		return err
	}
	return nil
}

func (s *Server) handleRequest(req *Request) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// No response needed
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(req)
	default:
		s.sendError(req.ID, codeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) {
	result := InitializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo: ServerInfo{
			Name:    "dramarec",
			Version: s.opts.Version,
		},
		Capabilities: Capabilities{
			Tools: &ToolsCapability{
				ListChanged: false,
			},
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsCall(req *Request) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	handler, ok := s.tools[params.Name]
	if !ok {
		s.sendError(req.ID, codeMethodNotFound, "Tool not found", params.Name)
		return
	}

	result, err := handler(params.Arguments)
	if err != nil {
		s.log.Debug().Str("tool", params.Name).Err(err).Msg("Tool failed")
		s.sendResult(req.ID, map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": fmt.Sprintf("Error: %v", err),
				},
			},
			"isError": true,
		})
		return
	}

	// Format result as text content
	resultJSON, _ := json.MarshalIndent(result, "", "  ")

	s.sendResult(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(resultJSON),
			},
		},
	})
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	s.send(resp)
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	// Don't send error responses for notifications (null/nil ID)
	if id == nil {
		s.log.Warn().Int("code", code).Interface("data", data).Msg(message)
		return
	}
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	s.send(resp)
}

func (s *Server) send(resp Response) {
	output, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("Encoding response")
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, string(output))
}
