package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/eventable"
	"github.com/aretw0/eventable/internal/logging"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names.
const (
	ToolPrefix      = "do_"
	ToolCallAction  = "call_action"
	ToolListActions = "list_actions"
	ActionsURI      = "eventable://actions"
)

// CallResult is the JSON text returned by action tools.
type CallResult struct {
	Action string `json:"action"`
	Result any    `json:"result"`
}

// Server exposes an ActionCaller as an MCP Server.
type Server struct {
	caller    ports.ActionCaller
	mcpServer *server.MCPServer
	logger    *slog.Logger
	tools     []string
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. One "do_<action>" tool is
// registered per handler known at construction time.
func NewServer(caller ports.ActionCaller, opts ...Option) *Server {
	s := &Server{
		caller:    caller,
		mcpServer: server.NewMCPServer("eventable-mcp", strings.TrimSpace(eventable.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Tools returns the names of the registered tools.
func (s *Server) Tools() []string {
	return s.tools
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	for _, handler := range s.caller.Actions() {
		action, ok := domain.ActionFromHandler(handler)
		if !ok {
			continue
		}
		if !validToolName(ToolPrefix + action) {
			s.logger.Warn("Action has no dedicated tool, use "+ToolCallAction, "action", action)
			continue
		}
		tool := mcp.NewTool(ToolPrefix+action,
			mcp.WithDescription(fmt.Sprintf("Perform the %q action. Emits %s and %s around the handler.",
				action, domain.BeforeEvent(action), domain.AfterEvent(action))),
			mcp.WithString("params", mcp.Description("JSON array of positional parameters (optional)")),
		)
		s.addTool(tool, s.handleAction(action))
	}

	s.addTool(mcp.NewTool(ToolCallAction,
		mcp.WithDescription("Call any action by name, including ones resolved by the fallback."),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action name, e.g. publish")),
		mcp.WithString("params", mcp.Description("JSON array of positional parameters (optional)")),
	), s.handleCallAction)

	s.addTool(mcp.NewTool(ToolListActions,
		mcp.WithDescription("List the registered action handlers."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.caller.Actions())
	})
}

// validToolName reports whether name fits the MCP tool name charset
// [A-Za-z0-9_-] and length of at most 64.
func validToolName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

func (s *Server) handleAction(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.call(ctx, action, request.GetString("params", ""))
	}
}

func (s *Server) handleCallAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := request.GetString("action", "")
	if action == "" {
		return mcp.NewToolResultError("action is required"), nil
	}
	return s.call(ctx, action, request.GetString("params", ""))
}

func (s *Server) call(ctx context.Context, action, rawParams string) (*mcp.CallToolResult, error) {
	var params []any
	if strings.TrimSpace(rawParams) != "" {
		if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("params must be a JSON array: %v", err)), nil
		}
	}

	result, err := s.caller.Call(ctx, action, params...)
	if err != nil {
		s.logger.Warn("MCP call failed", "action", action, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(CallResult{Action: action, Result: result})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ActionsURI, "Registered Actions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.caller.Actions())
		if err != nil {
			return nil, fmt.Errorf("failed to encode actions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ActionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
