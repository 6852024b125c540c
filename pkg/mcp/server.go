package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/entrhq/mcp-bridge/pkg/logging"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

// Server answers MCP requests for one tool catalog.
type Server struct {
	info       ServerInfo
	dispatcher *tools.Dispatcher
	logger     *logging.Logger
}

// NewServer creates a Server exposing the dispatcher's tools.
func NewServer(name, version string, dispatcher *tools.Dispatcher) *Server {
	return &Server{
		info:       ServerInfo{Name: name, Version: version},
		dispatcher: dispatcher,
		logger:     logging.NewLogger("mcp"),
	}
}

// Info returns the server identity.
func (s *Server) Info() ServerInfo {
	return s.info
}

// Handle processes one request. It returns nil for notifications, which
// get no response.
func (s *Server) Handle(ctx context.Context, req Request) *Response {
	if req.IsNotification() {
		if !strings.HasPrefix(req.Method, "notifications/") {
			s.logger.Debugf("Ignoring notification for method %s", req.Method)
		}
		return nil
	}
	if req.idInvalid {
		return NewError(nil, CodeInvalidRequest, "Invalid Request: id must be a string or number")
	}
	if req.JSONRPC != "2.0" {
		return NewError(req.ID, CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`)
	}

	switch req.Method {
	case "initialize":
		return newResult(req.ID, InitializeResult{
			ProtocolVersion: negotiateProtocolVersion(req.Params),
			Capabilities:    Capabilities{Tools: ToolsCapability{}},
			ServerInfo:      s.info,
		})
	case "ping":
		return newResult(req.ID, struct{}{})
	case "tools/list":
		return newResult(req.ID, s.listTools())
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		return NewError(req.ID, CodeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) listTools() ToolsListResult {
	list := s.dispatcher.Registry().List()
	out := ToolsListResult{Tools: make([]Tool, 0, len(list))}
	for _, t := range list {
		out.Tools = append(out.Tools, Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		})
	}
	return out
}

// callTool runs the tool and wraps the dispatcher envelope as a single JSON
// text block. Tool failures are results with isError set, not protocol errors.
func (s *Server) callTool(ctx context.Context, req Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewError(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
	}
	if params.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "Invalid params: tool name is required")
	}

	result := s.dispatcher.Dispatch(ctx, params.Name, params.Arguments)

	text, err := json.Marshal(result)
	if err != nil {
		text, _ = json.Marshal(tools.Failure(err))
		result.Success = false
	}
	return newResult(req.ID, CallToolResult{
		Content: []Content{{Type: "text", Text: string(text)}},
		IsError: !result.Success,
	})
}
