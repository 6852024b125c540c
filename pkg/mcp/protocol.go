// Package mcp implements the JSON-RPC 2.0 method surface of the Model Context
// Protocol on top of a tool dispatcher.
package mcp

import (
	"bytes"
	"encoding/json"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const (
	ProtocolVersionLatest = "2025-06-18"
	ProtocolVersionLegacy = "2025-03-26"
	ProtocolVersionOldest = "2024-11-05"
)

// Request is an incoming JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`

	idPresent bool
	idInvalid bool
}

// UnmarshalJSON records whether an id member was present, since only
// requests without one are notifications.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Request{JSONRPC: raw.JSONRPC, Method: raw.Method, Params: raw.Params}
	if raw.ID == nil {
		return nil
	}
	r.idPresent = true

	id := bytes.TrimSpace(raw.ID)
	if bytes.Equal(id, []byte("null")) {
		r.idInvalid = true
		return nil
	}
	// numbers stay json.Number so large ids are echoed digit for digit
	var parsed interface{}
	dec := json.NewDecoder(bytes.NewReader(id))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return err
	}
	switch parsed.(type) {
	case string, json.Number:
		r.ID = parsed
	default:
		r.idInvalid = true
	}
	return nil
}

// IsNotification reports whether the request carries no id.
func (r Request) IsNotification() bool {
	return !r.idPresent
}

// Response is an outgoing JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewError builds an error response.
func NewError(id interface{}, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message}}
}

func newResult(id interface{}, v interface{}) *Response {
	raw, err := json.Marshal(v)
	if err != nil {
		return NewError(id, CodeInternalError, "failed to encode result: "+err.Error())
	}
	return &Response{JSONRPC: "2.0", ID: id, Result: raw}
}

// ServerInfo identifies the server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertises supported features. Only tools are offered.
type Capabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// ToolsCapability describes tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// InitializeResult is the result of initialize.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Tool describes one tool in tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolsListResult is the result of tools/list.
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams are the params of tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Content is one content block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result of tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

func negotiateProtocolVersion(params json.RawMessage) string {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params, &p)
	}
	switch p.ProtocolVersion {
	case ProtocolVersionLatest, ProtocolVersionLegacy, ProtocolVersionOldest:
		return p.ProtocolVersion
	default:
		return ProtocolVersionLatest
	}
}
