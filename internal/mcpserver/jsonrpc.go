package mcpserver

import (
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
)

// Gateway-specific JSON-RPC error codes. Standard codes come from mcp-go.
const (
	CodeUnauthorized     = -32001
	CodeResourceNotFound = -32002
	CodeRateLimited      = -32000
)

// MaxRequestBodySize is the largest POST body accepted on /mcp.
const MaxRequestBodySize = 1 << 20

// Request is a JSON-RPC 2.0 request or notification. ID is kept raw so it is
// echoed back byte-for-byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request omits the id member. An
// explicit null id is a request and gets a response echoing null.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var nullID = json.RawMessage("null")

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: mcp.JSONRPC_VERSION, Result: result, ID: echoID(id)}
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: mcp.JSONRPC_VERSION, Error: &Error{Code: code, Message: message}, ID: echoID(id)}
}

func echoID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}

func writeResponse(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteTransportError writes a rejection that happened before the request
// body was read. The id is always null.
func WriteTransportError(w http.ResponseWriter, status int, message string) {
	code := mcp.INTERNAL_ERROR
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = CodeUnauthorized
	case http.StatusTooManyRequests:
		code = CodeRateLimited
	}
	writeResponse(w, status, errorResponse(nil, code, message))
}
