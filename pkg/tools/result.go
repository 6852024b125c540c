package tools

import (
	"encoding/json"
	"errors"
)

var (
	// ErrUnknownTool is returned for calls naming no registered tool.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when arguments fail schema validation.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrTimeout is returned when a tool overruns its deadline.
	ErrTimeout = errors.New("tool timed out")
)

// Result is the uniform envelope for every tool call. Exactly one of Data
// (on success) or Error (on failure) is meaningful.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MarshalJSON always emits data on success, as null when the tool returned
// nothing, and never on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool        `json:"success"`
			Data    interface{} `json:"data"`
		}{true, r.Data})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{false, r.Error})
}

// Success wraps data in a successful result.
func Success(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// Failure wraps err in a failed result.
func Failure(err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Success: false, Error: msg}
}
