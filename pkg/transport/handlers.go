package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/mcp"
	"github.com/entrhq/mcp-bridge/pkg/report"
)

// handleMCP serves one JSON-RPC request per POST. Notifications are
// acknowledged with 202 and no body.
func (h *handler) handleMCP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		writeRPCError(w, http.StatusUnsupportedMediaType, nil, mcp.CodeParseError, "Unsupported Content-Type: "+ct)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeRPCError(w, http.StatusRequestEntityTooLarge, nil, mcp.CodeInvalidRequest, "Request body too large")
			return
		}
		writeRPCError(w, http.StatusInternalServerError, nil, mcp.CodeParseError, "Read error: "+err.Error())
		return
	}

	var req mcp.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeRPCError(w, http.StatusInternalServerError, nil, mcp.CodeParseError, "Parse error: "+err.Error())
		return
	}

	resp, err := h.dispatch(r, req)
	if err != nil {
		h.logger.Errorf("Handling %s failed: %v", req.Method, err)
		writeRPCError(w, http.StatusInternalServerError, req.ID, mcp.CodeInternalError, "Internal error")
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// dispatch converts a panic in the handler into an error.
func (h *handler) dispatch(r *http.Request, req mcp.Request) (resp *mcp.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h.mcp.Handle(r.Context(), req), nil
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	writeRPCError(w, http.StatusMethodNotAllowed, nil, mcp.CodeInvalidRequest, "Method not allowed: this server is stateless, use POST")
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	healthy := true
	body := map[string]interface{}{}
	if h.opts.Health != nil {
		var extra map[string]interface{}
		healthy, extra = h.opts.Health(r.Context())
		for k, v := range extra {
			body[k] = v
		}
	}

	info := h.mcp.Info()
	body["service"] = info.Name
	body["version"] = info.Version
	body["uptime"] = time.Since(h.startedAt).Milliseconds()
	body["status"] = "ok"
	status := http.StatusOK
	if !healthy {
		body["status"] = "error"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

func (h *handler) postReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be valid JSON"})
		return
	}
	h.opts.Reports.Put(body)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) viewReport(w http.ResponseWriter, _ *http.Request) {
	var entry *report.Entry
	if e, ok := h.opts.Reports.Latest(); ok {
		entry = &e
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, entry); err != nil {
		h.logger.Errorf("Rendering report failed: %v", err)
	}
}

func (h *handler) reportJSON(w http.ResponseWriter, _ *http.Request) {
	e, ok := h.opts.Reports.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report has been submitted"})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRPCError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	writeJSON(w, status, mcp.NewError(id, code, message))
}
