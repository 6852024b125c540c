package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/mcp-bridge/pkg/config"
	"github.com/entrhq/mcp-bridge/pkg/mcp"
	"github.com/entrhq/mcp-bridge/pkg/report"
	"github.com/entrhq/mcp-bridge/pkg/tools"
)

type pingTool struct{}

func (pingTool) Name() string                   { return "ping_tool" }
func (pingTool) Description() string            { return "answers pong" }
func (pingTool) Schema() map[string]interface{} { return tools.BaseToolSchema(map[string]interface{}{}, nil) }

func (pingTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return map[string]string{"reply": "pong"}, nil
}

func newRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(pingTool{}))
	srv := mcp.NewServer("test-bridge", "0.1.0", tools.NewDispatcher(reg))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, srv, opts)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) mcp.Response {
	t.Helper()
	var resp mcp.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestMCPToolCall(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodPost, "/mcp",
		`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"ping_tool","arguments":{}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	assert.Equal(t, float64(7), resp.ID)

	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "pong")
	assert.False(t, result.IsError)
}

func TestMCPNotificationAccepted(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMCPParseError(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodPost, "/mcp", `{"jsonrpc":`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeParseError, resp.Error.Code)
	assert.Nil(t, resp.ID)
}

func TestMCPUnknownMethod(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":"a","method":"resources/list"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeMethodNotFound, resp.Error.Code)
}

func TestMCPBodyTooLarge(t *testing.T) {
	h := newRouter(t, Options{MaxBodyBytes: 16})

	rec := do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMCPRejectsWrongContentType(t *testing.T) {
	h := newRouter(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMCPStatelessMethods(t *testing.T) {
	h := newRouter(t, Options{})

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := do(h, method, "/mcp", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	}
}

func TestHealth(t *testing.T) {
	alive := true
	h := newRouter(t, Options{
		Health: func(context.Context) (bool, map[string]interface{}) {
			return alive, map[string]interface{}{"browserAlive": alive}
		},
	})

	rec := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-bridge", body["service"])
	assert.Equal(t, "0.1.0", body["version"])
	assert.Equal(t, true, body["browserAlive"])
	assert.Contains(t, body, "uptime")

	alive = false
	rec = do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, false, body["browserAlive"])
}

func TestHealthWithoutCheck(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportRoutes(t *testing.T) {
	store := report.NewStore()
	h := newRouter(t, Options{Reports: store})

	rec := do(h, http.MethodGet, "/report.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No report has been submitted yet.")

	rec = do(h, http.MethodPost, "/report", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/report", `{"score":98,"page":"/checkout"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/report.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entry report.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.JSONEq(t, `{"score":98,"page":"/checkout"}`, string(entry.Payload))

	rec = do(h, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "checkout")
}

func TestReportRoutesDisabled(t *testing.T) {
	h := newRouter(t, Options{})

	rec := do(h, http.MethodGet, "/report", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newRouter(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 2})
	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/mcp", body).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/mcp", body).Code)

	rec := do(h, http.MethodPost, "/mcp", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// health stays reachable
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(t, Options{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, time.Second)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
