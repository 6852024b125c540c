package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTool records invocations and returns a scripted outcome.
type stubTool struct {
	name    string
	schema  map[string]interface{}
	timeout time.Duration
	calls   atomic.Int32
	run     func(ctx context.Context, args json.RawMessage) (interface{}, error)
}

func (s *stubTool) Name() string                   { return s.name }
func (s *stubTool) Description() string            { return "stub " + s.name }
func (s *stubTool) Schema() map[string]interface{} { return s.schema }
func (s *stubTool) Timeout() time.Duration         { return s.timeout }

func (s *stubTool) Execute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	s.calls.Add(1)
	if s.run != nil {
		return s.run(ctx, args)
	}
	return map[string]bool{"ok": true}, nil
}

func navigateSchema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{
		"url": map[string]interface{}{"type": "string", "format": "uri"},
	}, []string{"url"})
}

func newDispatcher(t *testing.T, tools ...Tool) *Dispatcher {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(tools...))
	return NewDispatcher(reg)
}

func TestDispatchSuccess(t *testing.T) {
	tool := &stubTool{name: "navigate", schema: navigateSchema()}
	d := newDispatcher(t, tool)

	res := d.Dispatch(context.Background(), "navigate", json.RawMessage(`{"url":"https://example.com"}`))

	assert.True(t, res.Success)
	assert.Equal(t, map[string]bool{"ok": true}, res.Data)
	assert.Empty(t, res.Error)
	assert.EqualValues(t, 1, tool.calls.Load())
}

func TestDispatchRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"missing required", `{}`},
		{"wrong type", `{"url": 42}`},
		{"not a uri", `{"url": "not a url"}`},
		{"malformed json", `{"url":`},
		{"not an object", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &stubTool{name: "navigate", schema: navigateSchema()}
			d := newDispatcher(t, tool)

			res := d.Dispatch(context.Background(), "navigate", json.RawMessage(tt.args))

			assert.False(t, res.Success)
			assert.Nil(t, res.Data)
			assert.Contains(t, res.Error, "invalid arguments")
			assert.Zero(t, tool.calls.Load(), "tool must not run on invalid input")
		})
	}
}

func TestDispatchEmptyArgumentsAsObject(t *testing.T) {
	tool := &stubTool{name: "go_back", schema: BaseToolSchema(map[string]interface{}{}, nil)}
	d := newDispatcher(t, tool)

	res := d.Dispatch(context.Background(), "go_back", nil)
	assert.True(t, res.Success)
}

func TestDispatchUnknownTool(t *testing.T) {
	d := newDispatcher(t)

	res := d.Dispatch(context.Background(), "nope", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown tool")
}

func TestDispatchToolError(t *testing.T) {
	tool := &stubTool{
		name:   "click",
		schema: BaseToolSchema(map[string]interface{}{}, nil),
		run: func(context.Context, json.RawMessage) (interface{}, error) {
			return "ignored", errors.New("element not found")
		},
	}
	d := newDispatcher(t, tool)

	res := d.Dispatch(context.Background(), "click", nil)
	assert.False(t, res.Success)
	assert.Nil(t, res.Data, "never both data and error")
	assert.Equal(t, "element not found", res.Error)
}

func TestDispatchRecoversPanic(t *testing.T) {
	tool := &stubTool{
		name:   "execute_js",
		schema: BaseToolSchema(map[string]interface{}{}, nil),
		run: func(context.Context, json.RawMessage) (interface{}, error) {
			panic("driver exploded")
		},
	}
	d := newDispatcher(t, tool)

	res := d.Dispatch(context.Background(), "execute_js", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "driver exploded")
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	tool := &stubTool{
		name:    "slow",
		schema:  BaseToolSchema(map[string]interface{}{}, nil),
		timeout: 50 * time.Millisecond,
		run: func(context.Context, json.RawMessage) (interface{}, error) {
			<-release
			return nil, nil
		},
	}
	d := newDispatcher(t, tool)

	started := time.Now()
	res := d.Dispatch(context.Background(), "slow", nil)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestDispatchUsesDefaultTimeout(t *testing.T) {
	tool := &stubTool{
		name:   "waits",
		schema: BaseToolSchema(map[string]interface{}{}, nil),
		run: func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				return nil, errors.New("no deadline")
			}
			return time.Until(deadline) <= 100*time.Millisecond, nil
		},
	}
	reg := NewRegistry()
	require.NoError(t, reg.Register(tool))
	d := NewDispatcher(reg, WithDefaultTimeout(100*time.Millisecond))

	res := d.Dispatch(context.Background(), "waits", nil)
	require.True(t, res.Success)
	assert.Equal(t, true, res.Data)
}

func TestRegistryOrderAndDuplicates(t *testing.T) {
	reg := NewRegistry()
	a := &stubTool{name: "a", schema: BaseToolSchema(map[string]interface{}{}, nil)}
	b := &stubTool{name: "b", schema: BaseToolSchema(map[string]interface{}{}, nil)}
	require.NoError(t, reg.Register(a, b))

	names := []string{}
	for _, tool := range reg.List() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)

	err := reg.Register(&stubTool{name: "a", schema: BaseToolSchema(map[string]interface{}{}, nil)})
	assert.Error(t, err)

	c := &stubTool{name: "c", schema: BaseToolSchema(map[string]interface{}{}, nil)}
	err = reg.Register(c, c)
	assert.Error(t, err)
	_, ok := reg.Get("c")
	assert.False(t, ok, "failed registration adds nothing")
}

func TestRegistryRejectsInvalidSchema(t *testing.T) {
	reg := NewRegistry()
	bad := &stubTool{name: "bad", schema: map[string]interface{}{"type": 12}}
	assert.Error(t, reg.Register(bad))
}

func TestValidationMessageNamesField(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{name: "navigate", schema: navigateSchema()}))

	err := reg.Validate("navigate", json.RawMessage(`{"url": 5}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.Contains(t, err.Error(), "/url")
}

func TestDecodeArgs(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeArgs(nil, &v))
	require.NoError(t, DecodeArgs(json.RawMessage(`{"name":"x"}`), &v))
	assert.Equal(t, "x", v.Name)
	assert.ErrorIs(t, DecodeArgs(json.RawMessage(`{`), &v), ErrInvalidArguments)
}

func TestResultEnvelopeJSON(t *testing.T) {
	raw, err := json.Marshal(Success(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":null}`, string(raw))

	raw, err = json.Marshal(Success(map[string]int{"count": 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"count":2}}`, string(raw))

	raw, err = json.Marshal(Failure(errors.New("boom")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(raw))
}
