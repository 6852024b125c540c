package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/database"
	"github.com/entrhq/mcp-bridge/pkg/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct {
	queries int
}

func (p *fakePool) Query(_ context.Context, _ string, args ...interface{}) (*database.QueryResult, error) {
	p.queries++
	return &database.QueryResult{
		Rows:     []map[string]interface{}{{"n": len(args)}},
		RowCount: 1,
		Fields:   []string{"n"},
	}, nil
}

func (p *fakePool) Exec(context.Context, string, ...interface{}) (int64, error) {
	return 5, nil
}

func (p *fakePool) Ping(context.Context) error { return nil }

func (p *fakePool) Close() error { return nil }

func newDispatcher(t *testing.T) (*tools.Dispatcher, *[]database.Config) {
	t.Helper()

	var opened []database.Config
	mgr := database.NewManager(database.Options{
		CacheTTL:        time.Minute,
		CacheMaxEntries: 10,
		Opener: func(_ context.Context, cfg database.Config) (database.Pool, error) {
			opened = append(opened, cfg)
			return &fakePool{}, nil
		},
		Presets: map[string]database.Config{
			"prod": {Kind: database.KindPostgres, Host: "prod.db", Port: 5432, Database: "prod", User: "ro", Password: "hidden"},
		},
	})

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(NewTools(mgr)...))
	return tools.NewDispatcher(reg), &opened
}

func call(d *tools.Dispatcher, name, args string) tools.Result {
	return d.Dispatch(context.Background(), name, json.RawMessage(args))
}

func TestCatalog(t *testing.T) {
	d, _ := newDispatcher(t)

	var names []string
	for _, tool := range d.Registry().List() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{
		"connect", "disconnect", "status", "query", "execute",
		"list_tables", "describe_table", "list_databases", "switch_db", "list_presets",
	}, names)
}

func TestQueryBeforeConnect(t *testing.T) {
	d, _ := newDispatcher(t)

	res := call(d, "query", `{"sql":"SELECT 1"}`)
	assert.False(t, res.Success)
	assert.Equal(t, "not connected: call connect first", res.Error)
	assert.Nil(t, res.Data)

	for _, name := range []string{"execute", "list_tables", "describe_table", "list_databases"} {
		res := call(d, name, `{"sql":"x","table":"t"}`)
		assert.False(t, res.Success, name)
	}
}

func TestConnectQueryExecute(t *testing.T) {
	d, opened := newDispatcher(t)

	res := call(d, "connect", `{"type":"postgresql","host":"localhost","port":5432,"database":"app","user":"app","password":"pw","ssl":true}`)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, database.Status{Connected: true, Type: database.KindPostgres, Host: "localhost", Database: "app"}, res.Data)
	require.Len(t, *opened, 1)
	assert.True(t, (*opened)[0].SSL)
	assert.Equal(t, "pw", (*opened)[0].Password)

	res = call(d, "query", `{"sql":"SELECT $1::int","params":[1]}`)
	require.True(t, res.Success, res.Error)
	qr := res.Data.(*database.QueryResult)
	assert.Equal(t, 1, qr.Rows[0]["n"])
	assert.False(t, qr.Cached)

	res = call(d, "query", `{"sql":"SELECT $1::int","params":[1]}`)
	require.True(t, res.Success, res.Error)
	assert.True(t, res.Data.(*database.QueryResult).Cached)

	res = call(d, "execute", `{"sql":"DELETE FROM t"}`)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, &database.ExecResult{AffectedRows: 5}, res.Data)

	res = call(d, "status", `{}`)
	require.True(t, res.Success)
	assert.True(t, res.Data.(database.Status).Connected)

	res = call(d, "disconnect", `{}`)
	require.True(t, res.Success)
	res = call(d, "status", ``)
	assert.False(t, res.Data.(database.Status).Connected)
}

func TestConnectValidation(t *testing.T) {
	d, opened := newDispatcher(t)

	for _, args := range []string{
		`{"type":"oracle","host":"h","port":1,"database":"d","user":"u","password":""}`,
		`{"type":"mysql","host":"h","port":0,"database":"d","user":"u","password":""}`,
		`{"type":"mysql","host":"h","port":3306,"database":"d","user":"u"}`,
		`{"type":"mysql","host":"","port":3306,"database":"d","user":"u","password":""}`,
	} {
		res := call(d, "connect", args)
		assert.False(t, res.Success, args)
		assert.Contains(t, res.Error, "invalid arguments", args)
	}
	assert.Empty(t, *opened)
}

func TestSwitchDBAndPresets(t *testing.T) {
	d, opened := newDispatcher(t)

	res := call(d, "switch_db", `{"alias":"PROD"}`)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "prod", res.Data.(database.Status).Preset)
	require.Len(t, *opened, 1)
	assert.Equal(t, "prod.db", (*opened)[0].Host)

	res = call(d, "list_presets", `{}`)
	require.True(t, res.Success)
	presets := res.Data.([]database.PresetInfo)
	require.Len(t, presets, 1)
	assert.True(t, presets[0].Active)

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hidden")

	res = call(d, "switch_db", `{"alias":"nope"}`)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown preset")
}
