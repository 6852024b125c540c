package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecords(t *testing.T) {
	s := NewStore()
	s.RecordConsole("error", "boom")
	s.RecordResponse("https://example.com/api", "GET", 500, "fetch")

	console := s.Console.Snapshot()
	require.Len(t, console, 1)
	assert.Equal(t, "error", console[0].Type)
	assert.Equal(t, "boom", console[0].Text)
	assert.NotZero(t, console[0].Timestamp)

	network := s.Network.Snapshot()
	require.Len(t, network, 1)
	assert.Equal(t, 500, network[0].Status)
	assert.True(t, network[0].Failed())

	s.Reset()
	assert.Zero(t, s.Console.Len())
	assert.Zero(t, s.Network.Len())
}

func TestStoreCapacities(t *testing.T) {
	s := NewStore()
	for i := 0; i <= NetworkCapacity; i++ {
		s.RecordResponse("https://example.com", "GET", 200, "document")
	}
	assert.Equal(t, NetworkRetain, s.Network.Len())
	assert.Equal(t, ConsoleCapacity, s.Console.Cap())
}

func TestConsoleFilter(t *testing.T) {
	entries := []ConsoleEntry{
		{Type: "log", Text: "a"},
		{Type: "error", Text: "b"},
		{Type: "log", Text: "c"},
	}

	assert.Len(t, ConsoleFilter{}.Apply(entries), 3)

	logs := ConsoleFilter{Type: "log"}.Apply(entries)
	require.Len(t, logs, 2)
	assert.Equal(t, "a", logs[0].Text)
	assert.Equal(t, "c", logs[1].Text)
}

func TestNetworkFilter(t *testing.T) {
	entries := []NetworkEntry{
		{URL: "https://example.com/index.html", Status: 200},
		{URL: "https://example.com/api/users", Status: 404},
		{URL: "https://cdn.example.com/app.js", Status: 200},
		{URL: "https://example.com/api/orders", Status: 500},
	}

	tests := []struct {
		name      string
		pattern   string
		minStatus int
		want      []string
	}{
		{"all", "", 0, []string{
			"https://example.com/index.html",
			"https://example.com/api/users",
			"https://cdn.example.com/app.js",
			"https://example.com/api/orders",
		}},
		{"substring", "/api/", 0, []string{
			"https://example.com/api/users",
			"https://example.com/api/orders",
		}},
		{"glob", "*.js", 0, []string{"https://cdn.example.com/app.js"}},
		{"failed only", "", 400, []string{
			"https://example.com/api/users",
			"https://example.com/api/orders",
		}},
		{"combined", "*orders*", 500, []string{"https://example.com/api/orders"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewNetworkFilter(tt.pattern, tt.minStatus)
			require.NoError(t, err)

			var urls []string
			for _, e := range f.Apply(entries) {
				urls = append(urls, e.URL)
			}
			assert.Equal(t, tt.want, urls)
		})
	}
}

func TestNetworkFilterInvalidPattern(t *testing.T) {
	_, err := NewNetworkFilter("[unclosed", 0)
	assert.Error(t, err)
}
