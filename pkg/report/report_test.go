package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/entrhq/mcp-bridge/pkg/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Sample</title>
  <meta name="description" content="A sample page">
  <meta name="viewport" content="width=device-width">
  <link rel="canonical" href="https://example.com/">
</head>
<body>
  <h1>Welcome</h1>
  <h2>  Sub   heading </h2>
  <a href="/about">About</a>
  <a href="https://other.org/x">Other</a>
  <a href="javascript:void(0)">Noop</a>
  <form id="login" action="/login" method="post">
    <input type="text" name="user" required>
    <input type="password" name="pass">
    <button type="submit">Go</button>
  </form>
  <img src="/a.png" alt="Logo">
  <img src="/b.png">
  <script>console.log(1)</script>
</body>
</html>`

func sampleInput() Input {
	return Input{
		URL:  "https://example.com/home",
		HTML: samplePage,
		Console: []capture.ConsoleEntry{
			{Type: "log", Text: "hi"},
			{Type: "error", Text: "boom"},
		},
		Network: []capture.NetworkEntry{
			{URL: "https://example.com/ok", Status: 200},
			{URL: "https://example.com/missing", Status: 404},
		},
	}
}

func allOptions() Options {
	return Options{IncludeLinks: true, IncludeForms: true, IncludeImages: true}
}

func TestBuild(t *testing.T) {
	r, err := Build(sampleInput(), allOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Sample", r.Title)
	assert.Equal(t, "A sample page", r.Meta.Description)
	assert.Equal(t, "en", r.Meta.Lang)
	assert.Equal(t, "width=device-width", r.Meta.Viewport)
	assert.Equal(t, "https://example.com/", r.Meta.Canonical)

	assert.Equal(t, []Heading{{Level: 1, Text: "Welcome"}, {Level: 2, Text: "Sub heading"}}, r.Headings)

	require.Len(t, r.Links, 2)
	assert.Equal(t, Link{Text: "About", Href: "https://example.com/about"}, r.Links[0])
	assert.True(t, r.Links[1].External)

	require.Len(t, r.Forms, 1)
	assert.Equal(t, "login", r.Forms[0].ID)
	assert.Equal(t, "POST", r.Forms[0].Method)
	require.Len(t, r.Forms[0].Fields, 3)
	assert.True(t, r.Forms[0].Fields[0].Required)
	assert.Equal(t, "button", r.Forms[0].Fields[2].Tag)

	require.Len(t, r.Images, 2)
	assert.True(t, r.Images[1].MissingAlt)

	assert.Equal(t, Summary{
		Links:            2,
		ExternalLinks:    1,
		Forms:            1,
		Images:           2,
		ImagesMissingAlt: 1,
		Headings:         2,
		Scripts:          1,
		ConsoleErrors:    1,
		FailedRequests:   1,
		HasSingleH1:      true,
	}, r.Summary)
	assert.Equal(t, "boom", r.ConsoleErrors[0].Text)
	assert.Equal(t, 404, r.FailedRequests[0].Status)
}

func TestBuildOmitsUnrequestedLists(t *testing.T) {
	r, err := Build(sampleInput(), Options{})
	require.NoError(t, err)

	assert.Nil(t, r.Links)
	assert.Nil(t, r.Forms)
	assert.Nil(t, r.Images)
	assert.Equal(t, 2, r.Summary.Links)
	assert.Equal(t, 2, r.Summary.Images)
}

func TestBuildEmptyDocument(t *testing.T) {
	r, err := Build(Input{URL: "about:blank"}, allOptions())
	require.NoError(t, err)

	assert.Empty(t, r.Headings)
	assert.Empty(t, r.Links)
	assert.False(t, r.Summary.HasSingleH1)
	assert.NotNil(t, r.ConsoleErrors)
	assert.NotNil(t, r.FailedRequests)
}

func TestStore(t *testing.T) {
	s := NewStore()
	_, ok := s.Latest()
	assert.False(t, ok)

	payload := json.RawMessage(`{"a":1}`)
	s.Put(payload)
	payload[2] = 'b'

	e, ok := s.Latest()
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(e.Payload))
	assert.WithinDuration(t, time.Now(), e.ReceivedAt, time.Second)

	r, err := Build(sampleInput(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), r))

	e, ok = s.Latest()
	require.True(t, ok)
	var decoded Report
	require.NoError(t, json.Unmarshal(e.Payload, &decoded))
	assert.Equal(t, r.ID, decoded.ID)
}

func TestRenderHTML(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, nil))
		assert.Contains(t, buf.String(), "No report has been submitted yet.")
	})

	t.Run("payload", func(t *testing.T) {
		var buf bytes.Buffer
		e := &Entry{Payload: json.RawMessage(`{"title":"<b>x</b>"}`), ReceivedAt: time.Now()}
		require.NoError(t, RenderHTML(&buf, e))

		out := buf.String()
		assert.Contains(t, out, "<pre")
		assert.Contains(t, out, "title")
		assert.NotContains(t, out, "<b>x</b>")
	})

	t.Run("invalid json still renders", func(t *testing.T) {
		var buf bytes.Buffer
		e := &Entry{Payload: json.RawMessage(`not json`), ReceivedAt: time.Now()}
		require.NoError(t, RenderHTML(&buf, e))
		assert.Contains(t, buf.String(), "not json")
	})
}
