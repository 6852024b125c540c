package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #24292f; }
pre { padding: 1rem; border: 1px solid #d0d7de; border-radius: 6px; overflow-x: auto; }
.muted { color: #57606a; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Empty}}<p class="muted">No report has been submitted yet.</p>
{{else}}<p class="muted">Received {{.ReceivedAt}}</p>
{{.Body}}
{{end}}</body>
</html>
`))

type pageData struct {
	Title      string
	Empty      bool
	ReceivedAt string
	Body       template.HTML
}

// RenderHTML writes an HTML page showing the entry's payload. A nil entry
// renders the empty placeholder page.
func RenderHTML(w io.Writer, e *Entry) error {
	data := pageData{Title: "Page Report", Empty: e == nil}
	if e != nil {
		data.ReceivedAt = e.ReceivedAt.UTC().Format(time.RFC3339)
		data.Body = highlightJSON(e.Payload)
	}
	return pageTemplate.Execute(w, data)
}

// highlightJSON pretty-prints and colorizes payload. Falls back to an
// escaped <pre> block if highlighting fails.
func highlightJSON(payload json.RawMessage) template.HTML {
	src := string(payload)
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err == nil {
		src = pretty.String()
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	iter, err := lexer.Tokenise(nil, src)
	if err != nil {
		return plain(src)
	}

	var buf bytes.Buffer
	formatter := html.New(html.WithClasses(false))
	if err := formatter.Format(&buf, style, iter); err != nil {
		return plain(src)
	}
	return template.HTML(buf.String())
}

func plain(src string) template.HTML {
	var b strings.Builder
	b.WriteString("<pre>")
	template.HTMLEscape(&b, []byte(src))
	b.WriteString("</pre>")
	return template.HTML(b.String())
}
