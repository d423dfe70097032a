package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer escapes raw HTML in coach-authored Markdown (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Markdown converts coach-written notes to safe HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html><head><meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:600px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a;font-size:22px}.meta{color:#666}</style>
</head><body>
<h1>{{.Title}}</h1>
{{if .Meta}}<p class="meta">{{.Meta}}</p>{{end}}
{{.Body}}
<p class="meta">Sent by {{.CoachName}} via CoachDesk</p>
</body></html>`))

// Email is the content of one templated message.
type Email struct {
	Title     string
	Meta      string
	BodyMD    string
	CoachName string
}

// Render fills the shared layout with Markdown-rendered body text.
func Render(e Email) (string, error) {
	body, err := Markdown(e.BodyMD)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = layout.Execute(&buf, struct {
		Title, Meta, CoachName string
		Body                   template.HTML
	}{e.Title, e.Meta, e.CoachName, body})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
