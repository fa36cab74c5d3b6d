package publish

import (
	"bytes"
	"html/template"
	"strings"

	"coursekit/internal/model"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// Raw HTML in course text is escaped, not passed through.
		html.WithHardWraps(),
	),
)

var pageTmpl = template.Must(template.New("course").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main class="course">
{{.Body}}
</main>
</body>
</html>
`))

// RenderCourseHTML renders the course as a standalone HTML page.
func RenderCourseHTML(c *model.Course) (string, error) {
	body, err := renderMarkdownHTML(RenderCourseMarkdown(c))
	if err != nil {
		return "", err
	}
	title := "Untitled course"
	if c != nil && strings.TrimSpace(c.Name) != "" {
		title = strings.TrimSpace(c.Name)
	}
	var b bytes.Buffer
	if err := pageTmpl.Execute(&b, struct {
		Title string
		Body  template.HTML
	}{title, body}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderMarkdownHTML(src string) (template.HTML, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return "", err
	}
	// Safe because raw HTML is disabled above.
	return template.HTML(b.String()), nil
}
