package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/reportdeck/internal/models"
)

// Content is the resolved source a report renders from.
type Content struct {
	Title    string
	Sections []Section
}

type Section struct {
	Heading string
	Body    template.HTML
}

// Artifact is the rendered deliverable.
type Artifact struct {
	Bytes       []byte
	ContentType string
	Extension   string
}

// Renderer turns content into a delivery artifact. PDF conversion sits
// behind this interface; the built-in renderer emits the HTML document the
// converter consumes.
type Renderer interface {
	Render(content Content, settings models.FormatSettings) (Artifact, error)
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #1a1a2e; }
h1 { border-bottom: 2px solid #4361ee; padding-bottom: 8px; }
section { page-break-after: always; margin-bottom: 32px; }
h2 { color: #4361ee; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Sections}}<section>
{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
{{.Body}}
</section>
{{end}}</body>
</html>
`

// HTMLRenderer renders the report document with html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		tmpl: template.Must(template.New("report").Parse(documentTemplate)),
	}
}

func (r *HTMLRenderer) Render(content Content, settings models.FormatSettings) (Artifact, error) {
	if content.Title == "" && len(content.Sections) == 0 {
		return Artifact{}, fmt.Errorf("nothing to render")
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, content); err != nil {
		return Artifact{}, fmt.Errorf("failed to execute report template: %v", err)
	}

	return Artifact{
		Bytes:       buf.Bytes(),
		ContentType: "text/html; charset=utf-8",
		Extension:   ".html",
	}, nil
}
