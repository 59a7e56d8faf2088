package docgen

import (
	"context"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/resume.html.tmpl"))

// HTMLEncoder writes one <section class="page"> per model page.
type HTMLEncoder struct {
	tmpl *template.Template
}

func NewHTMLEncoder() *HTMLEncoder {
	return &HTMLEncoder{tmpl: htmlTemplate}
}

func (e *HTMLEncoder) Encode(_ context.Context, doc *DocumentModel, w io.Writer) error {
	return e.tmpl.ExecuteTemplate(w, "resume.html.tmpl", doc)
}

func (e *HTMLEncoder) ContentType() string { return "text/html; charset=utf-8" }

func (e *HTMLEncoder) Extension() string { return ".html" }
