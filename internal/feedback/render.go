package feedback

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.gohtml
var templateFiles embed.FS

var detailsTemplate = template.Must(template.ParseFS(templateFiles, "templates/*.gohtml"))

// Render writes the HTML accordion fragment for fb to w.
func Render(w io.Writer, fb *Feedback) error {
	return RenderDetails(w, BuildDetails(fb))
}

// RenderDetails writes an already-built view tree.
func RenderDetails(w io.Writer, d Details) error {
	return detailsTemplate.ExecuteTemplate(w, "details", d)
}

// RenderString renders fb to a string.
func RenderString(fb *Feedback) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, fb); err != nil {
		return "", err
	}
	return buf.String(), nil
}
