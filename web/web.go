// Package web embeds the HTML templates and static assets of the app.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template; the entry point is "base".
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
