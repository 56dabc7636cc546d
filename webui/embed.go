// Package webui exposes the embedded page templates and module assets.
// It lives at the module root so it can embed the sibling "web/" directory.
package webui

import (
	"embed"
	"html/template"
	"io/fs"
)

// FS is the embedded web directory tree.
// web/templates holds the page layouts; web/modules holds per-module CSS and JS.
//
//go:embed web
var FS embed.FS

// Templates parses every page template under web/templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(FS, "web/templates/*.html", "web/templates/tabs/*.html")
}

// Modules returns the module asset tree rooted at web/modules.
func Modules() (fs.FS, error) {
	return fs.Sub(FS, "web/modules")
}
