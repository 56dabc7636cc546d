package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vesaa/kintree/webui"
)

const defaultAssetPath = "/modules"

// RegisterStaticFiles mounts the embedded module assets at the path of
// modulesDir, so the CSS/JS URLs modules emit resolve against this server.
// When modulesDir is not a local path (e.g. a CDN URL) the assets are still
// served at /modules for hosts that mirror from there.
// API routes registered before this take precedence.
func RegisterStaticFiles(r *gin.Engine, modulesDir string) error {
	modules, err := webui.Modules()
	if err != nil {
		return fmt.Errorf("embed: web/modules sub-fs: %w", err)
	}
	r.StaticFS(assetPath(modulesDir), http.FS(modules))
	return nil
}

// assetPath turns the modules_dir URL prefix into a route path.
func assetPath(modulesDir string) string {
	p := strings.TrimRight(modulesDir, "/")
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return defaultAssetPath
	}
	return p
}
