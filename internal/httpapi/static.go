package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static/*
var embeddedStatic embed.FS

// newStaticHandler serves the browser client from dir when set, otherwise
// from the assets compiled into the binary.
func newStaticHandler(dir string) http.Handler {
	if strings.TrimSpace(dir) != "" {
		return http.FileServer(http.Dir(dir))
	}
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(sub))
}
