//go:build embed

package frontend

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var overlayFiles embed.FS

// Handler serves the overlay UI bundled into the binary.
func Handler() http.Handler {
	sub, err := fs.Sub(overlayFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
