// Package web bundles the A-EYE control panel.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed panel
var embeddedFiles embed.FS

// Panel serves the control panel files from the binary.
func Panel() http.FileSystem {
	sub, err := fs.Sub(embeddedFiles, "panel")
	if err != nil {
		// "panel" is embedded at build time, so this cannot happen.
		panic(err)
	}
	return http.FS(sub)
}
