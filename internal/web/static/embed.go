// Package static embeds the front page served for non-API paths.
package static

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var distFS embed.FS

// FS returns the embedded dist directory as its own root.
func FS() fs.FS {
	sub, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}

// Index returns the front page.
func Index() []byte {
	data, err := fs.ReadFile(distFS, "dist/index.html")
	if err != nil {
		panic(err)
	}
	return data
}
