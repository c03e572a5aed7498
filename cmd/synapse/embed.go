package main

import (
	"embed"
	"io/fs"

	"github.com/lazypower/synapse/internal/server"
)

// The ui directory holds the static visualization client served at /.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
