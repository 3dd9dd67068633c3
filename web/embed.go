package web

import (
	"embed"
	"io/fs"
)

//go:embed static docs
var content embed.FS

// StaticFS returns the front-end file system
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// static is embedded at build time
		panic(err)
	}
	return sub
}

// APISpec returns the Swagger document of the items API
func APISpec() ([]byte, error) {
	return content.ReadFile("docs/swagger.json")
}
