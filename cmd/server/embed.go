//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticAssets embed.FS

// setupStaticFiles serves the chat widget from assets embedded at build time
func setupStaticFiles(router *gin.Engine) {
	log.Println("📦 Using embedded chat widget assets")

	staticFS, err := fs.Sub(staticAssets, "static")
	if err != nil {
		log.Fatalf("Failed to get static subdirectory: %v", err)
	}

	router.StaticFS("/static", http.FS(staticFS))
	router.GET("/", serveFrontend)
}
