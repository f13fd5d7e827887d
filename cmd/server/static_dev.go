//go:build !embed
// +build !embed

package main

import (
	"log"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the chat widget from the local filesystem (no embedding)
func setupStaticFiles(router *gin.Engine) {
	log.Println("🔧 Serving chat widget from local ./static directory")

	router.Static("/static", "./static")
	router.GET("/", serveFrontend)
}
