package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AndreCurotec/funeral-home-agent/internal/config"
	"github.com/AndreCurotec/funeral-home-agent/internal/handler"
	"github.com/AndreCurotec/funeral-home-agent/internal/repository"
	"github.com/AndreCurotec/funeral-home-agent/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Funeral Home Finder Chatbot")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize session store
	var store repository.SessionStore
	switch cfg.Session.Backend {
	case "postgres":
		pgStore, err := repository.NewPostgresSessionStore(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
			cfg.Eazewell.TestPhone,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		log.Println("✅ Connected to PostgreSQL session store")
	default:
		store = repository.NewMemorySessionStore(cfg.Eazewell.TestPhone)
		log.Println("✅ Using in-memory session store")
	}

	// Initialize OpenAI client
	var aiClient service.AIClient
	if cfg.OpenAI.Enabled {
		aiClient = service.NewOpenAIClient(&cfg.OpenAI)
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
	} else {
		log.Println("⚠️  OpenAI is disabled - requirement extraction will rely on keyword matching")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services
	extractor := service.NewInformationExtractor(aiClient)
	provider := service.NewEazewellClient(&cfg.Eazewell)
	recommender := service.NewRecommendationService(provider, cfg.Search.ResultCount)
	manager := service.NewConversationManager(extractor, recommender)

	log.Println("✅ Services initialized")

	// Initialize handlers
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	chatHandler := handler.NewChatHandler(store, manager, recommender)
	adminHandler := handler.NewAdminHandler(store, sessionTTL)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "funeral-home-chatbot",
			"version": Version,
		})
	})

	// API routes
	router.POST("/chat", chatHandler.Chat)
	router.GET("/debug/sessions", adminHandler.Sessions)
	router.POST("/admin/cleanup", adminHandler.Cleanup)

	// Serve the chat widget
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("💬 Chat endpoint: http://localhost:%d/chat", cfg.Server.Port)
	log.Printf("🌐 Web UI: http://localhost:%d", cfg.Server.Port)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}

// frontendRedirectHTML bounces the browser to the chat widget
const frontendRedirectHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Funeral Home Finder</title>
    <script>
        window.location.href = '/static/index.html';
    </script>
</head>
<body>
    <p>Redirecting to chat interface...</p>
</body>
</html>
`

// serveFrontend handles GET /
func serveFrontend(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(frontendRedirectHTML))
}
