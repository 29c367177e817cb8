package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/api"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/catalog"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/db"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/logging"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/media"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Ensure all log output goes to stdout so the log collector captures it
	log.SetOutput(os.Stdout)

	log.Printf("Catalog Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// Initialize database connection (non-fatal; allow process to start for /live)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	// The shared-editor allow-list is deployment configuration, never a
	// literal in engine code.
	gate := catalog.NewGate(catalog.ParseAllowList(os.Getenv("SHARED_CATALOG_EDITORS")))
	engine := catalog.NewEngine(database, gate)
	coord := catalog.NewCoordinator(database, gate)

	handler := api.NewHandler(database, engine, coord, media.NewUploader())

	router := setupRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Set up graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func setupRouter(handler *api.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Serve uploaded media for local development
	router.Static("/uploads", "./uploads")

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	// API routes; every catalog operation is tenant-scoped
	v1 := router.Group("/api/v1")
	v1.Use(api.AuthMiddleware(), api.TenantMiddleware())
	{
		v1.GET("/catalogs/:type/entries", handler.GetEntries)
		v1.POST("/catalogs/:type/entries", handler.CreateEntry)
		v1.PUT("/catalogs/:type/entries/:id", handler.UpdateEntry)
		v1.DELETE("/catalogs/:type/entries/:id", handler.DeleteEntry)
		v1.POST("/catalogs/:type/entries/:id/media", handler.UploadEntryMedia)

		v1.GET("/catalogs/:type/settings", handler.GetSettings)
		v1.PUT("/catalogs/:type/settings", handler.UpdateSettings)

		v1.GET("/permissions/shared-edit", handler.CanEditShared)
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "catalog-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware adds CORS headers to allow cross-origin requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
