package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"event-finder/internal/config"
	"event-finder/internal/database"
	"event-finder/internal/eventbrite"
	"event-finder/internal/handlers"
	"event-finder/internal/jobs"
	"event-finder/internal/repository"
	"event-finder/internal/scraper"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize the scrape pipeline
	repo := repository.NewEventRepository(database.GetDB())
	client := eventbrite.NewClient(cfg.Scraper.RequestDelay, cfg.Scraper.MaxRetries)
	scraperService := scraper.NewService(client, repo)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(database.GetDB(), scraperService)

	// Start the periodic scrape job when an interval is configured
	if cfg.Scraper.Interval > 0 {
		job := jobs.NewScraperJob(scraperService, scraper.Options{
			Location:          cfg.Scraper.Location,
			MaxResults:        cfg.Scraper.MaxResults,
			MaxPages:          cfg.Scraper.MaxPages,
			FetchDescriptions: cfg.Scraper.FetchDescriptions,
		})
		job.Start(cfg.Scraper.Interval)
		log.Printf("Scraper job started (every %s)", cfg.Scraper.Interval)
	}

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Root index
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Event Finder API",
			"endpoints": gin.H{
				"health": "/health",
				"events": "/api/events",
				"etl":    "/api/etl/run",
				"stats":  "/api/events/stats/summary",
			},
		})
	})

	// API routes
	api := router.Group("/api")
	{
		api.GET("/events", eventHandler.GetEvents)
		api.GET("/events/stats/summary", eventHandler.GetStats)
		api.GET("/events/:id", eventHandler.GetEventByID)
		api.POST("/etl/run", eventHandler.RunETL)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
