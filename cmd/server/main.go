package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/prpulse/prpulse/internal/handlers"
	"github.com/prpulse/prpulse/internal/repositories"
	"github.com/prpulse/prpulse/internal/services"
	"github.com/prpulse/prpulse/pkg/config"
	"github.com/prpulse/prpulse/pkg/database"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	snapshotRepo := repositories.NewSnapshotRepository(database.DB)
	if err := snapshotRepo.Init(); err != nil {
		log.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	runRepo := repositories.NewReportRunRepository(database.DB)
	if err := runRepo.Init(); err != nil {
		log.Fatalf("Failed to initialize report run store: %v", err)
	}
	snapshotService := services.NewSnapshotService(snapshotRepo)
	comparisonService := services.NewComparisonService(snapshotRepo)
	runService := services.NewReportRunService(runRepo)

	// Initialize router
	router := gin.Default()
	setupRoutes(router, snapshotService, comparisonService, runService)

	// Setup server
	server := &http.Server{
		Addr:    ":" + config.AppConfig.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}

func setupRoutes(router *gin.Engine, snapshotService *services.SnapshotService, comparisonService *services.ComparisonService, runService *services.ReportRunService) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	comparisonHandler := handlers.NewComparisonHandler(snapshotService, comparisonService)
	runHandler := handlers.NewReportRunHandler(runService)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	// Snapshot routes
	repos := router.Group("/repos")
	{
		repos.GET("/:repo/snapshots", snapshotHandler.InRange)
		// :date also accepts the literal "latest"
		repos.GET("/:repo/snapshots/:date", snapshotHandler.ForDate)
		repos.GET("/:repo/comparison", comparisonHandler.Compare)
		repos.GET("/:repo/runs", runHandler.List)
	}
}
