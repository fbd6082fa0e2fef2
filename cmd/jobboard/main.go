package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"job-board-go/internal/app"
	"job-board-go/internal/config"
	"job-board-go/internal/loader"
	"job-board-go/internal/server"
	"job-board-go/internal/surface"
)

func main() {
	configFile := flag.String("config", "config.json", "Configuration file path (.json, .yaml or .yml)")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Setup logging
	logger, logFile, err := setupLogging(cfg.Monitoring.LogFile)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	if logFile != nil && logFile != os.Stdout {
		defer logFile.Close()
	}

	if cfg.Monitoring.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize job board: %v", err)
	}
	defer board.Close()

	dashboard := surface.NewDashboard(board.Engine, cfg.Filters.DebounceDelay)
	defer dashboard.Close()

	srv := server.NewServer(cfg.Server, server.Deps{
		Engine:    board.Engine,
		Dashboard: dashboard,
		Metrics:   board.Loader,
		Apply:     board.Apply,
		Auth:      board.Auth,
	}, logger)

	// Initial load runs in the background; the engine reports loading until it finishes
	loadDone := make(chan struct{})
	go func() {
		defer close(loadDone)
		logger.Println("Loading jobs...")
		if err := board.Engine.Load(ctx); err != nil {
			logger.Printf("Initial load failed: %v", err)
			return
		}
		printMetrics(board.Loader.GetMetrics(), logger)
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Printf("Server stopped: %v", err)
		}
	}

	// Cancel context to stop the initial load if it is still running
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Server shutdown failed: %v", err)
	}

	<-loadDone
	logger.Println("Job board shutdown complete")
}

// setupLogging configures logging based on the configuration
func setupLogging(logFile string) (*log.Logger, *os.File, error) {
	var logOutput *os.File
	var err error

	if logFile != "" {
		// Ensure log directory exists
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		logOutput, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
	} else {
		logOutput = os.Stdout
	}

	logger := log.New(logOutput, "[JOBBOARD] ", log.LstdFlags|log.Lshortfile)
	return logger, logOutput, nil
}

// printMetrics logs the load metrics
func printMetrics(metrics loader.LoadMetrics, logger *log.Logger) {
	logger.Printf("=== Load Metrics ===")
	logger.Printf("Source: %s", metrics.Source)
	logger.Printf("Jobs Fetched: %d", metrics.JobsFetched)
	logger.Printf("Jobs Loaded: %d", metrics.JobsLoaded)
	logger.Printf("Duplicates: %d", metrics.Duplicates)
	logger.Printf("Cache Hits: %d", metrics.CacheHits)
	logger.Printf("Errors: %d", metrics.Errors)
	logger.Printf("Load Duration: %v", metrics.LoadDuration)
	logger.Printf("====================")
}
