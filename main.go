package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/repwise-data/repwise/api"
	"github.com/repwise-data/repwise/db"
	"github.com/repwise-data/repwise/internal/assets"
	"github.com/repwise-data/repwise/internal/attempt"
	"github.com/repwise-data/repwise/internal/config"
	"github.com/repwise-data/repwise/internal/fsutil"
	"github.com/repwise-data/repwise/internal/version"
	"github.com/repwise-data/repwise/internal/worker"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "repwise.db", "Path to the attempts database")
	configPath = flag.String("config", "", "Path to a tuning config JSON file (optional)")
	assetsDir  = flag.String("assets-dir", "assets", "Directory for cached model assets")
	assetsDB   = flag.String("assets-db", "", "Store model assets in this SQLite file instead of assets-dir")
	assetURL   = flag.String("asset-url", "", "Base URL to fetch missing model assets from (optional)")
	debugLog   = flag.Bool("debug", false, "Enable diagnostic worker logging")
	traceLog   = flag.Bool("trace", false, "Enable per-frame worker logging (very verbose)")
)

func loadConfig() *config.TuningConfig {
	path := *configPath
	if path == "" {
		// Fall back to the shipped defaults file when present.
		if _, err := os.Stat(config.DefaultConfigPath); err != nil {
			return config.EmptyTuningConfig()
		}
		path = config.DefaultConfigPath
	}
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func openAssetStore() (assets.Store, func()) {
	if *assetsDB != "" {
		store, err := assets.OpenSQLStore(*assetsDB)
		if err != nil {
			log.Fatalf("failed to open asset store: %v", err)
		}
		return store, func() { store.Close() }
	}
	return assets.NewFileStore(fsutil.OSFileSystem{}, *assetsDir), func() {}
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	log.Printf("repwise %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg := loadConfig()

	var diag, trace io.Writer
	if *debugLog {
		diag = os.Stderr
	}
	if *traceLog {
		trace = os.Stderr
	}
	worker.SetLogWriters(os.Stderr, diag, trace)

	store, closeStore := openAssetStore()
	defer closeStore()

	var fetcher assets.Fetcher
	if *assetURL != "" {
		fetcher = assets.NewHTTPFetcher(*assetURL, nil)
	}
	manager := assets.NewManager(store, fetcher)
	defer manager.WaitWrites()

	w := worker.New(cfg, attempt.NewGate(cfg, manager))
	defer w.Close()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(w, database, cfg).ServeMux()

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()
		log.Printf("listening on %s", *listen)

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
