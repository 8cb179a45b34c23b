package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/api"
	"github.com/codyseavey/pokido/internal/config"
	"github.com/codyseavey/pokido/internal/database"
	"github.com/codyseavey/pokido/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize services
	vision := services.NewVisionService(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.VisionTimeout())
	if !vision.IsEnabled() {
		log.Println("Warning: GOOGLE_API_KEY not set, image scans will fail with 503")
	}

	catalog := services.NewTCGdexService(cfg.CatalogTimeout())
	images := services.NewPokemonTCGService(cfg.PokemonTCGAPIKey, cfg.FallbackTimeout())
	resolver := services.NewCatalogResolver(catalog, images, cfg.NearNumberTolerance)
	presenter := services.NewPresenter(cfg.EURRate, cfg.USDRate, cfg.Currency, cfg.DefaultLocale)
	scanService := services.NewScanService(vision, resolver, presenter, database.GetDB())

	spooler := services.NewUploadSpooler(cfg.ScratchDir)

	var persistence album.Persistence
	switch cfg.AlbumPersistence {
	case "file":
		persistence = album.NewFilePersistence(cfg.AlbumDir)
		log.Printf("Album documents stored in %s", cfg.AlbumDir)
	default:
		persistence = album.NewGormPersistence(database.GetDB())
	}
	store := album.NewStore(persistence)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Remove scratch uploads abandoned by crashed requests
	go spooler.Start(ctx)

	router := api.SetupRouter(cfg, scanService, spooler, store)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
