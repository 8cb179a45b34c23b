package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/pokido/internal/album"
	"github.com/codyseavey/pokido/internal/api/handlers"
	"github.com/codyseavey/pokido/internal/config"
	"github.com/codyseavey/pokido/internal/metrics"
	"github.com/codyseavey/pokido/internal/services"
)

func SetupRouter(cfg *config.Config, scanService *services.ScanService, spooler *services.UploadSpooler, store *album.Store) *gin.Engine {
	router := gin.Default()
	router.Use(metrics.GinMiddleware())

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Accept-Language", "X-Album-Key"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	// Multipart bodies above this spill to disk inside gin
	router.MaxMultipartMemory = 8 << 20

	cardHandler := handlers.NewCardHandler(scanService, spooler)
	albumHandler := handlers.NewAlbumHandler(store)

	api := router.Group("/api")
	{
		api.POST("/analyze", cardHandler.AnalyzeImage)
		api.GET("/search", cardHandler.SearchCards)
		api.GET("/scans", cardHandler.GetRecentScans)
		api.GET("/i18n/:lang", cardHandler.GetTranslations)

		cards := api.Group("/cards")
		{
			cards.GET("/:id/qr", cardHandler.GetCardQR)
		}

		albumRoutes := api.Group("/album")
		{
			albumRoutes.GET("", albumHandler.GetAlbum)
			albumRoutes.PUT("", albumHandler.ImportAlbum)
			albumRoutes.POST("/cards", albumHandler.AddCard)
			albumRoutes.GET("/sets", albumHandler.GetSets)
			albumRoutes.GET("/sets/:setId", albumHandler.GetSetCards)
			albumRoutes.GET("/stats", albumHandler.GetStats)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve frontend static files
	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/vite.svg", filepath.Join(frontendPath, "vite.svg"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
