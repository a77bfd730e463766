package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JustJay7/court-fetcher/internal/config"
	"github.com/JustJay7/court-fetcher/internal/service"
	"github.com/JustJay7/court-fetcher/pkg/logger"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, svc *service.Service, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(svc, logger)

	// Downloaded documents and cause lists
	router.Static("/uploads", cfg.UploadsDir)

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/courts", h.Courts)
		api.GET("/cache/stats", h.CacheStats)

		// Case search and history
		api.POST("/search", h.Search)
		api.GET("/history", h.History)
		api.GET("/query/:queryId", h.QueryDetail)

		// Files
		api.GET("/download/:documentId", h.DownloadDocument)
		api.POST("/cause-list", h.CauseList)
		api.GET("/download-cause-list/:filename", h.DownloadCauseList)
	}

	if cfg.StaticDir != "" {
		router.NoRoute(spaHandler(cfg.StaticDir))
	}
}

// spaHandler serves the frontend bundle, falling back to index.html for
// client side routes.
func spaHandler(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Not found",
			})
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
			c.File(file)
			return
		}
		c.File(index)
	}
}
