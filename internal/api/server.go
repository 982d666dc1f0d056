// Package api serves the extraction engine over HTTP as a small JSON API.
// Every endpoint takes a site query parameter ("fun" or "fap") and answers
// with the engine's records as JSON.
package api

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/litescript/nyaa-tui/internal/version"
)

// NewServer creates a gin engine with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	r := gin.New()

	r.Use(requestLogger())
	r.Use(gin.Recovery())

	// CORS for browser clients
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)
	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.HealthCheck)

	api := r.Group("/api/v1")
	{
		api.GET("/search", handler.Search)
		api.GET("/view/:id", handler.View)
		api.GET("/feed", handler.Feed)
		api.GET("/categories", handler.Categories)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "nyaa-tui",
			"version": version.Version,
			"endpoints": map[string]string{
				"search":     "/api/v1/search?site=<fun|fap>&q=&user=&filter=&category=&sort=&order=&page=",
				"view":       "/api/v1/view/<id>?site=<fun|fap>",
				"feed":       "/api/v1/feed?site=<fun|fap>&q=&user=&filter=&category=",
				"categories": "/api/v1/categories?site=<fun|fap>",
				"health":     "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// requestLogger logs one line per request through apex/log
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"query":    c.Request.URL.RawQuery,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Millisecond).String(),
			"client":   c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	}
}
