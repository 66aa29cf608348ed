package api

import (
	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// The map frontend is served from a different origin during
	// development.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/healthz", handler.GetHealth)
	r.GET("/api/status", handler.GetStatus)
	r.GET("/api/features", handler.GetFeatures)
	r.GET("/api/filter", handler.ApplyFilter)
	r.GET("/api/list", handler.GetList)
	r.GET("/api/categories", handler.GetCategories)
	r.GET("/api/geocode", handler.Geocode)

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	return r
}
