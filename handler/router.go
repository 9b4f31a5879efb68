package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skryldev/disposition-api/config"
	"github.com/Skryldev/disposition-api/db"
)

// NewRouter wires middleware and routes around database.
func NewRouter(database *db.DB, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(RequestID(log))
	router.Use(AccessLog())
	router.Use(Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}))

	h := New(database)
	router.GET("/health", h.health)
	h.registerUserRoutes(router)
	h.registerDispositionRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		fail[struct{}](c, http.StatusNotFound, "route not found")
	})
	return router
}
