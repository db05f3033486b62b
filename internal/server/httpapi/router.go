// Package httpapi exposes the sync service over a JSON REST API using gin.
// All document and stats routes are scoped to the authenticated user.
package httpapi

import (
	"net/http"

	"github.com/dkrasnov/flashread/internal/logging"
	"github.com/dkrasnov/flashread/internal/server/config"
	"github.com/dkrasnov/flashread/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the services the router dispatches to.
type Handlers struct {
	Users     *services.UserService
	Documents *services.DocumentService
	Stats     *services.StatsService
}

// NewRouter builds the gin engine with CORS, auth middleware, and all
// API routes mounted under /api/v1.
func NewRouter(cfg *config.Config, h Handlers, logger logging.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	api := router.Group("/api/v1")

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := &authHandler{users: h.Users}
	api.POST("/auth/register", authH.register)
	api.POST("/auth/login", authH.login)
	api.POST("/auth/refresh", authH.refresh)

	protected := api.Group("/")
	protected.Use(authMiddleware([]byte(cfg.SecretKey)))

	docH := &documentHandler{documents: h.Documents}
	protected.GET("/documents", docH.list)
	protected.POST("/documents", docH.create)
	protected.PATCH("/documents/:id/progress", docH.updateProgress)
	protected.PATCH("/documents/:id/fingerprint", docH.setFingerprint)
	protected.DELETE("/documents/:id", docH.delete)

	statsH := &statsHandler{stats: h.Stats}
	protected.GET("/stats", statsH.get)
	protected.PUT("/stats", statsH.save)
	protected.POST("/sessions", statsH.saveSession)

	return router
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
