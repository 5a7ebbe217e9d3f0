package api

import (
	"nothivault/internal/vault/config"
	"nothivault/internal/vault/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, sessions *service.Manager, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", sessionHeader},
		ExposeHeaders:    []string{sessionHeader},
		AllowCredentials: false,
	}))
	e.Use(RequestLogger())

	// Rate limiter on upload endpoint only
	uploadLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Health & stats (session-free)
	e.GET("/health", handler.HandleHealth)
	e.GET("/api/stats", handler.HandleStats)

	// Session-scoped vault routes
	withSession := SessionMiddleware(sessions)
	g := e.Group("", withSession)

	g.GET("/api/folders", handler.HandleFolders)
	g.GET("/api/state", handler.HandleState)
	g.POST("/api/folders/:id/select", handler.HandleSelectFolder)
	g.POST("/api/unlock", handler.HandleUnlock)

	g.GET("/api/files", handler.HandleListFiles)
	g.POST("/api/upload", handler.HandleUpload, uploadLimiter.Middleware())
	g.DELETE("/api/files/:id", handler.HandleDelete)
	g.GET("/api/files/:id/download", handler.HandleDownload)
	g.GET("/api/folders/:id/export", handler.HandleExportFolder)

	return e
}
