package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/auth"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
)

// RoomHub is the registry surface the server needs.
type RoomHub interface {
	core.Hub
	Counter
}

// NewServer builds the HTTP server with the chat, auth and health routes.
func NewServer(hub RoomHub, authn Authenticator, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, authn, authService, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine.
func NewRouter(hub RoomHub, authn Authenticator, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RecoveryMiddleware(logger), LoggerMiddleware(logger))

	api := NewAPIHandlers(authService, hub, cfg, logger)
	router.GET("/health", api.Health)

	apiGroup := router.Group("/api")
	apiGroup.GET("/stats", api.Stats)
	if authService != nil {
		apiGroup.POST("/signup", api.Signup)
		apiGroup.POST("/login", api.Login)
	}

	ws := NewWSHandler(hub, cfg, logger)
	gate := ConnectionGate(authn, logger)
	router.GET("/ws/chat/:room_name", gate, ws.ServeChat)
	router.GET("/ws/chat/:room_name/", gate, ws.ServeChat)

	return router
}
