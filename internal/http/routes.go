package http

import (
	"github.com/gin-gonic/gin"

	"tictactoe_server/internal/config"
	"tictactoe_server/internal/game"
	"tictactoe_server/internal/http/handlers"
	"tictactoe_server/internal/http/middleware"
	"tictactoe_server/internal/lobby"
	"tictactoe_server/internal/ws"
)

// RegisterRoutes wires the HTTP surface: probes, the REST lobby view, guest
// session minting and the websocket gateway. Returns the hub so callers can
// reach it in tests.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, version string) *ws.Hub {
	games := game.NewManager()
	lobbyDir := lobby.NewDirectory(cfg.RoomMaxAge, cfg.ReconnectGrace)
	hub := ws.NewHub(games, lobbyDir)

	healthHandler := handlers.NewHealthHandler(version)
	sessionHandler := handlers.NewSessionHandler()
	roomsHandler := handlers.NewRoomsHandler(lobbyDir)

	// Probes stay outside the rate limit.
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	v1.POST("/session", sessionHandler.Create)
	v1.GET("/rooms", roomsHandler.List)

	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))

	return hub
}
