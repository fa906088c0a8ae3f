package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tictactoe_server/internal/game"
	"tictactoe_server/internal/logger"
	"tictactoe_server/internal/service"
)

// HandleWS upgrades an authenticated request and starts the client pumps.
// The token carries the stable participant identity; the connection id is
// minted fresh per socket.
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		session, err := service.ParseGuestToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "err", err)
			return
		}

		identity := game.Profile{
			ID:     session.ParticipantID,
			Name:   session.Name,
			Avatar: session.Avatar,
		}
		client := newClient(uuid.New().String(), identity, conn, hub)
		go client.Run()
	}
}
