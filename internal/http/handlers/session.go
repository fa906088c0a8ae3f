package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tictactoe_server/internal/service"
)

// SessionHandler mints guest session tokens. The token is the opaque
// identity a client presents on the websocket; the participant id inside it
// is what lets a creator reconnect without losing their lobby room.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type createSessionRequest struct {
	Name   string  `json:"name" binding:"required"`
	Avatar *string `json:"avatar"`
}

type createSessionResponse struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
}

// Create issues a token for a fresh participant.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	token, participantID, err := service.NewGuestToken(req.Name, req.Avatar)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, createSessionResponse{
		Token:         token,
		ParticipantID: participantID,
	})
}
