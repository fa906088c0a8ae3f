package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tictactoe_server/internal/lobby"
)

// RoomsHandler exposes the lobby listing over REST, mirroring the
// rooms_updated websocket payload for clients polling before they connect.
type RoomsHandler struct {
	lobby *lobby.Directory
}

func NewRoomsHandler(dir *lobby.Directory) *RoomsHandler {
	return &RoomsHandler{lobby: dir}
}

// List returns rooms currently awaiting an opponent.
func (h *RoomsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.lobby.AvailableRooms()})
}
