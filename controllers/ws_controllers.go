package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dinehub/restaurant-backend/kds"
	"github.com/dinehub/restaurant-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// KDSHandler upgrades the connection and parks it in the hub until the
// client hangs up. The read loop exists only to detect disconnects;
// clients talk to the server over REST.
func KDSHandler(c *gin.Context) {
	role := callerRole(c)
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if kds.RoomForRole(role) == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	userID := callerID(c)
	kds.RegisterClient(ws, role, userID)
	utils.InfoLogger.Printf("KDS client connected (role=%s, user=%d)", role, userID)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kds.UnregisterClient(ws)
	utils.InfoLogger.Printf("KDS client disconnected (role=%s, user=%d)", role, userID)
}
