package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/utils"
)

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and subscribes it to the
// restaurant's realtime events. Authentication happens before the upgrade
// in the websocket middleware.
func (kc *KDSController) HandleWebSocket(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Error upgrading websocket: %v", err)
		return
	}

	kc.Hub.Register(conn, restaurantID, roleStr)
	utils.InfoLogger.Printf("Websocket client connected for restaurant %s (%d active)",
		restaurantID, kc.Hub.ClientCount(restaurantID))

	// Clients only listen; the read loop just detects disconnects.
	go func() {
		defer kc.Hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
