package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/chaiadda/backend/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// joinRequest is what a session sends after connecting to declare which
// audience it belongs to. The hub knows nothing about a connection until
// this arrives.
type joinRequest struct {
	Event string `json:"event"` // "join_admin" or "join_user"
}

// WSHandler returns the websocket endpoint. Admin sessions may join the
// admin broadcast group; everyone may join their own owner group. The
// declared audience is checked against the token identity, so a session
// cannot subscribe to another owner's events.
func WSHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		role := roleVal.(string)
		userID, _ := c.Get("user_id")
		uid, _ := userID.(uint)

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer hub.Leave(ws)

		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}

			var join joinRequest
			if err := json.Unmarshal(payload, &join); err != nil {
				continue
			}

			switch join.Event {
			case "join_admin":
				if role == "admin" {
					hub.JoinAdmin(ws)
				}
			case "join_user":
				hub.JoinUser(ws, uid)
			}
		}
	}
}
