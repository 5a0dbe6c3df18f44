package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joshua-takyi/tryfield/internal/live"
)

// LiveHandler upgrades to a websocket that streams the caller's notifications and messages.
func LiveHandler(hub *live.Hub, allowedOrigin string, logger *slog.Logger) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedOrigin == "" || origin == allowedOrigin
		},
	}
	return func(c *gin.Context) {
		actor := actorOf(c)
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "user_id", actor.ID, "error", err)
			return
		}
		hub.Serve(c.Request.Context(), actor.ID, conn)
	}
}
