package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/site-engineer-app/hub"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type LiveController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewLiveController accepts upgrades from allowedOrigin, or from anywhere
// when it is "*" or empty.
func NewLiveController(h *hub.Hub, allowedOrigin string) *LiveController {
	return &LiveController{
		Hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Stream -> live feed of check-ins, reports and leave decisions for staff
func (lc *LiveController) Stream(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}

	conn, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	lc.Hub.Register(conn, caller.Role).ReadLoop()
}
