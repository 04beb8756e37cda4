package controllers

import (
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/gin-gonic/gin"
)

type RealtimeController struct {
	hub *realtime.Hub
}

func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

func (c *RealtimeController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/ws", c.serve)
}

// serve godoc
// @Summary Realtime websocket
// @Description Send {"type":"authenticate","token":"..."} within the auth timeout, then optionally {"type":"subscribe_checkpoints"}.
// @Tags realtime
// @Success 101
// @Router /api/ws [get]
func (c *RealtimeController) serve(g *gin.Context) {
	if err := c.hub.Serve(g.Writer, g.Request); err != nil {
		logging.Log.Warnf("WS: connection from %s ended: %v", g.ClientIP(), err)
	}
}
