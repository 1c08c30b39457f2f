package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/realtime"
)

type RealtimeController struct {
	hub  *realtime.Hub
	auth *transport.Authenticator
}

func NewRealtimeController(hub *realtime.Hub, auth *transport.Authenticator) *RealtimeController {
	return &RealtimeController{hub: hub, auth: auth}
}

func (c *RealtimeController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/ws", c.subscribe)
}

// subscribe godoc
// @Summary Subscribe to live documents
// @Description Upgrades to a websocket. Without a token the connection is a read-only viewer.
// @Tags realtime
// @Param token query string false "Admin or judge token"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Router /ws [get]
func (c *RealtimeController) subscribe(g *gin.Context) {
	peer := realtime.Peer{Role: realtime.RoleViewer}

	if token := g.Query("token"); token != "" {
		role, subject, err := c.auth.Identify(token)
		if err != nil {
			g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "unauthorized"})
			return
		}
		peer = realtime.Peer{Role: role, Subject: subject}
	}

	// The upgrader already wrote the failure response.
	_ = c.hub.Serve(g.Writer, g.Request, peer)
}
