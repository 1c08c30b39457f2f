package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/control"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type ControlController struct {
	control *service.ControlService
	auth    *transport.Authenticator
}

func NewControlController(ctrl *service.ControlService, auth *transport.Authenticator) *ControlController {
	return &ControlController{control: ctrl, auth: auth}
}

func (c *ControlController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/control", c.get)

	group := engine.Group("/api/admin/control", transport.AdminAuthMiddleware(c.auth))
	group.POST("/lock", c.setGlobalLock)
	group.POST("/judges/:judgeId/toggle", c.toggleJudgeException)
	group.POST("/active-team", c.setActiveTeam)
	group.POST("/timer/toggle", c.toggleTimer)
	group.POST("/timer/reset", c.resetTimer)
}

// get godoc
// @Summary Current control state
// @Tags control
// @Produce json
// @Success 200 {object} control.State
// @Failure 500 {object} models.ErrorResponse
// @Router /api/control [get]
func (c *ControlController) get(g *gin.Context) {
	st, err := c.control.State(g.Request.Context())
	c.respond(g, st, err)
}

// @Security AdminToken
// setGlobalLock godoc
// @Summary Lock or unlock scoring for every judge
// @Description Clears every per-judge exception.
// @Tags control
// @Accept json
// @Produce json
// @Param request body models.GlobalLockRequest true "Lock flag"
// @Success 200 {object} control.State
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/control/lock [post]
func (c *ControlController) setGlobalLock(g *gin.Context) {
	var req models.GlobalLockRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Locked == nil {
		badRequest(g, "invalid request, missing locked")
		return
	}
	st, err := c.control.SetGlobalLock(g.Request.Context(), *req.Locked)
	c.respond(g, st, err)
}

// @Security AdminToken
// toggleJudgeException godoc
// @Summary Let one judge score while the global lock is on, or revoke it
// @Description No effect while the global lock is off.
// @Tags control
// @Produce json
// @Param judgeId path string true "Judge ID"
// @Success 200 {object} control.State
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/control/judges/{judgeId}/toggle [post]
func (c *ControlController) toggleJudgeException(g *gin.Context) {
	st, err := c.control.ToggleJudgeException(g.Request.Context(), g.Param("judgeId"))
	c.respond(g, st, err)
}

// @Security AdminToken
// setActiveTeam godoc
// @Summary Spotlight a team
// @Tags control
// @Accept json
// @Produce json
// @Param request body models.ActiveTeamRequest true "Team to spotlight, empty to clear"
// @Success 200 {object} control.State
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/control/active-team [post]
func (c *ControlController) setActiveTeam(g *gin.Context) {
	var req models.ActiveTeamRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	st, err := c.control.SetActiveTeam(g.Request.Context(), req.TeamID)
	c.respond(g, st, err)
}

// @Security AdminToken
// toggleTimer godoc
// @Summary Start or pause the presentation timer
// @Tags control
// @Produce json
// @Success 200 {object} control.State
// @Router /api/admin/control/timer/toggle [post]
func (c *ControlController) toggleTimer(g *gin.Context) {
	st, err := c.control.ToggleTimer(g.Request.Context())
	c.respond(g, st, err)
}

// @Security AdminToken
// resetTimer godoc
// @Summary Stop the timer and restore the presentation length
// @Tags control
// @Produce json
// @Success 200 {object} control.State
// @Router /api/admin/control/timer/reset [post]
func (c *ControlController) resetTimer(g *gin.Context) {
	st, err := c.control.ResetTimer(g.Request.Context())
	c.respond(g, st, err)
}

func (c *ControlController) respond(g *gin.Context, st control.State, err error) {
	if err != nil {
		respondError(g, "CONTROL", err)
		return
	}
	g.JSON(http.StatusOK, st)
}
