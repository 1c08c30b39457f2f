package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type AdminController struct {
	services *service.Services
	auth     *transport.Authenticator
}

func NewAdminController(s *service.Services, auth *transport.Authenticator) *AdminController {
	return &AdminController{
		services: s,
		auth:     auth,
	}
}

func (c *AdminController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin", transport.AdminAuthMiddleware(c.auth))

	group.GET("/codes", c.listCodes)
	group.POST("/codes", c.createCode)
	group.DELETE("/codes/:code", c.deleteCode)
	group.POST("/codes/reset", c.resetCodes)
	group.POST("/reset", c.resetAll)
}

// @Security AdminToken
// listCodes godoc
// @Summary List all voting codes
// @Tags admin
// @Produce json
// @Success 200 {array} storage.VotingCode
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/codes [get]
func (c *AdminController) listCodes(g *gin.Context) {
	codes, err := c.services.Audience.Codes(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}

	logging.Log.Infof("ADMIN: listed %d codes", len(codes))
	g.JSON(http.StatusOK, codes)
}

// @Security AdminToken
// createCode godoc
// @Summary Create one or more voting codes
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.CreateCodeRequest true "Create Code Request"
// @Success 200 {array} storage.VotingCode
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/codes [post]
func (c *AdminController) createCode(g *gin.Context) {
	var req models.CreateCodeRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request, missing count")
		return
	}

	codes, err := c.services.Audience.GenerateCodes(g.Request.Context(), req.Count)
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, codes)
}

// @Security AdminToken
// deleteCode godoc
// @Summary Delete a voting code by its value
// @Tags admin
// @Produce json
// @Param code path string true "Voting code"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/codes/{code} [delete]
func (c *AdminController) deleteCode(g *gin.Context) {
	code := g.Param("code")
	if err := c.services.Audience.DeleteCode(g.Request.Context(), code); err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, gin.H{"deleted": code})
}

// @Security AdminToken
// resetCodes godoc
// @Summary Reset all voting codes to unused
// @Tags admin
// @Produce json
// @Success 200 {object} models.ResetCodesResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/codes/reset [post]
func (c *AdminController) resetCodes(g *gin.Context) {
	n, err := c.services.Audience.ResetCodes(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, &models.ResetCodesResponse{Message: "All codes reset", Reset: n})
}

// @Security AdminToken
// resetAll godoc
// @Summary Wipe every score and audience ballot
// @Description Marks all codes unused and restores the default control state. Teams, judges and settings are kept. Requires {"confirm": true}.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.ResetRequest true "Confirmation"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/reset [post]
func (c *AdminController) resetAll(g *gin.Context) {
	var req models.ResetRequest
	if err := g.ShouldBindJSON(&req); err != nil || !req.Confirm {
		badRequest(g, "reset must be confirmed")
		return
	}
	if err := c.services.Reset(g.Request.Context()); err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "system reset"})
}
