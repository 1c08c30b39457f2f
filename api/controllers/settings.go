package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type SettingsController struct {
	settings *service.SettingsService
	auth     *transport.Authenticator
}

func NewSettingsController(settings *service.SettingsService, auth *transport.Authenticator) *SettingsController {
	return &SettingsController{settings: settings, auth: auth}
}

func (c *SettingsController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/settings", c.get)
	engine.GET("/api/criteria", c.getCriteria)

	admin := engine.Group("/api/admin", transport.AdminAuthMiddleware(c.auth))
	admin.PUT("/settings", c.save)
	admin.PUT("/criteria", c.saveCriteria)
	admin.POST("/criteria/validate", c.validateCriteria)
}

// get godoc
// @Summary Event settings
// @Description Returns the defaults when nothing was saved yet.
// @Tags settings
// @Produce json
// @Success 200 {object} scoring.Settings
// @Failure 500 {object} models.ErrorResponse
// @Router /api/settings [get]
func (c *SettingsController) get(g *gin.Context) {
	s, err := c.settings.Get(g.Request.Context())
	if err != nil {
		respondError(g, "SETTINGS", err)
		return
	}
	g.JSON(http.StatusOK, s)
}

// getCriteria godoc
// @Summary Current rubric
// @Tags settings
// @Produce json
// @Success 200 {object} scoring.Rubric
// @Router /api/criteria [get]
func (c *SettingsController) getCriteria(g *gin.Context) {
	s, err := c.settings.Get(g.Request.Context())
	if err != nil {
		respondError(g, "SETTINGS", err)
		return
	}
	g.JSON(http.StatusOK, s.Criteria)
}

// @Security AdminToken
// save godoc
// @Summary Replace the event settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body scoring.Settings true "Settings"
// @Success 200 {object} scoring.Settings
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} scoring.Report "Inconsistent rubric"
// @Router /api/admin/settings [put]
func (c *SettingsController) save(g *gin.Context) {
	var req scoring.Settings
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	s, err := c.settings.Save(g.Request.Context(), req)
	if err != nil {
		respondError(g, "SETTINGS", err)
		return
	}
	g.JSON(http.StatusOK, s)
}

// @Security AdminToken
// saveCriteria godoc
// @Summary Replace the rubric
// @Description Rejected with the validation report when item maxima do not add up.
// @Tags settings
// @Accept json
// @Produce json
// @Param rubric body scoring.Rubric true "Rubric"
// @Success 200 {object} scoring.Rubric
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} scoring.Report "Inconsistent rubric"
// @Router /api/admin/criteria [put]
func (c *SettingsController) saveCriteria(g *gin.Context) {
	var req scoring.Rubric
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	s, err := c.settings.SaveCriteria(g.Request.Context(), req)
	if err != nil {
		respondError(g, "SETTINGS", err)
		return
	}
	g.JSON(http.StatusOK, s.Criteria)
}

// @Security AdminToken
// validateCriteria godoc
// @Summary Check a rubric without saving it
// @Tags settings
// @Accept json
// @Produce json
// @Param rubric body scoring.Rubric true "Rubric"
// @Success 200 {object} scoring.Report
// @Failure 400 {object} models.ErrorResponse
// @Router /api/admin/criteria/validate [post]
func (c *SettingsController) validateCriteria(g *gin.Context) {
	var req scoring.Rubric
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	g.JSON(http.StatusOK, scoring.ValidateCriteria(req))
}
