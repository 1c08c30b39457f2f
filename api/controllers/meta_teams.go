package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/roster"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

const maxImportBytes = 1 << 20

type RosterMetaController struct {
	roster *service.RosterService
	auth   *transport.Authenticator
}

func NewRosterMetaController(r *service.RosterService, auth *transport.Authenticator) *RosterMetaController {
	return &RosterMetaController{roster: r, auth: auth}
}

func (c *RosterMetaController) RegisterRoutes(engine *gin.Engine) {
	admin := transport.AdminAuthMiddleware(c.auth)

	teams := engine.Group("/api/meta/teams")
	teams.GET("", c.getTeams)
	teams.GET("/:id", c.getTeam)
	teams.GET("/template", admin, c.teamTemplate)
	teams.POST("", admin, c.createTeam)
	teams.POST("/import", admin, c.importTeams)
	teams.PUT("/order", admin, c.reorderTeams)
	teams.PUT("/:id", admin, c.updateTeam)
	teams.DELETE("/:id", admin, c.deleteTeam)

	judges := engine.Group("/api/meta/judges")
	judges.GET("", c.getJudges)
	judges.GET("/template", admin, c.judgeTemplate)
	judges.POST("", admin, c.createJudge)
	judges.POST("/import", admin, c.importJudges)
	judges.PUT("/order", admin, c.reorderJudges)
	judges.PUT("/:id", admin, c.updateJudge)
	judges.DELETE("/:id", admin, c.deleteJudge)
}

// @Summary Get all teams in presentation order
// @Tags Meta/Teams
// @Produce json
// @Success 200 {object} models.TeamListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/teams [get]
func (c *RosterMetaController) getTeams(g *gin.Context) {
	teams, err := c.roster.Teams(g.Request.Context())
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, models.TeamListResponse{List: teams})
}

// @Summary Get a team by ID
// @Tags Meta/Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} storage.Team
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/teams/{id} [get]
func (c *RosterMetaController) getTeam(g *gin.Context) {
	team, err := c.roster.Team(g.Request.Context(), g.Param("id"))
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, team)
}

// @Security AdminToken
// @Summary Create a team
// @Tags Meta/Teams
// @Accept json
// @Produce json
// @Param team body models.TeamCreateRequest true "Team"
// @Success 201 {object} storage.Team
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/teams [post]
func (c *RosterMetaController) createTeam(g *gin.Context) {
	var req models.TeamCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	team, err := c.roster.AddTeam(g.Request.Context(), req.ToStorage(""))
	if err != nil {
		respondError(g, "META", err)
		return
	}
	logging.Log.Infof("META: created team %s (%s)", team.ID, team.Name)
	g.JSON(http.StatusCreated, team)
}

// @Security AdminToken
// @Summary Update a team
// @Tags Meta/Teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param team body models.TeamUpdateRequest true "Team"
// @Success 200 {object} storage.Team
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/meta/teams/{id} [put]
func (c *RosterMetaController) updateTeam(g *gin.Context) {
	var req models.TeamUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	team, err := c.roster.UpdateTeam(g.Request.Context(), req.ToStorage(g.Param("id")))
	if err != nil {
		respondError(g, "META", err)
		return
	}
	logging.Log.Infof("META: updated team %s", team.ID)
	g.JSON(http.StatusOK, team)
}

// @Security AdminToken
// @Summary Delete a team
// @Tags Meta/Teams
// @Param id path string true "Team ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /api/meta/teams/{id} [delete]
func (c *RosterMetaController) deleteTeam(g *gin.Context) {
	id := g.Param("id")
	if err := c.roster.DeleteTeam(g.Request.Context(), id); err != nil {
		respondError(g, "META", err)
		return
	}
	logging.Log.Infof("META: deleted team %s", id)
	g.Status(http.StatusNoContent)
}

// @Security AdminToken
// @Summary Reorder teams
// @Tags Meta/Teams
// @Accept json
// @Produce json
// @Param order body models.ReorderRequest true "Every team id in the new order"
// @Success 200 {object} models.TeamListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/meta/teams/order [put]
func (c *RosterMetaController) reorderTeams(g *gin.Context) {
	var req models.ReorderRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	teams, err := c.roster.ReorderTeams(g.Request.Context(), req.IDs)
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, models.TeamListResponse{List: teams})
}

// @Security AdminToken
// @Summary Import teams from CSV
// @Description Appends every row of the uploaded CSV. Any invalid row rejects the whole file.
// @Tags Meta/Teams
// @Accept text/csv
// @Produce json
// @Success 200 {object} models.TeamListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/meta/teams/import [post]
func (c *RosterMetaController) importTeams(g *gin.Context) {
	body := http.MaxBytesReader(g.Writer, g.Request.Body, maxImportBytes)
	teams, err := c.roster.ImportTeams(g.Request.Context(), body)
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, models.TeamListResponse{List: teams})
}

// @Security AdminToken
// @Summary Download the team import template
// @Tags Meta/Teams
// @Produce text/csv
// @Success 200 {file} file
// @Router /api/meta/teams/template [get]
func (c *RosterMetaController) teamTemplate(g *gin.Context) {
	g.Header("Content-Disposition", `attachment; filename="teams_template.csv"`)
	g.Data(http.StatusOK, "text/csv; charset=utf-8", roster.TeamTemplate())
}

// @Summary Get all judges
// @Tags Meta/Judges
// @Produce json
// @Success 200 {object} models.JudgeListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/judges [get]
func (c *RosterMetaController) getJudges(g *gin.Context) {
	judges, err := c.roster.Judges(g.Request.Context())
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, models.JudgeListResponse{List: judges})
}

// @Security AdminToken
// @Summary Create a judge
// @Tags Meta/Judges
// @Accept json
// @Produce json
// @Param judge body models.JudgeCreateRequest true "Judge"
// @Success 201 {object} storage.Judge
// @Failure 400 {object} models.ErrorResponse
// @Router /api/meta/judges [post]
func (c *RosterMetaController) createJudge(g *gin.Context) {
	var req models.JudgeCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	judge, err := c.roster.AddJudge(g.Request.Context(), req.ToStorage(""))
	if err != nil {
		respondError(g, "META", err)
		return
	}
	logging.Log.Infof("META: created judge %s (%s)", judge.ID, judge.Name)
	g.JSON(http.StatusCreated, judge)
}

// @Security AdminToken
// @Summary Update a judge
// @Tags Meta/Judges
// @Accept json
// @Produce json
// @Param id path string true "Judge ID"
// @Param judge body models.JudgeUpdateRequest true "Judge"
// @Success 200 {object} storage.Judge
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/meta/judges/{id} [put]
func (c *RosterMetaController) updateJudge(g *gin.Context) {
	var req models.JudgeUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	judge, err := c.roster.UpdateJudge(g.Request.Context(), req.ToStorage(g.Param("id")))
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, judge)
}

// @Security AdminToken
// @Summary Delete a judge
// @Tags Meta/Judges
// @Param id path string true "Judge ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /api/meta/judges/{id} [delete]
func (c *RosterMetaController) deleteJudge(g *gin.Context) {
	id := g.Param("id")
	if err := c.roster.DeleteJudge(g.Request.Context(), id); err != nil {
		respondError(g, "META", err)
		return
	}
	logging.Log.Infof("META: deleted judge %s", id)
	g.Status(http.StatusNoContent)
}

// @Security AdminToken
// @Summary Reorder judges
// @Tags Meta/Judges
// @Accept json
// @Produce json
// @Param order body models.ReorderRequest true "Every judge id in the new order"
// @Success 200 {object} models.JudgeListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/meta/judges/order [put]
func (c *RosterMetaController) reorderJudges(g *gin.Context) {
	var req models.ReorderRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request body")
		return
	}
	judges, err := c.roster.ReorderJudges(g.Request.Context(), req.IDs)
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, models.JudgeListResponse{List: judges})
}

// @Security AdminToken
// @Summary Import judges from CSV
// @Tags Meta/Judges
// @Accept text/csv
// @Produce json
// @Success 200 {object} models.JudgeListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/meta/judges/import [post]
func (c *RosterMetaController) importJudges(g *gin.Context) {
	body := http.MaxBytesReader(g.Writer, g.Request.Body, maxImportBytes)
	judges, err := c.roster.ImportJudges(g.Request.Context(), body)
	if err != nil {
		respondError(g, "META", err)
		return
	}
	g.JSON(http.StatusOK, models.JudgeListResponse{List: judges})
}

// @Security AdminToken
// @Summary Download the judge import template
// @Tags Meta/Judges
// @Produce text/csv
// @Success 200 {file} file
// @Router /api/meta/judges/template [get]
func (c *RosterMetaController) judgeTemplate(g *gin.Context) {
	g.Header("Content-Disposition", `attachment; filename="judges_template.csv"`)
	g.Data(http.StatusOK, "text/csv; charset=utf-8", roster.JudgeTemplate())
}
