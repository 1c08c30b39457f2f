package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type ScoreController struct {
	scores  *service.ScoreService
	auth    *transport.Authenticator
	limiter *transport.RateLimiter
}

func NewScoreController(scores *service.ScoreService, auth *transport.Authenticator, limiter *transport.RateLimiter) *ScoreController {
	return &ScoreController{scores: scores, auth: auth, limiter: limiter}
}

func (c *ScoreController) RegisterRoutes(engine *gin.Engine) {
	judge := engine.Group("/api/scores", transport.JudgeAuthMiddleware(c.auth))
	judge.GET("", c.listMine)
	judge.PUT("", c.limiter.Middleware(), c.upsert)

	admin := engine.Group("/api/admin/scores", transport.AdminAuthMiddleware(c.auth))
	admin.GET("", c.listAll)
	admin.POST("/:teamId/:judgeId/unlock", c.unlock)
}

// @Security JudgeToken
// upsert godoc
// @Summary Submit or replace the caller's score for a team
// @Description The total is recomputed from the detail. Refused while scoring is locked for the judge.
// @Tags scores
// @Accept json
// @Produce json
// @Param request body models.ScoreUpsertRequest true "Score submission"
// @Success 200 {object} models.ScoreResponse
// @Failure 400 {object} models.ErrorResponse "Invalid detail"
// @Failure 404 {object} models.ErrorResponse "Unknown team or judge"
// @Failure 423 {object} models.ErrorResponse "Scoring locked"
// @Failure 500 {object} models.ErrorResponse "Write failed, retry"
// @Router /api/scores [put]
func (c *ScoreController) upsert(g *gin.Context) {
	var req models.ScoreUpsertRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.TeamID == "" || req.Detail == nil {
		badRequest(g, "invalid request, missing teamId or detail")
		return
	}

	sub := service.Submission{Detail: req.Detail, Comment: req.Comment}
	if req.Signature != "" {
		sub.Signature = []byte(req.Signature)
	}

	rec, err := c.scores.Upsert(g.Request.Context(), transport.Subject(g), req.TeamID, sub)
	if err != nil {
		respondError(g, "SCORE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformScoreFromStorage(rec))
}

// @Security JudgeToken
// listMine godoc
// @Summary List the caller's score records
// @Tags scores
// @Produce json
// @Success 200 {array} models.ScoreResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/scores [get]
func (c *ScoreController) listMine(g *gin.Context) {
	records, err := c.scores.ListByJudge(g.Request.Context(), transport.Subject(g))
	if err != nil {
		respondError(g, "SCORE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformScoresFromStorage(records))
}

// @Security AdminToken
// listAll godoc
// @Summary List every score record
// @Tags admin
// @Produce json
// @Success 200 {array} models.ScoreResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/scores [get]
func (c *ScoreController) listAll(g *gin.Context) {
	records, err := c.scores.List(g.Request.Context())
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	logging.Log.Infof("ADMIN: listed %d score records", len(records))
	g.JSON(http.StatusOK, models.TransformScoresFromStorage(records))
}

// @Security AdminToken
// unlock godoc
// @Summary Clear a sealed score so the judge can score again
// @Tags admin
// @Produce json
// @Param teamId path string true "Team ID"
// @Param judgeId path string true "Judge ID"
// @Success 200 {object} models.ScoreResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/scores/{teamId}/{judgeId}/unlock [post]
func (c *ScoreController) unlock(g *gin.Context) {
	rec, err := c.scores.Unlock(g.Request.Context(), g.Param("teamId"), g.Param("judgeId"))
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformScoreFromStorage(rec))
}
