package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type ResultsController struct {
	results *service.ResultsService
	auth    *transport.Authenticator
}

func NewResultsController(results *service.ResultsService, auth *transport.Authenticator) *ResultsController {
	return &ResultsController{results: results, auth: auth}
}

func (c *ResultsController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin/results", transport.AdminAuthMiddleware(c.auth))

	group.GET("", c.leaderboard)
	group.GET("/winner", c.winner)
	group.GET("/export", c.export)
}

// @Security AdminToken
// leaderboard godoc
// @Summary Ranked leaderboard
// @Tags results
// @Produce json
// @Success 200 {object} service.Leaderboard
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/results [get]
func (c *ResultsController) leaderboard(g *gin.Context) {
	board, err := c.results.Leaderboard(g.Request.Context())
	if err != nil {
		respondError(g, "RESULTS", err)
		return
	}
	g.JSON(http.StatusOK, board)
}

// @Security AdminToken
// winner godoc
// @Summary Top ranked team
// @Tags results
// @Produce json
// @Success 200 {object} scoring.Standing
// @Failure 404 {object} models.ErrorResponse "No team has been scored"
// @Router /api/admin/results/winner [get]
func (c *ResultsController) winner(g *gin.Context) {
	w, ok, err := c.results.Winner(g.Request.Context())
	if err != nil {
		respondError(g, "RESULTS", err)
		return
	}
	if !ok {
		g.JSON(http.StatusNotFound, gin.H{"error": "no team has been scored yet"})
		return
	}
	g.JSON(http.StatusOK, w)
}

// @Security AdminToken
// export godoc
// @Summary Download the results as CSV
// @Tags results
// @Produce text/csv
// @Success 200 {file} file
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/results/export [get]
func (c *ResultsController) export(g *gin.Context) {
	var buf bytes.Buffer
	if err := c.results.Export(g.Request.Context(), &buf); err != nil {
		respondError(g, "RESULTS", err)
		return
	}
	name := fmt.Sprintf("results_%s.csv", time.Now().Format("20060102_1504"))
	logging.Log.Infof("RESULTS: exported %d bytes", buf.Len())
	g.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	g.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
