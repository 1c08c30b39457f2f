package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type VotingController struct {
	audience *service.AudienceService
	roster   *service.RosterService
	limiter  *transport.RateLimiter
}

func NewVotingController(audience *service.AudienceService, roster *service.RosterService, limiter *transport.RateLimiter) *VotingController {
	return &VotingController{
		audience: audience,
		roster:   roster,
		limiter:  limiter,
	}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/verify/:code", c.validateVotingCode)
	group.POST("/vote", c.limiter.Middleware(), c.registerVote)
	group.GET("/vote/:code", c.getVotesByCode)
}

// registerVote godoc
// @Summary Register an audience ballot
// @Description Rates one or more teams with a single-use code. Ratings run 1..10 and each team may appear once.
// @Tags voting
// @Accept json
// @Produce json
// @Param vote body models.RegisterVoteRequest true "Vote submission"
// @Success 200 {object} models.RegisterVoteResponse
// @Failure 400 {object} models.ErrorResponse "Invalid vote data"
// @Failure 404 {object} models.ErrorResponse "Unknown code"
// @Failure 409 {object} models.ErrorResponse "Code already used"
// @Failure 429 {object} models.ErrorResponse "Too many requests"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/vote [post]
func (c *VotingController) registerVote(g *gin.Context) {
	var req models.RegisterVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Code == "" {
		badRequest(g, "invalid request format")
		return
	}

	ballots := make([]service.Ballot, 0, len(req.Votes))
	for _, v := range req.Votes {
		ballots = append(ballots, service.Ballot{TeamID: v.TeamID, Rating: v.Rating})
	}

	if err := c.audience.Vote(g.Request.Context(), req.Code, ballots); err != nil {
		respondError(g, "VOTE", err)
		return
	}

	logging.Log.Infof("VOTE: registered %d ballots for code %s", len(ballots), req.Code)
	g.JSON(http.StatusOK, &models.RegisterVoteResponse{Message: "vote registered"})
}

// validateVotingCode godoc
// @Summary Validate a voting code
// @Description Checks if a voting code exists and whether it was used
// @Tags voting
// @Produce json
// @Param code path string true "Voting Code"
// @Success 200 {object} models.CodeValidationResponse
// @Failure 404 {object} models.ErrorResponse "Code not found in storage"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/verify/{code} [get]
func (c *VotingController) validateVotingCode(g *gin.Context) {
	vc, err := c.audience.Verify(g.Request.Context(), g.Param("code"))
	if err != nil {
		respondError(g, "VOTE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformVotingCodeToValidationResponse(vc))
}

// getVotesByCode godoc
// @Summary Get votes by code
// @Description Retrieves the ballots cast with a code, with team names
// @Tags voting
// @Produce json
// @Param code path string true "Voting Code"
// @Success 200 {object} models.GetVoteResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/vote/{code} [get]
func (c *VotingController) getVotesByCode(g *gin.Context) {
	code := g.Param("code")

	votes, err := c.audience.VotesByCode(g.Request.Context(), code)
	if err != nil {
		respondError(g, "VOTE", err)
		return
	}
	if len(votes) == 0 {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no votes found for the given code"})
		return
	}

	teams, err := c.roster.Teams(g.Request.Context())
	if err != nil {
		respondError(g, "VOTE", err)
		return
	}
	teamMap := make(map[string]string, len(teams))
	for _, t := range teams {
		teamMap[t.ID] = t.Name
	}

	response := models.GetVoteResponse{
		Code:  code,
		Votes: make([]models.GetVoteEntry, 0, len(votes)),
	}
	for _, v := range votes {
		response.Votes = append(response.Votes, models.GetVoteEntry{
			VoteEntry: models.VoteEntry{TeamID: v.TeamID, Rating: v.Rating},
			Team:      teamMap[v.TeamID],
		})
	}

	g.JSON(http.StatusOK, response)
}
