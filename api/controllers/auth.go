package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

type AuthController struct {
	auth   *transport.Authenticator
	roster *service.RosterService
}

func NewAuthController(auth *transport.Authenticator, roster *service.RosterService) *AuthController {
	return &AuthController{auth: auth, roster: roster}
}

func (c *AuthController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")

	group.POST("/admin", c.loginAdmin)
	group.POST("/judge", c.loginJudge)
}

// loginAdmin godoc
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse "Admin credentials not configured"
// @Router /api/auth/admin [post]
func (c *AuthController) loginAdmin(g *gin.Context) {
	var req models.AdminLoginRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Password == "" {
		badRequest(g, "invalid request, missing id or password")
		return
	}

	token, exp, err := c.auth.LoginAdmin(req.ID, req.Password)
	if err != nil {
		if errors.Is(err, transport.ErrAdminNotConfigured) {
			logging.Log.Errorf("AUTH: admin login attempted but no admin credentials are configured")
			g.JSON(http.StatusServiceUnavailable, &models.ErrorResponse{Error: err.Error()})
			return
		}
		logging.Log.Warnf("AUTH: admin login failed for %q", req.ID)
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	logging.Log.Infof("AUTH: admin %s logged in", req.ID)
	g.JSON(http.StatusOK, &models.TokenResponse{Token: token, Role: transport.RoleAdmin, Subject: req.ID, ExpiresAt: exp})
}

// loginJudge godoc
// @Summary Judge login
// @Description Issues a judge session for a rostered judge
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.JudgeLoginRequest true "Judge id and access code"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/judge [post]
func (c *AuthController) loginJudge(g *gin.Context) {
	var req models.JudgeLoginRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.JudgeID == "" {
		badRequest(g, "invalid request, missing judgeId")
		return
	}

	if _, err := c.roster.Judge(g.Request.Context(), req.JudgeID); err != nil {
		if errors.Is(err, service.ErrUnknownJudge) {
			logging.Log.Warnf("AUTH: login attempt for unknown judge %s", req.JudgeID)
			g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
			return
		}
		respondError(g, "AUTH", err)
		return
	}

	token, exp, err := c.auth.LoginJudge(req.JudgeID, req.Code)
	if err != nil {
		logging.Log.Warnf("AUTH: judge login failed for %s", req.JudgeID)
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	logging.Log.Infof("AUTH: judge %s logged in", req.JudgeID)
	g.JSON(http.StatusOK, &models.TokenResponse{Token: token, Role: transport.RoleJudge, Subject: req.JudgeID, ExpiresAt: exp})
}
