package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

// respondError maps service errors to status codes. prefix is the log prefix of
// the calling controller.
func respondError(g *gin.Context, prefix string, err error) {
	var (
		verr   *service.ValidationError
		report scoring.Report
		perr   *service.PersistenceError
	)

	switch {
	case errors.As(err, &report):
		logging.Log.Warnf("%s: rejected criteria: %v", prefix, err)
		g.JSON(http.StatusUnprocessableEntity, gin.H{"error": report.Error(), "report": report})
	case errors.As(err, &verr):
		logging.Log.Warnf("%s: validation failed: %v", prefix, err)
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, service.ErrScoringLocked):
		g.JSON(http.StatusLocked, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnknownTeam),
		errors.Is(err, service.ErrUnknownJudge),
		errors.Is(err, service.ErrScoreNotFound),
		errors.Is(err, service.ErrUnknownCode):
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrCodeUsed):
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "code not valid or already used"})
	case errors.As(err, &perr):
		logging.Log.Errorf("%s: %v", prefix, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save, please retry"})
	default:
		logging.Log.Errorf("%s: %v", prefix, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: err.Error()})
	}
}

func badRequest(g *gin.Context, msg string) {
	g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: msg})
}
