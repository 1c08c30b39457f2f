package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/kripanshu-singh/congkong-livescore/api/controllers/testing"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/service"
)

func TestResultsController(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Unhappy path - no winner before any score", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/results/winner", nil, adminHeaders())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - results are admin only", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/results", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	ctx := context.Background()
	alpha, beta := env.teams[0].ID, env.teams[1].ID
	kim, lee := env.judges[0].ID, env.judges[1].ID
	for _, s := range []struct {
		judge, team string
		value       int
	}{
		{kim, alpha, 10},
		{lee, alpha, 9},
		{kim, beta, 9},
	} {
		_, err := env.services.Scores.Upsert(ctx, s.judge, s.team, service.Submission{Detail: fullDetail(s.value)})
		require.NoError(t, err)
	}

	t.Run("Happy path - leaderboard ranks by average", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/results", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		board := decode[service.Leaderboard](t, w)
		assert.Equal(t, scoring.MethodAvg, board.Method)
		require.Len(t, board.Standings, 2)
		assert.Equal(t, alpha, board.Standings[0].Team.ID)
		assert.Equal(t, 85.5, board.Standings[0].JudgeScore)
		assert.Equal(t, 1, board.Standings[0].Rank)
		assert.Equal(t, 2, board.Standings[0].SubmissionCount)
		assert.Equal(t, beta, board.Standings[1].Team.ID)
		assert.Equal(t, 81.0, board.Standings[1].JudgeScore)
	})

	t.Run("Happy path - winner", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/results/winner", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, alpha, decode[scoring.Standing](t, w).Team.ID)
	})

	t.Run("Happy path - CSV export", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/admin/results/export", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, w.Body.String(), "Alpha")
		assert.Contains(t, w.Body.String(), "Beta")
	})
}
