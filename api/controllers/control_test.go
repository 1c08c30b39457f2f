package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/kripanshu-singh/congkong-livescore/api/controllers/testing"
	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/control"
)

func TestControlController(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Happy path - initial state is public", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/control", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		st := decode[control.State](t, w)
		assert.False(t, st.GlobalLock)
		assert.False(t, st.Timer.IsRunning)
		assert.Equal(t, 420, st.Timer.Seconds)
		assert.Empty(t, st.ActiveTeamID)
	})

	t.Run("Unhappy path - mutations need an admin", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/timer/toggle", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unhappy path - lock without a flag", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/lock", map[string]any{}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Happy path - global lock clears judge exceptions", func(t *testing.T) {
		locked := true
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/lock", models.GlobalLockRequest{Locked: &locked}, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[control.State](t, w).GlobalLock)

		w = testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/judges/"+env.judges[1].ID+"/toggle", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{env.judges[1].ID}, decode[control.State](t, w).UnlockedJudges)

		w = testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/lock", models.GlobalLockRequest{Locked: &locked}, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[control.State](t, w).UnlockedJudges)
	})

	t.Run("Unhappy path - exception for an unknown judge", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/judges/jmissing/toggle", nil, adminHeaders())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Happy path - spotlight a team and clear it", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/active-team", models.ActiveTeamRequest{TeamID: env.teams[1].ID}, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, env.teams[1].ID, decode[control.State](t, w).ActiveTeamID)

		w = testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/active-team", models.ActiveTeamRequest{}, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[control.State](t, w).ActiveTeamID)
	})

	t.Run("Unhappy path - spotlight an unknown team", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/active-team", models.ActiveTeamRequest{TeamID: "tmissing"}, adminHeaders())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Happy path - timer toggles and resets", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/timer/toggle", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[control.State](t, w).Timer.IsRunning)

		w = testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/control/timer/reset", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		st := decode[control.State](t, w)
		assert.False(t, st.Timer.IsRunning)
		assert.Equal(t, 420, st.Timer.Seconds)
	})
}
