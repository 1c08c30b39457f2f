package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/realtime"
	"github.com/kripanshu-singh/congkong-livescore/service"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

const testAdminToken = "secret"

type testEnv struct {
	router   *gin.Engine
	services *service.Services
	auth     *transport.Authenticator
	hub      *realtime.Hub
	teams    []storage.Team
	judges   []storage.Judge
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logging.Log = logrus.New()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	m := metrics.New()
	hub := realtime.NewHub()
	services := service.New(storage.NewMemoryBackend(), hub, m)

	env := &testEnv{services: services, hub: hub}
	for _, name := range []string{"Alpha", "Beta"} {
		team, err := services.Roster.AddTeam(ctx, storage.Team{Name: name, Affiliation: name + " Inc.", Presenter: "P. " + name})
		require.NoError(t, err)
		env.teams = append(env.teams, team)
	}
	for _, name := range []string{"Kim", "Lee"} {
		judge, err := services.Roster.AddJudge(ctx, storage.Judge{Name: name})
		require.NoError(t, err)
		env.judges = append(env.judges, judge)
	}
	require.NoError(t, services.Bootstrap(ctx))

	auth, err := transport.NewAuthenticator(transport.AuthSettings{
		AdminID:       "admin",
		AdminPassword: "pw",
		AdminToken:    testAdminToken,
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
	})
	require.NoError(t, err)
	env.auth = auth

	limiter := transport.NewRateLimiter(1000, 1000)
	r := gin.New()
	NewAuthController(auth, services.Roster).RegisterRoutes(r)
	NewRosterMetaController(services.Roster, auth).RegisterRoutes(r)
	NewSettingsController(services.Settings, auth).RegisterRoutes(r)
	NewControlController(services.Control, auth).RegisterRoutes(r)
	NewScoreController(services.Scores, auth, limiter).RegisterRoutes(r)
	NewResultsController(services.Results, auth).RegisterRoutes(r)
	NewVotingController(services.Audience, services.Roster, limiter).RegisterRoutes(r)
	NewAdminController(services, auth).RegisterRoutes(r)
	NewRealtimeController(hub, auth).RegisterRoutes(r)
	env.router = r

	t.Cleanup(hub.Close)
	return env
}

func adminHeaders() map[string]string {
	return map[string]string{"x-admin-token": testAdminToken}
}

func (e *testEnv) judgeHeaders(t *testing.T, judgeID string) map[string]string {
	t.Helper()
	token, _, err := e.auth.Issue(transport.RoleJudge, judgeID)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fullDetail scores every default criterion with value, capped at the criterion max.
func fullDetail(value int) map[string]int {
	maxima := map[string]int{"c1": 10, "c2": 10, "c3": 10, "m1": 15, "m2": 15, "m3": 10, "b1": 10, "b2": 10, "b3": 10}
	out := make(map[string]int, len(maxima))
	for id, m := range maxima {
		out[id] = min(value, m)
	}
	return out
}
