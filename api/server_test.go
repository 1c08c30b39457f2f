package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/kripanshu-singh/congkong-livescore/api/controllers/testing"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

func testConfig() *Config {
	return &Config{
		StorageConfig: StorageConfig{Driver: "memory"},
		ServerConfig:  ServerConfig{Port: 0, Environment: "test", ShutdownTimeout: time.Second},
		AuthConfig:    AuthConfig{AdminID: "admin", AdminToken: "secret", JWTSecret: "s", TokenTTL: time.Hour},
		LimitsConfig:  LimitsConfig{ScoreRatePerSecond: 100, ScoreBurst: 100, VoteRatePerSecond: 100, VoteBurst: 100},
	}
}

func TestNewBackend(t *testing.T) {
	logging.Log = logrus.New()
	ctx := context.Background()

	t.Run("Happy path - memory driver", func(t *testing.T) {
		b, err := newBackend(ctx, StorageConfig{Driver: "memory"})
		require.NoError(t, err)
		assert.NotNil(t, b.Scores)
		assert.NotNil(t, b.Documents)
	})

	t.Run("Unhappy path - postgres without a dsn", func(t *testing.T) {
		_, err := newBackend(ctx, StorageConfig{Driver: "postgres"})
		assert.Error(t, err)
	})

	t.Run("Unhappy path - unknown driver", func(t *testing.T) {
		_, err := newBackend(ctx, StorageConfig{Driver: "mongo"})
		assert.Error(t, err)
	})
}

func TestServerBuild(t *testing.T) {
	logging.Log = logrus.New()
	gin.SetMode(gin.TestMode)

	s := NewServer(testConfig())
	a, err := s.build(context.Background(), storage.NewMemoryBackend())
	require.NoError(t, err)
	t.Cleanup(a.hub.Close)

	t.Run("Happy path - public routes are wired", func(t *testing.T) {
		for _, path := range []string{"/api/control", "/api/settings", "/api/criteria", "/api/meta/teams", "/api/meta/judges"} {
			w := testutils.PerformRequest(a.engine, http.MethodGet, path, nil, nil)
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("Happy path - metrics are exposed", func(t *testing.T) {
		w := testutils.PerformRequest(a.engine, http.MethodGet, "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "livescore_")
	})

	t.Run("Happy path - admin routes accept the static token", func(t *testing.T) {
		w := testutils.PerformRequest(a.engine, http.MethodGet, "/api/admin/results", nil, map[string]string{"x-admin-token": "secret"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unhappy path - unknown route", func(t *testing.T) {
		w := testutils.PerformRequest(a.engine, http.MethodGet, "/api/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - swagger is not mounted outside local", func(t *testing.T) {
		w := testutils.PerformRequest(a.engine, http.MethodGet, "/swagger/index.html", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
