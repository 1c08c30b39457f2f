package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/kripanshu-singh/congkong-livescore/api/controllers/testing"
	"github.com/kripanshu-singh/congkong-livescore/api/models"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

func postCSV(env *testEnv, path, body string) *httptest.ResponseRecorder {
	return testutils.PerformRawRequest(env.router, http.MethodPost, path, strings.NewReader(body), map[string]string{
		"Content-Type":  "text/csv",
		"x-admin-token": testAdminToken,
	})
}

func TestRosterMetaTeams(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Happy path - list teams in order", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/meta/teams", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[models.TeamListResponse](t, w).List
		require.Len(t, list, 2)
		assert.Equal(t, "Alpha", list[0].Name)
		assert.Equal(t, 1, list[0].Seq)
		assert.Equal(t, 2, list[1].Seq)
	})

	t.Run("Unhappy path - create needs an admin", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/meta/teams", models.TeamCreateRequest{Name: "Delta"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var created storage.Team
	t.Run("Happy path - create a team", func(t *testing.T) {
		req := models.TeamCreateRequest{Name: "Delta", Affiliation: "Delta Labs", Presenter: "Dana"}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/meta/teams", req, adminHeaders())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		created = decode[storage.Team](t, w)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, 3, created.Seq)
		assert.Equal(t, "Delta Labs", created.AffiliationEn)
	})

	t.Run("Unhappy path - missing required fields", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/meta/teams", models.TeamCreateRequest{Name: "NoPresenter"}, adminHeaders())
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, decode[models.ErrorResponse](t, w).Fields)
	})

	t.Run("Happy path - reorder teams", func(t *testing.T) {
		ids := []string{created.ID, env.teams[1].ID, env.teams[0].ID}
		w := testutils.PerformRequest(env.router, http.MethodPut, "/api/meta/teams/order", models.ReorderRequest{IDs: ids}, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		list := decode[models.TeamListResponse](t, w).List
		require.Len(t, list, 3)
		for i, team := range list {
			assert.Equal(t, ids[i], team.ID)
			assert.Equal(t, i+1, team.Seq)
		}
	})

	t.Run("Unhappy path - reorder with a partial set", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPut, "/api/meta/teams/order", models.ReorderRequest{IDs: []string{created.ID}}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Happy path - update a team", func(t *testing.T) {
		req := models.TeamUpdateRequest{Name: "Delta Prime", Affiliation: "Delta Labs", Presenter: "Dana"}
		w := testutils.PerformRequest(env.router, http.MethodPut, "/api/meta/teams/"+created.ID, req, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Delta Prime", decode[storage.Team](t, w).Name)
	})

	t.Run("Happy path - delete a team", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/meta/teams/"+created.ID, nil, adminHeaders())
		require.Equal(t, http.StatusNoContent, w.Code)

		w = testutils.PerformRequest(env.router, http.MethodGet, "/api/meta/teams/"+created.ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - delete an unknown team", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/meta/teams/tmissing", nil, adminHeaders())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Happy path - download the template", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/meta/teams/template", nil, adminHeaders())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "teams_template.csv")
	})

	t.Run("Happy path - import teams from CSV", func(t *testing.T) {
		w := postCSV(env, "/api/meta/teams/import", "1,Echo,Echo Co.,Eve\n2,Foxtrot,Fox Co.,Finn\n")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode[models.TeamListResponse](t, w).List, 4)
	})

	t.Run("Unhappy path - import with a bad row rejects the file", func(t *testing.T) {
		w := postCSV(env, "/api/meta/teams/import", "1,Golf,Golf Co.,Gia\n2,,,\n")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[models.ErrorResponse](t, w).Fields, "file")

		w = testutils.PerformRequest(env.router, http.MethodGet, "/api/meta/teams", nil, nil)
		assert.Len(t, decode[models.TeamListResponse](t, w).List, 4)
	})
}

func TestRosterMetaJudges(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Happy path - create and list judges", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/meta/judges", models.JudgeCreateRequest{Name: "Choi", Email: "choi@example.com"}, adminHeaders())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = testutils.PerformRequest(env.router, http.MethodGet, "/api/meta/judges", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[models.JudgeListResponse](t, w).List, 3)
	})

	t.Run("Unhappy path - invalid email", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/meta/judges", models.JudgeCreateRequest{Name: "Jung", Email: "not-an-email"}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Happy path - import judges from CSV", func(t *testing.T) {
		w := postCSV(env, "/api/meta/judges/import", "번호,성함,직함,소속,핸드폰번호,이메일\n1,Han,Partner,Seoul Ventures,010-1111-2222,han@example.com\n")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode[models.JudgeListResponse](t, w).List, 4)
	})

	t.Run("Unhappy path - delete an unknown judge", func(t *testing.T) {
		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/meta/judges/jmissing", nil, adminHeaders())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
