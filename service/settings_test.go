package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

func TestSettingsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - defaults when nothing is stored", func(t *testing.T) {
		f := setupServices(t)
		s, err := f.svc.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, scoring.MethodAvg, s.ScoringMethod)
		assert.Equal(t, scoring.VoteNone, s.VoteMode)
		assert.Equal(t, 100, s.Criteria.Total())
	})

	t.Run("Happy path - save and read back", func(t *testing.T) {
		f := setupServices(t)
		in := scoring.DefaultSettings()
		in.Title = "Demo Day"
		in.ScoringMethod = scoring.MethodTrimmed
		_, err := f.svc.Settings.Save(ctx, in)
		require.NoError(t, err)

		out, err := f.svc.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Demo Day", out.Title)
		assert.Equal(t, scoring.MethodTrimmed, out.ScoringMethod)
		assert.Equal(t, 2, f.pub.count(storage.DocEventSettings))
	})

	t.Run("Unhappy path - inconsistent rubric is rejected with its report", func(t *testing.T) {
		f := setupServices(t)
		rubric := scoring.DefaultRubric()
		rubric.Categories[0].Items[0].Max = 5

		_, err := f.svc.Settings.SaveCriteria(ctx, rubric)
		var rep scoring.Report
		require.ErrorAs(t, err, &rep)
		assert.False(t, rep.Valid)
		assert.Equal(t, 5, rep.Categories[0].Deviation)

		out, err := f.svc.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, scoring.DefaultRubric(), out.Criteria)
	})

	t.Run("Unhappy path - out of range field", func(t *testing.T) {
		f := setupServices(t)
		in := scoring.DefaultSettings()
		in.VoteRatio = 150
		_, err := f.svc.Settings.Save(ctx, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "VoteRatio")
	})
}

func TestRosterService(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - add assigns ids and sequence", func(t *testing.T) {
		f := setupServices(t)
		assert.True(t, strings.HasPrefix(f.teams[0].ID, "t"))
		assert.Equal(t, 3, f.teams[2].Seq)
		assert.Equal(t, f.teams[0].Affiliation, f.teams[0].AffiliationEn)
		assert.True(t, strings.HasPrefix(f.judges[0].ID, "j"))
	})

	t.Run("Happy path - delete and reorder re-sequence", func(t *testing.T) {
		f := setupServices(t)
		require.NoError(t, f.svc.Roster.DeleteTeam(ctx, f.teams[0].ID))

		teams, err := f.svc.Roster.ReorderTeams(ctx, []string{f.teams[2].ID, f.teams[1].ID})
		require.NoError(t, err)
		require.Len(t, teams, 2)
		assert.Equal(t, f.teams[2].ID, teams[0].ID)
		assert.Equal(t, 1, teams[0].Seq)
		assert.Equal(t, 2, teams[1].Seq)
	})

	t.Run("Unhappy path - reorder must name every team", func(t *testing.T) {
		f := setupServices(t)
		_, err := f.svc.Roster.ReorderTeams(ctx, []string{f.teams[0].ID})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("Unhappy path - missing required fields", func(t *testing.T) {
		f := setupServices(t)
		_, err := f.svc.Roster.AddTeam(ctx, storage.Team{Name: "No presenter", Affiliation: "X"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "Presenter")

		_, err = f.svc.Roster.AddJudge(ctx, storage.Judge{Email: "kim@example.com"})
		require.ErrorAs(t, err, &verr)
	})

	t.Run("Happy path - update keeps position", func(t *testing.T) {
		f := setupServices(t)
		upd := f.teams[1]
		upd.Topic = "Robotics"
		got, err := f.svc.Roster.UpdateTeam(ctx, upd)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Seq)
		assert.Equal(t, "Robotics", got.Topic)

		_, err = f.svc.Roster.UpdateJudge(ctx, storage.Judge{ID: "jnope", Name: "Ghost"})
		assert.ErrorIs(t, err, ErrUnknownJudge)
	})

	t.Run("Happy path - csv import appends", func(t *testing.T) {
		f := setupServices(t)
		csv := "순서,팀명,소속,발표자,주제\n1,Delta,Delta Co.,Choi,Fintech\n2,Epsilon,Eps Ltd.,Jung,Health\n"
		teams, err := f.svc.Roster.ImportTeams(ctx, strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, teams, 5)
		assert.Equal(t, "Delta", teams[3].Name)
		assert.Equal(t, 4, teams[3].Seq)
		assert.Equal(t, "Fintech", teams[3].Topic)
	})

	t.Run("Unhappy path - one bad row rejects the whole import", func(t *testing.T) {
		f := setupServices(t)
		csv := "1,Delta,Delta Co.,Choi\n2,Epsilon,,Jung\n"
		_, err := f.svc.Roster.ImportTeams(ctx, strings.NewReader(csv))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		teams, err := f.svc.Roster.Teams(ctx)
		require.NoError(t, err)
		assert.Len(t, teams, 3)
	})

	t.Run("Happy path - judge csv import", func(t *testing.T) {
		f := setupServices(t)
		judges, err := f.svc.Roster.ImportJudges(ctx, strings.NewReader("1,Choi,Partner,VC,010-1,choi@example.com\n"))
		require.NoError(t, err)
		require.Len(t, judges, 4)
		assert.Equal(t, "choi@example.com", judges[3].Email)
	})
}
