package roster

import (
	"errors"
	"strings"
	"testing"

	"github.com/kripanshu-singh/congkong-livescore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqs(list []storage.Team) []int {
	out := make([]int, 0, len(list))
	for _, t := range list {
		out = append(out, t.Seq)
	}
	return out
}

func ids(list []storage.Team) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func TestTeamMutationsResequence(t *testing.T) {
	list, err := AddTeams(nil,
		storage.Team{ID: "ta", Name: "A"},
		storage.Team{ID: "tb", Name: "B"},
		storage.Team{Name: "C"},
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seqs(list))
	assert.True(t, strings.HasPrefix(list[2].ID, "t"))
	assert.Len(t, list[2].ID, 11)

	t.Run("Happy path - delete closes the gap", func(t *testing.T) {
		out, err := DeleteTeam(list, "tb")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, seqs(out))
		assert.Equal(t, []string{"ta", list[2].ID}, ids(out))
		assert.Equal(t, 3, len(list), "input is not modified")
	})

	t.Run("Happy path - reorder", func(t *testing.T) {
		out, err := ReorderTeams(list, []string{list[2].ID, "ta", "tb"})
		require.NoError(t, err)
		assert.Equal(t, []string{list[2].ID, "ta", "tb"}, ids(out))
		assert.Equal(t, []int{1, 2, 3}, seqs(out))
	})

	t.Run("Unhappy path - reorder with missing id", func(t *testing.T) {
		_, err := ReorderTeams(list, []string{"ta", "tb"})
		assert.ErrorIs(t, err, ErrReorderSet)
		_, err = ReorderTeams(list, []string{"ta", "ta", "tb"})
		assert.ErrorIs(t, err, ErrReorderSet)
	})

	t.Run("Happy path - update keeps position", func(t *testing.T) {
		out, err := UpdateTeam(list, storage.Team{ID: "tb", Name: "B2", Seq: 99})
		require.NoError(t, err)
		assert.Equal(t, "B2", out[1].Name)
		assert.Equal(t, 2, out[1].Seq)
	})

	t.Run("Unhappy path - unknown and duplicate ids", func(t *testing.T) {
		_, err := DeleteTeam(list, "nope")
		assert.ErrorIs(t, err, ErrUnknownID)
		_, err = UpdateTeam(list, storage.Team{ID: "nope"})
		assert.ErrorIs(t, err, ErrUnknownID)
		_, err = AddTeams(list, storage.Team{ID: "ta"})
		assert.ErrorIs(t, err, ErrDuplicateID)
	})
}

func TestJudgeMutationsResequence(t *testing.T) {
	list, err := AddJudges(nil, storage.Judge{Name: "Kim"}, storage.Judge{Name: "Lee"})
	require.NoError(t, err)
	assert.Equal(t, 1, list[0].Seq)
	assert.Equal(t, 2, list[1].Seq)
	assert.True(t, strings.HasPrefix(list[0].ID, "j"))

	out, err := DeleteJudge(list, list[0].ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Lee", out[0].Name)
	assert.Equal(t, 1, out[0].Seq)

	out, err = ReorderJudges(list, []string{list[1].ID, list[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Lee", out[0].Name)
}

func TestValidateTeam(t *testing.T) {
	team := storage.Team{Name: "A", Affiliation: "Acme", Presenter: "Hong"}
	require.NoError(t, ValidateTeam(&team))
	assert.Equal(t, "Acme", team.AffiliationEn)

	assert.Error(t, ValidateTeam(&storage.Team{Name: "A", Affiliation: "Acme"}))
	assert.Error(t, ValidateJudge(&storage.Judge{Name: "Kim", Email: "not-an-email"}))
	assert.NoError(t, ValidateJudge(&storage.Judge{Name: "Kim"}))
}

func TestParseTeamsCSV(t *testing.T) {
	t.Run("Happy path - template with BOM and header", func(t *testing.T) {
		teams, err := ParseTeamsCSV(strings.NewReader(string(TeamTemplate())))
		require.NoError(t, err)
		require.Len(t, teams, 1)
		assert.Equal(t, "Team Alpha", teams[0].Name)
		assert.Equal(t, "Alpha Inc.", teams[0].Affiliation)
		assert.Equal(t, "Hong Gildong", teams[0].Presenter)
		assert.Equal(t, "10:00", teams[0].TimeSlot)
		assert.Equal(t, "AI tutoring", teams[0].Topic)
	})

	t.Run("Happy path - column count selects layout", func(t *testing.T) {
		doc := "1,A,Acme,Hong\n" +
			"2,B,Beta,Lee,Robots\n" +
			"3,Seed,C,Gamma,Park,11:00,Drones\n"
		teams, err := ParseTeamsCSV(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, teams, 3)
		assert.Equal(t, "", teams[0].Topic)
		assert.Equal(t, "Robots", teams[1].Topic)
		assert.Equal(t, "Seed", teams[2].Category)
		assert.Equal(t, "11:00", teams[2].TimeSlot)
	})

	t.Run("Happy path - decomposed hangul is normalised", func(t *testing.T) {
		doc := "1,\u1112\u1161\u11ab,Acme,Hong\n"
		teams, err := ParseTeamsCSV(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, "\ud55c", teams[0].Name)
	})

	t.Run("Unhappy path - missing presenter rejects the file", func(t *testing.T) {
		doc := "Order,Name,Affiliation,Presenter\n1,A,Acme,Hong\n2,B,Beta,\n"
		_, err := ParseTeamsCSV(strings.NewReader(doc))
		var rowErr *RowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, 3, rowErr.Line)
	})

	t.Run("Unhappy path - too few columns", func(t *testing.T) {
		_, err := ParseTeamsCSV(strings.NewReader("1,A,Acme\n"))
		var rowErr *RowError
		assert.True(t, errors.As(err, &rowErr))
	})

	t.Run("Unhappy path - header only", func(t *testing.T) {
		_, err := ParseTeamsCSV(strings.NewReader(TeamTemplateHeader + "\n"))
		assert.ErrorIs(t, err, ErrEmptyImport)
	})
}

func TestParseJudgesCSV(t *testing.T) {
	judges, err := ParseJudgesCSV(strings.NewReader(string(JudgeTemplate())))
	require.NoError(t, err)
	require.Len(t, judges, 1)
	assert.Equal(t, "Kim Judge", judges[0].Name)
	assert.Equal(t, "Partner", judges[0].Title)
	assert.Equal(t, "judge@example.com", judges[0].Email)

	judges, err = ParseJudgesCSV(strings.NewReader("1,Lee\n2,Park,Professor\n"))
	require.NoError(t, err)
	assert.Len(t, judges, 2)
	assert.Equal(t, "Professor", judges[1].Title)

	_, err = ParseJudgesCSV(strings.NewReader("1,Lee,,,,bad-email\n"))
	assert.Error(t, err)
}
