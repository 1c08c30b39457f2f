package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryScoreStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryScoreStorage()

	rec := &ScoreRecord{
		ID:        ScoreID("t1", "j1"),
		TeamID:    "t1",
		JudgeID:   "j1",
		Detail:    map[string]int{"a1": 10},
		Total:     10,
		Signature: []byte("sig"),
		Locked:    true,
	}

	t.Run("Happy path - put then get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, rec))

		got, err := s.Get(ctx, "t1_j1")
		require.NoError(t, err)
		assert.Equal(t, 10, got.Total)
		assert.True(t, got.Locked)
	})

	t.Run("Happy path - stored records do not alias the caller", func(t *testing.T) {
		rec.Detail["a1"] = 99
		got, err := s.Get(ctx, "t1_j1")
		require.NoError(t, err)
		assert.Equal(t, 10, got.Detail["a1"])

		got.Detail["a1"] = 50
		again, _ := s.Get(ctx, "t1_j1")
		assert.Equal(t, 10, again.Detail["a1"])
	})

	t.Run("Happy path - get all is ordered by id", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, &ScoreRecord{ID: ScoreID("t0", "j1"), TeamID: "t0", JudgeID: "j1"}))
		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "t0_j1", all[0].ID)
		assert.Equal(t, "t1_j1", all[1].ID)
	})

	t.Run("Unhappy path - missing record", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Happy path - delete all", func(t *testing.T) {
		require.NoError(t, s.DeleteAll(ctx))
		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestMemoryDocumentStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDocumentStorage()

	t.Run("Unhappy path - missing document", func(t *testing.T) {
		var teams TeamList
		assert.ErrorIs(t, s.Load(ctx, DocTeams, &teams), ErrDocumentNotFound)
	})

	t.Run("Happy path - save then load", func(t *testing.T) {
		in := TeamList{List: []Team{{ID: "t1", Seq: 1, Name: "Alpha"}}}
		require.NoError(t, s.Save(ctx, DocTeams, in))

		in.List[0].Name = "changed"
		var out TeamList
		require.NoError(t, s.Load(ctx, DocTeams, &out))
		require.Len(t, out.List, 1)
		assert.Equal(t, "Alpha", out.List[0].Name)
	})
}

func TestMemoryVotingCodeStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryVotingCodeStorage()

	t.Run("Happy path - put stamps creation and clears used", func(t *testing.T) {
		code := &VotingCode{Code: "ABCDE", Used: true}
		require.NoError(t, s.Put(ctx, code))

		got, err := s.Get(ctx, "ABCDE")
		require.NoError(t, err)
		assert.False(t, got.Used)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("Unhappy path - duplicate code", func(t *testing.T) {
		assert.ErrorIs(t, s.Put(ctx, &VotingCode{Code: "ABCDE"}), ErrItemWithIDAlreadyExists)
	})

	t.Run("Happy path - reset counts used codes only", func(t *testing.T) {
		votes := NewMemoryAudienceVoteStorage(s)
		require.NoError(t, votes.Cast(ctx, "ABCDE", []*AudienceVote{{Code: "ABCDE", SortKey: AudienceVoteSortKey("t1"), TeamID: "t1", Rating: 5}}))
		require.NoError(t, s.Put(ctx, &VotingCode{Code: "FGHJK"}))

		n, err := s.ResetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "ABCDE", all[0].Code)
		assert.False(t, all[0].Used)
	})

	t.Run("Happy path - delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "FGHJK"))
		require.NoError(t, s.Delete(ctx, "FGHJK"))
		_, err := s.Get(ctx, "FGHJK")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryAudienceVoteStorage(t *testing.T) {
	ctx := context.Background()
	codes := NewMemoryVotingCodeStorage()
	s := NewMemoryAudienceVoteStorage(codes)
	for _, c := range []string{"ABCDE", "FGHJK", "KLMNP"} {
		require.NoError(t, codes.Put(ctx, &VotingCode{Code: c}))
	}

	vote := func(code, team string, rating int) *AudienceVote {
		return &AudienceVote{Code: code, SortKey: AudienceVoteSortKey(team), TeamID: team, Rating: rating}
	}

	t.Run("Happy path - cast consumes the code and reads back by code", func(t *testing.T) {
		require.NoError(t, s.Cast(ctx, "ABCDE", []*AudienceVote{vote("ABCDE", "t2", 7), vote("ABCDE", "t1", 9)}))
		require.NoError(t, s.Cast(ctx, "FGHJK", []*AudienceVote{vote("FGHJK", "t1", 3)}))

		vc, err := codes.Get(ctx, "ABCDE")
		require.NoError(t, err)
		assert.True(t, vc.Used)

		got, err := s.GetByCode(ctx, "ABCDE")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "t1", got[0].TeamID)
		assert.Equal(t, "t2", got[1].TeamID)
	})

	t.Run("Unhappy path - used or unknown code", func(t *testing.T) {
		assert.ErrorIs(t, s.Cast(ctx, "ABCDE", []*AudienceVote{vote("ABCDE", "t3", 1)}), ErrNotFound)
		assert.ErrorIs(t, s.Cast(ctx, "QQQQQ", []*AudienceVote{vote("QQQQQ", "t1", 1)}), ErrNotFound)
	})

	t.Run("Unhappy path - conflicting vote leaves nothing behind", func(t *testing.T) {
		err := s.Cast(ctx, "KLMNP", []*AudienceVote{vote("KLMNP", "t1", 4), vote("KLMNP", "t1", 6)})
		assert.ErrorIs(t, err, ErrItemWithIDAlreadyExists)

		vc, err := codes.Get(ctx, "KLMNP")
		require.NoError(t, err)
		assert.False(t, vc.Used)
		got, err := s.GetByCode(ctx, "KLMNP")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Happy path - unknown code yields an empty slice", func(t *testing.T) {
		got, err := s.GetByCode(ctx, "QQQQQ")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Happy path - delete all", func(t *testing.T) {
		require.NoError(t, s.DeleteAll(ctx))
		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
