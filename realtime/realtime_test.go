package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kripanshu-singh/congkong-livescore/logging"
)

func TestReplica(t *testing.T) {
	t.Run("Happy path - pending shadows confirmed until the echo", func(t *testing.T) {
		r := NewReplica()
		r.Confirm(Message{Name: "control_state", Version: 1, Data: json.RawMessage(`{"globalLock":false}`)})
		r.ApplyLocal("control_state", json.RawMessage(`{"globalLock":true}`))

		v, ok := r.View("control_state")
		require.True(t, ok)
		assert.JSONEq(t, `{"globalLock":true}`, string(v))
		assert.True(t, r.Pending("control_state"))

		assert.True(t, r.Confirm(Message{Name: "control_state", Version: 2, Data: json.RawMessage(`{"globalLock":true}`)}))
		assert.False(t, r.Pending("control_state"))
		assert.Equal(t, uint64(2), r.Version("control_state"))
	})

	t.Run("Happy path - remote wins over a newer local value", func(t *testing.T) {
		r := NewReplica()
		r.ApplyLocal("scores/t1_j1", json.RawMessage(`{"total":90}`))
		r.Confirm(Message{Name: "scores", Key: "t1_j1", Version: 5, Data: json.RawMessage(`{"total":80}`)})

		var rec struct {
			Total int `json:"total"`
		}
		ok, err := r.Decode("scores/t1_j1", &rec)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 80, rec.Total)
	})

	t.Run("Unhappy path - stale echo is ignored", func(t *testing.T) {
		r := NewReplica()
		r.Confirm(Message{Name: "teams", Version: 7, Data: json.RawMessage(`{"list":[1]}`)})
		assert.False(t, r.Confirm(Message{Name: "teams", Version: 6, Data: json.RawMessage(`{"list":[]}`)}))

		v, _ := r.View("teams")
		assert.JSONEq(t, `{"list":[1]}`, string(v))
	})

	t.Run("Happy path - reject rolls back to confirmed", func(t *testing.T) {
		r := NewReplica()
		r.Confirm(Message{Name: "teams", Version: 1, Data: json.RawMessage(`{"list":[]}`)})
		r.ApplyLocal("teams", json.RawMessage(`{"list":[1]}`))
		r.Reject("teams")

		v, _ := r.View("teams")
		assert.JSONEq(t, `{"list":[]}`, string(v))
	})

	t.Run("Unhappy path - unknown document", func(t *testing.T) {
		_, ok := NewReplica().View("nope")
		assert.False(t, ok)
	})
}

func TestPeerCanSee(t *testing.T) {
	admin := Peer{Role: RoleAdmin}
	judge := Peer{Role: RoleJudge, Subject: "j1"}
	viewer := Peer{Role: RoleViewer}

	board := Message{Name: DocLeaderboard}
	own := Message{Name: DocScores, Key: "t1_j1"}
	other := Message{Name: DocScores, Key: "t1_j11"}
	control := Message{Name: "control_state"}

	assert.True(t, admin.CanSee(board))
	assert.True(t, admin.CanSee(other))
	assert.False(t, judge.CanSee(board))
	assert.True(t, judge.CanSee(own))
	assert.False(t, judge.CanSee(other))
	assert.True(t, judge.CanSee(control))
	assert.False(t, viewer.CanSee(own))
	assert.True(t, viewer.CanSee(control))
}

func TestHubSnapshotAndStream(t *testing.T) {
	logging.Log = logrus.New()

	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, Peer{Role: RoleJudge, Subject: "j1"})
	}))
	defer srv.Close()
	defer hub.Close()

	require.NoError(t, hub.Publish("control_state", "", map[string]any{"activeTeamId": "t1"}))
	require.NoError(t, hub.Publish(DocLeaderboard, "", []string{"hidden"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), "token")
	require.NoError(t, err)
	defer client.Close()

	received := make(chan Message, 16)
	go func() { _ = client.Run(ctx, func(m Message) { received <- m }) }()

	next := func() Message {
		select {
		case m := <-received:
			return m
		case <-ctx.Done():
			t.Fatal("timed out waiting for message")
			return Message{}
		}
	}

	first := next()
	assert.Equal(t, "control_state", first.Name)
	assert.Equal(t, uint64(1), first.Version)

	require.NoError(t, hub.Publish(DocScores, "t1_j2", map[string]int{"total": 1}))
	require.NoError(t, hub.Publish(DocScores, "t1_j1", map[string]int{"total": 88}))

	second := next()
	assert.Equal(t, DocScores, second.Name)
	assert.Equal(t, "t1_j1", second.Key)
	assert.Equal(t, uint64(4), second.Version)

	var rec map[string]int
	ok, err := client.Replica.Decode("scores/t1_j1", &rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 88, rec["total"])

	_, hidden := client.Replica.View(DocLeaderboard)
	assert.False(t, hidden)
	assert.Equal(t, 1, hub.Clients())
}

func TestHubForget(t *testing.T) {
	logging.Log = logrus.New()

	hub := NewHub()
	require.NoError(t, hub.Publish(DocScores, "t1_j1", map[string]int{"total": 1}))
	require.NoError(t, hub.Publish("teams", "", map[string]any{"list": []any{}}))

	hub.Forget(DocScores)
	snap := hub.Snapshot(Peer{Role: RoleAdmin})
	require.Len(t, snap, 1)
	assert.Equal(t, "teams", snap[0].Name)
	assert.Equal(t, uint64(2), hub.Version())
}
