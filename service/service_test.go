package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

type published struct {
	name string
	key  string
	doc  any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
	forgot   []string
}

func (p *recordingPublisher) Publish(name, key string, doc any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{name: name, key: key, doc: doc})
	return nil
}

func (p *recordingPublisher) Forget(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forgot = append(p.forgot, name)
}

func (p *recordingPublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, m := range p.messages {
		if m.name == name {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) last(name string) (published, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.messages) - 1; i >= 0; i-- {
		if p.messages[i].name == name {
			return p.messages[i], true
		}
	}
	return published{}, false
}

// flakyDocuments fails every Save of the named document while failing is set.
type flakyDocuments struct {
	storage.DocumentStorage
	name    string
	failing bool
}

var errDiskFull = errors.New("disk full")

func (d *flakyDocuments) Save(ctx context.Context, name string, doc any) error {
	if d.failing && name == d.name {
		return errDiskFull
	}
	return d.DocumentStorage.Save(ctx, name, doc)
}

type fixture struct {
	svc     *Services
	pub     *recordingPublisher
	backend *storage.Backend
	teams   []storage.Team
	judges  []storage.Judge
}

func setupServices(t *testing.T) *fixture {
	t.Helper()
	return setupServicesOn(t, storage.NewMemoryBackend())
}

// setupServicesOn seeds three teams and three judges into backend.
func setupServicesOn(t *testing.T, backend *storage.Backend) *fixture {
	t.Helper()
	logging.Log = logrus.New()

	pub := &recordingPublisher{}
	svc := New(backend, pub, nil)
	ctx := context.Background()

	f := &fixture{svc: svc, pub: pub, backend: backend}
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		team, err := svc.Roster.AddTeam(ctx, storage.Team{Name: name, Affiliation: name + " Inc.", Presenter: "P. " + name})
		require.NoError(t, err)
		f.teams = append(f.teams, team)
	}
	for _, name := range []string{"Kim", "Lee", "Park"} {
		judge, err := svc.Roster.AddJudge(ctx, storage.Judge{Name: name})
		require.NoError(t, err)
		f.judges = append(f.judges, judge)
	}
	require.NoError(t, svc.Bootstrap(ctx))
	return f
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
