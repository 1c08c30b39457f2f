package service

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// Leaderboard is the derived leaderboard document.
type Leaderboard struct {
	Method    scoring.Method     `json:"method"`
	VoteMode  scoring.VoteMode   `json:"voteMode"`
	Standings []scoring.Standing `json:"standings"`
	Winner    *scoring.Standing  `json:"winner"`
}

// ResultsService derives rankings from the stored state. It keeps no state of
// its own; every call recomputes from storage.
type ResultsService struct {
	// refreshMu spans load, compute and publish so a leaderboard computed from
	// older reads can never be published after a newer one.
	refreshMu sync.Mutex

	scores   storage.ScoreStorage
	settings *SettingsService
	roster   *RosterService
	audience *AudienceService
	pub      Publisher
	metrics  *metrics.Collectors
}

func NewResultsService(scores storage.ScoreStorage, settings *SettingsService, roster *RosterService, audience *AudienceService, pub Publisher, m *metrics.Collectors) *ResultsService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &ResultsService{scores: scores, settings: settings, roster: roster, audience: audience, pub: pub, metrics: m}
}

type snapshot struct {
	teams    []storage.Team
	judges   []storage.Judge
	records  []*storage.ScoreRecord
	settings scoring.Settings
	audience map[string]scoring.AudienceSignal
}

func (s *ResultsService) load(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.teams, err = s.roster.Teams(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.judges, err = s.roster.Judges(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.records, err = s.scores.GetAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.settings, err = s.settings.Get(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.audience, err = s.audience.Signals(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if snap.settings.VoteMode.Normalize() == scoring.VoteNone {
		snap.audience = nil
	}
	return snap, nil
}

// Leaderboard ranks every team from the current stored state.
func (s *ResultsService) Leaderboard(ctx context.Context) (board *Leaderboard, err error) {
	ctx, span := startSpan(ctx, "ResultsService.Leaderboard")
	defer func() { endSpan(span, err) }()
	start := time.Now()

	snap, err := s.load(ctx)
	if err != nil {
		logging.Log.Errorf("RESULTS: failed to load state: %v", err)
		return nil, err
	}

	standings := scoring.RankTeams(snap.teams, snap.judges, snap.records, snap.settings, snap.audience)
	board = &Leaderboard{
		Method:    snap.settings.ScoringMethod,
		VoteMode:  snap.settings.VoteMode,
		Standings: standings,
	}
	if w, ok := scoring.Winner(standings); ok {
		board.Winner = &w
	}

	span.SetAttributes(attribute.Int("teams", len(snap.teams)), attribute.Int("records", len(snap.records)))
	s.metrics.LeaderboardComputed(time.Since(start))
	return board, nil
}

// Winner returns the top ranked team, if any team has been scored.
func (s *ResultsService) Winner(ctx context.Context) (scoring.Standing, bool, error) {
	board, err := s.Leaderboard(ctx)
	if err != nil {
		return scoring.Standing{}, false, err
	}
	if board.Winner == nil {
		return scoring.Standing{}, false, nil
	}
	return *board.Winner, true, nil
}

// Export writes the results CSV, one row per team in roster order.
func (s *ResultsService) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	standings := scoring.RankTeams(snap.teams, snap.judges, snap.records, snap.settings, snap.audience)
	return scoring.WriteResultsCSV(w, standings, snap.judges, snap.settings.Criteria)
}

// Refresh recomputes the leaderboard and publishes it.
func (s *ResultsService) Refresh(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	board, err := s.Leaderboard(ctx)
	if err != nil {
		logging.Log.Warnf("RESULTS: refresh skipped: %v", err)
		return
	}
	if err := s.pub.Publish(storage.DocLeaderboard, "", board); err != nil {
		logging.Log.Warnf("RESULTS: publish failed: %v", err)
	}
}
