package service

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// Submission is a judge's scoring of one team.
type Submission struct {
	Detail    map[string]int
	Comment   string
	Signature []byte
}

// ScoreService writes score records. Each record has exactly one writer, the
// judge it belongs to, plus the administrative unlock.
type ScoreService struct {
	mu       sync.Mutex
	scores   storage.ScoreStorage
	pub      Publisher
	settings *SettingsService
	roster   *RosterService
	control  *ControlService
	metrics  *metrics.Collectors
	onChange func(context.Context)
	now      func() time.Time
}

func NewScoreService(scores storage.ScoreStorage, pub Publisher, settings *SettingsService, roster *RosterService, ctrl *ControlService, m *metrics.Collectors) *ScoreService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &ScoreService{
		scores:   scores,
		pub:      pub,
		settings: settings,
		roster:   roster,
		control:  ctrl,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upsert replaces the judge's record for the team with a sealed submission.
// The total is always recomputed from the detail. Resubmitting identical
// content leaves the stored record untouched.
func (s *ScoreService) Upsert(ctx context.Context, judgeID, teamID string, sub Submission) (rec *storage.ScoreRecord, err error) {
	ctx, span := startSpan(ctx, "ScoreService.Upsert",
		attribute.String("team.id", teamID), attribute.String("judge.id", judgeID))
	defer func() { endSpan(span, err) }()

	if _, err := s.roster.Team(ctx, teamID); err != nil {
		s.metrics.ScoreSubmission("invalid")
		return nil, err
	}
	judge, err := s.roster.Judge(ctx, judgeID)
	if err != nil {
		s.metrics.ScoreSubmission("invalid")
		return nil, err
	}

	editable, err := s.control.Editable(ctx, judgeID)
	if err != nil {
		return nil, err
	}
	if !editable {
		logging.Log.Warnf("SCORE: judge %s tried to score %s while locked", judgeID, teamID)
		s.metrics.ScoreSubmission("locked")
		return nil, ErrScoringLocked
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if errs := scoring.ValidateDetail(settings.Criteria, sub.Detail); len(errs) > 0 {
		s.metrics.ScoreSubmission("invalid")
		return nil, detailValidation(errs)
	}

	detail := make(map[string]int, len(sub.Detail))
	maps.Copy(detail, sub.Detail)
	next := &storage.ScoreRecord{
		ID:        storage.ScoreID(teamID, judgeID),
		TeamID:    teamID,
		JudgeID:   judgeID,
		JudgeName: judge.Name,
		Detail:    detail,
		Total:     scoring.SumDetail(detail),
		Comment:   sub.Comment,
		Signature: sub.Signature,
		Locked:    true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.scores.Get(ctx, next.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Log.Errorf("SCORE: failed to read %s: %v", next.ID, err)
		return nil, err
	}
	if prev != nil && sameSubmission(prev, next) {
		logging.Log.Debugf("SCORE: %s unchanged", next.ID)
		s.metrics.ScoreSubmission("unchanged")
		return prev, nil
	}

	next.Timestamp = s.now()
	if err := s.scores.Put(ctx, next); err != nil {
		logging.Log.Errorf("SCORE: failed to store %s: %v", next.ID, err)
		s.metrics.ScoreSubmission("error")
		return nil, persistence("put score", err)
	}
	logging.Log.Infof("SCORE: judge %s scored team %s: %d", judgeID, teamID, next.Total)
	s.metrics.ScoreSubmission("accepted")

	_ = s.pub.Publish(storage.DocScores, next.ID, next)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return next.Clone(), nil
}

// Unlock clears a record and marks it unsealed so the judge can score again.
// The record itself is kept.
func (s *ScoreService) Unlock(ctx context.Context, teamID, judgeID string) (rec *storage.ScoreRecord, err error) {
	ctx, span := startSpan(ctx, "ScoreService.Unlock",
		attribute.String("team.id", teamID), attribute.String("judge.id", judgeID))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := storage.ScoreID(teamID, judgeID)
	prev, err := s.scores.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrScoreNotFound
	}
	if err != nil {
		return nil, err
	}

	next := prev.Clone()
	next.Detail = map[string]int{}
	next.Total = 0
	next.Signature = nil
	next.Locked = false
	next.Timestamp = s.now()
	if err := s.scores.Put(ctx, next); err != nil {
		logging.Log.Errorf("SCORE: failed to unlock %s: %v", id, err)
		return nil, persistence("unlock score", err)
	}
	logging.Log.Infof("SCORE: unlocked %s", id)
	s.metrics.ScoreSubmission("unlocked")

	_ = s.pub.Publish(storage.DocScores, next.ID, next)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return next.Clone(), nil
}

func (s *ScoreService) Get(ctx context.Context, teamID, judgeID string) (*storage.ScoreRecord, error) {
	rec, err := s.scores.Get(ctx, storage.ScoreID(teamID, judgeID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrScoreNotFound
	}
	return rec, err
}

func (s *ScoreService) List(ctx context.Context) ([]*storage.ScoreRecord, error) {
	return s.scores.GetAll(ctx)
}

// ListByJudge returns one judge's records ordered by team id.
func (s *ScoreService) ListByJudge(ctx context.Context, judgeID string) ([]*storage.ScoreRecord, error) {
	all, err := s.scores.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*storage.ScoreRecord, 0)
	for _, r := range all {
		if r.JudgeID == judgeID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (s *ScoreService) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.scores.DeleteAll(ctx); err != nil {
		return persistence("clear scores", err)
	}
	s.pub.Forget(storage.DocScores)
	return nil
}

func sameSubmission(a, b *storage.ScoreRecord) bool {
	return a.Locked == b.Locked &&
		a.Total == b.Total &&
		a.Comment == b.Comment &&
		a.JudgeName == b.JudgeName &&
		maps.Equal(a.Detail, b.Detail) &&
		bytes.Equal(a.Signature, b.Signature)
}
