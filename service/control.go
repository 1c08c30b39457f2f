package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kripanshu-singh/congkong-livescore/control"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// ControlService owns the control_state singleton. Every read and mutation
// starts from the stored document, so instances sharing a backend agree on the
// state. Mutations within one instance are serialized, written through to
// storage, and only then broadcast.
type ControlService struct {
	mu       sync.Mutex
	docs     storage.DocumentStorage
	pub      Publisher
	settings *SettingsService
	roster   *RosterService
	metrics  *metrics.Collectors
}

func NewControlService(docs storage.DocumentStorage, pub Publisher, settings *SettingsService, roster *RosterService, m *metrics.Collectors) *ControlService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &ControlService{docs: docs, pub: pub, settings: settings, roster: roster, metrics: m}
}

// current reads the stored state, falling back to the default state when it
// was never written.
func (s *ControlService) current(ctx context.Context) (control.State, error) {
	var st control.State
	err := s.docs.Load(ctx, storage.DocControlState, &st)
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound):
		return s.defaultState(ctx)
	case err != nil:
		logging.Log.Errorf("CONTROL: failed to load state: %v", err)
		return control.State{}, err
	}
	if st.UnlockedJudges == nil {
		st.UnlockedJudges = []string{}
	}
	return st, nil
}

func (s *ControlService) defaultState(ctx context.Context) (control.State, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return control.State{}, err
	}
	return control.Default(settings.PresentationSeconds()), nil
}

// State returns the stored state.
func (s *ControlService) State(ctx context.Context) (control.State, error) {
	return s.current(ctx)
}

// Editable reports whether judgeID may currently submit scores.
func (s *ControlService) Editable(ctx context.Context, judgeID string) (bool, error) {
	st, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	return st.Editable(judgeID), nil
}

func (s *ControlService) SetGlobalLock(ctx context.Context, locked bool) (control.State, error) {
	return s.mutate(ctx, "set_global_lock", func(st *control.State) (bool, error) {
		st.SetGlobalLock(locked)
		return true, nil
	})
}

// ToggleJudgeException flips a judge's exception from the global lock. It
// changes nothing while the lock is off.
func (s *ControlService) ToggleJudgeException(ctx context.Context, judgeID string) (control.State, error) {
	if _, err := s.roster.Judge(ctx, judgeID); err != nil {
		return control.State{}, err
	}
	return s.mutate(ctx, "toggle_judge_exception", func(st *control.State) (bool, error) {
		return st.ToggleJudgeException(judgeID), nil
	})
}

// SetActiveTeam spotlights a team. An empty id clears the spotlight.
func (s *ControlService) SetActiveTeam(ctx context.Context, teamID string) (control.State, error) {
	if teamID != "" {
		if _, err := s.roster.Team(ctx, teamID); err != nil {
			return control.State{}, err
		}
	}
	return s.mutate(ctx, "set_active_team", func(st *control.State) (bool, error) {
		st.SetActiveTeam(teamID)
		return true, nil
	})
}

func (s *ControlService) ToggleTimer(ctx context.Context) (control.State, error) {
	return s.mutate(ctx, "toggle_timer", func(st *control.State) (bool, error) {
		before := st.Timer
		st.ToggleTimer()
		return st.Timer != before, nil
	})
}

// ResetTimer stops the timer and restores the configured presentation length.
func (s *ControlService) ResetTimer(ctx context.Context) (control.State, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return control.State{}, err
	}
	return s.mutate(ctx, "reset_timer", func(st *control.State) (bool, error) {
		st.ResetTimer(settings.PresentationSeconds())
		return true, nil
	})
}

// Reset restores the default state.
func (s *ControlService) Reset(ctx context.Context) (control.State, error) {
	def, err := s.defaultState(ctx)
	if err != nil {
		return control.State{}, err
	}
	return s.mutate(ctx, "reset", func(st *control.State) (bool, error) {
		*st = def
		return true, nil
	})
}

// Tick advances a running timer by one second.
func (s *ControlService) Tick(ctx context.Context) (control.State, error) {
	return s.mutate(ctx, "tick", func(st *control.State) (bool, error) {
		return st.Tick(), nil
	})
}

// Run drives the timer once per second until ctx is done. It is the only
// ticker; clients only render the broadcast value.
func (s *ControlService) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	logging.Log.Info("CONTROL: timer loop started")
	for {
		select {
		case <-ctx.Done():
			logging.Log.Info("CONTROL: timer loop stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				logging.Log.Warnf("CONTROL: tick failed: %v", err)
			}
		}
	}
}

// mutate applies fn to a copy of the stored state and persists the copy.
// A failed write leaves the stored state untouched.
func (s *ControlService) mutate(ctx context.Context, op string, fn func(*control.State) (bool, error)) (control.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.current(ctx)
	if err != nil {
		s.metrics.ControlTransition(op, "error")
		return control.State{}, err
	}

	next := prev.Clone()
	changed, err := fn(&next)
	if err != nil {
		s.metrics.ControlTransition(op, "rejected")
		return control.State{}, err
	}
	if !changed {
		if op != "tick" {
			s.metrics.ControlTransition(op, "noop")
		}
		return prev, nil
	}

	if err := s.docs.Save(ctx, storage.DocControlState, next); err != nil {
		logging.Log.Errorf("CONTROL: %s failed to persist: %v", op, err)
		s.metrics.ControlTransition(op, "error")
		return prev, persistence(op, err)
	}
	s.metrics.ControlTransition(op, "ok")
	if op != "tick" {
		logging.Log.Infof("CONTROL: %s -> lock=%t active=%q timer=%ds running=%t",
			op, next.GlobalLock, next.ActiveTeamID, next.Timer.Seconds, next.Timer.IsRunning)
	}

	_ = s.pub.Publish(storage.DocControlState, "", next)
	return next.Clone(), nil
}
