// Package service implements the scoring operations on top of a storage backend.
// Every successful write is published through a Publisher so connected clients
// converge on the stored state.
package service

import (
	"context"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// Services bundles every service sharing one backend.
type Services struct {
	Settings *SettingsService
	Roster   *RosterService
	Control  *ControlService
	Scores   *ScoreService
	Audience *AudienceService
	Results  *ResultsService

	pub Publisher
}

// New wires the services together. Changes to scores, roster, settings and
// audience votes republish the leaderboard. pub and m may be nil.
func New(backend *storage.Backend, pub Publisher, m *metrics.Collectors) *Services {
	if pub == nil {
		pub = nopPublisher{}
	}

	settings := NewSettingsService(backend.Documents, pub)
	roster := NewRosterService(backend.Documents, pub)
	ctrl := NewControlService(backend.Documents, pub, settings, roster, m)
	scores := NewScoreService(backend.Scores, pub, settings, roster, ctrl, m)
	audience := NewAudienceService(backend.Codes, backend.Votes, roster, m)
	results := NewResultsService(backend.Scores, settings, roster, audience, pub, m)

	refresh := results.Refresh
	settings.onChange = refresh
	roster.onChange = refresh
	scores.onChange = refresh
	audience.onChange = refresh

	return &Services{
		Settings: settings,
		Roster:   roster,
		Control:  ctrl,
		Scores:   scores,
		Audience: audience,
		Results:  results,
		pub:      pub,
	}
}

// Bootstrap publishes every singleton so the realtime snapshot is complete
// before the first client connects.
func (s *Services) Bootstrap(ctx context.Context) error {
	st, err := s.Control.State(ctx)
	if err != nil {
		return err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return err
	}
	teams, err := s.Roster.Teams(ctx)
	if err != nil {
		return err
	}
	judges, err := s.Roster.Judges(ctx)
	if err != nil {
		return err
	}
	records, err := s.Scores.List(ctx)
	if err != nil {
		return err
	}

	_ = s.pub.Publish(storage.DocControlState, "", st)
	_ = s.pub.Publish(storage.DocEventSettings, "", settings)
	_ = s.pub.Publish(storage.DocTeams, "", storage.TeamList{List: teams})
	_ = s.pub.Publish(storage.DocJudges, "", storage.JudgeList{List: judges})
	for _, r := range records {
		_ = s.pub.Publish(storage.DocScores, r.ID, r)
	}
	s.Results.Refresh(ctx)

	logging.Log.Infof("SERVICE: bootstrapped %d teams, %d judges, %d score records", len(teams), len(judges), len(records))
	return nil
}

// Reset clears every score and audience ballot, marks all codes unused and
// restores the default control state. Teams, judges and settings are kept.
func (s *Services) Reset(ctx context.Context) error {
	logging.Log.Warn("ADMIN: full system reset requested")
	if err := s.Scores.clear(ctx); err != nil {
		logging.Log.Errorf("ADMIN: reset failed to clear scores: %v", err)
		return err
	}
	if err := s.Audience.clear(ctx); err != nil {
		logging.Log.Errorf("ADMIN: reset failed to clear audience votes: %v", err)
		return err
	}
	if _, err := s.Control.Reset(ctx); err != nil {
		logging.Log.Errorf("ADMIN: reset failed to restore control state: %v", err)
		return err
	}
	s.Results.Refresh(ctx)
	logging.Log.Info("ADMIN: full system reset done")
	return nil
}
