package service

import (
	"context"
	"errors"
	"sync"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// SettingsService owns the event_settings document.
type SettingsService struct {
	mu       sync.Mutex
	docs     storage.DocumentStorage
	pub      Publisher
	onChange func(context.Context)
}

func NewSettingsService(docs storage.DocumentStorage, pub Publisher) *SettingsService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &SettingsService{docs: docs, pub: pub}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (s *SettingsService) Get(ctx context.Context) (scoring.Settings, error) {
	var settings scoring.Settings
	err := s.docs.Load(ctx, storage.DocEventSettings, &settings)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return scoring.DefaultSettings(), nil
	}
	if err != nil {
		logging.Log.Errorf("SETTINGS: failed to load: %v", err)
		return scoring.Settings{}, err
	}
	return settings.WithDefaults(), nil
}

// Save replaces the whole settings document. An invalid rubric is returned as a
// scoring.Report and nothing is written.
func (s *SettingsService) Save(ctx context.Context, settings scoring.Settings) (scoring.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, settings)
}

// SaveCriteria replaces only the rubric.
func (s *SettingsService) SaveCriteria(ctx context.Context, rubric scoring.Rubric) (scoring.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return scoring.Settings{}, err
	}
	current.Criteria = rubric
	return s.saveLocked(ctx, current)
}

func (s *SettingsService) saveLocked(ctx context.Context, settings scoring.Settings) (scoring.Settings, error) {
	if settings.Criteria.TotalMaxScore <= 0 {
		settings.Criteria.TotalMaxScore = scoring.DefaultTotalMaxScore
	}
	if err := settings.Validate(); err != nil {
		logging.Log.Warnf("SETTINGS: rejected: %v", err)
		return scoring.Settings{}, validationFrom(err)
	}
	settings = settings.WithDefaults()

	if err := s.docs.Save(ctx, storage.DocEventSettings, settings); err != nil {
		logging.Log.Errorf("SETTINGS: failed to save: %v", err)
		return scoring.Settings{}, persistence("save settings", err)
	}
	logging.Log.Infof("SETTINGS: saved (method=%s, voteMode=%s)", settings.ScoringMethod, settings.VoteMode)

	_ = s.pub.Publish(storage.DocEventSettings, "", settings)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return settings, nil
}
