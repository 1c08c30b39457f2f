package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/scoring"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

const (
	CodeAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	CodeLength   = 5
	MaxRating    = 10
	MaxCodes     = 500

	codeAttempts = 5
)

// Ballot is one audience rating of one team.
type Ballot struct {
	TeamID string `json:"teamId"`
	Rating int    `json:"rating"`
}

// AudienceService manages single-use voting codes and the ballots cast with them.
type AudienceService struct {
	codes    storage.VotingCodeStorage
	votes    storage.AudienceVoteStorage
	roster   *RosterService
	metrics  *metrics.Collectors
	onChange func(context.Context)
	now      func() time.Time
}

func NewAudienceService(codes storage.VotingCodeStorage, votes storage.AudienceVoteStorage, roster *RosterService, m *metrics.Collectors) *AudienceService {
	return &AudienceService{
		codes:   codes,
		votes:   votes,
		roster:  roster,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GenerateCodes creates count fresh codes. A collision with an existing code
// draws again.
func (s *AudienceService) GenerateCodes(ctx context.Context, count int) ([]*storage.VotingCode, error) {
	if count < 1 || count > MaxCodes {
		return nil, newValidationError("count", fmt.Sprintf("must be between 1 and %d", MaxCodes))
	}

	created := make([]*storage.VotingCode, 0, count)
	for i := 0; i < count; i++ {
		code, err := s.createCode(ctx)
		if err != nil {
			logging.Log.Errorf("ADMIN: failed to store code: %v", err)
			return created, err
		}
		logging.Log.Infof("ADMIN: created code: %s", code.Code)
		created = append(created, code)
	}
	return created, nil
}

func (s *AudienceService) createCode(ctx context.Context) (*storage.VotingCode, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		value, err := gonanoid.Generate(CodeAlphabet, CodeLength)
		if err != nil {
			return nil, err
		}
		code := &storage.VotingCode{Code: value, CreatedAt: s.now()}
		err = s.codes.Put(ctx, code)
		if errors.Is(err, storage.ErrItemWithIDAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, persistence("put code", err)
		}
		return code, nil
	}
	return nil, fmt.Errorf("no free code after %d attempts", codeAttempts)
}

func (s *AudienceService) Codes(ctx context.Context) ([]*storage.VotingCode, error) {
	return s.codes.GetAll(ctx)
}

func (s *AudienceService) DeleteCode(ctx context.Context, code string) error {
	if err := s.codes.Delete(ctx, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnknownCode
		}
		return persistence("delete code", err)
	}
	logging.Log.Infof("ADMIN: deleted code: %s", code)
	return nil
}

// ResetCodes marks every code unused again. Ballots already cast are kept.
func (s *AudienceService) ResetCodes(ctx context.Context) (int, error) {
	n, err := s.codes.ResetAll(ctx)
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to reset codes: %v", err)
		return 0, persistence("reset codes", err)
	}
	logging.Log.Infof("ADMIN: reset %d codes", n)
	return n, nil
}

// Verify looks a code up. A used code is still returned so the caller can say so.
func (s *AudienceService) Verify(ctx context.Context, code string) (*storage.VotingCode, error) {
	vc, err := s.codes.Get(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownCode
	}
	return vc, err
}

// Vote records the ballots of one code. Each team may be rated once, 1..MaxRating.
// The code is consumed in the same atomic write that stores the ballots, so a
// failed write leaves the code unused and no ballot behind.
func (s *AudienceService) Vote(ctx context.Context, code string, ballots []Ballot) error {
	if err := s.validateBallots(ctx, ballots); err != nil {
		s.metrics.AudienceVote("invalid")
		return err
	}

	vc, err := s.codes.Get(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.AudienceVote("unknown_code")
		return ErrUnknownCode
	}
	if err != nil {
		return err
	}
	if vc.Used {
		s.metrics.AudienceVote("used_code")
		return ErrCodeUsed
	}

	now := s.now()
	votes := make([]*storage.AudienceVote, 0, len(ballots))
	for _, b := range ballots {
		votes = append(votes, &storage.AudienceVote{
			Code:      code,
			SortKey:   storage.AudienceVoteSortKey(b.TeamID),
			TeamID:    b.TeamID,
			Rating:    b.Rating,
			Timestamp: now,
		})
	}

	if err := s.votes.Cast(ctx, code, votes); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrItemWithIDAlreadyExists):
			s.metrics.AudienceVote("used_code")
			return ErrCodeUsed
		default:
			logging.Log.Errorf("VOTING: failed to cast ballot for %s: %v", code, err)
			s.metrics.AudienceVote("error")
			return persistence("cast ballot", err)
		}
	}
	logging.Log.Infof("VOTING: code %s cast %d ballots", code, len(ballots))
	s.metrics.AudienceVote("accepted")

	if s.onChange != nil {
		s.onChange(ctx)
	}
	return nil
}

func (s *AudienceService) validateBallots(ctx context.Context, ballots []Ballot) error {
	if len(ballots) == 0 {
		return newValidationError("votes", "at least one ballot is required")
	}
	teams, err := s.roster.Teams(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(teams))
	for _, t := range teams {
		known[t.ID] = true
	}

	seen := make(map[string]bool, len(ballots))
	for _, b := range ballots {
		field := "votes." + b.TeamID
		switch {
		case !known[b.TeamID]:
			return fmt.Errorf("%w: %w", ErrInvalidBallot, newValidationError(field, "unknown team"))
		case seen[b.TeamID]:
			return fmt.Errorf("%w: %w", ErrInvalidBallot, newValidationError(field, "team rated twice"))
		case b.Rating < 1 || b.Rating > MaxRating:
			return fmt.Errorf("%w: %w", ErrInvalidBallot, newValidationError(field, fmt.Sprintf("rating must be between 1 and %d", MaxRating)))
		}
		seen[b.TeamID] = true
	}
	return nil
}

func (s *AudienceService) VotesByCode(ctx context.Context, code string) ([]*storage.AudienceVote, error) {
	return s.votes.GetByCode(ctx, code)
}

// Signals aggregates every ballot into per-team audience scores and ranks.
func (s *AudienceService) Signals(ctx context.Context) (map[string]scoring.AudienceSignal, error) {
	votes, err := s.votes.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.AudienceSignals(votes, MaxRating), nil
}

func (s *AudienceService) clear(ctx context.Context) error {
	if err := s.votes.DeleteAll(ctx); err != nil {
		return persistence("clear votes", err)
	}
	if _, err := s.codes.ResetAll(ctx); err != nil {
		return persistence("reset codes", err)
	}
	return nil
}
