package storage

import "context"

// ScoreStorage is the "scores" collection keyed by ScoreID.
type ScoreStorage interface {
	Get(ctx context.Context, id string) (*ScoreRecord, error)
	GetAll(ctx context.Context) ([]*ScoreRecord, error)
	Put(ctx context.Context, record *ScoreRecord) error
	DeleteAll(ctx context.Context) error
}

// DocumentStorage holds the singleton documents (control_state, teams, judges, event_settings).
// Load returns ErrDocumentNotFound when the document was never written.
type DocumentStorage interface {
	Load(ctx context.Context, name string, out any) error
	Save(ctx context.Context, name string, doc any) error
}

type VotingCodeStorage interface {
	Get(ctx context.Context, code string) (*VotingCode, error)
	GetAll(ctx context.Context) ([]*VotingCode, error)
	Put(ctx context.Context, votingCode *VotingCode) error
	ResetAll(ctx context.Context) (int, error)
	Delete(ctx context.Context, code string) error
}

type AudienceVoteStorage interface {
	GetAll(ctx context.Context) ([]*AudienceVote, error)
	// Cast consumes code and stores votes in one atomic write: either the code
	// is marked used and every vote exists, or nothing changed. It returns
	// ErrNotFound when the code is unknown or already used, and
	// ErrItemWithIDAlreadyExists when the code already rated one of the teams.
	Cast(ctx context.Context, code string, votes []*AudienceVote) error
	GetByCode(ctx context.Context, code string) ([]*AudienceVote, error)
	DeleteAll(ctx context.Context) error
}

// Backend bundles one driver's implementations of every collection.
type Backend struct {
	Scores    ScoreStorage
	Documents DocumentStorage
	Codes     VotingCodeStorage
	Votes     AudienceVoteStorage
}
