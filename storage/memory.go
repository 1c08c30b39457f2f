package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// NewMemoryBackend returns a process-local backend. It is used for APP_ENV=local
// without AWS and throughout the tests.
func NewMemoryBackend() *Backend {
	codes := NewMemoryVotingCodeStorage()
	return &Backend{
		Scores:    NewMemoryScoreStorage(),
		Documents: NewMemoryDocumentStorage(),
		Codes:     codes,
		Votes:     NewMemoryAudienceVoteStorage(codes),
	}
}

type MemoryScoreStorage struct {
	mu      sync.RWMutex
	records map[string]*ScoreRecord
}

func NewMemoryScoreStorage() *MemoryScoreStorage {
	return &MemoryScoreStorage{records: make(map[string]*ScoreRecord)}
}

func (s *MemoryScoreStorage) Get(_ context.Context, id string) (*ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryScoreStorage) GetAll(_ context.Context) ([]*ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ScoreRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryScoreStorage) Put(_ context.Context, record *ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record.Clone()
	return nil
}

func (s *MemoryScoreStorage) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ScoreRecord)
	return nil
}

// MemoryDocumentStorage stores documents as encoded JSON so loads never alias saved values.
type MemoryDocumentStorage struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryDocumentStorage() *MemoryDocumentStorage {
	return &MemoryDocumentStorage{docs: make(map[string][]byte)}
}

func (s *MemoryDocumentStorage) Load(_ context.Context, name string, out any) error {
	s.mu.RLock()
	raw, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return ErrDocumentNotFound
	}
	return json.Unmarshal(raw, out)
}

func (s *MemoryDocumentStorage) Save(_ context.Context, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = raw
	return nil
}

type MemoryVotingCodeStorage struct {
	mu    sync.RWMutex
	codes map[string]VotingCode
}

func NewMemoryVotingCodeStorage() *MemoryVotingCodeStorage {
	return &MemoryVotingCodeStorage{codes: make(map[string]VotingCode)}
}

func (s *MemoryVotingCodeStorage) Get(_ context.Context, code string) (*VotingCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vc, ok := s.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &vc, nil
}

func (s *MemoryVotingCodeStorage) GetAll(_ context.Context) ([]*VotingCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*VotingCode, 0, len(s.codes))
	for _, vc := range s.codes {
		vc := vc
		out = append(out, &vc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *MemoryVotingCodeStorage) Put(_ context.Context, code *VotingCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[code.Code]; ok {
		return ErrItemWithIDAlreadyExists
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	code.Used = false
	s.codes[code.Code] = *code
	return nil
}

func (s *MemoryVotingCodeStorage) ResetAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for k, vc := range s.codes {
		if vc.Used {
			vc.Used = false
			s.codes[k] = vc
			updated++
		}
	}
	return updated, nil
}

func (s *MemoryVotingCodeStorage) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, code)
	return nil
}

// MemoryAudienceVoteStorage shares the code store so a cast can consume the
// code and write its votes under both locks.
type MemoryAudienceVoteStorage struct {
	mu    sync.RWMutex
	votes map[string]AudienceVote
	codes *MemoryVotingCodeStorage
}

func NewMemoryAudienceVoteStorage(codes *MemoryVotingCodeStorage) *MemoryAudienceVoteStorage {
	return &MemoryAudienceVoteStorage{votes: make(map[string]AudienceVote), codes: codes}
}

func (s *MemoryAudienceVoteStorage) GetAll(_ context.Context) ([]*AudienceVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*AudienceVote, 0, len(s.votes))
	for _, v := range s.votes {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].SortKey < out[j].SortKey
	})
	return out, nil
}

func (s *MemoryAudienceVoteStorage) Cast(_ context.Context, code string, votes []*AudienceVote) error {
	s.codes.mu.Lock()
	defer s.codes.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	vc, ok := s.codes.codes[code]
	if !ok || vc.Used {
		return ErrNotFound
	}
	keys := make(map[string]bool, len(votes))
	for _, v := range votes {
		key := v.Code + "|" + v.SortKey
		if _, exists := s.votes[key]; exists || keys[key] {
			return ErrItemWithIDAlreadyExists
		}
		keys[key] = true
	}

	vc.Used = true
	s.codes.codes[code] = vc
	for _, v := range votes {
		s.votes[v.Code+"|"+v.SortKey] = *v
	}
	return nil
}

func (s *MemoryAudienceVoteStorage) GetByCode(ctx context.Context, code string) ([]*AudienceVote, error) {
	all, _ := s.GetAll(ctx)
	out := make([]*AudienceVote, 0)
	for _, v := range all {
		if v.Code == code {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryAudienceVoteStorage) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.votes = make(map[string]AudienceVote)
	return nil
}
