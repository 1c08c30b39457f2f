package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/roster"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// RosterService owns the teams and judges documents.
type RosterService struct {
	mu       sync.Mutex
	docs     storage.DocumentStorage
	pub      Publisher
	onChange func(context.Context)
}

func NewRosterService(docs storage.DocumentStorage, pub Publisher) *RosterService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &RosterService{docs: docs, pub: pub}
}

func (s *RosterService) Teams(ctx context.Context) ([]storage.Team, error) {
	var doc storage.TeamList
	if err := s.docs.Load(ctx, storage.DocTeams, &doc); err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		logging.Log.Errorf("TEAM: failed to load teams: %v", err)
		return nil, err
	}
	if doc.List == nil {
		doc.List = []storage.Team{}
	}
	return doc.List, nil
}

func (s *RosterService) Judges(ctx context.Context) ([]storage.Judge, error) {
	var doc storage.JudgeList
	if err := s.docs.Load(ctx, storage.DocJudges, &doc); err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		logging.Log.Errorf("JUDGE: failed to load judges: %v", err)
		return nil, err
	}
	if doc.List == nil {
		doc.List = []storage.Judge{}
	}
	return doc.List, nil
}

func (s *RosterService) Team(ctx context.Context, id string) (storage.Team, error) {
	teams, err := s.Teams(ctx)
	if err != nil {
		return storage.Team{}, err
	}
	for _, t := range teams {
		if t.ID == id {
			return t, nil
		}
	}
	return storage.Team{}, ErrUnknownTeam
}

func (s *RosterService) Judge(ctx context.Context, id string) (storage.Judge, error) {
	judges, err := s.Judges(ctx)
	if err != nil {
		return storage.Judge{}, err
	}
	for _, j := range judges {
		if j.ID == id {
			return j, nil
		}
	}
	return storage.Judge{}, ErrUnknownJudge
}

func (s *RosterService) AddTeam(ctx context.Context, team storage.Team) (storage.Team, error) {
	team.ID = ""
	if err := roster.ValidateTeam(&team); err != nil {
		return storage.Team{}, validationFrom(err)
	}
	list, err := s.mutateTeams(ctx, func(list []storage.Team) ([]storage.Team, error) {
		return roster.AddTeams(list, team)
	})
	if err != nil {
		return storage.Team{}, err
	}
	return list[len(list)-1], nil
}

func (s *RosterService) UpdateTeam(ctx context.Context, team storage.Team) (storage.Team, error) {
	if err := roster.ValidateTeam(&team); err != nil {
		return storage.Team{}, validationFrom(err)
	}
	list, err := s.mutateTeams(ctx, func(list []storage.Team) ([]storage.Team, error) {
		return roster.UpdateTeam(list, team)
	})
	if err != nil {
		return storage.Team{}, teamErr(err)
	}
	for _, t := range list {
		if t.ID == team.ID {
			return t, nil
		}
	}
	return storage.Team{}, ErrUnknownTeam
}

func (s *RosterService) DeleteTeam(ctx context.Context, id string) error {
	_, err := s.mutateTeams(ctx, func(list []storage.Team) ([]storage.Team, error) {
		return roster.DeleteTeam(list, id)
	})
	return teamErr(err)
}

func (s *RosterService) ReorderTeams(ctx context.Context, ids []string) ([]storage.Team, error) {
	list, err := s.mutateTeams(ctx, func(list []storage.Team) ([]storage.Team, error) {
		return roster.ReorderTeams(list, ids)
	})
	if errors.Is(err, roster.ErrReorderSet) {
		return nil, newValidationError("ids", err.Error())
	}
	return list, err
}

// ImportTeams appends every row of a CSV file. A single bad row rejects the file.
func (s *RosterService) ImportTeams(ctx context.Context, r io.Reader) ([]storage.Team, error) {
	teams, err := roster.ParseTeamsCSV(r)
	if err != nil {
		logging.Log.Warnf("TEAM: import rejected: %v", err)
		return nil, importErr(err)
	}
	list, err := s.mutateTeams(ctx, func(list []storage.Team) ([]storage.Team, error) {
		return roster.AddTeams(list, teams...)
	})
	if err != nil {
		return nil, err
	}
	logging.Log.Infof("TEAM: imported %d teams", len(teams))
	return list, nil
}

func (s *RosterService) AddJudge(ctx context.Context, judge storage.Judge) (storage.Judge, error) {
	judge.ID = ""
	if err := roster.ValidateJudge(&judge); err != nil {
		return storage.Judge{}, validationFrom(err)
	}
	list, err := s.mutateJudges(ctx, func(list []storage.Judge) ([]storage.Judge, error) {
		return roster.AddJudges(list, judge)
	})
	if err != nil {
		return storage.Judge{}, err
	}
	return list[len(list)-1], nil
}

func (s *RosterService) UpdateJudge(ctx context.Context, judge storage.Judge) (storage.Judge, error) {
	if err := roster.ValidateJudge(&judge); err != nil {
		return storage.Judge{}, validationFrom(err)
	}
	list, err := s.mutateJudges(ctx, func(list []storage.Judge) ([]storage.Judge, error) {
		return roster.UpdateJudge(list, judge)
	})
	if err != nil {
		return storage.Judge{}, judgeErr(err)
	}
	for _, j := range list {
		if j.ID == judge.ID {
			return j, nil
		}
	}
	return storage.Judge{}, ErrUnknownJudge
}

func (s *RosterService) DeleteJudge(ctx context.Context, id string) error {
	_, err := s.mutateJudges(ctx, func(list []storage.Judge) ([]storage.Judge, error) {
		return roster.DeleteJudge(list, id)
	})
	return judgeErr(err)
}

func (s *RosterService) ReorderJudges(ctx context.Context, ids []string) ([]storage.Judge, error) {
	list, err := s.mutateJudges(ctx, func(list []storage.Judge) ([]storage.Judge, error) {
		return roster.ReorderJudges(list, ids)
	})
	if errors.Is(err, roster.ErrReorderSet) {
		return nil, newValidationError("ids", err.Error())
	}
	return list, err
}

func (s *RosterService) ImportJudges(ctx context.Context, r io.Reader) ([]storage.Judge, error) {
	judges, err := roster.ParseJudgesCSV(r)
	if err != nil {
		logging.Log.Warnf("JUDGE: import rejected: %v", err)
		return nil, importErr(err)
	}
	list, err := s.mutateJudges(ctx, func(list []storage.Judge) ([]storage.Judge, error) {
		return roster.AddJudges(list, judges...)
	})
	if err != nil {
		return nil, err
	}
	logging.Log.Infof("JUDGE: imported %d judges", len(judges))
	return list, nil
}

func (s *RosterService) mutateTeams(ctx context.Context, fn func([]storage.Team) ([]storage.Team, error)) ([]storage.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Teams(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	doc := storage.TeamList{List: next}
	if err := s.docs.Save(ctx, storage.DocTeams, doc); err != nil {
		logging.Log.Errorf("TEAM: failed to save teams: %v", err)
		return nil, persistence("save teams", err)
	}
	logging.Log.Infof("TEAM: saved %d teams", len(next))
	_ = s.pub.Publish(storage.DocTeams, "", doc)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return next, nil
}

func (s *RosterService) mutateJudges(ctx context.Context, fn func([]storage.Judge) ([]storage.Judge, error)) ([]storage.Judge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Judges(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	doc := storage.JudgeList{List: next}
	if err := s.docs.Save(ctx, storage.DocJudges, doc); err != nil {
		logging.Log.Errorf("JUDGE: failed to save judges: %v", err)
		return nil, persistence("save judges", err)
	}
	logging.Log.Infof("JUDGE: saved %d judges", len(next))
	_ = s.pub.Publish(storage.DocJudges, "", doc)
	if s.onChange != nil {
		s.onChange(ctx)
	}
	return next, nil
}

func teamErr(err error) error {
	if errors.Is(err, roster.ErrUnknownID) {
		return ErrUnknownTeam
	}
	return err
}

func judgeErr(err error) error {
	if errors.Is(err, roster.ErrUnknownID) {
		return ErrUnknownJudge
	}
	return err
}

func importErr(err error) error {
	var rowErr *roster.RowError
	if errors.As(err, &rowErr) {
		return newValidationError("file", rowErr.Error())
	}
	if errors.Is(err, roster.ErrEmptyImport) {
		return newValidationError("file", err.Error())
	}
	return err
}
