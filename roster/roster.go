// Package roster manages the ordered team and judge lists. Every mutation
// re-derives the 1..N sequence numbers; ids are the only identity.
package roster

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 10
)

var (
	ErrUnknownID   = errors.New("id is not in the list")
	ErrReorderSet  = errors.New("reorder must list every id exactly once")
	ErrDuplicateID = errors.New("id already exists")
)

var validate = validator.New()

func NewTeamID() (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", err
	}
	return "t" + id, nil
}

func NewJudgeID() (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", err
	}
	return "j" + id, nil
}

// ValidateTeam checks required fields and fills affiliation_en from affiliation.
func ValidateTeam(t *storage.Team) error {
	if t.AffiliationEn == "" {
		t.AffiliationEn = t.Affiliation
	}
	return validate.Struct(t)
}

func ValidateJudge(j *storage.Judge) error {
	return validate.Struct(j)
}

func teamID(t storage.Team) string   { return t.ID }
func judgeID(j storage.Judge) string { return j.ID }

func ResequenceTeams(list []storage.Team) []storage.Team {
	for i := range list {
		list[i].Seq = i + 1
	}
	return list
}

func ResequenceJudges(list []storage.Judge) []storage.Judge {
	for i := range list {
		list[i].Seq = i + 1
	}
	return list
}

// AddTeams appends teams, assigning ids where missing, and re-sequences.
func AddTeams(list []storage.Team, teams ...storage.Team) ([]storage.Team, error) {
	out := append([]storage.Team(nil), list...)
	for _, t := range teams {
		if t.ID == "" {
			id, err := NewTeamID()
			if err != nil {
				return nil, err
			}
			t.ID = id
		} else if indexOf(out, t.ID, teamID) >= 0 {
			return nil, fmt.Errorf("team %s: %w", t.ID, ErrDuplicateID)
		}
		out = append(out, t)
	}
	return ResequenceTeams(out), nil
}

// UpdateTeam replaces the team with the same id, keeping its position.
func UpdateTeam(list []storage.Team, t storage.Team) ([]storage.Team, error) {
	i := indexOf(list, t.ID, teamID)
	if i < 0 {
		return nil, ErrUnknownID
	}
	out := append([]storage.Team(nil), list...)
	out[i] = t
	return ResequenceTeams(out), nil
}

func DeleteTeam(list []storage.Team, id string) ([]storage.Team, error) {
	out, ok := remove(list, id, teamID)
	if !ok {
		return nil, ErrUnknownID
	}
	return ResequenceTeams(out), nil
}

func ReorderTeams(list []storage.Team, ids []string) ([]storage.Team, error) {
	out, err := reorder(list, ids, teamID)
	if err != nil {
		return nil, err
	}
	return ResequenceTeams(out), nil
}

func AddJudges(list []storage.Judge, judges ...storage.Judge) ([]storage.Judge, error) {
	out := append([]storage.Judge(nil), list...)
	for _, j := range judges {
		if j.ID == "" {
			id, err := NewJudgeID()
			if err != nil {
				return nil, err
			}
			j.ID = id
		} else if indexOf(out, j.ID, judgeID) >= 0 {
			return nil, fmt.Errorf("judge %s: %w", j.ID, ErrDuplicateID)
		}
		out = append(out, j)
	}
	return ResequenceJudges(out), nil
}

func UpdateJudge(list []storage.Judge, j storage.Judge) ([]storage.Judge, error) {
	i := indexOf(list, j.ID, judgeID)
	if i < 0 {
		return nil, ErrUnknownID
	}
	out := append([]storage.Judge(nil), list...)
	out[i] = j
	return ResequenceJudges(out), nil
}

func DeleteJudge(list []storage.Judge, id string) ([]storage.Judge, error) {
	out, ok := remove(list, id, judgeID)
	if !ok {
		return nil, ErrUnknownID
	}
	return ResequenceJudges(out), nil
}

func ReorderJudges(list []storage.Judge, ids []string) ([]storage.Judge, error) {
	out, err := reorder(list, ids, judgeID)
	if err != nil {
		return nil, err
	}
	return ResequenceJudges(out), nil
}

func indexOf[T any](list []T, id string, idOf func(T) string) int {
	for i, item := range list {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func remove[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(list))
	found := false
	for _, item := range list {
		if idOf(item) == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}

func reorder[T any](list []T, ids []string, idOf func(T) string) ([]T, error) {
	if len(ids) != len(list) {
		return nil, ErrReorderSet
	}
	byID := make(map[string]T, len(list))
	for _, item := range list {
		byID[idOf(item)] = item
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, ErrReorderSet
		}
		delete(byID, id)
		out = append(out, item)
	}
	return out, nil
}
