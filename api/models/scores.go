package models

import (
	"time"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

// ScoreUpsertRequest is a judge's full submission for one team. Signature is the
// signature image as a data URL.
type ScoreUpsertRequest struct {
	TeamID    string         `json:"teamId"`
	Detail    map[string]int `json:"detail"`
	Comment   string         `json:"comment"`
	Signature string         `json:"signature"`
}

type ScoreResponse struct {
	ID        string         `json:"id"`
	TeamID    string         `json:"teamId"`
	JudgeID   string         `json:"judgeId"`
	JudgeName string         `json:"judgeName"`
	Detail    map[string]int `json:"detail"`
	Total     int            `json:"total"`
	Comment   string         `json:"comment"`
	Signature *string        `json:"signature"`
	Timestamp time.Time      `json:"timestamp"`
	Locked    bool           `json:"locked"`
}

func TransformScoreFromStorage(r *storage.ScoreRecord) ScoreResponse {
	resp := ScoreResponse{
		ID:        r.ID,
		TeamID:    r.TeamID,
		JudgeID:   r.JudgeID,
		JudgeName: r.JudgeName,
		Detail:    r.Detail,
		Total:     r.Total,
		Comment:   r.Comment,
		Timestamp: r.Timestamp,
		Locked:    r.Locked,
	}
	if resp.Detail == nil {
		resp.Detail = map[string]int{}
	}
	if r.Signature != nil {
		sig := string(r.Signature)
		resp.Signature = &sig
	}
	return resp
}

func TransformScoresFromStorage(records []*storage.ScoreRecord) []ScoreResponse {
	out := make([]ScoreResponse, 0, len(records))
	for _, r := range records {
		out = append(out, TransformScoreFromStorage(r))
	}
	return out
}
