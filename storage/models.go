package storage

import (
	"fmt"
	"time"
)

// Singleton document names shared by every driver and by the realtime channel.
const (
	DocControlState  = "control_state"
	DocTeams         = "teams"
	DocJudges        = "judges"
	DocEventSettings = "event_settings"
)

// Keyed document streams published alongside the singletons.
const (
	DocScores      = "scores"
	DocLeaderboard = "leaderboard"
	DocVotes       = "audience_votes"
)

type Team struct {
	ID            string `json:"id"`
	Seq           int    `json:"seq"`
	Category      string `json:"category,omitempty"`
	Name          string `json:"name" validate:"required"`
	Affiliation   string `json:"affiliation" validate:"required"`
	AffiliationEn string `json:"affiliation_en"`
	Presenter     string `json:"presenter" validate:"required"`
	TimeSlot      string `json:"timeSlot,omitempty"`
	Topic         string `json:"topic"`
}

type Judge struct {
	ID          string `json:"id"`
	Seq         int    `json:"seq"`
	Name        string `json:"name" validate:"required"`
	NameEn      string `json:"name_en"`
	Title       string `json:"title"`
	Affiliation string `json:"affiliation"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// TeamList is the body of the "teams" document.
type TeamList struct {
	List []Team `json:"list"`
}

// JudgeList is the body of the "judges" document.
type JudgeList struct {
	List []Judge `json:"list"`
}

// ScoreRecord is one judge's rubric submission for one team.
// Locked marks a sealed submission; an administrative unlock clears it.
type ScoreRecord struct {
	ID        string         `dynamodbav:"PK" json:"id"`
	TeamID    string         `dynamodbav:"TeamID" json:"teamId"`
	JudgeID   string         `dynamodbav:"JudgeID" json:"judgeId"`
	JudgeName string         `dynamodbav:"JudgeName" json:"judgeName"`
	Detail    map[string]int `dynamodbav:"Detail" json:"detail"`
	Total     int            `dynamodbav:"Total" json:"total"`
	Comment   string         `dynamodbav:"Comment" json:"comment"`
	Signature []byte         `dynamodbav:"Signature" json:"signature"`
	Timestamp time.Time      `dynamodbav:"Timestamp" json:"timestamp"`
	Locked    bool           `dynamodbav:"Locked" json:"locked"`
}

// ScoreID is the deterministic composite key of a score record.
func ScoreID(teamID, judgeID string) string {
	return fmt.Sprintf("%s_%s", teamID, judgeID)
}

// Clone returns a deep copy so callers never share the detail map or signature bytes.
func (r *ScoreRecord) Clone() *ScoreRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Detail != nil {
		c.Detail = make(map[string]int, len(r.Detail))
		for k, v := range r.Detail {
			c.Detail[k] = v
		}
	}
	if r.Signature != nil {
		c.Signature = append([]byte(nil), r.Signature...)
	}
	return &c
}

// VotingCode is a single-use audience voting code.
type VotingCode struct {
	Code      string    `dynamodbav:"PK" json:"code"`
	CreatedAt time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
	Used      bool      `dynamodbav:"Used" json:"used"`
}

type AudienceVote struct {
	Code      string    `dynamodbav:"PK" json:"code"` // Voting code
	SortKey   string    `dynamodbav:"SK" json:"-"`    // team#<teamId>
	TeamID    string    `dynamodbav:"TeamID" json:"teamId"`
	Rating    int       `dynamodbav:"Rating" json:"rating"`
	Timestamp time.Time `dynamodbav:"Timestamp" json:"timestamp"`
}

// AudienceVoteSortKey builds the range key of an audience vote.
func AudienceVoteSortKey(teamID string) string {
	return "team#" + teamID
}
