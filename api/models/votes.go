package models

type VoteEntry struct {
	TeamID string `json:"teamId"`
	Rating int    `json:"rating"`
}

type RegisterVoteRequest struct {
	Code  string      `json:"code"`
	Votes []VoteEntry `json:"votes"`
}

type RegisterVoteResponse struct {
	Message string `json:"message"`
}

type GetVoteEntry struct {
	VoteEntry
	Team string `json:"team"`
}

type GetVoteResponse struct {
	Code  string         `json:"code"`
	Votes []GetVoteEntry `json:"votes"`
}
