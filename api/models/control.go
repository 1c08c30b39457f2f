package models

type GlobalLockRequest struct {
	Locked *bool `json:"locked"`
}

type ActiveTeamRequest struct {
	TeamID string `json:"teamId"`
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}
