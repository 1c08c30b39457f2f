package models

import "time"

type AdminLoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type JudgeLoginRequest struct {
	JudgeID string `json:"judgeId"`
	Code    string `json:"code"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}
