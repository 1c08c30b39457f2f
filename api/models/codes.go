package models

import (
	"time"

	"github.com/kripanshu-singh/congkong-livescore/storage"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateCodeRequest struct {
	Count int `json:"count"`
}

type CodeValidationResponse struct {
	Valid     bool      `json:"valid"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Code      string    `json:"code,omitempty"`
}

func TransformVotingCodeToValidationResponse(vc *storage.VotingCode) CodeValidationResponse {
	return CodeValidationResponse{
		Valid:     !vc.Used,
		Used:      vc.Used,
		CreatedAt: vc.CreatedAt,
		Code:      vc.Code,
	}
}

type ResetCodesResponse struct {
	Message string `json:"message"`
	Reset   int    `json:"reset"`
}
