package models

import (
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

type TeamCreateRequest struct {
	Category      string `json:"category"`
	Name          string `json:"name"`
	Affiliation   string `json:"affiliation"`
	AffiliationEn string `json:"affiliation_en"`
	Presenter     string `json:"presenter"`
	TimeSlot      string `json:"timeSlot"`
	Topic         string `json:"topic"`
}

type TeamUpdateRequest = TeamCreateRequest

type JudgeCreateRequest struct {
	Name        string `json:"name"`
	NameEn      string `json:"name_en"`
	Title       string `json:"title"`
	Affiliation string `json:"affiliation"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type JudgeUpdateRequest = JudgeCreateRequest

// ReorderRequest lists every id of the roster in the new presentation order.
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type TeamListResponse struct {
	List []storage.Team `json:"list"`
}

type JudgeListResponse struct {
	List []storage.Judge `json:"list"`
}

func (r TeamCreateRequest) ToStorage(id string) storage.Team {
	return storage.Team{
		ID:            id,
		Category:      r.Category,
		Name:          r.Name,
		Affiliation:   r.Affiliation,
		AffiliationEn: r.AffiliationEn,
		Presenter:     r.Presenter,
		TimeSlot:      r.TimeSlot,
		Topic:         r.Topic,
	}
}

func (r JudgeCreateRequest) ToStorage(id string) storage.Judge {
	return storage.Judge{
		ID:          id,
		Name:        r.Name,
		NameEn:      r.NameEn,
		Title:       r.Title,
		Affiliation: r.Affiliation,
		Phone:       r.Phone,
		Email:       r.Email,
	}
}
