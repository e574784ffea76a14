package models

import "github.com/votaseguro/election-ledger/storage"

type CandidateCreateRequest struct {
	Name     string `json:"name"`
	Party    string `json:"party"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

type CandidateUpdateRequest struct {
	Name     string `json:"name"`
	Party    string `json:"party"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

type CandidateResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Party    string `json:"party"`
	Category string `json:"category"`
	Votes    int64  `json:"votes"`
	Image    string `json:"image"`
}

func TransformCandidateFromStorage(c *storage.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:       c.ID,
		Name:     c.Name,
		Party:    c.Party,
		Category: c.Category,
		Votes:    c.Votes,
		Image:    c.Image,
	}
}
