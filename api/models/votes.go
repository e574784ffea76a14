package models

import (
	"time"

	"github.com/votaseguro/election-ledger/storage"
)

type CastVoteRequest struct {
	CandidateID string `json:"candidateId"`
	Category    string `json:"category"`
}

type VoteResponse struct {
	CandidateID     string    `json:"candidateId"`
	CandidateName   string    `json:"candidateName"`
	CandidateParty  string    `json:"candidateParty"`
	Category        string    `json:"category"`
	Timestamp       time.Time `json:"timestamp"`
	TransactionHash string    `json:"transactionHash"`
	OnChain         bool      `json:"onChain"`
}

type ScheduleRequest struct {
	ClosesAt time.Time `json:"closesAt"`
}

func TransformVoteFromStorage(v *storage.Vote) VoteResponse {
	return VoteResponse{
		CandidateID:     v.CandidateID,
		CandidateName:   v.CandidateName,
		CandidateParty:  v.CandidateParty,
		Category:        v.Category,
		Timestamp:       v.Timestamp,
		TransactionHash: v.TransactionHash,
		OnChain:         v.OnChain,
	}
}
