package storage

import "time"

type Candidate struct {
	ID       string `dynamodbav:"PK" json:"id"`
	Name     string `dynamodbav:"Name" json:"name"`
	Party    string `dynamodbav:"Party" json:"party"`
	Category string `dynamodbav:"Category" json:"category"`
	Votes    int64  `dynamodbav:"Votes" json:"votes"`
	Image    string `dynamodbav:"Image" json:"image"`
}

// User is keyed by its checksummed wallet address.
type User struct {
	WalletAddress  string    `dynamodbav:"PK" json:"walletAddress"`
	ID             string    `dynamodbav:"ID" json:"id"`
	Name           string    `dynamodbav:"Name" json:"name"`
	Email          string    `dynamodbav:"Email" json:"email"`
	TokensAssigned int       `dynamodbav:"TokensAssigned" json:"tokensAssigned"`
	TokensUsed     int       `dynamodbav:"TokensUsed" json:"tokensUsed"`
	RegisteredAt   time.Time `dynamodbav:"RegisteredAt" json:"registeredAt"`
	Active         bool      `dynamodbav:"Active" json:"active"`
}

func (u *User) TokensRemaining() int {
	return u.TokensAssigned - u.TokensUsed
}

// Vote is keyed by wallet and category, one record per race.
type Vote struct {
	WalletAddress   string    `dynamodbav:"PK" json:"walletAddress"`
	Category        string    `dynamodbav:"SK" json:"category"`
	CandidateID     string    `dynamodbav:"CandidateID" json:"candidateId"`
	CandidateName   string    `dynamodbav:"CandidateName" json:"candidateName"`
	CandidateParty  string    `dynamodbav:"CandidateParty" json:"candidateParty"`
	Timestamp       time.Time `dynamodbav:"Timestamp" json:"timestamp"`
	TransactionHash string    `dynamodbav:"TransactionHash" json:"transactionHash"`
	OnChain         bool      `dynamodbav:"OnChain" json:"onChain"`
}

type Election struct {
	ID       string     `dynamodbav:"PK" json:"-"`
	Active   bool       `dynamodbav:"Active" json:"active"`
	ClosesAt *time.Time `dynamodbav:"ClosesAt,omitempty" json:"closesAt,omitempty"`
}

// ElectionKey is the single row holding the election state.
const ElectionKey = "current"

// IsOpen reports whether votes may be cast at the given instant.
func (e *Election) IsOpen(now time.Time) bool {
	if !e.Active {
		return false
	}
	return e.ClosesAt == nil || now.Before(*e.ClosesAt)
}
