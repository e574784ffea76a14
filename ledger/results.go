package ledger

import (
	"context"
	"sort"

	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/storage"
)

type CandidateResult struct {
	*storage.Candidate
	Percentage float64 `json:"percentage"`
}

type CategoryResults struct {
	Category   string             `json:"category"`
	TotalVotes int64              `json:"totalVotes"`
	Candidates []*CandidateResult `json:"candidates"`
}

type Leaderboard struct {
	TotalVotes int64              `json:"totalVotes"`
	Categories []*CategoryResults `json:"categories"`
}

type CategoryStats struct {
	Category   string `json:"category"`
	TotalVotes int64  `json:"totalVotes"`
	Leader     string `json:"leader"`
	Candidates int    `json:"candidates"`
}

type Stats struct {
	TotalVotes      int64            `json:"totalVotes"`
	Candidates      int              `json:"candidates"`
	Categories      int              `json:"categories"`
	RegisteredUsers int              `json:"registeredUsers"`
	ActiveUsers     int              `json:"activeUsers"`
	ByCategory      []*CategoryStats `json:"byCategory"`
}

type ReconcileEntry struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	OffChain    int64  `json:"offChain"`
	OnChain     string `json:"onChain"`
	Match       bool   `json:"match"`
}

type Reconciliation struct {
	Consistent bool              `json:"consistent"`
	Entries    []*ReconcileEntry `json:"entries"`
}

func (l *Ledger) Candidates(ctx context.Context, category string) ([]*storage.Candidate, error) {
	all, err := l.candidates.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*storage.Candidate, 0, len(all))
	for _, c := range all {
		if category == "" || c.Category == category {
			filtered = append(filtered, c)
		}
	}
	SortCandidates(filtered)
	return filtered, nil
}

func (l *Ledger) Leaderboard(ctx context.Context) (*Leaderboard, error) {
	all, err := l.candidates.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{Categories: make([]*CategoryResults, 0, len(Categories))}
	for _, category := range Categories {
		results := &CategoryResults{Category: string(category), Candidates: []*CandidateResult{}}
		for _, c := range all {
			if c.Category == string(category) {
				results.TotalVotes += c.Votes
				results.Candidates = append(results.Candidates, &CandidateResult{Candidate: c})
			}
		}
		for _, r := range results.Candidates {
			if results.TotalVotes > 0 {
				r.Percentage = float64(r.Votes) / float64(results.TotalVotes) * 100
			}
		}
		sort.SliceStable(results.Candidates, func(i, j int) bool {
			a, b := results.Candidates[i], results.Candidates[j]
			if a.Votes != b.Votes {
				return a.Votes > b.Votes
			}
			return a.ID < b.ID
		})

		board.TotalVotes += results.TotalVotes
		board.Categories = append(board.Categories, results)
	}
	return board, nil
}

func (l *Ledger) Stats(ctx context.Context) (*Stats, error) {
	board, err := l.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	users, err := l.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalVotes:      board.TotalVotes,
		Categories:      len(Categories),
		RegisteredUsers: len(users),
		ByCategory:      make([]*CategoryStats, 0, len(board.Categories)),
	}
	for _, u := range users {
		if u.Active {
			stats.ActiveUsers++
		}
	}
	for _, results := range board.Categories {
		entry := &CategoryStats{
			Category:   results.Category,
			TotalVotes: results.TotalVotes,
			Candidates: len(results.Candidates),
		}
		if len(results.Candidates) > 0 {
			entry.Leader = results.Candidates[0].Name
		}
		stats.Candidates += entry.Candidates
		stats.ByCategory = append(stats.ByCategory, entry)
	}
	return stats, nil
}

// Reconcile compares every candidate's tally with the contract's count.
func (l *Ledger) Reconcile(ctx context.Context) (*Reconciliation, error) {
	if !l.chain.Enabled() {
		return nil, chain.ErrChainDisabled
	}
	candidates, err := l.Candidates(ctx, "")
	if err != nil {
		return nil, err
	}

	result := &Reconciliation{Consistent: true, Entries: make([]*ReconcileEntry, 0, len(candidates))}
	for _, c := range candidates {
		onChain, err := l.chain.GetVotes(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		entry := &ReconcileEntry{
			CandidateID: c.ID,
			Name:        c.Name,
			Category:    c.Category,
			OffChain:    c.Votes,
			OnChain:     onChain.String(),
			Match:       onChain.IsInt64() && onChain.Int64() == c.Votes,
		}
		if !entry.Match {
			result.Consistent = false
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}
