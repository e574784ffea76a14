package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/logging"
	"github.com/votaseguro/election-ledger/storage"
)

// VoterProfile is the view of a registered user as seen by the voter.
type VoterProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	WalletAddress   string          `json:"walletAddress"`
	TokensRemaining int             `json:"tokensRemaining"`
	VotedCategories []string        `json:"votedCategories"`
	VoteHistory     []*storage.Vote `json:"voteHistory"`
}

func (l *Ledger) Profile(ctx context.Context, wallet string) (*VoterProfile, error) {
	user, err := l.userByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	history, err := l.History(ctx, user.WalletAddress)
	if err != nil {
		return nil, err
	}

	voted := make([]string, 0, len(history))
	for _, v := range history {
		voted = append(voted, v.Category)
	}
	sort.SliceStable(voted, func(i, j int) bool {
		return categoryRank(voted[i]) < categoryRank(voted[j])
	})

	remaining := user.TokensRemaining()
	if remaining < 0 {
		remaining = 0
	}

	return &VoterProfile{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		WalletAddress:   user.WalletAddress,
		TokensRemaining: remaining,
		VotedCategories: voted,
		VoteHistory:     history,
	}, nil
}

// UpdateProfile changes name and email only. Nil leaves a field unchanged.
func (l *Ledger) UpdateProfile(ctx context.Context, wallet string, name, email *string) (*VoterProfile, error) {
	user, err := l.userByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, ErrMissingField
		}
		user.Name = *name
	}
	if email != nil {
		if strings.TrimSpace(*email) == "" {
			return nil, ErrMissingField
		}
		user.Email = *email
	}
	if err := l.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return l.Profile(ctx, user.WalletAddress)
}

// History returns the votes of a wallet oldest first.
func (l *Ledger) History(ctx context.Context, wallet string) ([]*storage.Vote, error) {
	votes, err := l.votes.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].Timestamp.Before(votes[j].Timestamp)
	})
	if votes == nil {
		votes = []*storage.Vote{}
	}
	return votes, nil
}

// CastVote spends one token of the wallet on a candidate. The token and the
// (wallet, category) record are claimed with conditional writes so two
// concurrent requests cannot both succeed.
func (l *Ledger) CastVote(ctx context.Context, wallet, candidateID, category string) (*storage.Vote, error) {
	open, err := l.IsOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrElectionClosed
	}

	user, err := l.userByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	if !ValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	candidate, err := l.candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.Category != category {
		return nil, ErrCategoryMismatch
	}

	previous, err := l.votes.GetByWallet(ctx, user.WalletAddress)
	if err != nil {
		return nil, err
	}
	for _, v := range previous {
		if v.Category == category {
			return nil, storage.ErrAlreadyVoted
		}
	}
	if user.TokensRemaining() <= 0 {
		return nil, storage.ErrNoTokensRemaining
	}

	if err := l.users.ConsumeToken(ctx, user.WalletAddress); err != nil {
		return nil, err
	}

	vote := &storage.Vote{
		WalletAddress:  user.WalletAddress,
		Category:       category,
		CandidateID:    candidate.ID,
		CandidateName:  candidate.Name,
		CandidateParty: candidate.Party,
		Timestamp:      l.now().UTC(),
	}
	if err := l.votes.Create(ctx, vote); err != nil {
		if refundErr := l.users.RefundToken(ctx, user.WalletAddress); refundErr != nil {
			logging.Log.Errorf("VOTE: failed to refund token of %s: %v", user.WalletAddress, refundErr)
		}
		return nil, err
	}

	if err := l.candidates.IncrementVotes(ctx, candidate.ID); err != nil {
		logging.Log.Errorf("VOTE: failed to count vote for candidate %s: %v", candidate.ID, err)
		// Roll back the record and the token so the voter can retry
		if delErr := l.votes.Delete(ctx, vote.WalletAddress, vote.Category); delErr != nil {
			logging.Log.Errorf("VOTE: failed to remove uncounted vote %s/%s: %v", vote.WalletAddress, vote.Category, delErr)
		}
		if refundErr := l.users.RefundToken(ctx, user.WalletAddress); refundErr != nil {
			logging.Log.Errorf("VOTE: failed to refund token of %s: %v", user.WalletAddress, refundErr)
		}
		return nil, err
	}

	vote.TransactionHash, vote.OnChain = l.submit(ctx, candidate.ID)
	if err := l.votes.AttachTransaction(ctx, vote.WalletAddress, vote.Category, vote.TransactionHash, vote.OnChain); err != nil {
		logging.Log.Errorf("VOTE: failed to store transaction for %s/%s: %v", vote.WalletAddress, vote.Category, err)
	}

	logging.Log.Infof("VOTE: %s voted for %s in %s (tx %s, on-chain %t)",
		vote.WalletAddress, candidate.ID, category, vote.TransactionHash, vote.OnChain)
	return vote, nil
}

// submit sends the vote to the contract. Failures are logged and leave the
// vote recorded off-chain with a placeholder hash.
func (l *Ledger) submit(ctx context.Context, candidateID string) (string, bool) {
	receipt, err := l.chain.Vote(ctx, candidateID)
	if err != nil {
		logging.Log.Errorf("CHAIN: on-chain vote for candidate %s failed: %v", candidateID, err)
		// sent but unconfirmed keeps its real hash
		if receipt.TransactionHash != "" {
			return receipt.TransactionHash, false
		}
	} else if receipt.TransactionHash != "" {
		return receipt.TransactionHash, receipt.OnChain
	}

	hash, hashErr := chain.PlaceholderHash()
	if hashErr != nil {
		logging.Log.Errorf("VOTE: failed to create placeholder hash: %v", hashErr)
	}
	return hash, false
}
