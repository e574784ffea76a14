package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/votaseguro/election-ledger/logging"
	"github.com/votaseguro/election-ledger/storage"
)

const defaultCandidateImage = "/placeholder.svg?height=100&width=100"

type CandidateInput struct {
	Name     string
	Party    string
	Category string
	Image    string
}

func (l *Ledger) Candidate(ctx context.Context, id string) (*storage.Candidate, error) {
	return l.candidates.Get(ctx, id)
}

// AddCandidate creates a candidate with a fresh id and zero votes.
func (l *Ledger) AddCandidate(ctx context.Context, in CandidateInput) (*storage.Candidate, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Party) == "" {
		return nil, fmt.Errorf("%w: name and party", ErrMissingField)
	}
	if !ValidCategory(in.Category) {
		return nil, ErrInvalidCategory
	}
	id, err := NewCandidateID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidate id: %w", err)
	}
	image := in.Image
	if image == "" {
		image = defaultCandidateImage
	}

	candidate := &storage.Candidate{
		ID:       id,
		Name:     in.Name,
		Party:    in.Party,
		Category: in.Category,
		Image:    image,
	}
	if err := l.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}
	logging.Log.Infof("CANDIDATE: added %s (%s) to %s", candidate.ID, candidate.Name, candidate.Category)
	return candidate, nil
}

// UpdateCandidate changes the descriptive fields. The tally is never touched
// and empty fields keep their current value.
func (l *Ledger) UpdateCandidate(ctx context.Context, id string, in CandidateInput) (*storage.Candidate, error) {
	candidate, err := l.candidates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Category != "" {
		if !ValidCategory(in.Category) {
			return nil, ErrInvalidCategory
		}
		candidate.Category = in.Category
	}
	if in.Name != "" {
		candidate.Name = in.Name
	}
	if in.Party != "" {
		candidate.Party = in.Party
	}
	if in.Image != "" {
		candidate.Image = in.Image
	}
	if err := l.candidates.Update(ctx, candidate); err != nil {
		return nil, err
	}
	logging.Log.Infof("CANDIDATE: updated %s", candidate.ID)
	return candidate, nil
}

func (l *Ledger) DeleteCandidate(ctx context.Context, id string) error {
	if err := l.candidates.Delete(ctx, id); err != nil {
		return err
	}
	logging.Log.Infof("CANDIDATE: deleted %s", id)
	return nil
}
