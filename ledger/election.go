package ledger

import (
	"context"
	"time"

	"github.com/votaseguro/election-ledger/logging"
)

type ElectionStatus struct {
	Active   bool       `json:"active"`
	Open     bool       `json:"open"`
	ClosesAt *time.Time `json:"closesAt,omitempty"`
}

func (l *Ledger) ElectionStatus(ctx context.Context) (*ElectionStatus, error) {
	e, err := l.election.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &ElectionStatus{Active: e.Active, Open: e.IsOpen(l.now()), ClosesAt: e.ClosesAt}, nil
}

func (l *Ledger) IsOpen(ctx context.Context) (bool, error) {
	e, err := l.election.Get(ctx)
	if err != nil {
		return false, err
	}
	return e.IsOpen(l.now()), nil
}

// ToggleElection flips the active flag. Reopening an election whose
// scheduled close already passed drops that schedule.
func (l *Ledger) ToggleElection(ctx context.Context) (*ElectionStatus, error) {
	e, err := l.election.Get(ctx)
	if err != nil {
		return nil, err
	}
	e.Active = !e.Active
	if e.Active && e.ClosesAt != nil && !l.now().Before(*e.ClosesAt) {
		e.ClosesAt = nil
	}
	if err := l.election.Put(ctx, e); err != nil {
		return nil, err
	}
	logging.Log.Infof("ELECTION: active set to %t", e.Active)
	return l.ElectionStatus(ctx)
}

func (l *Ledger) ScheduleClose(ctx context.Context, closesAt time.Time) (*ElectionStatus, error) {
	if !closesAt.After(l.now()) {
		return nil, ErrCloseInPast
	}
	e, err := l.election.Get(ctx)
	if err != nil {
		return nil, err
	}
	t := closesAt.UTC()
	e.ClosesAt = &t
	if err := l.election.Put(ctx, e); err != nil {
		return nil, err
	}
	logging.Log.Infof("ELECTION: scheduled close at %s", t.Format(time.RFC3339))
	return l.ElectionStatus(ctx)
}

func (l *Ledger) CancelSchedule(ctx context.Context) (*ElectionStatus, error) {
	e, err := l.election.Get(ctx)
	if err != nil {
		return nil, err
	}
	e.ClosesAt = nil
	if err := l.election.Put(ctx, e); err != nil {
		return nil, err
	}
	logging.Log.Info("ELECTION: scheduled close cancelled")
	return l.ElectionStatus(ctx)
}

// Reset deletes every vote, zeroes the tallies and gives users their tokens back.
func (l *Ledger) Reset(ctx context.Context) error {
	if err := l.votes.DeleteAll(ctx); err != nil {
		return err
	}
	if err := l.candidates.ResetVotes(ctx); err != nil {
		return err
	}
	if err := l.users.ResetTokens(ctx); err != nil {
		return err
	}
	logging.Log.Warn("ELECTION: all votes were reset")
	return nil
}
