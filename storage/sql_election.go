package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/votaseguro/election-ledger/logging"
)

type SQLElectionStorage struct {
	Store *SQLStore
}

func (s *SQLElectionStorage) Get(ctx context.Context) (*Election, error) {
	var active int
	var closesAt sql.NullInt64
	err := s.Store.queryRow(ctx, `SELECT active, closes_at FROM election WHERE id = ?`, ElectionKey).Scan(&active, &closesAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &Election{ID: ElectionKey, Active: true}, nil
	}
	if err != nil {
		logging.Log.Errorf("ELECTION: query failed: %v", err)
		return nil, err
	}

	election := &Election{ID: ElectionKey, Active: active != 0}
	if closesAt.Valid {
		t := fromUnix(closesAt.Int64)
		election.ClosesAt = &t
	}
	return election, nil
}

func (s *SQLElectionStorage) Put(ctx context.Context, election *Election) error {
	election.ID = ElectionKey
	var closesAt sql.NullInt64
	if election.ClosesAt != nil {
		closesAt = sql.NullInt64{Int64: toUnix(*election.ClosesAt), Valid: true}
	}

	_, err := s.Store.exec(ctx,
		`INSERT INTO election (id, active, closes_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET active = excluded.active, closes_at = excluded.closes_at`,
		ElectionKey, boolToInt(election.Active), closesAt)
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to store state: %v", err)
		return err
	}
	return nil
}
