package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/votaseguro/election-ledger/logging"
)

type SQLCandidateStorage struct {
	Store *SQLStore
}

const candidateColumns = `id, name, party, category, votes, image`

func scanCandidate(row interface{ Scan(...any) error }) (*Candidate, error) {
	var c Candidate
	if err := row.Scan(&c.ID, &c.Name, &c.Party, &c.Category, &c.Votes, &c.Image); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLCandidateStorage) Get(ctx context.Context, id string) (*Candidate, error) {
	row := s.Store.queryRow(ctx, `SELECT `+candidateColumns+` FROM candidate WHERE id = ?`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Log.Errorf("CANDIDATE: query for ID %s failed: %v", id, err)
		return nil, err
	}
	return c, nil
}

func (s *SQLCandidateStorage) GetAll(ctx context.Context) ([]*Candidate, error) {
	rows, err := s.Store.query(ctx, `SELECT `+candidateColumns+` FROM candidate ORDER BY id`)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: list query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var candidates []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			logging.Log.Errorf("CANDIDATE: failed to scan row: %v", err)
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (s *SQLCandidateStorage) Create(ctx context.Context, c *Candidate) error {
	_, err := s.Store.exec(ctx,
		`INSERT INTO candidate (`+candidateColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Party, c.Category, c.Votes, c.Image)
	if err != nil {
		if isUniqueViolation(err) {
			logging.Log.Warnf("CANDIDATE: item with ID %s already exists", c.ID)
			return ErrAlreadyExists
		}
		logging.Log.Errorf("CANDIDATE: failed to create candidate: %v", err)
		return err
	}
	return nil
}

func (s *SQLCandidateStorage) Update(ctx context.Context, c *Candidate) error {
	res, err := s.Store.exec(ctx,
		`UPDATE candidate SET name = ?, party = ?, category = ?, image = ? WHERE id = ?`,
		c.Name, c.Party, c.Category, c.Image, c.ID)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to update candidate: %v", err)
		return err
	}
	return requireAffected(res)
}

func (s *SQLCandidateStorage) Delete(ctx context.Context, id string) error {
	res, err := s.Store.exec(ctx, `DELETE FROM candidate WHERE id = ?`, id)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to delete candidate with ID %s: %v", id, err)
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	logging.Log.Infof("CANDIDATE: deleted candidate with ID %s", id)
	return nil
}

func (s *SQLCandidateStorage) IncrementVotes(ctx context.Context, id string) error {
	res, err := s.Store.exec(ctx, `UPDATE candidate SET votes = votes + 1 WHERE id = ?`, id)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to increment votes for %s: %v", id, err)
		return err
	}
	return requireAffected(res)
}

func (s *SQLCandidateStorage) ResetVotes(ctx context.Context) error {
	if _, err := s.Store.exec(ctx, `UPDATE candidate SET votes = 0`); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to reset votes: %v", err)
		return err
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
