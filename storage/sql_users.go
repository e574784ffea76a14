package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/votaseguro/election-ledger/logging"
)

type SQLUserStorage struct {
	Store *SQLStore
}

const userColumns = `wallet_address, id, name, email, tokens_assigned, tokens_used, registered_at, active`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var registeredAt int64
	var active int
	if err := row.Scan(&u.WalletAddress, &u.ID, &u.Name, &u.Email, &u.TokensAssigned, &u.TokensUsed, &registeredAt, &active); err != nil {
		return nil, err
	}
	u.RegisteredAt = fromUnix(registeredAt)
	u.Active = active != 0
	return &u, nil
}

func (s *SQLUserStorage) Get(ctx context.Context, wallet string) (*User, error) {
	row := s.Store.queryRow(ctx, `SELECT `+userColumns+` FROM voter WHERE wallet_address = ?`, wallet)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Log.Errorf("USER: query for %s failed: %v", wallet, err)
		return nil, err
	}
	return u, nil
}

func (s *SQLUserStorage) GetAll(ctx context.Context) ([]*User, error) {
	rows, err := s.Store.query(ctx, `SELECT `+userColumns+` FROM voter ORDER BY registered_at, wallet_address`)
	if err != nil {
		logging.Log.Errorf("USER: list query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logging.Log.Errorf("USER: failed to scan row: %v", err)
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLUserStorage) Create(ctx context.Context, u *User) error {
	_, err := s.Store.exec(ctx,
		`INSERT INTO voter (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.WalletAddress, u.ID, u.Name, u.Email, u.TokensAssigned, u.TokensUsed, toUnix(u.RegisteredAt), boolToInt(u.Active))
	if err != nil {
		if isUniqueViolation(err) {
			logging.Log.Warnf("USER: wallet %s already registered", u.WalletAddress)
			return ErrAlreadyExists
		}
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

func (s *SQLUserStorage) Update(ctx context.Context, u *User) error {
	res, err := s.Store.exec(ctx,
		`UPDATE voter SET name = ?, email = ?, tokens_assigned = ?, active = ?
		 WHERE wallet_address = ? AND tokens_used <= ?`,
		u.Name, u.Email, u.TokensAssigned, boolToInt(u.Active), u.WalletAddress, u.TokensAssigned)
	if err != nil {
		logging.Log.Errorf("USER: failed to update user: %v", err)
		return err
	}
	if err := requireAffected(res); err != nil {
		if _, getErr := s.Get(ctx, u.WalletAddress); getErr != nil {
			return getErr
		}
		logging.Log.Warnf("USER: update of %s rejected, tokens below used", u.WalletAddress)
		return ErrTokensBelowUsed
	}
	return nil
}

func (s *SQLUserStorage) ConsumeToken(ctx context.Context, wallet string) error {
	res, err := s.Store.exec(ctx,
		`UPDATE voter SET tokens_used = tokens_used + 1 WHERE wallet_address = ? AND tokens_used < tokens_assigned`,
		wallet)
	if err != nil {
		logging.Log.Errorf("USER: failed to consume token for %s: %v", wallet, err)
		return err
	}
	if err := requireAffected(res); err != nil {
		if _, getErr := s.Get(ctx, wallet); getErr != nil {
			return getErr
		}
		logging.Log.Warnf("USER: %s has no tokens remaining", wallet)
		return ErrNoTokensRemaining
	}
	return nil
}

func (s *SQLUserStorage) RefundToken(ctx context.Context, wallet string) error {
	_, err := s.Store.exec(ctx,
		`UPDATE voter SET tokens_used = tokens_used - 1 WHERE wallet_address = ? AND tokens_used > 0`,
		wallet)
	if err != nil {
		logging.Log.Errorf("USER: failed to refund token for %s: %v", wallet, err)
		return err
	}
	return nil
}

func (s *SQLUserStorage) ResetTokens(ctx context.Context) error {
	if _, err := s.Store.exec(ctx, `UPDATE voter SET tokens_used = 0`); err != nil {
		logging.Log.Errorf("USER: failed to reset tokens: %v", err)
		return err
	}
	return nil
}
