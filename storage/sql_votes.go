package storage

import (
	"context"

	"github.com/votaseguro/election-ledger/logging"
)

type SQLVoteStorage struct {
	Store *SQLStore
}

const voteColumns = `wallet_address, category, candidate_id, candidate_name, candidate_party, cast_at, transaction_hash, on_chain`

func (s *SQLVoteStorage) list(ctx context.Context, query string, args ...any) ([]*Vote, error) {
	rows, err := s.Store.query(ctx, query, args...)
	if err != nil {
		logging.Log.Errorf("VOTE: query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var votes []*Vote
	for rows.Next() {
		var v Vote
		var castAt int64
		var onChain int
		if err := rows.Scan(&v.WalletAddress, &v.Category, &v.CandidateID, &v.CandidateName, &v.CandidateParty, &castAt, &v.TransactionHash, &onChain); err != nil {
			logging.Log.Errorf("VOTE: failed to scan row: %v", err)
			return nil, err
		}
		v.Timestamp = fromUnix(castAt)
		v.OnChain = onChain != 0
		votes = append(votes, &v)
	}
	return votes, rows.Err()
}

func (s *SQLVoteStorage) GetAll(ctx context.Context) ([]*Vote, error) {
	return s.list(ctx, `SELECT `+voteColumns+` FROM vote ORDER BY cast_at`)
}

func (s *SQLVoteStorage) GetByWallet(ctx context.Context, wallet string) ([]*Vote, error) {
	return s.list(ctx, `SELECT `+voteColumns+` FROM vote WHERE wallet_address = ? ORDER BY cast_at`, wallet)
}

func (s *SQLVoteStorage) Create(ctx context.Context, v *Vote) error {
	_, err := s.Store.exec(ctx,
		`INSERT INTO vote (`+voteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.WalletAddress, v.Category, v.CandidateID, v.CandidateName, v.CandidateParty, toUnix(v.Timestamp), v.TransactionHash, boolToInt(v.OnChain))
	if err != nil {
		if isUniqueViolation(err) {
			logging.Log.Warnf("VOTE: %s already voted in %s", v.WalletAddress, v.Category)
			return ErrAlreadyVoted
		}
		logging.Log.Errorf("VOTE: failed to create vote: %v", err)
		return err
	}
	return nil
}

func (s *SQLVoteStorage) AttachTransaction(ctx context.Context, wallet, category, txHash string, onChain bool) error {
	res, err := s.Store.exec(ctx,
		`UPDATE vote SET transaction_hash = ?, on_chain = ? WHERE wallet_address = ? AND category = ?`,
		txHash, boolToInt(onChain), wallet, category)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to attach transaction for %s/%s: %v", wallet, category, err)
		return err
	}
	return requireAffected(res)
}

func (s *SQLVoteStorage) Delete(ctx context.Context, wallet, category string) error {
	res, err := s.Store.exec(ctx, `DELETE FROM vote WHERE wallet_address = ? AND category = ?`, wallet, category)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to delete vote %s/%s: %v", wallet, category, err)
		return err
	}
	return requireAffected(res)
}

func (s *SQLVoteStorage) DeleteAll(ctx context.Context) error {
	res, err := s.Store.exec(ctx, `DELETE FROM vote`)
	if err != nil {
		logging.Log.Errorf("VOTE: delete failed: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil {
		logging.Log.Infof("VOTE: deleted %d items", n)
	}
	return nil
}
