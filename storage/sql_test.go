package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votaseguro/election-ledger/logging"
)

func setupSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	logging.Log = logrus.New()

	store, err := OpenSQL(context.Background(), DriverSqlite, ":memory:")
	require.NoError(t, err, "Should open in-memory sqlite")
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func newTestUser(wallet string, tokens int) *User {
	return &User{
		WalletAddress:  wallet,
		ID:             "id-" + wallet,
		Name:           "Usuario Demo",
		Email:          "demo@example.com",
		TokensAssigned: tokens,
		RegisteredAt:   time.Now().UTC(),
		Active:         true,
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{Driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM vote WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM vote WHERE a = ? AND b = ?"))

	lite := &SQLStore{Driver: DriverSqlite}
	assert.Equal(t, "SELECT ? FROM x", lite.rebind("SELECT ? FROM x"))
}

func TestIsUniqueViolation(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	t.Run("Happy path - sqlite primary key violation", func(t *testing.T) {
		insert := `INSERT INTO candidate (id, name, party, category, image, votes) VALUES (?, ?, ?, ?, ?, 0)`
		_, err := store.exec(ctx, insert, "1", "Ana", "PD", "presidencial", "")
		require.NoError(t, err)
		_, err = store.exec(ctx, insert, "1", "Ana", "PD", "presidencial", "")
		require.Error(t, err)
		assert.True(t, isUniqueViolation(err))
		assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", err)))
	})

	t.Run("Happy path - postgres unique violation", func(t *testing.T) {
		assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	})

	t.Run("Unhappy path - other driver errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
		assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed: candidate.id")))
	})
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	logging.Log = logrus.New()
	_, err := OpenSQL(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}

func TestSQLCandidateStorage(t *testing.T) {
	store := setupSQLStore(t)
	s := &SQLCandidateStorage{Store: store}
	ctx := context.Background()

	t.Run("Happy path - create, get, update and list", func(t *testing.T) {
		c := &Candidate{ID: "1", Name: "Ana García", Party: "Partido Democrático", Category: "presidencial"}
		require.NoError(t, s.Create(ctx, c))

		got, err := s.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Ana García", got.Name)
		assert.Equal(t, int64(0), got.Votes)

		c.Party = "Partido Liberal"
		require.NoError(t, s.Update(ctx, c))
		got, err = s.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Partido Liberal", got.Party)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Unhappy path - duplicate id", func(t *testing.T) {
		err := s.Create(ctx, &Candidate{ID: "1", Name: "Otro", Party: "X", Category: "senatorial"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("Happy path - increment and reset votes", func(t *testing.T) {
		require.NoError(t, s.IncrementVotes(ctx, "1"))
		require.NoError(t, s.IncrementVotes(ctx, "1"))
		got, err := s.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Votes)

		// update keeps the tally
		got.Name = "Ana G."
		require.NoError(t, s.Update(ctx, got))
		got, err = s.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Votes)

		require.NoError(t, s.ResetVotes(ctx))
		got, err = s.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.Votes)
	})

	t.Run("Unhappy path - missing candidate", func(t *testing.T) {
		_, err := s.Get(ctx, "404")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.IncrementVotes(ctx, "404"), ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, &Candidate{ID: "404"}), ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "404"), ErrNotFound)
	})

	t.Run("Happy path - delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "1"))
		_, err := s.Get(ctx, "1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLUserStorage(t *testing.T) {
	store := setupSQLStore(t)
	s := &SQLUserStorage{Store: store}
	ctx := context.Background()
	wallet := "0x742d35Cc6634C0532925a3b8D4C0532925a3b8D4"

	t.Run("Happy path - register and get", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, newTestUser(wallet, 2)))

		got, err := s.Get(ctx, wallet)
		require.NoError(t, err)
		assert.Equal(t, 2, got.TokensAssigned)
		assert.Equal(t, 0, got.TokensUsed)
		assert.True(t, got.Active)
		assert.False(t, got.RegisteredAt.IsZero())
	})

	t.Run("Unhappy path - wallet already registered", func(t *testing.T) {
		u := newTestUser(wallet, 1)
		u.ID = "another-id"
		assert.ErrorIs(t, s.Create(ctx, u), ErrAlreadyExists)
	})

	t.Run("Happy path - tokens are consumed until exhausted", func(t *testing.T) {
		require.NoError(t, s.ConsumeToken(ctx, wallet))
		require.NoError(t, s.ConsumeToken(ctx, wallet))
		assert.ErrorIs(t, s.ConsumeToken(ctx, wallet), ErrNoTokensRemaining)

		got, err := s.Get(ctx, wallet)
		require.NoError(t, err)
		assert.Equal(t, 0, got.TokensRemaining())
	})

	t.Run("Unhappy path - assigned below used", func(t *testing.T) {
		got, err := s.Get(ctx, wallet)
		require.NoError(t, err)
		got.TokensAssigned = 1
		assert.ErrorIs(t, s.Update(ctx, got), ErrTokensBelowUsed)
	})

	t.Run("Happy path - refund and reset", func(t *testing.T) {
		require.NoError(t, s.RefundToken(ctx, wallet))
		got, err := s.Get(ctx, wallet)
		require.NoError(t, err)
		assert.Equal(t, 1, got.TokensUsed)

		require.NoError(t, s.ResetTokens(ctx))
		got, err = s.Get(ctx, wallet)
		require.NoError(t, err)
		assert.Equal(t, 0, got.TokensUsed)

		// refund never goes below zero
		require.NoError(t, s.RefundToken(ctx, wallet))
		got, err = s.Get(ctx, wallet)
		require.NoError(t, err)
		assert.Equal(t, 0, got.TokensUsed)
	})

	t.Run("Unhappy path - unknown wallet", func(t *testing.T) {
		assert.ErrorIs(t, s.ConsumeToken(ctx, "0x0000000000000000000000000000000000000001"), ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, newTestUser("0x0000000000000000000000000000000000000001", 1)), ErrNotFound)
	})
}

func TestSQLUserStorageConcurrentConsume(t *testing.T) {
	store := setupSQLStore(t)
	s := &SQLUserStorage{Store: store}
	ctx := context.Background()
	wallet := "0x1111111111111111111111111111111111111111"
	require.NoError(t, s.Create(ctx, newTestUser(wallet, 3)))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ConsumeToken(ctx, wallet); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded, "Only assigned tokens can be consumed")
	got, err := s.Get(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TokensUsed)
}

func TestSQLVoteStorage(t *testing.T) {
	store := setupSQLStore(t)
	s := &SQLVoteStorage{Store: store}
	ctx := context.Background()
	wallet := "0x742d35Cc6634C0532925a3b8D4C0532925a3b8D4"

	newVote := func(category, candidate string) *Vote {
		return &Vote{
			WalletAddress: wallet,
			Category:      category,
			CandidateID:   candidate,
			CandidateName: "Candidate " + candidate,
			Timestamp:     time.Now().UTC(),
		}
	}

	t.Run("Happy path - one vote per category", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, newVote("presidencial", "1")))
		require.NoError(t, s.Create(ctx, newVote("senatorial", "4")))

		votes, err := s.GetByWallet(ctx, wallet)
		require.NoError(t, err)
		assert.Len(t, votes, 2)
	})

	t.Run("Unhappy path - second vote in the same category", func(t *testing.T) {
		assert.ErrorIs(t, s.Create(ctx, newVote("presidencial", "2")), ErrAlreadyVoted)
	})

	t.Run("Happy path - attach transaction", func(t *testing.T) {
		hash := fmt.Sprintf("0x%064x", 42)
		require.NoError(t, s.AttachTransaction(ctx, wallet, "presidencial", hash, true))

		votes, err := s.GetByWallet(ctx, wallet)
		require.NoError(t, err)
		var found *Vote
		for _, v := range votes {
			if v.Category == "presidencial" {
				found = v
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, hash, found.TransactionHash)
		assert.True(t, found.OnChain)
	})

	t.Run("Unhappy path - attach to a missing vote", func(t *testing.T) {
		assert.ErrorIs(t, s.AttachTransaction(ctx, wallet, "diputados", "0x", false), ErrNotFound)
	})

	t.Run("Happy path - delete a single vote frees the category", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, wallet, "senatorial"))

		votes, err := s.GetByWallet(ctx, wallet)
		require.NoError(t, err)
		assert.Len(t, votes, 1)

		require.NoError(t, s.Create(ctx, newVote("senatorial", "5")))
	})

	t.Run("Unhappy path - delete a missing vote", func(t *testing.T) {
		assert.ErrorIs(t, s.Delete(ctx, wallet, "diputados"), ErrNotFound)
	})

	t.Run("Happy path - delete all", func(t *testing.T) {
		require.NoError(t, s.DeleteAll(ctx))
		votes, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, votes)
	})
}

func TestSQLElectionStorage(t *testing.T) {
	store := setupSQLStore(t)
	s := &SQLElectionStorage{Store: store}
	ctx := context.Background()

	t.Run("Happy path - default is an open election", func(t *testing.T) {
		e, err := s.Get(ctx)
		require.NoError(t, err)
		assert.True(t, e.Active)
		assert.Nil(t, e.ClosesAt)
		assert.True(t, e.IsOpen(time.Now()))
	})

	t.Run("Happy path - store closing time and flag", func(t *testing.T) {
		closes := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		require.NoError(t, s.Put(ctx, &Election{Active: true, ClosesAt: &closes}))

		e, err := s.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, e.ClosesAt)
		assert.True(t, closes.Equal(*e.ClosesAt))
		assert.True(t, e.IsOpen(time.Now()))
		assert.False(t, e.IsOpen(closes.Add(time.Second)))

		require.NoError(t, s.Put(ctx, &Election{Active: false}))
		e, err = s.Get(ctx)
		require.NoError(t, err)
		assert.False(t, e.Active)
		assert.Nil(t, e.ClosesAt)
	})
}
