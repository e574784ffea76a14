package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
)

//go:generate mockgen -destination=mocks/mock_chain.go -package=mocks github.com/votaseguro/election-ledger/chain Client

var ErrChainDisabled = errors.New("on-chain voting is not enabled")
var ErrTransactionFailed = errors.New("transaction reverted")

// Receipt describes a submitted vote. OnChain is false for placeholder
// hashes that were never broadcast.
type Receipt struct {
	TransactionHash string
	OnChain         bool
}

// Client is the contract surface used by the ledger.
type Client interface {
	Vote(ctx context.Context, candidate string) (Receipt, error)
	GetVotes(ctx context.Context, candidate string) (*big.Int, error)
	Enabled() bool
}

// Simulated stands in for the contract when no chain is configured.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Vote(_ context.Context, _ string) (Receipt, error) {
	hash, err := PlaceholderHash()
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{TransactionHash: hash, OnChain: false}, nil
}

func (s *Simulated) GetVotes(_ context.Context, _ string) (*big.Int, error) {
	return nil, ErrChainDisabled
}

func (s *Simulated) Enabled() bool {
	return false
}

// PlaceholderHash returns a random 0x-prefixed 32 byte hex string.
func PlaceholderHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}
