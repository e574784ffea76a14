// Package ledger holds the election rules: who may vote, in which race and how
// often, and how the off-chain tally relates to the Voting contract.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/votaseguro/election-ledger/chain"
	"github.com/votaseguro/election-ledger/logging"
	"github.com/votaseguro/election-ledger/storage"
)

type Category string

const (
	CategoryPresidential Category = "presidencial"
	CategorySenatorial   Category = "senatorial"
	CategoryDeputies     Category = "diputados"
)

// Categories lists the races in display order.
var Categories = []Category{CategoryPresidential, CategorySenatorial, CategoryDeputies}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if string(known) == c {
			return true
		}
	}
	return false
}

func categoryRank(c string) int {
	for i, known := range Categories {
		if string(known) == c {
			return i
		}
	}
	return len(Categories)
}

var (
	ErrElectionClosed   = errors.New("the election is not active")
	ErrNotRegistered    = errors.New("wallet is not registered")
	ErrUserInactive     = errors.New("user is not active")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrCategoryMismatch = errors.New("candidate does not run in this category")
	ErrInvalidWallet    = errors.New("invalid wallet address")
	ErrNegativeTokens   = errors.New("tokens cannot be negative")
	ErrCloseInPast      = errors.New("the closing time must be in the future")
	ErrMissingField     = errors.New("missing required field")
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

type Config struct {
	DefaultTokens  int
	AutoRegister   bool
	SeedCandidates bool
}

type Ledger struct {
	candidates storage.CandidateStorage
	users      storage.UserStorage
	votes      storage.VoteStorage
	election   storage.ElectionStorage
	chain      chain.Client
	cfg        Config
	now        func() time.Time
}

func New(candidates storage.CandidateStorage, users storage.UserStorage, votes storage.VoteStorage,
	election storage.ElectionStorage, chainClient chain.Client, cfg Config) *Ledger {
	return &Ledger{
		candidates: candidates,
		users:      users,
		votes:      votes,
		election:   election,
		chain:      chainClient,
		cfg:        cfg,
		now:        time.Now,
	}
}

// NormalizeWallet validates a hex address and returns its checksummed form.
func NormalizeWallet(wallet string) (string, error) {
	wallet = strings.TrimSpace(wallet)
	if !common.IsHexAddress(wallet) {
		return "", ErrInvalidWallet
	}
	return common.HexToAddress(wallet).Hex(), nil
}

func NewCandidateID() (string, error) {
	return gonanoid.Generate(idAlphabet, 10)
}

type VoterLogin struct {
	Name          string
	Email         string
	WalletAddress string
}

// Login returns the registered user behind a wallet, registering it with the
// default allowance when auto registration is on.
func (l *Ledger) Login(ctx context.Context, req VoterLogin) (*storage.User, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: name and email", ErrMissingField)
	}
	wallet, err := NormalizeWallet(req.WalletAddress)
	if err != nil {
		return nil, err
	}

	user, err := l.users.Get(ctx, wallet)
	if errors.Is(err, storage.ErrNotFound) {
		if !l.cfg.AutoRegister {
			return nil, ErrNotRegistered
		}
		user, err = l.RegisterUser(ctx, req.Name, req.Email, wallet, l.cfg.DefaultTokens)
		if errors.Is(err, storage.ErrAlreadyExists) {
			// registered concurrently, read it back
			user, err = l.users.Get(ctx, wallet)
		}
		if err != nil {
			return nil, err
		}
		logging.Log.Infof("AUTH: auto registered wallet %s", wallet)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	if user.Name != req.Name || user.Email != req.Email {
		user.Name = req.Name
		user.Email = req.Email
		if err := l.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (l *Ledger) RegisterUser(ctx context.Context, name, email, wallet string, tokens int) (*storage.User, error) {
	if tokens < 0 {
		return nil, ErrNegativeTokens
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	wallet, err := NormalizeWallet(wallet)
	if err != nil {
		return nil, err
	}

	user := &storage.User{
		WalletAddress:  wallet,
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		TokensAssigned: tokens,
		RegisteredAt:   l.now().UTC(),
		Active:         true,
	}
	if err := l.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logging.Log.Infof("USER: registered %s with %d tokens", wallet, tokens)
	return user, nil
}

func (l *Ledger) AssignTokens(ctx context.Context, wallet string, tokens int) (*storage.User, error) {
	if tokens < 0 {
		return nil, ErrNegativeTokens
	}
	user, err := l.userByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if tokens < user.TokensUsed {
		return nil, storage.ErrTokensBelowUsed
	}

	user.TokensAssigned = tokens
	if err := l.users.Update(ctx, user); err != nil {
		return nil, err
	}
	logging.Log.Infof("USER: assigned %d tokens to %s", tokens, user.WalletAddress)
	return user, nil
}

func (l *Ledger) SetUserActive(ctx context.Context, wallet string, active bool) (*storage.User, error) {
	user, err := l.userByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	user.Active = active
	if err := l.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Users returns registered users oldest first.
func (l *Ledger) Users(ctx context.Context) ([]*storage.User, error) {
	users, err := l.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].RegisteredAt.Equal(users[j].RegisteredAt) {
			return users[i].WalletAddress < users[j].WalletAddress
		}
		return users[i].RegisteredAt.Before(users[j].RegisteredAt)
	})
	return users, nil
}

func (l *Ledger) userByWallet(ctx context.Context, wallet string) (*storage.User, error) {
	normalized, err := NormalizeWallet(wallet)
	if err != nil {
		return nil, err
	}
	return l.users.Get(ctx, normalized)
}

// SortCandidates orders by category rank then id, which is what every
// listing shows.
func SortCandidates(candidates []*storage.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := categoryRank(candidates[i].Category), categoryRank(candidates[j].Category)
		if ri != rj {
			return ri < rj
		}
		return candidates[i].ID < candidates[j].ID
	})
}

// Seed inserts the demo candidates when seeding is enabled and none exist.
func (l *Ledger) Seed(ctx context.Context) error {
	if !l.cfg.SeedCandidates {
		return nil
	}
	existing, err := l.candidates.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range demoCandidates() {
		if err := l.candidates.Create(ctx, c); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
	}
	logging.Log.Infof("CANDIDATE: seeded %d demo candidates", len(demoCandidates()))
	return nil
}

func demoCandidates() []*storage.Candidate {
	const image = "/placeholder.svg?height=100&width=100"
	return []*storage.Candidate{
		{ID: "1", Name: "Ana García", Party: "Partido Democrático", Category: string(CategoryPresidential), Image: image},
		{ID: "2", Name: "Carlos Mendoza", Party: "Partido Liberal", Category: string(CategoryPresidential), Image: image},
		{ID: "3", Name: "María López", Party: "Partido Conservador", Category: string(CategoryPresidential), Image: image},
		{ID: "4", Name: "Roberto Silva", Party: "Partido Democrático", Category: string(CategorySenatorial), Image: image},
		{ID: "5", Name: "Elena Vargas", Party: "Partido Liberal", Category: string(CategorySenatorial), Image: image},
		{ID: "6", Name: "Diego Ruiz", Party: "Partido Conservador", Category: string(CategorySenatorial), Image: image},
		{ID: "7", Name: "Laura Jiménez", Party: "Partido Democrático", Category: string(CategoryDeputies), Image: image},
		{ID: "8", Name: "Miguel Torres", Party: "Partido Liberal", Category: string(CategoryDeputies), Image: image},
		{ID: "9", Name: "Carmen Flores", Party: "Partido Conservador", Category: string(CategoryDeputies), Image: image},
	}
}
