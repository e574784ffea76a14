package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/votaseguro/election-ledger/logging"
)

type EthConfig struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	// WaitReceipt blocks Vote until the transaction is mined.
	WaitReceipt bool
	Timeout     time.Duration
}

// EthClient talks to the Voting contract through a JSON-RPC endpoint.
type EthClient struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	cfg      EthConfig
}

func (c EthConfig) validate() (common.Address, *ecdsa.PrivateKey, error) {
	if c.RPCURL == "" {
		return common.Address{}, nil, errors.New("chain rpc url is required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return common.Address{}, nil, fmt.Errorf("invalid contract address %q", c.ContractAddress)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("invalid private key: %w", err)
	}
	return common.HexToAddress(c.ContractAddress), key, nil
}

func NewEthClient(ctx context.Context, cfg EthConfig) (*EthClient, error) {
	address, key, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	parsed, err := ParseVotingABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse voting abi: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	logging.Log.Infof("CHAIN: connected to chain %s, contract %s, sender %s",
		chainID, address.Hex(), crypto.PubkeyToAddress(key.PublicKey).Hex())

	return &EthClient{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		key:      key,
		chainID:  chainID,
		cfg:      cfg,
	}, nil
}

func (e *EthClient) Enabled() bool {
	return true
}

func (e *EthClient) Vote(ctx context.Context, candidate string) (Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(e.key, e.chainID)
	if err != nil {
		return Receipt{}, err
	}
	opts.Context = ctx

	tx, err := e.contract.Transact(opts, MethodVote, candidate)
	if err != nil {
		logging.Log.Errorf("CHAIN: vote for %s failed: %v", candidate, err)
		return Receipt{}, err
	}
	logging.Log.Infof("CHAIN: vote for %s sent in %s", candidate, tx.Hash().Hex())

	if e.cfg.WaitReceipt {
		receipt, err := bind.WaitMined(ctx, e.client, tx)
		if err != nil {
			return Receipt{TransactionHash: tx.Hash().Hex()}, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return Receipt{TransactionHash: tx.Hash().Hex()}, ErrTransactionFailed
		}
	}

	return Receipt{TransactionHash: tx.Hash().Hex(), OnChain: true}, nil
}

func (e *EthClient) GetVotes(ctx context.Context, candidate string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var out []interface{}
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodGetVotes, candidate); err != nil {
		logging.Log.Errorf("CHAIN: getVotes for %s failed: %v", candidate, err)
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getVotes output length %d", len(out))
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (e *EthClient) Close() {
	e.client.Close()
}
