package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// VotingABI is the interface of the deployed Voting contract.
const VotingABI = `[
	{"inputs":[],"stateMutability":"nonpayable","type":"constructor"},
	{"inputs":[{"internalType":"string","name":"candidate","type":"string"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"string","name":"candidate","type":"string"}],"name":"getVotes","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"owner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"","type":"string"}],"name":"votes","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const (
	MethodVote     = "vote"
	MethodGetVotes = "getVotes"
)

func ParseVotingABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(VotingABI))
}
