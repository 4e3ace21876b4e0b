package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// FeeDenominator scales the integer fee and admin_fee values of stable-swap pools.
const FeeDenominator = 10_000_000_000

const stableSwapPoolABIJSON = `[
  {"inputs": [{"name": "i", "type": "uint256"}], "name": "coins", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "fee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "admin_fee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "owner", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

const ownableABIJSON = `[
  {"inputs": [], "name": "owner", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	stableSwapPoolABI     abi.ABI
	stableSwapPoolABIOnce sync.Once
	stableSwapPoolABIErr  error

	ownableABI     abi.ABI
	ownableABIOnce sync.Once
	ownableABIErr  error
)

// StableSwapPoolABI returns the subset of the pool ABI used for inspection.
func StableSwapPoolABI() (abi.ABI, error) {
	stableSwapPoolABIOnce.Do(func() {
		stableSwapPoolABI, stableSwapPoolABIErr = abi.JSON(strings.NewReader(stableSwapPoolABIJSON))
	})
	return stableSwapPoolABI, stableSwapPoolABIErr
}

// OwnableABI returns the owner() ABI.
func OwnableABI() (abi.ABI, error) {
	ownableABIOnce.Do(func() {
		ownableABI, ownableABIErr = abi.JSON(strings.NewReader(ownableABIJSON))
	})
	return ownableABI, ownableABIErr
}
