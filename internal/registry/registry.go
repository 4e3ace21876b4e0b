package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ChainIDs returns every chain ID with registry data, ascending.
func ChainIDs() []uint64 {
	seen := make(map[uint64]struct{})
	for id := range coins {
		seen[id] = struct{}{}
	}
	for id := range poolList {
		seen[id] = struct{}{}
	}
	for id := range listAddr {
		seen[id] = struct{}{}
	}
	out := make([]uint64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TokensFor returns the token table of chainID, or nil when the chain is unknown.
func TokensFor(chainID uint64) []Token {
	src, ok := coins[chainID]
	if !ok {
		return nil
	}
	out := make([]Token, len(src))
	copy(out, src)
	return out
}

// TokenBySymbol finds a token by its exact symbol.
func TokenBySymbol(chainID uint64, symbol string) (Token, bool) {
	for _, t := range coins[chainID] {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return Token{}, false
}

// PoolsFor returns the pool table of chainID, or nil when the chain is unknown.
func PoolsFor(chainID uint64) []Pool {
	src, ok := poolList[chainID]
	if !ok {
		return nil
	}
	out := make([]Pool, 0, len(src))
	for _, p := range src {
		out = append(out, p.clone())
	}
	return out
}

// PoolByName finds a pool by name.
func PoolByName(chainID uint64, name string) (Pool, bool) {
	for _, p := range poolList[chainID] {
		if p.Name == name {
			return p.clone(), true
		}
	}
	return Pool{}, false
}

// ContractAddress returns the recorded address of a logical contract.
func ContractAddress(chainID uint64, name string) (common.Address, bool) {
	addrs, ok := listAddr[chainID]
	if !ok {
		return common.Address{}, false
	}
	addr, ok := addrs[name]
	return addr, ok
}

// ContractNames lists the logical contracts recorded for chainID in
// deployment-table order.
func ContractNames(chainID uint64) []string {
	addrs, ok := listAddr[chainID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, name := range contractNames {
		if _, ok := addrs[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks that the tables agree with each other.
func Validate() error {
	var errs []error
	for _, id := range ChainIDs() {
		if _, ok := coins[id]; !ok {
			errs = append(errs, fmt.Errorf("chain %d: missing token table", id))
		}
		if _, ok := poolList[id]; !ok {
			errs = append(errs, fmt.Errorf("chain %d: missing pool table", id))
		}
		if _, ok := listAddr[id]; !ok {
			errs = append(errs, fmt.Errorf("chain %d: missing contract table", id))
		}
		if _, ok := NetworkByChainID(id); !ok {
			errs = append(errs, fmt.Errorf("chain %d: not a known network", id))
		}
		errs = append(errs, validateTokens(id)...)
		for _, p := range poolList[id] {
			errs = append(errs, validatePool(id, p)...)
		}
		for name, addr := range listAddr[id] {
			if addr == (common.Address{}) {
				errs = append(errs, fmt.Errorf("chain %d: contract %s has zero address", id, name))
			}
		}
	}
	return errors.Join(errs...)
}

func validateTokens(chainID uint64) []error {
	var errs []error
	seen := make(map[string]struct{})
	for _, t := range coins[chainID] {
		if _, dup := seen[t.Symbol]; dup {
			errs = append(errs, fmt.Errorf("chain %d: duplicate token %s", chainID, t.Symbol))
		}
		seen[t.Symbol] = struct{}{}
		if t.Address == (common.Address{}) {
			errs = append(errs, fmt.Errorf("chain %d: token %s has zero address", chainID, t.Symbol))
		}
	}
	return errs
}

func validatePool(chainID uint64, p Pool) []error {
	var errs []error
	if p.Type != 2 && p.Type != 3 {
		errs = append(errs, fmt.Errorf("chain %d pool %s: unsupported type %d", chainID, p.Name, p.Type))
	}
	if len(p.UnderlyingTokens) != p.Type {
		errs = append(errs, fmt.Errorf("chain %d pool %s: %d underlying tokens for type %d",
			chainID, p.Name, len(p.UnderlyingTokens), p.Type))
	}

	counts := make(map[string]int, len(p.UnderlyingTokens))
	for _, t := range p.UnderlyingTokens {
		counts[t.Symbol]++
	}
	codeSymbols := strings.Fields(p.Code)
	if len(codeSymbols) != len(p.UnderlyingTokens) {
		errs = append(errs, fmt.Errorf("chain %d pool %s: code %q lists %d symbols",
			chainID, p.Name, p.Code, len(codeSymbols)))
	}
	for _, symbol := range codeSymbols {
		if counts[symbol] != 1 {
			errs = append(errs, fmt.Errorf("chain %d pool %s: code symbol %s appears %d times among underlying tokens",
				chainID, p.Name, symbol, counts[symbol]))
		}
	}

	check := func(role string, t Token) {
		known, ok := TokenBySymbol(chainID, t.Symbol)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("chain %d pool %s: %s token %s not in token table", chainID, p.Name, role, t.Symbol))
		case known.Address != t.Address:
			errs = append(errs, fmt.Errorf("chain %d pool %s: %s token %s address %s != %s",
				chainID, p.Name, role, t.Symbol, t.Address.Hex(), known.Address.Hex()))
		case known.Decimals != t.Decimals:
			errs = append(errs, fmt.Errorf("chain %d pool %s: %s token %s decimals %d != %d",
				chainID, p.Name, role, t.Symbol, t.Decimals, known.Decimals))
		}
	}
	for _, t := range p.UnderlyingTokens {
		check("underlying", t)
	}
	check("lp", p.LPToken)

	if p.Fee < 0 || p.Fee >= 1 || p.DAOFee < 0 || p.DAOFee >= 1 {
		errs = append(errs, fmt.Errorf("chain %d pool %s: fee fractions out of range", chainID, p.Name))
	}
	return errs
}

// Document is the JSON export of one network's registry.
type Document struct {
	Network   Network                   `json:"network"`
	Tokens    []Token                   `json:"coins"`
	Pools     []Pool                    `json:"pools"`
	Contracts map[string]common.Address `json:"contracts"`
}

// Export builds the registry document for chainID.
func Export(chainID uint64) (Document, error) {
	network, ok := NetworkByChainID(chainID)
	if !ok {
		return Document{}, fmt.Errorf("unknown chain id %d", chainID)
	}
	contracts := make(map[string]common.Address, len(listAddr[chainID]))
	for name, addr := range listAddr[chainID] {
		contracts[name] = addr
	}
	return Document{
		Network:   network,
		Tokens:    TokensFor(chainID),
		Pools:     PoolsFor(chainID),
		Contracts: contracts,
	}, nil
}

// ExportJSON renders Export as indented JSON.
func ExportJSON(chainID uint64) ([]byte, error) {
	doc, err := Export(chainID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}
