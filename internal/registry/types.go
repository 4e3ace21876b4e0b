package registry

import "github.com/ethereum/go-ethereum/common"

// Token describes an ERC20-like asset on one network.
type Token struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// Pool describes a stable-swap pool and its constituent tokens.
// Type is the number of underlying assets (2 or 3).
type Pool struct {
	Type             int            `json:"type"`
	Tag              string         `json:"tag"`
	Name             string         `json:"name"`
	Code             string         `json:"code"`
	Address          common.Address `json:"address"`
	LPToken          Token          `json:"lpAddress"`
	UnderlyingTokens []Token        `json:"underlyingTokens"`
	Fee              float64        `json:"fee"`
	DAOFee           float64        `json:"DAOFee"`
}

func (p Pool) clone() Pool {
	out := p
	out.UnderlyingTokens = make([]Token, len(p.UnderlyingTokens))
	copy(out.UnderlyingTokens, p.UnderlyingTokens)
	return out
}
