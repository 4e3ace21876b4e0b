package model

// RegistryToken is a registry token row for storage.
type RegistryToken struct {
	ChainID  uint64 `json:"chain_id"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

// RegistryPool is a registry pool row. Coins holds underlying token
// addresses in pool order.
type RegistryPool struct {
	ChainID  uint64   `json:"chain_id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	PoolType int      `json:"pool_type"`
	Tag      string   `json:"tag"`
	Code     string   `json:"code"`
	LPToken  string   `json:"lp_token"`
	LPSymbol string   `json:"lp_symbol"`
	Coins    []string `json:"coins"`
	Fee      float64  `json:"fee"`
	DAOFee   float64  `json:"dao_fee"`
}

// RegistryContract is a logical contract name bound to an address.
type RegistryContract struct {
	ChainID uint64 `json:"chain_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}
