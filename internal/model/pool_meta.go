package model

// PoolMeta captures the on-chain state of a stable-swap pool.
type PoolMeta struct {
	Address  string   `json:"address"`
	Coins    []string `json:"coins"`
	LPToken  string   `json:"lp_token"`
	Fee      string   `json:"fee"`
	AdminFee string   `json:"admin_fee"`
	Owner    string   `json:"owner,omitempty"`
}
