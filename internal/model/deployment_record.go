package model

// Record kinds.
const (
	KindDeploy = "deploy"
	KindLink   = "link"
)

// DeploymentRecord is the audit record of one confirmed deploy or link step.
type DeploymentRecord struct {
	RunID       string `json:"run_id"`
	ChainID     uint64 `json:"chain_id"`
	Kind        string `json:"kind"`
	Step        string `json:"step"`
	Contract    string `json:"contract"`
	LedgerKey   string `json:"ledger_key,omitempty"`
	Address     string `json:"address,omitempty"`
	Target      string `json:"target,omitempty"`
	Method      string `json:"method,omitempty"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	Deployer    string `json:"deployer"`
	BlockTime   uint64 `json:"block_time,omitempty"`
	ConfirmedAt string `json:"confirmed_at"`
}
