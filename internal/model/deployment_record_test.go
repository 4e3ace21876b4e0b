package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDeploymentRecordJSON(t *testing.T) {
	want := DeploymentRecord{
		RunID:       "3f6c1f0e-6c55-4d52-9d87-6b3b58f5d0c1",
		ChainID:     97,
		Kind:        KindDeploy,
		Step:        "StableSwapTwoPoolDeployer",
		Contract:    "StableSwapTwoPoolDeployer",
		LedgerKey:   "STABLE_SWAP_TWO_POOL_DEPLOYER",
		Address:     "0xaeCb6253844c1c8f849b0F36f50eaea92286d352",
		TxHash:      "0xdef456",
		BlockNumber: 36000000,
		GasUsed:     4200000,
		Deployer:    "0x1111111111111111111111111111111111111111",
		ConfirmedAt: "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(b, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"run_id", "chain_id", "ledger_key", "tx_hash", "confirmed_at"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing field %s in %s", key, b)
		}
	}
	for _, key := range []string{"target", "method"} {
		if _, ok := fields[key]; ok {
			t.Fatalf("deploy record should omit %s: %s", key, b)
		}
	}

	var decoded DeploymentRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(want, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", want, decoded)
	}
}
