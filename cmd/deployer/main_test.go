package main

import (
	"math/big"
	"testing"
)

func TestResolveNetwork(t *testing.T) {
	n, err := resolveNetwork("BSCTESTNET", 0)
	if err != nil {
		t.Fatalf("resolve by name: %v", err)
	}
	if n.ChainID != 97 {
		t.Fatalf("chain id: %d", n.ChainID)
	}

	n, err = resolveNetwork("bscTestnet", 23295)
	if err != nil {
		t.Fatalf("resolve by chain id: %v", err)
	}
	if n.Name != "sapphireTestnet" {
		t.Fatalf("chain id should override name, got %s", n.Name)
	}

	n, err = resolveNetwork("", 31337)
	if err != nil {
		t.Fatalf("resolve unknown chain id: %v", err)
	}
	if n.Name != "chain-31337" {
		t.Fatalf("name: %s", n.Name)
	}
	if _, err := knownNetwork("", 31337); err == nil {
		t.Fatalf("expected error for chain without registry")
	}

	if _, err := resolveNetwork("mainnet", 0); err == nil {
		t.Fatalf("expected error for unknown network")
	}
	if _, err := resolveNetwork("", 0); err == nil {
		t.Fatalf("expected error without network")
	}
}

func TestGweiToWei(t *testing.T) {
	if gweiToWei(0) != nil {
		t.Fatalf("zero gwei should defer to the node")
	}
	if got := gweiToWei(3); got.Cmp(big.NewInt(3_000_000_000)) != 0 {
		t.Fatalf("3 gwei: %s", got)
	}
	if got := gweiToWei(0.5); got.Cmp(big.NewInt(500_000_000)) != 0 {
		t.Fatalf("0.5 gwei: %s", got)
	}
}
