package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Well-known hardhat account #0.
const hardhatKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNewLocalSigner(t *testing.T) {
	want := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	for _, key := range []string{hardhatKey, hardhatKey[2:], "  " + hardhatKey + "\n"} {
		s, err := NewLocalSigner(key)
		if err != nil {
			t.Fatalf("NewLocalSigner(%q): %v", key, err)
		}
		if s.Address() != want {
			t.Fatalf("address = %s, want %s", s.Address().Hex(), want.Hex())
		}
	}
	if _, err := NewLocalSigner(""); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := NewLocalSigner("0xzz"); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}

func TestSignTxRecoversSender(t *testing.T) {
	s, err := NewLocalSigner(hardhatKey)
	if err != nil {
		t.Fatalf("NewLocalSigner: %v", err)
	}
	chainID := big.NewInt(97)
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1), Data: []byte{0x60}})
	signed, err := s.SignTx(tx, chainID)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		t.Fatalf("Sender: %v", err)
	}
	if from != s.Address() {
		t.Fatalf("sender = %s, want %s", from.Hex(), s.Address().Hex())
	}
	if signed.ChainId().Cmp(chainID) != 0 {
		t.Fatalf("chain id = %s", signed.ChainId())
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	calls = 0
	boom := errors.New("boom")
	err = WithRetry(context.Background(), 1, time.Millisecond, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 2 {
		t.Fatalf("err = %v calls = %d", err, calls)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, 5, time.Hour, func(context.Context) error { return errors.New("fail") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x9b20cBFbC710147f1c9493bd365156B155aBC453 ")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if addr.Hex() != "0x9b20cBFbC710147f1c9493bd365156B155aBC453" {
		t.Fatalf("addr = %s", addr.Hex())
	}
	if _, err := ParseAddress("0x123"); err == nil {
		t.Fatalf("expected error for short address")
	}
}
