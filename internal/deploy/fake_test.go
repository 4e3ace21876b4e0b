package deploy

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"stableDeploy/internal/artifact"
	"stableDeploy/internal/chain"
	"stableDeploy/internal/ledger"
	"stableDeploy/internal/model"
)

type fakeBackend struct {
	mu sync.Mutex

	chainID     *big.Int
	balance     *big.Int
	nonces      map[common.Address]uint64
	receipts    map[common.Hash]*types.Receipt
	pending     map[common.Hash]*types.Receipt
	code        map[common.Address][]byte
	sent        []*types.Transaction
	calls       int
	revert      bool
	hold        bool
	estimateErr error
	block       int64
}

func newFakeBackend(chainID int64) *fakeBackend {
	return &fakeBackend{
		chainID:  big.NewInt(chainID),
		balance:  big.NewInt(1_000_000_000_000_000_000),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		pending:  make(map[common.Hash]*types.Receipt),
		code:     make(map[common.Address][]byte),
		block:    100,
	}
}

func (f *fakeBackend) touch() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	f.touch()
	return new(big.Int).Set(f.chainID), nil
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	f.touch()
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonces[account], nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	f.touch()
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	f.touch()
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return 500_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.touch()
	from, err := types.Sender(types.LatestSignerForChainID(f.chainID), tx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.Nonce() != f.nonces[from] {
		return fmt.Errorf("nonce too low")
	}
	f.nonces[from]++
	f.sent = append(f.sent, tx)
	f.block++

	receipt := &types.Receipt{
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(f.block),
		GasUsed:     100_000,
		Status:      types.ReceiptStatusSuccessful,
	}
	if f.revert {
		receipt.Status = types.ReceiptStatusFailed
	}
	if tx.To() == nil {
		receipt.ContractAddress = crypto.CreateAddress(from, tx.Nonce())
		if !f.revert {
			f.code[receipt.ContractAddress] = []byte{0x60, 0x80}
		}
	}
	if f.hold {
		f.pending[tx.Hash()] = receipt
	} else {
		f.receipts[tx.Hash()] = receipt
	}
	return nil
}

// release mines every held transaction.
func (f *fakeBackend) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = false
	for hash, receipt := range f.pending {
		f.receipts[hash] = receipt
	}
	f.pending = make(map[common.Hash]*types.Receipt)
}

func (f *fakeBackend) setHold(hold bool) {
	f.mu.Lock()
	f.hold = hold
	f.mu.Unlock()
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (f *fakeBackend) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code[account], nil
}

func (f *fakeBackend) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	f.touch()
	return &types.Header{Number: number, Time: 1_700_000_000 + number.Uint64()}, nil
}

func (f *fakeBackend) sentTxs() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Transaction, len(f.sent))
	copy(out, f.sent)
	return out
}

type recordSink struct {
	mu      sync.Mutex
	records []model.DeploymentRecord
	err     error
}

func (s *recordSink) PutRecords(_ context.Context, records []model.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return s.err
}

const helperPlaceholder = "__$7d2c1a0b8f3e4d5c6b7a8f9e0d1c2b3a4f$__"

func testArtifact(t *testing.T, name string, ctorArgs int, bytecode string, links string) *artifact.Artifact {
	t.Helper()
	inputs := make([]string, 0, ctorArgs)
	for i := 0; i < ctorArgs; i++ {
		inputs = append(inputs, fmt.Sprintf(`{"name":"a%d","type":"address"}`, i))
	}
	doc := fmt.Sprintf(`{
		"contractName": %q,
		"abi": [
			{"type":"constructor","inputs":[%s]},
			{"type":"function","name":"transferOwnership","inputs":[{"name":"newOwner","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}
		],
		"bytecode": %q,
		"linkReferences": %s
	}`, name, strings.Join(inputs, ","), bytecode, links)
	a, err := artifact.Parse([]byte(doc))
	require.NoError(t, err)
	return a
}

func testArtifacts(t *testing.T) artifact.Set {
	plain := func(name string, args int) *artifact.Artifact {
		return testArtifact(t, name, args, "0x6080604052", "{}")
	}
	return artifact.Set{
		"StableSwapLPFactory":         plain("StableSwapLPFactory", 0),
		"StableSwapTwoPoolDeployer":   plain("StableSwapTwoPoolDeployer", 0),
		"StableSwapThreePoolDeployer": plain("StableSwapThreePoolDeployer", 0),
		"StableSwapFactory":           plain("StableSwapFactory", 3),
		"StableSwapTwoPoolInfo":       plain("StableSwapTwoPoolInfo", 0),
		"StableSwapThreePoolInfo":     plain("StableSwapThreePoolInfo", 0),
		"StableSwapInfo":              plain("StableSwapInfo", 2),
		"SmartRouterHelper":           plain("SmartRouterHelper", 0),
		"StableSwapRouter": testArtifact(t, "StableSwapRouter", 2, "0x6080"+helperPlaceholder+"00",
			`{"contracts/libraries/SmartRouterHelper.sol":{"SmartRouterHelper":[{"start":2,"length":20}]}}`),
	}
}

type harness struct {
	backend  *fakeBackend
	signer   *chain.LocalSigner
	ledger   *ledger.Ledger
	journal  *ledger.Journal
	sink     *recordSink
	deployer *Deployer
	dir      string
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	dir := t.TempDir()
	led, err := ledger.Open(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	journal, err := ledger.OpenJournal(filepath.Join(dir, "journal.json"))
	require.NoError(t, err)

	if cfg.ChainID == 0 {
		cfg.ChainID = 97
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 5 * time.Second
	}
	h := &harness{
		backend: newFakeBackend(97),
		signer:  chain.NewKeySigner(key),
		ledger:  led,
		journal: journal,
		sink:    &recordSink{},
		dir:     dir,
	}
	h.deployer, err = NewDeployer(cfg, h.backend, h.signer, testArtifacts(t), led,
		WithJournal(journal), WithSink(h.sink))
	require.NoError(t, err)
	return h
}

func (h *harness) reopenLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	led, err := ledger.Open(h.ledger.Path())
	require.NoError(t, err)
	return led
}

func findTx(t *testing.T, h *harness, hash string) *types.Transaction {
	t.Helper()
	for _, tx := range h.backend.sentTxs() {
		if tx.Hash().Hex() == hash {
			return tx
		}
	}
	t.Fatalf("tx %s not sent", hash)
	return nil
}
