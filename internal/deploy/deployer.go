package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stableDeploy/internal/artifact"
	"stableDeploy/internal/chain"
	"stableDeploy/internal/ledger"
	"stableDeploy/internal/metrics"
	"stableDeploy/internal/model"
	"stableDeploy/internal/plan"
	"stableDeploy/internal/storage"
)

const (
	defaultGasBufferPercent = 20
	defaultGasLimit         = 10_000_000
	defaultConfirmTimeout   = 5 * time.Minute
)

// Backend is the chain surface used for deployments. *chain.Client satisfies it.
type Backend interface {
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Signer signs transactions for one account.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Config holds deployment settings.
type Config struct {
	// ChainID is the chain the backend must be connected to.
	ChainID          uint64
	RunID            string
	Redeploy         bool
	GasBufferPercent uint64
	DefaultGasLimit  uint64
	GasPrice         *big.Int
	ConfirmTimeout   time.Duration
}

// Deployer submits contract creations and linkage calls one at a time and
// records their results in the ledger.
type Deployer struct {
	cfg       Config
	backend   Backend
	signer    Signer
	artifacts artifact.Source
	ledger    *ledger.Ledger
	journal   *ledger.Journal
	sink      storage.Sink
	metrics   *metrics.Metrics
	logger    *zap.Logger

	chainID *big.Int
}

// Option customises a Deployer.
type Option func(*Deployer)

func WithJournal(j *ledger.Journal) Option { return func(d *Deployer) { d.journal = j } }

func WithSink(s storage.Sink) Option { return func(d *Deployer) { d.sink = s } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Deployer) { d.metrics = m } }

func WithLogger(l *zap.Logger) Option {
	return func(d *Deployer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDeployer builds a Deployer. Without WithJournal an in-memory journal is used.
func NewDeployer(cfg Config, backend Backend, signer Signer, artifacts artifact.Source, led *ledger.Ledger, opts ...Option) (*Deployer, error) {
	if backend == nil {
		return nil, fmt.Errorf("chain backend is nil")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is nil")
	}
	if artifacts == nil {
		return nil, fmt.Errorf("artifact source is nil")
	}
	if led == nil {
		return nil, fmt.Errorf("ledger is nil")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("chain id is required")
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.GasBufferPercent == 0 {
		cfg.GasBufferPercent = defaultGasBufferPercent
	}
	if cfg.DefaultGasLimit == 0 {
		cfg.DefaultGasLimit = defaultGasLimit
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}

	d := &Deployer{
		cfg:       cfg,
		backend:   backend,
		signer:    signer,
		artifacts: artifacts,
		ledger:    led,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.journal == nil {
		d.journal, _ = ledger.OpenJournal("")
	}
	d.logger = d.logger.With(zap.String("run_id", cfg.RunID))
	return d, nil
}

// RunID identifies this invocation in logs and records.
func (d *Deployer) RunID() string {
	return d.cfg.RunID
}

// Ledger returns the ledger the deployer writes to.
func (d *Deployer) Ledger() *ledger.Ledger {
	return d.ledger
}

// Journal returns the status journal.
func (d *Deployer) Journal() *ledger.Journal {
	return d.journal
}

// DeployRequest describes one contract creation.
type DeployRequest struct {
	Step      string
	Contract  string
	LedgerKey string
	Args      []plan.Arg
	Libraries map[string]string
}

// LinkRequest describes one state-changing call on a deployed contract.
type LinkRequest struct {
	Step      string
	Contract  string
	TargetKey string
	Method    string
	Args      []plan.Arg
}

// RequestFromStep converts a deploy plan step.
func RequestFromStep(s plan.Step) DeployRequest {
	return DeployRequest{Step: s.Name, Contract: s.Contract, LedgerKey: s.LedgerKey, Args: s.Args, Libraries: s.Libraries}
}

// LinkFromStep converts a link plan step.
func LinkFromStep(s plan.Step) LinkRequest {
	return LinkRequest{Step: s.Name, Contract: s.Contract, TargetKey: s.Target, Method: s.Method, Args: s.Args}
}

func (d *Deployer) phase(contract string, p Phase, fields ...zap.Field) {
	d.logger.Info("phase", append([]zap.Field{zap.String("contract", contract), zap.String("phase", string(p))}, fields...)...)
}

// Deploy creates req.Contract and appends its address to the ledger.
func (d *Deployer) Deploy(ctx context.Context, req DeployRequest) (common.Address, error) {
	if req.LedgerKey == "" {
		req.LedgerKey = ledger.KeyFor(req.Contract)
	}
	if req.Step == "" {
		req.Step = req.Contract
	}
	key := req.LedgerKey
	d.phase(req.Contract, PhaseStart, zap.String("key", key))

	addr, err := d.deploy(ctx, req)
	if err != nil {
		var already *AlreadyDeployedError
		if errors.As(err, &already) {
			d.metrics.Skipped(model.KindDeploy)
			return common.HexToAddress(already.Address), err
		}
		d.metrics.Failed(model.KindDeploy)
		d.logger.Error("phase", zap.String("contract", req.Contract), zap.String("phase", string(PhaseFailed)), zap.Error(err))
		return common.Address{}, err
	}
	d.phase(req.Contract, PhaseDone, zap.String("address", addr.Hex()))
	return addr, nil
}

func (d *Deployer) deploy(ctx context.Context, req DeployRequest) (common.Address, error) {
	key := req.LedgerKey
	if !d.cfg.Redeploy {
		if existing, ok := d.ledger.Get(key); ok && existing != "" {
			return common.HexToAddress(existing), &AlreadyDeployedError{Key: key, Address: existing}
		}
	}

	values, err := d.resolveArgs(req.Contract, req.Args)
	if err != nil {
		return common.Address{}, err
	}
	libs, err := d.resolveLibraries(req.Contract, req.Libraries)
	if err != nil {
		return common.Address{}, err
	}

	data, err := d.buildCreation(req.Contract, libs, values)
	if err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseFactoryBuilt, Err: err}
	}
	d.phase(req.Contract, PhaseFactoryBuilt, zap.Int("code_size", len(data)))

	if err := d.checkChain(ctx); err != nil {
		return common.Address{}, err
	}

	if receipt, tx, ok, err := d.recoverInFlight(ctx, key, ""); err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseTxSubmitted, TxHash: tx, Err: err}
	} else if ok {
		d.logger.Info("recovered journaled deployment", zap.String("key", key), zap.String("tx", tx))
		return d.finishDeploy(ctx, req, receipt, time.Time{})
	}

	started := time.Now()
	tx, err := d.submit(ctx, ledger.JournalEntry{Key: key, Contract: req.Contract}, nil, data)
	if err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseTxSubmitted, TxHash: txHashOf(tx), Err: err}
	}
	d.phase(req.Contract, PhaseTxSubmitted, zap.String("tx", tx.Hash().Hex()), zap.Uint64("nonce", tx.Nonce()), zap.Uint64("gas", tx.Gas()))

	receipt, err := d.confirm(ctx, ledger.JournalEntry{Key: key, Contract: req.Contract}, tx)
	if err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseConfirmed, TxHash: tx.Hash().Hex(), Err: err}
	}
	return d.finishDeploy(ctx, req, receipt, started)
}

func (d *Deployer) finishDeploy(ctx context.Context, req DeployRequest, receipt *types.Receipt, started time.Time) (common.Address, error) {
	key := req.LedgerKey
	addr := receipt.ContractAddress
	txHash := receipt.TxHash.Hex()

	code, err := d.backend.CodeAt(ctx, addr, nil)
	if err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseConfirmed, TxHash: txHash, Err: fmt.Errorf("code at %s: %w", addr.Hex(), err)}
	}
	if len(code) == 0 {
		_ = d.mark(ledger.JournalEntry{Key: key, Status: ledger.StatusFailed, Contract: req.Contract, TxHash: txHash})
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseConfirmed, TxHash: txHash, Err: ErrNoCode}
	}
	d.phase(req.Contract, PhaseConfirmed, zap.String("address", addr.Hex()), zap.Uint64("block", receipt.BlockNumber.Uint64()))

	if err := d.ledger.Write(key, addr.Hex()); err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseLedgerWritten, TxHash: txHash, Err: err}
	}
	if err := d.ledger.Write(ledger.StatusKey(key), string(ledger.StatusConfirmed)); err != nil {
		return common.Address{}, &DeploymentError{Contract: req.Contract, Phase: PhaseLedgerWritten, TxHash: txHash, Err: err}
	}
	if err := d.mark(ledger.JournalEntry{Key: key, Status: ledger.StatusConfirmed, Contract: req.Contract, TxHash: txHash}); err != nil {
		d.logger.Warn("journal update failed", zap.String("key", key), zap.Error(err))
	}
	d.phase(req.Contract, PhaseLedgerWritten, zap.String("key", key))

	record := d.record(ctx, model.KindDeploy, req.Step, req.Contract, receipt)
	record.LedgerKey = key
	record.Address = addr.Hex()
	d.emit(ctx, record)

	var took time.Duration
	if !started.IsZero() {
		took = time.Since(started)
	}
	d.metrics.Confirmed(model.KindDeploy, took, receipt.GasUsed)
	return addr, nil
}

// Link performs req.Method on the contract whose address is stored under
// req.TargetKey.
func (d *Deployer) Link(ctx context.Context, req LinkRequest) (common.Hash, error) {
	if req.Step == "" {
		req.Step = req.Contract + "." + req.Method
	}
	d.logger.Info("link", zap.String("contract", req.Contract), zap.String("method", req.Method), zap.String("target_key", req.TargetKey))

	hash, err := d.link(ctx, req)
	if err != nil {
		var already *AlreadyDeployedError
		if errors.As(err, &already) {
			d.metrics.Skipped(model.KindLink)
			return hash, err
		}
		d.metrics.Failed(model.KindLink)
		d.logger.Error("link failed", zap.String("contract", req.Contract), zap.String("method", req.Method), zap.Error(err))
		return hash, err
	}
	d.logger.Info("link confirmed", zap.String("contract", req.Contract), zap.String("method", req.Method), zap.String("tx", hash.Hex()))
	return hash, nil
}

// LinkJournalKey is the journal key of a link step.
func LinkJournalKey(step string) string {
	return "link:" + step
}

func (d *Deployer) link(ctx context.Context, req LinkRequest) (common.Hash, error) {
	if req.TargetKey == "" {
		return common.Hash{}, &ConfigurationError{Key: "target", Reason: "link target key is empty"}
	}
	targetValue, ok := d.ledger.Lookup(req.TargetKey)
	if !ok {
		return common.Hash{}, &ConfigurationError{Key: req.TargetKey, Reason: fmt.Sprintf("required by %s.%s but not in ledger", req.Contract, req.Method)}
	}
	target, err := chain.ParseAddress(targetValue)
	if err != nil {
		return common.Hash{}, &ConfigurationError{Key: req.TargetKey, Reason: err.Error()}
	}

	values, err := d.resolveArgs(req.Contract, req.Args)
	if err != nil {
		return common.Hash{}, err
	}

	jkey := LinkJournalKey(req.Step)
	if !d.cfg.Redeploy {
		if entry, ok := d.linked(jkey, target); ok {
			return common.HexToHash(entry.TxHash), &AlreadyDeployedError{Key: jkey, Address: target.Hex()}
		}
	}
	journaled := ledger.JournalEntry{Key: jkey, Contract: req.Contract, Target: target.Hex()}

	linkErr := func(tx string, err error) error {
		return &LinkageError{Contract: req.Contract, Target: target.Hex(), Method: req.Method, TxHash: tx, Err: err}
	}

	data, err := d.buildCall(req.Contract, req.Method, values)
	if err != nil {
		return common.Hash{}, linkErr("", err)
	}
	if err := d.checkChain(ctx); err != nil {
		return common.Hash{}, err
	}

	if receipt, tx, ok, err := d.recoverInFlight(ctx, jkey, target.Hex()); err != nil {
		return common.Hash{}, linkErr(tx, err)
	} else if ok {
		d.logger.Info("recovered in-flight link", zap.String("step", req.Step), zap.String("tx", tx))
		return d.finishLink(ctx, req, target, receipt, time.Time{}), nil
	}

	started := time.Now()
	tx, err := d.submit(ctx, journaled, &target, data)
	if err != nil {
		return common.Hash{}, linkErr(txHashOf(tx), err)
	}
	receipt, err := d.confirm(ctx, journaled, tx)
	if err != nil {
		return tx.Hash(), linkErr(tx.Hash().Hex(), err)
	}
	return d.finishLink(ctx, req, target, receipt, started), nil
}

func (d *Deployer) finishLink(ctx context.Context, req LinkRequest, target common.Address, receipt *types.Receipt, started time.Time) common.Hash {
	jkey := LinkJournalKey(req.Step)
	entry := ledger.JournalEntry{Key: jkey, Status: ledger.StatusConfirmed, Contract: req.Contract, Target: target.Hex(), TxHash: receipt.TxHash.Hex()}
	if err := d.mark(entry); err != nil {
		d.logger.Warn("journal update failed", zap.String("key", jkey), zap.Error(err))
	}

	record := d.record(ctx, model.KindLink, req.Step, req.Contract, receipt)
	record.Target = target.Hex()
	record.Method = req.Method
	d.emit(ctx, record)

	var took time.Duration
	if !started.IsZero() {
		took = time.Since(started)
	}
	d.metrics.Confirmed(model.KindLink, took, receipt.GasUsed)
	return receipt.TxHash
}

func (d *Deployer) resolveArgs(contract string, args []plan.Arg) ([]string, error) {
	values := make([]string, 0, len(args))
	for _, arg := range args {
		if arg.Ledger == "" {
			values = append(values, arg.Value)
			continue
		}
		value, ok := d.ledger.Lookup(arg.Ledger)
		if !ok {
			return nil, &ConfigurationError{Key: arg.Ledger, Reason: fmt.Sprintf("required by %s but not in ledger", contract)}
		}
		values = append(values, value)
	}
	return values, nil
}

func (d *Deployer) resolveLibraries(contract string, libs map[string]string) (map[string]common.Address, error) {
	out := make(map[string]common.Address, len(libs))
	for name, key := range libs {
		value, ok := d.ledger.Lookup(key)
		if !ok {
			return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("library %s of %s not in ledger", name, contract)}
		}
		addr, err := chain.ParseAddress(value)
		if err != nil {
			return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("library %s: %v", name, err)}
		}
		out[name] = addr
	}
	return out, nil
}

func (d *Deployer) buildCreation(contract string, libs map[string]common.Address, values []string) ([]byte, error) {
	a, err := d.artifacts.Load(contract)
	if err != nil {
		return nil, err
	}
	parsed, err := a.ParsedABI()
	if err != nil {
		return nil, err
	}
	args, err := artifact.ConvertArgs(parsed.Constructor.Inputs, values)
	if err != nil {
		return nil, fmt.Errorf("constructor: %w", err)
	}
	return a.DeployData(libs, args...)
}

func (d *Deployer) buildCall(contract, method string, values []string) ([]byte, error) {
	a, err := d.artifacts.Load(contract)
	if err != nil {
		return nil, err
	}
	parsed, err := a.ParsedABI()
	if err != nil {
		return nil, err
	}
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %s", contract, method)
	}
	args, err := artifact.ConvertArgs(m.Inputs, values)
	if err != nil {
		return nil, err
	}
	return parsed.Pack(method, args...)
}

func (d *Deployer) checkChain(ctx context.Context) error {
	if d.chainID != nil {
		return nil
	}
	chainID, err := d.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if d.cfg.ChainID != 0 && (!chainID.IsUint64() || chainID.Uint64() != d.cfg.ChainID) {
		return &ConfigurationError{Key: "chain-id", Reason: fmt.Sprintf("rpc reports %s, expected %d", chainID, d.cfg.ChainID)}
	}
	d.chainID = chainID
	return nil
}

// linked reports whether the link journaled under jkey was confirmed on
// this chain against target.
func (d *Deployer) linked(jkey string, target common.Address) (ledger.JournalEntry, bool) {
	entry, ok := d.journal.Get(d.cfg.ChainID, jkey)
	if !ok || entry.Status != ledger.StatusConfirmed {
		return entry, false
	}
	return entry, common.HexToAddress(entry.Target) == target
}

// mark journals entry on the configured chain.
func (d *Deployer) mark(entry ledger.JournalEntry) error {
	entry.ChainID = d.cfg.ChainID
	return d.journal.Mark(entry)
}

// recoverInFlight inspects the journaled transaction for key on this chain.
// ok is true when it was mined successfully and can be finished without a
// new transaction. An in-flight one that is still unknown is ErrPending. A
// confirmed one is only picked up when the ledger lost its result; if the
// node has no receipt for it, or it reverted, it is marked failed so a fresh
// transaction can be sent. target, when set, must match the journaled link
// target.
func (d *Deployer) recoverInFlight(ctx context.Context, key, target string) (*types.Receipt, string, bool, error) {
	entry, found := d.journal.Get(d.cfg.ChainID, key)
	if !found || entry.TxHash == "" {
		return nil, "", false, nil
	}
	switch entry.Status {
	case ledger.StatusInFlight:
	case ledger.StatusConfirmed:
		if d.cfg.Redeploy {
			return nil, "", false, nil
		}
	default:
		return nil, "", false, nil
	}
	if target != "" && common.HexToAddress(entry.Target) != common.HexToAddress(target) {
		return nil, "", false, nil
	}

	hash := common.HexToHash(entry.TxHash)
	receipt, err := d.backend.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		if entry.Status == ledger.StatusInFlight {
			return nil, entry.TxHash, false, ErrPending
		}
		d.logger.Warn("journaled transaction not found, resubmitting", zap.String("key", key), zap.String("tx", entry.TxHash))
		return nil, "", false, d.markFailed(entry)
	}
	if err != nil {
		return nil, entry.TxHash, false, fmt.Errorf("receipt of %s: %w", entry.TxHash, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		d.logger.Warn("journaled transaction reverted, resubmitting", zap.String("key", key), zap.String("tx", entry.TxHash))
		if err := d.markFailed(entry); err != nil {
			return nil, entry.TxHash, false, err
		}
		return nil, "", false, nil
	}
	return receipt, entry.TxHash, true, nil
}

func (d *Deployer) markFailed(entry ledger.JournalEntry) error {
	entry.Status = ledger.StatusFailed
	return d.mark(entry)
}

// submit signs and sends a transaction. to == nil creates a contract.
func (d *Deployer) submit(ctx context.Context, entry ledger.JournalEntry, to *common.Address, data []byte) (*types.Transaction, error) {
	from := d.signer.Address()

	balance, err := d.backend.BalanceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", from.Hex(), err)
	}
	if balance.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnfunded, from.Hex())
	}

	nonce, err := d.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	gasPrice := d.cfg.GasPrice
	if gasPrice == nil {
		gasPrice, err = d.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("gas price: %w", err)
		}
	}

	gasLimit, err := d.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     from,
		To:       to,
		GasPrice: gasPrice,
		Value:    big.NewInt(0),
		Data:     data,
	})
	if err != nil {
		if to != nil {
			return nil, fmt.Errorf("estimate gas: %w", err)
		}
		gasLimit = d.cfg.DefaultGasLimit
		d.logger.Warn("gas estimation failed, using default", zap.Uint64("gas_limit", gasLimit), zap.Error(err))
	}
	gasLimit = gasLimit * (100 + d.cfg.GasBufferPercent) / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := d.signer.SignTx(tx, d.chainID)
	if err != nil {
		return nil, err
	}

	entry.Status = ledger.StatusInFlight
	entry.TxHash = signed.Hash().Hex()
	if err := d.mark(entry); err != nil {
		return signed, fmt.Errorf("journal: %w", err)
	}
	if err := d.backend.SendTransaction(ctx, signed); err != nil {
		_ = d.markFailed(entry)
		return signed, fmt.Errorf("send transaction: %w", err)
	}
	return signed, nil
}

// confirm waits for tx under the confirm timeout. A timeout leaves the
// journal in-flight so the next run can pick the receipt up.
func (d *Deployer) confirm(ctx context.Context, entry ledger.JournalEntry, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.ConfirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, d.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		entry.TxHash = tx.Hash().Hex()
		_ = d.markFailed(entry)
		return nil, ErrReverted
	}
	return receipt, nil
}

func (d *Deployer) record(ctx context.Context, kind, step, contract string, receipt *types.Receipt) model.DeploymentRecord {
	record := model.DeploymentRecord{
		RunID:       d.cfg.RunID,
		ChainID:     d.chainID.Uint64(),
		Kind:        kind,
		Step:        step,
		Contract:    contract,
		TxHash:      receipt.TxHash.Hex(),
		GasUsed:     receipt.GasUsed,
		Deployer:    d.signer.Address().Hex(),
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if receipt.BlockNumber != nil {
		record.BlockNumber = receipt.BlockNumber.Uint64()
		if header, err := d.backend.HeaderByNumber(ctx, receipt.BlockNumber); err == nil {
			record.BlockTime = header.Time
		} else {
			d.logger.Debug("block header fetch failed", zap.Uint64("block", record.BlockNumber), zap.Error(err))
		}
	}
	return record
}

// emit hands the record to the sinks. The chain and the ledger already hold
// the result, so a sink failure is logged rather than returned.
func (d *Deployer) emit(ctx context.Context, record model.DeploymentRecord) {
	if d.sink == nil {
		return
	}
	if err := d.sink.PutRecords(ctx, []model.DeploymentRecord{record}); err != nil {
		d.logger.Warn("store deployment record failed", zap.String("step", record.Step), zap.Error(err))
	}
}

func txHashOf(tx *types.Transaction) string {
	if tx == nil {
		return ""
	}
	return tx.Hash().Hex()
}
