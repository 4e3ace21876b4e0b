package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stableDeploy/internal/chain"
	"stableDeploy/internal/model"
	"stableDeploy/internal/registry"
)

// Inspector is the read-only chain surface used by Verifier.
type Inspector interface {
	Caller
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Finding is one disagreement between the static registry and the chain.
type Finding struct {
	Subject string `json:"subject"`
	Field   string `json:"field"`
	Want    string `json:"want"`
	Got     string `json:"got"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s: want %s, got %s", f.Subject, f.Field, f.Want, f.Got)
}

// Verifier compares registry tables with live contract state.
type Verifier struct {
	client     Inspector
	logger     *zap.Logger
	retries    int
	retryDelay time.Duration
	tokens     *TokenMetaCache
}

func NewVerifier(client Inspector, logger *zap.Logger, retries int, retryDelay time.Duration) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		client:     client,
		logger:     logger,
		retries:    retries,
		retryDelay: retryDelay,
		tokens:     NewTokenMetaCache(),
	}
}

// Verify runs every check for chainID. Only context errors abort; failed
// reads are reported as findings.
func (v *Verifier) Verify(ctx context.Context, chainID uint64) ([]Finding, error) {
	var out []Finding
	for _, check := range []func(context.Context, uint64) ([]Finding, error){
		v.VerifyContracts,
		v.VerifyTokens,
		v.VerifyPools,
	} {
		findings, err := check(ctx, chainID)
		if err != nil {
			return out, err
		}
		out = append(out, findings...)
	}
	return out, nil
}

// VerifyContracts checks that every registered contract has code, and that
// ownership of the pool deployers and LP factory was handed to the factory.
func (v *Verifier) VerifyContracts(ctx context.Context, chainID uint64) ([]Finding, error) {
	var out []Finding
	for _, name := range registry.ContractNames(chainID) {
		addr, _ := registry.ContractAddress(chainID, name)
		var code []byte
		err := v.retry(ctx, func(ctx context.Context) error {
			var err error
			code, err = v.client.CodeAt(ctx, addr, nil)
			return err
		})
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		switch {
		case err != nil:
			out = append(out, Finding{Subject: name, Field: "code", Want: "present", Got: "error: " + err.Error()})
		case len(code) == 0:
			out = append(out, Finding{Subject: name, Field: "code", Want: "present", Got: "empty"})
		}
	}

	factory, ok := registry.ContractAddress(chainID, registry.StableSwapFactory)
	if !ok {
		return out, nil
	}
	for _, name := range []string{
		registry.StableSwapLPFactory,
		registry.StableSwapTwoPoolDeployer,
		registry.StableSwapThreePoolDeployer,
	} {
		addr, ok := registry.ContractAddress(chainID, name)
		if !ok {
			continue
		}
		var owner common.Address
		err := v.retry(ctx, func(ctx context.Context) error {
			var err error
			owner, err = FetchOwner(ctx, v.client, addr)
			return err
		})
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		switch {
		case err != nil:
			out = append(out, Finding{Subject: name, Field: "owner", Want: factory.Hex(), Got: "error: " + err.Error()})
		case owner != factory:
			out = append(out, Finding{Subject: name, Field: "owner", Want: factory.Hex(), Got: owner.Hex()})
		}
	}
	return out, nil
}

// VerifyTokens checks decimals and symbol of every registered token.
func (v *Verifier) VerifyTokens(ctx context.Context, chainID uint64) ([]Finding, error) {
	var out []Finding
	for _, tok := range registry.TokensFor(chainID) {
		meta, err := v.tokenMeta(ctx, tok.Address)
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if err != nil {
			out = append(out, Finding{Subject: tok.Symbol, Field: "metadata", Want: "readable", Got: "error: " + err.Error()})
			continue
		}
		if meta.Decimals != tok.Decimals {
			out = append(out, Finding{Subject: tok.Symbol, Field: "decimals",
				Want: fmt.Sprint(tok.Decimals), Got: fmt.Sprint(meta.Decimals)})
		}
		if meta.Symbol != "" && meta.Symbol != tok.Symbol {
			out = append(out, Finding{Subject: tok.Symbol, Field: "symbol", Want: tok.Symbol, Got: meta.Symbol})
		}
	}
	return out, nil
}

// VerifyPools checks coin order and LP token of every registered pool.
func (v *Verifier) VerifyPools(ctx context.Context, chainID uint64) ([]Finding, error) {
	var out []Finding
	for _, p := range registry.PoolsFor(chainID) {
		var meta model.PoolMeta
		err := v.retry(ctx, func(ctx context.Context) error {
			var err error
			meta, err = FetchPoolMeta(ctx, v.client, p.Address, p.Type, v.logger)
			return err
		})
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if err != nil {
			out = append(out, Finding{Subject: p.Name, Field: "pool", Want: "readable", Got: "error: " + err.Error()})
			continue
		}
		want := make([]string, 0, len(p.UnderlyingTokens))
		for _, t := range p.UnderlyingTokens {
			want = append(want, t.Address.Hex())
		}
		if strings.Join(want, ",") != strings.Join(meta.Coins, ",") {
			out = append(out, Finding{Subject: p.Name, Field: "coins",
				Want: strings.Join(want, ","), Got: strings.Join(meta.Coins, ",")})
		}
		if meta.LPToken != p.LPToken.Address.Hex() {
			out = append(out, Finding{Subject: p.Name, Field: "lp token", Want: p.LPToken.Address.Hex(), Got: meta.LPToken})
		}
		v.logger.Debug("pool fees",
			zap.String("pool", p.Name),
			zap.String("fee", meta.Fee),
			zap.String("admin_fee", meta.AdminFee),
			zap.Float64("fee_ratio", feeRatio(meta.Fee)),
			zap.Float64("registry_fee", p.Fee),
		)
	}
	return out, nil
}

func (v *Verifier) tokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	if meta, ok := v.tokens.Get(token); ok {
		return meta, nil
	}
	var meta model.TokenMeta
	err := v.retry(ctx, func(ctx context.Context) error {
		var err error
		meta, err = FetchTokenMeta(ctx, v.client, token, v.logger)
		return err
	})
	if err != nil {
		return meta, err
	}
	v.tokens.Set(token, meta)
	return meta, nil
}

func (v *Verifier) retry(ctx context.Context, fn func(context.Context) error) error {
	return chain.WithRetry(ctx, v.retries, v.retryDelay, fn)
}

// feeRatio converts an on-chain fee into a fraction of FeeDenominator.
func feeRatio(raw string) float64 {
	r, ok := new(big.Rat).SetString(raw)
	if !ok {
		return 0
	}
	f, _ := r.Quo(r, big.NewRat(FeeDenominator, 1)).Float64()
	return f
}
