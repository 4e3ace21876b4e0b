package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stableDeploy/internal/registry"
)

type fakeChain struct {
	responses map[common.Address]map[string][]byte
	code      map[common.Address][]byte
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		responses: make(map[common.Address]map[string][]byte),
		code:      make(map[common.Address][]byte),
	}
}

func (f *fakeChain) respond(t *testing.T, to common.Address, parsed abi.ABI, method string, args []interface{}, outputs ...interface{}) {
	t.Helper()
	data, err := parsed.Pack(method, args...)
	require.NoError(t, err)
	out, err := parsed.Methods[method].Outputs.Pack(outputs...)
	require.NoError(t, err)
	if f.responses[to] == nil {
		f.responses[to] = make(map[string][]byte)
	}
	f.responses[to][hexutil.Encode(data)] = out
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	out, ok := f.responses[*msg.To][hexutil.Encode(msg.Data)]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return out, nil
}

func (f *fakeChain) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	return f.code[account], nil
}

func (f *fakeChain) token(t *testing.T, addr common.Address, symbol string, decimals uint8) {
	erc20, err := ERC20ABI()
	require.NoError(t, err)
	f.respond(t, addr, erc20, "decimals", nil, decimals)
	f.respond(t, addr, erc20, "symbol", nil, symbol)
	f.respond(t, addr, erc20, "name", nil, symbol+" token")
	f.respond(t, addr, erc20, "totalSupply", nil, big.NewInt(1_000_000))
}

func (f *fakeChain) pool(t *testing.T, p registry.Pool, owner common.Address) {
	poolABI, err := StableSwapPoolABI()
	require.NoError(t, err)
	for i, coin := range p.UnderlyingTokens {
		f.respond(t, p.Address, poolABI, "coins", []interface{}{big.NewInt(int64(i))}, coin.Address)
	}
	f.respond(t, p.Address, poolABI, "token", nil, p.LPToken.Address)
	f.respond(t, p.Address, poolABI, "fee", nil, big.NewInt(1_000_000))
	f.respond(t, p.Address, poolABI, "admin_fee", nil, big.NewInt(5_000_000_000))
	f.respond(t, p.Address, poolABI, "owner", nil, owner)
}

func TestFetchTokenMeta(t *testing.T) {
	fc := newFakeChain()
	usdc := common.HexToAddress("0x9b20cBFbC710147f1c9493bd365156B155aBC453")
	fc.token(t, usdc, "USDC", 6)

	meta, err := FetchTokenMeta(context.Background(), fc, usdc, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), meta.Decimals)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Equal(t, "USDC token", meta.Name)
	assert.Equal(t, "1000000", meta.TotalSupply)
}

func TestFetchTokenMetaBytes32Symbol(t *testing.T) {
	fc := newFakeChain()
	token := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	erc20, err := ERC20ABI()
	require.NoError(t, err)
	b32, err := erc20ABIBytes32Instance()
	require.NoError(t, err)

	var symbol [32]byte
	copy(symbol[:], "MKR")
	fc.respond(t, token, erc20, "decimals", nil, uint8(18))
	fc.respond(t, token, b32, "symbol", nil, symbol)

	meta, err := FetchTokenMeta(context.Background(), fc, token, nil)
	require.NoError(t, err)
	assert.Equal(t, "MKR", meta.Symbol)
	assert.Empty(t, meta.Name)
}

func TestFetchTokenMetaRequiresDecimals(t *testing.T) {
	_, err := FetchTokenMeta(context.Background(), newFakeChain(), common.HexToAddress("0x01"), nil)
	assert.Error(t, err)
}

func TestFetchPoolMeta(t *testing.T) {
	fc := newFakeChain()
	p, ok := registry.PoolByName(registry.BSCTestnet.ChainID, "sBNB-vBNB")
	require.True(t, ok)
	owner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	fc.pool(t, p, owner)

	meta, err := FetchPoolMeta(context.Background(), fc, p.Address, p.Type, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{p.UnderlyingTokens[0].Address.Hex(), p.UnderlyingTokens[1].Address.Hex()}, meta.Coins)
	assert.Equal(t, p.LPToken.Address.Hex(), meta.LPToken)
	assert.Equal(t, "1000000", meta.Fee)
	assert.Equal(t, "5000000000", meta.AdminFee)
	assert.Equal(t, owner.Hex(), meta.Owner)
}

func consistentChain(t *testing.T, chainID uint64) *fakeChain {
	fc := newFakeChain()
	for _, tok := range registry.TokensFor(chainID) {
		fc.token(t, tok.Address, tok.Symbol, tok.Decimals)
	}
	factory, ok := registry.ContractAddress(chainID, registry.StableSwapFactory)
	require.True(t, ok)
	for _, p := range registry.PoolsFor(chainID) {
		fc.pool(t, p, factory)
	}
	ownable, err := OwnableABI()
	require.NoError(t, err)
	for _, name := range registry.ContractNames(chainID) {
		addr, _ := registry.ContractAddress(chainID, name)
		fc.code[addr] = []byte{0x60, 0x80}
		fc.respond(t, addr, ownable, "owner", nil, factory)
	}
	return fc
}

func TestVerifierConsistentChain(t *testing.T) {
	fc := consistentChain(t, registry.SapphireTestnet.ChainID)
	v := NewVerifier(fc, nil, 0, time.Millisecond)

	findings, err := v.Verify(context.Background(), registry.SapphireTestnet.ChainID)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestVerifierReportsDrift(t *testing.T) {
	chainID := registry.BSCTestnet.ChainID
	fc := consistentChain(t, chainID)

	usdt, ok := registry.TokenBySymbol(chainID, "USDT")
	require.True(t, ok)
	fc.token(t, usdt.Address, "USDT", 18)

	router, ok := registry.ContractAddress(chainID, registry.StableSwapRouter)
	require.True(t, ok)
	delete(fc.code, router)

	lpFactory, ok := registry.ContractAddress(chainID, registry.StableSwapLPFactory)
	require.True(t, ok)
	ownable, err := OwnableABI()
	require.NoError(t, err)
	fc.respond(t, lpFactory, ownable, "owner", nil, common.HexToAddress("0x00000000000000000000000000000000000000cc"))

	findings, err := NewVerifier(fc, nil, 0, time.Millisecond).Verify(context.Background(), chainID)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, Finding{Subject: registry.StableSwapRouter, Field: "code", Want: "present", Got: "empty"}, findings[0])
	assert.Equal(t, registry.StableSwapLPFactory, findings[1].Subject)
	assert.Equal(t, "owner", findings[1].Field)
	assert.Equal(t, Finding{Subject: "USDT", Field: "decimals", Want: "6", Got: "18"}, findings[2])
}

func TestFeeRatio(t *testing.T) {
	assert.Equal(t, 0.0004, feeRatio("4000000"))
	assert.Zero(t, feeRatio("nope"))
}
