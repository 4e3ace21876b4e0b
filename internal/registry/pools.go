package registry

import "github.com/ethereum/go-ethereum/common"

const (
	defaultFee    = 0.01
	defaultDAOFee = 0.005
)

// tokenRef resolves a symbol against the coins table so pool entries cannot
// drift from it.
func tokenRef(chainID uint64, symbol string) Token {
	for _, t := range coins[chainID] {
		if t.Symbol == symbol {
			return t
		}
	}
	panic("registry: unknown token " + symbol)
}

func pool(chainID uint64, poolType int, tag, name, code, address, lp string, underlying ...string) Pool {
	tokens := make([]Token, 0, len(underlying))
	for _, symbol := range underlying {
		tokens = append(tokens, tokenRef(chainID, symbol))
	}
	return Pool{
		Type:             poolType,
		Tag:              tag,
		Name:             name,
		Code:             code,
		Address:          common.HexToAddress(address),
		LPToken:          tokenRef(chainID, lp),
		UnderlyingTokens: tokens,
		Fee:              defaultFee,
		DAOFee:           defaultDAOFee,
	}
}

var poolList = map[uint64][]Pool{
	BSCTestnet.ChainID: {
		pool(BSCTestnet.ChainID, 3, "USD", "3Pool", "USDC USDT DAI",
			"0xE757Df9854C6090770bDECad2f494FBD4d2246ED", "crvUSD", "DAI", "USDC", "USDT"),
		pool(BSCTestnet.ChainID, 3, "ETH", "srvETH", "sETH rETH vETH",
			"0xDD02D75dc1AF9Dfc103007624277F9A1019CC2Ad", "srvETH", "rETH", "sETH", "vETH"),
		pool(BSCTestnet.ChainID, 2, "BNB", "sBNB-vBNB", "sBNB vBNB",
			"0xB6843FF108D2aAEEED8Aaa15eA2c1ec569Eff240", "svBNB", "vBNB", "sBNB"),
		pool(BSCTestnet.ChainID, 2, "USD", "sUSDC-sUSDT", "sUSDC sUSDT",
			"0x50d503dD9EB325d3b7DDDD8D4758E66d95c9c594", "sUSDCT", "sUSDC", "sUSDT"),
		pool(BSCTestnet.ChainID, 2, "USD", "sUSDC-USDC", "sUSDC USDC",
			"0xfE01B62E171cB12A845FBb7072b4693b0e29bcCa", "sUSDC/USDC", "sUSDC", "USDC"),
	},
	SapphireTestnet.ChainID: {
		pool(SapphireTestnet.ChainID, 3, "USD", "3Pool", "USDC USDT DAI",
			"0x87d41Dc34e9a685E476f2859C18AfFa12e03dF34", "crvUSD", "USDT", "USDC", "DAI"),
		pool(SapphireTestnet.ChainID, 3, "ETH", "srvETH", "sETH rETH vETH",
			"0xD278abA02C181bae1644ba1275663Bbc23194C1B", "srvETH", "rETH", "vETH", "sETH"),
		pool(SapphireTestnet.ChainID, 2, "BNB", "sBNB-vBNB", "sBNB vBNB",
			"0x8e37dfbFF2C00993d50DDDfeA97ec2c3C8ED4c6D", "svBNB", "vBNB", "sBNB"),
		pool(SapphireTestnet.ChainID, 2, "USD", "sUSDC-sUSDT", "sUSDC sUSDT",
			"0xd49D92b23efbB64d1270A28f07B150962a2bD896", "sUSDCT", "sUSDT", "sUSDC"),
		pool(SapphireTestnet.ChainID, 2, "USD", "sUSDC-USDC", "sUSDC USDC",
			"0xc5144F1465Ef5c973bF0570Da15fDa5932976108", "sUSDC/USDC", "sUSDC", "USDC"),
	},
}
