package registry

import "github.com/ethereum/go-ethereum/common"

func tok(symbol, address string, decimals uint8) Token {
	return Token{Symbol: symbol, Address: common.HexToAddress(address), Decimals: decimals}
}

// coins lists underlying assets followed by the LP tokens of the pools below.
var coins = map[uint64][]Token{
	BSCTestnet.ChainID: {
		tok("USDC", "0x9b20cBFbC710147f1c9493bd365156B155aBC453", 6),
		tok("USDT", "0xf76C95DE78a6A437142aAe382167303C3709078A", 6),
		tok("DAI", "0x0C9999C291EE7a390A7C3fe4738D07da6d24E845", 18),
		tok("sETH", "0x4824bf014FF58cB7b02daC002d31798f0Be586Cf", 18),
		tok("rETH", "0x1411dF028A50B28810EC0BbdC7684AF26701c0e2", 18),
		tok("vETH", "0x4a40DF477C2125982207C09eE130936e43A5d9C3", 18),
		tok("vBNB", "0x005cdf176E3Bf461079b254DF46b22c4c69483C6", 18),
		tok("sBNB", "0xD3235e0EA83ff2892e9296E3ad36149f9Fb8FF24", 18),
		tok("sUSDC", "0x5E3FdB7Cdd29C39a53249aB906D1E1beB0b56b75", 6),
		tok("sUSDT", "0x8B7B2c2513E35c58a498141e3448A33564f3c998", 6),
		tok("crvUSD", "0xD74d1b99A6F6e8C7E2ad4665B72483Fcdc7432bE", 18),
		tok("srvETH", "0x0EbC822a8010a05D107c0fFF345923EB756a8774", 18),
		tok("svBNB", "0x4fb23FcA628867b5692b45bf51ad10299d207182", 18),
		tok("sUSDCT", "0xc906BAE136F5DAbF68a9dcc8425f2AA1228f1E1a", 18),
		tok("sUSDC/USDC", "0x112F6c12fd1B9005a01E226eC94c9dbB3483760e", 18),
	},
	SapphireTestnet.ChainID: {
		tok("USDC", "0xB649cF2Fca36CaB5dCd4aFC51cC901a4b3cff4a8", 6),
		tok("USDT", "0x23c0E9Ee4f639BBED3689Db1659a50148116195D", 6),
		tok("DAI", "0xc78F6eA52991BFB16e22d0A2134c78f478b25913", 18),
		tok("sETH", "0xEF86D06992e8440ACA9Ab34b3B7d407C5cb2934d", 18),
		tok("rETH", "0xc8a31c0fbbebFcA00f353b7DC72a6A1D4112287C", 18),
		tok("vETH", "0xE36AeaB3AE715a436380452391EEFa2cD653b475", 18),
		tok("vBNB", "0x312F99EEfa77C1b2E6712CBbC1Bbb17DD5745D77", 18),
		tok("sBNB", "0x39557d6aA3ed5efD7c1aD977c16bDb2aC99716f8", 18),
		tok("sUSDC", "0xa287B7dB0d4a210735B95E163cC35419e0ec4332", 6),
		tok("sUSDT", "0x98E1A535ED35ED4aB75AB41615227325521077DD", 6),
		tok("crvUSD", "0x510650f33F7c11fA5E590876beFF793282d96839", 18),
		tok("srvETH", "0x22a0AE491c50f4c1CEB417b04965A02f54B32558", 18),
		tok("svBNB", "0x45ac7D9914A54FFd857dD62Cc161b350454E7D89", 18),
		tok("sUSDCT", "0xE7792dF0E61179e76778B03adccB77f630667272", 18),
		tok("sUSDC/USDC", "0x6342213Ef85edACd8a1dAAdc765e64C21Dc33aA1", 18),
	},
}
