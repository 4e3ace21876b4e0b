package registry

import "github.com/ethereum/go-ethereum/common"

// Logical contract names shared by the registry and the deployment plan.
const (
	StableSwapInfo              = "StableSwapInfo"
	StableSwapThreePoolInfo     = "StableSwapThreePoolInfo"
	StableSwapTwoPoolInfo       = "StableSwapTwoPoolInfo"
	StableSwapLPFactory         = "StableSwapLPFactory"
	StableSwapTwoPoolDeployer   = "StableSwapTwoPoolDeployer"
	StableSwapThreePoolDeployer = "StableSwapThreePoolDeployer"
	StableSwapFactory           = "StableSwapFactory"
	SmartRouterHelperLibrary    = "SmartRouterHelperLibrary"
	StableSwapRouter            = "StableSwapRouter"
)

var contractNames = []string{
	StableSwapInfo,
	StableSwapThreePoolInfo,
	StableSwapTwoPoolInfo,
	StableSwapLPFactory,
	StableSwapTwoPoolDeployer,
	StableSwapThreePoolDeployer,
	StableSwapFactory,
	SmartRouterHelperLibrary,
	StableSwapRouter,
}

var listAddr = map[uint64]map[string]common.Address{
	BSCTestnet.ChainID: {
		StableSwapInfo:              common.HexToAddress("0xec36d72EA6D6436EB0fe69C72017D43A1a79D7FB"),
		StableSwapThreePoolInfo:     common.HexToAddress("0x7EB51b2dd9a989e33EeD0721b703C16F4D85EFD7"),
		StableSwapTwoPoolInfo:       common.HexToAddress("0xC35b4168Ac96D81158Df66bc778ddc786203933e"),
		StableSwapLPFactory:         common.HexToAddress("0xD49157e5FD3F49224D734DA99cB063001bad8eFa"),
		StableSwapTwoPoolDeployer:   common.HexToAddress("0xaeCb6253844c1c8f849b0F36f50eaea92286d352"),
		StableSwapThreePoolDeployer: common.HexToAddress("0x36E0A19d121FF1f6d14d32633994Ae04f5fCc75c"),
		StableSwapFactory:           common.HexToAddress("0x70711cb5044a21dC76501c423862b39BF4628B05"),
		SmartRouterHelperLibrary:    common.HexToAddress("0x205c5D534b8848f4c399414B10Bee526Dca7a8dA"),
		StableSwapRouter:            common.HexToAddress("0x6a1a21b1BA32e9749Ac07Dfe4B4A0F70aDc4026e"),
	},
	SapphireTestnet.ChainID: {
		StableSwapInfo:              common.HexToAddress("0x73a15db39E99c23e9C0928b4be01D0DA496D8e35"),
		StableSwapThreePoolInfo:     common.HexToAddress("0x63e504af9Dea2981a002187B9c2BdD8C0e79B2f2"),
		StableSwapTwoPoolInfo:       common.HexToAddress("0xd930F92324007AdAC530847D5DD3511249547b48"),
		StableSwapLPFactory:         common.HexToAddress("0xed830DFEb8FcDEBab5DA36773EC986aB4C27c53E"),
		StableSwapTwoPoolDeployer:   common.HexToAddress("0x3484dD477dbF36a5C94d67F54890D73d09B9Aff1"),
		StableSwapThreePoolDeployer: common.HexToAddress("0xd83F21A1a7A175001245a6631366a0CAefD0ccaC"),
		StableSwapFactory:           common.HexToAddress("0x5211c84b98Dcfb362A4ADdc122Fd47EE47edFFad"),
		SmartRouterHelperLibrary:    common.HexToAddress("0xd29CB0859eb20931Eae783729089E0dc6A86e9c9"),
		StableSwapRouter:            common.HexToAddress("0x9dd45083F444Dc1d32bF4acc5490ba01af7B0fda"),
	},
}
