package plan

import (
	"stableDeploy/internal/ledger"
	"stableDeploy/internal/registry"
)

const smartRouterHelperLib = "SmartRouterHelper"

func deploy(contract string, args ...string) Step {
	s := Step{Name: contract, Kind: KindDeploy, Contract: contract, LedgerKey: ledger.KeyFor(contract)}
	for _, key := range args {
		s.Args = append(s.Args, Arg{Ledger: key})
	}
	return s
}

func transferOwnership(contract, to string) Step {
	return Step{
		Name:     "transfer" + contract,
		Kind:     KindLink,
		Contract: contract,
		Target:   ledger.KeyFor(contract),
		Method:   "transferOwnership",
		Args:     []Arg{{Ledger: to}},
	}
}

// Default returns the stable-swap deployment graph.
func Default() *Plan {
	var (
		lpFactory   = ledger.KeyFor(registry.StableSwapLPFactory)
		twoDeployer = ledger.KeyFor(registry.StableSwapTwoPoolDeployer)
		threeDeploy = ledger.KeyFor(registry.StableSwapThreePoolDeployer)
		factory     = ledger.KeyFor(registry.StableSwapFactory)
		twoInfo     = ledger.KeyFor(registry.StableSwapTwoPoolInfo)
		threeInfo   = ledger.KeyFor(registry.StableSwapThreePoolInfo)
		info        = ledger.KeyFor(registry.StableSwapInfo)
		helper      = ledger.KeyFor(registry.SmartRouterHelperLibrary)
	)

	// The helper library is recorded under its registry name but compiled as
	// SmartRouterHelper.
	helperLib := Step{Name: registry.SmartRouterHelperLibrary, Kind: KindDeploy, Contract: smartRouterHelperLib, LedgerKey: helper}

	router := deploy(registry.StableSwapRouter, factory, info)
	router.Libraries = map[string]string{smartRouterHelperLib: helper}

	return &Plan{
		Name: "stable-swap",
		Steps: []Step{
			deploy(registry.StableSwapLPFactory),
			deploy(registry.StableSwapTwoPoolDeployer),
			deploy(registry.StableSwapThreePoolDeployer),
			deploy(registry.StableSwapFactory, lpFactory, twoDeployer, threeDeploy),
			transferOwnership(registry.StableSwapTwoPoolDeployer, factory),
			transferOwnership(registry.StableSwapThreePoolDeployer, factory),
			transferOwnership(registry.StableSwapLPFactory, factory),
			deploy(registry.StableSwapTwoPoolInfo),
			deploy(registry.StableSwapThreePoolInfo),
			deploy(registry.StableSwapInfo, twoInfo, threeInfo),
			helperLib,
			router,
		},
	}
}
