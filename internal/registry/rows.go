package registry

import "stableDeploy/internal/model"

// Rows flattens the tables of chainID into storage rows.
func Rows(chainID uint64) ([]model.RegistryToken, []model.RegistryPool, []model.RegistryContract) {
	var tokens []model.RegistryToken
	for _, t := range coins[chainID] {
		tokens = append(tokens, model.RegistryToken{
			ChainID:  chainID,
			Symbol:   t.Symbol,
			Address:  t.Address.Hex(),
			Decimals: t.Decimals,
		})
	}

	var pools []model.RegistryPool
	for _, p := range poolList[chainID] {
		coinAddrs := make([]string, 0, len(p.UnderlyingTokens))
		for _, t := range p.UnderlyingTokens {
			coinAddrs = append(coinAddrs, t.Address.Hex())
		}
		pools = append(pools, model.RegistryPool{
			ChainID:  chainID,
			Name:     p.Name,
			Address:  p.Address.Hex(),
			PoolType: p.Type,
			Tag:      p.Tag,
			Code:     p.Code,
			LPToken:  p.LPToken.Address.Hex(),
			LPSymbol: p.LPToken.Symbol,
			Coins:    coinAddrs,
			Fee:      p.Fee,
			DAOFee:   p.DAOFee,
		})
	}

	var contracts []model.RegistryContract
	for _, name := range ContractNames(chainID) {
		contracts = append(contracts, model.RegistryContract{
			ChainID: chainID,
			Name:    name,
			Address: listAddr[chainID][name].Hex(),
		})
	}
	return tokens, pools, contracts
}
