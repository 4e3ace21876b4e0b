package registry

import "strings"

// Network identifies a deployment target.
type Network struct {
	Name    string `json:"name"`
	ChainID uint64 `json:"chainId"`
}

var (
	BSCTestnet      = Network{Name: "bscTestnet", ChainID: 97}
	SapphireTestnet = Network{Name: "sapphireTestnet", ChainID: 23295}
)

var networks = []Network{BSCTestnet, SapphireTestnet}

// Networks returns every known network in declaration order.
func Networks() []Network {
	out := make([]Network, len(networks))
	copy(out, networks)
	return out
}

// NetworkByName looks a network up by its case-insensitive name.
func NetworkByName(name string) (Network, bool) {
	for _, n := range networks {
		if strings.EqualFold(n.Name, strings.TrimSpace(name)) {
			return n, true
		}
	}
	return Network{}, false
}

// NetworkByChainID looks a network up by chain ID.
func NetworkByChainID(chainID uint64) (Network, bool) {
	for _, n := range networks {
		if n.ChainID == chainID {
			return n, true
		}
	}
	return Network{}, false
}
