package domain

// Network identifies a chain deployment of the protocol.
type Network string

// Supported networks.
const (
	NetworkMainnet  Network = "mainnet"
	NetworkGnosis   Network = "gnosis"
	NetworkArbitrum Network = "arbitrum-one"
)

// AllNetworks lists every supported network.
func AllNetworks() []Network {
	return []Network{NetworkMainnet, NetworkGnosis, NetworkArbitrum}
}

// Valid reports whether n is a known network.
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkGnosis, NetworkArbitrum:
		return true
	}
	return false
}
