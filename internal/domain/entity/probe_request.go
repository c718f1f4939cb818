package entity

import "math/big"

// ProbeRequestType defines the JSON-RPC call issued as part of a node probe.
type ProbeRequestType int

const (
	// NetworkIDRequest asks the node for its network id (net_version).
	NetworkIDRequest ProbeRequestType = iota
	// ChainIDRequest asks the node for its EIP-155 chain id (eth_chainId).
	ChainIDRequest
	// LatestBlockRequest fetches the latest block header fields (eth_getBlockByNumber).
	LatestBlockRequest
	// GasPriceRequest asks the node for its suggested gas price (eth_gasPrice).
	GasPriceRequest
	// BalanceRequest fetches the balance of the profile sender (eth_getBalance).
	BalanceRequest
	// ClientVersionRequest asks the node for its client version string (web3_clientVersion).
	ClientVersionRequest
)

// Method returns the JSON-RPC method name for the request type.
func (t ProbeRequestType) Method() string {
	switch t {
	case NetworkIDRequest:
		return "net_version"
	case ChainIDRequest:
		return "eth_chainId"
	case LatestBlockRequest:
		return "eth_getBlockByNumber"
	case GasPriceRequest:
		return "eth_gasPrice"
	case BalanceRequest:
		return "eth_getBalance"
	case ClientVersionRequest:
		return "web3_clientVersion"
	default:
		return "unknown"
	}
}

// AllProbeRequests lists the calls issued for a full probe, in batch order.
var AllProbeRequests = []ProbeRequestType{ //nolint:gochecknoglobals
	NetworkIDRequest,
	ChainIDRequest,
	LatestBlockRequest,
	GasPriceRequest,
	BalanceRequest,
	ClientVersionRequest,
}

// ProbeResultItem is the outcome of a single call inside a probe batch.
type ProbeResultItem struct {
	Type  ProbeRequestType
	Error error
}

// NodeSnapshot is what a node reported during one probe. Nil fields were not obtained;
// the matching entry in Results carries the reason.
type NodeSnapshot struct {
	Endpoint      string
	NetworkID     string
	ChainID       *big.Int
	BlockNumber   uint64
	BlockGasLimit uint64
	GasPrice      *big.Int
	Balance       *big.Int
	ClientVersion string
	Results       []ProbeResultItem
}

// Failed returns the calls of the snapshot that returned an error.
func (s NodeSnapshot) Failed() []ProbeResultItem {
	var failed []ProbeResultItem
	for _, r := range s.Results {
		if r.Error != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
