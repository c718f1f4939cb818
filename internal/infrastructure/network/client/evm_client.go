package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var errEmptyResult = errors.New("node returned an empty result")

// EVMClient implements the port.NodeClient interface for the node a profile points to.
type EVMClient struct {
	ethClient      *ethclient.Client
	profile        entity.NetworkProfile
	rpcCallTimeout time.Duration
}

// probeBlock holds the only header fields read from the latest block.
type probeBlock struct {
	Number   hexutil.Uint64 `json:"number"`
	GasLimit hexutil.Uint64 `json:"gasLimit"`
}

// NewEVMClient dials the endpoint of the given profile.
func NewEVMClient(ctx context.Context, profile entity.NetworkProfile, connectionTimeout, rpcCallTimeout time.Duration) (port.NodeClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, profile.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s for profile %s: %w", profile.Endpoint(), profile.Name, err)
	}
	return &EVMClient{ethClient: client, profile: profile, rpcCallTimeout: rpcCallTimeout}, nil
}

// Snapshot probes the node with a single JSON-RPC batch. Per-call failures are reported
// in the snapshot results; an error is returned only when the batch itself fails.
func (c *EVMClient) Snapshot(ctx context.Context) (entity.NodeSnapshot, error) {
	snapshot := entity.NodeSnapshot{
		Endpoint: c.profile.Endpoint(),
		Results:  make([]entity.ProbeResultItem, len(entity.AllProbeRequests)),
	}

	var (
		networkID     string
		chainID       *hexutil.Big
		block         *probeBlock
		gasPrice      *hexutil.Big
		balance       *hexutil.Big
		clientVersion string
	)

	batchElems := make([]rpc.BatchElem, 0, len(entity.AllProbeRequests))
	index := make([]int, 0, len(entity.AllProbeRequests))
	for i, reqType := range entity.AllProbeRequests {
		snapshot.Results[i] = entity.ProbeResultItem{Type: reqType}

		elem := rpc.BatchElem{Method: reqType.Method()}
		switch reqType {
		case entity.NetworkIDRequest:
			elem.Result = &networkID
		case entity.ChainIDRequest:
			elem.Result = &chainID
		case entity.LatestBlockRequest:
			elem.Args = []interface{}{"latest", false}
			elem.Result = &block
		case entity.GasPriceRequest:
			elem.Result = &gasPrice
		case entity.BalanceRequest:
			if !common.IsHexAddress(c.profile.From) {
				snapshot.Results[i].Error = fmt.Errorf("sender %q is not a valid address", c.profile.From)
				continue
			}
			elem.Args = []interface{}{common.HexToAddress(c.profile.From), "latest"}
			elem.Result = &balance
		case entity.ClientVersionRequest:
			elem.Result = &clientVersion
		default:
			snapshot.Results[i].Error = fmt.Errorf("unknown probe request type: %v", reqType)
			continue
		}
		batchElems = append(batchElems, elem)
		index = append(index, i)
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.ethClient.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return snapshot, fmt.Errorf("RPC batch call to %s failed: %w", snapshot.Endpoint, err)
	}

	for j, elem := range batchElems {
		i := index[j]
		if elem.Error != nil {
			snapshot.Results[i].Error = fmt.Errorf("%s: %w", elem.Method, elem.Error)
			continue
		}

		switch entity.AllProbeRequests[i] {
		case entity.NetworkIDRequest:
			if networkID == "" {
				snapshot.Results[i].Error = fmt.Errorf("%s: %w", elem.Method, errEmptyResult)
				continue
			}
			snapshot.NetworkID = networkID
		case entity.ChainIDRequest:
			if chainID == nil {
				snapshot.Results[i].Error = fmt.Errorf("%s: %w", elem.Method, errEmptyResult)
				continue
			}
			snapshot.ChainID = (*big.Int)(chainID)
		case entity.LatestBlockRequest:
			if block == nil {
				snapshot.Results[i].Error = fmt.Errorf("%s: %w", elem.Method, errEmptyResult)
				continue
			}
			snapshot.BlockNumber = uint64(block.Number)
			snapshot.BlockGasLimit = uint64(block.GasLimit)
		case entity.GasPriceRequest:
			if gasPrice == nil {
				snapshot.Results[i].Error = fmt.Errorf("%s: %w", elem.Method, errEmptyResult)
				continue
			}
			snapshot.GasPrice = (*big.Int)(gasPrice)
		case entity.BalanceRequest:
			if balance == nil {
				snapshot.Balance = big.NewInt(0)
				continue
			}
			snapshot.Balance = (*big.Int)(balance)
		case entity.ClientVersionRequest:
			snapshot.ClientVersion = clientVersion
		}
	}
	return snapshot, nil
}

// Profile returns the network profile for this client.
func (c *EVMClient) Profile() entity.NetworkProfile {
	return c.profile
}

// Close releases the RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
