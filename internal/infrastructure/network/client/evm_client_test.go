package client

import (
	"context"
	"errors"
	"math/big"
	"net"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"netprofile/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

type fakeNet struct{ id string }

func (s *fakeNet) Version() string { return s.id }

type fakeEth struct {
	chainID  int64
	gasLimit uint64
	gasPrice int64
	balances map[common.Address]*big.Int
}

func (s *fakeEth) ChainId() *hexutil.Big { return (*hexutil.Big)(big.NewInt(s.chainID)) }

func (s *fakeEth) GasPrice() *hexutil.Big { return (*hexutil.Big)(big.NewInt(s.gasPrice)) }

func (s *fakeEth) GetBalance(addr common.Address, _ string) *hexutil.Big {
	if b, ok := s.balances[addr]; ok {
		return (*hexutil.Big)(b)
	}
	return (*hexutil.Big)(big.NewInt(0))
}

func (s *fakeEth) GetBlockByNumber(_ string, _ bool) map[string]interface{} {
	return map[string]interface{}{
		"number":   hexutil.Uint64(42),
		"gasLimit": hexutil.Uint64(s.gasLimit),
	}
}

type fakeWeb3 struct{ fail bool }

func (s *fakeWeb3) ClientVersion() (string, error) {
	if s.fail {
		return "", errors.New("method disabled")
	}
	return "Ganache/v7.9.1/EthereumJS TestRPC/v7.9.1/ethereum-js", nil
}

const testSender = "0x2602302Bb7B2D6E94a8f9A9140C27d42C72F3ED3"

// startFakeNode serves a minimal JSON-RPC node and returns a profile pointing at it.
func startFakeNode(t *testing.T, web3Fails bool) entity.NetworkProfile {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("net", &fakeNet{id: "3"}))
	require.NoError(t, server.RegisterName("eth", &fakeEth{
		chainID:  3,
		gasLimit: 8000000,
		gasPrice: 1000000000,
		balances: map[common.Address]*big.Int{
			common.HexToAddress(testSender): new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18)),
		},
	}))
	require.NoError(t, server.RegisterName("web3", &fakeWeb3{fail: web3Fails}))

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		server.Stop()
	})
	return profileFor(t, ts.URL)
}

func profileFor(t *testing.T, rawURL string) entity.NetworkProfile {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return entity.NetworkProfile{
		Name:      "development",
		Host:      host,
		Port:      port,
		NetworkID: "3",
		Gas:       7984452,
		GasPrice:  2000000000,
		From:      testSender,
	}
}

func TestEVMClientSnapshot(t *testing.T) {
	profile := startFakeNode(t, false)

	c, err := NewEVMClient(context.Background(), profile, time.Second, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, profile, c.Profile())

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.Failed())
	require.Len(t, snap.Results, len(entity.AllProbeRequests))

	require.Equal(t, profile.Endpoint(), snap.Endpoint)
	require.Equal(t, "3", snap.NetworkID)
	require.Equal(t, int64(3), snap.ChainID.Int64())
	require.Equal(t, uint64(42), snap.BlockNumber)
	require.Equal(t, uint64(8000000), snap.BlockGasLimit)
	require.Equal(t, int64(1000000000), snap.GasPrice.Int64())
	require.Equal(t, "5000000000000000000", snap.Balance.String())
	require.Contains(t, snap.ClientVersion, "Ganache")
}

func TestEVMClientSnapshotReportsFailedCalls(t *testing.T) {
	profile := startFakeNode(t, true)

	c, err := NewEVMClient(context.Background(), profile, time.Second, 5*time.Second)
	require.NoError(t, err)
	defer c.Close()

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	failed := snap.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, entity.ClientVersionRequest, failed[0].Type)
	require.ErrorContains(t, failed[0].Error, "web3_clientVersion")
	require.Equal(t, "3", snap.NetworkID)
	require.Empty(t, snap.ClientVersion)
}

func TestEVMClientSnapshotUnreachableNode(t *testing.T) {
	ts := httptest.NewServer(rpc.NewServer())
	profile := profileFor(t, ts.URL)
	ts.Close()

	c, err := NewEVMClient(context.Background(), profile, time.Second, 2*time.Second)
	require.NoError(t, err)
	defer c.Close()

	snap, err := c.Snapshot(context.Background())
	require.Error(t, err)
	require.Equal(t, profile.Endpoint(), snap.Endpoint)
	require.Nil(t, snap.ChainID)
}
