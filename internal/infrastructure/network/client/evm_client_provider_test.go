package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
	"netprofile/internal/infrastructure/configloader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	profile entity.NetworkProfile
	mu      sync.Mutex
	closed  bool
}

func (s *stubClient) Snapshot(context.Context) (entity.NodeSnapshot, error) {
	return entity.NodeSnapshot{Endpoint: s.profile.Endpoint()}, nil
}

func (s *stubClient) Profile() entity.NetworkProfile { return s.profile }

func (s *stubClient) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *stubClient) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func noopLog(string, ...any) {}

func TestEVMClientProviderCachesPerProfile(t *testing.T) {
	var dials []*stubClient
	dial := func(_ context.Context, p entity.NetworkProfile, _, _ time.Duration) (port.NodeClient, error) {
		c := &stubClient{profile: p}
		dials = append(dials, c)
		return c, nil
	}
	provider := newEVMClientProvider(configloader.Default(), dial, noopLog, noopLog)

	dev := entity.NetworkProfile{Name: "development", Host: "127.0.0.1", Port: 8500}
	first, err := provider.GetClient(context.Background(), dev)
	require.NoError(t, err)
	second, err := provider.GetClient(context.Background(), dev)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Len(t, dials, 1)

	moved := dev
	moved.Port = 8545
	third, err := provider.GetClient(context.Background(), moved)
	require.NoError(t, err)
	require.NotSame(t, first, third)
	require.True(t, dials[0].isClosed())
	require.Len(t, dials, 2)

	provider.CloseAll()
	require.True(t, dials[1].isClosed())

	_, err = provider.GetClient(context.Background(), moved)
	require.NoError(t, err)
	require.Len(t, dials, 3)
}

func TestEVMClientProviderDialsProfilesConcurrently(t *testing.T) {
	var inDial atomic.Int32
	release := make(chan struct{})
	dial := func(_ context.Context, p entity.NetworkProfile, _, _ time.Duration) (port.NodeClient, error) {
		inDial.Add(1)
		<-release
		return &stubClient{profile: p}, nil
	}
	provider := newEVMClientProvider(configloader.Default(), dial, noopLog, noopLog)

	var wg sync.WaitGroup
	for _, name := range []string{"development", "ropsten"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := provider.GetClient(context.Background(), entity.NetworkProfile{Name: name, Host: "127.0.0.1", Port: 8500})
			assert.NoError(t, err)
		}(name)
	}

	// Both dials must be in flight at once; a dial holding the provider lock would block the second.
	require.Eventually(t, func() bool { return inDial.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	provider.mu.Lock()
	require.Len(t, provider.clients, 2)
	provider.mu.Unlock()
}

func TestEVMClientProviderKeepsFirstClientOnRacingDials(t *testing.T) {
	var (
		mu    sync.Mutex
		dials []*stubClient
	)
	release := make(chan struct{})
	dial := func(_ context.Context, p entity.NetworkProfile, _, _ time.Duration) (port.NodeClient, error) {
		c := &stubClient{profile: p}
		mu.Lock()
		dials = append(dials, c)
		mu.Unlock()
		<-release
		return c, nil
	}
	provider := newEVMClientProvider(configloader.Default(), dial, noopLog, noopLog)
	dev := entity.NetworkProfile{Name: "development", Host: "127.0.0.1", Port: 8500}

	results := make(chan port.NodeClient, 2)
	for i := 0; i < 2; i++ {
		go func() {
			c, err := provider.GetClient(context.Background(), dev)
			assert.NoError(t, err)
			results <- c
		}()
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(dials) == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(release)

	first, second := <-results, <-results
	require.Same(t, first, second)

	closed := 0
	for _, c := range dials {
		if c.isClosed() {
			closed++
		}
	}
	require.Equal(t, 1, closed)
}

func TestEVMClientProviderDialError(t *testing.T) {
	dial := func(context.Context, entity.NetworkProfile, time.Duration, time.Duration) (port.NodeClient, error) {
		return nil, errors.New("connection refused")
	}
	var logged []string
	provider := newEVMClientProvider(configloader.Default(), dial, noopLog, func(msg string, _ ...any) {
		logged = append(logged, msg)
	})

	_, err := provider.GetClient(context.Background(), entity.NetworkProfile{Name: "development"})
	require.ErrorContains(t, err, "development")
	require.Equal(t, []string{"Failed to create EVM client"}, logged)
}

func TestNewEVMClientProviderUsesConfiguredTimeouts(t *testing.T) {
	cfg := configloader.Default()
	cfg.Performance.ConnectionTimeoutSeconds = 2
	cfg.Performance.RPCCallTimeoutSeconds = 7

	p, ok := NewEVMClientProvider(cfg, noopLog, noopLog).(*evmClientProvider)
	require.True(t, ok)
	require.Equal(t, 2*time.Second, p.connectionTimeout)
	require.Equal(t, 7*time.Second, p.rpcCallTimeout)
}
