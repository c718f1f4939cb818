package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
	"netprofile/internal/infrastructure/configloader"
)

// DialFunc creates a node client for a profile.
type DialFunc func(ctx context.Context, profile entity.NetworkProfile, connectionTimeout, rpcCallTimeout time.Duration) (port.NodeClient, error)

// evmClientProvider implements the port.NodeClientProvider interface.
type evmClientProvider struct {
	clients           map[string]port.NodeClient
	mu                sync.Mutex
	dial              DialFunc
	loggerInfo        func(msg string, args ...any)
	loggerError       func(msg string, args ...any)
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(
	cfg *configloader.Config,
	loggerInfo func(msg string, args ...any),
	loggerError func(msg string, args ...any),
) port.NodeClientProvider {
	return newEVMClientProvider(cfg, NewEVMClient, loggerInfo, loggerError)
}

func newEVMClientProvider(
	cfg *configloader.Config,
	dial DialFunc,
	loggerInfo func(msg string, args ...any),
	loggerError func(msg string, args ...any),
) *evmClientProvider {
	return &evmClientProvider{
		clients:           make(map[string]port.NodeClient),
		dial:              dial,
		loggerInfo:        loggerInfo,
		loggerError:       loggerError,
		connectionTimeout: cfg.Performance.ConnectionTimeout(),
		rpcCallTimeout:    cfg.Performance.RPCCallTimeout(),
	}
}

// GetClient retrieves a node client for the given profile.
// Clients are cached per profile and replaced when the profile endpoint changes.
// Dialing happens outside the lock so different profiles connect concurrently.
func (p *evmClientProvider) GetClient(ctx context.Context, profile entity.NetworkProfile) (port.NodeClient, error) {
	if client, ok := p.cached(profile); ok {
		return client, nil
	}

	p.loggerInfo("Creating new EVM client", "profile", profile.Name, "endpoint", profile.Endpoint())
	newClient, err := p.dial(ctx, profile, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.loggerError("Failed to create EVM client", "profile", profile.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", profile.Name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, exists := p.clients[profile.Name]; exists {
		if existing.Profile().Endpoint() == profile.Endpoint() {
			// Another caller dialed the same endpoint first.
			newClient.Close()
			return existing, nil
		}
		existing.Close()
	}
	p.clients[profile.Name] = newClient
	return newClient, nil
}

// cached returns the client for profile if its endpoint is unchanged, dropping a stale one.
func (p *evmClientProvider) cached(profile entity.NetworkProfile) (port.NodeClient, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	client, exists := p.clients[profile.Name]
	if !exists {
		return nil, false
	}
	if client.Profile().Endpoint() == profile.Endpoint() {
		return client, true
	}
	client.Close()
	delete(p.clients, profile.Name)
	return nil, false
}

// CloseAll closes and forgets every cached client.
func (p *evmClientProvider) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, c := range p.clients {
		c.Close()
		delete(p.clients, name)
	}
}
