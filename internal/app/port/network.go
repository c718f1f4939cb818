package port

import (
	"context"

	"netprofile/internal/domain/entity"
)

// NodeClient defines the interface for interacting with the node a profile points to.
type NodeClient interface {
	// Snapshot issues one probe batch against the node and returns what it reported.
	Snapshot(ctx context.Context) (entity.NodeSnapshot, error)

	// Profile returns the network profile associated with this client.
	Profile() entity.NetworkProfile

	// Close releases the underlying connection.
	Close()
}

// ProfileRegistry defines lookups over a loaded profile set.
type ProfileRegistry interface {
	// GetAllProfiles returns every profile, sorted by name.
	GetAllProfiles() []entity.NetworkProfile

	// GetProfileByName returns a specific profile by its name.
	GetProfileByName(name string) (entity.NetworkProfile, bool)

	// GetProfilesByNetworkID returns the profiles accepting the given network id.
	GetProfilesByNetworkID(networkID string) []entity.NetworkProfile

	// Names returns the profile names, sorted.
	Names() []string
}

// NodeClientProvider defines the interface for providing node clients.
type NodeClientProvider interface {
	GetClient(ctx context.Context, profile entity.NetworkProfile) (NodeClient, error)
	CloseAll()
}
