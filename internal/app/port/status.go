package port

import (
	"context"

	"netprofile/internal/domain/entity"
)

// ProfileStatusService checks profiles against the nodes they point to.
type ProfileStatusService interface {
	// CheckProfile checks one profile. Cached results younger than the cache TTL are returned as is.
	CheckProfile(ctx context.Context, name string) (entity.ProfileStatus, error)

	// CheckAll checks the named profiles, or every profile when names is empty.
	CheckAll(ctx context.Context, names []string) ([]entity.ProfileStatus, error)

	// Invalidate drops the cached status of a profile.
	Invalidate(name string)
}

// GasReferenceService compares profile gas prices against a reference gas oracle.
type GasReferenceService interface {
	Reference(ctx context.Context) (entity.GasReference, error)
	Compare(ctx context.Context, profile entity.NetworkProfile) (entity.GasComparison, error)
}
