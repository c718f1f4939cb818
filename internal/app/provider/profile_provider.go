package provider

import (
	"sync"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
)

// CachedProfileProvider implements port.ProfileProvider on top of another provider.
type CachedProfileProvider struct {
	source port.ProfileProvider
	logger port.Logger

	mu    sync.Mutex
	cache *entity.ProfileSet
}

// NewProfileProvider creates a ProfileProvider that loads the profile document once
// from source and serves the cached set afterwards.
func NewProfileProvider(source port.ProfileProvider, logger port.Logger) *CachedProfileProvider {
	return &CachedProfileProvider{source: source, logger: logger}
}

// GetProfiles loads the profile document on first use and caches it.
// A failed load is not cached.
func (p *CachedProfileProvider) GetProfiles() (entity.ProfileSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache != nil {
		p.logger.Debug("Returning cached network profiles")
		return *p.cache, nil
	}

	p.logger.Debug("Loading network profiles")
	set, err := p.source.GetProfiles()
	if err != nil {
		p.logger.Error("Failed to load network profiles", "error", err)
		return entity.ProfileSet{}, err
	}

	p.cache = &set
	p.logger.Info("Network profiles loaded and cached successfully", "count", len(set.Networks))
	return set, nil
}
