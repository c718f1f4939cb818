package networkdefinition

import (
	"fmt"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
)

// ProfileRegistry provides lookups over the loaded network profiles.
type ProfileRegistry struct {
	logger   port.Logger
	profiles map[string]entity.NetworkProfile
	names    []string
}

// NewProfileRegistry creates a new ProfileRegistry from a loaded profile set.
// Profiles are expected to have been validated by the caller.
func NewProfileRegistry(set entity.ProfileSet, log port.Logger) *ProfileRegistry {
	r := &ProfileRegistry{
		logger:   log,
		profiles: make(map[string]entity.NetworkProfile, len(set.Networks)),
		names:    set.Names(),
	}

	for _, name := range r.names {
		p, _ := set.Get(name)
		r.profiles[name] = p
		if r.logger != nil {
			r.logger.Debug(fmt.Sprintf("  - Registered profile: %s (endpoint: %s, network_id: %s)", name, p.Endpoint(), p.NetworkID))
		}
	}

	if r.logger != nil {
		if len(r.names) == 0 {
			r.logger.Warn("ProfileRegistry initialized without profiles")
		} else {
			r.logger.Info(fmt.Sprintf("ProfileRegistry initialized. Profiles: %d", len(r.names)))
		}
	}
	return r
}

// GetAllProfiles returns every registered profile sorted by name.
func (r *ProfileRegistry) GetAllProfiles() []entity.NetworkProfile {
	if r == nil {
		return []entity.NetworkProfile{}
	}
	out := make([]entity.NetworkProfile, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.profiles[name])
	}
	return out
}

// GetProfileByName returns a specific profile by its name.
func (r *ProfileRegistry) GetProfileByName(name string) (entity.NetworkProfile, bool) {
	if r == nil {
		return entity.NetworkProfile{}, false
	}
	p, ok := r.profiles[name]
	return p, ok
}

// GetProfilesByNetworkID returns the profiles that accept networkID, wildcard profiles included.
func (r *ProfileRegistry) GetProfilesByNetworkID(networkID string) []entity.NetworkProfile {
	if r == nil {
		return []entity.NetworkProfile{}
	}
	out := make([]entity.NetworkProfile, 0)
	for _, name := range r.names {
		if p := r.profiles[name]; p.MatchesNetworkID(networkID) {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the registered profile names, sorted.
func (r *ProfileRegistry) Names() []string {
	if r == nil {
		return []string{}
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

var _ port.ProfileRegistry = (*ProfileRegistry)(nil)
