package port

import "netprofile/internal/domain/entity"

// ProfileProvider defines the interface for obtaining the profile document.
type ProfileProvider interface {
	GetProfiles() (entity.ProfileSet, error)
}
