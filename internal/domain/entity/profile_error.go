package entity

// ProfileError represents an error that occurred while checking a profile against its node.
type ProfileError struct {
	ProfileName string `json:"profileName"`
	Endpoint    string `json:"endpoint,omitempty"`
	Method      string `json:"method,omitempty" yaml:"method,omitempty"`
	Message     string `json:"message"`
}
