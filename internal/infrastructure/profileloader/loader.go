package profileloader

import (
	"fmt"
	"os"

	"netprofile/internal/app/port"
	"netprofile/internal/domain/entity"
)

// ProfileFileLoader implements the port.ProfileProvider interface by loading profiles from a file.
// An empty path selects the embedded default document.
type ProfileFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewProfileFileLoader creates a new ProfileFileLoader.
func NewProfileFileLoader(filePath string, loggerInfo, loggerWarn func(msg string, args ...any)) port.ProfileProvider {
	return &ProfileFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// LoadFile reads and decodes the profile document at path.
func LoadFile(path string) (entity.ProfileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.ProfileSet{}, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	set, err := Decode(data)
	if err != nil {
		return entity.ProfileSet{}, fmt.Errorf("profile file %s: %w", path, err)
	}
	return set, nil
}

// GetProfiles reads the profile document. Checksum warnings are logged, not returned.
func (l *ProfileFileLoader) GetProfiles() (entity.ProfileSet, error) {
	source := l.filePath
	var (
		set entity.ProfileSet
		err error
	)
	if l.filePath == "" {
		source = "embedded"
		set = Default()
	} else {
		set, err = LoadFile(l.filePath)
		if err != nil {
			return entity.ProfileSet{}, err
		}
	}

	for _, name := range set.Names() {
		p, _ := set.Get(name)
		for _, w := range p.Warnings() {
			if l.loggerWarn != nil {
				l.loggerWarn("Profile warning", "profile", name, "source", source, "warning", w)
			}
		}
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Network profiles loaded", "count", len(set.Networks), "source", source, "profiles", set.Names())
	}
	return set, nil
}
