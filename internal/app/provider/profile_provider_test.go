package provider

import (
	"errors"
	"testing"

	"netprofile/internal/domain/entity"

	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) GetProfiles() (entity.ProfileSet, error) {
	s.calls++
	if s.err != nil {
		return entity.ProfileSet{}, s.err
	}
	return entity.ProfileSet{Networks: map[string]entity.NetworkProfile{
		"development": {Host: "127.0.0.1", Port: 8500, NetworkID: "3"},
	}}, nil
}

func TestProfileProviderCaches(t *testing.T) {
	src := &countingSource{}
	p := NewProfileProvider(src, nopLogger{})

	first, err := p.GetProfiles()
	require.NoError(t, err)
	second, err := p.GetProfiles()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, src.calls)
}

func TestProfileProviderDoesNotCacheFailures(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	p := NewProfileProvider(src, nopLogger{})

	_, err := p.GetProfiles()
	require.Error(t, err)

	src.err = nil
	set, err := p.GetProfiles()
	require.NoError(t, err)
	require.Len(t, set.Networks, 1)
	require.Equal(t, 2, src.calls)
}
