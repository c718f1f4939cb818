package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() NetworkProfile {
	return NetworkProfile{
		Name:      "development",
		Host:      "127.0.0.1",
		Port:      8500,
		NetworkID: "3",
		Gas:       7984452,
		GasPrice:  2000000000,
		From:      "0x2602302Bb7B2D6E94a8f9A9140C27d42C72F3ED3",
	}
}

func TestValidateAcceptsValidProfile(t *testing.T) {
	require.NoError(t, validProfile().Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	p := NetworkProfile{Name: "broken", Host: "http://localhost", Port: 70000, NetworkID: "three", From: "0x1234"}

	err := p.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "broken", verr.Profile)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	require.Equal(t, []string{"host", "port", "network_id", "gas", "gasPrice", "from"}, fields)
	require.Contains(t, err.Error(), `invalid profile "broken"`)
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *NetworkProfile)
		field  string
	}{
		{name: "empty host", mutate: func(p *NetworkProfile) { p.Host = "" }, field: "host"},
		{name: "host with space", mutate: func(p *NetworkProfile) { p.Host = "local host" }, field: "host"},
		{name: "host with port", mutate: func(p *NetworkProfile) { p.Host = "127.0.0.1:8545" }, field: "host"},
		{name: "host name with port", mutate: func(p *NetworkProfile) { p.Host = "localhost:8545" }, field: "host"},
		{name: "bracketed ipv6 with port", mutate: func(p *NetworkProfile) { p.Host = "[::1]:8545" }, field: "host"},
		{name: "host with path", mutate: func(p *NetworkProfile) { p.Host = "localhost/rpc" }, field: "host"},
		{name: "port zero", mutate: func(p *NetworkProfile) { p.Port = 0 }, field: "port"},
		{name: "port negative", mutate: func(p *NetworkProfile) { p.Port = -1 }, field: "port"},
		{name: "empty network id", mutate: func(p *NetworkProfile) { p.NetworkID = "" }, field: "network_id"},
		{name: "negative network id", mutate: func(p *NetworkProfile) { p.NetworkID = "-3" }, field: "network_id"},
		{name: "zero gas", mutate: func(p *NetworkProfile) { p.Gas = 0 }, field: "gas"},
		{name: "zero gas price", mutate: func(p *NetworkProfile) { p.GasPrice = 0 }, field: "gasPrice"},
		{name: "address without prefix", mutate: func(p *NetworkProfile) { p.From = "2602302Bb7B2D6E94a8f9A9140C27d42C72F3ED3" }, field: "from"},
		{name: "address too long", mutate: func(p *NetworkProfile) { p.From += "00" }, field: "from"},
		{name: "address not hex", mutate: func(p *NetworkProfile) { p.From = "0xZZ02302Bb7B2D6E94a8f9A9140C27d42C72F3ED3" }, field: "from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			var verr *ValidationError
			require.True(t, errors.As(p.Validate(), &verr))
			require.Len(t, verr.Fields, 1)
			require.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestValidateAcceptsHostForms(t *testing.T) {
	for _, host := range []string{"127.0.0.1", "localhost", "node.example.org", "::1", "fe80::1"} {
		p := validProfile()
		p.Host = host
		require.NoError(t, p.Validate(), host)
	}
}

func TestValidateAcceptsWildcardNetworkID(t *testing.T) {
	p := validProfile()
	p.NetworkID = AnyNetworkID
	require.NoError(t, p.Validate())
}

func TestMatchesNetworkID(t *testing.T) {
	p := validProfile()
	assert.True(t, p.MatchesNetworkID("3"))
	assert.True(t, p.MatchesNetworkID(" 03 "))
	assert.False(t, p.MatchesNetworkID("1"))
	assert.False(t, p.MatchesNetworkID(""))

	p.NetworkID = AnyNetworkID
	assert.True(t, p.MatchesNetworkID("1"))
	assert.True(t, p.MatchesNetworkID("1337"))
}

func TestEndpoint(t *testing.T) {
	require.Equal(t, "http://127.0.0.1:8500", validProfile().Endpoint())

	p := validProfile()
	p.Host = "::1"
	require.Equal(t, "http://[::1]:8500", p.Endpoint())
}

func TestGasPriceGwei(t *testing.T) {
	require.Equal(t, "2", validProfile().GasPriceGwei())
}

func TestAddressHelpers(t *testing.T) {
	require.True(t, IsWellFormedAddress("0x2602302Bb7B2D6E94a8f9A9140C27d42C72F3ED3"))
	require.Len(t, "0x2602302Bb7B2D6E94a8f9A9140C27d42C72F3ED3", 42)
	require.False(t, IsWellFormedAddress("0X2602302Bb7B2D6E94a8f9A9140C27d42C72F3ED3"))
	require.False(t, IsWellFormedAddress(""))

	require.True(t, HasValidChecksum("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	require.True(t, HasValidChecksum("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"))
	require.True(t, HasValidChecksum("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	require.True(t, HasValidChecksum("0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED"))
	require.False(t, HasValidChecksum("0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
}

func TestWarningsReportBadChecksum(t *testing.T) {
	p := validProfile()
	p.From = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	require.Empty(t, p.Warnings())

	p.From = "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	warnings := p.Warnings()
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
}

func TestProfileSet(t *testing.T) {
	set := ProfileSet{Networks: map[string]NetworkProfile{
		"ropsten":     validProfile(),
		"development": validProfile(),
	}}
	require.Equal(t, []string{"development", "ropsten"}, set.Names())

	p, ok := set.Get("ropsten")
	require.True(t, ok)
	require.Equal(t, "ropsten", p.Name)

	_, ok = set.Get("mainnet")
	require.False(t, ok)

	require.NoError(t, set.Validate())
}

func TestProfileSetValidate(t *testing.T) {
	require.ErrorIs(t, ProfileSet{}.Validate(), ErrNoNetworks)

	bad := validProfile()
	bad.Port = 0
	set := ProfileSet{Networks: map[string]NetworkProfile{"development": validProfile(), "broken": bad}}

	err := set.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "broken", verr.Profile)
}
