package entity

import (
	"errors"
	"fmt"
	"math/big"
	"net"
	"sort"
	"strconv"
	"strings"

	"netprofile/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// AnyNetworkID is the network id wildcard: a profile using it accepts whatever network the node reports.
const AnyNetworkID = "*"

// gweiDecimals is the number of wei decimals in one gwei.
const gweiDecimals = 9

var (
	// ErrNoNetworks is returned for a profile document without any profile under "networks".
	ErrNoNetworks = errors.New("profile document declares no networks")
	// ErrDuplicateProfile is returned when two profiles share a name.
	ErrDuplicateProfile = errors.New("duplicate profile name")
	// ErrProfileNotFound is returned when a profile name is not present in the loaded set.
	ErrProfileNotFound = errors.New("profile not found")
)

// NetworkProfile is a named set of connection parameters used to reach an EVM node.
// Name is taken from the key under "networks" and is never part of the record itself.
type NetworkProfile struct {
	Name      string `json:"name,omitempty" yaml:"-"`
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	NetworkID string `json:"network_id" yaml:"network_id"`
	Gas       uint64 `json:"gas" yaml:"gas"`
	GasPrice  uint64 `json:"gasPrice" yaml:"gasPrice"`
	From      string `json:"from" yaml:"from"`
}

// ProfileSet is the profile document: profile name to profile record.
type ProfileSet struct {
	Networks map[string]NetworkProfile `json:"networks" yaml:"networks"`
}

// FieldError describes one invalid field of a profile.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every invalid field of a single profile.
type ValidationError struct {
	Profile string       `json:"profile"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return fmt.Sprintf("invalid profile %q: %s", e.Profile, strings.Join(parts, "; "))
}

// Endpoint returns the JSON-RPC URL of the node described by the profile.
func (p NetworkProfile) Endpoint() string {
	return "http://" + net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// MatchesNetworkID reports whether the id reported by a node is acceptable for this profile.
// Ids are compared numerically so "03" and "3" are the same network.
func (p NetworkProfile) MatchesNetworkID(reported string) bool {
	if p.NetworkID == AnyNetworkID {
		return true
	}
	want, okWant := new(big.Int).SetString(strings.TrimSpace(p.NetworkID), 10)
	got, okGot := new(big.Int).SetString(strings.TrimSpace(reported), 10)
	if !okWant || !okGot {
		return strings.TrimSpace(p.NetworkID) == strings.TrimSpace(reported)
	}
	return want.Cmp(got) == 0
}

// GasPriceGwei formats the profile gas price in gwei.
func (p NetworkProfile) GasPriceGwei() string {
	formatted, err := utils.FormatBigInt(new(big.Int).SetUint64(p.GasPrice), gweiDecimals)
	if err != nil {
		return strconv.FormatUint(p.GasPrice, 10) + " wei"
	}
	return formatted
}

// Validate checks every field and returns a *ValidationError listing all failures.
func (p NetworkProfile) Validate() error {
	verr := &ValidationError{Profile: p.Name}

	host := strings.TrimSpace(p.Host)
	switch {
	case host == "":
		verr.add("host", "must not be empty")
	case strings.Contains(host, "://"):
		verr.add("host", "must be a bare host name or address, without a scheme")
	case strings.ContainsAny(p.Host, " \t\r\n"):
		verr.add("host", "must not contain whitespace")
	case strings.ContainsAny(host, "/?#@"):
		verr.add("host", "must be a bare host name or address, without a path")
	case strings.Contains(host, ":") && net.ParseIP(host) == nil:
		verr.add("host", "must not include a port, use the port field")
	}

	if p.Port < 1 || p.Port > 65535 {
		verr.add("port", fmt.Sprintf("%d is outside 1..65535", p.Port))
	}

	if p.NetworkID == "" {
		verr.add("network_id", "must not be empty")
	} else if p.NetworkID != AnyNetworkID {
		if _, err := strconv.ParseUint(p.NetworkID, 10, 64); err != nil {
			verr.add("network_id", fmt.Sprintf("%q is neither %q nor a decimal integer", p.NetworkID, AnyNetworkID))
		}
	}

	if p.Gas == 0 {
		verr.add("gas", "must be positive")
	}
	if p.GasPrice == 0 {
		verr.add("gasPrice", "must be positive")
	}

	if !IsWellFormedAddress(p.From) {
		verr.add("from", fmt.Sprintf("%q is not a 0x-prefixed 40 hex digit address", p.From))
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Warnings reports issues that do not make the profile unusable.
func (p NetworkProfile) Warnings() []string {
	var warnings []string
	if IsWellFormedAddress(p.From) && !HasValidChecksum(p.From) {
		warnings = append(warnings, fmt.Sprintf("from: %q fails the EIP-55 checksum, expected %s",
			p.From, common.HexToAddress(p.From).Hex()))
	}
	return warnings
}

// IsWellFormedAddress reports whether s is "0x" followed by exactly 40 hex digits.
func IsWellFormedAddress(s string) bool {
	return len(s) == 2*common.AddressLength+2 && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// HasValidChecksum reports whether a well-formed address is either single-case or a valid EIP-55 checksum.
func HasValidChecksum(s string) bool {
	digits := s[2:]
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}

// Names returns the profile names in sorted order.
func (s ProfileSet) Names() []string {
	names := make([]string, 0, len(s.Networks))
	for name := range s.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named profile.
func (s ProfileSet) Get(name string) (NetworkProfile, bool) {
	p, ok := s.Networks[name]
	if ok {
		p.Name = name
	}
	return p, ok
}

// Validate validates every profile; failures are joined so callers can errors.As each *ValidationError.
func (s ProfileSet) Validate() error {
	if len(s.Networks) == 0 {
		return ErrNoNetworks
	}
	var errs []error
	for _, name := range s.Names() {
		p, _ := s.Get(name)
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
