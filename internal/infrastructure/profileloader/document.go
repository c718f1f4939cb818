package profileloader

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"netprofile/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a profile document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const networksKey = "networks"

//go:embed networks.yml
var defaultDocument []byte

var strictJSON = jsoniter.Config{ //nolint:gochecknoglobals
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// networkID accepts both "3" and 3 in JSON documents. YAML scalars decode into it directly.
type networkID string

func (n *networkID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := strictJSON.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = networkID(s)
		return nil
	}
	var num jsoniter.Number
	if err := strictJSON.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("network_id must be a string or an integer: %w", err)
	}
	*n = networkID(num.String())
	return nil
}

// profileRecord is the on-disk shape of one profile. Only these fields are recognized.
type profileRecord struct {
	Host      string    `json:"host" yaml:"host"`
	Port      int       `json:"port" yaml:"port"`
	NetworkID networkID `json:"network_id" yaml:"network_id"`
	Gas       uint64    `json:"gas" yaml:"gas"`
	GasPrice  uint64    `json:"gasPrice" yaml:"gasPrice"`
	From      string    `json:"from" yaml:"from"`
}

type document struct {
	Networks map[string]profileRecord `json:"networks" yaml:"networks"`
}

// ParseFormat maps a user supplied format name, defaulting to YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected yaml or json", s)
	}
}

// isJSON reports whether data is a well-formed JSON object. YAML flow mappings such as
// {networks: {...}} are not, and go to the YAML decoder.
func isJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && strictJSON.Valid(trimmed)
}

// Decode parses a profile document in YAML or JSON. Unknown fields and duplicate profile names are rejected.
func Decode(data []byte) (entity.ProfileSet, error) {
	var (
		doc document
		err error
	)
	if isJSON(data) {
		doc, err = decodeJSON(data)
	} else {
		doc, err = decodeYAML(data)
	}
	if err != nil {
		return entity.ProfileSet{}, err
	}
	if len(doc.Networks) == 0 {
		return entity.ProfileSet{}, entity.ErrNoNetworks
	}

	set := entity.ProfileSet{Networks: make(map[string]entity.NetworkProfile, len(doc.Networks))}
	for name, rec := range doc.Networks {
		set.Networks[name] = entity.NetworkProfile{
			Name:      name,
			Host:      rec.Host,
			Port:      rec.Port,
			NetworkID: string(rec.NetworkID),
			Gas:       rec.Gas,
			GasPrice:  rec.GasPrice,
			From:      rec.From,
		}
	}
	return set, nil
}

func decodeYAML(data []byte) (document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return document{}, fmt.Errorf("failed to parse profile document: %w", err)
	}
	if err := checkDuplicateYAMLProfiles(&root); err != nil {
		return document{}, err
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return document{}, entity.ErrNoNetworks
		}
		return document{}, fmt.Errorf("failed to decode profile document: %w", err)
	}
	return doc, nil
}

func checkDuplicateYAMLProfiles(root *yaml.Node) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil
	}
	networksLine := 0
	seen := make(map[string]int)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i]
		if key.Value != networksKey {
			continue
		}
		if networksLine != 0 {
			return fmt.Errorf("%w: %q key declared more than once, at lines %d and %d", entity.ErrDuplicateProfile, networksKey, networksLine, key.Line)
		}
		networksLine = key.Line
		networks := top.Content[i+1]
		if networks.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(networks.Content); j += 2 {
			key := networks.Content[j]
			if line, dup := seen[key.Value]; dup {
				return fmt.Errorf("%w: %q defined at lines %d and %d", entity.ErrDuplicateProfile, key.Value, line, key.Line)
			}
			seen[key.Value] = key.Line
		}
	}
	return nil
}

func decodeJSON(data []byte) (document, error) {
	if err := checkDuplicateJSONProfiles(data); err != nil {
		return document{}, err
	}
	var doc document
	if err := strictJSON.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("failed to decode profile document: %w", err)
	}
	return doc, nil
}

func checkDuplicateJSONProfiles(data []byte) error {
	iter := jsoniter.ParseBytes(strictJSON, data)
	var (
		dupErr       error
		networksSeen bool
	)
	seen := make(map[string]struct{})
	iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		if field != networksKey {
			it.Skip()
			return true
		}
		if networksSeen && dupErr == nil {
			dupErr = fmt.Errorf("%w: %q key declared more than once", entity.ErrDuplicateProfile, networksKey)
		}
		networksSeen = true
		if it.WhatIsNext() != jsoniter.ObjectValue {
			it.Skip()
			return true
		}
		it.ReadObjectCB(func(inner *jsoniter.Iterator, name string) bool {
			if _, dup := seen[name]; dup && dupErr == nil {
				dupErr = fmt.Errorf("%w: %q", entity.ErrDuplicateProfile, name)
			}
			seen[name] = struct{}{}
			inner.Skip()
			return true
		})
		return true
	})
	if dupErr != nil {
		return dupErr
	}
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return fmt.Errorf("failed to parse profile document: %w", iter.Error)
	}
	return nil
}

// Default returns the embedded profile document.
func Default() entity.ProfileSet {
	set, err := Decode(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded profile document is invalid: %v", err))
	}
	return set
}

// Encode renders a profile set with the document field names. Profiles appear in name order.
func Encode(set entity.ProfileSet, format Format) ([]byte, error) {
	doc := document{Networks: make(map[string]profileRecord, len(set.Networks))}
	for name, p := range set.Networks {
		doc.Networks[name] = profileRecord{
			Host:      p.Host,
			Port:      p.Port,
			NetworkID: networkID(p.NetworkID),
			Gas:       p.Gas,
			GasPrice:  p.GasPrice,
			From:      p.From,
		}
	}

	switch format {
	case FormatJSON:
		out, err := strictJSON.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode profiles as json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode profiles as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode profiles as yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
