package state

import (
	"fmt"
	"strconv"
	"strings"
)

// NeighbourCfg describes one neighbor in the collaborator's
// port-neighborIP-relation form, e.g. "7833-192.0.0.2-cust".
type NeighbourCfg struct {
	Port     uint16
	Addr     uint32
	Relation Relation
}

// Cfg is the router's startup configuration.
type Cfg struct {
	ASN        uint32         `yaml:"asn"`
	LogPath    string         `yaml:"log_path,omitempty"`
	Neighbours []NeighbourCfg `yaml:"neighbors"`
}

func ParseNeighbourDescriptor(s string) (NeighbourCfg, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return NeighbourCfg{}, fmt.Errorf("%q is not a port-neighborIP-relation descriptor", s)
	}
	port, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return NeighbourCfg{}, fmt.Errorf("descriptor %q: bad port: %w", s, err)
	}
	addr, err := PackAddr(parts[1])
	if err != nil {
		return NeighbourCfg{}, fmt.Errorf("descriptor %q: %w", s, err)
	}
	rel, err := ParseRelation(parts[2])
	if err != nil {
		return NeighbourCfg{}, fmt.Errorf("descriptor %q: %w", s, err)
	}
	return NeighbourCfg{Port: uint16(port), Addr: addr, Relation: rel}, nil
}

func (c NeighbourCfg) Descriptor() string {
	return fmt.Sprintf("%d-%s-%s", c.Port, UnpackAddr(c.Addr), c.Relation)
}

func (c NeighbourCfg) MarshalText() ([]byte, error) {
	return []byte(c.Descriptor()), nil
}

func (c *NeighbourCfg) UnmarshalText(text []byte) error {
	parsed, err := ParseNeighbourDescriptor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
