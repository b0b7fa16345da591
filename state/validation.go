package state

import (
	"fmt"
)

func ConfigValidator(cfg *Cfg) error {
	if cfg.ASN == 0 {
		return fmt.Errorf("asn must be non-zero")
	}
	if len(cfg.Neighbours) == 0 {
		return fmt.Errorf("at least one neighbor is required")
	}
	seenAddr := make(map[uint32]bool)
	seenPort := make(map[uint16]bool)
	for _, n := range cfg.Neighbours {
		if seenAddr[n.Addr] {
			return fmt.Errorf("duplicate neighbor address %s", UnpackAddr(n.Addr))
		}
		if seenPort[n.Port] {
			return fmt.Errorf("duplicate neighbor port %d", n.Port)
		}
		if n.Addr&0xff == 1 {
			return fmt.Errorf("neighbor %s collides with the router's own address on its subnet", UnpackAddr(n.Addr))
		}
		seenAddr[n.Addr] = true
		seenPort[n.Port] = true
	}
	return nil
}
