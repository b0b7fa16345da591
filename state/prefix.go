package state

import (
	"fmt"
	"math/bits"
	"net/netip"
	"strconv"
	"strings"
)

// PackAddr parses a dotted-quad IPv4 address into its packed u32 form,
// most significant octet first.
func PackAddr(s string) (uint32, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%q is not a dotted-quad address", s)
	}
	var addr uint32
	for _, p := range parts {
		octet, err := strconv.ParseUint(p, 10, 64)
		if err != nil || p == "" || octet > 255 {
			return 0, fmt.Errorf("%q is not a dotted-quad address", s)
		}
		addr = addr<<8 | uint32(octet)
	}
	return addr, nil
}

// UnpackAddr formats a packed u32 address as a dotted quad.
func UnpackAddr(a uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", a>>24, a>>16&0xff, a>>8&0xff, a&0xff)
}

// PrefixLen returns the number of set bits in mask. For CIDR-legal masks
// this is the prefix length; for non-contiguous masks it is still the
// popcount, which is what the aggregator depends on.
func PrefixLen(mask uint32) int {
	return bits.OnesCount32(mask)
}

// SameNetwork reports whether a and b fall in the same network under mask.
func SameNetwork(a, b, mask uint32) bool {
	return a&mask == b&mask
}

// ShortenMask clears the lowest set bit of a CIDR mask, yielding the mask
// one bit shorter. The zero mask maps to itself.
func ShortenMask(mask uint32) uint32 {
	return mask &^ (uint32(1) << (32 - PrefixLen(mask)))
}

// IsCIDRMask reports whether mask is a contiguous run of leading 1-bits.
func IsCIDRMask(mask uint32) bool {
	return mask == 0 || bits.LeadingZeros32(^mask) == PrefixLen(mask)
}

// Prefix is a network/netmask pair in packed form.
type Prefix struct {
	Network uint32
	Netmask uint32
}

// Len is the prefix length of the netmask.
func (p Prefix) Len() int {
	return PrefixLen(p.Netmask)
}

// Covers reports whether addr falls inside the prefix.
func (p Prefix) Covers(addr uint32) bool {
	return SameNetwork(addr, p.Network, p.Netmask)
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", UnpackAddr(p.Network), p.Len())
}

// Netip converts a CIDR-legal prefix to its netip form, masked.
func (p Prefix) Netip() netip.Prefix {
	a := p.Network & p.Netmask
	addr := netip.AddrFrom4([4]byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)})
	return netip.PrefixFrom(addr, p.Len())
}

// PackedAddr converts a netip IPv4 address back to packed form.
func PackedAddr(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
