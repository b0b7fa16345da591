package core

import (
	"slices"

	"github.com/encodeous/rayon/state"
)

// aggregate coalesces one neighbor's aggregated list to its fixed point:
// any two entries that are siblings under a one-bit-shorter mask and
// carry equal attributes collapse into their parent. Each merge strictly
// shortens the total mask length, so the loop terminates.
func aggregate(entries []state.RouteEntry) []state.RouteEntry {
	for {
		merged := false
	scan:
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				parent, ok := mergeSiblings(entries[i], entries[j])
				if !ok {
					continue
				}
				entries[i] = parent
				entries = slices.Delete(entries, j, j+1)
				merged = true
				break scan
			}
		}
		if !merged {
			return entries
		}
	}
}

// mergeSiblings merges a and b when they have identical mask lengths,
// identical prefix bits except the final one, and equal attributes.
// Networks are assumed masked (the aggregated-table invariant).
func mergeSiblings(a, b state.RouteEntry) (state.RouteEntry, bool) {
	if a.Netmask != b.Netmask || a.Len() == 0 {
		return state.RouteEntry{}, false
	}
	if a.Network == b.Network || !a.Attrs.Equal(b.Attrs) {
		return state.RouteEntry{}, false
	}
	parentMask := state.ShortenMask(a.Netmask)
	if !state.SameNetwork(a.Network, b.Network, parentMask) {
		return state.RouteEntry{}, false
	}
	merged := a
	merged.Network = min(a.Network, b.Network)
	merged.Netmask = parentMask
	return merged, true
}
