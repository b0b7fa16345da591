package core

import (
	"net/netip"
	"slices"

	"github.com/encodeous/rayon/state"
)

// Decide selects at most one route for a destination address: a
// longest-prefix-match lookup over the aggregated view followed by the
// tie-break chain. Returns nil when no prefix covers dst.
func (r *Router) Decide(dst uint32) *state.RouteEntry {
	addr := netip.AddrFrom4([4]byte{byte(dst >> 24), byte(dst >> 16), byte(dst >> 8), byte(dst)})
	candidates, ok := r.Fib.Lookup(addr)
	if !ok || len(candidates) == 0 {
		return nil
	}
	return reduceRoutes(slices.Clone(candidates))
}

// reduceRoutes applies the tie-break chain in order: highest localpref,
// selfOrigin preferred, shortest ASPath, best origin (IGP > EGP > UNK),
// lowest neighbor address by numeric u32 order.
func reduceRoutes(candidates []*state.RouteEntry) *state.RouteEntry {
	candidates = filterMax(candidates, func(e *state.RouteEntry) int64 {
		return int64(e.Attrs.LocalPref)
	})

	if slices.ContainsFunc(candidates, func(e *state.RouteEntry) bool { return e.Attrs.SelfOrigin }) {
		candidates = slices.DeleteFunc(candidates, func(e *state.RouteEntry) bool {
			return !e.Attrs.SelfOrigin
		})
	}

	candidates = filterMax(candidates, func(e *state.RouteEntry) int64 {
		return -int64(len(e.Attrs.ASPath))
	})

	candidates = filterMax(candidates, func(e *state.RouteEntry) int64 {
		return int64(e.Attrs.Origin)
	})

	best := candidates[0]
	for _, e := range candidates[1:] {
		if e.Peer < best.Peer {
			best = e
		}
	}
	return best
}

// filterMax keeps the candidates whose key equals the maximum.
func filterMax(candidates []*state.RouteEntry, key func(*state.RouteEntry) int64) []*state.RouteEntry {
	if len(candidates) <= 1 {
		return candidates
	}
	best := key(candidates[0])
	for _, e := range candidates[1:] {
		best = max(best, key(e))
	}
	return slices.DeleteFunc(candidates, func(e *state.RouteEntry) bool {
		return key(e) != best
	})
}
