package core

import (
	"net/netip"
	"slices"
	"time"

	"github.com/encodeous/rayon/state"
	"github.com/gaissmai/bart"
	"github.com/jellydator/ttlcache/v3"
)

// UpdateDedupTTL bounds how long an exact duplicate of an accepted
// announcement is suppressed.
const UpdateDedupTTL = time.Minute

// Router owns the forwarding state. Disaggregated holds every accepted
// announcement verbatim per neighbor; Aggregated is the coalesced view
// used for forwarding and dump replies; Fib is the longest-prefix-match
// index over Aggregated.
type Router struct {
	Disaggregated map[uint32][]state.RouteEntry
	Aggregated    map[uint32][]state.RouteEntry
	Fib           bart.Table[[]*state.RouteEntry]
	UpdateDedup   *ttlcache.Cache[string, struct{}]
}

func (r *Router) Init(s *state.State) error {
	s.Log.Debug("init router")
	r.Disaggregated = make(map[uint32][]state.RouteEntry)
	r.Aggregated = make(map[uint32][]state.RouteEntry)
	r.UpdateDedup = ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](UpdateDedupTTL),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go r.UpdateDedup.Start()
	return nil
}

func (r *Router) Cleanup(s *state.State) error {
	r.UpdateDedup.Stop()
	return nil
}

// SeenRecently reports whether an identical announcement was accepted
// within the dedup TTL, and records this one.
func (r *Router) SeenRecently(entry state.RouteEntry) bool {
	key := entry.Fingerprint()
	if r.UpdateDedup.Has(key) {
		return true
	}
	r.UpdateDedup.Set(key, struct{}{}, ttlcache.DefaultTTL)
	return false
}

// Insert accepts one announcement: it is appended verbatim to the
// disaggregated table, folded into the aggregated table, and the
// forwarding index is refreshed.
func (r *Router) Insert(s *state.State, entry state.RouteEntry) {
	r.Disaggregated[entry.Peer] = append(r.Disaggregated[entry.Peer], entry)

	agg := entry
	agg.Network &= agg.Netmask
	r.Aggregated[entry.Peer] = aggregate(append(r.Aggregated[entry.Peer], agg))

	r.rebuildFib()
	dbgPrintRouteTable(s, r)
}

// Withdraw removes every disaggregated entry of the neighbor matched by a
// victim prefix, then rebuilds the aggregated view from scratch. The
// rebuild is required because earlier aggregation may have fused a victim
// with its siblings.
func (r *Router) Withdraw(s *state.State, from uint32, victims []state.Prefix) {
	// a withdrawn prefix may be legitimately re-announced right away
	r.UpdateDedup.DeleteAll()

	r.Disaggregated[from] = slices.DeleteFunc(r.Disaggregated[from], func(e state.RouteEntry) bool {
		return slices.ContainsFunc(victims, func(v state.Prefix) bool {
			return e.Netmask == v.Netmask && state.SameNetwork(e.Network, v.Network, v.Netmask)
		})
	})

	r.Aggregated = make(map[uint32][]state.RouteEntry)
	for neigh, entries := range r.Disaggregated {
		agg := make([]state.RouteEntry, 0, len(entries))
		for _, e := range entries {
			e.Network &= e.Netmask
			agg = append(agg, e)
		}
		r.Aggregated[neigh] = aggregate(agg)
	}

	r.rebuildFib()
	dbgPrintRouteTable(s, r)
}

// DumpTable flattens the aggregated view across neighbors, in ascending
// neighbor address order.
func (r *Router) DumpTable() []state.RouteEntry {
	neighbours := make([]uint32, 0, len(r.Aggregated))
	for neigh := range r.Aggregated {
		neighbours = append(neighbours, neigh)
	}
	slices.Sort(neighbours)

	table := make([]state.RouteEntry, 0)
	for _, neigh := range neighbours {
		table = append(table, r.Aggregated[neigh]...)
	}
	return table
}

func (r *Router) rebuildFib() {
	r.Fib = bart.Table[[]*state.RouteEntry]{}
	grouped := make(map[netip.Prefix][]*state.RouteEntry)
	for _, entries := range r.Aggregated {
		for i := range entries {
			e := &entries[i]
			grouped[e.Netip()] = append(grouped[e.Netip()], e)
		}
	}
	for pfx, entries := range grouped {
		r.Fib.Insert(pfx, entries)
	}
}

func dbgPrintRouteTable(s *state.State, r *Router) {
	if !state.DBG_log_route_table {
		return
	}
	s.Log.Debug("--- route table ---")
	for _, e := range r.DumpTable() {
		s.Log.Debug(e.String(), "peer", state.UnpackAddr(e.Peer), "lp", e.Attrs.LocalPref, "as", e.Attrs.ASPath, "orig", e.Attrs.Origin)
	}
}
