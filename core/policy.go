package core

import (
	"github.com/encodeous/rayon/state"
)

// MayForwardData implements the commercial transit rule for the data
// plane: traffic is carried only when at least one end of the transit is
// a customer.
func MayForwardData(from, to *state.Neighbour) bool {
	return from.Relation == state.Customer || to.Relation == state.Customer
}

// PropagationTargets returns the neighbors that a route event (announce
// or withdraw) received from `from` is forwarded to: everyone else when
// it came from a customer, customers only otherwise.
func PropagationTargets(s *state.State, from *state.Neighbour) []*state.Neighbour {
	targets := make([]*state.Neighbour, 0, len(s.Neighbours))
	for _, n := range s.Neighbours {
		if n == from {
			continue
		}
		if from.Relation == state.Customer || n.Relation == state.Customer {
			targets = append(targets, n)
		}
	}
	return targets
}
