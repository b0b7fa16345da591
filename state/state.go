package state

import (
	"context"
	"log/slog"
	"slices"

	"github.com/encodeous/rayon/protocol"
)

// Module is a unit of router functionality with a lifecycle bound to the
// main loop.
type Module interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// Link is a neighbor's transport handle. Links are owned by the
// dispatcher side and must only be written from the main goroutine or
// from handlers it runs.
type Link interface {
	Send(env *protocol.Envelope) error
	Close() error
}

// Neighbour is one configured peering session.
type Neighbour struct {
	Addr     uint32
	Port     uint16
	Relation Relation
	Link     Link
}

// RouterAddr is our own address on this neighbor's subnet: the neighbor's
// address with the last octet replaced by 1.
func (n *Neighbour) RouterAddr() uint32 {
	return n.Addr&^0xff | 1
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules    map[string]Module
	Neighbours []*Neighbour
}

func (s *State) GetNeighbour(addr uint32) *Neighbour {
	nIdx := slices.IndexFunc(s.Neighbours, func(neighbour *Neighbour) bool {
		return neighbour.Addr == addr
	})
	if nIdx == -1 {
		return nil
	}
	return s.Neighbours[nIdx]
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	Cfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
}
