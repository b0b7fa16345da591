package core

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/encodeous/rayon/protocol"
	"github.com/encodeous/rayon/state"
	"github.com/stretchr/testify/require"
)

// mockLink captures outbound envelopes instead of touching the network.
type mockLink struct {
	sent []*protocol.Envelope
}

func (l *mockLink) Send(env *protocol.Envelope) error {
	l.sent = append(l.sent, env)
	return nil
}

func (l *mockLink) Close() error {
	return nil
}

func (l *mockLink) take() []*protocol.Envelope {
	out := l.sent
	l.sent = nil
	return out
}

func mockNeighbour(t *testing.T, addr string, rel state.Relation) (*state.Neighbour, *mockLink) {
	packed, err := state.PackAddr(addr)
	require.NoError(t, err)
	link := &mockLink{}
	return &state.Neighbour{Addr: packed, Relation: rel, Link: link}, link
}

// newTestState builds a State with an initialized Router module and the
// given neighbors, no transport attached.
func newTestState(t *testing.T, asn uint32, neighbours ...*state.Neighbour) *state.State {
	ctx, cancel := context.WithCancelCause(context.Background())
	s := &state.State{
		Modules:    make(map[string]state.Module),
		Neighbours: neighbours,
		Env: &state.Env{
			Context: ctx,
			Cancel:  cancel,
			Cfg:     state.Cfg{ASN: asn},
			Log:     slog.New(slog.DiscardHandler),
		},
	}
	r := &Router{}
	s.Modules[reflect.TypeOf(r).String()] = r
	require.NoError(t, r.Init(s))
	t.Cleanup(func() {
		_ = r.Cleanup(s)
		cancel(context.Canceled)
	})
	return s
}

func updateEnvelope(t *testing.T, from *state.Neighbour, p protocol.UpdatePayload) *protocol.Envelope {
	env, err := protocol.NewEnvelope(state.UnpackAddr(from.Addr), state.UnpackAddr(from.RouterAddr()), protocol.TypeUpdate, p)
	require.NoError(t, err)
	return env
}

func withdrawEnvelope(t *testing.T, from *state.Neighbour, refs []protocol.PrefixRef) *protocol.Envelope {
	env, err := protocol.NewEnvelope(state.UnpackAddr(from.Addr), state.UnpackAddr(from.RouterAddr()), protocol.TypeWithdraw, refs)
	require.NoError(t, err)
	return env
}

func dataEnvelope(t *testing.T, src, dst string) *protocol.Envelope {
	env, err := protocol.NewEnvelope(src, dst, protocol.TypeData, map[string]string{"payload": "opaque"})
	require.NoError(t, err)
	return env
}

func mustEntry(t *testing.T, network, netmask string, attrs state.RouteAttributes, peer string) state.RouteEntry {
	n, err := state.PackAddr(network)
	require.NoError(t, err)
	m, err := state.PackAddr(netmask)
	require.NoError(t, err)
	p, err := state.PackAddr(peer)
	require.NoError(t, err)
	return state.RouteEntry{
		Prefix: state.Prefix{Network: n, Netmask: m},
		Attrs:  attrs,
		Peer:   p,
	}
}

func defaultAttrs() state.RouteAttributes {
	return state.RouteAttributes{LocalPref: 100, SelfOrigin: true, ASPath: []uint32{1}, Origin: state.OriginIgp}
}
