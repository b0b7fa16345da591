package core

import (
	"fmt"
	"slices"

	"github.com/encodeous/rayon/protocol"
	"github.com/encodeous/rayon/state"
)

// message handlers. Protocol-level problems (malformed payloads, unknown
// types) are logged and dropped; only transport failures propagate.

func HandleMessage(s *state.State, from *state.Neighbour, env *protocol.Envelope) error {
	if state.DBG_log_messages {
		s.Log.Debug("recv", "type", env.Type, "from", state.UnpackAddr(from.Addr))
	}
	switch env.Type {
	case protocol.TypeUpdate:
		return routerHandleUpdate(s, from, env)
	case protocol.TypeWithdraw:
		return routerHandleWithdraw(s, from, env)
	case protocol.TypeData:
		return routerHandleData(s, from, env)
	case protocol.TypeDump:
		return routerHandleDump(s, from, env)
	case protocol.TypeHandshake:
		s.Log.Debug("handshake", "from", state.UnpackAddr(from.Addr))
		return nil
	default:
		s.Log.Warn("dropping message with unknown type", "type", env.Type, "from", state.UnpackAddr(from.Addr))
		return nil
	}
}

func routerHandleUpdate(s *state.State, from *state.Neighbour, env *protocol.Envelope) error {
	p, err := env.DecodeUpdate()
	if err != nil {
		s.Log.Warn("dropping update", "err", err, "from", state.UnpackAddr(from.Addr))
		return nil
	}
	entry, err := entryFromPayload(p, from.Addr)
	if err != nil {
		s.Log.Warn("dropping update", "err", err, "from", state.UnpackAddr(from.Addr))
		return nil
	}

	r := Get[*Router](s)
	if r.SeenRecently(*entry) {
		s.Log.Debug("suppressing duplicate update", "prefix", entry.Prefix, "from", state.UnpackAddr(from.Addr))
		return nil
	}
	r.Insert(s, *entry)

	fwd := *p
	fwd.ASPath = append([]uint32{s.ASN}, p.ASPath...)
	for _, n := range PropagationTargets(s, from) {
		out, err := protocol.NewEnvelope(state.UnpackAddr(n.RouterAddr()), state.UnpackAddr(n.Addr), protocol.TypeUpdate, fwd)
		if err != nil {
			return err
		}
		if err := n.Link.Send(out); err != nil {
			return fmt.Errorf("announce to %s: %w", state.UnpackAddr(n.Addr), err)
		}
	}
	return nil
}

func routerHandleWithdraw(s *state.State, from *state.Neighbour, env *protocol.Envelope) error {
	refs, err := env.DecodeWithdraw()
	if err != nil {
		s.Log.Warn("dropping withdraw", "err", err, "from", state.UnpackAddr(from.Addr))
		return nil
	}
	victims := make([]state.Prefix, 0, len(refs))
	for _, ref := range refs {
		network, err := state.PackAddr(ref.Network)
		if err != nil {
			s.Log.Warn("dropping withdraw", "err", err, "from", state.UnpackAddr(from.Addr))
			return nil
		}
		netmask, err := state.PackAddr(ref.Netmask)
		if err != nil {
			s.Log.Warn("dropping withdraw", "err", err, "from", state.UnpackAddr(from.Addr))
			return nil
		}
		victims = append(victims, state.Prefix{Network: network, Netmask: netmask})
	}

	r := Get[*Router](s)
	r.Withdraw(s, from.Addr, victims)

	for _, n := range PropagationTargets(s, from) {
		out, err := protocol.NewEnvelope(state.UnpackAddr(n.RouterAddr()), state.UnpackAddr(n.Addr), protocol.TypeWithdraw, refs)
		if err != nil {
			return err
		}
		if err := n.Link.Send(out); err != nil {
			return fmt.Errorf("withdraw to %s: %w", state.UnpackAddr(n.Addr), err)
		}
	}
	return nil
}

func routerHandleData(s *state.State, from *state.Neighbour, env *protocol.Envelope) error {
	dst, err := state.PackAddr(env.Dst)
	if err != nil {
		s.Log.Warn("dropping data message", "err", err, "from", state.UnpackAddr(from.Addr))
		return nil
	}

	r := Get[*Router](s)
	route := r.Decide(dst)
	if route == nil {
		return sendNoRoute(s, from, env)
	}
	nh := s.GetNeighbour(route.Peer)
	if nh == nil || !MayForwardData(from, nh) {
		return sendNoRoute(s, from, env)
	}
	if err := nh.Link.Send(env); err != nil {
		return fmt.Errorf("forward to %s: %w", state.UnpackAddr(nh.Addr), err)
	}
	return nil
}

func sendNoRoute(s *state.State, from *state.Neighbour, env *protocol.Envelope) error {
	reply, err := protocol.NewEnvelope(state.UnpackAddr(from.RouterAddr()), env.Src, protocol.TypeNoRoute, struct{}{})
	if err != nil {
		return err
	}
	if err := from.Link.Send(reply); err != nil {
		return fmt.Errorf("no route to %s: %w", env.Src, err)
	}
	return nil
}

func routerHandleDump(s *state.State, from *state.Neighbour, env *protocol.Envelope) error {
	r := Get[*Router](s)
	rows := make([]protocol.TableEntry, 0)
	for _, e := range r.DumpTable() {
		rows = append(rows, protocol.TableEntry{
			Network:    state.UnpackAddr(e.Network),
			Netmask:    state.UnpackAddr(e.Netmask),
			Peer:       state.UnpackAddr(e.Peer),
			LocalPref:  e.Attrs.LocalPref,
			SelfOrigin: e.Attrs.SelfOrigin,
			ASPath:     slices.Clone(e.Attrs.ASPath),
			Origin:     e.Attrs.Origin.String(),
		})
	}
	reply, err := protocol.NewEnvelope(state.UnpackAddr(from.RouterAddr()), env.Src, protocol.TypeTable, rows)
	if err != nil {
		return err
	}
	if err := from.Link.Send(reply); err != nil {
		return fmt.Errorf("table to %s: %w", env.Src, err)
	}
	return nil
}

func entryFromPayload(p *protocol.UpdatePayload, peer uint32) (*state.RouteEntry, error) {
	network, err := state.PackAddr(p.Network)
	if err != nil {
		return nil, err
	}
	netmask, err := state.PackAddr(p.Netmask)
	if err != nil {
		return nil, err
	}
	if !state.IsCIDRMask(netmask) {
		return nil, fmt.Errorf("netmask %s is not CIDR-legal", p.Netmask)
	}
	origin, err := state.ParseOrigin(p.Origin)
	if err != nil {
		return nil, err
	}
	return &state.RouteEntry{
		Prefix: state.Prefix{Network: network, Netmask: netmask},
		Attrs: state.RouteAttributes{
			LocalPref:  p.LocalPref,
			SelfOrigin: p.SelfOrigin,
			ASPath:     slices.Clone(p.ASPath),
			Origin:     origin,
		},
		Peer: peer,
	}, nil
}
