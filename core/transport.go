package core

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/encodeous/rayon/protocol"
	"github.com/encodeous/rayon/state"
	"github.com/google/uuid"
)

// UdpLink is one neighbor's datagram channel.
type UdpLink struct {
	id   uuid.UUID
	conn *net.UDPConn
}

func (l *UdpLink) Id() uuid.UUID {
	return l.id
}

func (l *UdpLink) Send(env *protocol.Envelope) error {
	b, err := env.Encode()
	if err != nil {
		return err
	}
	_, err = l.conn.Write(b)
	return err
}

func (l *UdpLink) Close() error {
	return l.conn.Close()
}

// Transport binds one UDP link per configured neighbor, sends the
// startup handshake, and pumps decoded inbound messages into the
// dispatch channel.
type Transport struct {
	links []*UdpLink
	wg    sync.WaitGroup
}

func (t *Transport) Init(s *state.State) error {
	s.Log.Debug("init transport")
	for _, nc := range s.Cfg.Neighbours {
		raddr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(nc.Port)}
		conn, err := net.DialUDP("udp", nil, raddr)
		if err != nil {
			return fmt.Errorf("dial neighbor %s: %w", state.UnpackAddr(nc.Addr), err)
		}
		link := &UdpLink{id: uuid.New(), conn: conn}
		neigh := &state.Neighbour{
			Addr:     nc.Addr,
			Port:     nc.Port,
			Relation: nc.Relation,
			Link:     link,
		}
		s.Neighbours = append(s.Neighbours, neigh)
		t.links = append(t.links, link)
		s.Log.Debug("link up", "id", link.Id(), "neighbor", state.UnpackAddr(neigh.Addr), "relation", neigh.Relation, "port", neigh.Port)

		hs, err := protocol.NewEnvelope(state.UnpackAddr(neigh.RouterAddr()), state.UnpackAddr(neigh.Addr), protocol.TypeHandshake, struct{}{})
		if err != nil {
			return err
		}
		if err := link.Send(hs); err != nil {
			return fmt.Errorf("handshake to %s: %w", state.UnpackAddr(neigh.Addr), err)
		}

		t.wg.Add(1)
		go t.readLoop(s.Env, neigh.Addr, link)
	}
	return nil
}

func (t *Transport) Cleanup(s *state.State) error {
	for _, link := range t.links {
		_ = link.Close()
	}
	t.wg.Wait()
	return nil
}

func (t *Transport) readLoop(e *state.Env, neigh uint32, link *UdpLink) {
	defer t.wg.Done()
	buf := make([]byte, state.MaxDatagramSize)
	for {
		n, err := link.conn.Read(buf)
		if err != nil {
			if e.Context.Err() == nil && !errors.Is(err, net.ErrClosed) {
				e.Log.Warn("link read failed", "neighbor", state.UnpackAddr(neigh), "err", err)
			}
			return
		}
		env, err := protocol.Decode(buf[:n])
		if err != nil {
			e.Log.Warn("dropping malformed datagram", "neighbor", state.UnpackAddr(neigh), "err", err)
			continue
		}
		e.Dispatch(func(s *state.State) error {
			from := s.GetNeighbour(neigh)
			if from == nil {
				return fmt.Errorf("no neighbor state for %s", state.UnpackAddr(neigh))
			}
			return HandleMessage(s, from, env)
		})
	}
}
