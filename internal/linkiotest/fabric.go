// Package linkiotest provides an in-memory implementation of the
// linkio.Adapter contract so multi-switch scenarios (spec scenarios C, D,
// E, F) can be driven without any real interface. A Fabric is a set of
// point-to-point links; each endpoint of a link is handed to a different
// Bridge as one of its numbered ports.
package linkiotest

import (
	"context"
	"fmt"

	"github.com/kaelnet/vswitchd/pkg/linkio"
)

// Link is one point-to-point wire between two endpoints.
type Link struct {
	a, b chan []byte
}

// NewLink creates a fresh link between two future endpoints, buffering up
// to 64 frames in each direction.
func NewLink() *Link {
	return &Link{a: make(chan []byte, 64), b: make(chan []byte, 64)}
}

// endpoint is one side of a Link, bound to a local port index on some
// Bridge's Fabric.
type endpoint struct {
	send chan []byte
	recv chan []byte
}

// Fabric is a linkio.Adapter backed by in-memory channels: one endpoint per
// local port, each wired to the other side of a Link shared with another
// Fabric (typically belonging to a different Bridge under test).
type Fabric struct {
	mac       [6]byte
	endpoints []endpoint
	frames    chan linkio.Frame
	closed    chan struct{}
}

// New returns an empty Fabric with the given switch MAC. Attach ports to it
// with Plug before use.
func New(mac [6]byte) *Fabric {
	return &Fabric{
		mac:    mac,
		frames: make(chan linkio.Frame, 256),
		closed: make(chan struct{}),
	}
}

// Plug appends a new local port backed by one side of l and returns its
// port index. side selects which end of the link this Fabric occupies;
// the other Fabric sharing l must use the opposite side.
func (f *Fabric) Plug(l *Link, side Side) int {
	var ep endpoint
	if side == SideA {
		ep = endpoint{send: l.a, recv: l.b}
	} else {
		ep = endpoint{send: l.b, recv: l.a}
	}

	port := len(f.endpoints)
	f.endpoints = append(f.endpoints, ep)
	go f.readLoop(port, ep.recv)
	return port
}

// Side picks which end of a Link a Fabric occupies.
type Side int

const (
	SideA Side = iota
	SideB
)

func (f *Fabric) readLoop(port int, recv chan []byte) {
	for {
		select {
		case data, ok := <-recv:
			if !ok {
				return
			}
			select {
			case f.frames <- linkio.Frame{Port: port, Data: data}:
			case <-f.closed:
				return
			}
		case <-f.closed:
			return
		}
	}
}

// NumLinks implements linkio.Adapter.
func (f *Fabric) NumLinks() int {
	return len(f.endpoints)
}

// RecvFromAnyLink implements linkio.Adapter.
func (f *Fabric) RecvFromAnyLink(ctx context.Context) (linkio.Frame, error) {
	select {
	case fr := <-f.frames:
		return fr, nil
	case <-f.closed:
		return linkio.Frame{}, fmt.Errorf("linkiotest: fabric closed")
	case <-ctx.Done():
		return linkio.Frame{}, ctx.Err()
	}
}

// SendToLink implements linkio.Adapter.
func (f *Fabric) SendToLink(port int, buf []byte) error {
	if port < 0 || port >= len(f.endpoints) {
		return fmt.Errorf("linkiotest: port %d out of range", port)
	}

	out := make([]byte, len(buf))
	copy(out, buf)

	select {
	case f.endpoints[port].send <- out:
		return nil
	case <-f.closed:
		return fmt.Errorf("linkiotest: fabric closed")
	}
}

// SwitchMAC implements linkio.Adapter.
func (f *Fabric) SwitchMAC() [6]byte {
	return f.mac
}

// Close implements linkio.Adapter.
func (f *Fabric) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}
