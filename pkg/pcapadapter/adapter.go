// Package pcapadapter implements the linkio.Adapter contract against real
// (or virtual, e.g. veth/tap) network interfaces: one pcap handle per
// configured port name, fanned in to a single channel for
// RecvFromAnyLink, with vishvananda/netlink used to resolve the switch
// interface's hardware address. The core forwarding/STP engines never
// import this package directly; it only exists to make the daemon
// runnable against a real topology.
package pcapadapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/gopacket/pcap"
	"github.com/vishvananda/netlink"

	"github.com/kaelnet/vswitchd/pkg/linkio"
)

const snapLen = 1600

// Adapter opens one pcap handle per named interface and presents them as
// numbered ports, matching the order they were configured in.
type Adapter struct {
	names   []string
	handles []*pcap.Handle
	mac     [6]byte

	frames chan linkio.Frame
	errs   chan error

	closeOnce sync.Once
	closed    chan struct{}
}

// Open opens a live capture on each of ifaceNames, in order; ifaceNames[i]
// becomes port index i. switchIface names the interface whose MAC is
// reported by SwitchMAC (it need not be one of ifaceNames).
func Open(ifaceNames []string, switchIface string) (*Adapter, error) {
	a := &Adapter{
		names:  append([]string(nil), ifaceNames...),
		frames: make(chan linkio.Frame, 256),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}

	for _, name := range ifaceNames {
		handle, err := pcap.OpenLive(name, snapLen, true, pcap.BlockForever)
		if err != nil {
			a.closeHandles()
			return nil, fmt.Errorf("pcapadapter: open %s: %w", name, err)
		}
		a.handles = append(a.handles, handle)
	}

	if switchIface != "" {
		link, err := netlink.LinkByName(switchIface)
		if err != nil {
			a.closeHandles()
			return nil, fmt.Errorf("pcapadapter: resolve MAC for %s: %w", switchIface, err)
		}
		copy(a.mac[:], link.Attrs().HardwareAddr)
	}

	for i, handle := range a.handles {
		go a.readLoop(i, handle)
	}

	return a, nil
}

func (a *Adapter) readLoop(port int, handle *pcap.Handle) {
	for {
		data, _, err := handle.ReadPacketData()
		if err != nil {
			select {
			case a.errs <- fmt.Errorf("pcapadapter: port %d (%s): %w", port, a.names[port], err):
			default:
			}
			return
		}

		buf := make([]byte, len(data))
		copy(buf, data)

		select {
		case a.frames <- linkio.Frame{Port: port, Data: buf}:
		case <-a.closed:
			return
		}
	}
}

// NumLinks implements linkio.Adapter.
func (a *Adapter) NumLinks() int {
	return len(a.handles)
}

// RecvFromAnyLink implements linkio.Adapter.
func (a *Adapter) RecvFromAnyLink(ctx context.Context) (linkio.Frame, error) {
	select {
	case f := <-a.frames:
		return f, nil
	case err := <-a.errs:
		return linkio.Frame{}, err
	case <-a.closed:
		return linkio.Frame{}, fmt.Errorf("pcapadapter: closed")
	case <-ctx.Done():
		return linkio.Frame{}, ctx.Err()
	}
}

// SendToLink implements linkio.Adapter.
func (a *Adapter) SendToLink(port int, buf []byte) error {
	if port < 0 || port >= len(a.handles) {
		return fmt.Errorf("pcapadapter: port %d out of range", port)
	}
	return a.handles[port].WritePacketData(buf)
}

// SwitchMAC implements linkio.Adapter.
func (a *Adapter) SwitchMAC() [6]byte {
	return a.mac
}

// Close implements linkio.Adapter.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		close(a.closed)
		a.closeHandles()
	})
	return nil
}

func (a *Adapter) closeHandles() {
	for _, h := range a.handles {
		if h != nil {
			h.Close()
		}
	}
}
