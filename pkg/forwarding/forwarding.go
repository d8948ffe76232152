// Package forwarding implements the VLAN-aware learning and frame
// forwarding decision: classification, MAC learning, egress-set selection,
// and per-egress tag adaptation across access and trunk ports.
package forwarding

import (
	"github.com/kaelnet/vswitchd/pkg/cam"
	"github.com/kaelnet/vswitchd/pkg/events"
	"github.com/kaelnet/vswitchd/pkg/frame"
	"github.com/kaelnet/vswitchd/pkg/port"
	"github.com/kaelnet/vswitchd/pkg/switchmetrics"
)

// Egress is one outbound send the engine has decided on: the port to send
// on and the exact bytes to send (tag already adapted for that port).
type Egress struct {
	Port int
	Data []byte
}

// Engine classifies and forwards data-plane frames. It is pure with respect
// to the port table's STP state (it only reads it) and mutates only the
// CAM it is given.
type Engine struct {
	CAM     *cam.Table
	Metrics *switchmetrics.Counters
	Events  *events.Bus
}

// New returns an Engine over the given CAM, with optional observability
// sinks (either may be nil).
func New(c *cam.Table, metrics *switchmetrics.Counters, bus *events.Bus) *Engine {
	return &Engine{CAM: c, Metrics: metrics, Events: bus}
}

func (e *Engine) dropped(detail string) {
	if e.Metrics != nil {
		e.Metrics.FramesDropped.Add(1)
	}
	if e.Events != nil {
		e.Events.Publish(events.Event{Kind: events.FrameDropped, Detail: detail})
	}
}

// Forward classifies an ingress frame already known not to be a BPDU,
// learns its source, and returns the set of (port, bytes) sends the
// caller must perform. table is read-only here; STP state gates only which
// trunk ports are eligible egress candidates.
func (e *Engine) Forward(ingress int, table port.Table, h frame.Header, buf []byte) []Egress {
	if ingress < 0 || ingress >= len(table) {
		e.dropped("ingress port out of range")
		return nil
	}

	in := table[ingress]

	effectiveVLAN, ok := effectiveVLAN(in, h)
	if !ok {
		// Tagged frame on an access port, or untagged frame on a trunk
		// port: undefined by the source design; this implementation
		// drops it (spec divergence #3).
		e.dropped("vlan mismatch between port kind and frame tag state")
		return nil
	}

	e.CAM.Set(h.Src, ingress)
	if e.Metrics != nil {
		e.Metrics.FramesForwarded.Add(1)
	}

	candidates := e.candidates(h.Dst, ingress, table)

	var out []Egress
	for _, p := range candidates {
		egress, ok := e.adapt(table[p], in, h, effectiveVLAN, buf)
		if !ok {
			continue
		}
		out = append(out, Egress{Port: p, Data: egress})
	}
	return out
}

// effectiveVLAN determines the VLAN this frame belongs to given the
// ingress port kind, and reports whether the frame/port combination is
// well-formed (access port must carry an untagged frame; trunk port must
// carry a tagged frame).
func effectiveVLAN(in port.Port, h frame.Header) (int, bool) {
	if in.Kind == port.Access {
		if h.Tagged {
			return 0, false
		}
		return in.VLAN, true
	}
	// Trunk.
	if !h.Tagged {
		return 0, false
	}
	return h.VLAN, true
}

// candidates returns the egress port indices to consider for dst: the
// single learned port for a known unicast hit (excluding self-hits), or
// every other port for unknown unicast/broadcast.
func (e *Engine) candidates(dst frame.MAC, ingress int, table port.Table) []int {
	if dst != frame.Broadcast {
		if hit := e.CAM.Lookup(dst); hit != cam.NonePort {
			if hit == ingress {
				// Known unicast destined back out the ingress port: spec
				// invariant 4 forbids this; there is nothing useful to
				// flood to either, since a hit means we know exactly
				// where it lives.
				return nil
			}
			return []int{hit}
		}
	}

	out := make([]int, 0, len(table)-1)
	for p := range table {
		if p != ingress {
			out = append(out, p)
		}
	}
	return out
}

// adapt computes the bytes to send out egress port p (given it is not the
// ingress port), applying the tag insertion/removal rules of §4.2. It
// reports false when p must be skipped (access-VLAN mismatch, or the trunk
// is currently STP-blocking).
func (e *Engine) adapt(p port.Port, in port.Port, h frame.Header, effectiveVLAN int, buf []byte) ([]byte, bool) {
	switch p.Kind {
	case port.Access:
		if p.VLAN != effectiveVLAN {
			return nil, false
		}
		if h.Tagged {
			out, err := frame.StripTag(buf)
			if err != nil {
				return nil, false
			}
			return out, true
		}
		return buf, true

	case port.Trunk:
		if p.State == port.Blocking {
			return nil, false
		}
		if !h.Tagged {
			out, err := frame.InsertTag(buf, effectiveVLAN)
			if err != nil {
				return nil, false
			}
			return out, true
		}
		return buf, true
	}
	return nil, false
}
