// Package stp implements the simplified spanning-tree state machine: root
// election, path-cost tracking, and the per-port DESIGNATED/ROOT/BLOCKING
// transitions that gate trunk forwarding. It operates purely on a port
// table and bridge-identity triple handed to it by the caller; it does not
// perform I/O itself.
package stp

import (
	"fmt"

	"github.com/kaelnet/vswitchd/pkg/bpdu"
	"github.com/kaelnet/vswitchd/pkg/events"
	"github.com/kaelnet/vswitchd/pkg/port"
	"github.com/kaelnet/vswitchd/pkg/switchmetrics"
)

// LinkCost is the uniform per-link cost this design uses (mock 100 Mbps
// cost); every hop toward the root adds this amount.
const LinkCost = 10

// Identity is the bridge-level state the STP engine reads and mutates.
// root_bid <= own_bid always holds; root_path_cost == 0 iff root_bid ==
// own_bid.
type Identity struct {
	OwnBID       int64
	RootBID      int64
	RootPathCost uint32
}

// WasRoot reports whether this identity currently believes itself the root
// bridge.
func (id Identity) WasRoot() bool {
	return id.OwnBID == id.RootBID
}

// Advertisement is a BPDU this engine wants sent out a trunk port, produced
// as a side effect of processing an incoming one.
type Advertisement struct {
	Port int
	BPDU bpdu.BPDU
}

// Engine runs the per-BPDU processing algorithm against a port table and
// bridge identity. It holds no I/O handles; Process returns the
// advertisements the caller (the data-plane task) must actually send.
type Engine struct {
	Metrics *switchmetrics.Counters
	Events  *events.Bus
}

// NewEngine returns an Engine wired to the given observability sinks. Both
// may be nil.
func NewEngine(metrics *switchmetrics.Counters, bus *events.Bus) *Engine {
	return &Engine{Metrics: metrics, Events: bus}
}

func (e *Engine) countTransition() {
	if e.Metrics != nil {
		e.Metrics.STPTransitions.Add(1)
	}
}

func (e *Engine) publish(ev events.Event) {
	if e.Events != nil {
		e.Events.Publish(ev)
	}
}

// Init sets the initial bridge identity (root is self, cost zero) and
// marks every trunk port Designated. Access ports are left untouched; they
// are never inspected by STP.
func Init(ownBID int64, table port.Table) Identity {
	for i := range table {
		if table[i].Kind == port.Trunk {
			table[i].State = port.Designated
		}
	}
	return Identity{OwnBID: ownBID, RootBID: ownBID, RootPathCost: 0}
}

// Process runs the four-rule algorithm for a BPDU received on trunk port p
// against the current identity and table, mutating table in place and
// returning the updated identity plus any BPDUs that must now be sent.
//
// p must be a valid trunk port index in table; Process does not itself
// enforce that the ingress port is a trunk (the caller classifies ingress
// before calling in).
func (e *Engine) Process(id Identity, table port.Table, p int, b bpdu.BPDU) (Identity, []Advertisement, error) {
	if p < 0 || p >= len(table) {
		return id, nil, fmt.Errorf("stp: port %d out of range", p)
	}

	wasRoot := id.WasRoot()
	var advertisements []Advertisement

	selfEcho := b.OwnBID == id.OwnBID

	switch {
	case selfEcho:
		// Rule 3: loop / echo of our own BPDU. Checked ahead of the root
		// comparisons below: receiving our own advertisement back always
		// means a loop on this port, whatever root it happens to carry.
		// This is a safety override, not an election outcome, so it is
		// exempt from the rule-4 post-step below.
		e.transition(table, p, port.Blocking)

	case b.RootBID < id.RootBID:
		// Rule 1: superior root learned.
		id.RootBID = b.RootBID
		id.RootPathCost = b.RootPathCost + LinkCost
		e.transition(table, p, port.Root)

		if wasRoot {
			for q := range table {
				if table[q].Kind != port.Trunk || q == p {
					continue
				}
				if table[q].State != port.Root {
					e.transition(table, q, port.Blocking)
				}
			}
		}

		for q := range table {
			if table[q].Kind != port.Trunk || q == p {
				continue
			}
			if table[q].State != port.Root {
				advertisements = append(advertisements, Advertisement{
					Port: q,
					BPDU: bpdu.BPDU{OwnBID: id.OwnBID, RootBID: id.RootBID, RootPathCost: id.RootPathCost},
				})
			}
		}

	case b.RootBID == id.RootBID:
		// Rule 2: same root.
		switch {
		case table[p].State == port.Root && b.RootPathCost+LinkCost < id.RootPathCost:
			id.RootPathCost = b.RootPathCost + LinkCost
		case table[p].State != port.Root && b.RootPathCost > id.RootPathCost:
			e.transition(table, p, port.Designated)
		}
	}

	// Rule 4: post-step. If we are (still, or again) the root, no port may
	// be anything but Designated. Does not apply to the rule-3 loop block:
	// a detected self-echo must stay Blocking even on the root bridge.
	if !selfEcho && id.OwnBID == id.RootBID {
		for q := range table {
			if table[q].Kind == port.Trunk {
				e.transition(table, q, port.Designated)
			}
		}
	}

	return id, advertisements, nil
}

func (e *Engine) transition(table port.Table, p int, to port.State) {
	if table[p].State == to {
		return
	}
	from := table[p].State
	table[p].State = to
	e.countTransition()

	switch to {
	case port.Blocking:
		e.publish(events.Event{Kind: events.PortBlocked, Port: p, PortName: table[p].Name})
	case port.Designated, port.Root:
		if from == port.Blocking {
			e.publish(events.Event{Kind: events.PortUnblocked, Port: p, PortName: table[p].Name})
		}
	}
}
