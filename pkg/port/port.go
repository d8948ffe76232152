// Package port holds the per-bridge port table: the ordered mapping from
// local port index to its kind, VLAN assignment, and current STP state.
package port

import "fmt"

// Kind distinguishes an access port (single untagged VLAN) from a trunk
// port (tagged, carries any VLAN).
type Kind int

const (
	Access Kind = iota
	Trunk
)

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case Trunk:
		return "trunk"
	default:
		return "unknown"
	}
}

// State is one of the three STP port states. Access ports are always
// Designated and are never touched by the STP engine.
type State int

const (
	Designated State = iota
	Root
	Blocking
)

func (s State) String() string {
	switch s {
	case Designated:
		return "designated"
	case Root:
		return "root"
	case Blocking:
		return "blocking"
	default:
		return "unknown"
	}
}

// MinVLAN and MaxVLAN bound the valid access-port VLAN range.
const (
	MinVLAN = 1
	MaxVLAN = 4094
)

// Port is one entry in the port table. Kind and VLAN are immutable after
// construction; State is mutated only by the STP engine.
type Port struct {
	Name  string
	Kind  Kind
	VLAN  int // meaningful only when Kind == Access
	State State
}

// New constructs a Port, validating the access-VLAN invariant. Trunk ports
// are constructed with VLAN 0 (undefined, per the data model).
func New(name string, kind Kind, vlan int) (Port, error) {
	if kind == Access {
		if vlan < MinVLAN || vlan > MaxVLAN {
			return Port{}, fmt.Errorf("port %s: VLAN %d out of range [%d,%d]", name, vlan, MinVLAN, MaxVLAN)
		}
		return Port{Name: name, Kind: Access, VLAN: vlan, State: Designated}, nil
	}
	return Port{Name: name, Kind: Trunk, VLAN: 0, State: Designated}, nil
}

// Table is the ordered port list, indexed by local port index.
type Table []Port

// TrunkIndices returns the port indices whose Kind is Trunk, in table order.
func (t Table) TrunkIndices() []int {
	var out []int
	for i, p := range t {
		if p.Kind == Trunk {
			out = append(out, i)
		}
	}
	return out
}
