// Package cam implements the learning table (content-addressable memory)
// that maps a source MAC address to the port index it was last observed on.
// Entries are last-writer-wins; this design has no aging.
package cam

import (
	"sync"

	"github.com/kaelnet/vswitchd/pkg/frame"
)

// NonePort is returned by Lookup when the address has not been learned.
const NonePort = -1

// Table is the CAM. Writes come from a single task (the data-plane loop);
// reads may come from that same task or from an observer (the debug API),
// hence the RWMutex rather than an unsynchronized map.
type Table struct {
	mu      sync.RWMutex
	entries map[frame.MAC]int
}

// New returns an empty CAM.
func New() *Table {
	return &Table{entries: make(map[frame.MAC]int)}
}

// Set records that mac was last seen arriving on port. Last writer wins.
func (t *Table) Set(mac frame.MAC, port int) {
	t.mu.Lock()
	t.entries[mac] = port
	t.mu.Unlock()
}

// Lookup returns the learned port for mac, or NonePort if it has never been
// observed.
func (t *Table) Lookup(mac frame.MAC) int {
	t.mu.RLock()
	p, ok := t.entries[mac]
	t.mu.RUnlock()
	if !ok {
		return NonePort
	}
	return p
}

// Entry is a single CAM row, used by Snapshot for observability.
type Entry struct {
	MAC  frame.MAC
	Port int
}

// Snapshot returns a point-in-time copy of every CAM entry, for the debug
// API. It never blocks the data plane for longer than the copy itself.
func (t *Table) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.entries))
	for mac, port := range t.entries {
		out = append(out, Entry{MAC: mac, Port: port})
	}
	return out
}
