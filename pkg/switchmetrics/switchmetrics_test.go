package switchmetrics

import "testing"

func TestSnapshotReflectsCounters(t *testing.T) {
	c := New()
	c.FramesForwarded.Add(3)
	c.FramesDropped.Add(1)
	c.BPDUsSent.Add(2)
	c.BPDUsReceived.Add(5)
	c.BPDUsDropped.Add(1)
	c.STPTransitions.Add(4)

	got := c.Snapshot()
	want := Snapshot{
		FramesForwarded: 3,
		FramesDropped:   1,
		BPDUsSent:       2,
		BPDUsReceived:   5,
		BPDUsDropped:    1,
		STPTransitions:  4,
	}
	if got != want {
		t.Fatalf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestNewIsZeroed(t *testing.T) {
	got := New().Snapshot()
	if got != (Snapshot{}) {
		t.Fatalf("Snapshot() = %+v, want zero value", got)
	}
}
