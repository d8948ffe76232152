package cam

import (
	"testing"

	"github.com/kaelnet/vswitchd/pkg/frame"
)

func mac(last byte) frame.MAC {
	return frame.MAC{0x02, 0x00, 0x00, 0x00, 0x00, last}
}

func TestLookupUnknown(t *testing.T) {
	c := New()
	if got := c.Lookup(mac(1)); got != NonePort {
		t.Fatalf("Lookup = %d, want %d", got, NonePort)
	}
}

func TestSetThenLookup(t *testing.T) {
	c := New()
	c.Set(mac(1), 3)
	if got := c.Lookup(mac(1)); got != 3 {
		t.Fatalf("Lookup = %d, want 3", got)
	}
}

func TestSetLastWriterWins(t *testing.T) {
	c := New()
	c.Set(mac(1), 3)
	c.Set(mac(1), 5)
	if got := c.Lookup(mac(1)); got != 5 {
		t.Fatalf("Lookup = %d, want 5 (last writer wins)", got)
	}
}

func TestSnapshot(t *testing.T) {
	c := New()
	c.Set(mac(1), 0)
	c.Set(mac(2), 1)

	entries := c.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("len(Snapshot()) = %d, want 2", len(entries))
	}

	byMAC := make(map[frame.MAC]int, len(entries))
	for _, e := range entries {
		byMAC[e.MAC] = e.Port
	}
	if byMAC[mac(1)] != 0 {
		t.Errorf("mac(1) port = %d, want 0", byMAC[mac(1)])
	}
	if byMAC[mac(2)] != 1 {
		t.Errorf("mac(2) port = %d, want 1", byMAC[mac(2)])
	}
}

func TestSnapshotEmpty(t *testing.T) {
	c := New()
	entries := c.Snapshot()
	if len(entries) != 0 {
		t.Fatalf("len(Snapshot()) = %d, want 0", len(entries))
	}
}
