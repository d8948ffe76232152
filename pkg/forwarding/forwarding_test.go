package forwarding

import (
	"bytes"
	"testing"

	"github.com/kaelnet/vswitchd/pkg/cam"
	"github.com/kaelnet/vswitchd/pkg/frame"
	"github.com/kaelnet/vswitchd/pkg/port"
)

func mac(last byte) frame.MAC {
	return frame.MAC{0x02, 0x00, 0x00, 0x00, 0x00, last}
}

func rawFrame(dst, src frame.MAC) []byte {
	buf := make([]byte, 14)
	copy(buf[0:6], dst[:])
	copy(buf[6:12], src[:])
	buf[12] = 0x08
	buf[13] = 0x00
	return buf
}

// table: port0/port1 access on VLAN 10, port2 access on VLAN 20, port3 trunk.
func testTable(t *testing.T) port.Table {
	t.Helper()
	p0, err := port.New("r-a", port.Access, 10)
	if err != nil {
		t.Fatal(err)
	}
	p1, err := port.New("r-b", port.Access, 10)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := port.New("r-c", port.Access, 20)
	if err != nil {
		t.Fatal(err)
	}
	p3, err := port.New("rr-d", port.Trunk, 0)
	if err != nil {
		t.Fatal(err)
	}
	return port.Table{p0, p1, p2, p3}
}

func hasPort(egresses []Egress, p int) bool {
	for _, e := range egresses {
		if e.Port == p {
			return true
		}
	}
	return false
}

// Scenario A: an unknown-destination (broadcast) frame floods to every
// other port in the ingress VLAN plus the trunk, and its source is learned.
func TestForwardLearnsAndFloods(t *testing.T) {
	c := cam.New()
	e := New(c, nil, nil)
	table := testTable(t)

	src := mac(1)
	buf := rawFrame(frame.Broadcast, src)
	h, err := frame.Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := e.Forward(0, table, h, buf)

	if hasPort(out, 0) {
		t.Error("flooded back out the ingress port")
	}
	for _, p := range []int{1, 3} {
		if !hasPort(out, p) {
			t.Errorf("expected flood to port %d", p)
		}
	}
	if got := c.Lookup(src); got != 0 {
		t.Errorf("CAM learned port %d for src, want 0", got)
	}
}

// Scenario B: once a destination is learned, a unicast frame is sent only
// to the learned port.
func TestForwardKnownUnicast(t *testing.T) {
	c := cam.New()
	c.Set(mac(9), 1)
	e := New(c, nil, nil)
	table := testTable(t)

	buf := rawFrame(mac(9), mac(1))
	h, _ := frame.Parse(buf)

	out := e.Forward(0, table, h, buf)
	if len(out) != 1 || out[0].Port != 1 {
		t.Fatalf("egresses = %+v, want exactly port 1", out)
	}
}

// Invariant 4: a known-unicast destination that maps back to the ingress
// port produces no egress at all.
func TestForwardKnownUnicastSelfHit(t *testing.T) {
	c := cam.New()
	c.Set(mac(9), 0)
	e := New(c, nil, nil)
	table := testTable(t)

	buf := rawFrame(mac(9), mac(1))
	h, _ := frame.Parse(buf)

	out := e.Forward(0, table, h, buf)
	if out != nil {
		t.Fatalf("egresses = %+v, want none", out)
	}
}

// Scenario F: a broadcast frame from a VLAN-10 access port reaches other
// VLAN-10 access ports and the trunk (tagged), but not the VLAN-20 port.
func TestForwardVLANIsolation(t *testing.T) {
	c := cam.New()
	e := New(c, nil, nil)
	table := testTable(t)

	buf := rawFrame(frame.Broadcast, mac(1))
	h, _ := frame.Parse(buf)

	out := e.Forward(0, table, h, buf)

	if !hasPort(out, 1) {
		t.Error("expected delivery to the other VLAN-10 access port")
	}
	if hasPort(out, 2) {
		t.Error("did not expect delivery to the VLAN-20 access port")
	}
	if !hasPort(out, 3) {
		t.Error("expected delivery to the trunk")
	}

	for _, eg := range out {
		if eg.Port == 3 {
			th, err := frame.Parse(eg.Data)
			if err != nil {
				t.Fatalf("Parse trunk egress: %v", err)
			}
			if !th.Tagged || th.VLAN != 10 {
				t.Errorf("trunk egress: tagged=%v vlan=%d, want tagged vlan 10", th.Tagged, th.VLAN)
			}
		}
	}
}

// A tagged frame from a trunk ingress, delivered to an access port on a
// matching VLAN, must arrive untagged.
func TestForwardTrunkToAccessStripsTag(t *testing.T) {
	c := cam.New()
	c.Set(mac(1), 0) // so the unicast hits exactly one access port
	e := New(c, nil, nil)
	table := testTable(t)

	raw := rawFrame(mac(1), mac(5))
	tagged, err := frame.InsertTag(raw, 10)
	if err != nil {
		t.Fatalf("InsertTag: %v", err)
	}
	h, err := frame.Parse(tagged)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := e.Forward(3, table, h, tagged)
	if len(out) != 1 || out[0].Port != 0 {
		t.Fatalf("egresses = %+v, want exactly port 0", out)
	}
	if bytes.Contains(out[0].Data, []byte{0x82, 0x00}) {
		t.Error("expected the 802.1Q tag to be stripped before delivery to an access port")
	}
}

// Boundary: a tagged frame on an access port is undefined and dropped.
func TestForwardTaggedOnAccessDropped(t *testing.T) {
	c := cam.New()
	e := New(c, nil, nil)
	table := testTable(t)

	raw := rawFrame(frame.Broadcast, mac(1))
	tagged, err := frame.InsertTag(raw, 10)
	if err != nil {
		t.Fatalf("InsertTag: %v", err)
	}
	h, _ := frame.Parse(tagged)

	out := e.Forward(0, table, h, tagged)
	if out != nil {
		t.Fatalf("egresses = %+v, want none (dropped)", out)
	}
}

// Boundary: an untagged frame ingressing a trunk port is undefined and
// dropped.
func TestForwardUntaggedOnTrunkDropped(t *testing.T) {
	c := cam.New()
	e := New(c, nil, nil)
	table := testTable(t)

	buf := rawFrame(frame.Broadcast, mac(1))
	h, _ := frame.Parse(buf)

	out := e.Forward(3, table, h, buf)
	if out != nil {
		t.Fatalf("egresses = %+v, want none (dropped)", out)
	}
}

// A blocking trunk port is never an egress candidate.
func TestForwardSkipsBlockingTrunk(t *testing.T) {
	c := cam.New()
	e := New(c, nil, nil)
	table := testTable(t)
	table[3].State = port.Blocking

	buf := rawFrame(frame.Broadcast, mac(1))
	h, _ := frame.Parse(buf)

	out := e.Forward(0, table, h, buf)
	if hasPort(out, 3) {
		t.Error("expected the blocking trunk to be excluded from egress")
	}
}

func TestForwardIngressOutOfRange(t *testing.T) {
	c := cam.New()
	e := New(c, nil, nil)
	table := testTable(t)

	buf := rawFrame(frame.Broadcast, mac(1))
	h, _ := frame.Parse(buf)

	out := e.Forward(99, table, h, buf)
	if out != nil {
		t.Fatalf("egresses = %+v, want none", out)
	}
}
