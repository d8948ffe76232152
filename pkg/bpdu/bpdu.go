// Package bpdu implements the fixed 26-byte control frame used by the STP
// engine: encode/decode only, no policy. The layout is
//
//	dst_mac(6) || own_bid(8 BE) || root_bid(8 BE) || root_path_cost(4 BE)
//
// with dst_mac fixed to the STP multicast address 01:80:C2:00:00:00, which
// also doubles as the ingress classifier for "this frame is a BPDU".
package bpdu

import (
	"encoding/binary"
	"fmt"

	"github.com/kaelnet/vswitchd/pkg/frame"
)

// Size is the fixed wire length of a BPDU frame.
const Size = 26

// DstMAC is the STP multicast destination address.
var DstMAC = frame.MAC{0x01, 0x80, 0xc2, 0x00, 0x00, 0x00}

const (
	offDst      = 0
	offOwnBID   = 6
	offRootBID  = 14
	offRootCost = 22
)

// BPDU is the decoded control frame.
type BPDU struct {
	OwnBID       int64
	RootBID      int64
	RootPathCost uint32
}

// Encode renders a BPDU to its fixed 26-byte wire form.
func Encode(b BPDU) []byte {
	buf := make([]byte, Size)
	copy(buf[offDst:offDst+6], DstMAC[:])
	binary.BigEndian.PutUint64(buf[offOwnBID:], uint64(b.OwnBID))
	binary.BigEndian.PutUint64(buf[offRootBID:], uint64(b.RootBID))
	binary.BigEndian.PutUint32(buf[offRootCost:], b.RootPathCost)
	return buf
}

// Decode parses a BPDU from raw wire bytes. It returns an error if the
// buffer is not exactly Size bytes; a malformed BPDU is dropped by the
// caller, never partially interpreted.
func Decode(buf []byte) (BPDU, error) {
	if len(buf) != Size {
		return BPDU{}, fmt.Errorf("bpdu: wrong length: %d bytes, want %d", len(buf), Size)
	}

	return BPDU{
		OwnBID:       int64(binary.BigEndian.Uint64(buf[offOwnBID:])),
		RootBID:      int64(binary.BigEndian.Uint64(buf[offRootBID:])),
		RootPathCost: binary.BigEndian.Uint32(buf[offRootCost:]),
	}, nil
}

// IsBPDU reports whether dst is the STP multicast address used to classify
// ingress frames destined for the STP engine rather than the forwarding
// engine.
func IsBPDU(dst frame.MAC) bool {
	return dst == DstMAC
}
