// Package frame implements the Ethernet/802.1Q codec the forwarding engine
// uses to classify ingress frames and adapt tagging on egress. It holds no
// state and enforces no forwarding policy; it only parses and splices raw
// bytes.
package frame

import (
	"encoding/binary"
	"fmt"
)

// TPID is the tag protocol identifier this topology uses for 802.1Q tags.
// The IEEE-standard value is 0x8100; this design uses 0x8200 because the
// topology is self-contained and every bridge in it agrees on the value.
const TPID = 0x8200

// NoVLAN marks a frame that carries no 802.1Q tag.
const NoVLAN = -1

const (
	minFrameLen       = 14 // dst(6) + src(6) + ethertype(2)
	minTaggedFrameLen = 18 // dst(6) + src(6) + tpid(2) + tci(2) + ethertype(2)
	tagLen            = 4
	vidMask           = 0x0FFF
)

// MAC is a 6-byte hardware address.
type MAC [6]byte

// Broadcast is the all-ones destination used for flooding.
var Broadcast = MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func macFrom(b []byte) MAC {
	var m MAC
	copy(m[:], b)
	return m
}

// Header is the result of parsing the destination, source, VLAN, and
// ethertype out of a raw frame. VLAN is NoVLAN when the frame carries no
// 802.1Q tag.
type Header struct {
	Dst       MAC
	Src       MAC
	VLAN      int
	Ethertype uint16
	Tagged    bool
}

// Parse inspects buf and extracts the destination, source, VLAN tag (if
// any), and ethertype. It rejects frames shorter than the minimum length
// for their apparent tag status.
func Parse(buf []byte) (Header, error) {
	if len(buf) < minFrameLen {
		return Header{}, fmt.Errorf("frame: buffer too short: %d bytes, need at least %d", len(buf), minFrameLen)
	}

	h := Header{
		Dst: macFrom(buf[0:6]),
		Src: macFrom(buf[6:12]),
	}

	tpid := binary.BigEndian.Uint16(buf[12:14])
	if tpid == TPID {
		if len(buf) < minTaggedFrameLen {
			return Header{}, fmt.Errorf("frame: truncated 802.1Q tag: %d bytes, need at least %d", len(buf), minTaggedFrameLen)
		}
		tci := binary.BigEndian.Uint16(buf[14:16])
		h.VLAN = int(tci & vidMask)
		h.Tagged = true
		h.Ethertype = binary.BigEndian.Uint16(buf[16:18])
	} else {
		h.VLAN = NoVLAN
		h.Ethertype = tpid
	}

	return h, nil
}

// InsertTag returns a copy of buf with an 802.1Q tag for vid spliced in
// after the source MAC (offset 12). buf must be at least minFrameLen bytes
// and must not already carry a tag.
func InsertTag(buf []byte, vid int) ([]byte, error) {
	if len(buf) < minFrameLen {
		return nil, fmt.Errorf("frame: buffer too short to tag: %d bytes", len(buf))
	}

	out := make([]byte, len(buf)+tagLen)
	copy(out[0:12], buf[0:12])
	binary.BigEndian.PutUint16(out[12:14], TPID)
	binary.BigEndian.PutUint16(out[14:16], uint16(vid)&vidMask)
	copy(out[16:], buf[12:])
	return out, nil
}

// StripTag returns a copy of buf with the 4-byte 802.1Q tag at offset 12
// removed. The caller must have already verified a tag is present (e.g. via
// Parse); StripTag does not itself check the TPID.
func StripTag(buf []byte) ([]byte, error) {
	if len(buf) < minTaggedFrameLen {
		return nil, fmt.Errorf("frame: buffer too short to untag: %d bytes", len(buf))
	}

	out := make([]byte, len(buf)-tagLen)
	copy(out[0:12], buf[0:12])
	copy(out[12:], buf[16:])
	return out, nil
}
