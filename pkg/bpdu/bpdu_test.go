package bpdu

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := BPDU{OwnBID: 10, RootBID: 10, RootPathCost: 0}

	wire := Encode(in)
	if len(wire) != Size {
		t.Fatalf("encoded length = %d, want %d", len(wire), Size)
	}
	for i, b := range DstMAC {
		if wire[i] != b {
			t.Fatalf("dst mac byte %d = %#x, want %#x", i, wire[i], b)
		}
	}

	out, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestDecodeWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, Size-1)); err == nil {
		t.Fatal("expected error for short BPDU")
	}
	if _, err := Decode(make([]byte, Size+1)); err == nil {
		t.Fatal("expected error for long BPDU")
	}
}

func TestIsBPDU(t *testing.T) {
	if !IsBPDU(DstMAC) {
		t.Fatal("expected DstMAC to classify as a BPDU destination")
	}
	other := DstMAC
	other[5] = 0x01
	if IsBPDU(other) {
		t.Fatal("did not expect a different address to classify as BPDU")
	}
}

func TestEncodeNegativeBID(t *testing.T) {
	// Bridge IDs are signed in the data model but encoded as raw 64-bit
	// big-endian words; a negative value must still round-trip.
	in := BPDU{OwnBID: -5, RootBID: 10, RootPathCost: 20}
	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", out, in)
	}
}
