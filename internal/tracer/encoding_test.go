package tracer

import "testing"

func TestLittleEndianRoundTrip(t *testing.T) {
	want := uint64(0xdeadbeefcafebabe)
	buf := make([]byte, 8)
	putLittleEndianUint64(buf, want)

	if buf[0] != 0xbe || buf[7] != 0xde {
		t.Fatalf("expected little-endian byte order, got %x", buf)
	}

	got := littleEndianUint64(buf)
	if got != want {
		t.Fatalf("round trip mismatch: want %#x got %#x", want, got)
	}
}
