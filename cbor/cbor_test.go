package cbor

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type record struct {
		A uint64
		B string
	}
	want := record{A: 42, B: "hello"}

	encoded, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got record
	if _, err := Decode(encoded, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestEncodeIsCanonicalMapKeyOrder(t *testing.T) {
	// Two maps with the same entries in different insertion order must
	// encode identically under canonical (sorted-key) encoding.
	m1 := map[int]string{3: "c", 1: "a", 2: "b"}
	m2 := map[int]string{1: "a", 2: "b", 3: "c"}

	e1, err := Encode(m1)
	if err != nil {
		t.Fatalf("Encode(m1): %v", err)
	}
	e2, err := Encode(m2)
	if err != nil {
		t.Fatalf("Encode(m2): %v", err)
	}
	if !bytes.Equal(e1, e2) {
		t.Fatalf("canonical encodings differ: %x vs %x", e1, e2)
	}
}

func TestEncodeShortestFormInteger(t *testing.T) {
	// 23 fits in the CBOR "immediate" argument encoding (1 byte total);
	// anything requiring an explicit length prefix would be longer.
	encoded, err := Encode(uint64(23))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != 1 {
		t.Fatalf("Encode(23) = %x, want a single byte", encoded)
	}
}

func TestDecodeRejectsDuplicateMapKeys(t *testing.T) {
	// 0xa2 02 01 02 02 == map{2:1, 2:2}: a duplicate key, which
	// canonical CBOR must reject rather than silently picking one.
	dup := []byte{0xa2, 0x02, 0x01, 0x02, 0x02}
	var out map[int]int
	if _, err := Decode(dup, &out); err == nil {
		t.Fatal("expected Decode to reject a duplicate map key")
	}
}
