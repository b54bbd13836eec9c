package prng

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestParsePrecision(t *testing.T) {
	t.Parallel()

	cases := map[string]Precision{
		"uint":    Uint32,
		"UINT32":  Uint32,
		"ulong":   Uint64,
		"uint64":  Uint64,
		" float ": Float32,
		"double":  Float64,
		"f64":     Float64,
	}
	for in, want := range cases {
		got, err := ParsePrecision(in)
		if err != nil {
			t.Fatalf("ParsePrecision(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePrecision(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParsePrecision("half"); err == nil {
		t.Fatal("expected error for unknown precision")
	}
}

func TestPrecisionMetadata(t *testing.T) {
	t.Parallel()

	if Uint64.CType() != "ulong" || Float32.CType() != "float" {
		t.Fatal("unexpected C type names")
	}
	if Float64.Size() != 8 || Uint32.Size() != 4 {
		t.Fatal("unexpected element sizes")
	}
	if Precision(0).Valid() || Precision(9).Valid() {
		t.Fatal("out of range precisions must be invalid")
	}
	if !Float32.IsFloat() || Uint64.IsFloat() {
		t.Fatal("IsFloat mismatch")
	}
}

func TestPutUint32FromNarrowDraw(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 4)
	Uint32.Put(dst, 0xdeadbeef, 32)
	if got := binary.LittleEndian.Uint32(dst); got != 0xdeadbeef {
		t.Fatalf("got %#x", got)
	}
}

func TestPutUint32KeepsHighBits(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 4)
	Uint32.Put(dst, 0x0123456789abcdef, 64)
	if got := binary.LittleEndian.Uint32(dst); got != 0x01234567 {
		t.Fatalf("got %#x", got)
	}
}

func TestPutFloatsInUnitInterval(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 8)
	Float64.Put(dst, 1<<63, 64)
	if got := math.Float64frombits(binary.LittleEndian.Uint64(dst)); got != 0.5 {
		t.Fatalf("float64 half: got %v", got)
	}

	Float64.Put(dst, math.MaxUint64, 64)
	if got := math.Float64frombits(binary.LittleEndian.Uint64(dst)); got >= 1 {
		t.Fatalf("float64 max must stay below 1, got %v", got)
	}

	Float32.Put(dst[:4], math.MaxUint32, 32)
	if got := math.Float32frombits(binary.LittleEndian.Uint32(dst[:4])); got >= 1 || got <= 0.99 {
		t.Fatalf("float32 max: got %v", got)
	}

	Float32.Put(dst[:4], 0, 32)
	if got := math.Float32frombits(binary.LittleEndian.Uint32(dst[:4])); got != 0 {
		t.Fatalf("float32 zero: got %v", got)
	}
}
