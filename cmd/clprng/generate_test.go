package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/samcharles93/clprng/internal/prng"
)

func TestWriteText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    prng.Precision
		raw  []byte
		want string
	}{
		{"uint32", prng.Uint32, binary.LittleEndian.AppendUint32(binary.LittleEndian.AppendUint32(nil, 7), math.MaxUint32), "7\n4294967295\n"},
		{"uint64", prng.Uint64, binary.LittleEndian.AppendUint64(nil, math.MaxUint64), "18446744073709551615\n"},
		{"float32", prng.Float32, binary.LittleEndian.AppendUint32(nil, math.Float32bits(0.25)), "0.25\n"},
		{"float64", prng.Float64, binary.LittleEndian.AppendUint64(nil, math.Float64bits(0.125)), "0.125\n"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		if err := writeText(w, tc.p, tc.raw); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUniformity(t *testing.T) {
	t.Parallel()

	const bins = 8
	var flat []byte
	for i := range 800 {
		v := (float64(i%bins) + 0.5) / bins
		flat = binary.LittleEndian.AppendUint64(flat, math.Float64bits(v))
	}
	chi2, p := uniformity(flat, prng.Float64, bins)
	if chi2 != 0 || p < 0.999 {
		t.Fatalf("flat histogram: chi2=%v p=%v", chi2, p)
	}

	var skewed []byte
	for range 800 {
		skewed = binary.LittleEndian.AppendUint32(skewed, 1)
	}
	chi2, p = uniformity(skewed, prng.Uint32, bins)
	if chi2 <= 0 || p > 1e-6 {
		t.Fatalf("skewed histogram: chi2=%v p=%v", chi2, p)
	}

	var uneven []byte
	for _, q := range []uint32{0, 0, 2, 3} {
		uneven = binary.LittleEndian.AppendUint32(uneven, q<<30)
	}
	if chi2, _ := uniformity(uneven, prng.Uint32, 4); math.Abs(chi2-2) > 1e-12 {
		t.Fatalf("uneven histogram: chi2=%v, want 2", chi2)
	}

	if chi2, p := uniformity(nil, prng.Uint32, bins); chi2 != 0 || p != 1 {
		t.Fatalf("empty input: chi2=%v p=%v", chi2, p)
	}
}
