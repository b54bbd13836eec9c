package prng

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestLookupNormalizesName(t *testing.T) {
	t.Parallel()

	a, err := Lookup("  TinyMT32 ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a.Name != "tinymt32" {
		t.Fatalf("unexpected name %q", a.Name)
	}
	if a.StateSize != 28 || a.NativeBits != 32 {
		t.Fatalf("unexpected descriptor %+v", a)
	}
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()

	_, err := Lookup("nope")
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	t.Parallel()

	names := Names()
	if len(names) != 21 {
		t.Fatalf("expected 21 algorithms, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
	names[0] = "mutated"
	if Names()[0] == "mutated" {
		t.Fatal("Names must return a copy")
	}
}

func TestStateSizeMatchesLaneLayout(t *testing.T) {
	t.Parallel()

	for _, a := range All() {
		l := a.NewLane()
		if l == nil {
			t.Fatalf("%s: no host lane", a.Name)
		}
		if got := binary.Size(l); got != a.StateSize {
			t.Fatalf("%s: lane encodes to %d bytes, descriptor says %d", a.Name, got, a.StateSize)
		}
	}
}

func TestKernelFragmentsDeclareEntryPoints(t *testing.T) {
	t.Parallel()

	for _, a := range All() {
		for _, sym := range []string{a.Name + "_state", a.Name + "_seed(", a.Name + "_next("} {
			if !strings.Contains(a.Source, sym) {
				t.Fatalf("%s: fragment missing %q", a.Name, sym)
			}
		}
	}
}

func TestLanesDeterministic(t *testing.T) {
	t.Parallel()

	for _, a := range All() {
		x, y := a.NewLane(), a.NewLane()
		x.Seed(42)
		y.Seed(42)
		for i := range 64 {
			vx, vy := x.Next(), y.Next()
			if vx != vy {
				t.Fatalf("%s: draw %d diverged: %#x != %#x", a.Name, i, vx, vy)
			}
			if a.NativeBits == 32 && vx>>32 != 0 {
				t.Fatalf("%s: draw %d exceeds 32 bits: %#x", a.Name, i, vx)
			}
		}
	}
}

func TestLanesDifferBySeed(t *testing.T) {
	t.Parallel()

	for _, a := range All() {
		x, y := a.NewLane(), a.NewLane()
		x.Seed(LaneSeed(7, 0))
		y.Seed(LaneSeed(7, 1))
		same := true
		for range 16 {
			if x.Next() != y.Next() {
				same = false
			}
		}
		if same {
			t.Fatalf("%s: distinct lane seeds produced identical sequences", a.Name)
		}
	}
}

func TestLaneRoundTripThroughSlot(t *testing.T) {
	t.Parallel()

	for _, a := range All() {
		l := a.NewLane()
		l.Seed(99)
		l.Next()

		slot := make([]byte, a.StateSize)
		if err := StoreLane(l, slot); err != nil {
			t.Fatalf("%s: store: %v", a.Name, err)
		}
		restored := a.NewLane()
		if err := LoadLane(restored, slot); err != nil {
			t.Fatalf("%s: load: %v", a.Name, err)
		}
		for i := range 8 {
			if want, got := l.Next(), restored.Next(); want != got {
				t.Fatalf("%s: draw %d after restore: want %#x got %#x", a.Name, i, want, got)
			}
		}
	}
}

func TestMT19937ReferenceOutput(t *testing.T) {
	t.Parallel()

	a, err := Lookup("mt19937")
	if err != nil {
		t.Fatal(err)
	}
	l := a.NewLane()
	l.Seed(5489)
	want := []uint64{3499211612, 581869302, 3890346734, 3586334585, 545404204}
	for i, w := range want {
		if got := l.Next(); got != w {
			t.Fatalf("draw %d: want %d got %d", i, w, got)
		}
	}
}

func TestTinyMT32ReferenceOutput(t *testing.T) {
	t.Parallel()

	a, err := Lookup("tinymt32")
	if err != nil {
		t.Fatal(err)
	}
	l := a.NewLane()
	l.Seed(1)
	if got := l.Next(); got != 2545341989 {
		t.Fatalf("first draw: want 2545341989 got %d", got)
	}
}

func TestCheckPrecision(t *testing.T) {
	t.Parallel()

	narrow, _ := Lookup("tinymt32")
	wide, _ := Lookup("tinymt64")

	if err := narrow.CheckPrecision(Float64); !errors.Is(err, ErrUnsupportedPrecision) {
		t.Fatalf("expected ErrUnsupportedPrecision, got %v", err)
	}
	if err := narrow.CheckPrecision(Uint32); err != nil {
		t.Fatalf("uint32 should be supported: %v", err)
	}
	for _, p := range []Precision{Uint32, Uint64, Float32, Float64} {
		if err := wide.CheckPrecision(p); err != nil {
			t.Fatalf("tinymt64 should support %s: %v", p, err)
		}
	}
}
