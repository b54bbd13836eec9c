package kernelsrc

import (
	"errors"
	"strings"
	"testing"

	"github.com/samcharles93/clprng/internal/prng"
)

func mustLookup(t *testing.T, name string) prng.Algorithm {
	t.Helper()
	a, err := prng.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return a
}

func TestAssembleDeterministic(t *testing.T) {
	t.Parallel()

	a := mustLookup(t, "tinymt32")
	u1, err := Assemble(a, prng.Uint32)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	u2, err := Assemble(a, prng.Uint32)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if u1.Source != u2.Source {
		t.Fatal("assembling twice produced different source")
	}
}

func TestAssembleEntryPoints(t *testing.T) {
	t.Parallel()

	for _, a := range prng.All() {
		u, err := Assemble(a, prng.Uint32)
		if err != nil {
			t.Fatalf("%s: %v", a.Name, err)
		}
		if got := strings.Count(u.Source, "kernel void "); got != 2 {
			t.Fatalf("%s: expected 2 kernels, found %d", a.Name, got)
		}
		for _, want := range []string{
			"kernel void seed_prng(ulong seed, global " + a.Name + "_state* states)",
			"kernel void generate_stream(global " + a.Name + "_state* states, global CLPRNG_OUTPUT_T* out, uint count)",
		} {
			if !strings.Contains(u.Source, want) {
				t.Fatalf("%s: missing %q", a.Name, want)
			}
		}
		if u.StateSize != a.StateSize {
			t.Fatalf("%s: state size %d, want %d", a.Name, u.StateSize, a.StateSize)
		}
	}
}

func TestAssembleFP64Pragma(t *testing.T) {
	t.Parallel()

	a := mustLookup(t, "xorshift1024")
	u, err := Assemble(a, prng.Float64)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(u.Source, "cl_khr_fp64") {
		t.Fatal("double output requires the fp64 pragma")
	}
	u, err = Assemble(a, prng.Float32)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if strings.Contains(u.Source, "cl_khr_fp64") {
		t.Fatal("float output must not enable fp64")
	}
}

func TestAssembleShiftsNarrowDraws(t *testing.T) {
	t.Parallel()

	u, err := Assemble(mustLookup(t, "mwc64x"), prng.Float32)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(u.Source, "n <<= 32;") {
		t.Fatal("32-bit draws must be shifted to the top of the word")
	}
	u, err = Assemble(mustLookup(t, "kiss09"), prng.Uint64)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if strings.Contains(u.Source, "n <<=") {
		t.Fatal("64-bit draws must not be shifted")
	}
}

func TestAssembleUnsupportedPrecision(t *testing.T) {
	t.Parallel()

	_, err := Assemble(mustLookup(t, "tinymt32"), prng.Float64)
	if !errors.Is(err, prng.ErrUnsupportedPrecision) {
		t.Fatalf("expected ErrUnsupportedPrecision, got %v", err)
	}
	_, err = Assemble(mustLookup(t, "tinymt64"), prng.Precision(0))
	if !errors.Is(err, prng.ErrUnsupportedPrecision) {
		t.Fatalf("expected ErrUnsupportedPrecision for invalid precision, got %v", err)
	}
}

func TestParseHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	u, err := Assemble(mustLookup(t, "philox2x32_10"), prng.Uint64)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	h, err := ParseHeader(u.Source)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	if h.Algorithm != "philox2x32_10" || h.Precision != prng.Uint64 {
		t.Fatalf("unexpected header %+v", h)
	}
}

func TestParseHeaderMissingDefines(t *testing.T) {
	t.Parallel()

	if _, err := ParseHeader("kernel void x() {}"); err == nil {
		t.Fatal("expected error for source without defines")
	}
	if _, err := ParseHeader("#define CLPRNG_ALGORITHM mt19937\n"); err == nil {
		t.Fatal("expected error for missing precision")
	}
}
