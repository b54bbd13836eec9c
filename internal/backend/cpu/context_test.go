package cpu

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/kernelsrc"
	"github.com/samcharles93/clprng/internal/prng"
)

func openTest(t *testing.T, limit int64) *Context {
	t.Helper()
	ctx, err := (&Device{ComputeUnits: 4, MemoryLimit: limit}).Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx.(*Context)
}

func TestOpenInvalidDevice(t *testing.T) {
	t.Parallel()

	var nilDev *Device
	if _, err := nilDev.Open(); !errors.Is(err, backend.ErrDevice) {
		t.Fatalf("nil device: expected ErrDevice, got %v", err)
	}
	if _, err := (&Device{MemoryLimit: 1 << 20}).Open(); !errors.Is(err, backend.ErrDevice) {
		t.Fatalf("zero compute units: expected ErrDevice, got %v", err)
	}
	if _, err := (&Device{ComputeUnits: 1}).Open(); !errors.Is(err, backend.ErrDevice) {
		t.Fatalf("zero memory: expected ErrDevice, got %v", err)
	}
}

func TestAllocLimitAndCompact(t *testing.T) {
	t.Parallel()

	ctx := openTest(t, 1024)

	a, err := ctx.Alloc(768)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := ctx.Alloc(512); !errors.Is(err, backend.ErrAllocation) {
		t.Fatalf("expected ErrAllocation over the limit, got %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := ctx.Alloc(512); !errors.Is(err, backend.ErrAllocation) {
		t.Fatalf("cached buffer must still count against the limit, got %v", err)
	}
	ctx.Compact()
	if ctx.InUse() != 0 {
		t.Fatalf("expected 0 bytes in use after compact, got %d", ctx.InUse())
	}
	if _, err := ctx.Alloc(512); err != nil {
		t.Fatalf("alloc after compact: %v", err)
	}
}

func TestAllocReusesCachedBuffer(t *testing.T) {
	t.Parallel()

	ctx := openTest(t, 1<<20)
	a, err := ctx.Alloc(64)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if err := ctx.WriteBuffer(a, 0, []byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	native := a.Native()
	_ = a.Release()

	b, err := ctx.Alloc(64)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if b.Native() != native {
		t.Fatal("expected the cached buffer to be reused")
	}
	got := make([]byte, 3)
	if err := ctx.ReadBuffer(b, 0, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[0] != 0 || got[1] != 0 || got[2] != 0 {
		t.Fatalf("reused buffer must be cleared, got %v", got)
	}
}

func TestCopyAndRangeChecks(t *testing.T) {
	t.Parallel()

	ctx := openTest(t, 1<<20)
	src, _ := ctx.Alloc(16)
	dst, _ := ctx.Alloc(16)
	if err := ctx.WriteBuffer(src, 0, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ctx.CopyBuffer(dst, 4, src, 8, 8); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if err := ctx.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	got := make([]byte, 8)
	if err := ctx.ReadBuffer(dst, 4, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "89abcdef" {
		t.Fatalf("unexpected copy result %q", got)
	}
	if err := ctx.CopyBuffer(dst, 12, src, 0, 8); err == nil {
		t.Fatal("expected out of range copy to fail")
	}
	if err := ctx.ReadBuffer(src, 10, make([]byte, 10)); err == nil {
		t.Fatal("expected out of range read to fail")
	}
}

func TestBuildRejectsBadSource(t *testing.T) {
	t.Parallel()

	ctx := openTest(t, 1<<20)
	_, err := ctx.Build("kernel void nope() {}")
	var ce *backend.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if ce.Log == "" {
		t.Fatal("expected a build log")
	}
}

func TestBuildMissingKernel(t *testing.T) {
	t.Parallel()

	ctx := openTest(t, 1<<20)
	src := "#define CLPRNG_ALGORITHM mwc64x\n#define CLPRNG_PRECISION uint32\n" +
		"inline void mwc64x_seed() {}\ninline uint mwc64x_next() {}\n"
	prog, err := ctx.Build(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := prog.Kernel(kernelsrc.SeedEntry); !errors.Is(err, backend.ErrCompile) {
		t.Fatalf("expected ErrCompile for missing kernel, got %v", err)
	}
}

func TestKernelsMatchHostLanes(t *testing.T) {
	t.Parallel()

	const (
		global = 8
		local  = 4
		count  = 40
		seed   = 1234
	)
	for _, name := range []string{"tinymt32", "xorshift1024", "philox2x32_10"} {
		alg, err := prng.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		p := prng.Uint32
		unit, err := kernelsrc.Assemble(alg, p)
		if err != nil {
			t.Fatalf("%s: assemble: %v", name, err)
		}

		ctx := openTest(t, 1<<20)
		prog, err := ctx.Build(unit.Source)
		if err != nil {
			t.Fatalf("%s: build: %v", name, err)
		}
		seedK, _ := prog.Kernel(kernelsrc.SeedEntry)
		genK, _ := prog.Kernel(kernelsrc.GenerateEntry)
		states, _ := ctx.Alloc(global * alg.StateSize)
		out, _ := ctx.Alloc(count * p.Size())

		if err := ctx.Launch(seedK, global, local, uint64(seed), states); err != nil {
			t.Fatalf("%s: seed: %v", name, err)
		}
		if err := ctx.Launch(genK, global, local, states, out, uint32(count)); err != nil {
			t.Fatalf("%s: generate: %v", name, err)
		}
		if err := ctx.Finish(); err != nil {
			t.Fatalf("%s: finish: %v", name, err)
		}
		got := make([]byte, count*p.Size())
		if err := ctx.ReadBuffer(out, 0, got); err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}

		lanes := make([]prng.Lane, global)
		for i := range lanes {
			lanes[i] = alg.NewLane()
			lanes[i].Seed(prng.LaneSeed(seed, uint64(i)))
		}
		want := make([]byte, p.Size())
		for i := range count {
			p.Put(want, lanes[i%global].Next(), alg.NativeBits)
			if g, w := binary.LittleEndian.Uint32(got[i*4:]), binary.LittleEndian.Uint32(want); g != w {
				t.Fatalf("%s: element %d: got %#x want %#x", name, i, g, w)
			}
		}
	}
}

func TestLaunchValidatesArguments(t *testing.T) {
	t.Parallel()

	alg, _ := prng.Lookup("mwc64x")
	unit, err := kernelsrc.Assemble(alg, prng.Uint32)
	if err != nil {
		t.Fatal(err)
	}
	ctx := openTest(t, 1<<20)
	prog, err := ctx.Build(unit.Source)
	if err != nil {
		t.Fatal(err)
	}
	seedK, _ := prog.Kernel(kernelsrc.SeedEntry)
	small, _ := ctx.Alloc(alg.StateSize)

	if err := ctx.Launch(seedK, 4, 3, uint64(1), small); err == nil {
		t.Fatal("expected error for global not a multiple of local")
	}
	if err := ctx.Launch(seedK, 4, 4, uint64(1), small); err == nil {
		t.Fatal("expected error for undersized state buffer")
	}
	if err := ctx.Launch(seedK, 1, 1, uint32(1), small); err == nil {
		t.Fatal("expected error for wrong seed type")
	}
}

func TestClosedContext(t *testing.T) {
	t.Parallel()

	ctx, err := (&Device{ComputeUnits: 1, MemoryLimit: 1 << 10}).Open()
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := ctx.Alloc(8); !errors.Is(err, backend.ErrDevice) {
		t.Fatalf("expected ErrDevice after close, got %v", err)
	}
	if err := ctx.Finish(); !errors.Is(err, backend.ErrDevice) {
		t.Fatalf("expected ErrDevice after close, got %v", err)
	}
}
