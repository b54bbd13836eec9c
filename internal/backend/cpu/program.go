package cpu

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/kernelsrc"
	"github.com/samcharles93/clprng/internal/prng"
)

var kernelDecl = regexp.MustCompile(`(?m)^\s*(?:__)?kernel\s+void\s+(\w+)\s*\(`)

// Program is a unit bound to the host lanes of its algorithm.
type Program struct {
	ctx       *Context
	alg       prng.Algorithm
	precision prng.Precision
	kernels   map[string]bool
}

// Kernel is a resolved entry point.
type Kernel struct {
	prog *Program
	name string
}

func (k *Kernel) Name() string   { return k.name }
func (k *Kernel) Release() error { return nil }

func (p *Program) Kernel(name string) (backend.Kernel, error) {
	if !p.kernels[name] {
		return nil, &backend.CompileError{Log: fmt.Sprintf("kernel %q is not defined in the program", name)}
	}
	return &Kernel{prog: p, name: name}, nil
}

func (p *Program) Release() error { return nil }

// Build validates an assembled unit. The log of a failed build names the
// offending line the way a device compiler would.
func (c *Context) Build(src string) (backend.Program, error) {
	if c.isClosed() {
		return nil, errClosed
	}
	h, err := kernelsrc.ParseHeader(src)
	if err != nil {
		return nil, &backend.CompileError{Log: "<source>:1: " + err.Error()}
	}
	alg, err := prng.Lookup(h.Algorithm)
	if err != nil {
		return nil, &backend.CompileError{Log: fmt.Sprintf("<source>:1: no generator named %q", h.Algorithm)}
	}
	if err := alg.CheckPrecision(h.Precision); err != nil {
		return nil, &backend.CompileError{Log: "<source>:2: " + err.Error()}
	}
	for _, sym := range []string{alg.Name + "_seed(", alg.Name + "_next("} {
		if !strings.Contains(src, sym) {
			return nil, &backend.CompileError{Log: fmt.Sprintf("<source>: implicit declaration of function '%s'", strings.TrimSuffix(sym, "("))}
		}
	}

	prog := &Program{ctx: c, alg: alg, precision: h.Precision, kernels: make(map[string]bool)}
	for _, m := range kernelDecl.FindAllStringSubmatch(src, -1) {
		name := m[1]
		switch name {
		case kernelsrc.SeedEntry, kernelsrc.GenerateEntry:
			prog.kernels[name] = true
		default:
			return nil, &backend.CompileError{Log: fmt.Sprintf("<source>: kernel '%s' has no software implementation", name)}
		}
	}
	return prog, nil
}

func (c *Context) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Context) Launch(k backend.Kernel, global, local int, args ...any) error {
	kern, ok := k.(*Kernel)
	if !ok || kern == nil || kern.prog.ctx != c {
		return fmt.Errorf("%w: kernel belongs to another context", backend.ErrDevice)
	}
	if global <= 0 || local <= 0 || global%local != 0 {
		return fmt.Errorf("invalid launch: global %d, local %d", global, local)
	}
	p := kern.prog
	ss := p.alg.StateSize

	switch kern.name {
	case kernelsrc.SeedEntry:
		if len(args) != 2 {
			return fmt.Errorf("%s: expected 2 arguments, got %d", kern.name, len(args))
		}
		seed, ok := args[0].(uint64)
		if !ok {
			return fmt.Errorf("%s: argument 0 must be uint64, got %T", kern.name, args[0])
		}
		states, err := c.bufferArg(kern.name, 1, args[1])
		if err != nil {
			return err
		}
		if states.Size() < global*ss {
			return fmt.Errorf("%s: state buffer of %d bytes too small for %d lanes", kern.name, states.Size(), global)
		}
		c.q.enqueue(func() error {
			return c.forEachGroup(global, local, func(gid int) error {
				lane := p.alg.NewLane()
				lane.Seed(prng.LaneSeed(seed, uint64(gid)))
				return prng.StoreLane(lane, states.data[gid*ss:(gid+1)*ss])
			})
		})

	case kernelsrc.GenerateEntry:
		if len(args) != 3 {
			return fmt.Errorf("%s: expected 3 arguments, got %d", kern.name, len(args))
		}
		states, err := c.bufferArg(kern.name, 0, args[0])
		if err != nil {
			return err
		}
		out, err := c.bufferArg(kern.name, 1, args[1])
		if err != nil {
			return err
		}
		count, ok := args[2].(uint32)
		if !ok {
			return fmt.Errorf("%s: argument 2 must be uint32, got %T", kern.name, args[2])
		}
		es := p.precision.Size()
		if states.Size() < global*ss {
			return fmt.Errorf("%s: state buffer of %d bytes too small for %d lanes", kern.name, states.Size(), global)
		}
		if out.Size() < int(count)*es {
			return fmt.Errorf("%s: output buffer of %d bytes too small for %d elements", kern.name, out.Size(), count)
		}
		n := int(count)
		c.q.enqueue(func() error {
			return c.forEachGroup(global, local, func(gid int) error {
				slot := states.data[gid*ss : (gid+1)*ss]
				lane := p.alg.NewLane()
				if err := prng.LoadLane(lane, slot); err != nil {
					return err
				}
				for i := gid; i < n; i += global {
					p.precision.Put(out.data[i*es:(i+1)*es], lane.Next(), p.alg.NativeBits)
				}
				return prng.StoreLane(lane, slot)
			})
		})

	default:
		return fmt.Errorf("%w: unknown kernel %q", backend.ErrDevice, kern.name)
	}
	return nil
}

func (c *Context) bufferArg(kernel string, i int, arg any) (*Buffer, error) {
	b, ok := arg.(backend.Buffer)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d must be a buffer, got %T", kernel, i, arg)
	}
	return c.buffer(b)
}

// forEachGroup runs fn for every lane. Workgroups run in parallel up to the
// device's compute units; lanes within a group run in order.
func (c *Context) forEachGroup(global, local int, fn func(gid int) error) error {
	var g errgroup.Group
	g.SetLimit(c.dev.ComputeUnits)
	for base := 0; base < global; base += local {
		g.Go(func() error {
			for gid := base; gid < base+local; gid++ {
				if err := fn(gid); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
