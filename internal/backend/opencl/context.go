//go:build opencl

package opencl

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/backend/opencl/native"
)

type Context struct {
	dev    *Device
	ctx    native.Context
	q      native.Queue
	closed bool
}

var _ backend.Context = (*Context)(nil)

type Program struct {
	ctx  *Context
	prog native.Program
	log  string
}

type Kernel struct {
	name string
	k    native.Kernel
}

type Buffer struct {
	mem  native.Mem
	size int
}

func (k *Kernel) Name() string   { return k.name }
func (k *Kernel) Release() error { return wrap("release kernel", k.k.Release()) }

func (b *Buffer) Size() int       { return b.size }
func (b *Buffer) Native() uintptr { return b.mem.Ptr() }

func (b *Buffer) Release() error {
	err := b.mem.Release()
	b.mem = native.Mem{}
	return wrap("release buffer", err)
}

func (p *Program) Kernel(name string) (backend.Kernel, error) {
	k, err := native.NewKernel(p.prog, name)
	if err != nil {
		var code native.Error
		if errors.As(err, &code) && code == native.ErrInvalidKernelName {
			return nil, &backend.CompileError{Log: fmt.Sprintf("kernel %q is not defined in the program\n%s", name, p.log)}
		}
		return nil, wrap("create kernel "+name, err)
	}
	return &Kernel{name: name, k: k}, nil
}

func (p *Program) Release() error {
	return wrap("release program", p.prog.Release())
}

func (c *Context) Build(src string) (backend.Program, error) {
	if c.closed {
		return nil, errClosed
	}
	prog, log, err := native.BuildProgram(c.ctx, c.dev.id, src)
	if err != nil {
		var code native.Error
		if errors.As(err, &code) && (code == native.ErrBuildProgramFailure || code == native.ErrInvalidProgram) {
			return nil, &backend.CompileError{Log: log}
		}
		return nil, wrap("build program", err)
	}
	return &Program{ctx: c, prog: prog, log: log}, nil
}

var errClosed = fmt.Errorf("%w: context closed", backend.ErrDevice)

func (c *Context) Alloc(bytes int) (backend.Buffer, error) {
	if c.closed {
		return nil, errClosed
	}
	m, err := native.CreateBuffer(c.ctx, bytes)
	if err != nil {
		var code native.Error
		if !errors.As(err, &code) {
			return nil, fmt.Errorf("%w: %w", backend.ErrAllocation, err)
		}
		return nil, wrap("allocate buffer", err)
	}
	return &Buffer{mem: m, size: bytes}, nil
}

// Compact drains the queue so releases deferred by the driver complete.
func (c *Context) Compact() {
	if c.closed {
		return
	}
	_ = c.q.Finish()
}

func (c *Context) Launch(k backend.Kernel, global, local int, args ...any) error {
	if c.closed {
		return errClosed
	}
	kern, ok := k.(*Kernel)
	if !ok {
		return fmt.Errorf("%w: kernel from another backend", backend.ErrDevice)
	}
	for i, a := range args {
		var err error
		switch v := a.(type) {
		case uint32:
			err = kern.k.SetArgUint(i, v)
		case uint64:
			err = kern.k.SetArgUlong(i, v)
		case *Buffer:
			err = kern.k.SetArgMem(i, v.mem)
		default:
			return fmt.Errorf("%s: unsupported argument %d of type %T", kern.name, i, a)
		}
		if err != nil {
			return wrap(fmt.Sprintf("set %s argument %d", kern.name, i), err)
		}
	}
	return wrap("launch "+kern.name, native.EnqueueNDRange(c.q, kern.k, global, local))
}

func (c *Context) buffer(b backend.Buffer) (*Buffer, error) {
	buf, ok := b.(*Buffer)
	if !ok || buf == nil {
		return nil, fmt.Errorf("%w: buffer from another backend", backend.ErrDevice)
	}
	return buf, nil
}

func (c *Context) CopyBuffer(dst backend.Buffer, dstOffset int, src backend.Buffer, srcOffset int, bytes int) error {
	if c.closed {
		return errClosed
	}
	d, err := c.buffer(dst)
	if err != nil {
		return err
	}
	s, err := c.buffer(src)
	if err != nil {
		return err
	}
	return wrap("copy buffer", native.EnqueueCopy(c.q, s.mem, d.mem, srcOffset, dstOffset, bytes))
}

func (c *Context) ReadBuffer(src backend.Buffer, offset int, dst []byte) error {
	if c.closed {
		return errClosed
	}
	s, err := c.buffer(src)
	if err != nil {
		return err
	}
	return wrap("read buffer", native.ReadBlocking(c.q, s.mem, offset, dst))
}

func (c *Context) WriteBuffer(dst backend.Buffer, offset int, src []byte) error {
	if c.closed {
		return errClosed
	}
	d, err := c.buffer(dst)
	if err != nil {
		return err
	}
	return wrap("write buffer", native.WriteBlocking(c.q, d.mem, offset, src))
}

func (c *Context) Finish() error {
	if c.closed {
		return errClosed
	}
	return wrap("finish", c.q.Finish())
}

func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var result *multierror.Error
	if err := c.q.Finish(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.q.Release(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.ctx.Release(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: close context: %w", backend.ErrDevice, err)
	}
	return nil
}
