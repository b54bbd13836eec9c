package cpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/samcharles93/clprng/internal/backend"
)

// Context is a software compute context. Released buffers are kept in a
// per-size cache and still count against the memory limit until Compact.
type Context struct {
	dev *Device
	q   *queue

	mu     sync.Mutex
	used   int64
	cache  map[int][]*Buffer
	closed bool
}

var _ backend.Context = (*Context)(nil)

func newContext(d *Device) *Context {
	return &Context{
		dev:   d,
		q:     newQueue(),
		cache: make(map[int][]*Buffer),
	}
}

var errClosed = fmt.Errorf("%w: context closed", backend.ErrDevice)

// Buffer is host memory standing in for device memory.
type Buffer struct {
	ctx      *Context
	data     []byte
	released bool
}

func (b *Buffer) Size() int {
	return len(b.data)
}

func (b *Buffer) Native() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.data)))
}

// Release returns the buffer to its context's cache. Commands using the
// buffer must have completed.
func (b *Buffer) Release() error {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if b.released {
		return nil
	}
	b.released = true
	if c.closed {
		return nil
	}
	c.cache[len(b.data)] = append(c.cache[len(b.data)], b)
	return nil
}

func (c *Context) Alloc(bytes int) (backend.Buffer, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("%w: invalid buffer size %d", backend.ErrAllocation, bytes)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClosed
	}
	if free := c.cache[bytes]; len(free) > 0 {
		b := free[len(free)-1]
		c.cache[bytes] = free[:len(free)-1]
		clear(b.data)
		b.released = false
		return b, nil
	}
	if c.used+int64(bytes) > c.dev.MemoryLimit {
		return nil, fmt.Errorf("%w: %d bytes requested with %d of %d in use",
			backend.ErrAllocation, bytes, c.used, c.dev.MemoryLimit)
	}
	c.used += int64(bytes)
	return &Buffer{ctx: c, data: make([]byte, bytes)}, nil
}

// Compact drops cached buffers.
func (c *Context) Compact() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for size, free := range c.cache {
		c.used -= int64(size * len(free))
	}
	c.cache = make(map[int][]*Buffer)
}

// InUse reports the bytes held by live and cached buffers.
func (c *Context) InUse() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

func (c *Context) buffer(b backend.Buffer) (*Buffer, error) {
	buf, ok := b.(*Buffer)
	if !ok || buf == nil || buf.ctx != c {
		return nil, fmt.Errorf("%w: buffer belongs to another context", backend.ErrDevice)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClosed
	}
	if buf.released {
		return nil, fmt.Errorf("%w: buffer already released", backend.ErrDevice)
	}
	return buf, nil
}

func checkRange(size, offset, n int) error {
	if offset < 0 || n < 0 || offset+n > size {
		return fmt.Errorf("range [%d, %d) outside buffer of %d bytes", offset, offset+n, size)
	}
	return nil
}

func (c *Context) CopyBuffer(dst backend.Buffer, dstOffset int, src backend.Buffer, srcOffset int, bytes int) error {
	d, err := c.buffer(dst)
	if err != nil {
		return err
	}
	s, err := c.buffer(src)
	if err != nil {
		return err
	}
	if err := checkRange(d.Size(), dstOffset, bytes); err != nil {
		return fmt.Errorf("copy destination: %w", err)
	}
	if err := checkRange(s.Size(), srcOffset, bytes); err != nil {
		return fmt.Errorf("copy source: %w", err)
	}
	c.q.enqueue(func() error {
		copy(d.data[dstOffset:dstOffset+bytes], s.data[srcOffset:srcOffset+bytes])
		return nil
	})
	return nil
}

func (c *Context) ReadBuffer(src backend.Buffer, offset int, dst []byte) error {
	s, err := c.buffer(src)
	if err != nil {
		return err
	}
	if err := checkRange(s.Size(), offset, len(dst)); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	c.wait(func() {
		copy(dst, s.data[offset:offset+len(dst)])
	})
	return nil
}

func (c *Context) WriteBuffer(dst backend.Buffer, offset int, src []byte) error {
	d, err := c.buffer(dst)
	if err != nil {
		return err
	}
	if err := checkRange(d.Size(), offset, len(src)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	c.wait(func() {
		copy(d.data[offset:offset+len(src)], src)
	})
	return nil
}

// wait runs fn on the queue after every earlier command and blocks until it
// has run.
func (c *Context) wait(fn func()) {
	done := make(chan struct{})
	c.q.enqueue(func() error {
		fn()
		close(done)
		return nil
	})
	<-done
}

func (c *Context) Finish() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errClosed
	}
	return c.q.finish()
}

func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.used = 0
	c.cache = nil
	c.mu.Unlock()

	c.q.close()
	return nil
}
