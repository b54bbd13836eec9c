// Package backend defines the compute-device boundary: a device opens a
// context holding one in-order command queue, builds programs from kernel
// source and owns the device buffers.
package backend

// Device is an already-resolved compute device.
type Device interface {
	Name() string
	// Open creates a context and a single in-order queue on the device.
	Open() (Context, error)
}

// Context is a compute context with its command queue. Launches and
// device-to-device copies may run asynchronously; ReadBuffer and
// WriteBuffer block until the data has been transferred.
type Context interface {
	Build(src string) (Program, error)
	Alloc(bytes int) (Buffer, error)
	// Compact asks the backend to return cached or deferred allocations
	// before an allocation is retried.
	Compact()
	// Launch enqueues k over global work items in groups of local. Arguments
	// are bound in order and must be uint32, uint64 or Buffer values.
	Launch(k Kernel, global, local int, args ...any) error
	CopyBuffer(dst Buffer, dstOffset int, src Buffer, srcOffset int, bytes int) error
	ReadBuffer(src Buffer, offset int, dst []byte) error
	WriteBuffer(dst Buffer, offset int, src []byte) error
	// Finish blocks until the queue is drained and reports the first
	// asynchronous failure since the previous Finish.
	Finish() error
	Close() error
}

type Program interface {
	Kernel(name string) (Kernel, error)
	Release() error
}

type Kernel interface {
	Name() string
	Release() error
}

// Buffer is device memory owned by the context that allocated it.
type Buffer interface {
	Size() int
	// Native returns the backend's raw handle. The handle is a non-owning
	// view and must never be freed by the caller.
	Native() uintptr
	Release() error
}
