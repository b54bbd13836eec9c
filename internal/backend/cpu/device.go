// Package cpu is a software compute device. It executes assembled kernel
// units on the host reference lanes of each algorithm, with the same buffer
// layout, queue ordering and allocation failure modes as a real device.
package cpu

import (
	"fmt"
	"runtime"

	"github.com/samcharles93/clprng/internal/backend"
)

// Name is the device name reported by software devices.
const Name = "cpu"

// Device describes one software device.
type Device struct {
	// ComputeUnits bounds how many workgroups run in parallel.
	ComputeUnits int
	// MemoryLimit bounds the bytes of live and cached buffers of a context.
	MemoryLimit int64
}

// NewDevice returns a device using every CPU and the default memory limit.
// A non-positive memLimit selects DefaultMemoryLimit.
func NewDevice(memLimit int64) *Device {
	if memLimit <= 0 {
		memLimit = DefaultMemoryLimit()
	}
	return &Device{
		ComputeUnits: runtime.GOMAXPROCS(0),
		MemoryLimit:  memLimit,
	}
}

func (d *Device) Name() string {
	return Name
}

func (d *Device) Open() (backend.Context, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil device", backend.ErrDevice)
	}
	if d.ComputeUnits <= 0 {
		return nil, fmt.Errorf("%w: device has no compute units", backend.ErrDevice)
	}
	if d.MemoryLimit <= 0 {
		return nil, fmt.Errorf("%w: device has no memory", backend.ErrDevice)
	}
	return newContext(d), nil
}
