//go:build opencl

// Package opencl runs assembled kernel units on an OpenCL 1.2 device.
package opencl

import (
	"errors"
	"fmt"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/backend/opencl/native"
)

// Device is a resolved OpenCL device.
type Device struct {
	id   native.DeviceID
	name string
}

// Devices enumerates the devices of every platform.
func Devices() ([]*Device, error) {
	ids, err := native.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate devices: %w", backend.ErrDevice, err)
	}
	out := make([]*Device, 0, len(ids))
	for _, id := range ids {
		name, err := id.Name()
		if err != nil {
			name = "opencl"
		}
		out = append(out, &Device{id: id, name: name})
	}
	return out, nil
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Open() (backend.Context, error) {
	if d == nil || !d.id.Valid() {
		return nil, fmt.Errorf("%w: invalid device handle", backend.ErrDevice)
	}
	units, err := d.id.ComputeUnits()
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", backend.ErrDevice, d.name, err)
	}
	if units == 0 {
		return nil, fmt.Errorf("%w: %s reports no compute units", backend.ErrDevice, d.name)
	}
	ctx, err := native.NewContext(d.id)
	if err != nil {
		return nil, fmt.Errorf("%w: create context on %s: %w", backend.ErrDevice, d.name, err)
	}
	q, err := native.NewQueue(ctx, d.id)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("%w: create queue on %s: %w", backend.ErrDevice, d.name, err)
	}
	return &Context{dev: d, ctx: ctx, q: q}, nil
}

// wrap classifies a native failure into the backend error kinds.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var code native.Error
	if errors.As(err, &code) && code.IsAllocation() {
		return fmt.Errorf("%w: %s: %w", backend.ErrAllocation, op, err)
	}
	return fmt.Errorf("%w: %s: %w", backend.ErrDevice, op, err)
}
