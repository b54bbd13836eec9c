//go:build opencl

package device

import (
	"fmt"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/backend/opencl"
)

const openclEnabled = true

func newOpenCL(opts Options) (backend.Device, error) {
	devs, err := opencl.Devices()
	if err != nil {
		return nil, err
	}
	if opts.Index < 0 || opts.Index >= len(devs) {
		return nil, fmt.Errorf("%w: opencl device %d not found (%d available)", backend.ErrDevice, opts.Index, len(devs))
	}
	return devs[opts.Index], nil
}

func listOpenCL() ([]Info, error) {
	devs, err := opencl.Devices()
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(devs))
	for i, d := range devs {
		out = append(out, Info{Backend: OpenCL, Index: i, Name: d.Name()})
	}
	return out, nil
}
