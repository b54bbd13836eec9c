// Package device resolves a backend name to a compute device.
package device

import (
	"fmt"
	"strings"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/backend/cpu"
)

const (
	CPU    = "cpu"
	OpenCL = "opencl"
	Auto   = "auto"
)

type Options struct {
	// MemoryLimit caps software device memory; zero selects the default.
	MemoryLimit int64
	// Index selects among the OpenCL devices of every platform.
	Index int
}

// Info describes one device usable by this build.
type Info struct {
	Backend string
	Index   int
	Name    string
}

func Normalize(name string) (string, error) {
	b := strings.ToLower(strings.TrimSpace(name))
	if b == "" {
		return Auto, nil
	}
	switch b {
	case CPU, OpenCL, Auto:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, or opencl)", b)
	}
}

// Resolve returns the device for name. Auto prefers an OpenCL device when
// this build has one and falls back to the software device.
func Resolve(name string, opts Options) (backend.Device, error) {
	b, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch b {
	case CPU:
		return cpu.NewDevice(opts.MemoryLimit), nil
	case OpenCL:
		return newOpenCL(opts)
	default:
		if openclEnabled {
			if d, err := newOpenCL(opts); err == nil {
				return d, nil
			}
		}
		return cpu.NewDevice(opts.MemoryLimit), nil
	}
}

// List enumerates the devices of every backend in this build.
func List() ([]Info, error) {
	out := []Info{{Backend: CPU, Index: 0, Name: cpu.Name}}
	cl, err := listOpenCL()
	if err != nil {
		return out, err
	}
	return append(out, cl...), nil
}
