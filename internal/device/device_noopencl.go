//go:build !opencl

package device

import (
	"errors"

	"github.com/samcharles93/clprng/internal/backend"
)

const openclEnabled = false

var errOpenCLUnavailable = errors.New("opencl backend is not available in this build (rebuild with -tags opencl)")

func newOpenCL(Options) (backend.Device, error) {
	return nil, errOpenCLUnavailable
}

func listOpenCL() ([]Info, error) {
	return nil, nil
}
