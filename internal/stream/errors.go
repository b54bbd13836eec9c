package stream

import (
	"errors"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/prng"
)

var (
	ErrRequestTooLarge = errors.New("request too large")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Status codes returned by the handle API and the service.
const (
	StatusOK                   = 0
	StatusUnknownAlgorithm     = 1
	StatusUnsupportedPrecision = 2
	StatusDeviceError          = 3
	StatusCompileError         = 4
	StatusAllocationError      = 5
	StatusRequestTooLarge      = 6
	StatusInvalidState         = 7
	StatusInvalidArgument      = 8
	StatusInternal             = 99
)

// Status maps err onto its status code. Allocation is tested before device
// because a device allocation failure carries both.
func Status(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, prng.ErrUnknownAlgorithm):
		return StatusUnknownAlgorithm
	case errors.Is(err, prng.ErrUnsupportedPrecision):
		return StatusUnsupportedPrecision
	case errors.Is(err, backend.ErrCompile):
		return StatusCompileError
	case errors.Is(err, backend.ErrAllocation):
		return StatusAllocationError
	case errors.Is(err, backend.ErrDevice):
		return StatusDeviceError
	case errors.Is(err, ErrRequestTooLarge):
		return StatusRequestTooLarge
	case errors.Is(err, ErrInvalidState):
		return StatusInvalidState
	case errors.Is(err, ErrInvalidArgument):
		return StatusInvalidArgument
	default:
		return StatusInternal
	}
}

// StatusText names a status code.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "ok"
	case StatusUnknownAlgorithm:
		return "unknown_algorithm"
	case StatusUnsupportedPrecision:
		return "unsupported_precision"
	case StatusDeviceError:
		return "device_error"
	case StatusCompileError:
		return "compile_error"
	case StatusAllocationError:
		return "allocation_error"
	case StatusRequestTooLarge:
		return "request_too_large"
	case StatusInvalidState:
		return "invalid_state_transition"
	case StatusInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}
