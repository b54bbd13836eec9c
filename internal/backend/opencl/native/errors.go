package native

import "fmt"

// Error is an OpenCL status code.
type Error int

const (
	ErrDeviceNotFound             Error = -1
	ErrDeviceNotAvailable         Error = -2
	ErrCompilerNotAvailable       Error = -3
	ErrMemObjectAllocationFailure Error = -4
	ErrOutOfResources             Error = -5
	ErrOutOfHostMemory            Error = -6
	ErrBuildProgramFailure        Error = -11
	ErrInvalidValue               Error = -30
	ErrInvalidDevice              Error = -33
	ErrInvalidContext             Error = -34
	ErrInvalidCommandQueue        Error = -36
	ErrInvalidMemObject           Error = -38
	ErrInvalidProgram             Error = -44
	ErrInvalidKernelName          Error = -46
	ErrInvalidKernel              Error = -48
	ErrInvalidArgIndex            Error = -49
	ErrInvalidArgValue            Error = -50
	ErrInvalidArgSize             Error = -51
	ErrInvalidWorkGroupSize       Error = -54
	ErrInvalidBufferSize          Error = -61
	ErrInvalidGlobalWorkSize      Error = -63
)

var errorNames = map[Error]string{
	ErrDeviceNotFound:             "CL_DEVICE_NOT_FOUND",
	ErrDeviceNotAvailable:         "CL_DEVICE_NOT_AVAILABLE",
	ErrCompilerNotAvailable:       "CL_COMPILER_NOT_AVAILABLE",
	ErrMemObjectAllocationFailure: "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	ErrOutOfResources:             "CL_OUT_OF_RESOURCES",
	ErrOutOfHostMemory:            "CL_OUT_OF_HOST_MEMORY",
	ErrBuildProgramFailure:        "CL_BUILD_PROGRAM_FAILURE",
	ErrInvalidValue:               "CL_INVALID_VALUE",
	ErrInvalidDevice:              "CL_INVALID_DEVICE",
	ErrInvalidContext:             "CL_INVALID_CONTEXT",
	ErrInvalidCommandQueue:        "CL_INVALID_COMMAND_QUEUE",
	ErrInvalidMemObject:           "CL_INVALID_MEM_OBJECT",
	ErrInvalidProgram:             "CL_INVALID_PROGRAM",
	ErrInvalidKernelName:          "CL_INVALID_KERNEL_NAME",
	ErrInvalidKernel:              "CL_INVALID_KERNEL",
	ErrInvalidArgIndex:            "CL_INVALID_ARG_INDEX",
	ErrInvalidArgValue:            "CL_INVALID_ARG_VALUE",
	ErrInvalidArgSize:             "CL_INVALID_ARG_SIZE",
	ErrInvalidWorkGroupSize:       "CL_INVALID_WORK_GROUP_SIZE",
	ErrInvalidBufferSize:          "CL_INVALID_BUFFER_SIZE",
	ErrInvalidGlobalWorkSize:      "CL_INVALID_GLOBAL_WORK_SIZE",
}

func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return fmt.Sprintf("opencl: %s (%d)", name, int(e))
	}
	return fmt.Sprintf("opencl: error %d", int(e))
}

// IsAllocation reports codes that a compaction and retry may clear.
func (e Error) IsAllocation() bool {
	switch e {
	case ErrMemObjectAllocationFailure, ErrOutOfResources, ErrOutOfHostMemory, ErrInvalidBufferSize:
		return true
	default:
		return false
	}
}
