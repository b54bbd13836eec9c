//go:build opencl

package native

/*
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL

#define CL_TARGET_OPENCL_VERSION 120
#define CL_USE_DEPRECATED_OPENCL_1_2_APIS
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>

static int clprngPlatformCount(cl_uint* out) {
	return (int)clGetPlatformIDs(0, NULL, out);
}

static int clprngPlatforms(cl_uint n, cl_platform_id* out) {
	return (int)clGetPlatformIDs(n, out, NULL);
}

static int clprngDeviceCount(cl_platform_id p, cl_uint* out) {
	return (int)clGetDeviceIDs(p, CL_DEVICE_TYPE_ALL, 0, NULL, out);
}

static int clprngDevices(cl_platform_id p, cl_uint n, cl_device_id* out) {
	return (int)clGetDeviceIDs(p, CL_DEVICE_TYPE_ALL, n, out, NULL);
}

static int clprngDeviceName(cl_device_id d, size_t n, char* out) {
	return (int)clGetDeviceInfo(d, CL_DEVICE_NAME, n, out, NULL);
}

static int clprngDeviceComputeUnits(cl_device_id d, cl_uint* out) {
	return (int)clGetDeviceInfo(d, CL_DEVICE_MAX_COMPUTE_UNITS, sizeof(cl_uint), out, NULL);
}

static int clprngDeviceGlobalMem(cl_device_id d, cl_ulong* out) {
	return (int)clGetDeviceInfo(d, CL_DEVICE_GLOBAL_MEM_SIZE, sizeof(cl_ulong), out, NULL);
}

static cl_context clprngCreateContext(cl_device_id d, int* err) {
	cl_int e;
	cl_context ctx = clCreateContext(NULL, 1, &d, NULL, NULL, &e);
	*err = (int)e;
	return ctx;
}

static int clprngReleaseContext(cl_context ctx) {
	return (int)clReleaseContext(ctx);
}

static cl_command_queue clprngCreateQueue(cl_context ctx, cl_device_id d, int* err) {
	cl_int e;
	cl_command_queue q = clCreateCommandQueue(ctx, d, 0, &e);
	*err = (int)e;
	return q;
}

static int clprngReleaseQueue(cl_command_queue q) {
	return (int)clReleaseCommandQueue(q);
}

static int clprngFinish(cl_command_queue q) {
	return (int)clFinish(q);
}

static cl_program clprngCreateProgram(cl_context ctx, const char* src, int* err) {
	cl_int e;
	cl_program p = clCreateProgramWithSource(ctx, 1, &src, NULL, &e);
	*err = (int)e;
	return p;
}

static int clprngBuildProgram(cl_program p, cl_device_id d) {
	return (int)clBuildProgram(p, 1, &d, NULL, NULL, NULL);
}

static int clprngBuildLogSize(cl_program p, cl_device_id d, size_t* out) {
	return (int)clGetProgramBuildInfo(p, d, CL_PROGRAM_BUILD_LOG, 0, NULL, out);
}

static int clprngBuildLog(cl_program p, cl_device_id d, size_t n, char* out) {
	return (int)clGetProgramBuildInfo(p, d, CL_PROGRAM_BUILD_LOG, n, out, NULL);
}

static int clprngReleaseProgram(cl_program p) {
	return (int)clReleaseProgram(p);
}

static cl_kernel clprngCreateKernel(cl_program p, const char* name, int* err) {
	cl_int e;
	cl_kernel k = clCreateKernel(p, name, &e);
	*err = (int)e;
	return k;
}

static int clprngReleaseKernel(cl_kernel k) {
	return (int)clReleaseKernel(k);
}

static int clprngSetArgMem(cl_kernel k, cl_uint i, cl_mem m) {
	return (int)clSetKernelArg(k, i, sizeof(cl_mem), &m);
}

static int clprngSetArgUint(cl_kernel k, cl_uint i, cl_uint v) {
	return (int)clSetKernelArg(k, i, sizeof(cl_uint), &v);
}

static int clprngSetArgUlong(cl_kernel k, cl_uint i, cl_ulong v) {
	return (int)clSetKernelArg(k, i, sizeof(cl_ulong), &v);
}

static cl_mem clprngCreateBuffer(cl_context ctx, size_t size, int* err) {
	cl_int e;
	cl_mem m = clCreateBuffer(ctx, CL_MEM_READ_WRITE, size, NULL, &e);
	*err = (int)e;
	return m;
}

static int clprngReleaseBuffer(cl_mem m) {
	return (int)clReleaseMemObject(m);
}

static int clprngEnqueueNDRange(cl_command_queue q, cl_kernel k, size_t global, size_t local) {
	return (int)clEnqueueNDRangeKernel(q, k, 1, NULL, &global, &local, 0, NULL, NULL);
}

static int clprngEnqueueCopy(cl_command_queue q, cl_mem src, cl_mem dst, size_t srcOff, size_t dstOff, size_t n) {
	return (int)clEnqueueCopyBuffer(q, src, dst, srcOff, dstOff, n, 0, NULL, NULL);
}

static int clprngEnqueueRead(cl_command_queue q, cl_mem m, size_t off, size_t n, void* dst) {
	return (int)clEnqueueReadBuffer(q, m, CL_TRUE, off, n, dst, 0, NULL, NULL);
}

static int clprngEnqueueWrite(cl_command_queue q, cl_mem m, size_t off, size_t n, const void* src) {
	return (int)clEnqueueWriteBuffer(q, m, CL_TRUE, off, n, src, 0, NULL, NULL);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

type DeviceID struct {
	ptr C.cl_device_id
}

type Context struct {
	ptr C.cl_context
}

type Queue struct {
	ptr C.cl_command_queue
}

type Program struct {
	ptr C.cl_program
}

type Kernel struct {
	ptr C.cl_kernel
}

type Mem struct {
	ptr C.cl_mem
}

// Devices lists every device of every platform.
func Devices() ([]DeviceID, error) {
	var np C.cl_uint
	if err := clErr(C.clprngPlatformCount(&np)); err != nil {
		return nil, err
	}
	if np == 0 {
		return nil, nil
	}
	platforms := make([]C.cl_platform_id, np)
	if err := clErr(C.clprngPlatforms(np, &platforms[0])); err != nil {
		return nil, err
	}
	var out []DeviceID
	for _, p := range platforms {
		var nd C.cl_uint
		if err := clErr(C.clprngDeviceCount(p, &nd)); err != nil {
			if code, ok := err.(Error); ok && code == ErrDeviceNotFound {
				continue
			}
			return nil, err
		}
		if nd == 0 {
			continue
		}
		ids := make([]C.cl_device_id, nd)
		if err := clErr(C.clprngDevices(p, nd, &ids[0])); err != nil {
			return nil, err
		}
		for _, id := range ids {
			out = append(out, DeviceID{ptr: id})
		}
	}
	return out, nil
}

func (d DeviceID) Valid() bool {
	return d.ptr != nil
}

func (d DeviceID) Name() (string, error) {
	buf := make([]byte, 256)
	if err := clErr(C.clprngDeviceName(d.ptr, C.size_t(len(buf)), (*C.char)(unsafe.Pointer(&buf[0])))); err != nil {
		return "", err
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0]))), nil
}

func (d DeviceID) ComputeUnits() (int, error) {
	var n C.cl_uint
	if err := clErr(C.clprngDeviceComputeUnits(d.ptr, &n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (d DeviceID) GlobalMemory() (int64, error) {
	var n C.cl_ulong
	if err := clErr(C.clprngDeviceGlobalMem(d.ptr, &n)); err != nil {
		return 0, err
	}
	return int64(n), nil
}

func NewContext(d DeviceID) (Context, error) {
	var code C.int
	ctx := C.clprngCreateContext(d.ptr, &code)
	if err := clErr(code); err != nil {
		return Context{}, err
	}
	return Context{ptr: ctx}, nil
}

func (c Context) Release() error {
	if c.ptr == nil {
		return nil
	}
	return clErr(C.clprngReleaseContext(c.ptr))
}

func NewQueue(c Context, d DeviceID) (Queue, error) {
	var code C.int
	q := C.clprngCreateQueue(c.ptr, d.ptr, &code)
	if err := clErr(code); err != nil {
		return Queue{}, err
	}
	return Queue{ptr: q}, nil
}

func (q Queue) Finish() error {
	if q.ptr == nil {
		return nil
	}
	return clErr(C.clprngFinish(q.ptr))
}

func (q Queue) Release() error {
	if q.ptr == nil {
		return nil
	}
	return clErr(C.clprngReleaseQueue(q.ptr))
}

// BuildProgram compiles src for d. The build log is returned whenever it
// can be read, including on failure.
func BuildProgram(c Context, d DeviceID, src string) (Program, string, error) {
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))

	var code C.int
	p := C.clprngCreateProgram(c.ptr, csrc, &code)
	if err := clErr(code); err != nil {
		return Program{}, "", err
	}
	prog := Program{ptr: p}
	buildErr := clErr(C.clprngBuildProgram(p, d.ptr))
	log := buildLog(prog, d)
	if buildErr != nil {
		_ = prog.Release()
		return Program{}, log, buildErr
	}
	return prog, log, nil
}

func buildLog(p Program, d DeviceID) string {
	var n C.size_t
	if clErr(C.clprngBuildLogSize(p.ptr, d.ptr, &n)) != nil || n <= 1 {
		return ""
	}
	buf := make([]byte, int(n))
	if clErr(C.clprngBuildLog(p.ptr, d.ptr, n, (*C.char)(unsafe.Pointer(&buf[0])))) != nil {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}

func (p Program) Release() error {
	if p.ptr == nil {
		return nil
	}
	return clErr(C.clprngReleaseProgram(p.ptr))
}

func NewKernel(p Program, name string) (Kernel, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var code C.int
	k := C.clprngCreateKernel(p.ptr, cname, &code)
	if err := clErr(code); err != nil {
		return Kernel{}, err
	}
	return Kernel{ptr: k}, nil
}

func (k Kernel) Release() error {
	if k.ptr == nil {
		return nil
	}
	return clErr(C.clprngReleaseKernel(k.ptr))
}

func (k Kernel) SetArgMem(i int, m Mem) error {
	return clErr(C.clprngSetArgMem(k.ptr, C.cl_uint(i), m.ptr))
}

func (k Kernel) SetArgUint(i int, v uint32) error {
	return clErr(C.clprngSetArgUint(k.ptr, C.cl_uint(i), C.cl_uint(v)))
}

func (k Kernel) SetArgUlong(i int, v uint64) error {
	return clErr(C.clprngSetArgUlong(k.ptr, C.cl_uint(i), C.cl_ulong(v)))
}

func CreateBuffer(c Context, bytes int) (Mem, error) {
	if bytes <= 0 {
		return Mem{}, fmt.Errorf("buffer size must be > 0")
	}
	var code C.int
	m := C.clprngCreateBuffer(c.ptr, C.size_t(bytes), &code)
	if err := clErr(code); err != nil {
		return Mem{}, err
	}
	return Mem{ptr: m}, nil
}

func (m Mem) Release() error {
	if m.ptr == nil {
		return nil
	}
	return clErr(C.clprngReleaseBuffer(m.ptr))
}

func (m Mem) Ptr() uintptr {
	return uintptr(unsafe.Pointer(m.ptr))
}

func EnqueueNDRange(q Queue, k Kernel, global, local int) error {
	return clErr(C.clprngEnqueueNDRange(q.ptr, k.ptr, C.size_t(global), C.size_t(local)))
}

func EnqueueCopy(q Queue, src, dst Mem, srcOff, dstOff, bytes int) error {
	if bytes <= 0 {
		return nil
	}
	return clErr(C.clprngEnqueueCopy(q.ptr, src.ptr, dst.ptr, C.size_t(srcOff), C.size_t(dstOff), C.size_t(bytes)))
}

// ReadBlocking copies len(dst) bytes at off into dst and waits for the
// transfer.
func ReadBlocking(q Queue, m Mem, off int, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	return clErr(C.clprngEnqueueRead(q.ptr, m.ptr, C.size_t(off), C.size_t(len(dst)), unsafe.Pointer(&dst[0])))
}

func WriteBlocking(q Queue, m Mem, off int, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	return clErr(C.clprngEnqueueWrite(q.ptr, m.ptr, C.size_t(off), C.size_t(len(src)), unsafe.Pointer(&src[0])))
}
