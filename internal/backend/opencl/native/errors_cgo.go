//go:build opencl

package native

import "C"

func clErr(code C.int) error {
	if code == 0 {
		return nil
	}
	return Error(int(code))
}
