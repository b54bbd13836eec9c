package native

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	if got := ErrBuildProgramFailure.Error(); !strings.Contains(got, "CL_BUILD_PROGRAM_FAILURE") {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Error(-9999).Error(); got != "opencl: error -9999" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestErrorIsAllocation(t *testing.T) {
	t.Parallel()

	var err error = ErrMemObjectAllocationFailure
	var clErr Error
	if !errors.As(err, &clErr) || !clErr.IsAllocation() {
		t.Fatal("expected allocation failure")
	}
	if ErrInvalidKernelName.IsAllocation() {
		t.Fatal("invalid kernel name is not an allocation failure")
	}
}
