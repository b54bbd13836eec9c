package backend

import (
	"errors"
	"strings"
)

var (
	ErrDevice     = errors.New("device error")
	ErrCompile    = errors.New("compile error")
	ErrAllocation = errors.New("allocation error")
)

// CompileError carries the backend build log verbatim.
type CompileError struct {
	Log string
}

func (e *CompileError) Error() string {
	log := strings.TrimSpace(e.Log)
	if log == "" {
		return ErrCompile.Error()
	}
	return ErrCompile.Error() + ": " + log
}

func (e *CompileError) Unwrap() error {
	return ErrCompile
}
