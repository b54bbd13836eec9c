//go:build !linux

package cpu

const fallbackMemoryLimit = 1 << 30

func DefaultMemoryLimit() int64 {
	return fallbackMemoryLimit
}
