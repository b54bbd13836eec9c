//go:build linux

package cpu

import "golang.org/x/sys/unix"

const fallbackMemoryLimit = 1 << 30

// DefaultMemoryLimit is a quarter of physical RAM.
func DefaultMemoryLimit() int64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return fallbackMemoryLimit
	}
	total := uint64(info.Totalram) * uint64(info.Unit)
	if total == 0 {
		return fallbackMemoryLimit
	}
	return int64(total / 4)
}
