package prng

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownAlgorithm     = errors.New("unknown algorithm")
	ErrUnsupportedPrecision = errors.New("unsupported precision")
)

// Lane is the host reference form of one generator state instance. Its
// exported fields are laid out exactly like the device struct, so a lane
// round-trips through a state buffer slot with encoding/binary.
type Lane interface {
	Seed(seed uint64)
	// Next advances the state once and returns NativeBits random bits.
	Next() uint64
}

// Algorithm describes one registered generator.
type Algorithm struct {
	Name       string
	StateSize  int
	NativeBits int
	Precisions []Precision
	// Source is the OpenCL C fragment defining <name>_state, <name>_seed and
	// <name>_next. The core treats it as opaque text.
	Source  string
	newLane func() Lane
}

func (a Algorithm) Supports(p Precision) bool {
	return slices.Contains(a.Precisions, p)
}

// CheckPrecision reports ErrUnsupportedPrecision for precisions the
// algorithm cannot emit with one state advance per element.
func (a Algorithm) CheckPrecision(p Precision) error {
	if !a.Supports(p) {
		return fmt.Errorf("%w: %s does not emit %s", ErrUnsupportedPrecision, a.Name, p)
	}
	return nil
}

// NewLane returns a zeroed host lane.
func (a Algorithm) NewLane() Lane {
	if a.newLane == nil {
		return nil
	}
	return a.newLane()
}

// LoadLane decodes a state slot into l.
func LoadLane(l Lane, slot []byte) error {
	if _, err := binary.Decode(slot, binary.LittleEndian, l); err != nil {
		return fmt.Errorf("decode lane state: %w", err)
	}
	return nil
}

// StoreLane encodes l into a state slot.
func StoreLane(l Lane, slot []byte) error {
	if _, err := binary.Encode(slot, binary.LittleEndian, l); err != nil {
		return fmt.Errorf("encode lane state: %w", err)
	}
	return nil
}

// LaneSeed derives the seed of one lane from the stream seed with a
// splitmix64 finalizer. The assembled kernel source carries the same mix.
func LaneSeed(seed uint64, lane uint64) uint64 {
	z := seed + (lane+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// splitmix is used by lanes whose state is wider than one seed word.
type splitmix uint64

func (s *splitmix) next() uint64 {
	*s += 0x9e3779b97f4a7c15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func precisionsFor(bits int) []Precision {
	if bits >= 64 {
		return []Precision{Uint32, Uint64, Float32, Float64}
	}
	return []Precision{Uint32, Float32}
}
