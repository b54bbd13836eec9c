package stream

import (
	"encoding/binary"
	"fmt"

	"github.com/samcharles93/clprng/internal/prng"
)

// Element is a Go type matching one output precision.
type Element interface {
	uint32 | uint64 | float32 | float64
}

func precisionOf[T Element]() prng.Precision {
	var zero T
	switch any(zero).(type) {
	case uint32:
		return prng.Uint32
	case uint64:
		return prng.Uint64
	case float32:
		return prng.Float32
	default:
		return prng.Float64
	}
}

func checkElement[T Element](s *Stream) error {
	if want := precisionOf[T](); want != s.precision {
		return fmt.Errorf("%w: stream emits %s, destination holds %s", ErrInvalidArgument, s.precision, want)
	}
	return nil
}

// Read fills dst from the output buffer with the CopyEntries protocol, so
// len(dst) must not exceed the buffer size.
func Read[T Element](s *Stream, dst []T) (int, error) {
	if err := checkElement[T](s); err != nil {
		return 0, err
	}
	raw := make([]byte, len(dst)*s.precision.Size())
	n, err := s.ReadEntries(raw, len(dst))
	if err != nil {
		return 0, err
	}
	if _, err := binary.Decode(raw, binary.LittleEndian, dst[:n]); err != nil {
		return 0, fmt.Errorf("decode entries: %w", err)
	}
	return n, nil
}

// Generate returns n elements, refilling as many times as needed.
func Generate[T Element](s *Stream, n int) ([]T, error) {
	if err := checkElement[T](s); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidArgument, n)
	}
	raw := make([]byte, n*s.precision.Size())
	if err := s.GenerateStream(n, raw); err != nil {
		return nil, err
	}
	out := make([]T, n)
	if _, err := binary.Decode(raw, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return out, nil
}
