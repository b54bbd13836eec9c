package stream

import (
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/kernelsrc"
)

// allocate reserves bytes on the context. An allocation failure is retried
// once after compacting the context; any other failure is returned as is.
func (s *Stream) allocate(what string, bytes int) (backend.Buffer, error) {
	var (
		buf     backend.Buffer
		attempt int
	)
	op := func() error {
		attempt++
		if attempt > 1 {
			s.ctx.Compact()
			s.metrics.AllocRetry()
			s.log.Debug("retrying allocation after compaction", "buffer", what, "bytes", bytes)
		}
		b, err := s.ctx.Alloc(bytes)
		if err != nil {
			if !errors.Is(err, backend.ErrAllocation) {
				return backoff.Permanent(err)
			}
			return err
		}
		buf = b
		return nil
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1)); err != nil {
		return nil, fmt.Errorf("allocate %s buffer of %d bytes: %w", what, bytes, err)
	}
	return buf, nil
}

func (s *Stream) stateBytes() int {
	return s.launch.Lanes() * s.alg.StateSize
}

func (s *Stream) outputBytes(entries int) int {
	return entries * s.precision.Size()
}

// FillBuffer runs the generate kernel over every lane to repopulate the
// whole output buffer, then waits for the queue.
func (s *Stream) FillBuffer() error {
	if err := s.require(BuffersReady); err != nil {
		return err
	}
	return s.fill()
}

func (s *Stream) fill() error {
	total := s.cur.Total()
	if err := s.ctx.Launch(s.genK, s.launch.Lanes(), s.launch.WorkgroupSize, s.states, s.out, uint32(total)); err != nil {
		return fmt.Errorf("launch %s: %w", kernelsrc.GenerateEntry, err)
	}
	s.metrics.Launch(kernelsrc.GenerateEntry)
	if err := s.ctx.Finish(); err != nil {
		return fmt.Errorf("%s: %w", kernelsrc.GenerateEntry, err)
	}
	s.cur.Fill()
	s.metrics.Refill(s.alg.Name)
	s.log.Debug("output buffer refilled", "entries", total)
	return nil
}

// checkRead validates a read of count elements without touching the buffer.
func (s *Stream) checkRead(count int) error {
	if err := s.require(BuffersReady); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidArgument, count)
	}
	if count > s.cur.Total() {
		return fmt.Errorf("%w: %d elements requested, buffer holds %d", ErrRequestTooLarge, count, s.cur.Total())
	}
	return nil
}

// refillFor refills when fewer than count elements are valid.
func (s *Stream) refillFor(count int) error {
	if count > s.cur.Valid() {
		return s.fill()
	}
	return nil
}

// CopyEntries copies count elements from the output buffer into dst,
// starting at element dstOffset, refilling first when fewer than count
// elements are valid. It returns the number of elements copied. A rejected
// call leaves the buffer and the lanes untouched.
func (s *Stream) CopyEntries(dst backend.Buffer, dstOffset, count int) (int, error) {
	if err := s.checkRead(count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if dst == nil || dstOffset < 0 {
		return 0, fmt.Errorf("%w: invalid destination", ErrInvalidArgument)
	}
	es := s.precision.Size()
	if (dstOffset+count)*es > dst.Size() {
		return 0, fmt.Errorf("%w: destination of %d bytes cannot hold %d elements at %d",
			ErrInvalidArgument, dst.Size(), count, dstOffset)
	}
	if err := s.refillFor(count); err != nil {
		return 0, err
	}
	if err := s.ctx.CopyBuffer(dst, dstOffset*es, s.out, s.cur.Offset()*es, count*es); err != nil {
		return 0, fmt.Errorf("copy entries: %w", err)
	}
	if err := s.ctx.Finish(); err != nil {
		return 0, fmt.Errorf("copy entries: %w", err)
	}
	s.cur.Consume(count)
	s.metrics.Copied(s.alg.Name, s.precision.String(), count)
	return count, nil
}

// ReadEntries is CopyEntries with a host destination. dst receives count
// little-endian elements.
func (s *Stream) ReadEntries(dst []byte, count int) (int, error) {
	if err := s.checkRead(count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	es := s.precision.Size()
	if len(dst) < count*es {
		return 0, fmt.Errorf("%w: destination of %d bytes cannot hold %d elements", ErrInvalidArgument, len(dst), count)
	}
	if err := s.refillFor(count); err != nil {
		return 0, err
	}
	if err := s.ctx.ReadBuffer(s.out, s.cur.Offset()*es, dst[:count*es]); err != nil {
		return 0, fmt.Errorf("read entries: %w", err)
	}
	s.cur.Consume(count)
	s.metrics.Copied(s.alg.Name, s.precision.String(), count)
	return count, nil
}

// OutputView is a read-only window onto the valid part of the output
// buffer for callers issuing their own copies. Handle is non-owning.
type OutputView struct {
	Handle      uintptr
	Offset      int
	Valid       int
	ElementSize int
}

// Output returns the current view. It fails while no elements are valid.
func (s *Stream) Output() (OutputView, error) {
	if err := s.require(BuffersReady); err != nil {
		return OutputView{}, err
	}
	if s.cur.Valid() == 0 {
		return OutputView{}, fmt.Errorf("%w: output buffer holds no valid elements", ErrInvalidState)
	}
	return OutputView{
		Handle:      s.out.Native(),
		Offset:      s.cur.Offset(),
		Valid:       s.cur.Valid(),
		ElementSize: s.precision.Size(),
	}, nil
}

// StateSnapshot copies the seeded generator state to the host.
func (s *Stream) StateSnapshot() ([]byte, error) {
	if err := s.require(Seeded); err != nil {
		return nil, err
	}
	buf := make([]byte, s.states.Size())
	if err := s.ctx.ReadBuffer(s.states, 0, buf); err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return buf, nil
}

// RestoreState writes a snapshot back to the device. Buffered output was
// produced from the replaced state and is discarded.
func (s *Stream) RestoreState(snapshot []byte) error {
	if err := s.require(Seeded); err != nil {
		return err
	}
	if len(snapshot) != s.states.Size() {
		return fmt.Errorf("%w: snapshot of %d bytes, state buffer is %d", ErrInvalidArgument, len(snapshot), s.states.Size())
	}
	if err := s.ctx.WriteBuffer(s.states, 0, snapshot); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	s.cur.Invalidate()
	return nil
}
