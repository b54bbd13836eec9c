// Package stream drives one device-resident generator through its lifecycle
// and serves batched output to the host or to other device buffers.
package stream

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/kernelsrc"
	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/metrics"
	"github.com/samcharles93/clprng/internal/prng"
)

const (
	DefaultWorkgroupSize  = 64
	DefaultWorkgroupCount = 64
	DefaultBufferEntries  = 1 << 18
)

// LaunchConfig sizes the kernel launches. Lanes is the number of generator
// state instances.
type LaunchConfig struct {
	WorkgroupSize  int `json:"workgroup_size" yaml:"workgroup_size" toml:"workgroup_size"`
	WorkgroupCount int `json:"workgroup_count" yaml:"workgroup_count" toml:"workgroup_count"`
}

func (c LaunchConfig) Lanes() int {
	return c.WorkgroupSize * c.WorkgroupCount
}

func (c LaunchConfig) validate() error {
	if c.WorkgroupSize <= 0 || c.WorkgroupCount <= 0 {
		return fmt.Errorf("%w: workgroup size and count must be positive (got %d x %d)",
			ErrInvalidArgument, c.WorkgroupSize, c.WorkgroupCount)
	}
	if int64(c.Lanes()) > math.MaxUint32 {
		return fmt.Errorf("%w: %d lanes exceed the device index range", ErrInvalidArgument, c.Lanes())
	}
	return nil
}

type Config struct {
	Launch        LaunchConfig
	BufferEntries int
	Precision     prng.Precision
	Seed          uint64
	Logger        logger.Logger
	Metrics       *metrics.Metrics
}

func DefaultConfig() Config {
	return Config{
		Launch: LaunchConfig{
			WorkgroupSize:  DefaultWorkgroupSize,
			WorkgroupCount: DefaultWorkgroupCount,
		},
		BufferEntries: DefaultBufferEntries,
		Precision:     prng.Uint32,
	}
}

// Stream owns a compute context, the compiled program and both device
// buffers. It is not safe for concurrent use.
type Stream struct {
	state  State
	closed bool

	alg       prng.Algorithm
	precision prng.Precision
	seed      uint64
	launch    LaunchConfig
	entries   int

	ctx    backend.Context
	unit   kernelsrc.Unit
	prog   backend.Program
	seedK  backend.Kernel
	genK   backend.Kernel
	states backend.Buffer
	out    backend.Buffer
	cur    Cursor

	log     logger.Logger
	metrics *metrics.Metrics
}

// New creates a stream in the Created state. Zero config fields take their
// defaults.
func New(cfg Config) *Stream {
	def := DefaultConfig()
	if cfg.Launch.WorkgroupSize <= 0 {
		cfg.Launch.WorkgroupSize = def.Launch.WorkgroupSize
	}
	if cfg.Launch.WorkgroupCount <= 0 {
		cfg.Launch.WorkgroupCount = def.Launch.WorkgroupCount
	}
	if cfg.BufferEntries <= 0 || int64(cfg.BufferEntries) > math.MaxUint32 {
		cfg.BufferEntries = def.BufferEntries
	}
	if !cfg.Precision.Valid() {
		cfg.Precision = def.Precision
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Stream{
		precision: cfg.Precision,
		seed:      cfg.Seed,
		launch:    cfg.Launch,
		entries:   cfg.BufferEntries,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

func (s *Stream) require(st State) error {
	if s.closed {
		return fmt.Errorf("%w: stream is closed", ErrInvalidState)
	}
	if s.state < st {
		return fmt.Errorf("%w: operation requires %s, stream is %s", ErrInvalidState, st, s.state)
	}
	return nil
}

func (s *Stream) requireExactly(st State) error {
	if err := s.require(st); err != nil {
		return err
	}
	if s.state != st {
		return fmt.Errorf("%w: operation requires %s, stream is %s", ErrInvalidState, st, s.state)
	}
	return nil
}

func (s *Stream) transition(to State) {
	s.log.Debug("stream transition", "from", s.state.String(), "to", to.String())
	s.state = to
}

// Init opens a context on dev for the named algorithm.
func (s *Stream) Init(dev backend.Device, name string) error {
	if err := s.requireExactly(Created); err != nil {
		return err
	}
	alg, err := prng.Lookup(name)
	if err != nil {
		return err
	}
	if err := s.launch.validate(); err != nil {
		return err
	}
	if dev == nil {
		return fmt.Errorf("%w: no device", backend.ErrDevice)
	}
	ctx, err := dev.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", dev.Name(), err)
	}
	s.ctx = ctx
	s.alg = alg
	s.log = s.log.With("algorithm", alg.Name, "device", dev.Name())
	s.transition(Initialized)
	return nil
}

// BuildSource assembles the kernel source for precision p.
func (s *Stream) BuildSource(p prng.Precision) error {
	if err := s.requireExactly(Initialized); err != nil {
		return err
	}
	unit, err := kernelsrc.Assemble(s.alg, p)
	if err != nil {
		return err
	}
	s.precision = p
	s.unit = unit
	s.transition(SourceReady)
	return nil
}

// BuildProgram compiles the assembled source and resolves both kernels.
func (s *Stream) BuildProgram() error {
	if err := s.requireExactly(SourceReady); err != nil {
		return err
	}
	start := time.Now()
	prog, err := s.ctx.Build(s.unit.Source)
	if err != nil {
		return fmt.Errorf("build %s/%s: %w", s.alg.Name, s.precision, err)
	}
	s.metrics.Build(s.alg.Name, time.Since(start))

	seedK, seedErr := prog.Kernel(kernelsrc.SeedEntry)
	genK, genErr := prog.Kernel(kernelsrc.GenerateEntry)
	if seedErr != nil || genErr != nil {
		var result *multierror.Error
		for _, k := range []backend.Kernel{seedK, genK} {
			if k != nil {
				result = multierror.Append(result, k.Release())
			}
		}
		result = multierror.Append(result, prog.Release())
		if err := result.ErrorOrNil(); err != nil {
			s.log.Warn("release after failed kernel lookup", "error", err)
		}
		if seedErr != nil && genErr != nil {
			return &backend.CompileError{Log: fmt.Sprintf("no usable kernels: %v; %v", seedErr, genErr)}
		}
		entry, lerr := kernelsrc.SeedEntry, seedErr
		if lerr == nil {
			entry, lerr = kernelsrc.GenerateEntry, genErr
		}
		var ce *backend.CompileError
		if errors.As(lerr, &ce) {
			return ce
		}
		return &backend.CompileError{Log: fmt.Sprintf("resolve %s: %v", entry, lerr)}
	}
	s.prog, s.seedK, s.genK = prog, seedK, genK
	s.transition(ProgramReady)
	return nil
}

// Seed seeds every lane from v. Reseeding a seeded stream reuses its
// buffers and discards buffered output.
func (s *Stream) Seed(v uint64) error {
	if err := s.require(ProgramReady); err != nil {
		return err
	}
	allocated := false
	if s.states == nil {
		buf, err := s.allocate("state", s.stateBytes())
		if err != nil {
			return err
		}
		s.states = buf
		allocated = true
	}
	fail := func(err error) error {
		if allocated {
			_ = s.ctx.Finish()
			_ = s.states.Release()
			s.states = nil
		}
		return err
	}
	if err := s.ctx.Launch(s.seedK, s.launch.Lanes(), s.launch.WorkgroupSize, v, s.states); err != nil {
		return fail(fmt.Errorf("launch %s: %w", kernelsrc.SeedEntry, err))
	}
	s.metrics.Launch(kernelsrc.SeedEntry)
	if err := s.ctx.Finish(); err != nil {
		return fail(fmt.Errorf("%s: %w", kernelsrc.SeedEntry, err))
	}
	s.seed = v
	s.cur.Invalidate()
	if s.state == ProgramReady {
		s.transition(Seeded)
	}
	return nil
}

// AllocateBuffers allocates the output buffer of a seeded stream.
func (s *Stream) AllocateBuffers() error {
	if err := s.requireExactly(Seeded); err != nil {
		return err
	}
	buf, err := s.allocate("output", s.outputBytes(s.entries))
	if err != nil {
		return err
	}
	s.out = buf
	s.cur = NewCursor(s.entries)
	s.transition(BuffersReady)
	return nil
}

// ReadyGenerator runs every remaining step from SourceReady to BuffersReady,
// stopping at the first failure.
func (s *Stream) ReadyGenerator() error {
	if err := s.require(SourceReady); err != nil {
		return err
	}
	for s.state != BuffersReady {
		var err error
		switch s.state {
		case SourceReady:
			err = s.BuildProgram()
		case ProgramReady:
			err = s.Seed(s.seed)
		case Seeded:
			err = s.AllocateBuffers()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GenerateStream writes count elements into dst, in rounds of at most one
// buffer each.
func (s *Stream) GenerateStream(count int, dst []byte) error {
	if err := s.require(BuffersReady); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidArgument, count)
	}
	es := s.precision.Size()
	if len(dst) < count*es {
		return fmt.Errorf("%w: destination of %d bytes cannot hold %d elements", ErrInvalidArgument, len(dst), count)
	}
	for done := 0; done < count; {
		n := min(count-done, s.cur.Total())
		if _, err := s.ReadEntries(dst[done*es:], n); err != nil {
			return err
		}
		done += n
	}
	return nil
}

// GenerateInto is GenerateStream with a device destination.
func (s *Stream) GenerateInto(dst backend.Buffer, dstOffset, count int) error {
	if err := s.require(BuffersReady); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidArgument, count)
	}
	for done := 0; done < count; {
		n := min(count-done, s.cur.Total())
		if _, err := s.CopyEntries(dst, dstOffset+done, n); err != nil {
			return err
		}
		done += n
	}
	return nil
}

// Alloc allocates a device buffer of count output elements on the stream's
// context, for use as a CopyEntries destination. The caller releases it.
func (s *Stream) Alloc(count int) (backend.Buffer, error) {
	if err := s.require(Initialized); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: buffer of %d elements", ErrInvalidArgument, count)
	}
	return s.allocate("destination", count*s.precision.Size())
}

// ReadBuffer copies a device buffer owned by the stream's context to the
// host.
func (s *Stream) ReadBuffer(buf backend.Buffer, offset int, dst []byte) error {
	if err := s.require(Initialized); err != nil {
		return err
	}
	return s.ctx.ReadBuffer(buf, offset, dst)
}

// resetTo drops everything built after st and moves the stream back to it.
func (s *Stream) resetTo(st State) error {
	if s.state <= st {
		return nil
	}
	var result *multierror.Error
	if s.ctx != nil && (s.out != nil || s.states != nil) {
		result = multierror.Append(result, s.ctx.Finish())
	}
	if st < BuffersReady && s.out != nil {
		result = multierror.Append(result, s.out.Release())
		s.out = nil
		s.cur = Cursor{}
	}
	if st < Seeded && s.states != nil {
		result = multierror.Append(result, s.states.Release())
		s.states = nil
	}
	if st < ProgramReady && s.prog != nil {
		result = multierror.Append(result, s.seedK.Release(), s.genK.Release(), s.prog.Release())
		s.prog, s.seedK, s.genK = nil, nil, nil
	}
	if st < SourceReady {
		s.unit = kernelsrc.Unit{}
	}
	s.transition(st)
	return result.ErrorOrNil()
}

// SetName switches algorithm. From SourceReady or later the stream returns
// to Initialized and must be rebuilt.
func (s *Stream) SetName(name string) error {
	if s.closed {
		return fmt.Errorf("%w: stream is closed", ErrInvalidState)
	}
	alg, err := prng.Lookup(name)
	if err != nil {
		return err
	}
	if alg.Name == s.alg.Name {
		return nil
	}
	if err := s.resetTo(min(s.state, Initialized)); err != nil {
		s.log.Warn("release after algorithm change", "error", err)
	}
	s.alg = alg
	if s.state >= Initialized {
		s.log = s.log.With("algorithm", alg.Name)
	}
	return nil
}

// SetPrecision parses name and assembles the source for it. Before Init the
// value is only recorded. An unsupported precision leaves the stream as is.
func (s *Stream) SetPrecision(name string) error {
	p, err := prng.ParsePrecision(name)
	if err != nil {
		return fmt.Errorf("%w: %w", prng.ErrUnsupportedPrecision, err)
	}
	return s.SetPrecisionValue(p)
}

func (s *Stream) SetPrecisionValue(p prng.Precision) error {
	if s.closed {
		return fmt.Errorf("%w: stream is closed", ErrInvalidState)
	}
	if s.state == Created {
		if !p.Valid() {
			return fmt.Errorf("%w: %s", prng.ErrUnsupportedPrecision, p)
		}
		s.precision = p
		return nil
	}
	if err := s.alg.CheckPrecision(p); err != nil {
		return err
	}
	if p == s.precision && s.state >= SourceReady {
		return nil
	}
	if err := s.resetTo(Initialized); err != nil {
		s.log.Warn("release after precision change", "error", err)
	}
	return s.BuildSource(p)
}

// SetSeed records v and reseeds when the stream is already seeded.
func (s *Stream) SetSeed(v uint64) error {
	if s.closed {
		return fmt.Errorf("%w: stream is closed", ErrInvalidState)
	}
	if s.state >= Seeded {
		return s.Seed(v)
	}
	s.seed = v
	return nil
}

// SetLaunchConfig changes the lane layout. A seeded stream drops both
// buffers and returns to ProgramReady.
func (s *Stream) SetLaunchConfig(cfg LaunchConfig) error {
	if s.closed {
		return fmt.Errorf("%w: stream is closed", ErrInvalidState)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg == s.launch {
		return nil
	}
	if err := s.resetTo(min(s.state, ProgramReady)); err != nil {
		s.log.Warn("release after launch change", "error", err)
	}
	s.launch = cfg
	return nil
}

// SetBufferEntries resizes the output buffer. A ready stream reallocates
// it immediately and keeps the old buffer if that fails.
func (s *Stream) SetBufferEntries(n int) error {
	if s.closed {
		return fmt.Errorf("%w: stream is closed", ErrInvalidState)
	}
	if n <= 0 || int64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: buffer entries %d", ErrInvalidArgument, n)
	}
	if n == s.entries {
		return nil
	}
	if s.state == BuffersReady {
		buf, err := s.allocate("output", s.outputBytes(n))
		if err != nil {
			return err
		}
		if err := s.ctx.Finish(); err != nil {
			_ = buf.Release()
			return err
		}
		if err := s.out.Release(); err != nil {
			s.log.Warn("release resized output buffer", "error", err)
		}
		s.out = buf
		s.cur = NewCursor(n)
	}
	s.entries = n
	return nil
}

// Close releases every device resource. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	var result *multierror.Error
	if err := s.resetTo(Initialized); err != nil {
		result = multierror.Append(result, err)
	}
	if s.ctx != nil {
		result = multierror.Append(result, s.ctx.Close())
		s.ctx = nil
	}
	s.state = Created
	s.closed = true
	return result.ErrorOrNil()
}

func (s *Stream) Name() string { return s.alg.Name }
func (s *Stream) Precision() prng.Precision { return s.precision }
func (s *Stream) SeedValue() uint64 { return s.seed }
func (s *Stream) State() State { return s.state }
func (s *Stream) Flags() Flags { return s.state.Flags() }
func (s *Stream) LaunchConfig() LaunchConfig { return s.launch }
func (s *Stream) BufferEntries() int { return s.entries }
func (s *Stream) Cursor() Cursor { return s.cur }
func (s *Stream) Algorithm() prng.Algorithm { return s.alg }
func (s *Stream) Source() string { return s.unit.Source }
func (s *Stream) IsInitialized() bool { return s.state >= Initialized }
func (s *Stream) IsSourceReady() bool { return s.state >= SourceReady }
func (s *Stream) IsProgramReady() bool { return s.state >= ProgramReady }
func (s *Stream) IsSeeded() bool { return s.state >= Seeded }
func (s *Stream) IsGeneratorReady() bool { return s.state >= BuffersReady }
