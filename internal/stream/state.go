package stream

import "fmt"

// State is the lifecycle position of a Stream. States are strictly ordered
// and each one implies every earlier one.
type State uint8

const (
	Created State = iota
	Initialized
	SourceReady
	ProgramReady
	Seeded
	BuffersReady
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Initialized:
		return "initialized"
	case SourceReady:
		return "source_ready"
	case ProgramReady:
		return "program_ready"
	case Seeded:
		return "seeded"
	case BuffersReady:
		return "buffers_ready"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Flags is the readiness projection of a State.
type Flags struct {
	Initialized    bool `json:"initialized"`
	SourceReady    bool `json:"source_ready"`
	ProgramReady   bool `json:"program_ready"`
	Seeded         bool `json:"seeded"`
	GeneratorReady bool `json:"generator_ready"`
}

func (s State) Flags() Flags {
	return Flags{
		Initialized:    s >= Initialized,
		SourceReady:    s >= SourceReady,
		ProgramReady:   s >= ProgramReady,
		Seeded:         s >= Seeded,
		GeneratorReady: s >= BuffersReady,
	}
}
