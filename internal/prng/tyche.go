package prng

import "math/bits"

const (
	tycheC0     = 2654435769
	tycheD0     = 1367130551
	tycheWarmup = 20
)

// tycheLane is Tyche, a ChaCha quarter-round based generator.
type tycheLane struct {
	A uint32
	B uint32
	C uint32
	D uint32
}

func (l *tycheLane) Seed(seed uint64) {
	l.A = uint32(seed >> 32)
	l.B = uint32(seed)
	l.C = tycheC0
	l.D = tycheD0
	for range tycheWarmup {
		l.mix()
	}
}

func (l *tycheLane) mix() {
	l.A += l.B
	l.D = bits.RotateLeft32(l.D^l.A, 16)
	l.C += l.D
	l.B = bits.RotateLeft32(l.B^l.C, 12)
	l.A += l.B
	l.D = bits.RotateLeft32(l.D^l.A, 8)
	l.C += l.D
	l.B = bits.RotateLeft32(l.B^l.C, 7)
}

func (l *tycheLane) Next() uint64 {
	l.mix()
	return uint64(l.B)
}

// tycheILane is Tyche-i, the inverted round of Tyche.
type tycheILane struct {
	A uint32
	B uint32
	C uint32
	D uint32
}

func (l *tycheILane) Seed(seed uint64) {
	l.A = uint32(seed >> 32)
	l.B = uint32(seed)
	l.C = tycheC0
	l.D = tycheD0
	for range tycheWarmup {
		l.mix()
	}
}

func (l *tycheILane) mix() {
	l.B = bits.RotateLeft32(l.B, -7) ^ l.C
	l.C -= l.D
	l.D = bits.RotateLeft32(l.D, -8) ^ l.A
	l.A -= l.B
	l.B = bits.RotateLeft32(l.B, -12) ^ l.C
	l.C -= l.D
	l.D = bits.RotateLeft32(l.D, -16) ^ l.A
	l.A -= l.B
}

func (l *tycheILane) Next() uint64 {
	l.mix()
	return uint64(l.A)
}
