package prng

import "math/bits"

const (
	philoxM2x32  = 0xd256d193
	philoxW32    = 0x9e3779b9
	philoxRounds = 10
)

// philoxLane is the counter-based Philox2x32-10. One call consumes one
// counter value and yields both output words.
type philoxLane struct {
	Ctr [2]uint32
	Key uint32
	_   [4]byte
}

func (l *philoxLane) Seed(seed uint64) {
	l.Key = uint32(seed)
	l.Ctr = [2]uint32{0, uint32(seed >> 32)}
}

func (l *philoxLane) Next() uint64 {
	c0, c1, k := l.Ctr[0], l.Ctr[1], l.Key
	for range philoxRounds {
		hi, lo := bits.Mul32(philoxM2x32, c0)
		c0, c1 = hi^k^c1, lo
		k += philoxW32
	}
	l.Ctr[0]++
	if l.Ctr[0] == 0 {
		l.Ctr[1]++
	}
	return uint64(c0)<<32 | uint64(c1)
}
