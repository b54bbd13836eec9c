package prng

import "math/bits"

const (
	lcg64Mult = 6364136223846793005
	lcg64Inc  = 0xda3e39cb94b95bdb

	lcg128MultHi = 0x2360ed051fc65da4
	lcg128MultLo = 0x4385df649fccf645
	lcg128IncHi  = 0x5851f42d4c957f2d
	lcg128IncLo  = 0x14057b7ef767814f
)

// lcg6432Lane is a 64-bit LCG returning the high word.
type lcg6432Lane struct {
	S uint64
}

func (l *lcg6432Lane) Seed(seed uint64) {
	l.S = seed
}

func (l *lcg6432Lane) Next() uint64 {
	l.S = l.S*lcg64Mult + lcg64Inc
	return l.S >> 32
}

// lcg12864Lane is a 128-bit LCG returning the high 64 bits.
type lcg12864Lane struct {
	Lo uint64
	Hi uint64
}

func (l *lcg12864Lane) Seed(seed uint64) {
	sm := splitmix(seed)
	l.Lo = sm.next()
	l.Hi = sm.next()
}

func (l *lcg12864Lane) Next() uint64 {
	hi, lo := bits.Mul64(l.Lo, lcg128MultLo)
	hi += l.Hi*lcg128MultLo + l.Lo*lcg128MultHi
	lo, carry := bits.Add64(lo, lcg128IncLo, 0)
	hi += lcg128IncHi + carry
	l.Lo, l.Hi = lo, hi
	return hi
}

// pcg6432Lane is PCG-XSH-RR with a 64-bit state and fixed stream.
type pcg6432Lane struct {
	S uint64
}

func (l *pcg6432Lane) Seed(seed uint64) {
	l.S = seed
}

func (l *pcg6432Lane) Next() uint64 {
	old := l.S
	l.S = old*lcg64Mult + lcg64Inc
	xorShifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return uint64(bits.RotateLeft32(xorShifted, -rot))
}
