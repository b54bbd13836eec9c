package prng

// xorshift1024Lane is Vigna's xorshift1024*.
type xorshift1024Lane struct {
	S [16]uint64
	P uint32
	_ [4]byte
}

func (l *xorshift1024Lane) Seed(seed uint64) {
	sm := splitmix(seed)
	for i := range l.S {
		l.S[i] = sm.next()
	}
	l.P = 0
}

func (l *xorshift1024Lane) Next() uint64 {
	s0 := l.S[l.P]
	l.P = (l.P + 1) & 15
	s1 := l.S[l.P]
	s1 ^= s1 << 31
	l.S[l.P] = s1 ^ s0 ^ (s1 >> 11) ^ (s0 >> 30)
	return l.S[l.P] * 1181783497276652981
}

// xorshift6432StarLane is xorshift64* truncated to the high 32 bits.
type xorshift6432StarLane struct {
	S uint64
}

func (l *xorshift6432StarLane) Seed(seed uint64) {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	l.S = seed
}

func (l *xorshift6432StarLane) Next() uint64 {
	l.S ^= l.S >> 12
	l.S ^= l.S << 25
	l.S ^= l.S >> 27
	return (l.S * 2685821657736338717) >> 32
}
