package prng

// well512Lane is Panneton, L'Ecuyer and Matsumoto's WELL512a.
type well512Lane struct {
	S [16]uint32
	I uint32
}

func (l *well512Lane) Seed(seed uint64) {
	sm := splitmix(seed)
	for i := 0; i < len(l.S); i += 2 {
		v := sm.next()
		l.S[i] = uint32(v)
		l.S[i+1] = uint32(v >> 32)
	}
	l.I = 0
}

func (l *well512Lane) Next() uint64 {
	a := l.S[l.I]
	c := l.S[(l.I+13)&15]
	b := a ^ c ^ (a << 16) ^ (c << 15)
	c = l.S[(l.I+9)&15]
	c ^= c >> 11
	a = b ^ c
	l.S[l.I] = a
	d := a ^ ((a << 5) & 0xda442d24)
	l.I = (l.I + 15) & 15
	a = l.S[l.I]
	l.S[l.I] = a ^ b ^ d ^ (a << 2) ^ (b << 18) ^ (c << 28)
	return uint64(l.S[l.I])
}
