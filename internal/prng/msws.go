package prng

// mswsLane is Widynski's middle square Weyl sequence.
type mswsLane struct {
	X uint64
	W uint64
	S uint64
}

func (l *mswsLane) Seed(seed uint64) {
	sm := splitmix(seed)
	l.X = sm.next()
	l.W = sm.next()
	l.S = sm.next() | 1
}

func (l *mswsLane) Next() uint64 {
	l.X *= l.X
	l.W += l.S
	l.X += l.W
	l.X = (l.X >> 32) | (l.X << 32)
	return uint64(uint32(l.X))
}
