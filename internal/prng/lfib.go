package prng

const (
	lfibLong  = 17
	lfibShort = 5
)

// lfibLane is an additive lagged Fibonacci generator, lags (17, 5).
type lfibLane struct {
	S [lfibLong]uint64
	P uint32
	Q uint32
}

func (l *lfibLane) Seed(seed uint64) {
	sm := splitmix(seed)
	for i := range l.S {
		l.S[i] = sm.next()
	}
	// At least one odd word keeps the period maximal.
	l.S[0] |= 1
	l.P = 0
	l.Q = lfibLong - lfibShort
}

func (l *lfibLane) Next() uint64 {
	v := l.S[l.P] + l.S[l.Q]
	l.S[l.P] = v
	l.P = (l.P + 1) % lfibLong
	l.Q = (l.Q + 1) % lfibLong
	return v
}
