package prng

const mwc64xA = 4294883355

// mwc64xLane is Thomas' MWC64X multiply-with-carry.
type mwc64xLane struct {
	X uint32
	C uint32
}

func (l *mwc64xLane) Seed(seed uint64) {
	l.X = uint32(seed)
	l.C = uint32(seed>>32) % mwc64xA
	if l.X == 0 && l.C == 0 {
		l.X = 1
	}
}

func (l *mwc64xLane) Next() uint64 {
	r := l.X ^ l.C
	t := uint64(mwc64xA)*uint64(l.X) + uint64(l.C)
	l.X = uint32(t)
	l.C = uint32(t >> 32)
	return uint64(r)
}
