package prng

// kiss09Lane is Marsaglia's 64-bit KISS (2009): MWC + xorshift + LCG.
type kiss09Lane struct {
	X uint64
	C uint64
	Y uint64
	Z uint64
}

func (l *kiss09Lane) Seed(seed uint64) {
	sm := splitmix(seed)
	l.X = 1234567890987654321 ^ sm.next()
	l.C = 123456123456123456
	l.Y = 362436362436362436 ^ sm.next()
	if l.Y == 0 {
		l.Y = 362436362436362436
	}
	l.Z = 1066149217761810 ^ sm.next()
}

func (l *kiss09Lane) Next() uint64 {
	t := (l.X << 58) + l.C
	l.C = l.X >> 6
	l.X += t
	if l.X < t {
		l.C++
	}
	l.Y ^= l.Y << 13
	l.Y ^= l.Y >> 17
	l.Y ^= l.Y << 43
	l.Z = 6906969069*l.Z + 1234567
	return l.X + l.Y + l.Z
}

// kiss99Lane is Marsaglia's 32-bit KISS (1999).
type kiss99Lane struct {
	Z     uint32
	W     uint32
	Jsr   uint32
	Jcong uint32
}

func (l *kiss99Lane) Seed(seed uint64) {
	sm := splitmix(seed)
	v := sm.next()
	l.Z = 362436069 ^ uint32(v)
	l.W = 521288629 ^ uint32(v>>32)
	if l.Z == 0 {
		l.Z = 362436069
	}
	if l.W == 0 {
		l.W = 521288629
	}
	v = sm.next()
	l.Jsr = 123456789 ^ uint32(v)
	if l.Jsr == 0 {
		l.Jsr = 123456789
	}
	l.Jcong = 380116160 ^ uint32(v>>32)
}

func (l *kiss99Lane) Next() uint64 {
	l.Z = 36969*(l.Z&65535) + (l.Z >> 16)
	l.W = 18000*(l.W&65535) + (l.W >> 16)
	mwc := (l.Z << 16) + l.W
	l.Jsr ^= l.Jsr << 17
	l.Jsr ^= l.Jsr >> 13
	l.Jsr ^= l.Jsr << 5
	l.Jcong = 69069*l.Jcong + 1234567
	return uint64((mwc ^ l.Jcong) + l.Jsr)
}
