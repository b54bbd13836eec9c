package prng

const (
	mrg31M1     = 2147483647
	mrg31M2     = 2147462579
	mrg31Mask12 = 511
	mrg31Mask13 = 16777215
	mrg31Mask21 = 65535
	mrg31Mult2  = 21069
)

// mrg31k3pLane is L'Ecuyer and Touzin's MRG31k3p.
type mrg31k3pLane struct {
	X10 uint32
	X11 uint32
	X12 uint32
	X20 uint32
	X21 uint32
	X22 uint32
}

func (l *mrg31k3pLane) Seed(seed uint64) {
	sm := splitmix(seed)
	l.X10 = uint32(sm.next()%(mrg31M1-1)) + 1
	l.X11 = uint32(sm.next()%(mrg31M1-1)) + 1
	l.X12 = uint32(sm.next()%(mrg31M1-1)) + 1
	l.X20 = uint32(sm.next()%(mrg31M2-1)) + 1
	l.X21 = uint32(sm.next()%(mrg31M2-1)) + 1
	l.X22 = uint32(sm.next()%(mrg31M2-1)) + 1
}

// Next returns the 31-bit output shifted into the top of a 32-bit word.
func (l *mrg31k3pLane) Next() uint64 {
	y1 := ((l.X11 & mrg31Mask12) << 22) + (l.X11 >> 9) + ((l.X12 & mrg31Mask13) << 7) + (l.X12 >> 24)
	if y1 >= mrg31M1 {
		y1 -= mrg31M1
	}
	y1 += l.X12
	if y1 >= mrg31M1 {
		y1 -= mrg31M1
	}
	l.X12, l.X11, l.X10 = l.X11, l.X10, y1

	y1 = ((l.X20 & mrg31Mask21) << 15) + mrg31Mult2*(l.X20>>16)
	if y1 >= mrg31M2 {
		y1 -= mrg31M2
	}
	y2 := ((l.X22 & mrg31Mask21) << 15) + mrg31Mult2*(l.X22>>16)
	if y2 >= mrg31M2 {
		y2 -= mrg31M2
	}
	y2 += l.X22
	if y2 >= mrg31M2 {
		y2 -= mrg31M2
	}
	y2 += y1
	if y2 >= mrg31M2 {
		y2 -= mrg31M2
	}
	l.X22, l.X21, l.X20 = l.X21, l.X20, y2

	var z uint32
	if l.X10 <= l.X20 {
		z = l.X10 - l.X20 + mrg31M1
	} else {
		z = l.X10 - l.X20
	}
	return uint64(z) << 1
}

const (
	mrg63M1   = 9223372036854769163
	mrg63M2   = 9223372036854754679
	mrg63A12  = 1754669720
	mrg63A13n = 3182104042
	mrg63A21  = 31387477935
	mrg63A23n = 6199136374

	mrg63Q12 = mrg63M1 / mrg63A12
	mrg63R12 = mrg63M1 % mrg63A12
	mrg63Q13 = mrg63M1 / mrg63A13n
	mrg63R13 = mrg63M1 % mrg63A13n
	mrg63Q21 = mrg63M2 / mrg63A21
	mrg63R21 = mrg63M2 % mrg63A21
	mrg63Q23 = mrg63M2 / mrg63A23n
	mrg63R23 = mrg63M2 % mrg63A23n
)

// mrg63k3aLane is L'Ecuyer's MRG63k3a using Schrage decomposition.
type mrg63k3aLane struct {
	S10 int64
	S11 int64
	S12 int64
	S20 int64
	S21 int64
	S22 int64
}

func (l *mrg63k3aLane) Seed(seed uint64) {
	sm := splitmix(seed)
	l.S10 = int64(sm.next()%(mrg63M1-1)) + 1
	l.S11 = int64(sm.next()%(mrg63M1-1)) + 1
	l.S12 = int64(sm.next()%(mrg63M1-1)) + 1
	l.S20 = int64(sm.next()%(mrg63M2-1)) + 1
	l.S21 = int64(sm.next()%(mrg63M2-1)) + 1
	l.S22 = int64(sm.next()%(mrg63M2-1)) + 1
}

// Next returns the 63-bit output shifted into the top of a 64-bit word.
func (l *mrg63k3aLane) Next() uint64 {
	h := l.S10 / mrg63Q13
	p13 := mrg63A13n*(l.S10-h*mrg63Q13) - h*mrg63R13
	h = l.S11 / mrg63Q12
	p12 := mrg63A12*(l.S11-h*mrg63Q12) - h*mrg63R12
	if p13 < 0 {
		p13 += mrg63M1
	}
	if p12 < 0 {
		p12 += mrg63M1 - p13
	} else {
		p12 -= p13
	}
	if p12 < 0 {
		p12 += mrg63M1
	}
	l.S10, l.S11, l.S12 = l.S11, l.S12, p12

	h = l.S22 / mrg63Q21
	p21 := mrg63A21*(l.S22-h*mrg63Q21) - h*mrg63R21
	h = l.S20 / mrg63Q23
	p23 := mrg63A23n*(l.S20-h*mrg63Q23) - h*mrg63R23
	if p23 < 0 {
		p23 += mrg63M2
	}
	if p21 < 0 {
		p21 += mrg63M2 - p23
	} else {
		p21 -= p23
	}
	if p21 < 0 {
		p21 += mrg63M2
	}
	l.S20, l.S21, l.S22 = l.S21, l.S22, p21

	z := p12 - p21
	if p12 <= p21 {
		z += mrg63M1
	}
	return uint64(z) << 1
}
