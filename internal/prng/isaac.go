package prng

const isaacGolden = 0x9e3779b9

// isaacLane is Jenkins' ISAAC with a 256 word pool per lane.
type isaacLane struct {
	Mem [256]uint32
	Rsl [256]uint32
	A   uint32
	B   uint32
	C   uint32
	Idx uint32
}

func (l *isaacLane) Seed(seed uint64) {
	sm := splitmix(seed)
	for i := 0; i < len(l.Rsl); i += 2 {
		v := sm.next()
		l.Rsl[i] = uint32(v)
		l.Rsl[i+1] = uint32(v >> 32)
	}
	l.A, l.B, l.C = 0, 0, 0

	m := [8]uint32{isaacGolden, isaacGolden, isaacGolden, isaacGolden, isaacGolden, isaacGolden, isaacGolden, isaacGolden}
	for range 4 {
		isaacMix(&m)
	}
	for _, src := range []*[256]uint32{&l.Rsl, &l.Mem} {
		for i := 0; i < 256; i += 8 {
			for j := range m {
				m[j] += src[i+j]
			}
			isaacMix(&m)
			copy(l.Mem[i:i+8], m[:])
		}
	}
	l.generate()
	l.Idx = 0
}

func (l *isaacLane) generate() {
	l.C++
	l.B += l.C
	for i := range 256 {
		x := l.Mem[i]
		switch i & 3 {
		case 0:
			l.A ^= l.A << 13
		case 1:
			l.A ^= l.A >> 6
		case 2:
			l.A ^= l.A << 2
		case 3:
			l.A ^= l.A >> 16
		}
		l.A += l.Mem[(i+128)&255]
		y := l.Mem[(x>>2)&255] + l.A + l.B
		l.Mem[i] = y
		l.B = l.Mem[(y>>10)&255] + x
		l.Rsl[i] = l.B
	}
}

func (l *isaacLane) Next() uint64 {
	if l.Idx >= 256 {
		l.generate()
		l.Idx = 0
	}
	v := l.Rsl[l.Idx]
	l.Idx++
	return uint64(v)
}

func isaacMix(m *[8]uint32) {
	a, b, c, d, e, f, g, h := m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7]
	a ^= b << 11
	d += a
	b += c
	b ^= c >> 2
	e += b
	c += d
	c ^= d << 8
	f += c
	d += e
	d ^= e >> 16
	g += d
	e += f
	e ^= f << 10
	h += e
	f += g
	f ^= g >> 4
	a += f
	g += h
	g ^= h << 8
	b += g
	h += a
	h ^= a >> 9
	c += h
	a += b
	*m = [8]uint32{a, b, c, d, e, f, g, h}
}
