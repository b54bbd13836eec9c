package prng

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// mt19937Lane is the 32-bit Mersenne Twister.
type mt19937Lane struct {
	Mt  [mtN]uint32
	Mti uint32
}

func (l *mt19937Lane) Seed(seed uint64) {
	l.Mt[0] = uint32(seed) ^ uint32(seed>>32)
	for i := 1; i < mtN; i++ {
		l.Mt[i] = 1812433253*(l.Mt[i-1]^(l.Mt[i-1]>>30)) + uint32(i)
	}
	l.Mti = mtN
}

func (l *mt19937Lane) twist() {
	for kk := range mtN {
		y := (l.Mt[kk] & mtUpperMask) | (l.Mt[(kk+1)%mtN] & mtLowerMask)
		v := l.Mt[(kk+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtMatrixA
		}
		l.Mt[kk] = v
	}
	l.Mti = 0
}

func (l *mt19937Lane) Next() uint64 {
	if l.Mti >= mtN {
		l.twist()
	}
	y := l.Mt[l.Mti]
	l.Mti++
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return uint64(y)
}
