package prng

const (
	ran2IM1  = 2147483563
	ran2IM2  = 2147483399
	ran2IMM1 = ran2IM1 - 1
	ran2IA1  = 40014
	ran2IA2  = 40692
	ran2IQ1  = 53668
	ran2IQ2  = 52774
	ran2IR1  = 12211
	ran2IR2  = 3791
	ran2NTab = 32
	ran2NDiv = 1 + ran2IMM1/ran2NTab
)

// ran2Lane is the combined L'Ecuyer generator with a Bays-Durham shuffle
// table, as popularised by Numerical Recipes.
type ran2Lane struct {
	Idum  int32
	Idum2 int32
	Iy    int32
	Iv    [ran2NTab]int32
}

func (l *ran2Lane) Seed(seed uint64) {
	idum := int32(seed%(ran2IM1-1)) + 1
	l.Idum2 = idum
	for j := ran2NTab + 7; j >= 0; j-- {
		k := idum / ran2IQ1
		idum = ran2IA1*(idum-k*ran2IQ1) - k*ran2IR1
		if idum < 0 {
			idum += ran2IM1
		}
		if j < ran2NTab {
			l.Iv[j] = idum
		}
	}
	l.Idum = idum
	l.Iy = l.Iv[0]
}

// Next returns the 31-bit output shifted into the top of a 32-bit word.
func (l *ran2Lane) Next() uint64 {
	k := l.Idum / ran2IQ1
	l.Idum = ran2IA1*(l.Idum-k*ran2IQ1) - k*ran2IR1
	if l.Idum < 0 {
		l.Idum += ran2IM1
	}
	k = l.Idum2 / ran2IQ2
	l.Idum2 = ran2IA2*(l.Idum2-k*ran2IQ2) - k*ran2IR2
	if l.Idum2 < 0 {
		l.Idum2 += ran2IM2
	}
	j := l.Iy / ran2NDiv
	l.Iy = l.Iv[j] - l.Idum2
	l.Iv[j] = l.Idum
	if l.Iy < 1 {
		l.Iy += ran2IMM1
	}
	return uint64(uint32(l.Iy)) << 1
}
