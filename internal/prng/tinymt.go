package prng

const (
	tinymt32Mat1 = 0x8f7011ee
	tinymt32Mat2 = 0xfc78ff1f
	tinymt32Tmat = 0x3793fdff
	tinymt32Mask = 0x7fffffff

	tinymt64Mat1 = 0xfa051f40
	tinymt64Mat2 = 0xffd0fff4
	tinymt64Tmat = 0x58d02ffeffbfffbc
	tinymt64Mask = 0x7fffffffffffffff

	tinymtMinLoop = 8
)

// tinymt32Lane is TinyMT32 with the parameters stored per lane, matching
// the device struct.
type tinymt32Lane struct {
	Status [4]uint32
	Mat1   uint32
	Mat2   uint32
	Tmat   uint32
}

func (l *tinymt32Lane) Seed(seed uint64) {
	l.Mat1, l.Mat2, l.Tmat = tinymt32Mat1, tinymt32Mat2, tinymt32Tmat
	l.Status = [4]uint32{uint32(seed) ^ uint32(seed>>32), l.Mat1, l.Mat2, l.Tmat}
	for i := uint32(1); i < tinymtMinLoop; i++ {
		prev := l.Status[(i-1)&3]
		l.Status[i&3] ^= i + 1812433253*(prev^(prev>>30))
	}
	if l.Status[0]&tinymt32Mask == 0 && l.Status[1] == 0 && l.Status[2] == 0 && l.Status[3] == 0 {
		l.Status = [4]uint32{'T', 'I', 'N', 'Y'}
	}
	for range tinymtMinLoop {
		l.nextState()
	}
}

func (l *tinymt32Lane) nextState() {
	y := l.Status[3]
	x := (l.Status[0] & tinymt32Mask) ^ l.Status[1] ^ l.Status[2]
	x ^= x << 1
	y ^= (y >> 1) ^ x
	l.Status[0] = l.Status[1]
	l.Status[1] = l.Status[2]
	l.Status[2] = x ^ (y << 10)
	l.Status[3] = y
	if y&1 != 0 {
		l.Status[1] ^= l.Mat1
		l.Status[2] ^= l.Mat2
	}
}

func (l *tinymt32Lane) Next() uint64 {
	l.nextState()
	t0 := l.Status[3]
	t1 := l.Status[0] + (l.Status[2] >> 8)
	t0 ^= t1
	if t1&1 != 0 {
		t0 ^= l.Tmat
	}
	return uint64(t0)
}

// tinymt64Lane is TinyMT64.
type tinymt64Lane struct {
	Status [2]uint64
	Mat1   uint32
	Mat2   uint32
	Tmat   uint64
}

func (l *tinymt64Lane) Seed(seed uint64) {
	l.Mat1, l.Mat2, l.Tmat = tinymt64Mat1, tinymt64Mat2, tinymt64Tmat
	l.Status = [2]uint64{seed ^ uint64(l.Mat1)<<32, uint64(l.Mat2) ^ l.Tmat}
	for i := uint64(1); i < tinymtMinLoop; i++ {
		prev := l.Status[(i-1)&1]
		l.Status[i&1] ^= i + 6364136223846793005*(prev^(prev>>62))
	}
	if l.Status[0]&tinymt64Mask == 0 && l.Status[1] == 0 {
		l.Status = [2]uint64{'T', 'M'}
	}
}

func (l *tinymt64Lane) nextState() {
	l.Status[0] &= tinymt64Mask
	x := l.Status[0] ^ l.Status[1]
	x ^= x << 12
	x ^= x >> 32
	x ^= x << 32
	x ^= x << 11
	l.Status[0] = l.Status[1]
	l.Status[1] = x
	if x&1 != 0 {
		l.Status[0] ^= uint64(l.Mat1)
		l.Status[1] ^= uint64(l.Mat2) << 32
	}
}

func (l *tinymt64Lane) Next() uint64 {
	l.nextState()
	x := l.Status[0] + l.Status[1]
	x ^= l.Status[0] >> 8
	if x&1 != 0 {
		x ^= l.Tmat
	}
	return x
}
