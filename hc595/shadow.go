package hc595

// ShadowRegister mirrors the contents of the chain, which cannot be read back
// from the chips. It is a fixed-size ring buffer: every advanced bit evicts the
// oldest one, which has been shifted out past the end of the chain.
type ShadowRegister struct {
	cells []byte
	head  int // Index of the oldest bit
}

func NewShadowRegister(size int) *ShadowRegister {
	return &ShadowRegister{
		cells: make([]byte, size),
	}
}

func (r *ShadowRegister) Len() int {
	return len(r.cells)
}

// Advance shifts in one bit and returns the evicted bit.
func (r *ShadowRegister) Advance(bit byte) byte {
	if len(r.cells) == 0 {
		return bit
	}
	evicted := r.cells[r.head]
	r.cells[r.head] = bit
	r.head = (r.head + 1) % len(r.cells)
	return evicted
}

// Bits returns a copy of the contents, oldest bit first. The last bit is the
// one most recently shifted in.
func (r *ShadowRegister) Bits() Bits {
	res := make(Bits, len(r.cells))
	n := copy(res, r.cells[r.head:])
	copy(res[n:], r.cells[:r.head])
	return res
}

// Bit returns the i-th bit in the order of Bits().
func (r *ShadowRegister) Bit(i int) byte {
	return r.cells[(r.head+i)%len(r.cells)]
}

func (r *ShadowRegister) Reset() {
	for i := range r.cells {
		r.cells[i] = 0
	}
	r.head = 0
}
