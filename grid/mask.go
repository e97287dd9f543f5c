package grid

// Mask records which pixels of an equally shaped Grid hold valid data.
type Mask struct {
	W, H  int
	Valid []bool
}

// NewMask returns a Mask of the given dimensions with every pixel valid.
func NewMask(w, h int) *Mask {
	m := &Mask{
		W:     w,
		H:     h,
		Valid: make([]bool, w*h),
	}
	for i := range m.Valid {
		m.Valid[i] = true
	}
	return m
}

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	dup := &Mask{
		W:     m.W,
		H:     m.H,
		Valid: make([]bool, len(m.Valid)),
	}
	copy(dup.Valid, m.Valid)
	return dup
}

// And combines m with o in place; a pixel stays valid only if it is valid
// in both masks. A nil o leaves m untouched.
func (m *Mask) And(o *Mask) {
	if o == nil {
		return
	}
	for i, ok := range o.Valid {
		m.Valid[i] = m.Valid[i] && ok
	}
}

// CountValid returns the number of valid pixels.
func (m *Mask) CountValid() (n int) {
	for _, ok := range m.Valid {
		if ok {
			n++
		}
	}
	return
}
