package grid

// Window copies the w by h region of g with its top-left corner at
// (x0, y0). Pixels outside g are zero.
func (g *Grid) Window(x0, y0, w, h int) *Grid {
	out := New(w, h)
	for y := 0; y < h; y++ {
		sy := y0 + y
		if sy < 0 || sy >= g.H {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x0 + x
			if sx < 0 || sx >= g.W {
				continue
			}
			out.Data[y*w+x] = g.Data[sy*g.W+sx]
		}
	}
	return out
}

// Window copies the w by h region of m with its top-left corner at
// (x0, y0). Pixels outside m are invalid.
func (m *Mask) Window(x0, y0, w, h int) *Mask {
	out := &Mask{
		W:     w,
		H:     h,
		Valid: make([]bool, w*h),
	}
	for y := 0; y < h; y++ {
		sy := y0 + y
		if sy < 0 || sy >= m.H {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x0 + x
			if sx < 0 || sx >= m.W {
				continue
			}
			out.Valid[y*w+x] = m.Valid[sy*m.W+sx]
		}
	}
	return out
}
