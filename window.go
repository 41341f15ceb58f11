package emu

// window tracks one axis of the RAM addressing window: the active bounds
// and the write cursor for that axis.
type window struct {
	start  int
	end    int
	cursor int
}

// set replaces the window bounds and rewinds the cursor to start.
func (w *window) set(start, end int) {
	w.start = start
	w.end = end
	w.cursor = start
}

// advance increments the fast-axis cursor. When it passes the window end
// it wraps to the window start and carries into the slow axis, which wraps
// the same way. This reproduces 2-D raster order with either axis leading.
func advance(fast, slow *window) {
	if fast.cursor++; fast.cursor > fast.end {
		fast.cursor = fast.start
		if slow.cursor++; slow.cursor > slow.end {
			slow.cursor = slow.start
		}
	}
}
