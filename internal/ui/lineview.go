package ui

import "sync"

// lineView is a fixed-height window over a list of rows. It is shared with
// the sync loop, which scrolls it from its own goroutine.
type lineView struct {
	mu     sync.Mutex
	height int
	offset int
	count  int
}

func newLineView(height int) *lineView {
	return &lineView{height: height}
}

func (v *lineView) SetHeight(h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if h < 1 {
		h = 1
	}
	v.height = h
	v.clampLocked()
}

func (v *lineView) SetCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.count = n
	v.clampLocked()
}

// RelativePosition implements navigator.Viewport. Rows outside the window
// report positions below 0 or above 1.
func (v *lineView) RelativePosition(i int) (float64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.height <= 0 || i < 0 {
		return 0, false
	}
	return float64(i-v.offset) / float64(v.height), true
}

// CenterOn implements navigator.Viewport.
func (v *lineView) CenterOn(i int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = i - v.height/2
	v.clampLocked()
}

// ScrollIntoView implements navigator.Scroller.
func (v *lineView) ScrollIntoView(i int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case i < v.offset:
		v.offset = i
	case i >= v.offset+v.height:
		v.offset = i - v.height + 1
	}
	v.clampLocked()
}

// Scroll moves the window by delta rows.
func (v *lineView) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset += delta
	v.clampLocked()
}

// Window returns the visible row range [start, end).
func (v *lineView) Window() (start, end int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	end = v.offset + v.height
	if end > v.count {
		end = v.count
	}
	return v.offset, end
}

func (v *lineView) Height() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// clampLocked keeps the window inside the rows. Before the row count is
// known only the lower bound applies.
func (v *lineView) clampLocked() {
	if v.count > 0 {
		if last := v.count - v.height; v.offset > last {
			v.offset = last
		}
	}
	if v.offset < 0 {
		v.offset = 0
	}
}
