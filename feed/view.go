package feed

// View is the ordered sequence of rendered elements shown to the user.
// It only grows, and is mutated from the single delivery path.
type View[N any] struct {
	items        []N
	scrollToItem int
}

func NewView[N any]() *View[N] {
	return &View[N]{scrollToItem: -1}
}

// Append adds item at the end and scrolls to it.
func (v *View[N]) Append(item N) {
	v.items = append(v.items, item)
	v.scrollToItem = len(v.items) - 1
}

// Items returns the elements in arrival order.
func (v *View[N]) Items() []N {
	return v.items
}

func (v *View[N]) Len() int {
	return len(v.items)
}

// ScrollPosition returns the index of the element scrolled into view, -1 when empty.
func (v *View[N]) ScrollPosition() int {
	return v.scrollToItem
}
