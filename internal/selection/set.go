// Package selection implements multi-selection over the entities of one
// shape: click, ctrl-click toggle and shift-click ranges per kind.
package selection

import "slices"

// Modifiers are the keys held during a click
type Modifiers struct {
	Ctrl  bool
	Shift bool
}

// Set is an ordered set of selected indices plus the shift-click anchor
type Set struct {
	items     []int
	anchor    int
	hasAnchor bool
}

// Items returns a copy of the selected indices in selection order
func (s *Set) Items() []int {
	return slices.Clone(s.items)
}

// Len returns the number of selected indices
func (s *Set) Len() int {
	return len(s.items)
}

// Contains reports whether index is selected
func (s *Set) Contains(index int) bool {
	return slices.Contains(s.items, index)
}

// Anchor returns the last clicked index, if any
func (s *Set) Anchor() (int, bool) {
	return s.anchor, s.hasAnchor
}

// Click applies one click. Rules in precedence order: ctrl toggles, shift
// with an anchor selects the inclusive range, anything else selects only
// index. The anchor always moves to index.
func (s *Set) Click(index int, mods Modifiers) {
	switch {
	case mods.Ctrl:
		s.toggle(index)
	case mods.Shift && s.hasAnchor:
		lo, hi := min(s.anchor, index), max(s.anchor, index)
		s.items = s.items[:0]
		for i := lo; i <= hi; i++ {
			s.items = append(s.items, i)
		}
	default:
		s.items = append(s.items[:0], index)
	}
	s.anchor, s.hasAnchor = index, true
}

// Toggle flips membership of index and makes it the anchor
func (s *Set) Toggle(index int) {
	s.toggle(index)
	s.anchor, s.hasAnchor = index, true
}

func (s *Set) toggle(index int) {
	if i := slices.Index(s.items, index); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		return
	}
	s.items = append(s.items, index)
}

// Replace sets the selection to items, dropping duplicates. The anchor is
// left alone.
func (s *Set) Replace(items []int) {
	s.items = s.items[:0]
	for _, i := range items {
		if !slices.Contains(s.items, i) {
			s.items = append(s.items, i)
		}
	}
}

// Clear empties the selection but keeps the anchor
func (s *Set) Clear() {
	s.items = s.items[:0]
}

// Reset empties the selection and forgets the anchor
func (s *Set) Reset() {
	s.items = nil
	s.anchor, s.hasAnchor = 0, false
}
