package selection

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gomesh/pkg/shape"
)

// ErrIndexOutOfRange is returned for clicks on indices the shape does not have
var ErrIndexOutOfRange = errors.New("index out of range")

// Callback is notified after the selection of a kind changed
type Callback func(kind shape.Kind)

// Synchronizer owns one Set per kind and turns clicks into transitions.
// It is not safe for concurrent use; callers serialize access.
type Synchronizer struct {
	sets      [3]Set
	counts    [3]int
	callbacks []Callback
}

// NewSynchronizer creates a synchronizer with empty collections
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// OnChange registers a callback fired after every selection change
func (s *Synchronizer) OnChange(cb Callback) {
	s.callbacks = append(s.callbacks, cb)
}

func (s *Synchronizer) notify(kind shape.Kind) {
	for _, cb := range s.callbacks {
		cb(kind)
	}
}

func (s *Synchronizer) check(kind shape.Kind, index int) error {
	if index < 0 || index >= s.counts[kind] {
		return fmt.Errorf("%w: %s %d (have %d)", ErrIndexOutOfRange, kind, index, s.counts[kind])
	}
	return nil
}

// Reset adopts the collection sizes of a newly loaded shape and clears every
// selection and anchor. No callbacks fire.
func (s *Synchronizer) Reset(sh *shape.Shape) {
	for _, kind := range shape.Kinds {
		s.sets[kind].Reset()
		s.counts[kind] = 0
		if sh != nil {
			s.counts[kind] = sh.Count(kind)
		}
	}
}

// Click applies a click on a table row or a picked entity
func (s *Synchronizer) Click(kind shape.Kind, index int, mods Modifiers) error {
	if err := s.check(kind, index); err != nil {
		return err
	}
	s.sets[kind].Click(index, mods)
	s.notify(kind)
	return nil
}

// ToggleEach toggles every index in turn; the last one becomes the anchor
func (s *Synchronizer) ToggleEach(kind shape.Kind, indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	for _, i := range indices {
		if err := s.check(kind, i); err != nil {
			return err
		}
	}
	for _, i := range indices {
		s.sets[kind].Toggle(i)
	}
	s.notify(kind)
	return nil
}

// Clear empties the selection of a kind, as a click on empty space does.
// The anchor is not touched.
func (s *Synchronizer) Clear(kind shape.Kind) {
	s.sets[kind].Clear()
	s.notify(kind)
}

// Discard empties the selection of a kind without notifying anyone. Change
// callbacks use it to clear the other kinds.
func (s *Synchronizer) Discard(kind shape.Kind) {
	s.sets[kind].Clear()
}

// SelectAll replaces the selection of a kind with indices
func (s *Synchronizer) SelectAll(kind shape.Kind, indices []int) error {
	for _, i := range indices {
		if err := s.check(kind, i); err != nil {
			return err
		}
	}
	s.sets[kind].Replace(indices)
	s.notify(kind)
	return nil
}

// Selected returns the selected indices of a kind in selection order
func (s *Synchronizer) Selected(kind shape.Kind) []int {
	return s.sets[kind].Items()
}

// IsSelected reports whether index of kind is selected
func (s *Synchronizer) IsSelected(kind shape.Kind, index int) bool {
	return s.sets[kind].Contains(index)
}

// Anchor returns the last clicked index of a kind
func (s *Synchronizer) Anchor(kind shape.Kind) (int, bool) {
	return s.sets[kind].Anchor()
}
