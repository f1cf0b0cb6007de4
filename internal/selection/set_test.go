package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	plain = Modifiers{}
	ctrl  = Modifiers{Ctrl: true}
	shift = Modifiers{Shift: true}
)

func TestPlainClicksSelectOnlyLast(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var s Set
	for n := 0; n < 200; n++ {
		i := rng.Intn(50)
		s.Click(i, plain)
		assert.Equal(t, []int{i}, s.Items())
	}
}

func TestCtrlClickToggles(t *testing.T) {
	var s Set
	s.Click(1, plain)
	s.Click(4, ctrl)
	s.Click(7, ctrl)
	assert.Equal(t, []int{1, 4, 7}, s.Items())

	s.Click(4, ctrl)
	assert.Equal(t, []int{1, 7}, s.Items(), "remaining order is preserved")

	s.Click(4, ctrl)
	assert.Equal(t, []int{1, 7, 4}, s.Items())

	anchor, ok := s.Anchor()
	assert.True(t, ok)
	assert.Equal(t, 4, anchor)
}

func TestShiftClickRange(t *testing.T) {
	tests := []struct {
		anchor, index int
		want          []int
	}{
		{2, 5, []int{2, 3, 4, 5}},
		{5, 2, []int{2, 3, 4, 5}},
		{3, 3, []int{3}},
	}
	for _, tt := range tests {
		var s Set
		s.Click(tt.anchor, plain)
		s.Click(tt.index, shift)
		assert.Equal(t, tt.want, s.Items())
	}
}

func TestShiftWithoutAnchorSelectsSingle(t *testing.T) {
	var s Set
	s.Click(6, shift)
	assert.Equal(t, []int{6}, s.Items())

	s.Click(8, shift)
	assert.Equal(t, []int{6, 7, 8}, s.Items(), "previous shift click set the anchor")
}

func TestCtrlWinsOverShift(t *testing.T) {
	var s Set
	s.Click(1, plain)
	s.Click(5, Modifiers{Ctrl: true, Shift: true})
	assert.Equal(t, []int{1, 5}, s.Items())
}

func TestClearKeepsAnchorResetDropsIt(t *testing.T) {
	var s Set
	s.Click(3, plain)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	anchor, ok := s.Anchor()
	assert.True(t, ok)
	assert.Equal(t, 3, anchor)

	s.Reset()
	assert.Empty(t, s.Items())
	_, ok = s.Anchor()
	assert.False(t, ok)
}

func TestReplaceDeduplicates(t *testing.T) {
	var s Set
	s.Replace([]int{0, 1, 1, 2, 0})
	assert.Equal(t, []int{0, 1, 2}, s.Items())
	s.Replace([]int{0, 1, 2})
	assert.Equal(t, []int{0, 1, 2}, s.Items())
}
