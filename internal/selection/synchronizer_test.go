package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/shape"
)

func testShape(t *testing.T) *shape.Shape {
	t.Helper()
	faces := make([]shape.FaceEntity, 6)
	edges := make([]shape.EdgeEntity, 12)
	for i := range edges {
		edges[i].Points = []geometry.Vector3{{}, {X: 1}}
	}
	s, err := shape.New("box", []shape.SolidEntity{{Faces: []int{0, 1, 2, 3, 4, 5}}}, faces, edges)
	require.NoError(t, err)
	return s
}

func TestSynchronizerClickFiresCallbacks(t *testing.T) {
	sel := NewSynchronizer()
	sel.Reset(testShape(t))

	var changed []shape.Kind
	sel.OnChange(func(kind shape.Kind) { changed = append(changed, kind) })

	require.NoError(t, sel.Click(shape.Face, 2, Modifiers{}))
	require.NoError(t, sel.Click(shape.Face, 5, Modifiers{Shift: true}))
	assert.Equal(t, []int{2, 3, 4, 5}, sel.Selected(shape.Face))
	assert.Equal(t, []shape.Kind{shape.Face, shape.Face}, changed)
}

func TestSynchronizerRejectsOutOfRange(t *testing.T) {
	sel := NewSynchronizer()
	sel.Reset(testShape(t))

	assert.ErrorIs(t, sel.Click(shape.Face, 6, Modifiers{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, sel.Click(shape.Solid, -1, Modifiers{}), ErrIndexOutOfRange)
	assert.ErrorIs(t, sel.SelectAll(shape.Edge, []int{11, 12}), ErrIndexOutOfRange)
	assert.Empty(t, sel.Selected(shape.Edge))
}

func TestSynchronizerClearDoesNotMoveAnchor(t *testing.T) {
	sel := NewSynchronizer()
	sel.Reset(testShape(t))

	fired := 0
	sel.OnChange(func(shape.Kind) { fired++ })

	require.NoError(t, sel.Click(shape.Edge, 4, Modifiers{}))
	sel.Clear(shape.Edge)
	assert.Empty(t, sel.Selected(shape.Edge))
	assert.Equal(t, 2, fired)

	require.NoError(t, sel.Click(shape.Edge, 6, Modifiers{Shift: true}))
	assert.Equal(t, []int{4, 5, 6}, sel.Selected(shape.Edge))
}

func TestSynchronizerResetClearsEverything(t *testing.T) {
	sel := NewSynchronizer()
	sel.Reset(testShape(t))

	require.NoError(t, sel.Click(shape.Solid, 0, Modifiers{}))
	require.NoError(t, sel.Click(shape.Face, 1, Modifiers{}))
	require.NoError(t, sel.SelectAll(shape.Edge, []int{0, 1, 2}))

	sel.Reset(testShape(t))
	for _, kind := range shape.Kinds {
		assert.Empty(t, sel.Selected(kind), kind.String())
		_, ok := sel.Anchor(kind)
		assert.False(t, ok, kind.String())
	}
}

func TestSynchronizerToggleEach(t *testing.T) {
	sel := NewSynchronizer()
	sel.Reset(testShape(t))

	require.NoError(t, sel.ToggleEach(shape.Face, []int{1, 3}))
	assert.Equal(t, []int{1, 3}, sel.Selected(shape.Face))
	anchor, _ := sel.Anchor(shape.Face)
	assert.Equal(t, 3, anchor)

	require.NoError(t, sel.ToggleEach(shape.Face, []int{1}))
	assert.Equal(t, []int{3}, sel.Selected(shape.Face))
}

func TestSynchronizerDiscardIsSilent(t *testing.T) {
	sel := NewSynchronizer()
	sel.Reset(testShape(t))
	require.NoError(t, sel.Click(shape.Face, 1, Modifiers{}))

	fired := false
	sel.OnChange(func(shape.Kind) { fired = true })
	sel.Discard(shape.Face)

	assert.False(t, fired)
	assert.Empty(t, sel.Selected(shape.Face))
}
