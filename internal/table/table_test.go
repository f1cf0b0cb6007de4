package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/pkg/shape"
)

func newFaceTable(t *testing.T, n, perPage int) (*Table, *selection.Synchronizer) {
	t.Helper()
	faces := make([]shape.FaceEntity, n)
	for i := range faces {
		faces[i].MeshSize = shape.Unbounded
	}
	s, err := shape.New("part", nil, faces, nil)
	require.NoError(t, err)

	sel := selection.NewSynchronizer()
	sel.Reset(s)
	return New(shape.Face, s, sel, perPage), sel
}

func TestNewTableRowsVisibleUnselected(t *testing.T) {
	tbl, _ := newFaceTable(t, 6, 0)

	rows := tbl.Rows()
	require.Len(t, rows, 6)
	for i, r := range rows {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.Visible)
		assert.False(t, r.Selected)
		assert.Equal(t, "", r.MeshSizeText())
	}
	assert.Equal(t, DefaultRowsPerPage, tbl.RowsPerPage())
}

func TestSettersMarkStale(t *testing.T) {
	tbl, _ := newFaceTable(t, 3, 10)
	tbl.MarkFresh()

	require.NoError(t, tbl.SetName(1, " inlet "))
	assert.True(t, tbl.Stale())
	assert.Equal(t, "inlet", tbl.Row(1).Name)

	tbl.MarkFresh()
	require.NoError(t, tbl.SetMeshSizeText(1, "0.25"))
	assert.True(t, tbl.Stale())
	assert.Equal(t, 0.25, tbl.Row(1).MeshSize)

	require.NoError(t, tbl.SetMeshSizeText(1, ""))
	assert.True(t, shape.IsUnbounded(tbl.Row(1).MeshSize))

	tbl.MarkFresh()
	require.NoError(t, tbl.SetVisible(2, false))
	assert.True(t, tbl.Stale())
	assert.False(t, tbl.IsVisible(2))
}

func TestSettersRejectBadInput(t *testing.T) {
	tbl, _ := newFaceTable(t, 3, 10)

	assert.ErrorIs(t, tbl.SetMeshSizeText(0, "-1"), shape.ErrInvalidMeshSize)
	assert.ErrorIs(t, tbl.SetMeshSizeText(0, "abc"), shape.ErrInvalidMeshSize)
	assert.ErrorIs(t, tbl.SetMeshSize(0, 0), shape.ErrInvalidMeshSize)
	assert.ErrorIs(t, tbl.SetName(3, "x"), selection.ErrIndexOutOfRange)
	assert.ErrorIs(t, tbl.SetVisible(-1, false), selection.ErrIndexOutOfRange)
}

func TestFilterLeavesSelectionAlone(t *testing.T) {
	tbl, sel := newFaceTable(t, 5, 10)
	require.NoError(t, tbl.SetName(0, "Inlet"))
	require.NoError(t, tbl.SetName(3, "outlet"))
	require.NoError(t, sel.Click(shape.Face, 2, selection.Modifiers{}))

	tbl.SetFilter("LET")
	assert.Equal(t, []int{0, 3}, tbl.Displayed())
	assert.Equal(t, []int{2}, tbl.Selected())

	tbl.SetFilter("")
	assert.Len(t, tbl.Rows(), 5)
}

func TestSelectAllRespectsFilterAndIsIdempotent(t *testing.T) {
	tbl, _ := newFaceTable(t, 5, 10)
	require.NoError(t, tbl.SetName(1, "wall a"))
	require.NoError(t, tbl.SetName(4, "wall b"))
	tbl.SetFilter("wall")

	require.NoError(t, tbl.SelectAll())
	once := tbl.Selected()
	require.NoError(t, tbl.SelectAll())
	assert.Equal(t, once, tbl.Selected())
	assert.Equal(t, []int{1, 4}, once)
}

func TestPagination(t *testing.T) {
	tbl, _ := newFaceTable(t, 23, 10)

	assert.Equal(t, 3, tbl.PageCount())
	assert.Equal(t, 0, tbl.PageOf(9))
	assert.Equal(t, 1, tbl.PageOf(10))
	assert.Equal(t, 2, tbl.PageOf(22))
	assert.Len(t, tbl.Page(2), 3)
	assert.Len(t, tbl.Page(7), 3, "page is clamped")
	assert.Equal(t, 0, tbl.Page(-1)[0].Index)

	require.NoError(t, tbl.SetName(15, "needle"))
	tbl.SetFilter("needle")
	assert.Equal(t, 0, tbl.PageOf(15))
	assert.Equal(t, -1, tbl.PageOf(3))
	assert.Equal(t, 1, tbl.PageCount())
}

func TestAnnotationsRoundTrip(t *testing.T) {
	tbl, _ := newFaceTable(t, 4, 10)
	require.NoError(t, tbl.SetName(0, "inlet"))
	require.NoError(t, tbl.SetMeshSize(2, 0.5))

	saved := tbl.Annotations()
	require.Len(t, saved, 2)

	other, _ := newFaceTable(t, 4, 10)
	skipped := other.ApplyAnnotations(append(saved, shape.Annotation{Index: 9, Name: "gone"}))
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "inlet", other.Row(0).Name)
	assert.Equal(t, 0.5, other.Row(2).MeshSize)
}
