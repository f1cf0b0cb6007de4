// Package table holds the per-kind shape tables: one row per solid, face or
// edge with its editable name, mesh size and visibility.
package table

import (
	"fmt"
	"strings"

	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// DefaultRowsPerPage matches the page size of the table views
const DefaultRowsPerPage = 15

// Row is a display snapshot of one entity
type Row struct {
	Index    int
	Name     string
	MeshSize float64
	Visible  bool
	Selected bool
}

// MeshSizeText returns the mesh size as shown in an input; empty when unset
func (r Row) MeshSizeText() string {
	return shape.FormatMeshSize(r.MeshSize)
}

// Table is the view of one kind's entities. Names and mesh sizes live on the
// shape handle, visibility lives here, selection in the synchronizer.
type Table struct {
	kind        shape.Kind
	shape       *shape.Shape
	sel         *selection.Synchronizer
	visible     []bool
	filter      string
	rowsPerPage int
	stale       bool
}

// New creates the table of one kind. All entities start visible.
func New(kind shape.Kind, s *shape.Shape, sel *selection.Synchronizer, rowsPerPage int) *Table {
	if rowsPerPage <= 0 {
		rowsPerPage = DefaultRowsPerPage
	}
	visible := make([]bool, s.Count(kind))
	for i := range visible {
		visible[i] = true
	}
	return &Table{
		kind:        kind,
		shape:       s,
		sel:         sel,
		visible:     visible,
		rowsPerPage: rowsPerPage,
		stale:       true,
	}
}

// Kind returns the kind the table shows
func (t *Table) Kind() shape.Kind {
	return t.kind
}

// Len returns the number of entities, ignoring the filter
func (t *Table) Len() int {
	return len(t.visible)
}

func (t *Table) check(index int) error {
	if index < 0 || index >= len(t.visible) {
		return fmt.Errorf("%w: %s %d (have %d)", selection.ErrIndexOutOfRange, t.kind, index, len(t.visible))
	}
	return nil
}

// Row returns the snapshot of one entity
func (t *Table) Row(index int) Row {
	name, size := t.shape.Entity(t.kind, index)
	return Row{
		Index:    index,
		Name:     name,
		MeshSize: size,
		Visible:  t.visible[index],
		Selected: t.sel.IsSelected(t.kind, index),
	}
}

// Rows returns the rows matching the filter, in index order
func (t *Table) Rows() []Row {
	indices := t.Displayed()
	rows := make([]Row, len(indices))
	for i, index := range indices {
		rows[i] = t.Row(index)
	}
	return rows
}

// Displayed returns the indices of the rows matching the filter
func (t *Table) Displayed() []int {
	indices := make([]int, 0, len(t.visible))
	needle := strings.ToLower(t.filter)
	for i := range t.visible {
		if needle != "" {
			name, _ := t.shape.Entity(t.kind, i)
			if !strings.Contains(strings.ToLower(name), needle) {
				continue
			}
		}
		indices = append(indices, i)
	}
	return indices
}

// Filter returns the active name filter
func (t *Table) Filter() string {
	return t.filter
}

// SetFilter narrows the displayed rows to names containing text, ignoring
// case. Selection and entities are not touched.
func (t *Table) SetFilter(text string) {
	t.filter = strings.TrimSpace(text)
}

// Selected returns the selected indices
func (t *Table) Selected() []int {
	return t.sel.Selected(t.kind)
}

// SelectAll selects every displayed row
func (t *Table) SelectAll() error {
	return t.sel.SelectAll(t.kind, t.Displayed())
}

// SetName renames an entity
func (t *Table) SetName(index int, name string) error {
	if err := t.check(index); err != nil {
		return err
	}
	_, size := t.shape.Entity(t.kind, index)
	t.shape.SetEntity(t.kind, index, strings.TrimSpace(name), size)
	t.stale = true
	return nil
}

// SetMeshSize sets the mesh size override; shape.Unbounded clears it
func (t *Table) SetMeshSize(index int, size float64) error {
	if err := t.check(index); err != nil {
		return err
	}
	size, err := shape.CheckMeshSize(size)
	if err != nil {
		return err
	}
	name, _ := t.shape.Entity(t.kind, index)
	t.shape.SetEntity(t.kind, index, name, size)
	t.stale = true
	return nil
}

// SetMeshSizeText parses an input field value; empty clears the override
func (t *Table) SetMeshSizeText(index int, text string) error {
	size, err := shape.ParseMeshSize(text)
	if err != nil {
		return err
	}
	return t.SetMeshSize(index, size)
}

// SetVisible shows or hides an entity in the viewer
func (t *Table) SetVisible(index int, visible bool) error {
	if err := t.check(index); err != nil {
		return err
	}
	t.visible[index] = visible
	t.stale = true
	return nil
}

// IsVisible reports the visibility flag of an entity
func (t *Table) IsVisible(index int) bool {
	return t.visible[index]
}

// Stale reports whether an edit happened since the last MarkFresh
func (t *Table) Stale() bool {
	return t.stale
}

// MarkStale forces a color recomputation, used after selection changes
func (t *Table) MarkStale() {
	t.stale = true
}

// MarkFresh records that the colors reflect the current rows
func (t *Table) MarkFresh() {
	t.stale = false
}
