package controller

import (
	"github.com/philipparndt/gomesh/internal/table"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// Columns of every shape table
var Columns = []string{"Index", "Name", "Maxh", "Visible"}

// Tab is one entry of the kind selector
type Tab struct {
	Kind   shape.Kind
	Label  string
	Count  int
	Active bool
}

// TableView is the visible page of the active table
type TableView struct {
	Kind      shape.Kind
	Columns   []string
	Rows      []table.Row
	Page      int
	PageCount int
	Filter    string
	Total     int
	Selected  int
}

// ViewModel is a snapshot of everything a front end renders
type ViewModel struct {
	Loaded   bool
	Geometry string
	Summary  string
	Info     string
	Mode     ViewMode

	Tabs  []Tab
	Table TableView

	BulkName     string
	BulkMeshSize string
	BulkEnabled  bool

	Parameters    engine.MeshParameters
	Granularities []engine.Granularity

	Busy        bool
	CanGenerate bool
	CanDownload bool
	CanSave     bool
	MeshName    string

	Dialog *Dialog
	Notice string
}

// ViewModel builds the render snapshot
func (c *Controller) ViewModel() ViewModel {
	vm := ViewModel{
		Loaded:        c.shape != nil,
		Mode:          c.mode,
		Parameters:    c.params,
		Granularities: engine.Granularities,
		Busy:          c.busy,
		Dialog:        c.dialog,
		Notice:        c.notice,
	}
	if c.shape == nil {
		return vm
	}

	vm.Geometry = c.shape.Name
	vm.Summary = c.shape.Summary()
	vm.Info = c.Info()
	for _, kind := range shape.Kinds {
		vm.Tabs = append(vm.Tabs, Tab{
			Kind:   kind,
			Label:  kind.Label(),
			Count:  c.shape.Count(kind),
			Active: kind == c.active,
		})
	}

	t := c.tables[c.active]
	page := t.ClampPage(c.pages[c.active])
	vm.Table = TableView{
		Kind:      c.active,
		Columns:   Columns,
		Rows:      t.Page(page),
		Page:      page,
		PageCount: t.PageCount(),
		Filter:    t.Filter(),
		Total:     t.Len(),
		Selected:  len(t.Selected()),
	}

	vm.BulkName, vm.BulkMeshSize = c.bulkName, c.bulkMeshSize
	vm.BulkEnabled = !c.busy && vm.Table.Selected > 0
	vm.CanGenerate = !c.busy
	vm.CanDownload = !c.busy && c.mesh != nil
	vm.CanSave = c.store != nil
	if c.mesh != nil {
		vm.MeshName = c.mesh.Name
	}
	return vm
}
