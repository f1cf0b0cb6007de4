package app

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/internal/table"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// mainUI holds the widgets of the loaded-geometry screen
type mainUI struct {
	app     *App
	root    fyne.CanvasObject
	syncing bool

	granularity    *widget.Select
	maxh           *widget.Entry
	curvature      *widget.Entry
	segments       *widget.Entry
	grading        *widget.Slider
	gradingLabel   *widget.Label
	closeEdge      *widget.Entry
	dim            *widget.Select
	exterior       *widget.Select
	exteriorFactor *widget.Entry

	tabs         map[shape.Kind]*widget.Button
	table        *widget.Table
	rows         []table.Row
	kind         shape.Kind
	page         int
	filter       *widget.Entry
	selectAll    *widget.Button
	pageLabel    *widget.Label
	prev, next   *widget.Button
	bulkName     *widget.Entry
	bulkMeshSize *widget.Entry

	geoMode  *widget.Button
	meshMode *widget.Button
	info     *widget.Label

	generate *widget.Button
	saveMesh *widget.Button
	save     *widget.Button
	notice   *widget.Label
	progress *widget.ProgressBarInfinite
}

func (a *App) welcomeScreen() fyne.CanvasObject {
	welcomeLabel := widget.NewLabel("Welcome to the Meshing App!")
	welcomeLabel.TextStyle = fyne.TextStyle{Bold: true}

	instructionLabel := widget.NewLabel("Open a geometry file to get started. Supported formats: step (*.step, *.stp), brep (*.brep)")

	openButton := widget.NewButton("Open Geometry", a.showOpenDialog)
	openButton.Importance = widget.HighImportance

	return container.NewVBox(
		layout.NewSpacer(),
		container.NewCenter(welcomeLabel),
		container.NewCenter(instructionLabel),
		layout.NewSpacer(),
		container.NewCenter(openButton),
		layout.NewSpacer(),
	)
}

func (a *App) buildMainUI() *mainUI {
	u := &mainUI{app: a, tabs: make(map[shape.Kind]*widget.Button)}

	settings := u.buildSettings()
	tables := u.buildTables()
	viewerPane := u.buildViewer()
	actions := u.buildActions()

	left := container.NewVScroll(container.NewVBox(settings, widget.NewSeparator(), tables))
	left.SetMinSize(fyne.NewSize(420, 0))

	split := container.NewHSplit(left, viewerPane)
	split.Offset = 0.35

	u.root = container.NewBorder(nil, actions, nil, nil, split)
	return u
}

// paramEntry applies a global setting when the entry is submitted
func (u *mainUI) paramEntry(field, placeholder string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(placeholder)
	e.OnSubmitted = func(value string) {
		u.app.do(u.app.ctrl.SetParameter(field, value))
	}
	return e
}

// paramSelect applies a global setting when the choice changes
func (u *mainUI) paramSelect(field string, options []string) *widget.Select {
	return widget.NewSelect(options, func(value string) {
		if u.syncing {
			return
		}
		u.app.do(u.app.ctrl.SetParameter(field, value))
	})
}

func (u *mainUI) buildSettings() fyne.CanvasObject {
	var granularities []string
	for _, g := range engine.Granularities {
		granularities = append(granularities, string(g))
	}
	u.granularity = u.paramSelect("granularity", granularities)
	u.maxh = u.paramEntry("maxh", "unlimited")
	u.curvature = u.paramEntry("curvaturesafety", "")
	u.segments = u.paramEntry("segmentsperedge", "disabled")
	u.closeEdge = u.paramEntry("closeedgefac", "disabled")
	u.dim = u.paramSelect("dim", []string{"3", "2"})
	u.exterior = u.paramSelect("exterior", []string{
		string(engine.ExteriorNone), string(engine.ExteriorBox), string(engine.ExteriorSphere),
	})
	u.exteriorFactor = u.paramEntry("exteriorfactor", "")

	u.gradingLabel = widget.NewLabel("")
	u.grading = widget.NewSlider(0.01, 0.99)
	u.grading.Step = 0.01
	u.grading.OnChanged = func(v float64) {
		u.gradingLabel.SetText(strconv.FormatFloat(v, 'g', -1, 64))
	}
	u.grading.OnChangeEnded = func(v float64) {
		if u.syncing {
			return
		}
		u.app.do(u.app.ctrl.SetParameter("grading", strconv.FormatFloat(v, 'f', 2, 64)))
	}

	form := widget.NewForm(
		widget.NewFormItem("Granularity", u.granularity),
		widget.NewFormItem("Maxh", u.maxh),
		widget.NewFormItem("Curvature Safety", u.curvature),
		widget.NewFormItem("Segments per Edge", u.segments),
		widget.NewFormItem("Grading", container.NewBorder(nil, nil, nil, u.gradingLabel, u.grading)),
		widget.NewFormItem("Close Edge Factor", u.closeEdge),
		widget.NewFormItem("Dimension", u.dim),
		widget.NewFormItem("Exterior Domain", u.exterior),
		widget.NewFormItem("Diameter (times geo size)", u.exteriorFactor),
	)
	form.Items[1].HintText = "Maximum mesh size, press enter to apply"
	form.Items[3].HintText = "Leave empty to disable"

	title := widget.NewLabel("Global Meshing Settings")
	title.TextStyle = fyne.TextStyle{Bold: true}
	return container.NewVBox(title, form)
}

func (u *mainUI) buildTables() fyne.CanvasObject {
	ctrl := u.app.ctrl

	var tabs []fyne.CanvasObject
	for _, kind := range shape.Kinds {
		b := widget.NewButton(kind.Label(), func() {
			u.app.do(ctrl.SetActiveKind(kind))
		})
		u.tabs[kind] = b
		tabs = append(tabs, b)
	}

	u.table = widget.NewTable(
		func() (int, int) { return len(u.rows), len(controller.Columns) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row < 0 || id.Row >= len(u.rows) {
				label.SetText("")
				return
			}
			row := u.rows[id.Row]
			label.TextStyle = fyne.TextStyle{Bold: row.Selected}
			label.Importance = widget.MediumImportance
			if row.Selected {
				label.Importance = widget.HighImportance
			}
			label.SetText(cellText(row, id.Col))
		})
	u.table.ShowHeaderRow = true
	u.table.CreateHeader = func() fyne.CanvasObject { return widget.NewLabel("") }
	u.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(controller.Columns) {
			obj.(*widget.Label).SetText(controller.Columns[id.Col])
		}
	}
	u.table.SetColumnWidth(0, 60)
	u.table.SetColumnWidth(1, 160)
	u.table.SetColumnWidth(2, 80)
	u.table.SetColumnWidth(3, 70)
	u.table.OnSelected = func(id widget.TableCellID) {
		u.table.UnselectAll()
		if id.Row < 0 || id.Row >= len(u.rows) {
			return
		}
		row := u.rows[id.Row]
		if id.Col == 3 {
			u.app.do(ctrl.SetVisible(u.kind, row.Index, !row.Visible))
			return
		}
		u.app.do(ctrl.ClickRow(u.kind, row.Index, currentModifiers()))
	}

	u.filter = widget.NewEntry()
	u.filter.SetPlaceHolder("Filter by name")
	u.filter.OnChanged = func(text string) {
		if u.syncing {
			return
		}
		u.app.do(ctrl.SetFilter(u.kind, text))
	}
	u.selectAll = widget.NewButton("Select all", func() {
		u.app.do(ctrl.SelectAll(u.kind))
	})

	u.pageLabel = widget.NewLabel("")
	u.prev = widget.NewButton("<", func() {
		u.app.do(ctrl.SetPage(u.kind, u.page-1))
	})
	u.next = widget.NewButton(">", func() {
		u.app.do(ctrl.SetPage(u.kind, u.page+1))
	})

	u.bulkName = widget.NewEntry()
	u.bulkName.SetPlaceHolder("Name")
	u.bulkName.OnSubmitted = func(v string) {
		u.app.do(ctrl.SetBulkName(v))
	}
	u.bulkMeshSize = widget.NewEntry()
	u.bulkMeshSize.SetPlaceHolder("Maxh")
	u.bulkMeshSize.OnSubmitted = func(v string) {
		u.app.do(ctrl.SetBulkMeshSize(v))
	}

	tableBox := container.NewGridWrap(fyne.NewSize(400, 420), u.table)
	bulk := widget.NewForm(
		widget.NewFormItem("Name", u.bulkName),
		widget.NewFormItem("Maxh", u.bulkMeshSize),
	)

	return container.NewVBox(
		container.NewHBox(tabs...),
		container.NewBorder(nil, nil, nil, u.selectAll, u.filter),
		tableBox,
		container.NewHBox(u.prev, u.pageLabel, u.next),
		widget.NewLabel("Change for all selected"),
		bulk,
	)
}

func (u *mainUI) buildViewer() fyne.CanvasObject {
	ctrl := u.app.ctrl
	view := u.app.view

	u.geoMode = widget.NewButton("Geometry", func() {
		u.app.do(ctrl.SetViewMode(controller.ModeGeometry))
	})
	u.meshMode = widget.NewButton("Mesh", func() {
		u.app.do(ctrl.SetViewMode(controller.ModeMesh))
	})
	zoomIn := widget.NewButton("+", func() {
		view.View().Zoom(-0.2)
		view.Redraw()
	})
	zoomOut := widget.NewButton("-", func() {
		view.View().Zoom(0.25)
		view.Redraw()
	})
	reset := widget.NewButton("Reset view", func() {
		view.View().ResetCamera()
		view.Redraw()
	})

	u.info = widget.NewLabel("")
	top := container.NewHBox(u.geoMode, u.meshMode, layout.NewSpacer(), zoomIn, zoomOut, reset)
	return container.NewBorder(top, u.info, nil, nil, view)
}

func (u *mainUI) buildActions() fyne.CanvasObject {
	a := u.app
	restart := widget.NewButton("Restart", func() {
		a.do(a.ctrl.Restart())
	})
	u.generate = widget.NewButton("Generate Mesh", a.generateMesh)
	u.generate.Importance = widget.HighImportance
	u.saveMesh = widget.NewButton("Download Mesh", a.showSaveMeshDialog)
	u.save = widget.NewButton("Save", func() {
		a.do(a.ctrl.Save())
	})
	export := widget.NewButton("Export", a.showExportDialog)
	imp := widget.NewButton("Import", a.showImportDialog)

	u.notice = widget.NewLabel("")
	u.progress = widget.NewProgressBarInfinite()
	u.progress.Hide()

	return container.NewHBox(restart, export, imp, u.notice, layout.NewSpacer(),
		u.progress, u.generate, u.saveMesh, u.save)
}

// update copies the view model into the widgets
func (u *mainUI) update(vm controller.ViewModel) {
	u.syncing = true
	defer func() { u.syncing = false }()

	p := vm.Parameters
	u.granularity.SetSelected(string(p.Granularity))
	setText(u.maxh, shape.FormatMeshSize(p.MaxH))
	setText(u.curvature, formatFloat(p.CurvatureSafety))
	setText(u.segments, formatOptional(p.SegmentsPerEdge))
	setText(u.closeEdge, formatOptional(p.CloseEdgeFac))
	u.grading.SetValue(p.Grading)
	u.gradingLabel.SetText(formatFloat(p.Grading))
	u.dim.SetSelected(strconv.Itoa(p.Dim))
	u.exterior.SetSelected(string(p.Exterior.Shape))
	setText(u.exteriorFactor, formatFloat(p.Exterior.Factor))
	if p.Exterior.Enabled() {
		u.exteriorFactor.Enable()
	} else {
		u.exteriorFactor.Disable()
	}

	for _, tab := range vm.Tabs {
		b := u.tabs[tab.Kind]
		b.SetText(fmt.Sprintf("%s (%d)", tab.Label, tab.Count))
		b.Importance = widget.MediumImportance
		if tab.Active {
			b.Importance = widget.HighImportance
		}
		b.Refresh()
	}

	tv := vm.Table
	u.kind = tv.Kind
	u.page = tv.Page
	u.rows = tv.Rows
	u.table.Refresh()
	setText(u.filter, tv.Filter)
	u.pageLabel.SetText(fmt.Sprintf("%d / %d (%d rows, %d selected)", tv.Page+1, max(tv.PageCount, 1), tv.Total, tv.Selected))
	enable(u.prev, tv.Page > 0)
	enable(u.next, tv.Page+1 < tv.PageCount)

	setText(u.bulkName, vm.BulkName)
	setText(u.bulkMeshSize, vm.BulkMeshSize)
	enable(u.bulkName, vm.BulkEnabled)
	enable(u.bulkMeshSize, vm.BulkEnabled)

	u.geoMode.Importance = widget.MediumImportance
	u.meshMode.Importance = widget.MediumImportance
	if vm.Mode == controller.ModeMesh {
		u.meshMode.Importance = widget.HighImportance
	} else {
		u.geoMode.Importance = widget.HighImportance
	}
	u.geoMode.Refresh()
	enable(u.meshMode, vm.MeshName != "")
	u.info.SetText(vm.Info)

	enable(u.generate, vm.CanGenerate)
	enable(u.saveMesh, vm.CanDownload)
	enable(u.save, vm.CanSave)
	u.notice.SetText(vm.Notice)
	if vm.Busy {
		u.progress.Show()
		u.progress.Start()
	} else {
		u.progress.Stop()
		u.progress.Hide()
	}
}

func cellText(row table.Row, col int) string {
	switch col {
	case 0:
		return strconv.Itoa(row.Index)
	case 1:
		return row.Name
	case 2:
		return row.MeshSizeText()
	default:
		if row.Visible {
			return "yes"
		}
		return "no"
	}
}

func currentModifiers() selection.Modifiers {
	var mods selection.Modifiers
	if drv, ok := fyne.CurrentApp().Driver().(desktop.Driver); ok {
		keys := drv.CurrentKeyModifiers()
		mods.Ctrl = keys&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0
		mods.Shift = keys&fyne.KeyModifierShift != 0
	}
	return mods
}

// setText leaves entries alone that already show the value so the cursor
// does not jump while typing
func setText(e *widget.Entry, text string) {
	if e.Text != text {
		e.SetText(text)
	}
}

type disableable interface {
	Enable()
	Disable()
}

func enable(w disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v float64) string {
	if v <= 0 {
		return ""
	}
	return formatFloat(v)
}
