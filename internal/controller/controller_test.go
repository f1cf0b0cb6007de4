package controller

import (
	"bytes"
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/internal/projector"
	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/internal/store"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/engine/enginetest"
	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/philipparndt/gomesh/pkg/viewer"
)

// recordingViewer remembers what the controller pushed
type recordingViewer struct {
	shape      *shape.Shape
	faces      []color.NRGBA
	edges      []color.NRGBA
	surface    *stl.Model
	info       string
	geometries int
	cleared    int
}

func (v *recordingViewer) ShowGeometry(s *shape.Shape, faces, edges []color.NRGBA) {
	v.shape, v.faces, v.edges = s, faces, edges
	v.geometries++
}

func (v *recordingViewer) ShowMesh(surface *stl.Model) { v.surface = surface }
func (v *recordingViewer) ShowGeometryMode()           { v.surface = nil }
func (v *recordingViewer) SetInfo(text string)         { v.info = text }

func (v *recordingViewer) Clear() {
	*v = recordingViewer{cleared: v.cleared + 1}
}

type fixture struct {
	ctrl   *Controller
	engine *enginetest.Engine
	viewer *recordingViewer
}

func newFixture(t *testing.T, rowsPerPage int, st *store.Store) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{engine: enginetest.New(dir), viewer: &recordingViewer{}}
	f.ctrl = New(Options{
		Engine:      f.engine,
		Viewer:      f.viewer,
		Store:       st,
		WorkDir:     dir,
		RowsPerPage: rowsPerPage,
	})
	t.Cleanup(f.ctrl.Close)
	return f
}

func (f *fixture) upload(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ctrl.Upload(context.Background(), "box.step", strings.NewReader(enginetest.StepContent)))
}

func TestUploadBuildsTables(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)

	vm := f.ctrl.ViewModel()
	assert.True(t, vm.Loaded)
	assert.Equal(t, "box", vm.Geometry)
	assert.Equal(t, shape.Face, vm.Table.Kind)
	assert.Len(t, vm.Table.Rows, 6)
	assert.Equal(t, Columns, vm.Table.Columns)
	require.Len(t, vm.Tabs, 3)
	assert.True(t, vm.Tabs[1].Active)
	assert.Equal(t, 12, vm.Tabs[2].Count)
	assert.Equal(t, "Boundingbox: (0.00,0.00,0.00) - (1.00,1.00,1.00)", vm.Info)
	assert.Equal(t, vm.Info, f.viewer.info)

	require.Len(t, f.viewer.faces, 6)
	assert.Equal(t, projector.Gray.NRGBA(), f.viewer.faces[0])
	assert.Equal(t, projector.EdgeBlack.NRGBA(), f.viewer.edges[0])
}

func TestInvalidUploadShowsDialog(t *testing.T) {
	f := newFixture(t, 0, nil)

	err := f.ctrl.Upload(context.Background(), "junk.step", strings.NewReader("hello"))
	require.Error(t, err)
	assert.True(t, engine.IsInvalidGeometry(err))
	assert.False(t, f.ctrl.Loaded())
	assert.Equal(t, &Dialog{Title: UploadErrorTitle, Message: UploadErrorMessage}, f.ctrl.Dialog())

	f.ctrl.DismissDialog()
	assert.Nil(t, f.ctrl.Dialog())
}

func TestInvalidUploadKeepsLoadedGeometry(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.ClickRow(shape.Face, 1, selection.Modifiers{}))
	before := f.ctrl.Shape()

	err := f.ctrl.Upload(context.Background(), "model.iges", strings.NewReader(enginetest.StepContent))
	assert.ErrorIs(t, err, engine.ErrUnsupportedFormat)
	assert.Same(t, before, f.ctrl.Shape())
	assert.Equal(t, []int{1}, f.ctrl.Selected(shape.Face))
	assert.Equal(t, UploadErrorTitle, f.ctrl.Dialog().Title)
	assert.Equal(t, 1, f.engine.Loads())
}

func TestSelectBulkEditAndMesh(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)

	require.NoError(t, f.ctrl.ClickRow(shape.Face, 2, selection.Modifiers{}))
	require.NoError(t, f.ctrl.ClickRow(shape.Face, 5, selection.Modifiers{Shift: true}))
	assert.Equal(t, []int{2, 3, 4, 5}, f.ctrl.Selected(shape.Face))
	assert.Equal(t, projector.Highlight.NRGBA(), f.viewer.faces[3])
	assert.Equal(t, projector.Gray.NRGBA(), f.viewer.faces[1])

	require.NoError(t, f.ctrl.SetBulkMeshSize("2.0"))
	for i := 0; i < 6; i++ {
		_, size := f.ctrl.Shape().Entity(shape.Face, i)
		if i >= 2 {
			assert.Equal(t, 2.0, size, "face %d", i)
		} else {
			assert.True(t, shape.IsUnbounded(size), "face %d", i)
		}
	}
	_, bulkSize := f.ctrl.BulkInputs()
	assert.Equal(t, "2.0", bulkSize)

	require.NoError(t, f.ctrl.SetParameter("maxh", "2.0"))
	require.NoError(t, f.ctrl.GenerateMesh(context.Background()))
	assert.Equal(t, 1, f.engine.MeshCalls())
	assert.Equal(t, 2.0, f.engine.LastParameters().MaxH)
	assert.Equal(t, 2.0, f.engine.LastParameters().Options()["maxh"])

	vm := f.ctrl.ViewModel()
	assert.Equal(t, ModeMesh, vm.Mode)
	assert.True(t, vm.CanDownload)
	assert.Equal(t, "box.vol", vm.MeshName)
	assert.Equal(t, "Mesh: 4 points, 4 surface elements, 1 volume elements", vm.Info)
	assert.NotNil(t, f.viewer.surface)

	_, size := f.engine.LastShape().Entity(shape.Face, 4)
	assert.Equal(t, 2.0, size)

	name, path, err := f.ctrl.MeshFile()
	require.NoError(t, err)
	assert.Equal(t, "box.vol", name)
	assert.FileExists(t, path)
}

func TestSelectionChangeResetsBulkInputsAndOtherKinds(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)

	require.NoError(t, f.ctrl.ClickRow(shape.Face, 0, selection.Modifiers{}))
	require.NoError(t, f.ctrl.SetBulkName("wall"))
	name, _ := f.ctrl.BulkInputs()
	assert.Equal(t, "wall", name)

	require.NoError(t, f.ctrl.SetActiveKind(shape.Edge))
	require.NoError(t, f.ctrl.ClickRow(shape.Edge, 3, selection.Modifiers{}))
	name, _ = f.ctrl.BulkInputs()
	assert.Empty(t, name)
	assert.Empty(t, f.ctrl.Selected(shape.Face))
	assert.Equal(t, []int{3}, f.ctrl.Selected(shape.Edge))

	faceName, _ := f.ctrl.Shape().Entity(shape.Face, 0)
	assert.Equal(t, "wall", faceName)
}

func TestBulkEditRejectsInvalidSize(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.SelectAll(shape.Face))

	assert.ErrorIs(t, f.ctrl.SetBulkMeshSize("-1"), shape.ErrInvalidMeshSize)
	_, size := f.ctrl.Shape().Entity(shape.Face, 0)
	assert.True(t, shape.IsUnbounded(size))
}

func TestPickRouting(t *testing.T) {
	f := newFixture(t, 5, nil)
	f.upload(t)

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 4}))
	assert.Equal(t, []int{4}, f.ctrl.Selected(shape.Face))

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 1, DidMove: true}))
	assert.Equal(t, []int{4}, f.ctrl.Selected(shape.Face), "drag release is ignored")

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 1, Ctrl: true}))
	assert.Equal(t, []int{4, 1}, f.ctrl.Selected(shape.Face))

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimEdge, Index: 11}))
	assert.Equal(t, shape.Edge, f.ctrl.ActiveKind())
	assert.Equal(t, []int{11}, f.ctrl.Selected(shape.Edge))
	assert.Empty(t, f.ctrl.Selected(shape.Face))
	assert.Equal(t, 2, f.ctrl.Page(shape.Edge), "scrolled to the picked row")
	assert.Equal(t, projector.Highlight.NRGBA(), f.viewer.edges[11])

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimNone, Index: -1}))
	assert.Empty(t, f.ctrl.Selected(shape.Edge))
	anchor, ok := f.ctrl.sel.Anchor(shape.Edge)
	assert.True(t, ok)
	assert.Equal(t, 11, anchor)

	assert.Error(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 6}))
}

func TestFacePickInSolidsTabTogglesSolids(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.SetActiveKind(shape.Solid))

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 2}))
	assert.Equal(t, shape.Solid, f.ctrl.ActiveKind())
	assert.Equal(t, []int{0}, f.ctrl.Selected(shape.Solid))
	for i, c := range f.viewer.faces {
		assert.Equal(t, projector.Highlight.NRGBA(), c, "face %d", i)
	}

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 0}))
	assert.Empty(t, f.ctrl.Selected(shape.Solid))
}

func TestHiddenSolidHidesFaces(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.SetActiveKind(shape.Solid))
	require.NoError(t, f.ctrl.SetVisible(shape.Solid, 0, false))

	for _, c := range f.viewer.faces {
		assert.Equal(t, projector.Transparent.NRGBA(), c)
	}

	require.NoError(t, f.ctrl.SetActiveKind(shape.Face))
	assert.Equal(t, projector.Gray.NRGBA(), f.viewer.faces[0])
}

func TestMeshingFailureShowsDialog(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	f.engine.FailMeshing = "Meshing failed: surface mesh not ok"

	require.NoError(t, f.ctrl.GenerateMesh(context.Background()))
	assert.Equal(t, &Dialog{Title: MeshErrorTitle, Message: "Meshing failed: surface mesh not ok"}, f.ctrl.Dialog())
	assert.Equal(t, ModeGeometry, f.ctrl.ViewMode())
	assert.Nil(t, f.ctrl.Mesh())
	assert.False(t, f.ctrl.ViewModel().CanDownload)
	assert.ErrorIs(t, f.ctrl.SetViewMode(ModeMesh), ErrNoMesh)
}

func TestBusyRejectsSecondTrigger(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)

	job, err := f.ctrl.StartMesh()
	require.NoError(t, err)
	assert.True(t, f.ctrl.ViewModel().Busy)
	assert.False(t, f.ctrl.ViewModel().CanGenerate)

	_, err = f.ctrl.StartMesh()
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, f.ctrl.Restart(), ErrBusy)
	assert.ErrorIs(t, f.ctrl.Upload(context.Background(), "box.step", strings.NewReader(enginetest.StepContent)), ErrBusy)
	assert.ErrorIs(t, f.ctrl.SetName(shape.Face, 0, "x"), ErrBusy)

	mesh, err := job.Run(context.Background())
	require.NoError(t, f.ctrl.CompleteMesh(job, mesh, err))
	assert.False(t, f.ctrl.Busy())
	assert.Equal(t, 1, f.engine.MeshCalls())
}

func TestCanceledMeshIsReturned(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	f.engine.Gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.ctrl.GenerateMesh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.ctrl.Busy())
	assert.Nil(t, f.ctrl.Dialog())
}

func TestViewModeToggle(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.GenerateMesh(context.Background()))

	require.NoError(t, f.ctrl.HandlePick(viewer.Pick{Dim: viewer.DimFace, Index: 0}))
	assert.Empty(t, f.ctrl.Selected(shape.Face), "no picking on the mesh")

	require.NoError(t, f.ctrl.SetViewMode(ModeGeometry))
	assert.Nil(t, f.viewer.surface)
	assert.True(t, strings.HasPrefix(f.viewer.info, "Boundingbox"))

	require.NoError(t, f.ctrl.SetViewMode(ModeMesh))
	assert.NotNil(t, f.viewer.surface)
}

func TestRestartAndReload(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.ClickRow(shape.Face, 3, selection.Modifiers{}))

	require.NoError(t, f.ctrl.Reload(context.Background()))
	assert.Empty(t, f.ctrl.Selected(shape.Face))
	_, ok := f.ctrl.sel.Anchor(shape.Face)
	assert.False(t, ok)
	assert.Equal(t, 2, f.engine.Loads())

	require.NoError(t, f.ctrl.Restart())
	assert.False(t, f.ctrl.ViewModel().Loaded)
	assert.Equal(t, 1, f.viewer.cleared)
	assert.ErrorIs(t, f.ctrl.Reload(context.Background()), ErrNoGeometry)
}

func TestFilterAndPages(t *testing.T) {
	f := newFixture(t, 5, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.SetActiveKind(shape.Edge))
	require.NoError(t, f.ctrl.SetName(shape.Edge, 7, "Inlet ring"))
	require.NoError(t, f.ctrl.SetName(shape.Edge, 9, "outlet"))

	require.NoError(t, f.ctrl.SetPage(shape.Edge, 9))
	assert.Equal(t, 2, f.ctrl.Page(shape.Edge))
	assert.Len(t, f.ctrl.ViewModel().Table.Rows, 2)

	require.NoError(t, f.ctrl.SetFilter(shape.Edge, "LET"))
	vm := f.ctrl.ViewModel()
	assert.Equal(t, 0, vm.Table.Page)
	require.Len(t, vm.Table.Rows, 2)
	assert.Equal(t, 7, vm.Table.Rows[0].Index)

	require.NoError(t, f.ctrl.SelectAll(shape.Edge))
	assert.Equal(t, []int{7, 9}, f.ctrl.Selected(shape.Edge))
}

func TestSaveAndAutoLoadAnnotations(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	f := newFixture(t, 0, st)
	f.upload(t)
	require.NoError(t, f.ctrl.SetName(shape.Face, 0, "inlet"))
	require.NoError(t, f.ctrl.SetMeshSize(shape.Edge, 2, "0.5"))
	require.NoError(t, f.ctrl.Save())
	assert.Equal(t, "Saved 2 annotations", f.ctrl.Notice())

	require.NoError(t, f.ctrl.Restart())
	f.upload(t)

	name, _ := f.ctrl.Shape().Entity(shape.Face, 0)
	assert.Equal(t, "inlet", name)
	_, size := f.ctrl.Shape().Entity(shape.Edge, 2)
	assert.Equal(t, 0.5, size)
	assert.Equal(t, "Loaded 2 saved annotations", f.ctrl.Notice())
}

func TestSaveWithoutStore(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	assert.ErrorIs(t, f.ctrl.Save(), ErrNoStore)
	assert.False(t, f.ctrl.ViewModel().CanSave)
}

func TestExportImportAnnotations(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.upload(t)
	require.NoError(t, f.ctrl.SetName(shape.Solid, 0, "body"))
	require.NoError(t, f.ctrl.SetMeshSize(shape.Face, 5, "0.25"))

	var buf bytes.Buffer
	require.NoError(t, f.ctrl.ExportAnnotations(&buf))
	assert.Contains(t, buf.String(), "body")

	g := newFixture(t, 0, nil)
	g.upload(t)
	skipped, err := g.ctrl.ImportAnnotations(&buf)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	name, _ := g.ctrl.Shape().Entity(shape.Solid, 0)
	assert.Equal(t, "body", name)
	_, size := g.ctrl.Shape().Entity(shape.Face, 5)
	assert.Equal(t, 0.25, size)

	skipped, err = g.ctrl.ImportAnnotations(strings.NewReader("faces:\n  - index: 40\n    name: far\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
}

func TestGranularityPreset(t *testing.T) {
	f := newFixture(t, 0, nil)
	require.NoError(t, f.ctrl.SetGranularity(engine.VeryFine))
	p := f.ctrl.Parameters()
	assert.Equal(t, 5.0, p.CurvatureSafety)
	assert.Equal(t, 3.0, p.SegmentsPerEdge)
	assert.Equal(t, 0.1, p.Grading)

	p.Grading = 0
	assert.ErrorIs(t, f.ctrl.SetParameters(p), engine.ErrInvalidParameters)
	assert.Equal(t, 0.1, f.ctrl.Parameters().Grading)
}

func TestSetParameterFromInputs(t *testing.T) {
	f := newFixture(t, 0, nil)

	require.NoError(t, f.ctrl.SetParameter("maxh", "0.5"))
	require.NoError(t, f.ctrl.SetParameter("segmentsperedge", "2"))
	require.NoError(t, f.ctrl.SetParameter("dim", "2"))
	require.NoError(t, f.ctrl.SetParameter("exterior", "sphere"))
	p := f.ctrl.Parameters()
	assert.Equal(t, 0.5, p.MaxH)
	assert.Equal(t, 2.0, p.SegmentsPerEdge)
	assert.Equal(t, 2, p.Dim)
	assert.True(t, p.Exterior.Enabled())

	require.NoError(t, f.ctrl.SetParameter("maxh", ""))
	require.NoError(t, f.ctrl.SetParameter("segmentsperedge", ""))
	p = f.ctrl.Parameters()
	assert.True(t, shape.IsUnbounded(p.MaxH))
	assert.Zero(t, p.SegmentsPerEdge)

	assert.ErrorIs(t, f.ctrl.SetParameter("grading", "abc"), engine.ErrInvalidParameters)
	assert.ErrorIs(t, f.ctrl.SetParameter("dim", "4"), engine.ErrInvalidParameters)
	assert.ErrorIs(t, f.ctrl.SetParameter("exterior", "cone"), engine.ErrInvalidParameters)
	assert.ErrorIs(t, f.ctrl.SetParameter("color", "red"), engine.ErrInvalidParameters)
	assert.Error(t, f.ctrl.SetParameter("maxh", "-1"))
	assert.Equal(t, 2, f.ctrl.Parameters().Dim)
}
