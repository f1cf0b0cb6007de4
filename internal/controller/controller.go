// Package controller owns the state of one meshing session: the loaded
// shape, its three tables, the selection, the active tab, the view mode and
// the last generated mesh. Front ends forward user events to it and render
// its ViewModel.
//
// A Controller is not safe for concurrent use. The web front end holds a
// per-session lock around every call; the desktop front end calls it from
// the UI goroutine only.
package controller

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/philipparndt/gomesh/internal/projector"
	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/internal/store"
	"github.com/philipparndt/gomesh/internal/table"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/stl"
)

// Texts of the dialog shown for files the engine cannot read
const (
	UploadErrorTitle   = "Error in Geometry Upload"
	UploadErrorMessage = "Please upload a valid geometry file"
	MeshErrorTitle     = "Error"
)

var (
	// ErrBusy is returned while a mesh is being generated
	ErrBusy = errors.New("mesh generation in progress")

	// ErrNoGeometry is returned by operations that need a loaded shape
	ErrNoGeometry = errors.New("no geometry loaded")

	// ErrNoMesh is returned when no mesh was generated yet
	ErrNoMesh = errors.New("no mesh generated")
)

// Viewer displays the geometry or the mesh. *viewer.View implements it.
type Viewer interface {
	ShowGeometry(s *shape.Shape, faces, edges []color.NRGBA)
	ShowMesh(surface *stl.Model)
	ShowGeometryMode()
	SetInfo(text string)
	Clear()
}

// ViewMode selects what the viewer shows
type ViewMode string

const (
	ModeGeometry ViewMode = "geo"
	ModeMesh     ViewMode = "mesh"
)

// Dialog is a blocking message the front end shows until dismissed
type Dialog struct {
	Title   string
	Message string
}

// Options configures a controller
type Options struct {
	Engine engine.Engine
	Viewer Viewer
	// Store persists annotations; nil disables saving and auto-loading
	Store *store.Store
	// WorkDir receives uploaded files; the system temp dir when empty
	WorkDir     string
	RowsPerPage int
	Parameters  engine.MeshParameters
	Logger      *slog.Logger
}

// Controller is the state of one session
type Controller struct {
	engine      engine.Engine
	viewer      Viewer
	store       *store.Store
	workDir     string
	rowsPerPage int
	logger      *slog.Logger

	shape     *shape.Shape
	uploadDir string
	sel       *selection.Synchronizer
	tables    [3]*table.Table
	pages     [3]int
	active    shape.Kind
	mode      ViewMode
	colors    projector.Colors

	params       engine.MeshParameters
	bulkName     string
	bulkMeshSize string

	mesh   *engine.Mesh
	busy   bool
	dialog *Dialog
	notice string
}

// New creates a controller showing the upload page
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Parameters == (engine.MeshParameters{}) {
		opts.Parameters = engine.DefaultParameters()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	c := &Controller{
		engine:      opts.Engine,
		viewer:      opts.Viewer,
		store:       opts.Store,
		workDir:     opts.WorkDir,
		rowsPerPage: opts.RowsPerPage,
		logger:      opts.Logger,
		sel:         selection.NewSynchronizer(),
		active:      shape.Face,
		mode:        ModeGeometry,
		params:      opts.Parameters,
	}
	c.sel.OnChange(c.selectionChanged)
	return c
}

// selectionChanged keeps a single kind selected and resets the bulk inputs
func (c *Controller) selectionChanged(kind shape.Kind) {
	for _, other := range shape.Kinds {
		if other != kind {
			c.sel.Discard(other)
		}
	}
	c.bulkName, c.bulkMeshSize = "", ""
	c.markStale()
}

// Shape returns the loaded shape, nil on the upload page
func (c *Controller) Shape() *shape.Shape {
	return c.shape
}

// Loaded reports whether a geometry is loaded
func (c *Controller) Loaded() bool {
	return c.shape != nil
}

// Busy reports whether a mesh is being generated
func (c *Controller) Busy() bool {
	return c.busy
}

// Table returns the table of a kind, nil without geometry
func (c *Controller) Table(kind shape.Kind) *table.Table {
	return c.tables[kind]
}

// Selected returns the selected indices of a kind
func (c *Controller) Selected(kind shape.Kind) []int {
	return c.sel.Selected(kind)
}

// Colors returns the color assignment last pushed to the viewer
func (c *Controller) Colors() projector.Colors {
	return c.colors
}

// Dialog returns the pending dialog, if any
func (c *Controller) Dialog() *Dialog {
	return c.dialog
}

// DismissDialog closes the pending dialog
func (c *Controller) DismissDialog() {
	c.dialog = nil
}

// Notice returns the last status message
func (c *Controller) Notice() string {
	return c.notice
}

// Upload stores an uploaded file below the work dir and loads it. Files the
// engine rejects open the upload error dialog and leave the session as it
// was.
func (c *Controller) Upload(ctx context.Context, filename string, r io.Reader) error {
	if c.busy {
		return ErrBusy
	}
	filename = filepath.Base(filename)
	if err := engine.CheckExtension(filename); err != nil {
		c.uploadFailed(err)
		return err
	}

	dir := filepath.Join(c.workDir, "upload-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := writeFile(path, r); err != nil {
		os.RemoveAll(dir)
		return err
	}

	s, err := c.engine.Load(ctx, path)
	if err != nil {
		os.RemoveAll(dir)
		if engine.IsInvalidGeometry(err) {
			c.uploadFailed(err)
		}
		return err
	}
	c.adopt(s, dir)
	return nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// RejectUpload opens the upload error dialog for a request that carried no
// usable file
func (c *Controller) RejectUpload(err error) {
	c.uploadFailed(err)
}

func (c *Controller) uploadFailed(err error) {
	c.logger.Warn("geometry upload rejected", "error", err)
	c.dialog = &Dialog{Title: UploadErrorTitle, Message: UploadErrorMessage}
}

// Open loads a geometry file in place, as the command line and the file
// watcher do. The file is not copied and never removed.
func (c *Controller) Open(ctx context.Context, path string) error {
	if c.busy {
		return ErrBusy
	}
	s, err := c.engine.Load(ctx, path)
	if err != nil {
		if engine.IsInvalidGeometry(err) {
			c.uploadFailed(err)
		}
		return err
	}
	c.adopt(s, "")
	return nil
}

// Reload loads the current geometry file again. Names and mesh sizes come
// from the store when saved, every selection is cleared.
func (c *Controller) Reload(ctx context.Context) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if c.busy {
		return ErrBusy
	}
	s, err := c.engine.Load(ctx, c.shape.Source)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", c.shape.Name, err)
	}
	c.adopt(s, c.uploadDir)
	c.notice = "Reloaded " + s.Name
	return nil
}

// adopt replaces the session state with a freshly loaded shape
func (c *Controller) adopt(s *shape.Shape, uploadDir string) {
	c.discardMesh()
	if c.uploadDir != "" && c.uploadDir != uploadDir {
		os.RemoveAll(c.uploadDir)
	}
	c.uploadDir = uploadDir

	c.notice = ""
	if c.store != nil && s.Digest != "" {
		rec, err := c.store.Load(s.Digest)
		switch {
		case err == nil:
			skipped := s.Apply(rec.Annotations)
			c.notice = fmt.Sprintf("Loaded %d saved annotations", rec.Annotations.Len()-skipped)
		case !errors.Is(err, store.ErrNotFound):
			c.logger.Warn("failed to load saved annotations", "geometry", s.Name, "error", err)
		}
	}

	c.shape = s
	c.sel.Reset(s)
	for _, kind := range shape.Kinds {
		c.tables[kind] = table.New(kind, s, c.sel, c.rowsPerPage)
		c.pages[kind] = 0
	}
	c.active = shape.Face
	c.mode = ModeGeometry
	c.bulkName, c.bulkMeshSize = "", ""
	c.dialog = nil

	c.logger.Info("geometry loaded", "name", s.Name, "summary", s.Summary(), "bounds", s.Bounds.String())
	c.viewer.ShowGeometryMode()
	c.refresh()
	c.viewer.SetInfo(c.Info())
}

// Restart discards the geometry and returns to the upload page
func (c *Controller) Restart() error {
	if c.busy {
		return ErrBusy
	}
	c.discardMesh()
	if c.uploadDir != "" {
		os.RemoveAll(c.uploadDir)
		c.uploadDir = ""
	}
	c.shape = nil
	c.sel.Reset(nil)
	c.tables = [3]*table.Table{}
	c.pages = [3]int{}
	c.colors = projector.Colors{}
	c.active = shape.Face
	c.mode = ModeGeometry
	c.bulkName, c.bulkMeshSize = "", ""
	c.dialog = nil
	c.notice = ""
	c.viewer.Clear()
	return nil
}

// Close releases the files of the session
func (c *Controller) Close() {
	c.discardMesh()
	if c.uploadDir != "" {
		os.RemoveAll(c.uploadDir)
		c.uploadDir = ""
	}
}

func (c *Controller) discardMesh() {
	if c.mesh == nil {
		return
	}
	if err := c.mesh.Close(); err != nil {
		c.logger.Warn("failed to remove mesh files", "path", c.mesh.Path, "error", err)
	}
	c.mesh = nil
}

func (c *Controller) markStale() {
	for _, t := range c.tables {
		if t != nil {
			t.MarkStale()
		}
	}
}

func (c *Controller) stale() bool {
	for _, t := range c.tables {
		if t != nil && t.Stale() {
			return true
		}
	}
	return false
}

// refresh recomputes the colors after any change and pushes them to the
// viewer. In mesh mode the push waits until the geometry is shown again.
func (c *Controller) refresh() {
	if c.shape == nil || c.mode != ModeGeometry || !c.stale() {
		return
	}
	st := projector.State{Active: c.active}
	for _, kind := range shape.Kinds {
		t := c.tables[kind]
		visible := make([]bool, t.Len())
		for i := range visible {
			visible[i] = t.IsVisible(i)
		}
		st.Visible[kind] = visible
		st.Selected[kind] = c.sel.Selected(kind)
	}
	c.colors = projector.Project(c.shape, st)
	c.viewer.ShowGeometry(c.shape, toNRGBA(c.colors.Faces), toNRGBA(c.colors.Edges))
	for _, t := range c.tables {
		t.MarkFresh()
	}
}

func toNRGBA(colors []projector.Color) []color.NRGBA {
	out := make([]color.NRGBA, len(colors))
	for i, col := range colors {
		out[i] = col.NRGBA()
	}
	return out
}

// Info returns the line shown below the viewer
func (c *Controller) Info() string {
	switch {
	case c.shape == nil:
		return ""
	case c.mode == ModeMesh && c.mesh != nil:
		return "Mesh: " + c.mesh.Stats.String()
	default:
		return "Boundingbox: " + c.shape.Bounds.String()
	}
}
