// Package app is the desktop front end: a fyne window with the same tables,
// settings and viewer as the browser front end, driven by one controller on
// the UI goroutine.
package app

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/store"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/viewer"
	"github.com/philipparndt/gomesh/pkg/watcher"
)

// Options configure the desktop front end
type Options struct {
	Engine      engine.Engine
	Store       *store.Store
	Logger      *slog.Logger
	Parameters  engine.MeshParameters
	RowsPerPage int
	WorkDir     string

	// Geometry is opened on start when set
	Geometry string
	// Watch reloads Geometry when the file changes
	Watch bool
}

// App is the desktop window
type App struct {
	fyne   fyne.App
	window fyne.Window
	ctrl   *controller.Controller
	view   *viewer.Widget
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	ui      *mainUI
	welcome fyne.CanvasObject
	loaded  bool
}

// New creates the window without showing it
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &App{
		fyne:   fyneapp.NewWithID("io.github.philipparndt.gomesh"),
		logger: opts.Logger,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.window = a.fyne.NewWindow("Meshing App")

	view := viewer.NewView(800, 600)
	a.view = viewer.NewWidget(view)
	a.ctrl = controller.New(controller.Options{
		Engine:      opts.Engine,
		Viewer:      view,
		Store:       opts.Store,
		WorkDir:     opts.WorkDir,
		RowsPerPage: opts.RowsPerPage,
		Parameters:  opts.Parameters,
		Logger:      opts.Logger,
	})
	a.view.SetOnPick(func(p viewer.Pick) {
		a.do(a.ctrl.HandlePick(p))
	})

	a.welcome = a.welcomeScreen()
	a.ui = a.buildMainUI()
	a.window.SetContent(a.welcome)
	a.window.Resize(fyne.NewSize(1400, 900))
	a.window.SetOnClosed(func() {
		a.cancel()
		a.ctrl.Close()
	})

	if opts.Geometry != "" {
		a.open(opts.Geometry)
		if opts.Watch {
			a.watch(opts.Geometry)
		}
	}
	return a
}

// Run shows the window and blocks until it is closed
func (a *App) Run() {
	a.window.ShowAndRun()
}

// do renders the controller state after an event and reports its error
func (a *App) do(err error) {
	if err != nil {
		a.logger.Debug("action failed", "error", err)
		dialog.ShowError(err, a.window)
	}
	a.sync()
}

// sync brings every widget up to date with the controller
func (a *App) sync() {
	vm := a.ctrl.ViewModel()

	if vm.Dialog != nil {
		dialog.ShowInformation(vm.Dialog.Title, vm.Dialog.Message, a.window)
		a.ctrl.DismissDialog()
	}

	if vm.Loaded != a.loaded {
		a.loaded = vm.Loaded
		if vm.Loaded {
			a.window.SetContent(a.ui.root)
		} else {
			a.window.SetContent(a.welcome)
		}
	}
	if vm.Loaded {
		a.ui.update(vm)
	}
	a.view.Redraw()
}

// open loads a geometry file. Unreadable files show the upload dialog.
func (a *App) open(path string) {
	err := a.ctrl.Open(a.ctx, path)
	if engine.IsInvalidGeometry(err) {
		err = nil
	}
	a.do(err)
}

// watch reloads the geometry on file changes until the window closes
func (a *App) watch(path string) {
	fw, err := watcher.New(500*time.Millisecond, a.logger)
	if err != nil {
		a.logger.Warn("file watching unavailable", "error", err)
		return
	}
	err = fw.Watch([]string{path}, func(changed string) {
		a.logger.Info("geometry changed", "path", changed)
		fyne.Do(func() {
			if a.ctrl.Busy() {
				return
			}
			a.do(a.ctrl.Reload(a.ctx))
		})
	})
	if err != nil {
		fw.Close()
		a.logger.Warn("file watching unavailable", "error", err)
		return
	}
	go func() {
		if err := fw.Run(a.ctx); err != nil {
			a.logger.Warn("file watcher stopped", "error", err)
		}
	}()
}

// generateMesh runs the engine off the UI goroutine. Closing the window
// cancels the run.
func (a *App) generateMesh() {
	job, err := a.ctrl.StartMesh()
	a.do(err)
	if err != nil {
		return
	}
	go func() {
		mesh, runErr := job.Run(a.ctx)
		fyne.Do(func() {
			a.do(a.ctrl.CompleteMesh(job, mesh, runErr))
		})
	}()
}
