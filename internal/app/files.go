package app

import (
	"fmt"
	"io"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

func (a *App) showOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.open(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".step", ".stp", ".brep"}))
	d.Show()
}

// showSaveMeshDialog copies the generated mesh file to a place the user picks
func (a *App) showSaveMeshDialog() {
	name, path, err := a.ctrl.MeshFile()
	if err != nil {
		a.do(err)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		if err := copyFile(writer, path); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save mesh: %w", err), a.window)
		}
	}, a.window)
	d.SetFileName(name)
	d.Show()
}

func copyFile(w io.WriteCloser, path string) error {
	f, err := os.Open(path)
	if err != nil {
		w.Close()
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (a *App) showExportDialog() {
	sh := a.ctrl.Shape()
	if sh == nil {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		err = a.ctrl.ExportAnnotations(writer)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		a.do(err)
	}, a.window)
	d.SetFileName(sh.Name + ".annotations.yaml")
	d.Show()
}

func (a *App) showImportDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		skipped, err := a.ctrl.ImportAnnotations(reader)
		if err == nil && skipped > 0 {
			a.logger.Info("annotations skipped on import", "skipped", skipped)
		}
		a.do(err)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	d.Show()
}
