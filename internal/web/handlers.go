package web

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// dragThreshold is the pointer travel in pixels that turns a click into a
// camera drag
const dragThreshold = 3

// signals are the datastar signals the page sends with every action
type signals struct {
	Value   string  `json:"value"`
	Checked bool    `json:"checked"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	DragX   float64 `json:"dragx"`
	DragY   float64 `json:"dragy"`
	Ctrl    bool    `json:"ctrl"`
	Shift   bool    `json:"shift"`
}

func (s signals) modifiers() selection.Modifiers {
	return selection.Modifiers{Ctrl: s.Ctrl, Shift: s.Shift}
}

type actionFunc func(r *http.Request, sess *Session, sig signals) error

// session resolves the session or answers with an error
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.registry.get(w, r)
	if err != nil {
		s.logger.Error("failed to resolve session", "error", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// state snapshots the session for rendering. The caller holds the lock.
func (s *Server) state(sess *Session, err error) appState {
	width, height := sess.view.Size()
	st := appState{
		VM:     sess.ctrl.ViewModel(),
		Frame:  sess.touch(),
		Width:  width,
		Height: height,
	}
	if err != nil {
		st.Error = errorText(err)
	}
	return st
}

func errorText(err error) string {
	switch {
	case errors.Is(err, controller.ErrBusy):
		return "Mesh generation in progress"
	case errors.Is(err, controller.ErrNoGeometry):
		return "Upload a geometry first"
	default:
		return err.Error()
	}
}

// action runs fn under the session lock and patches the app with the result
func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}

		// Signals must be read before the SSE stream takes over the response
		var sig signals
		var err error
		if r.ContentLength != 0 {
			if sigErr := datastar.ReadSignals(r, &sig); sigErr != nil {
				err = fmt.Errorf("invalid request: %w", sigErr)
			}
		}

		sse := datastar.NewSSE(w, r)

		sess.Lock()
		if err == nil {
			err = fn(r, sess, sig)
		}
		st := s.state(sess, err)
		sess.Unlock()

		if err != nil {
			s.logger.Debug("action failed", "path", r.URL.Path, "session", sess.ID, "error", err)
		}
		if err := sse.PatchElementTempl(App(st)); err != nil {
			s.logger.Debug("failed to patch app", "error", err)
		}
	}
}

func kindParam(r *http.Request) (shape.Kind, error) {
	return shape.ParseKind(chi.URLParam(r, "kind"))
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func rowParams(r *http.Request) (shape.Kind, int, error) {
	kind, err := kindParam(r)
	if err != nil {
		return 0, 0, err
	}
	index, err := intParam(r, "index")
	return kind, index, err
}

// page renders the full document
func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	st := s.state(sess, nil)
	sess.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(st).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// updates is the long-lived stream that pushes changes made by other
// requests of the same session
func (s *Server) updates(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	pings := sess.notify.subscribe()
	defer sess.notify.unsubscribe(pings)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pings:
			sess.Lock()
			st := s.state(sess, nil)
			sess.Unlock()
			if err := sse.PatchElementTempl(App(st)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// upload takes the multipart field "geometry" and returns to the page
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, formErr := r.FormFile("geometry")

	sess.Lock()
	var err error
	if formErr != nil {
		err = fmt.Errorf("no geometry file in upload: %w", formErr)
		sess.ctrl.RejectUpload(err)
	} else {
		err = sess.ctrl.Upload(r.Context(), header.Filename, file)
		file.Close()
	}
	sess.Unlock()

	if err != nil {
		s.logger.Info("upload failed", "session", sess.ID, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) restart(r *http.Request, sess *Session, _ signals) error {
	return sess.ctrl.Restart()
}

func (s *Server) reload(r *http.Request, sess *Session, _ signals) error {
	return sess.ctrl.Reload(r.Context())
}

func (s *Server) dismissDialog(r *http.Request, sess *Session, _ signals) error {
	sess.ctrl.DismissDialog()
	return nil
}

func (s *Server) setTab(r *http.Request, sess *Session, _ signals) error {
	kind, err := kindParam(r)
	if err != nil {
		return err
	}
	return sess.ctrl.SetActiveKind(kind)
}

func (s *Server) clickRow(r *http.Request, sess *Session, sig signals) error {
	kind, index, err := rowParams(r)
	if err != nil {
		return err
	}
	return sess.ctrl.ClickRow(kind, index, sig.modifiers())
}

func (s *Server) setName(r *http.Request, sess *Session, sig signals) error {
	kind, index, err := rowParams(r)
	if err != nil {
		return err
	}
	return sess.ctrl.SetName(kind, index, sig.Value)
}

func (s *Server) setMeshSize(r *http.Request, sess *Session, sig signals) error {
	kind, index, err := rowParams(r)
	if err != nil {
		return err
	}
	return sess.ctrl.SetMeshSize(kind, index, sig.Value)
}

func (s *Server) setVisible(r *http.Request, sess *Session, sig signals) error {
	kind, index, err := rowParams(r)
	if err != nil {
		return err
	}
	return sess.ctrl.SetVisible(kind, index, sig.Checked)
}

func (s *Server) selectAll(r *http.Request, sess *Session, _ signals) error {
	kind, err := kindParam(r)
	if err != nil {
		return err
	}
	return sess.ctrl.SelectAll(kind)
}

func (s *Server) setFilter(r *http.Request, sess *Session, sig signals) error {
	kind, err := kindParam(r)
	if err != nil {
		return err
	}
	return sess.ctrl.SetFilter(kind, sig.Value)
}

func (s *Server) setPage(r *http.Request, sess *Session, _ signals) error {
	kind, err := kindParam(r)
	if err != nil {
		return err
	}
	page, err := intParam(r, "page")
	if err != nil {
		return err
	}
	return sess.ctrl.SetPage(kind, page)
}

func (s *Server) bulkName(r *http.Request, sess *Session, sig signals) error {
	return sess.ctrl.SetBulkName(sig.Value)
}

func (s *Server) bulkMeshSize(r *http.Request, sess *Session, sig signals) error {
	return sess.ctrl.SetBulkMeshSize(sig.Value)
}

func (s *Server) setParameter(r *http.Request, sess *Session, sig signals) error {
	return sess.ctrl.SetParameter(chi.URLParam(r, "field"), sig.Value)
}

// viewerClick turns a pointer release on the image into a pick, or into a
// camera rotation when the pointer moved since it was pressed
func (s *Server) viewerClick(r *http.Request, sess *Session, sig signals) error {
	dx, dy := sig.X-sig.DragX, sig.Y-sig.DragY
	moved := math.Abs(dx)+math.Abs(dy) > dragThreshold
	if moved {
		sess.view.Rotate(dy*0.01, -dx*0.01)
	}

	pick := sess.view.Pick(int(sig.X), int(sig.Y))
	pick.DidMove = moved
	pick.Ctrl, pick.Shift = sig.Ctrl, sig.Shift
	return sess.ctrl.HandlePick(pick)
}

func (s *Server) zoom(r *http.Request, sess *Session, _ signals) error {
	switch chi.URLParam(r, "dir") {
	case "in":
		sess.view.Zoom(-0.2)
	case "out":
		sess.view.Zoom(0.25)
	default:
		return fmt.Errorf("unknown zoom direction %q", chi.URLParam(r, "dir"))
	}
	return nil
}

func (s *Server) resetCamera(r *http.Request, sess *Session, _ signals) error {
	sess.view.ResetCamera()
	return nil
}

func (s *Server) setViewMode(r *http.Request, sess *Session, _ signals) error {
	return sess.ctrl.SetViewMode(controller.ViewMode(chi.URLParam(r, "mode")))
}

// frame serves the current viewer image
func (s *Server) frame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	data, err := sess.view.Frame().PNG()
	sess.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// generateMesh runs the engine outside the session lock. The busy state is
// pushed first, the result when the engine returns. Leaving the page
// cancels the run.
func (s *Server) generateMesh(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	sess.Lock()
	job, err := sess.ctrl.StartMesh()
	st := s.state(sess, err)
	sess.Unlock()

	if err := sse.PatchElementTempl(App(st)); err != nil {
		s.logger.Debug("failed to patch app", "error", err)
	}
	if err != nil {
		return
	}
	sess.notify.broadcast()

	mesh, runErr := job.Run(r.Context())

	sess.Lock()
	err = sess.ctrl.CompleteMesh(job, mesh, runErr)
	st = s.state(sess, err)
	sess.Unlock()

	if err != nil {
		s.logger.Warn("mesh generation failed", "session", sess.ID, "error", err)
	}
	_ = sse.PatchElementTempl(App(st))
	sess.notify.broadcast()
}

// download sends the mesh file as an attachment
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	// Open under the lock so a concurrent restart cannot remove the file
	// between lookup and open
	sess.Lock()
	name, path, err := sess.ctrl.MeshFile()
	var file *os.File
	if err == nil {
		file, err = os.Open(path)
	}
	sess.Unlock()
	if err != nil {
		http.Error(w, "no mesh available", http.StatusNotFound)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), file)
}

func (s *Server) saveAnnotations(r *http.Request, sess *Session, _ signals) error {
	return sess.ctrl.Save()
}

// exportAnnotations sends names and mesh sizes as YAML
func (s *Server) exportAnnotations(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	sh := sess.ctrl.Shape()
	if sh == nil {
		http.Error(w, "no geometry loaded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sh.Name+".annotations.yaml"))
	if err := sess.ctrl.ExportAnnotations(w); err != nil {
		s.logger.Error("failed to export annotations", "error", err)
	}
}

// importAnnotations reads the multipart field "annotations"
func (s *Server) importAnnotations(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, _, err := r.FormFile("annotations")
	if err != nil {
		http.Error(w, "no annotations file in upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sess.Lock()
	skipped, err := sess.ctrl.ImportAnnotations(file)
	sess.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if skipped > 0 {
		s.logger.Info("annotations skipped on import", "session", sess.ID, "skipped", skipped)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
