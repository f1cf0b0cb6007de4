// Package web is the browser front end: server-rendered pages that are
// patched live over server-sent events, one controller per browser session.
package web

import (
	"context"
	"crypto/rand"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/metrics"
	"github.com/philipparndt/gomesh/internal/store"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/viewer"
	"github.com/philipparndt/gomesh/pkg/watcher"
)

//go:embed static/*
var staticFS embed.FS

const (
	sessionIdle   = 2 * time.Hour
	sweepInterval = 10 * time.Minute
)

// Config holds configuration for the web server
type Config struct {
	Addr          string
	Engine        engine.Engine
	Store         *store.Store
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	SessionSecret string
	// SecureCookies marks the session cookie Secure; only for TLS deployments
	SecureCookies bool
	MaxUploadMB   int64
	RowsPerPage   int
	ViewWidth     int
	ViewHeight    int
	Parameters    engine.MeshParameters
	WorkDir       string

	// Geometry is opened in every new session when set
	Geometry string
	// Watch reloads Geometry in all sessions when the file changes
	Watch bool
}

// Server serves the browser front end
type Server struct {
	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	registry  *registry
	maxUpload int64
}

// NewServer creates a server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 200
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to create session key: %w", err)
		}
	}
	cookies := sessions.NewCookieStore(secret)
	cookies.MaxAge(86400)
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode
	cookies.Options.Secure = cfg.SecureCookies

	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		maxUpload: cfg.MaxUploadMB << 20,
	}
	s.registry = newRegistry(cookies, cfg.Metrics, s.newSession)
	return s, nil
}

// newSession builds the controller and view of a new browser session
func (s *Server) newSession(id string) *Session {
	view := viewer.NewView(s.cfg.ViewWidth, s.cfg.ViewHeight)
	ctrl := controller.New(controller.Options{
		Engine:      s.cfg.Engine,
		Viewer:      view,
		Store:       s.cfg.Store,
		WorkDir:     s.cfg.WorkDir,
		RowsPerPage: s.cfg.RowsPerPage,
		Parameters:  s.cfg.Parameters,
		Logger:      s.logger.With("session", id),
	})
	if s.cfg.Geometry != "" {
		if err := ctrl.Open(context.Background(), s.cfg.Geometry); err != nil {
			s.logger.Error("failed to open geometry", "path", s.cfg.Geometry, "error", err)
		}
	}
	return &Session{ID: id, ctrl: ctrl, view: view, notify: newNotifier()}
}

// Handler returns the router with all routes
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5, "text/html", "text/css", "application/yaml"),
	)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/", s.page)
	r.Get("/updates", s.updates)
	r.Post("/upload", s.upload)
	r.Post("/restart", s.action(s.restart))
	r.Post("/reload", s.action(s.reload))
	r.Post("/dialog/dismiss", s.action(s.dismissDialog))
	r.Post("/tab/{kind}", s.action(s.setTab))

	r.Route("/rows/{kind}/{index}", func(r chi.Router) {
		r.Post("/click", s.action(s.clickRow))
		r.Post("/name", s.action(s.setName))
		r.Post("/maxh", s.action(s.setMeshSize))
		r.Post("/visible", s.action(s.setVisible))
	})
	r.Route("/tables/{kind}", func(r chi.Router) {
		r.Post("/select-all", s.action(s.selectAll))
		r.Post("/filter", s.action(s.setFilter))
		r.Post("/page/{page}", s.action(s.setPage))
	})
	r.Post("/bulk/name", s.action(s.bulkName))
	r.Post("/bulk/maxh", s.action(s.bulkMeshSize))
	r.Post("/parameters/{field}", s.action(s.setParameter))

	r.Get("/viewer.png", s.frame)
	r.Post("/viewer/click", s.action(s.viewerClick))
	r.Post("/viewer/zoom/{dir}", s.action(s.zoom))
	r.Post("/viewer/reset", s.action(s.resetCamera))
	r.Post("/viewer/mode/{mode}", s.action(s.setViewMode))

	r.Post("/mesh/generate", s.generateMesh)
	r.Get("/mesh/download", s.download)

	r.Post("/annotations/save", s.action(s.saveAnnotations))
	r.Get("/annotations/export", s.exportAnnotations)
	r.Post("/annotations/import", s.importAnnotations)
	return r
}

// Serve runs the server until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting web server", "addr", s.cfg.Addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: middleware.Logger(s.Handler()),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch && s.cfg.Geometry != "" {
		fw, err := watcher.New(200*time.Millisecond, s.logger)
		if err != nil {
			return err
		}
		if err := fw.Watch([]string{s.cfg.Geometry}, s.reloadAll); err != nil {
			fw.Close()
			return err
		}
		eg.Go(func() error {
			return fw.Run(egctx)
		})
	}

	eg.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-ticker.C:
				if n := s.registry.sweep(sessionIdle); n > 0 {
					s.logger.Debug("expired sessions", "count", n)
				}
			}
		}
	})

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down web server")
		err := srv.Shutdown(shutdownCtx)
		s.registry.closeAll()
		return err
	})

	return eg.Wait()
}

// reloadAll reloads the watched geometry in every session showing it
func (s *Server) reloadAll(path string) {
	s.registry.each(func(sess *Session) {
		sess.Lock()
		sh := sess.ctrl.Shape()
		var err error
		if sh != nil && samePath(sh.Source, path) {
			err = sess.ctrl.Reload(context.Background())
		}
		sess.Unlock()
		if err != nil {
			s.logger.Warn("reload failed", "session", sess.ID, "path", path, "error", err)
			return
		}
		sess.notify.broadcast()
	})
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
