package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gomesh/internal/metrics"
	"github.com/philipparndt/gomesh/internal/store"
	"github.com/philipparndt/gomesh/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Start the browser front end",
	Long: `Serve the meshing app over HTTP. A geometry file given as argument is
opened in every new session; with --watch it is reloaded when it changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	fs := serveCmd.Flags()
	fs.StringP("addr", "a", ":8080", "listen address")
	fs.String("session-secret", "", "cookie signing key (random per start when empty)")
	fs.Bool("secure-cookies", false, "mark the session cookie Secure (serve behind TLS)")
	fs.Int64("max-upload-mb", 200, "maximum upload size in MiB")
	fs.Int("rows-per-page", 15, "table rows per page")
	fs.Int("view-width", 640, "viewer image width")
	fs.Int("view-height", 480, "viewer image height")
	fs.BoolP("watch", "w", false, "reload the geometry file when it changes")
	addMeshFlags(fs)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	eng, err := newEngine(cfg, logger, m)
	if err != nil {
		return err
	}

	st, err := store.Open(store.Config{Path: cfg.StoreDir(), Logger: logger})
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := web.NewServer(web.Config{
		Addr:          cfg.Addr,
		Engine:        eng,
		Store:         st,
		Metrics:       m,
		Logger:        logger,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.SecureCookies,
		MaxUploadMB:   cfg.MaxUploadMB,
		RowsPerPage:   cfg.RowsPerPage,
		ViewWidth:     cfg.ViewWidth,
		ViewHeight:    cfg.ViewHeight,
		Parameters:    cfg.Mesh,
		WorkDir:       cfg.WorkDir(),
		Geometry:      firstArg(args),
		Watch:         cfg.Watch,
	})
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
