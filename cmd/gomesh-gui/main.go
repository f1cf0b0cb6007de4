package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gomesh/internal/app"
	"github.com/philipparndt/gomesh/internal/config"
	"github.com/philipparndt/gomesh/internal/store"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "gomesh-gui [file]",
	Short:        "Desktop front end for preparing geometry for meshing",
	Version:      version.GetVersion(),
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	fs := rootCmd.Flags()
	fs.StringVarP(&cfgFile, "config", "c", "", "config file (default ./gomesh.yaml)")
	fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.String("python", "python3", "Python interpreter with the netgen package")
	fs.String("data-dir", "", "directory for meshes and saved annotations")
	fs.Int("rows-per-page", 15, "table rows per page")
	fs.BoolP("watch", "w", false, "reload the geometry file when it changes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, cfg.Verbose)

	if err := os.MkdirAll(cfg.WorkDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	st, err := store.Open(store.Config{Path: cfg.StoreDir(), Logger: logger})
	if err != nil {
		return err
	}
	defer st.Close()

	opts := app.Options{
		Engine:      engine.NewNetgen(cfg.Python, cfg.WorkDir(), logger),
		Store:       st,
		Logger:      logger,
		Parameters:  cfg.Mesh,
		RowsPerPage: cfg.RowsPerPage,
		WorkDir:     cfg.WorkDir(),
		Watch:       cfg.Watch,
	}
	if len(args) > 0 {
		opts.Geometry = args[0]
	}
	app.New(opts).Run()
	return nil
}
