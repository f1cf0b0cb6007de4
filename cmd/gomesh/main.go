package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/philipparndt/gomesh/internal/config"
	"github.com/philipparndt/gomesh/internal/metrics"
	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gomesh",
	Short: "Prepare CAD geometry for finite element meshing",
	Long: `gomesh loads STEP and BREP geometry through netgen, lets you name solids,
faces and edges and set local mesh sizes, and generates netgen volume meshes.
Run "gomesh serve" for the browser front end.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./gomesh.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("python", "python3", "Python interpreter with the netgen package")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for uploads, meshes and saved annotations")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addMeshFlags registers the global meshing settings
func addMeshFlags(fs *pflag.FlagSet) {
	def := engine.DefaultParameters()
	fs.String("granularity", string(def.Granularity), "preset: very_coarse, coarse, moderate, fine, very_fine")
	fs.Float64("maxh", 0, "maximum mesh size (default unlimited)")
	fs.Float64("curvaturesafety", def.CurvatureSafety, "mesh size is about the curvature radius divided by this factor")
	fs.Float64("segmentsperedge", def.SegmentsPerEdge, "minimum segments per edge, 0 disables")
	fs.Float64("grading", def.Grading, "mesh grading between 0 and 1")
	fs.Float64("closeedgefac", def.CloseEdgeFac, "refinement factor for close edges, 0 disables")
	fs.Int("dim", def.Dim, "mesh dimension, 2 or 3")
	fs.String("exterior", string(def.Exterior.Shape), "exterior domain: none, box, sphere")
	fs.Float64("exterior-factor", def.Exterior.Factor, "exterior domain diameter relative to the geometry size")
}

// setup loads the configuration and creates the logger
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(os.Stderr, cfg.Verbose)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}
	return cfg, logger, nil
}

// newEngine creates the netgen engine, counted by m when not nil
func newEngine(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (engine.Engine, error) {
	if err := os.MkdirAll(cfg.WorkDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	var e engine.Engine = engine.NewNetgen(cfg.Python, cfg.WorkDir(), logger)
	if m != nil {
		e = metrics.InstrumentEngine(e, m)
	}
	return e, nil
}
