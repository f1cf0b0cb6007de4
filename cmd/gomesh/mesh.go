package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/philipparndt/gomesh/pkg/shape"
)

var meshCmd = &cobra.Command{
	Use:   "mesh [file]",
	Short: "Generate a mesh without a front end",
	Long: `Mesh a STEP or BREP file with the global settings from flags and config,
optionally applying names and local mesh sizes from an annotations file
exported by the front end.`,
	Args: cobra.ExactArgs(1),
	RunE: runMesh,
}

func init() {
	fs := meshCmd.Flags()
	fs.StringP("annotations", "A", "", "YAML annotations file with names and local mesh sizes")
	fs.StringP("output", "o", "", "output mesh file (default <name>.vol in the current directory)")
	addMeshFlags(fs)
	rootCmd.AddCommand(meshCmd)
}

func runMesh(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := eng.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load geometry: %w", err)
	}

	annotations, _ := cmd.Flags().GetString("annotations")
	if annotations != "" {
		skipped, err := applyAnnotations(s, annotations)
		if err != nil {
			return err
		}
		if skipped > 0 {
			logger.Warn("annotations do not match the geometry", "skipped", skipped)
		}
	}

	logger.Info("generating mesh", "geometry", s.Name, "granularity", cfg.Mesh.Granularity, "dim", cfg.Mesh.Dim)
	mesh, err := eng.GenerateMesh(ctx, s, cfg.Mesh)
	if err != nil {
		return fmt.Errorf("failed to generate mesh: %w", err)
	}
	defer mesh.Close()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = mesh.Name
	}
	if err := copyTo(mesh.Path, output); err != nil {
		return err
	}

	fmt.Printf("Mesh: %s\n", output)
	fmt.Printf("  %s\n", mesh.Stats)
	if mesh.Surface != nil {
		surface := analysis.AnalyzeSurface(mesh.Surface)
		fmt.Printf("  Surface: %d triangles, area %.6f\n", surface.TriangleCount, surface.SurfaceArea)
		fmt.Printf("  %s\n", surface)
		if surface.Degenerate > 0 {
			logger.Warn("mesh surface has collapsed elements", "count", surface.Degenerate)
		}
	}
	return nil
}

func applyAnnotations(s *shape.Shape, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open annotations: %w", err)
	}
	defer f.Close()

	a, err := shape.ReadYAML(f)
	if err != nil {
		return 0, err
	}
	return s.Apply(a), nil
}

func copyTo(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return out.Close()
}
