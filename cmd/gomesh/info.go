package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gomesh/pkg/shape"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a geometry file",
	Long:  "Load a STEP or BREP file through the engine and show its entity counts and bounding box.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	filename := args[0]
	s, err := eng.Load(cmd.Context(), filename)
	if err != nil {
		return fmt.Errorf("failed to load geometry: %w", err)
	}

	fmt.Println("Geometry Information")
	fmt.Println("====================")
	fmt.Printf("Name: %s\n", s.Name)
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Digest: %s\n\n", s.Digest)

	fmt.Println("Entities:")
	for _, kind := range shape.Kinds {
		fmt.Printf("  %s: %d\n", kind.Label(), s.Count(kind))
	}
	fmt.Println()

	bbox := s.Bounds
	size := bbox.Size()
	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", bbox.Min)
	fmt.Printf("  Max: %s\n", bbox.Max)
	fmt.Printf("  Center: %s\n\n", bbox.Center())

	fmt.Println("Dimensions:")
	fmt.Printf("  Width (X): %.6f units\n", size.X)
	fmt.Printf("  Depth (Y): %.6f units\n", size.Y)
	fmt.Printf("  Height (Z): %.6f units\n", size.Z)
	fmt.Printf("  Diagonal: %.6f units\n", bbox.Diagonal())
	return nil
}
