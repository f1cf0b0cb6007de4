package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// Parameters returns the global meshing settings
func (c *Controller) Parameters() engine.MeshParameters {
	return c.params
}

// SetParameters replaces the global meshing settings after validation
func (c *Controller) SetParameters(p engine.MeshParameters) error {
	if c.busy {
		return ErrBusy
	}
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	return nil
}

// SetGranularity applies a preset to the global settings
func (c *Controller) SetGranularity(g engine.Granularity) error {
	if c.busy {
		return ErrBusy
	}
	p, err := c.params.WithGranularity(g)
	if err != nil {
		return err
	}
	c.params = p
	return nil
}

// SetParameter changes one global setting from its input value. Empty
// values unset maxh and disable segments per edge and the close edge factor.
func (c *Controller) SetParameter(field, value string) error {
	value = strings.TrimSpace(value)
	if field == "granularity" {
		return c.SetGranularity(engine.Granularity(value))
	}

	p := c.params
	var err error
	switch field {
	case "maxh":
		p.MaxH, err = shape.ParseMeshSize(value)
	case "curvaturesafety":
		p.CurvatureSafety, err = strconv.ParseFloat(value, 64)
	case "segmentsperedge":
		p.SegmentsPerEdge, err = parseOptional(value)
	case "grading":
		p.Grading, err = strconv.ParseFloat(value, 64)
	case "closeedgefac":
		p.CloseEdgeFac, err = parseOptional(value)
	case "dim":
		p.Dim, err = strconv.Atoi(value)
	case "exterior":
		p.Exterior.Shape = engine.ExteriorShape(value)
	case "exteriorfactor":
		p.Exterior.Factor, err = strconv.ParseFloat(value, 64)
	default:
		return fmt.Errorf("%w: unknown setting %q", engine.ErrInvalidParameters, field)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", engine.ErrInvalidParameters, field, err)
	}
	return c.SetParameters(p)
}

func parseOptional(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

// MeshJob is one mesh generation. It carries a copy of the shape so the
// engine never sees edits made while it runs.
type MeshJob struct {
	engine engine.Engine
	shape  *shape.Shape
	params engine.MeshParameters
}

// Run calls the engine. It must be called without holding the session lock.
func (j *MeshJob) Run(ctx context.Context) (*engine.Mesh, error) {
	return j.engine.GenerateMesh(ctx, j.shape, j.params)
}

// StartMesh marks the session busy and snapshots the shape and settings.
// A second start before CompleteMesh fails with ErrBusy.
func (c *Controller) StartMesh() (*MeshJob, error) {
	if c.shape == nil {
		return nil, ErrNoGeometry
	}
	if c.busy {
		return nil, ErrBusy
	}
	if err := c.params.Validate(); err != nil {
		return nil, err
	}
	c.busy = true
	c.notice = "Generating Mesh..."
	return &MeshJob{engine: c.engine, shape: c.shape.Clone(), params: c.params}, nil
}

// CompleteMesh takes the result of a job. A meshing failure opens a dialog
// with the engine message and keeps the geometry view; on success the mesh
// is shown and offered for download. Errors other than meshing failures are
// returned.
func (c *Controller) CompleteMesh(job *MeshJob, mesh *engine.Mesh, err error) error {
	c.busy = false
	c.notice = ""
	if err != nil {
		if meshErr, ok := engine.AsMeshingError(err); ok {
			c.logger.Warn("mesh generation failed", "geometry", job.shape.Name, "error", meshErr.Message)
			c.dialog = &Dialog{Title: MeshErrorTitle, Message: meshErr.Message}
			return nil
		}
		if errors.Is(err, context.Canceled) {
			c.logger.Info("mesh generation canceled", "geometry", job.shape.Name)
		}
		return fmt.Errorf("failed to generate mesh: %w", err)
	}

	c.discardMesh()
	c.mesh = mesh
	c.mode = ModeMesh
	c.logger.Info("mesh generated", "geometry", job.shape.Name, "stats", mesh.Stats.String())
	c.viewer.ShowMesh(mesh.Surface)
	c.viewer.SetInfo(c.Info())
	return nil
}

// GenerateMesh runs a whole generation synchronously
func (c *Controller) GenerateMesh(ctx context.Context) error {
	job, err := c.StartMesh()
	if err != nil {
		return err
	}
	mesh, err := job.Run(ctx)
	return c.CompleteMesh(job, mesh, err)
}

// Mesh returns the last generated mesh, nil if none
func (c *Controller) Mesh() *engine.Mesh {
	return c.mesh
}

// MeshFile returns the download name and location of the mesh file
func (c *Controller) MeshFile() (name, path string, err error) {
	if c.mesh == nil {
		return "", "", ErrNoMesh
	}
	return c.mesh.Name, c.mesh.Path, nil
}

// ViewMode returns what the viewer shows
func (c *Controller) ViewMode() ViewMode {
	return c.mode
}

// SetViewMode switches between geometry and mesh display
func (c *Controller) SetViewMode(mode ViewMode) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	switch mode {
	case ModeGeometry:
		if c.mode != ModeGeometry {
			c.mode = ModeGeometry
			c.viewer.ShowGeometryMode()
			c.refresh()
		}
	case ModeMesh:
		if c.mesh == nil {
			return ErrNoMesh
		}
		if c.mode != ModeMesh {
			c.mode = ModeMesh
			c.viewer.ShowMesh(c.mesh.Surface)
		}
	default:
		return fmt.Errorf("unknown view mode %q", mode)
	}
	c.viewer.SetInfo(c.Info())
	return nil
}
