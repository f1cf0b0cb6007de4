package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/philipparndt/gomesh/pkg/volmesh"
)

//go:embed bridge.py
var bridgeScript []byte

// Exit codes of the bridge script
const (
	exitMeshing  = 3
	exitGeometry = 4
)

// Netgen runs the netgen/OCC Python bindings through a small bridge script
type Netgen struct {
	python  string
	workDir string
	logger  *slog.Logger

	once       sync.Once
	scriptPath string
	scriptErr  error
}

// NewNetgen creates an engine using the given Python interpreter. Meshes
// and the bridge script are written below workDir.
func NewNetgen(python, workDir string, logger *slog.Logger) *Netgen {
	if python == "" {
		python = "python3"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Netgen{
		python:  python,
		workDir: workDir,
		logger:  logger,
	}
}

// Version reports the netgen version, which doubles as an availability check
func (n *Netgen) Version(ctx context.Context) (string, error) {
	var resp struct {
		Netgen string `json:"netgen"`
	}
	if err := n.run(ctx, "version", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Netgen, nil
}

type entityResult struct {
	Name string   `json:"name"`
	MaxH *float64 `json:"maxh"`
}

type loadResult struct {
	Bounds geometry.BoundingBox `json:"bounds"`
	Solids []struct {
		entityResult
		Faces []int `json:"faces"`
	} `json:"solids"`
	Faces []struct {
		entityResult
		Triangles [][3]geometry.Vector3 `json:"triangles"`
	} `json:"faces"`
	Edges []struct {
		entityResult
		Points []geometry.Vector3 `json:"points"`
	} `json:"edges"`
}

// Load reads a STEP or BREP file
func (n *Netgen) Load(ctx context.Context, path string) (*shape.Shape, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	digest, err := FileDigest(absPath)
	if err != nil {
		return nil, err
	}

	var res loadResult
	if err := n.run(ctx, "load", map[string]any{"path": absPath}, &res); err != nil {
		var geoErr *GeometryError
		if errors.As(err, &geoErr) {
			geoErr.Path = filepath.Base(path)
		}
		return nil, err
	}

	solids := make([]shape.SolidEntity, len(res.Solids))
	for i, s := range res.Solids {
		solids[i] = shape.SolidEntity{Name: s.Name, MeshSize: shape.MeshSizeFromPtr(s.MaxH), Faces: s.Faces}
	}
	faces := make([]shape.FaceEntity, len(res.Faces))
	for i, f := range res.Faces {
		tris := make([]geometry.Triangle, len(f.Triangles))
		for j, t := range f.Triangles {
			tris[j] = geometry.NewTriangleFromVertices(t[0], t[1], t[2])
		}
		faces[i] = shape.FaceEntity{Name: f.Name, MeshSize: shape.MeshSizeFromPtr(f.MaxH), Triangles: tris}
	}
	edges := make([]shape.EdgeEntity, len(res.Edges))
	for i, e := range res.Edges {
		edges[i] = shape.EdgeEntity{Name: e.Name, MeshSize: shape.MeshSizeFromPtr(e.MaxH), Points: e.Points}
	}

	s, err := shape.New(GeometryName(path), solids, faces, edges)
	if err != nil {
		return nil, &GeometryError{Path: filepath.Base(path), Message: err.Error(), Err: err}
	}
	if !res.Bounds.IsEmpty() {
		s.Bounds = res.Bounds
	}
	s.Source = absPath
	s.Digest = digest

	n.logger.Info("geometry loaded", "file", filepath.Base(path), "shape", s.Summary())
	return s, nil
}

type meshRequest struct {
	Geometry    string             `json:"geometry"`
	Output      string             `json:"output"`
	Name        string             `json:"name"`
	Dim         int                `json:"dim"`
	Parameters  map[string]any     `json:"parameters"`
	Annotations *shape.Annotations `json:"annotations"`
	Exterior    ExteriorDomain     `json:"exterior"`
}

type meshResult struct {
	Volume  string `json:"volume"`
	Surface string `json:"surface"`
}

// GenerateMesh meshes the shape in a fresh directory below the work dir
func (n *Netgen) GenerateMesh(ctx context.Context, s *shape.Shape, params MeshParameters) (*Mesh, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	dir := filepath.Join(n.workDir, "mesh-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mesh directory: %w", err)
	}

	req := meshRequest{
		Geometry:    s.Source,
		Output:      dir,
		Name:        MeshFileName(s.Name),
		Dim:         params.Dim,
		Parameters:  params.Options(),
		Annotations: s.Annotations(),
		Exterior:    params.Exterior,
	}

	n.logger.Info("generating mesh", "geometry", s.Name, "parameters", req.Parameters)

	var res meshResult
	if err := n.run(ctx, "mesh", req, &res); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	mesh, err := openMesh(res.Volume, res.Surface)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	mesh.Name = req.Name
	mesh.Dir = dir
	mesh.Parameters = params

	n.logger.Info("mesh generated", "geometry", s.Name, "stats", mesh.Stats.String())
	return mesh, nil
}

// openMesh reads the statistics and the display surface of a written mesh
func openMesh(volume, surface string) (*Mesh, error) {
	stats, err := volmesh.ReadFile(volume)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated mesh: %w", err)
	}
	mesh := &Mesh{Path: volume, Stats: *stats}
	if surface != "" {
		model, err := stl.Parse(surface)
		if err != nil {
			return nil, fmt.Errorf("failed to read mesh surface: %w", err)
		}
		mesh.Surface = model
	}
	return mesh, nil
}

type bridgeError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (n *Netgen) script() (string, error) {
	n.once.Do(func() {
		if err := os.MkdirAll(n.workDir, 0o755); err != nil {
			n.scriptErr = fmt.Errorf("failed to create work directory: %w", err)
			return
		}
		n.scriptPath = filepath.Join(n.workDir, "gomesh_bridge.py")
		if err := os.WriteFile(n.scriptPath, bridgeScript, 0o644); err != nil {
			n.scriptErr = fmt.Errorf("failed to write engine bridge: %w", err)
		}
	})
	return n.scriptPath, n.scriptErr
}

// run executes one bridge command
func (n *Netgen) run(ctx context.Context, command string, request, response any) error {
	if _, err := exec.LookPath(n.python); err != nil {
		return fmt.Errorf("%s not found in PATH. Please install Python with the netgen package (pip install netgen-mesher)", n.python)
	}

	script, err := n.script()
	if err != nil {
		return err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", command, err)
	}

	cmd := exec.CommandContext(ctx, n.python, script, command)
	cmd.Dir = n.workDir
	cmd.Stdin = bytes.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if stderr.Len() > 0 {
		n.logger.Debug("engine output", "command", command, "stderr", stderr.String())
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		var be bridgeError
		if errors.As(err, &exitErr) && json.Unmarshal(stdout.Bytes(), &be) == nil && be.Error != "" {
			switch exitErr.ExitCode() {
			case exitMeshing:
				return &MeshingError{Message: be.Error}
			case exitGeometry:
				return &GeometryError{Message: be.Error}
			}
		}

		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("engine %s failed: %v\n", command, err))
		if be.Error != "" {
			errMsg.WriteString("error: ")
			errMsg.WriteString(be.Error)
			errMsg.WriteString("\n")
		}
		if stderr.Len() > 0 {
			errMsg.WriteString("stderr: ")
			errMsg.WriteString(stderr.String())
		}
		return fmt.Errorf("%s", errMsg.String())
	}

	if err := json.Unmarshal(stdout.Bytes(), response); err != nil {
		return fmt.Errorf("invalid %s response from engine: %w", command, err)
	}
	return nil
}

// FileDigest returns the hex SHA-256 of a file's content. Annotations are
// stored under this key so they follow the geometry, not its file name.
func FileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
