package enginetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/pkg/engine"
)

func TestFakeEngineLoadsBox(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, "cube.step", StepContent)
	require.NoError(t, err)

	e := New(dir)
	s, err := e.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "cube", s.Name)
	assert.Equal(t, "1 solids, 6 faces, 12 edges", s.Summary())
	assert.Equal(t, 1.0, s.Bounds.MaxDimension())
	for f := 0; f < 6; f++ {
		assert.Equal(t, []int{0}, s.FaceSolids(f))
	}
}

func TestFakeEngineRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, "cube.step", "hello world")
	require.NoError(t, err)

	_, err = New(dir).Load(context.Background(), path)
	assert.True(t, engine.IsInvalidGeometry(err))
}

func TestFakeEngineMeshes(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	mesh, err := e.GenerateMesh(context.Background(), Box("cube"), engine.DefaultParameters())
	require.NoError(t, err)
	defer mesh.Close()

	assert.Equal(t, "cube.vol", mesh.Name)
	assert.Equal(t, 1, mesh.Stats.VolumeElements)
	assert.Equal(t, 12, mesh.Surface.Len())
	assert.Equal(t, 1, e.MeshCalls())
}
