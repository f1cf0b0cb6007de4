package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", "", "")
	fs.Float64("maxh", 0, "")
	fs.Float64("grading", 0, "")
	fs.String("granularity", "", "")
	fs.Bool("verbose", false, "")
	fs.Int("rows-per-page", 0, "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 15, cfg.RowsPerPage)
	assert.Equal(t, engine.DefaultParameters(), cfg.Mesh)
	assert.True(t, shape.IsUnbounded(cfg.Mesh.MaxH))
	assert.False(t, cfg.SecureCookies, "plain HTTP keeps the session cookie")
}

func TestLoadSecureCookiesFromEnv(t *testing.T) {
	t.Setenv("GOMESH_SECURE_COOKIES", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.SecureCookies)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "addr: \":9000\"\nrows_per_page: 30\nmesh:\n  maxh: 5\n  dim: 2\n")
	t.Setenv("GOMESH_ROWS_PER_PAGE", "40")
	t.Setenv("GOMESH_MESH__CLOSEEDGEFAC", "2")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--maxh", "2.5", "--rows-per-page", "50"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr, "file overrides default")
	assert.Equal(t, 50, cfg.RowsPerPage, "flag overrides env and file")
	assert.Equal(t, 2.5, cfg.Mesh.MaxH, "flag overrides file")
	assert.Equal(t, 2, cfg.Mesh.Dim)
	assert.Equal(t, 2.0, cfg.Mesh.CloseEdgeFac, "env sets nested keys")
	assert.Equal(t, path, cfg.File)
}

func TestLoadGranularityPreset(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--granularity", "fine", "--grading", "0.2"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, engine.Fine, cfg.Mesh.Granularity)
	assert.Equal(t, 3.0, cfg.Mesh.CurvatureSafety)
	assert.Equal(t, 2.0, cfg.Mesh.SegmentsPerEdge)
	assert.Equal(t, 0.2, cfg.Mesh.Grading, "explicit flag wins over preset")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "mesh:\n  grading: 1.5\n")
	_, err := Load(path, nil)
	assert.Error(t, err)

	path = writeConfig(t, "rows_per_page: 0\n")
	_, err = Load(path, nil)
	assert.ErrorContains(t, err, "RowsPerPage")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, true).Debug("shown", "key", "value")
	assert.Contains(t, buf.String(), "key=value")
}
