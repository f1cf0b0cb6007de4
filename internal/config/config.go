// Package config loads gomesh settings from defaults, gomesh.yaml, GOMESH_
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// FileName is the config file looked up in the working directory
const FileName = "gomesh.yaml"

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: GOMESH_MESH__MAXH=2.
const EnvPrefix = "GOMESH_"

// Config holds all settings
type Config struct {
	Addr          string                `koanf:"addr" validate:"required"`
	DataDir       string                `koanf:"data_dir" validate:"required"`
	Python        string                `koanf:"python" validate:"required"`
	SessionSecret string                `koanf:"session_secret"`
	SecureCookies bool                  `koanf:"secure_cookies"`
	MaxUploadMB   int64                 `koanf:"max_upload_mb" validate:"gt=0"`
	RowsPerPage   int                   `koanf:"rows_per_page" validate:"gt=0,lte=500"`
	ViewWidth     int                   `koanf:"view_width" validate:"gte=100,lte=4096"`
	ViewHeight    int                   `koanf:"view_height" validate:"gte=100,lte=4096"`
	Verbose       bool                  `koanf:"verbose"`
	Watch         bool                  `koanf:"watch"`
	Mesh          engine.MeshParameters `koanf:"mesh"`

	// File is the config file that was read, empty if none
	File string `koanf:"-"`
}

// StoreDir returns the annotation database directory
func (c *Config) StoreDir() string {
	return filepath.Join(c.DataDir, "annotations")
}

// WorkDir returns the directory for uploads and generated meshes
func (c *Config) WorkDir() string {
	return filepath.Join(c.DataDir, "work")
}

// Defaults returns the built-in settings
func Defaults() map[string]interface{} {
	mesh := engine.DefaultParameters()
	dataDir := filepath.Join(os.TempDir(), "gomesh")
	if dir, err := os.UserCacheDir(); err == nil {
		dataDir = filepath.Join(dir, "gomesh")
	}
	return map[string]interface{}{
		"addr":                 ":8080",
		"data_dir":             dataDir,
		"python":               "python3",
		"session_secret":       "",
		"secure_cookies":       false,
		"max_upload_mb":        200,
		"rows_per_page":        15,
		"view_width":           640,
		"view_height":          480,
		"verbose":              false,
		"watch":                false,
		"mesh.maxh":            mesh.MaxH,
		"mesh.curvaturesafety": mesh.CurvatureSafety,
		"mesh.segmentsperedge": mesh.SegmentsPerEdge,
		"mesh.grading":         mesh.Grading,
		"mesh.closeedgefac":    mesh.CloseEdgeFac,
		"mesh.dim":             mesh.Dim,
		"mesh.granularity":     string(mesh.Granularity),
		"mesh.exterior.shape":  string(mesh.Exterior.Shape),
		"mesh.exterior.factor": mesh.Exterior.Factor,
	}
}

// flagKeys maps flag names that do not follow the kebab to snake rule
var flagKeys = map[string]string{
	"maxh":            "mesh.maxh",
	"curvaturesafety": "mesh.curvaturesafety",
	"segmentsperedge": "mesh.segmentsperedge",
	"grading":         "mesh.grading",
	"closeedgefac":    "mesh.closeedgefac",
	"dim":             "mesh.dim",
	"granularity":     "mesh.granularity",
	"exterior":        "mesh.exterior.shape",
	"exterior-factor": "mesh.exterior.factor",
}

var validate = validator.New()

// Load reads the configuration. cfgFile may be empty, in which case
// gomesh.yaml is used when present. Only flags that were set override.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(FileName); err == nil {
			cfgFile = FileName
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// GOMESH_MAX_UPLOAD_MB -> max_upload_mb, GOMESH_MESH__MAXH -> mesh.maxh
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	// A non-default granularity seeds its preset values; preset fields set
	// by flag still win.
	if cfg.Mesh.Granularity != engine.DefaultParameters().Granularity || changed(flags, "granularity") {
		if err := applyGranularity(&cfg, flags); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// applyGranularity applies the preset and then restores preset fields that
// were set explicitly
func applyGranularity(cfg *Config, flags *pflag.FlagSet) error {
	explicit := cfg.Mesh
	preset, err := cfg.Mesh.WithGranularity(cfg.Mesh.Granularity)
	if err != nil {
		return err
	}
	if changed(flags, "curvaturesafety") {
		preset.CurvatureSafety = explicit.CurvatureSafety
	}
	if changed(flags, "segmentsperedge") {
		preset.SegmentsPerEdge = explicit.SegmentsPerEdge
	}
	if changed(flags, "grading") {
		preset.Grading = explicit.Grading
	}
	cfg.Mesh = preset
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %s %s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := shape.CheckMeshSize(c.Mesh.MaxH); err != nil {
		return fmt.Errorf("invalid config: mesh.maxh: %w", err)
	}
	return c.Mesh.Validate()
}
