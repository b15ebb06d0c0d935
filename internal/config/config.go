// Package config resolves run settings. Later layers override earlier ones:
// defaults, the HCL run file, the environment (including a .env file), and
// finally command-line flags, which the caller applies.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/alexiusacademia/gofea/internal/tess"
)

// Environment variables read by Load
const (
	EnvLogLevel      = "GOFEA_LOG_LEVEL"
	EnvLogFormat     = "GOFEA_LOG_FORMAT"
	EnvUnitSystem    = "GOFEA_UNIT_SYSTEM"
	EnvQuadMesh      = "GOFEA_QUAD_MESH"
	EnvEdgePointMin  = "GOFEA_EDGE_POINT_MIN"
	EnvEdgePointMax  = "GOFEA_EDGE_POINT_MAX"
	EnvRelEdgeLength = "GOFEA_REL_EDGE_LENGTH"
)

// Config holds the resolved settings
type Config struct {
	LogLevel  string
	LogFormat string

	// UnitSystem overrides the model's unit system when set
	UnitSystem string

	Tessellation Tessellation
}

// Tessellation holds overrides of the model's tessellation controls. Nil
// fields leave the model's value alone.
type Tessellation struct {
	RelEdgeLength *float64 `hcl:"rel_edge_length,optional"`
	RelSag        *float64 `hcl:"rel_sag,optional"`
	MaxAngle      *float64 `hcl:"max_angle,optional"`
	EdgePointMin  *int     `hcl:"edge_point_min,optional"`
	EdgePointMax  *int     `hcl:"edge_point_max,optional"`
	QuadMesh      *bool    `hcl:"quad_mesh,optional"`
}

// Apply returns p with the overrides applied
func (t Tessellation) Apply(p tess.Params) tess.Params {
	if t.RelEdgeLength != nil {
		p.RelEdgeLength = *t.RelEdgeLength
	}
	if t.RelSag != nil {
		p.RelSag = *t.RelSag
	}
	if t.MaxAngle != nil {
		p.MaxAngle = *t.MaxAngle
	}
	if t.EdgePointMin != nil {
		p.EdgePointMin = *t.EdgePointMin
	}
	if t.EdgePointMax != nil {
		p.EdgePointMax = *t.EdgePointMax
	}
	if t.QuadMesh != nil {
		p.QuadMesh = *t.QuadMesh
	}
	return p
}

// hclFile is the layout of a run file
type hclFile struct {
	LogLevel     *string       `hcl:"log_level,optional"`
	LogFormat    *string       `hcl:"log_format,optional"`
	UnitSystem   *string       `hcl:"unit_system,optional"`
	Tessellation *Tessellation `hcl:"tessellation,block"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{LogLevel: "info", LogFormat: "text"}
}

// Load layers the run file at path (optional, may be empty) and the
// environment over the defaults. envFile is read when it exists; process
// environment variables win over its entries.
func Load(path, envFile string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}

	env := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		for k, v := range vars {
			env[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}
	if err := c.applyEnv(lookup); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if parsed.LogLevel != nil {
		c.LogLevel = *parsed.LogLevel
	}
	if parsed.LogFormat != nil {
		c.LogFormat = *parsed.LogFormat
	}
	if parsed.UnitSystem != nil {
		c.UnitSystem = *parsed.UnitSystem
	}
	if parsed.Tessellation != nil {
		c.Tessellation = *parsed.Tessellation
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFormat, &c.LogFormat)
	str(EnvUnitSystem, &c.UnitSystem)

	t := &c.Tessellation
	if v, ok := lookup(EnvQuadMesh); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvQuadMesh, err)
		}
		t.QuadMesh = &b
	}
	for _, e := range []struct {
		key string
		dst **int
	}{{EnvEdgePointMin, &t.EdgePointMin}, {EnvEdgePointMax, &t.EdgePointMax}} {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = &n
		}
	}
	if v, ok := lookup(EnvRelEdgeLength); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRelEdgeLength, err)
		}
		t.RelEdgeLength = &f
	}
	return nil
}
