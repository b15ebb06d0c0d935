package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexiusacademia/gofea/internal/tess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const runFile = `
log_level   = "debug"
unit_system = "mmts"

tessellation {
  rel_edge_length = 0.2
  quad_mesh       = true
  edge_point_max  = 40
}
`

func TestDefaults(t *testing.T) {
	c, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, tess.DefaultParams(), c.Tessellation.Apply(tess.DefaultParams()))
}

func TestLoadFile(t *testing.T) {
	c, err := Load(writeFile(t, "gofea.hcl", runFile), "")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "mmts", c.UnitSystem)

	p := c.Tessellation.Apply(tess.DefaultParams())
	assert.Equal(t, 0.2, p.RelEdgeLength)
	assert.True(t, p.QuadMesh)
	assert.Equal(t, 40, p.EdgePointMax)
	assert.Equal(t, 2, p.EdgePointMin)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	envFile := writeFile(t, ".env", "GOFEA_LOG_FORMAT=json\nGOFEA_EDGE_POINT_MAX=12\nGOFEA_LOG_LEVEL=warn\n")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvQuadMesh, "false")

	c, err := Load(writeFile(t, "gofea.hcl", runFile), envFile)
	require.NoError(t, err)
	assert.Equal(t, "error", c.LogLevel, "process environment wins over the env file")
	assert.Equal(t, "json", c.LogFormat)

	p := c.Tessellation.Apply(tess.DefaultParams())
	assert.False(t, p.QuadMesh)
	assert.Equal(t, 12, p.EdgePointMax)
	assert.Equal(t, 0.2, p.RelEdgeLength)
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.hcl", "log_level = \n"), "")
		assert.ErrorContains(t, err, "failed to parse HCL file")
	})
	t.Run("unknown attribute", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.hcl", "colour = \"red\"\n"), "")
		assert.ErrorContains(t, err, "failed to decode HCL file")
	})
	t.Run("bad env value", func(t *testing.T) {
		t.Setenv(EnvEdgePointMin, "many")
		_, err := Load("", "")
		assert.ErrorContains(t, err, EnvEdgePointMin)
	})
}
