package model

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	m, err := LoadFromFile("testdata/plate.json")
	require.NoError(t, err)

	assert.Equal(t, "plate", m.Name)
	assert.Equal(t, 0.25, m.Params.RelEdgeLength)
	assert.True(t, m.Params.QuadMesh)
	assert.Equal(t, 50, m.Params.EdgePointMax, "unset controls keep their defaults")

	require.Len(t, m.Bodies, 2)
	plate, ballast := m.Bodies[0], m.Bodies[1]
	assert.Equal(t, geom.FaceBody, plate.Kind)
	assert.Len(t, plate.CoordSystems(), 1)
	group, ok := plate.Faces[0].Attrs.String(geom.AttrGroup)
	assert.True(t, ok)
	assert.Equal(t, "skin", group)

	assert.Equal(t, geom.NodeBody, ballast.Kind)
	at, ok := ballast.Attrs.Get("mass")
	require.True(t, ok)
	assert.Equal(t, geom.AttrReal, at.Kind)
	assert.Equal(t, []float64{12.5}, at.Reals)

	in := m.Inputs
	assert.Equal(t, "SI", in.UnitSystem)
	require.Len(t, in.Load, 2)
	assert.True(t, strings.HasPrefix(in.Load[1].Value, `{"loadType"`), "string values are unquoted")
	assert.Equal(t, []fea.Tuple{{Name: "limit", Value: "2.5"}}, in.DesignTable)
	assert.Nil(t, in.Support)
}

func TestAssembleModel(t *testing.T) {
	m, err := LoadFromFile("testdata/plate.json")
	require.NoError(t, err)

	p, err := m.Assemble(&fea.Assembler{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	assert.Equal(t, 70e9, p.Materials[0].YoungModulus)
	assert.InDelta(t, 0.002, p.Properties[0].MembraneThickness, 1e-15)
	assert.Equal(t, 3000.0, p.Loads[0].PressureForce)
	assert.NotEmpty(t, p.Loads[0].ElementIDs)
	assert.Equal(t, []int{4}, p.Loads[1].GridIDs)
	require.Len(t, p.CoordSystems, 1)
	assert.Equal(t, "panel", p.CoordSystems[0].Name)

	require.Len(t, p.Connections, 1)
	c := p.Connections[0]
	assert.Len(t, c.Masters, 4)
	assert.Greater(t, c.ElementID, p.Mesh.MaxElementID())

	var masses int
	for _, e := range p.Mesh.Elements {
		if e.Type == mesh.NodeElement {
			masses++
			assert.Equal(t, mesh.ConcentratedMassElement, e.Fea().SubType)
		}
	}
	assert.Equal(t, 1, masses)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"no bodies", `{"name":"empty"}`, "has no bodies"},
		{"bad kind", `{"bodies":[{"name":"b","kind":"blob","nodes":[{}]}]}`, "unknown body kind"},
		{"bad params", `{"tessellation":{"relEdgeLength":-1},"bodies":[]}`, "relative edge length"},
		{"short csys", `{"bodies":[{"name":"b","kind":"node","nodes":[{}],"csys":{"c":[1,2]}}]}`, "expected 12 values"},
		{"object attribute", `{"bodies":[{"name":"b","kind":"node","nodes":[{}],"attributes":{"capsGroup":{}}}]}`, "unsupported value"},
		{"invalid topology", `{"bodies":[{"name":"w","kind":"wire","nodes":[{}]}]}`, "wire body has no edges"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSignedLoopEdges(t *testing.T) {
	in := `{"bodies":[{"name":"tri","kind":"face",
		"nodes":[{"x":0},{"x":1},{"y":1}],
		"edges":[{"nodes":[1,2]},{"nodes":[3,2]},{"nodes":[3,1]}],
		"faces":[{"loops":[[1,-2,3]],"attributes":{"capsGroup":"t"}}]}]}`
	m, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	loop := m.Bodies[0].Faces[0].Loops[0]
	assert.Equal(t, geom.Loop{{Edge: 1, Sense: 1}, {Edge: 2, Sense: -1}, {Edge: 3, Sense: 1}}, loop)
}
