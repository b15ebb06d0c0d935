package diagram

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/tess"
)

func plateProblem(t *testing.T) *fea.Problem {
	t.Helper()
	b := geom.Plate("plate", r3.Vec{}, 2, 1)
	b.Faces[0].Attrs.SetString(geom.AttrGroup, "skin")
	b.Edges[0].Attrs.SetString(geom.AttrConstraint, "root")
	m, maps, err := fea.BuildMesh([]*geom.Body{b}, tess.DefaultParams())
	require.NoError(t, err)

	in := fea.Inputs{
		Mesh: m, Maps: maps,
		Material:   []fea.Tuple{{Name: "Al", Value: `{"youngModulus":7e10}`}},
		Property:   []fea.Tuple{{Name: "skin", Value: `{"propertyType":"Shell","material":"Al","membraneThickness":0.002}`}},
		Constraint: []fea.Tuple{{Name: "root", Value: `{"dofConstraint":123456}`}},
	}
	var p fea.Problem
	a := &fea.Assembler{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.NoError(t, a.Assemble(&p, in))
	return &p
}

func TestParsePlane(t *testing.T) {
	for in, want := range map[string]Plane{"": PlaneXY, "XY": PlaneXY, "xz": PlaneXZ, "Yz": PlaneYZ} {
		got, err := ParsePlane(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePlane("zz")
	assert.ErrorContains(t, err, `unknown plane "zz"`)

	u, v := PlaneYZ.Project(r3.Vec{X: 1, Y: 2, Z: 3})
	assert.Equal(t, []float64{2, 3}, []float64{u, v})
}

func TestExportMesh(t *testing.T) {
	p := plateProblem(t)
	dir := filepath.Join(t.TempDir(), "out")

	for _, name := range []string{"mesh.png", "mesh.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, ExportMesh(p, PlaneXY, path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
}

func TestSummaryBoxIsRectangular(t *testing.T) {
	box := DrawSummaryBox("MESH", []string{"Nodes: 4", "Triangle:        2"})
	lines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	require.Len(t, lines, 6)
	width := utf8.RuneCountInString(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, utf8.RuneCountInString(l), l)
	}
}

func TestDrawMeshSummary(t *testing.T) {
	p := plateProblem(t)
	out := DrawMeshSummary(p.Mesh, p.Maps)
	assert.Contains(t, out, "MESH MODEL")
	assert.Contains(t, out, fmt.Sprintf("Nodes: %d", len(p.Mesh.Nodes)))
	assert.Contains(t, out, "capsGroup:")
	assert.Contains(t, out, "skin")
}

func TestDrawPlanView(t *testing.T) {
	p := plateProblem(t)
	out := DrawPlanView(p.Mesh, PlaneXY, Constrained(p), 20, 6)
	assert.Contains(t, out, "XY view")
	assert.Contains(t, out, "▲")
	assert.Contains(t, out, "●")

	assert.Empty(t, DrawPlanView(p.Mesh, PlaneXY, nil, 1, 1))
}
