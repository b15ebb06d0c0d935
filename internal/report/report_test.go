package report

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/results"
	"github.com/alexiusacademia/gofea/internal/tess"
)

func plateProblem(t *testing.T) *fea.Problem {
	t.Helper()
	b := geom.Plate("plate", r3.Vec{}, 1, 1)
	b.Faces[0].Attrs.SetString(geom.AttrGroup, "plate")
	b.Edges[0].Attrs.SetString(geom.AttrConstraint, "root")
	m, maps, err := fea.BuildMesh([]*geom.Body{b}, tess.DefaultParams())
	require.NoError(t, err)

	in := fea.Inputs{
		Mesh: m, Maps: maps,
		Material:   []fea.Tuple{{Name: "Al", Value: `{"youngModulus":7e10}`}},
		Property:   []fea.Tuple{{Name: "plate", Value: `{"propertyType":"Shell","material":"Al","membraneThickness":0.002}`}},
		Constraint: []fea.Tuple{{Name: "root", Value: `{"dofConstraint":123456}`}},
	}
	var p fea.Problem
	a := &fea.Assembler{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.NoError(t, a.Assemble(&p, in))
	return &p
}

func TestSheets(t *testing.T) {
	p := plateProblem(t)
	sheets := Sheets(p)

	var names []string
	for _, s := range sheets {
		names = append(names, s.Name)
		for _, r := range s.Rows {
			assert.LessOrEqual(t, len(r), len(s.Header), "sheet %s", s.Name)
		}
	}
	assert.Equal(t, []string{"Summary", "Nodes", "Elements", "Materials", "Properties", "Constraints", "Analyses"}, names)
	assert.Len(t, sheets[1].Rows, len(p.Mesh.Nodes))
	assert.Len(t, sheets[2].Rows, len(p.Mesh.Elements))
}

func TestWriteRoundTrip(t *testing.T) {
	p := plateProblem(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Sheets(p)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Summary", f.GetSheetName(0))
	rows, err := f.GetRows("Materials")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Name", "Type", "E", "G", "nu", "rho"}, rows[0])
	assert.Equal(t, "Al", rows[1][1])
	assert.Equal(t, "Isotropic", rows[1][2])

	rows, err = f.GetRows("Constraints")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEmpty(t, strings.Fields(rows[1][5]), "grid ids")
}

func TestSaveResults(t *testing.T) {
	tab, err := results.ParseTable(strings.NewReader("# node u1 u2 u3\n1 0 0 0.5\n2 0 0 -1\n"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, Save(path, ResultSheets(tab)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Nodal"}, f.GetSheetList())
	v, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}
