package fea

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/alexiusacademia/gofea/internal/attrmap"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/alexiusacademia/gofea/internal/tess"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func quiet() *Assembler {
	return &Assembler{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// plateInputs is a single rectangular plate clamped on its edges and loaded
// by pressure on its face
func plateInputs(t *testing.T) Inputs {
	t.Helper()
	b := geom.Plate("plate", r3.Vec{}, 2, 1)
	b.Faces[0].Attrs.SetString(geom.AttrGroup, "plate")
	b.Faces[0].Attrs.SetString(geom.AttrLoad, "plate")
	for i := range b.Edges {
		b.Edges[i].Attrs.SetString(geom.AttrConstraint, "plate")
	}
	m, maps, err := BuildMesh([]*geom.Body{b}, tess.DefaultParams())
	require.NoError(t, err)
	return Inputs{
		Mesh:       m,
		Maps:       maps,
		Material:   []Tuple{{"Al", `{"materialType":"Isotropic","youngModulus":1e7,"poissonRatio":0.3}`}},
		Property:   []Tuple{{"plate", `{"propertyType":"Shell","material":"Al","membraneThickness":0.1}`}},
		Constraint: []Tuple{{"plate", `{"constraintType":"ZeroDisplacement","dofConstraint":123456}`}},
		Load:       []Tuple{{"plate", `{"loadType":"Pressure","pressureForce":100.0}`}},
	}
}

func TestAssemblePlate(t *testing.T) {
	var p Problem
	require.NoError(t, quiet().Assemble(&p, plateInputs(t)))

	require.Len(t, p.Materials, 1)
	assert.Equal(t, 1, p.Materials[0].ID)
	assert.Equal(t, 1e7, p.Materials[0].YoungModulus)

	require.Len(t, p.Properties, 1)
	assert.Equal(t, 1, p.Properties[0].ID)
	assert.Equal(t, 1, p.Properties[0].MaterialID)
	assert.Equal(t, len(p.Mesh.Elements), p.Properties[0].ElementCount)
	assert.InDelta(t, 5.0/6.0, p.Properties[0].ShearMembraneRatio, 1e-12)

	require.Len(t, p.Constraints, 1)
	assert.Equal(t, 1, p.Constraints[0].ID)
	assert.NotEmpty(t, p.Constraints[0].GridIDs)

	require.Len(t, p.Loads, 1)
	assert.Equal(t, 1, p.Loads[0].ID)
	assert.Len(t, p.Loads[0].ElementIDs, len(p.Mesh.Elements))
	assert.Empty(t, p.Loads[0].GridIDs)

	require.Len(t, p.Analyses, 1)
	a := p.Analyses[0]
	assert.Equal(t, Static, a.Type)
	assert.Equal(t, []int{1}, a.LoadIDs)
	assert.Equal(t, []int{1}, a.ConstraintIDs)

	for _, e := range p.Mesh.Elements {
		assert.Equal(t, 1, e.Fea().PropertyID)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	in := plateInputs(t)
	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	first := p

	require.NoError(t, quiet().Assemble(&p, in))
	assert.Empty(t, cmp.Diff(first.Materials, p.Materials))
	assert.Empty(t, cmp.Diff(first.Properties, p.Properties))
	assert.Empty(t, cmp.Diff(first.Constraints, p.Constraints))
	assert.Empty(t, cmp.Diff(first.Loads, p.Loads))
	assert.Empty(t, cmp.Diff(first.Analyses, p.Analyses))
}

func TestAssembleUnknownMaterial(t *testing.T) {
	in := plateInputs(t)
	in.Property = []Tuple{{"plate", `{"propertyType":"Shell","material":"Steel"}`}}

	var p Problem
	err := quiet().Assemble(&p, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.ErrorContains(t, err, `property "plate": unknown material "Steel"`)

	var ref *ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "Steel", ref.Name)
	assert.Nil(t, p.Mesh, "a failed assembly leaves nothing behind")
	assert.Nil(t, p.Materials)
}

func TestFailedAssemblyClearsElementTags(t *testing.T) {
	in := plateInputs(t)
	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Equal(t, 1, in.Mesh.Elements[0].Fea().PropertyID)

	in.Analysis = []Tuple{{"cruise", `{"analysisType":"Static","analysisLoad":"wind"}`}}
	require.ErrorIs(t, quiet().Assemble(&p, in), ErrUnresolved)
	for _, e := range in.Mesh.Elements {
		d := e.Fea()
		require.NotNil(t, d)
		assert.Equal(t, mesh.Unset, d.PropertyID, "element %d", e.ID)
		assert.Equal(t, mesh.SubTypeNone, d.SubType, "element %d", e.ID)
	}
}

func TestMassPerAreaInMMTS(t *testing.T) {
	in := plateInputs(t)
	in.UnitSystem = "mmts"
	in.Property = []Tuple{{"plate", `{"propertyType":"Shell","material":"Al","massPerArea":[2.7,"kg/m^2"]}`}}

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.Properties, 1)
	assert.InEpsilon(t, 2.7e-9, p.Properties[0].MassPerArea, 1e-9)
}

func TestBuildMeshLogsThroughAssembler(t *testing.T) {
	var buf bytes.Buffer
	a := &Assembler{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	b := geom.Plate("plate", r3.Vec{}, 1, 1)
	b.Faces[0].Attrs.SetString(geom.AttrGroup, "plate")
	_, _, err := a.BuildMesh([]*geom.Body{b}, tess.DefaultParams())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no coordinate system, using global")
}

func TestAssembleMaterialNameIsCaseInsensitive(t *testing.T) {
	in := plateInputs(t)
	in.Property = []Tuple{{"plate", `{"propertyType":"Shell","material":"aL"}`}}
	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	assert.Equal(t, 1, p.Properties[0].MaterialID)
}

func TestAssembleInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Inputs)
		field string
	}{
		{"keyword value", func(in *Inputs) { in.Material[0].Value = "Aluminum" }, ""},
		{"bad enum", func(in *Inputs) { in.Material[0].Value = `{"materialType":"Plastic"}` }, "materialType"},
		{"missing type", func(in *Inputs) { in.Property[0].Value = `{"material":"Al"}` }, "propertyType"},
		{"duplicate", func(in *Inputs) { in.Load = append(in.Load, Tuple{"PLATE", `{"loadType":"Pressure"}`}) }, ""},
		{"short direction", func(in *Inputs) { in.Load[0].Value = `{"loadType":"GridForce","directionVector":[1,0]}` }, "directionVector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := plateInputs(t)
			tt.edit(&in)
			var p Problem
			err := quiet().Assemble(&p, in)
			var ie *InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestAssembleUnknownUnitSystem(t *testing.T) {
	in := plateInputs(t)
	in.UnitSystem = "furlong"
	var p Problem
	assert.Error(t, quiet().Assemble(&p, in))
	assert.Nil(t, p.Mesh)
}

func TestElementSubTypes(t *testing.T) {
	tests := []struct {
		value string
		want  mesh.ElementSubType
	}{
		{`{"propertyType":"Shell","material":"Al","zOffsetRel":0.5}`, mesh.ShellElement},
		{`{"propertyType":"Shell","material":"Al"}`, mesh.SubTypeNone},
		{`{"propertyType":"Membrane","material":"Al"}`, mesh.MembraneElement},
		{`{"propertyType":"Rod","material":"Al"}`, mesh.SubTypeNone},
		{`{"propertyType":"Solid","material":"Al"}`, mesh.SubTypeNone},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			in := plateInputs(t)
			in.Property[0].Value = tt.value
			var p Problem
			require.NoError(t, quiet().Assemble(&p, in))
			for _, e := range p.Mesh.Elements {
				assert.Equal(t, tt.want, e.Fea().SubType, "element %d", e.ID)
				assert.Equal(t, 1, e.Fea().PropertyID)
			}
		})
	}
}

func TestDefaultAnalysisType(t *testing.T) {
	in := plateInputs(t)
	in.AnalysisType = "modal"
	in.DesignConstraint = []Tuple{{"plate", `{"responseType":"STRESS","upperBound":1e4}`}}

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.Analyses, 1)
	a := p.Analyses[0]
	assert.Equal(t, "Default", a.Name)
	assert.Equal(t, Modal, a.Type)
	assert.Equal(t, "Lanczos", a.ExtractionMethod)
	assert.Equal(t, []int{1}, a.DesignConstraintIDs)
	assert.Equal(t, []int{1}, p.DesignConstraints[0].PropertyIDs)

	in.AnalysisType = "Buckling"
	var ie *InputError
	assert.ErrorAs(t, quiet().Assemble(&p, in), &ie)
}

func TestExplicitAnalysis(t *testing.T) {
	in := plateInputs(t)
	in.DesignResponse = []Tuple{{"disp", `{"responseType":"DISP","component":3}`}}
	in.Analysis = []Tuple{{"cruise", `{"analysisType":"Static","analysisLoad":"PLATE","analysisConstraint":["plate"],"analysisResponse":"disp"}`}}

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.Analyses, 1)
	assert.Equal(t, []int{1}, p.Analyses[0].LoadIDs)
	assert.Equal(t, []int{1}, p.Analyses[0].ResponseIDs)

	in.Analysis[0].Value = `{"analysisLoad":"gust"}`
	err := quiet().Assemble(&p, in)
	assert.ErrorContains(t, err, `analysis "cruise": unknown load "gust"`)
}

func TestExternalPressure(t *testing.T) {
	in := plateInputs(t)
	in.Load[0].Value = `{"loadType":"PressureExternal"}`
	ep := &ExternalPressure{}
	for _, n := range in.Mesh.Nodes {
		ep.NodeIDs = append(ep.NodeIDs, n.ID)
		ep.Pressures = append(ep.Pressures, float64(10*n.ID))
	}
	in.ExternalPressure = ep

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	l := p.Loads[0]
	require.Len(t, l.PressureMultiDistributeForce, len(l.ElementIDs))
	for i, eid := range l.ElementIDs {
		e, ok := p.Mesh.ElementByID(eid)
		require.True(t, ok)
		for k, nid := range e.Connectivity {
			assert.Equal(t, float64(10*nid), l.PressureMultiDistributeForce[i][k])
		}
	}

	ep.NodeIDs, ep.Pressures = ep.NodeIDs[1:], ep.Pressures[1:]
	err := quiet().Assemble(&p, in)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.ErrorContains(t, err, `external pressure node "1 (element`)

	in.ExternalPressure = nil
	var ie *InputError
	assert.ErrorAs(t, quiet().Assemble(&p, in), &ie)
}

func TestDesignVariables(t *testing.T) {
	in := plateInputs(t)
	in.DesignVariable = []Tuple{
		{"thick", `{"groupName":"plate","independentVariable":"base","independentVariableWeight":[2]}`},
		{"base", `{"groupName":"Al","initialValue":1,"upperBound":2}`},
	}
	in.DesignVariableRelation = []Tuple{
		{"thick", `{"componentType":"Property","componentName":"plate","fieldName":"T"}`},
		{"stiff", `{"componentType":"Material","componentName":"Al","variableName":["base","thick"]}`},
	}

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.DesignVariables, 2)
	thick, base := p.DesignVariables[0], p.DesignVariables[1]
	assert.Equal(t, []int{1}, thick.PropertyIDs)
	assert.Equal(t, []int{2}, thick.IndependentVariableID, "forward reference")
	assert.Equal(t, []int{1}, base.MaterialIDs)
	assert.Equal(t, 0.5, base.MaxDelta)

	require.Len(t, p.DesignVariableRelations, 2)
	assert.Equal(t, []int{1}, p.DesignVariableRelations[0].ComponentIDs)
	assert.Equal(t, []int{1}, p.DesignVariableRelations[0].VariableIDs)
	assert.Equal(t, []int{2, 1}, p.DesignVariableRelations[1].VariableIDs)
}

func TestDesignVariableErrors(t *testing.T) {
	t.Run("unknown group", func(t *testing.T) {
		in := plateInputs(t)
		in.DesignVariable = []Tuple{{"rib", `{}`}}
		var p Problem
		err := quiet().Assemble(&p, in)
		assert.ErrorIs(t, err, ErrUnresolved)
		assert.ErrorContains(t, err, `unknown material, property or capsGroup "rib"`)
	})
	t.Run("unknown independent", func(t *testing.T) {
		in := plateInputs(t)
		in.DesignVariable = []Tuple{{"plate", `{"independentVariable":"ghost"}`}}
		var p Problem
		assert.ErrorContains(t, quiet().Assemble(&p, in), `unknown design variable "ghost"`)
	})
	t.Run("dependent chain", func(t *testing.T) {
		in := plateInputs(t)
		in.DesignVariable = []Tuple{
			{"a", `{"groupName":"plate","independentVariable":"b"}`},
			{"b", `{"groupName":"plate","independentVariable":"c"}`},
			{"c", `{"groupName":"plate"}`},
		}
		var p Problem
		err := quiet().Assemble(&p, in)
		var ie *InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "independentVariable", ie.Field)
		assert.Equal(t, "a", ie.Tuple)
	})
}

func TestDesignTables(t *testing.T) {
	in := plateInputs(t)
	in.DesignVariable = []Tuple{{"plate", `{}`}}
	in.DesignResponse = []Tuple{{"tip", `{"responseType":"DISP"}`}}
	in.DesignEquation = []Tuple{
		{"sum", `x + y`},
		{"list", `["a = 2", "a*x"]`},
		{"obj", `{"equation":["w"]}`},
	}
	in.DesignTable = []Tuple{{"limit", `2.5`}, {"scale", `1.5`}}
	in.DesignOptParam = []Tuple{
		{"maxIter", `30`},
		{"bounds", `[0.1, 0.2]`},
		{"method", `"SQP"`},
		{"flags", `["A","B"]`},
		{"raw", `fast`},
	}
	in.DesignEquationResponse = []Tuple{
		{"r1", `{"equation":"sum","constant":["scale","limit"],"variable":"plate","response":"tip","equationResponse":"r2"}`},
		{"r2", `{"equation":"list"}`},
	}

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))

	want := []DesignEquation{
		{Name: "sum", ID: 1, Equation: []string{"x + y"}},
		{Name: "list", ID: 2, Equation: []string{"a = 2", "a*x"}},
		{Name: "obj", ID: 3, Equation: []string{"w"}},
	}
	assert.Empty(t, cmp.Diff(want, p.DesignEquations))
	require.Len(t, p.DesignTable, 2)
	assert.Equal(t, DesignConstant{Name: "limit", Value: 2.5}, p.DesignTable[0])

	require.Len(t, p.OptParams, 5)
	assert.Equal(t, []float64{30}, p.OptParams[0].Numbers)
	assert.Equal(t, []float64{0.1, 0.2}, p.OptParams[1].Numbers)
	assert.Equal(t, []string{"SQP"}, p.OptParams[2].Text)
	assert.Equal(t, []string{"A", "B"}, p.OptParams[3].Text)
	assert.Equal(t, []string{"fast"}, p.OptParams[4].Text)

	r1 := p.DesignEquationResponses[0]
	assert.Equal(t, 1, r1.EquationID)
	assert.Equal(t, []int{2, 1}, r1.ConstantIDs)
	assert.Equal(t, []int{1}, r1.VariableIDs)
	assert.Equal(t, []int{1}, r1.ResponseIDs)
	assert.Equal(t, []int{2}, r1.EquationResponseIDs)
	assert.Equal(t, 2, p.DesignEquationResponses[1].EquationID)

	in.DesignEquationResponse[1].Value = `{"equation":"product"}`
	assert.ErrorIs(t, quiet().Assemble(&p, in), ErrUnresolved)
}

func TestWarningsAreLogged(t *testing.T) {
	in := plateInputs(t)
	in.Property = append(in.Property, Tuple{"spar", `{"propertyType":"Beam","material":"Al"}`})

	var buf bytes.Buffer
	a := &Assembler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	var p Problem
	require.NoError(t, a.Assemble(&p, in))
	assert.Contains(t, buf.String(), "Property has no matching capsGroup.")
	assert.Contains(t, buf.String(), "property=spar")
}

func TestNoMesh(t *testing.T) {
	var p Problem
	assert.Error(t, quiet().Assemble(&p, Inputs{Maps: attrmap.NewSet()}))
}

func TestNewPipeline(t *testing.T) {
	run := func(*assembly) error { return nil }
	t.Run("assembly order", func(t *testing.T) {
		_, err := newPipeline(assemblyStages...)
		assert.NoError(t, err)
	})
	t.Run("predecessor after dependent", func(t *testing.T) {
		_, err := newPipeline(
			stage{name: "properties", after: []string{"materials"}, run: run},
			stage{name: "materials", run: run},
		)
		assert.ErrorContains(t, err, `stage "properties" runs before its predecessor "materials"`)
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := newPipeline(stage{name: "loads", run: run}, stage{name: "loads", run: run})
		assert.ErrorContains(t, err, "declared twice")
	})
}

func TestCoordinateSystems(t *testing.T) {
	b := geom.Plate("plate", r3.Vec{}, 1, 1)
	b.Faces[0].Attrs.SetString(geom.AttrGroup, "plate")
	b.Attrs.Set(geom.Attr{Name: "wing", Kind: geom.AttrCSys, Reals: []float64{1, 2, 3, 2, 0, 0, 0, 3, 0, 0, 0, 4}})
	m, maps, err := BuildMesh([]*geom.Body{b}, tess.DefaultParams())
	require.NoError(t, err)

	var p Problem
	in := Inputs{
		Mesh: m, Maps: maps,
		Load: []Tuple{{"plate", `{"loadType":"GridForce","directionVector":[0,0,1],"coordinateSystem":"wing"}`}},
	}
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.CoordSystems, 1)
	cs := p.CoordSystems[0]
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, cs.Origin)
	assert.Equal(t, [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}, cs.Axes)
	assert.Equal(t, 1, p.Loads[0].CoordSystemID)

	_, err = newCoordSystem("flat", 1, []float64{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.ErrorContains(t, err, "axis 2 has zero length")
}
