// Package model loads a JSON model file: the bodies with their attributes,
// the tessellation controls and the record tuples of every category.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/tess"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model is a loaded model file. Inputs carries no mesh until Assemble.
type Model struct {
	Name   string
	Bodies []*geom.Body
	Params tess.Params
	Inputs fea.Inputs
}

type file struct {
	Name         string           `json:"name"`
	UnitSystem   string           `json:"unitSystem"`
	AnalysisType string           `json:"analysisType"`
	Tessellation tessellationJSON `json:"tessellation"`
	Bodies       []bodyJSON       `json:"bodies"`

	Material               []tupleJSON `json:"material"`
	Property               []tupleJSON `json:"property"`
	Constraint             []tupleJSON `json:"constraint"`
	Support                []tupleJSON `json:"support"`
	Connect                []tupleJSON `json:"connect"`
	Load                   []tupleJSON `json:"load"`
	Analysis               []tupleJSON `json:"analysis"`
	DesignVariable         []tupleJSON `json:"designVariable"`
	DesignVariableRelation []tupleJSON `json:"designVariableRelation"`
	DesignConstraint       []tupleJSON `json:"designConstraint"`
	DesignResponse         []tupleJSON `json:"designResponse"`
	DesignEquation         []tupleJSON `json:"designEquation"`
	DesignEquationResponse []tupleJSON `json:"designEquationResponse"`
	DesignTable            []tupleJSON `json:"designTable"`
	DesignOptParam         []tupleJSON `json:"designOptParam"`

	ExternalPressure *fea.ExternalPressure `json:"externalPressure"`
	AeroReference    json.RawMessage       `json:"aeroReference"`
}

type tessellationJSON struct {
	RelEdgeLength *float64 `json:"relEdgeLength"`
	RelSag        *float64 `json:"relSag"`
	MaxAngle      *float64 `json:"maxAngle"`
	EdgePointMin  *int     `json:"edgePointMin"`
	EdgePointMax  *int     `json:"edgePointMax"`
	QuadMesh      *bool    `json:"quadMesh"`
}

type entityJSON struct {
	Attributes map[string]json.RawMessage `json:"attributes"`
	CSys       map[string][]float64       `json:"csys"`
}

type bodyJSON struct {
	entityJSON
	Name  string     `json:"name"`
	Kind  string     `json:"kind"`
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
	Faces []faceJSON `json:"faces"`
}

type nodeJSON struct {
	entityJSON
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type edgeJSON struct {
	entityJSON
	Nodes      [2]int `json:"nodes"`
	Degenerate bool   `json:"degenerate"`
}

type faceJSON struct {
	entityJSON
	Loops [][]int `json:"loops"`
}

// tupleJSON holds a tuple whose value is either a JSON value or a bare keyword string
type tupleJSON struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// LoadFromFile reads and validates a model file
func LoadFromFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a model and validates its bodies and tessellation controls
func Parse(r io.Reader) (*Model, error) {
	dec := json.NewDecoder(r)
	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}

	m := &Model{Name: f.Name, Params: f.Tessellation.apply(tess.DefaultParams())}
	if err := m.Params.Validate(); err != nil {
		return nil, err
	}
	if len(f.Bodies) == 0 {
		return nil, fmt.Errorf("model %q has no bodies", f.Name)
	}
	for _, bj := range f.Bodies {
		b, err := bj.body()
		if err != nil {
			return nil, err
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		m.Bodies = append(m.Bodies, b)
	}

	in := &m.Inputs
	in.UnitSystem = f.UnitSystem
	in.AnalysisType = f.AnalysisType
	in.ExternalPressure = f.ExternalPressure
	if len(f.AeroReference) > 0 && !bytes.Equal(bytes.TrimSpace(f.AeroReference), []byte("null")) {
		in.AeroReference = string(f.AeroReference)
	}
	lists := []struct {
		dst *[]fea.Tuple
		src []tupleJSON
	}{
		{&in.Material, f.Material},
		{&in.Property, f.Property},
		{&in.Constraint, f.Constraint},
		{&in.Support, f.Support},
		{&in.Connect, f.Connect},
		{&in.Load, f.Load},
		{&in.Analysis, f.Analysis},
		{&in.DesignVariable, f.DesignVariable},
		{&in.DesignVariableRelation, f.DesignVariableRelation},
		{&in.DesignConstraint, f.DesignConstraint},
		{&in.DesignResponse, f.DesignResponse},
		{&in.DesignEquation, f.DesignEquation},
		{&in.DesignEquationResponse, f.DesignEquationResponse},
		{&in.DesignTable, f.DesignTable},
		{&in.DesignOptParam, f.DesignOptParam},
	}
	for _, l := range lists {
		*l.dst = tuples(l.src)
	}
	return m, nil
}

// tuples keeps JSON values verbatim and unquotes keyword strings so they
// reach the record parser as bare keywords
func tuples(src []tupleJSON) []fea.Tuple {
	if len(src) == 0 {
		return nil
	}
	out := make([]fea.Tuple, len(src))
	for i, t := range src {
		out[i].Name = t.Name
		var s string
		if err := json.Unmarshal(t.Value, &s); err == nil {
			out[i].Value = s
		} else {
			out[i].Value = string(t.Value)
		}
	}
	return out
}

func (t tessellationJSON) apply(p tess.Params) tess.Params {
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

func (bj bodyJSON) body() (*geom.Body, error) {
	kind, err := geom.ParseBodyKind(bj.Kind)
	if err != nil {
		return nil, fmt.Errorf("body %q: %w", bj.Name, err)
	}
	b := &geom.Body{Name: bj.Name, Kind: kind}
	if b.Attrs, err = bj.attrs(); err != nil {
		return nil, fmt.Errorf("body %q: %w", bj.Name, err)
	}
	for i, nj := range bj.Nodes {
		n := geom.Node{Pos: r3.Vec{X: nj.X, Y: nj.Y, Z: nj.Z}}
		if n.Attrs, err = nj.attrs(); err != nil {
			return nil, fmt.Errorf("body %q node %d: %w", bj.Name, i+1, err)
		}
		b.Nodes = append(b.Nodes, n)
	}
	for i, ej := range bj.Edges {
		e := geom.Edge{Nodes: ej.Nodes, Degenerate: ej.Degenerate}
		if e.Attrs, err = ej.attrs(); err != nil {
			return nil, fmt.Errorf("body %q edge %d: %w", bj.Name, i+1, err)
		}
		b.Edges = append(b.Edges, e)
	}
	for i, fj := range bj.Faces {
		f := geom.Face{}
		if f.Attrs, err = fj.attrs(); err != nil {
			return nil, fmt.Errorf("body %q face %d: %w", bj.Name, i+1, err)
		}
		for _, lj := range fj.Loops {
			var loop geom.Loop
			for _, signed := range lj {
				le := geom.LoopEdge{Edge: signed, Sense: 1}
				if signed < 0 {
					le = geom.LoopEdge{Edge: -signed, Sense: -1}
				}
				loop = append(loop, le)
			}
			f.Loops = append(f.Loops, loop)
		}
		b.Faces = append(b.Faces, f)
	}
	return b, nil
}

// attrs converts attributes in name order: strings, numbers and number
// lists, then the coordinate systems
func (e entityJSON) attrs() (geom.Attrs, error) {
	var out geom.Attrs
	for _, name := range sortedKeys(e.Attributes) {
		raw := e.Attributes[name]
		var (
			s    string
			v    float64
			list []float64
		)
		switch {
		case json.Unmarshal(raw, &s) == nil:
			out.Set(geom.Attr{Name: name, Kind: geom.AttrString, Str: s})
		case json.Unmarshal(raw, &v) == nil:
			out.Set(geom.Attr{Name: name, Kind: geom.AttrReal, Reals: []float64{v}})
		case json.Unmarshal(raw, &list) == nil:
			out.Set(geom.Attr{Name: name, Kind: geom.AttrReal, Reals: list})
		default:
			return nil, fmt.Errorf("attribute %q: unsupported value %s", name, raw)
		}
	}
	for _, name := range sortedKeys(e.CSys) {
		reals := e.CSys[name]
		if len(reals) != 12 {
			return nil, fmt.Errorf("coordinate system %q: expected 12 values, got %d", name, len(reals))
		}
		out.Set(geom.Attr{Name: name, Kind: geom.AttrCSys, Reals: reals})
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Mesh builds the model's mesh and returns the assembly inputs bound to it.
// a supplies the logger and may be nil.
func (m *Model) Mesh(a *fea.Assembler) (fea.Inputs, error) {
	if a == nil {
		a = &fea.Assembler{}
	}
	mesh, maps, err := a.BuildMesh(m.Bodies, m.Params)
	if err != nil {
		return fea.Inputs{}, err
	}
	in := m.Inputs
	in.Mesh, in.Maps = mesh, maps
	return in, nil
}

// Assemble meshes the model and assembles the problem
func (m *Model) Assemble(a *fea.Assembler) (*fea.Problem, error) {
	in, err := m.Mesh(a)
	if err != nil {
		return nil, err
	}
	var p fea.Problem
	if err := a.Assemble(&p, in); err != nil {
		return nil, err
	}
	return &p, nil
}
