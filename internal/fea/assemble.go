package fea

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexiusacademia/gofea/internal/attrmap"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/alexiusacademia/gofea/internal/record"
	"github.com/alexiusacademia/gofea/internal/tess"
	"github.com/alexiusacademia/gofea/internal/units"
)

// Assembler turns inputs into a Problem
type Assembler struct {
	Logger *slog.Logger
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// stage is one step of the assembly. after names the stages whose output it reads.
type stage struct {
	name  string
	after []string
	run   func(*assembly) error
}

// newPipeline checks that every stage follows the stages it depends on
func newPipeline(stages ...stage) ([]stage, error) {
	done := make(map[string]bool, len(stages))
	for _, s := range stages {
		if done[s.name] {
			return nil, fmt.Errorf("stage %q is declared twice", s.name)
		}
		for _, dep := range s.after {
			if !done[dep] {
				return nil, fmt.Errorf("stage %q runs before its predecessor %q", s.name, dep)
			}
		}
		done[s.name] = true
	}
	return stages, nil
}

var assemblyStages = []stage{
	{name: "coordinateSystems", run: (*assembly).coordSystems},
	{name: "materials", run: (*assembly).materials},
	{name: "properties", after: []string{"materials"}, run: (*assembly).properties},
	{name: "constraints", run: (*assembly).constraints},
	{name: "supports", run: (*assembly).supports},
	{name: "connections", run: (*assembly).connections},
	{name: "loads", after: []string{"coordinateSystems"}, run: (*assembly).loads},
	{name: "analyses", after: []string{"coordinateSystems", "constraints", "supports", "loads"}, run: (*assembly).analyses},
	{name: "designVariables", after: []string{"materials", "properties"}, run: (*assembly).designVariables},
	{name: "design", after: []string{"properties", "designVariables"}, run: (*assembly).design},
	{name: "link", after: []string{"analyses", "design"}, run: (*assembly).link},
}

// assembly is the state shared by the stages of one Assemble call
type assembly struct {
	p   *Problem
	in  Inputs
	log *slog.Logger

	defaultAnalysis bool
}

// Assemble resets p and fills it from in. The properties stage tags the
// elements of in.Mesh with property ids and subtypes. On failure p is reset
// and those tags are cleared so no partial problem is observable.
func (a *Assembler) Assemble(p *Problem, in Inputs) error {
	p.Reset()
	if in.Mesh == nil || in.Maps == nil {
		return errors.New("no mesh: build one from the bodies or supply an inherited mesh")
	}
	stages, err := newPipeline(assemblyStages...)
	if err != nil {
		return err
	}

	p.Mesh, p.Maps = in.Mesh, in.Maps
	if in.UnitSystem != "" {
		us, err := units.Lookup(in.UnitSystem)
		if err != nil {
			p.Reset()
			return err
		}
		p.Units = us
	}

	log := a.logger()
	as := &assembly{p: p, in: in, log: log}
	for _, s := range stages {
		if err := s.run(as); err != nil {
			clearPropertyTags(in.Mesh)
			p.Reset()
			return fmt.Errorf("%s: %w", s.name, err)
		}
		log.Debug("Assembly stage complete.", "stage", s.name)
	}

	log.Info("Problem assembled.",
		"nodes", len(p.Mesh.Nodes),
		"elements", len(p.Mesh.Elements),
		"materials", len(p.Materials),
		"properties", len(p.Properties),
		"loads", len(p.Loads),
		"connections", len(p.Connections),
		"analyses", len(p.Analyses))
	return nil
}

// clearPropertyTags undoes the property stage's tagging of the mesh elements
func clearPropertyTags(m *mesh.Mesh) {
	for i := range m.Elements {
		if d := m.Elements[i].Fea(); d != nil {
			d.PropertyID = mesh.Unset
			d.SubType = mesh.SubTypeNone
		}
	}
}

// BuildMesh tessellates and meshes the structural bodies and combines them
// into one mesh. Bodies of other disciplines are skipped.
func BuildMesh(bodies []*geom.Body, params tess.Params) (*mesh.Mesh, *attrmap.Set, error) {
	return (&Assembler{}).BuildMesh(bodies, params)
}

// BuildMesh is the package-level BuildMesh logging through the assembler's logger
func (a *Assembler) BuildMesh(bodies []*geom.Body, params tess.Params) (*mesh.Mesh, *attrmap.Set, error) {
	mb := &mesh.Builder{Logger: a.logger()}
	maps, err := attrmap.Build(bodies)
	if err != nil {
		return nil, nil, err
	}
	var parts []*mesh.Mesh
	for _, b := range bodies {
		if !b.IsStructural() {
			continue
		}
		t, err := tess.Tessellate(b, params)
		if err != nil {
			return nil, nil, err
		}
		m, err := mb.Build(t, maps)
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, m)
	}
	if len(parts) == 0 {
		return nil, nil, errors.New("no structural bodies to mesh")
	}
	return mesh.Combine("model", parts...), maps, nil
}

// parseAll parses a category's tuples in order. init supplies each record's
// defaults from its name and 1-based id.
func parseAll[T any](category string, tuples []Tuple, schema []record.Field[T], us *units.System,
	init func(name string, id int) T) ([]T, error) {
	seen := make(map[string]bool, len(tuples))
	out := make([]T, 0, len(tuples))
	for i, t := range tuples {
		key := strings.ToLower(t.Name)
		if seen[key] {
			return nil, &InputError{Category: category, Tuple: t.Name, Err: errors.New("duplicate name")}
		}
		seen[key] = true
		rec := init(t.Name, i+1)
		if err := record.Parse(t.Name, t.Value, &rec, schema, us); err != nil {
			return nil, inputError(category, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// sourceBodies returns the bodies a mesh was built from
func sourceBodies(m *mesh.Mesh) []*geom.Body {
	if m.Source != nil {
		return []*geom.Body{m.Source.Body}
	}
	var out []*geom.Body
	for _, ref := range m.References {
		out = append(out, sourceBodies(ref.Mesh)...)
	}
	return out
}

// nodesWhere returns the ids of nodes whose payload matches, in mesh order
func (as *assembly) nodesWhere(match func(*mesh.FeaData) bool) []int {
	var ids []int
	for i := range as.p.Mesh.Nodes {
		n := &as.p.Mesh.Nodes[i]
		if d := n.Fea(); d != nil && match(d) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// elementsWhere returns the ids of elements whose payload matches, in mesh order
func (as *assembly) elementsWhere(match func(*mesh.FeaData) bool) []int {
	var ids []int
	for i := range as.p.Mesh.Elements {
		e := &as.p.Mesh.Elements[i]
		if d := e.Fea(); d != nil && match(d) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// indexSet resolves the names a tuple targets in an attribute map. With no
// explicit groupName the tuple's own name is used and a miss only warns.
func (as *assembly) indexSet(category, tuple string, groups []string, m *attrmap.Map) (map[int]bool, error) {
	set := make(map[int]bool)
	if len(groups) == 0 {
		idx, err := m.Index(tuple)
		if err != nil {
			as.log.Warn("No attribute matches tuple name.", "category", category, "tuple", tuple,
				"attribute", m.Category)
			return set, nil
		}
		set[idx] = true
		return set, nil
	}
	for _, g := range groups {
		idx, err := m.Index(g)
		if err != nil {
			return nil, &ReferenceError{Category: category, Tuple: tuple, Kind: m.Category, Name: g}
		}
		set[idx] = true
	}
	return set, nil
}
