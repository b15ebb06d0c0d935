package fea

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/alexiusacademia/gofea/internal/record"
	"gonum.org/v1/gonum/spatial/r3"
)

func (as *assembly) coordSystems() error {
	csNames := as.p.Maps.CoordSystem.Names()
	out := make([]CoordSystem, len(csNames))
	for _, b := range sourceBodies(as.p.Mesh) {
		for _, at := range b.CoordSystems() {
			idx, err := as.p.Maps.CoordSystem.Index(at.Name)
			if err != nil || out[idx-1].ID != 0 {
				continue
			}
			cs, err := newCoordSystem(at.Name, idx, at.Reals)
			if err != nil {
				return err
			}
			out[idx-1] = cs
		}
	}
	for i, cs := range out {
		if cs.ID == 0 {
			return &ReferenceError{Category: "coordinate system", Tuple: csNames[i], Kind: "coordinate system attribute", Name: csNames[i]}
		}
	}
	as.p.CoordSystems = out
	return nil
}

func newCoordSystem(name string, id int, reals []float64) (CoordSystem, error) {
	cs := CoordSystem{Name: name, ID: id, Type: Rectangular}
	if len(reals) != 12 {
		return cs, &InputError{Category: "coordinate system", Tuple: name,
			Err: fmt.Errorf("expected 12 values, got %d", len(reals))}
	}
	cs.Origin = r3.Vec{X: reals[0], Y: reals[1], Z: reals[2]}
	for k := 0; k < 3; k++ {
		v := r3.Vec{X: reals[3+3*k], Y: reals[4+3*k], Z: reals[5+3*k]}
		n := r3.Norm(v)
		if n == 0 {
			return cs, &InputError{Category: "coordinate system", Tuple: name,
				Err: fmt.Errorf("axis %d has zero length", k+1)}
		}
		cs.Axes[k] = r3.Scale(1/n, v)
	}
	return cs, nil
}

func (as *assembly) materials() error {
	mats, err := parseAll("material", as.in.Material, materialSchema, as.p.Units, func(name string, id int) Material {
		return Material{Name: name, ID: id, Type: Isotropic}
	})
	if err != nil {
		return err
	}
	as.p.Materials = mats
	return nil
}

func (as *assembly) materialID(category, tuple, name string) (int, error) {
	m, ok := as.p.MaterialByName(name)
	if !ok {
		return 0, &ReferenceError{Category: category, Tuple: tuple, Kind: "material", Name: name}
	}
	return m.ID, nil
}

func (as *assembly) properties() error {
	clearPropertyTags(as.p.Mesh)

	props, err := parseAll("property", as.in.Property, propertySchema, as.p.Units, func(name string, id int) Property {
		return Property{Name: name, ID: id, BendingInertiaRatio: 1, ShearMembraneRatio: 5.0 / 6.0}
	})
	if err != nil {
		return err
	}

	for i := range props {
		p := &props[i]
		refs := []struct {
			name string
			id   *int
		}{
			{p.Material, &p.MaterialID},
			{p.BendingMaterial, &p.BendingMaterialID},
			{p.ShearMaterial, &p.ShearMaterialID},
			{p.MembraneMaterial, &p.MembraneMaterialID},
		}
		for _, r := range refs {
			if r.name == "" {
				continue
			}
			if *r.id, err = as.materialID("property", p.Name, r.name); err != nil {
				return err
			}
		}
		p.CompositeMaterialID = nil
		for _, name := range p.CompositeMaterial {
			id, err := as.materialID("property", p.Name, name)
			if err != nil {
				return err
			}
			p.CompositeMaterialID = append(p.CompositeMaterialID, id)
		}

		idx, err := as.p.Maps.Group.Index(p.Name)
		if err != nil {
			as.log.Warn("Property has no matching capsGroup.", "property", p.Name)
			continue
		}
		p.GroupIndex = idx
		for k := range as.p.Mesh.Elements {
			e := &as.p.Mesh.Elements[k]
			if d := e.Fea(); d != nil && d.AttrIndex == idx {
				d.PropertyID = p.ID
				d.SubType = subType(p, e.Type)
				p.ElementCount++
			}
		}
		if p.ElementCount == 0 {
			as.log.Warn("Property is not used by any element.", "property", p.Name)
		}
	}
	as.p.Properties = props
	return nil
}

// subType refines an element from its property type and shape
func subType(p *Property, et mesh.ElementType) mesh.ElementSubType {
	switch p.Type {
	case ConcentratedMass:
		if et == mesh.NodeElement {
			return mesh.ConcentratedMassElement
		}
	case Bar:
		if et == mesh.Line {
			return mesh.BarElement
		}
	case Beam:
		if et == mesh.Line {
			return mesh.BeamElement
		}
	case Shear:
		return mesh.ShearElement
	case Membrane:
		return mesh.MembraneElement
	case Shell, Composite:
		if p.ZOffsetRel != 0 {
			return mesh.ShellElement
		}
	}
	return mesh.SubTypeNone
}

func (as *assembly) constraints() error {
	cons, err := parseAll("constraint", as.in.Constraint, constraintSchema, as.p.Units, func(name string, id int) Constraint {
		return Constraint{Name: name, ID: id, Type: ZeroDisplacement}
	})
	if err != nil {
		return err
	}
	for i := range cons {
		c := &cons[i]
		set, err := as.indexSet("constraint", c.Name, c.GroupName, as.p.Maps.Constraint)
		if err != nil {
			return err
		}
		c.GridIDs = as.nodesWhere(func(d *mesh.FeaData) bool { return set[d.ConstraintIndex] })
	}
	as.p.Constraints = cons
	return nil
}

func (as *assembly) supports() error {
	sups, err := parseAll("support", as.in.Support, supportSchema, as.p.Units, func(name string, id int) Support {
		return Support{Name: name, ID: id}
	})
	if err != nil {
		return err
	}
	for i := range sups {
		s := &sups[i]
		set, err := as.indexSet("support", s.Name, s.GroupName, as.p.Maps.Constraint)
		if err != nil {
			return err
		}
		s.GridIDs = as.nodesWhere(func(d *mesh.FeaData) bool { return set[d.ConstraintIndex] })
	}
	as.p.Supports = sups
	return nil
}

func (as *assembly) loads() error {
	loads, err := parseAll("load", as.in.Load, loadSchema, as.p.Units, func(name string, id int) Load {
		return Load{Name: name, ID: id}
	})
	if err != nil {
		return err
	}
	for i := range loads {
		l := &loads[i]
		if l.CoordinateSystem != "" {
			idx, err := as.p.Maps.CoordSystem.Index(l.CoordinateSystem)
			if err != nil {
				return &ReferenceError{Category: "load", Tuple: l.Name, Kind: "coordinate system", Name: l.CoordinateSystem}
			}
			l.CoordSystemID = idx
		}
		switch l.Type {
		case GridForce, GridMoment, Gravity:
			if len(l.DirectionVector) != 3 {
				return &InputError{Category: "load", Tuple: l.Name, Field: "directionVector",
					Err: fmt.Errorf("expected 3 components, got %d", len(l.DirectionVector))}
			}
		case PressureDistribute:
			if n := len(l.PressureDistributeForce); n != 3 && n != 4 {
				return &InputError{Category: "load", Tuple: l.Name, Field: "pressureDistributeForce",
					Err: fmt.Errorf("expected one value per element node, got %d", n)}
			}
		}
		if l.Type == Gravity {
			continue
		}

		set, err := as.indexSet("load", l.Name, l.GroupName, as.p.Maps.Load)
		if err != nil {
			return err
		}
		match := func(d *mesh.FeaData) bool { return set[d.LoadIndex] }
		if l.Type.OnGrid() {
			l.GridIDs = as.nodesWhere(match)
		} else if l.Type.OnElement() {
			l.ElementIDs = as.elementsWhere(match)
		}
		if l.Type == PressureExternal {
			if err := as.externalPressure(l); err != nil {
				return err
			}
		}
	}
	as.p.Loads = loads
	return nil
}

// externalPressure fills the per-node pressures of every element of the
// load. A node missing from the external data fails the whole load.
func (as *assembly) externalPressure(l *Load) error {
	ep := as.in.ExternalPressure
	if ep == nil {
		return &InputError{Category: "load", Tuple: l.Name, Err: errors.New("no external pressure data")}
	}
	if len(ep.NodeIDs) != len(ep.Pressures) {
		return &InputError{Category: "load", Tuple: l.Name,
			Err: fmt.Errorf("external pressure has %d node ids and %d values", len(ep.NodeIDs), len(ep.Pressures))}
	}
	byNode := make(map[int]float64, len(ep.NodeIDs))
	for i, id := range ep.NodeIDs {
		byNode[id] = ep.Pressures[i]
	}

	rows := make([][]float64, 0, len(l.ElementIDs))
	for _, eid := range l.ElementIDs {
		e, ok := as.p.Mesh.ElementByID(eid)
		if !ok {
			return fmt.Errorf("load %q: element %d is not in the mesh", l.Name, eid)
		}
		row := make([]float64, len(e.Connectivity))
		for k, nid := range e.Connectivity {
			v, ok := byNode[nid]
			if !ok {
				return &ReferenceError{Category: "load", Tuple: l.Name, Kind: "external pressure node",
					Name: fmt.Sprintf("%d (element %d)", nid, eid)}
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	l.PressureMultiDistributeForce = rows
	return nil
}

func (as *assembly) analyses() error {
	if err := as.aeroReference(); err != nil {
		return err
	}

	if len(as.in.Analysis) == 0 {
		a := defaultAnalysis("Default", 1)
		if as.in.AnalysisType != "" {
			t, err := ParseAnalysisType(as.in.AnalysisType)
			if err != nil {
				return &InputError{Category: "analysis", Tuple: a.Name, Field: "analysisType", Err: err}
			}
			a.Type = t
		}
		for _, l := range as.p.Loads {
			a.Loads = append(a.Loads, l.Name)
			a.LoadIDs = append(a.LoadIDs, l.ID)
		}
		for _, c := range as.p.Constraints {
			a.Constraints = append(a.Constraints, c.Name)
			a.ConstraintIDs = append(a.ConstraintIDs, c.ID)
		}
		for _, s := range as.p.Supports {
			a.Supports = append(a.Supports, s.Name)
			a.SupportIDs = append(a.SupportIDs, s.ID)
		}
		as.defaultAnalysis = true
		as.p.Analyses = []Analysis{a}
		return nil
	}

	list, err := parseAll("analysis", as.in.Analysis, analysisSchema, as.p.Units, defaultAnalysis)
	if err != nil {
		return err
	}
	loads := names(as.p.Loads, func(l Load) (string, int) { return l.Name, l.ID })
	cons := names(as.p.Constraints, func(c Constraint) (string, int) { return c.Name, c.ID })
	sups := names(as.p.Supports, func(s Support) (string, int) { return s.Name, s.ID })
	for i := range list {
		a := &list[i]
		if a.LoadIDs, err = resolveNames("analysis", a.Name, "load", a.Loads, loads); err != nil {
			return err
		}
		if a.ConstraintIDs, err = resolveNames("analysis", a.Name, "constraint", a.Constraints, cons); err != nil {
			return err
		}
		if a.SupportIDs, err = resolveNames("analysis", a.Name, "support", a.Supports, sups); err != nil {
			return err
		}
		if (a.Type == AeroelasticTrim || a.Type == AeroelasticFlutter) && as.p.AeroReference == nil {
			as.log.Warn("Aeroelastic analysis without an aero reference.", "analysis", a.Name)
		}
	}
	as.p.Analyses = list
	return nil
}

func (as *assembly) aeroReference() error {
	if strings.TrimSpace(as.in.AeroReference) == "" {
		return nil
	}
	ref := AeroReference{}
	if err := record.Parse("aeroReference", as.in.AeroReference, &ref, aeroReferenceSchema, as.p.Units); err != nil {
		return inputError("aero reference", err)
	}
	if ref.CoordSystem != "" {
		idx, err := as.p.Maps.CoordSystem.Index(ref.CoordSystem)
		if err != nil {
			return &ReferenceError{Category: "aero reference", Tuple: "aeroReference", Kind: "coordinate system", Name: ref.CoordSystem}
		}
		ref.CoordSystemID = idx
	}
	as.p.AeroReference = &ref
	return nil
}

// link resolves the analysis references to design records, which are
// assembled after the analyses, and checks the problem as a whole
func (as *assembly) link() error {
	dcons := names(as.p.DesignConstraints, func(d DesignConstraint) (string, int) { return d.Name, d.ID })
	resps := names(as.p.DesignResponses, func(d DesignResponse) (string, int) { return d.Name, d.ID })
	for i := range as.p.Analyses {
		a := &as.p.Analyses[i]
		if as.defaultAnalysis {
			a.DesignConstraints, a.DesignConstraintIDs = nil, nil
			for _, d := range as.p.DesignConstraints {
				a.DesignConstraints = append(a.DesignConstraints, d.Name)
				a.DesignConstraintIDs = append(a.DesignConstraintIDs, d.ID)
			}
			continue
		}
		var err error
		if a.DesignConstraintIDs, err = resolveNames("analysis", a.Name, "design constraint", a.DesignConstraints, dcons); err != nil {
			return err
		}
		if a.ResponseIDs, err = resolveNames("analysis", a.Name, "design response", a.Responses, resps); err != nil {
			return err
		}
	}

	if err := as.p.Mesh.Validate(); err != nil {
		return err
	}
	maxElement := as.p.Mesh.MaxElementID()
	for _, c := range as.p.Connections {
		if c.ElementID <= maxElement {
			return fmt.Errorf("connection %q element %d collides with a mesh element", c.Name, c.ElementID)
		}
	}
	if len(as.p.Properties) > 0 {
		missing := len(as.elementsWhere(func(d *mesh.FeaData) bool { return d.PropertyID == mesh.Unset }))
		if missing > 0 {
			as.log.Warn("Elements without a property.", "count", missing)
		}
	}
	return nil
}

type named struct {
	name string
	id   int
}

func names[T any](recs []T, key func(T) (string, int)) []named {
	out := make([]named, len(recs))
	for i, r := range recs {
		out[i].name, out[i].id = key(r)
	}
	return out
}

// resolveNames maps names to record ids case-insensitively
func resolveNames(category, tuple, kind string, want []string, have []named) ([]int, error) {
	var ids []int
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h.name, w) {
				ids = append(ids, h.id)
				found = true
				break
			}
		}
		if !found {
			return nil, &ReferenceError{Category: category, Tuple: tuple, Kind: kind, Name: w}
		}
	}
	return ids, nil
}

// decodeValue unmarshals a bare tuple value, reporting failures as InputError
func decodeValue(category string, t Tuple, v any) error {
	if err := json.Unmarshal([]byte(t.Value), v); err != nil {
		return &InputError{Category: category, Tuple: t.Name, Err: err}
	}
	return nil
}
