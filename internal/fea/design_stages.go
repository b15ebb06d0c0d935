package fea

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/alexiusacademia/gofea/internal/record"
)

// designVariables loads every variable before resolving independent
// variables, so a variable may name one declared after it
func (as *assembly) designVariables() error {
	dvs, err := parseAll("design variable", as.in.DesignVariable, designVariableSchema, as.p.Units,
		func(name string, id int) DesignVariable {
			return DesignVariable{Name: name, ID: id, MaxDelta: 0.5}
		})
	if err != nil {
		return err
	}

	for i := range dvs {
		dv := &dvs[i]
		groups := dv.GroupName
		if len(groups) == 0 {
			groups = []string{dv.Name}
		}
		for _, g := range groups {
			if m, ok := as.p.MaterialByName(g); ok {
				dv.MaterialIDs = append(dv.MaterialIDs, m.ID)
				continue
			}
			if p, ok := as.p.PropertyByName(g); ok {
				dv.PropertyIDs = append(dv.PropertyIDs, p.ID)
				continue
			}
			idx, err := as.p.Maps.Group.Index(g)
			if err != nil {
				return &ReferenceError{Category: "design variable", Tuple: dv.Name, Kind: "material, property or capsGroup", Name: g}
			}
			dv.ElementIDs = append(dv.ElementIDs, as.elementsWhere(func(d *mesh.FeaData) bool { return d.AttrIndex == idx })...)
		}
	}

	all := names(dvs, func(d DesignVariable) (string, int) { return d.Name, d.ID })
	for i := range dvs {
		dv := &dvs[i]
		if dv.IndependentVariableID, err = resolveNames("design variable", dv.Name, "design variable",
			dv.IndependentVariable, all); err != nil {
			return err
		}
		for k, id := range dv.IndependentVariableID {
			if dvs[id-1].Dependent() {
				return &InputError{Category: "design variable", Tuple: dv.Name, Field: "independentVariable",
					Err: fmt.Errorf("independent variable %q is itself dependent", dv.IndependentVariable[k])}
			}
		}
	}
	as.p.DesignVariables = dvs

	rels, err := parseAll("design variable relation", as.in.DesignVariableRelation, designVariableRelationSchema,
		as.p.Units, func(name string, id int) DesignVariableRelation {
			return DesignVariableRelation{Name: name, ID: id}
		})
	if err != nil {
		return err
	}
	for i := range rels {
		r := &rels[i]
		if r.ComponentIDs, err = as.componentIDs(r); err != nil {
			return err
		}
		if len(r.VariableNames) == 0 {
			r.VariableNames = []string{r.Name}
		}
		if r.VariableIDs, err = resolveNames("design variable relation", r.Name, "design variable",
			r.VariableNames, all); err != nil {
			return err
		}
	}
	as.p.DesignVariableRelations = rels
	return nil
}

func (as *assembly) componentIDs(r *DesignVariableRelation) ([]int, error) {
	const category = "design variable relation"
	switch r.ComponentType {
	case MaterialComponent:
		return resolveNames(category, r.Name, "material", r.ComponentNames,
			names(as.p.Materials, func(m Material) (string, int) { return m.Name, m.ID }))
	case PropertyComponent:
		return resolveNames(category, r.Name, "property", r.ComponentNames,
			names(as.p.Properties, func(p Property) (string, int) { return p.Name, p.ID }))
	}
	var ids []int
	for _, g := range r.ComponentNames {
		idx, err := as.p.Maps.Group.Index(g)
		if err != nil {
			return nil, &ReferenceError{Category: category, Tuple: r.Name, Kind: "capsGroup", Name: g}
		}
		ids = append(ids, as.elementsWhere(func(d *mesh.FeaData) bool { return d.AttrIndex == idx })...)
	}
	return ids, nil
}

// design assembles constraints, responses, equations, the design table and
// optimizer parameters
func (as *assembly) design() error {
	steps := []func() error{
		as.designConstraints,
		as.designResponses,
		as.designEquations,
		as.designTable,
		as.optParams,
		as.designEquationResponses,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (as *assembly) designConstraints() error {
	dcs, err := parseAll("design constraint", as.in.DesignConstraint, designConstraintSchema, as.p.Units,
		func(name string, id int) DesignConstraint { return DesignConstraint{Name: name, ID: id} })
	if err != nil {
		return err
	}
	props := names(as.p.Properties, func(p Property) (string, int) { return p.Name, p.ID })
	for i := range dcs {
		d := &dcs[i]
		groups := d.GroupName
		if len(groups) == 0 {
			groups = []string{d.Name}
		}
		if d.PropertyIDs, err = resolveNames("design constraint", d.Name, "property", groups, props); err != nil {
			return err
		}
	}
	as.p.DesignConstraints = dcs
	return nil
}

func (as *assembly) designResponses() error {
	drs, err := parseAll("design response", as.in.DesignResponse, designResponseSchema, as.p.Units,
		func(name string, id int) DesignResponse { return DesignResponse{Name: name, ID: id} })
	if err != nil {
		return err
	}
	for i := range drs {
		d := &drs[i]
		if d.Attribute == "" {
			continue
		}
		idx, err := as.p.Maps.Response.Index(d.Attribute)
		if err != nil {
			return &ReferenceError{Category: "design response", Tuple: d.Name, Kind: as.p.Maps.Response.Category, Name: d.Attribute}
		}
		d.GridIDs = as.nodesWhere(func(fd *mesh.FeaData) bool { return fd.ResponseIndex == idx })
	}
	as.p.DesignResponses = drs
	return nil
}

// designEquations accepts a JSON object with an "equation" member, a JSON
// string list, or the equation text itself
func (as *assembly) designEquations() error {
	out := make([]DesignEquation, 0, len(as.in.DesignEquation))
	for i, t := range as.in.DesignEquation {
		eq := DesignEquation{Name: t.Name, ID: i + 1}
		switch {
		case record.IsJSON(t.Value):
			schema := []record.Field[DesignEquation]{
				record.Strings("equation", func(d *DesignEquation) *[]string { return &d.Equation }).Required(),
			}
			if err := record.Parse(t.Name, t.Value, &eq, schema, nil); err != nil {
				return inputError("design equation", err)
			}
		case strings.HasPrefix(strings.TrimSpace(t.Value), "["):
			if err := decodeValue("design equation", t, &eq.Equation); err != nil {
				return err
			}
		default:
			eq.Equation = []string{t.Value}
		}
		out = append(out, eq)
	}
	as.p.DesignEquations = out
	return nil
}

func (as *assembly) designTable() error {
	out := make([]DesignConstant, 0, len(as.in.DesignTable))
	for _, t := range as.in.DesignTable {
		c := DesignConstant{Name: t.Name}
		if err := decodeValue("design table", t, &c.Value); err != nil {
			return err
		}
		out = append(out, c)
	}
	as.p.DesignTable = out
	return nil
}

// optParams accepts a number, a number list, a string or a string list;
// anything else is kept as text
func (as *assembly) optParams() error {
	out := make([]OptParam, 0, len(as.in.DesignOptParam))
	for _, t := range as.in.DesignOptParam {
		p := OptParam{Name: t.Name}
		raw := []byte(t.Value)
		var (
			num  float64
			nums []float64
			str  string
			strs []string
		)
		switch {
		case json.Unmarshal(raw, &num) == nil:
			p.Numbers = []float64{num}
		case json.Unmarshal(raw, &nums) == nil:
			p.Numbers = nums
		case json.Unmarshal(raw, &str) == nil:
			p.Text = []string{str}
		case json.Unmarshal(raw, &strs) == nil:
			p.Text = strs
		default:
			p.Text = []string{t.Value}
		}
		out = append(out, p)
	}
	as.p.OptParams = out
	return nil
}

// designEquationResponses may reference each other in any order
func (as *assembly) designEquationResponses() error {
	const category = "design equation response"
	ders, err := parseAll(category, as.in.DesignEquationResponse, designEquationResponseSchema, as.p.Units,
		func(name string, id int) DesignEquationResponse { return DesignEquationResponse{Name: name, ID: id} })
	if err != nil {
		return err
	}
	eqs := names(as.p.DesignEquations, func(d DesignEquation) (string, int) { return d.Name, d.ID })
	table := make([]named, len(as.p.DesignTable))
	for i, c := range as.p.DesignTable {
		table[i] = named{c.Name, i + 1}
	}
	dvs := names(as.p.DesignVariables, func(d DesignVariable) (string, int) { return d.Name, d.ID })
	resps := names(as.p.DesignResponses, func(d DesignResponse) (string, int) { return d.Name, d.ID })
	self := names(ders, func(d DesignEquationResponse) (string, int) { return d.Name, d.ID })

	for i := range ders {
		d := &ders[i]
		ids, err := resolveNames(category, d.Name, "design equation", []string{d.Equation}, eqs)
		if err != nil {
			return err
		}
		d.EquationID = ids[0]
		if d.ConstantIDs, err = resolveNames(category, d.Name, "design table constant", d.Constants, table); err != nil {
			return err
		}
		if d.VariableIDs, err = resolveNames(category, d.Name, "design variable", d.Variables, dvs); err != nil {
			return err
		}
		if d.ResponseIDs, err = resolveNames(category, d.Name, "design response", d.Responses, resps); err != nil {
			return err
		}
		if d.EquationResponseIDs, err = resolveNames(category, d.Name, "design equation response",
			d.EquationResponses, self); err != nil {
			return err
		}
	}
	as.p.DesignEquationResponses = ders
	return nil
}
