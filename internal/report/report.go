// Package report writes an assembled problem to an Excel workbook, one
// sheet per record category.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/alexiusacademia/gofea/internal/results"
)

// Sheet is one table of the workbook
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Sheets lays the problem out as tables. Empty categories are skipped,
// except Summary, Nodes and Elements.
func Sheets(p *fea.Problem) []Sheet {
	out := []Sheet{summary(p), nodes(p.Mesh), elements(p.Mesh)}

	add := func(s Sheet) {
		if len(s.Rows) > 0 {
			out = append(out, s)
		}
	}

	mats := Sheet{Name: "Materials", Header: []string{"ID", "Name", "Type", "E", "G", "nu", "rho"}}
	for _, m := range p.Materials {
		mats.Rows = append(mats.Rows, []any{m.ID, m.Name, m.Type.String(), m.YoungModulus, m.ShearModulus, m.PoissonRatio, m.Density})
	}
	add(mats)

	props := Sheet{Name: "Properties", Header: []string{"ID", "Name", "Type", "Material ID", "Thickness", "Area", "Elements"}}
	for _, pr := range p.Properties {
		props.Rows = append(props.Rows, []any{pr.ID, pr.Name, pr.Type.String(), pr.MaterialID, pr.MembraneThickness, pr.CrossSecArea, pr.ElementCount})
	}
	add(props)

	cons := Sheet{Name: "Constraints", Header: []string{"ID", "Name", "Kind", "Type", "DOF", "Grids"}}
	for _, c := range p.Constraints {
		cons.Rows = append(cons.Rows, []any{c.ID, c.Name, "constraint", c.Type.String(), c.DOF, ids(c.GridIDs)})
	}
	for _, s := range p.Supports {
		cons.Rows = append(cons.Rows, []any{s.ID, s.Name, "support", "", s.DOF, ids(s.GridIDs)})
	}
	add(cons)

	loads := Sheet{Name: "Loads", Header: []string{"ID", "Name", "Type", "Grids", "Elements", "Force", "Pressure"}}
	for _, l := range p.Loads {
		loads.Rows = append(loads.Rows, []any{l.ID, l.Name, l.Type.String(), ids(l.GridIDs), ids(l.ElementIDs), l.ForceScaleFactor, l.PressureForce})
	}
	add(loads)

	conns := Sheet{Name: "Connections", Header: []string{"Element ID", "Name", "Type", "Node", "Other", "Masters"}}
	for _, c := range p.Connections {
		conns.Rows = append(conns.Rows, []any{c.ElementID, c.Name, c.Type.String(), c.Connectivity[0], c.Connectivity[1], ids(c.Masters)})
	}
	add(conns)

	an := Sheet{Name: "Analyses", Header: []string{"ID", "Name", "Type", "Loads", "Constraints", "Supports", "Design constraints"}}
	for _, a := range p.Analyses {
		an.Rows = append(an.Rows, []any{a.ID, a.Name, a.Type.String(), ids(a.LoadIDs), ids(a.ConstraintIDs), ids(a.SupportIDs), ids(a.DesignConstraintIDs)})
	}
	add(an)

	dvs := Sheet{Name: "Design Variables", Header: []string{"ID", "Name", "Initial", "Lower", "Upper", "Materials", "Properties", "Independent"}}
	for _, d := range p.DesignVariables {
		dvs.Rows = append(dvs.Rows, []any{d.ID, d.Name, d.InitialValue, d.LowerBound, d.UpperBound, ids(d.MaterialIDs), ids(d.PropertyIDs), ids(d.IndependentVariableID)})
	}
	add(dvs)
	return out
}

func summary(p *fea.Problem) Sheet {
	s := Sheet{Name: "Summary", Header: []string{"Item", "Value"}}
	row := func(k string, v any) { s.Rows = append(s.Rows, []any{k, v}) }
	if p.Units != nil {
		row("Unit system", p.Units.Name)
	}
	row("Nodes", len(p.Mesh.Nodes))
	for _, t := range mesh.ElementTypes {
		if n := p.Mesh.QuickRef.Count[t]; n > 0 {
			row(t.String()+" elements", n)
		}
	}
	row("Materials", len(p.Materials))
	row("Properties", len(p.Properties))
	row("Constraints", len(p.Constraints))
	row("Supports", len(p.Supports))
	row("Loads", len(p.Loads))
	row("Connections", len(p.Connections))
	row("Analyses", len(p.Analyses))
	return s
}

func nodes(m *mesh.Mesh) Sheet {
	s := Sheet{Name: "Nodes", Header: []string{"ID", "X", "Y", "Z", "Group", "Constraint", "Load", "Connect"}}
	for _, n := range m.Nodes {
		r := []any{n.ID, n.Pos.X, n.Pos.Y, n.Pos.Z}
		if d := n.Fea(); d != nil {
			r = append(r, d.AttrIndex, d.ConstraintIndex, d.LoadIndex, d.ConnectIndex)
		}
		s.Rows = append(s.Rows, r)
	}
	return s
}

func elements(m *mesh.Mesh) Sheet {
	s := Sheet{Name: "Elements", Header: []string{"ID", "Type", "Connectivity", "Group", "Property ID", "Subtype"}}
	for _, e := range m.Elements {
		r := []any{e.ID, e.Type.String(), ids(e.Connectivity)}
		if d := e.Fea(); d != nil {
			r = append(r, d.AttrIndex, d.PropertyID, d.SubType.String())
		}
		s.Rows = append(s.Rows, r)
	}
	return s
}

// ResultSheets lays a result table out: the displacement summary and the
// raw nodal rows
func ResultSheets(t *results.Table) []Sheet {
	sum := t.DisplacementSummary()
	s := Sheet{Name: "Summary", Header: []string{"Item", "Value"}, Rows: [][]any{
		{"Max displacement", sum.MaxMagnitude},
		{"Node at max", sum.NodeAtMax},
		{"Max |u1|", sum.MaxX},
		{"Max |u2|", sum.MaxY},
		{"Max |u3|", sum.MaxZ},
	}}
	raw := Sheet{Name: "Nodal", Header: append([]string{"node"}, t.Columns...)}
	for i, id := range t.Nodes {
		r := []any{id}
		for _, v := range t.Rows[i] {
			r = append(r, v)
		}
		raw.Rows = append(raw.Rows, r)
	}
	return []Sheet{s, raw}
}

func ids(v []int) string {
	parts := make([]string, len(v))
	for i, id := range v {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " ")
}

// Workbook builds a workbook from the sheets. The caller closes it.
func Workbook(sheets []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, err
		}

		header := make([]any, len(s.Header))
		for k, h := range s.Header {
			header[k] = h
		}
		if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(s.Name, 1, 1, bold); err != nil {
			return nil, err
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return nil, fmt.Errorf("sheet %s row %d: %w", s.Name, r+2, err)
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write writes the sheets as an xlsx document to w
func Write(w io.Writer, sheets []Sheet) error {
	f, err := Workbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Save writes the sheets to path
func Save(path string, sheets []Sheet) error {
	f, err := Workbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
