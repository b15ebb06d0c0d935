// Package diagram draws meshes: plots exported through gonum/plot and
// plain-text views for the terminal.
package diagram

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/mesh"
)

// Plane is the projection plane of a view
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXZ:
		return "XZ"
	case PlaneYZ:
		return "YZ"
	}
	return "XY"
}

// ParsePlane converts "xy", "xz" or "yz"
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy", "":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "yz":
		return PlaneYZ, nil
	}
	return 0, fmt.Errorf("unknown plane %q (want xy, xz or yz)", s)
}

// Project returns the in-plane coordinates of v
func (p Plane) Project(v r3.Vec) (u, w float64) {
	switch p {
	case PlaneXZ:
		return v.X, v.Z
	case PlaneYZ:
		return v.Y, v.Z
	}
	return v.X, v.Y
}

func (p Plane) axes() (string, string) {
	s := p.String()
	return s[:1], s[1:]
}

func bounds(m *mesh.Mesh, plane Plane) (minU, maxU, minV, maxV float64) {
	minU, minV = math.Inf(1), math.Inf(1)
	maxU, maxV = math.Inf(-1), math.Inf(-1)
	for _, n := range m.Nodes {
		u, v := plane.Project(n.Pos)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}
	return minU, maxU, minV, maxV
}

// ExportMesh draws the problem's mesh, constrained nodes and connection
// elements projected on plane. The format follows the file extension
// (png, svg, pdf).
func ExportMesh(p *fea.Problem, plane Plane, filename string) error {
	pl, err := meshPlot(p, plane)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return pl.Save(8*vg.Inch, 6*vg.Inch, filename)
}

func meshPlot(p *fea.Problem, plane Plane) (*plot.Plot, error) {
	m := p.Mesh
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Mesh %s (%d nodes, %d elements)", m.Name, len(m.Nodes), len(m.Elements))
	pl.X.Label.Text, pl.Y.Label.Text = plane.axes()

	at := func(id int) (plotter.XY, bool) {
		n, ok := m.NodeByID(id)
		if !ok {
			return plotter.XY{}, false
		}
		u, v := plane.Project(n.Pos)
		return plotter.XY{X: u, Y: v}, true
	}

	for _, e := range m.Elements {
		if e.Type == mesh.NodeElement {
			continue
		}
		outline := make(plotter.XYs, 0, len(e.Connectivity)+1)
		for _, id := range e.Connectivity {
			xy, ok := at(id)
			if !ok {
				return nil, fmt.Errorf("element %d references missing node %d", e.ID, id)
			}
			outline = append(outline, xy)
		}
		if e.Type != mesh.Line {
			outline = append(outline, outline[0])
		}
		line, err := plotter.NewLine(outline)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(0.75)
		line.LineStyle.Color = color.RGBA{R: 40, G: 40, B: 40, A: 255}
		pl.Add(line)
	}

	var nodes plotter.XYs
	for _, n := range m.Nodes {
		u, v := plane.Project(n.Pos)
		nodes = append(nodes, plotter.XY{X: u, Y: v})
	}
	scatter, err := plotter.NewScatter(nodes)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	pl.Add(scatter)

	var fixed plotter.XYs
	for _, id := range constrainedNodes(p) {
		if xy, ok := at(id); ok {
			fixed = append(fixed, xy)
		}
	}
	if len(fixed) > 0 {
		s, err := plotter.NewScatter(fixed)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Shape = draw.TriangleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255}
		pl.Add(s)
		pl.Legend.Add("constrained", s)
	}

	for _, c := range p.Connections {
		src, ok := at(c.Connectivity[0])
		if !ok {
			continue
		}
		others := c.Masters
		if c.Connectivity[1] != mesh.Unset {
			others = []int{c.Connectivity[1]}
		}
		for _, id := range others {
			dst, ok := at(id)
			if !ok {
				continue
			}
			l, err := plotter.NewLine(plotter.XYs{src, dst})
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = color.RGBA{R: 255, G: 165, B: 0, A: 255}
			l.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
			pl.Add(l)
		}
	}
	return pl, nil
}

// constrainedNodes lists the grid ids of every constraint and support
func constrainedNodes(p *fea.Problem) []int {
	var ids []int
	for _, c := range p.Constraints {
		ids = append(ids, c.GridIDs...)
	}
	for _, s := range p.Supports {
		ids = append(ids, s.GridIDs...)
	}
	return ids
}

// Constrained returns constrainedNodes as a set for DrawPlanView
func Constrained(p *fea.Problem) map[int]bool {
	set := map[int]bool{}
	for _, id := range constrainedNodes(p) {
		set[id] = true
	}
	return set
}
