package tess

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gofea/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// TopoType classifies the topological entity a point or cell lies on
type TopoType int

const (
	OnBody TopoType = iota
	OnNode
	OnEdge
	OnFace
)

func (t TopoType) String() string {
	switch t {
	case OnBody:
		return "body"
	case OnNode:
		return "node"
	case OnEdge:
		return "edge"
	case OnFace:
		return "face"
	}
	return fmt.Sprintf("TopoType(%d)", int(t))
}

// Topo references a topological entity (1-based index)
type Topo struct {
	Type  TopoType
	Index int
}

// Point is a tessellation vertex
type Point struct {
	Pos  r3.Vec
	Topo Topo
}

// EdgeTess lists the global point ids of an edge from its first node to its last
type EdgeTess struct {
	Global []int
}

// FaceTess holds the cells of a face as global point ids
type FaceTess struct {
	Tris       [][3]int
	Quads      [][4]int
	Structured bool
}

// Tessellation is the discretization of one body. Global point ids are
// 1-based positions in Points.
type Tessellation struct {
	Body       *geom.Body
	Params     Params
	EdgeCounts []int
	Points     []Point
	Edges      []EdgeTess
	Faces      []FaceTess
}

// NumPoint returns the number of points
func (t *Tessellation) NumPoint() int {
	return len(t.Points)
}

// Point returns the point with the given global id
func (t *Tessellation) Point(global int) Point {
	return t.Points[global-1]
}

func (t *Tessellation) add(pos r3.Vec, topo Topo) int {
	t.Points = append(t.Points, Point{Pos: pos, Topo: topo})
	return len(t.Points)
}

// Tessellate discretizes a body. Points are numbered topology nodes first,
// then edge interiors, then face interiors.
func Tessellate(b *geom.Body, p Params) (*Tessellation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	t := &Tessellation{Body: b, Params: p}

	if b.Kind == geom.NodeBody {
		t.add(b.Nodes[0].Pos, Topo{Type: OnNode, Index: 1})
		return t, nil
	}

	counts, err := EdgePointCounts(b, p)
	if err != nil {
		return nil, err
	}
	if b.Kind == geom.WireBody {
		// Wire edges become single line elements between their end nodes
		for i := range counts {
			counts[i] = 2
		}
	}
	t.EdgeCounts = counts

	t.Points = make([]Point, 0, len(b.Nodes)+sum(counts))
	for i, n := range b.Nodes {
		t.add(n.Pos, Topo{Type: OnNode, Index: i + 1})
	}

	t.Edges = make([]EdgeTess, len(b.Edges))
	for i, e := range b.Edges {
		global := []int{e.Nodes[0]}
		if !b.IsDegenerate(i + 1) {
			p0, p1 := b.EdgeEnds(i + 1)
			n := counts[i]
			for k := 1; k < n-1; k++ {
				s := float64(k) / float64(n-1)
				pos := r3.Add(p0, r3.Scale(s, r3.Sub(p1, p0)))
				global = append(global, t.add(pos, Topo{Type: OnEdge, Index: i + 1}))
			}
		}
		global = append(global, e.Nodes[1])
		t.Edges[i] = EdgeTess{Global: global}
	}

	t.Faces = make([]FaceTess, len(b.Faces))
	for fi := range b.Faces {
		ft, err := t.tessellateFace(fi + 1)
		if err != nil {
			return nil, err
		}
		t.Faces[fi] = ft
	}

	return t, nil
}

// orientedEdge returns the edge's points in loop order
func (t *Tessellation) orientedEdge(le geom.LoopEdge) []int {
	g := t.Edges[le.Edge-1].Global
	if le.Sense >= 0 {
		return g
	}
	out := make([]int, len(g))
	for i, id := range g {
		out[len(g)-1-i] = id
	}
	return out
}

func (t *Tessellation) tessellateFace(face int) (FaceTess, error) {
	f := t.Body.Faces[face-1]
	if len(f.Loops) != 1 {
		return FaceTess{}, fmt.Errorf("body %q face %d: %d loops, only single-loop faces are supported",
			t.Body.Name, face, len(f.Loops))
	}

	if QuadCandidate(t.Body, face, t.Params) {
		if ft, ok := t.structuredQuads(face); ok {
			return ft, nil
		}
	}

	var ring []int
	for _, le := range f.Loops[0] {
		if t.Body.IsDegenerate(le.Edge) {
			continue
		}
		pts := t.orientedEdge(le)
		ring = append(ring, pts[:len(pts)-1]...)
	}
	tris, err := t.earClip(ring)
	if err != nil {
		return FaceTess{}, fmt.Errorf("body %q face %d: %w", t.Body.Name, face, err)
	}
	return FaceTess{Tris: tris}, nil
}

// structuredQuads fills a four-sided face with a transfinite (Coons) grid.
// It reports false when opposite sides do not carry matching point counts.
func (t *Tessellation) structuredQuads(face int) (FaceTess, bool) {
	loop := t.Body.Faces[face-1].Loops[0]
	side := make([][]int, 4)
	for i, le := range loop {
		side[i] = t.orientedEdge(le)
	}
	nu, nv := len(side[0]), len(side[1])
	if len(side[2]) != nu || len(side[3]) != nv {
		return FaceTess{}, false
	}

	grid := make([][]int, nu)
	for i := range grid {
		grid[i] = make([]int, nv)
	}
	for i := 0; i < nu; i++ {
		grid[i][0] = side[0][i]
		grid[i][nv-1] = side[2][nu-1-i]
	}
	for j := 0; j < nv; j++ {
		grid[nu-1][j] = side[1][j]
		grid[0][j] = side[3][nv-1-j]
	}

	pos := func(id int) r3.Vec { return t.Points[id-1].Pos }
	c0, c1 := pos(grid[0][0]), pos(grid[nu-1][0])
	c2, c3 := pos(grid[nu-1][nv-1]), pos(grid[0][nv-1])
	for i := 1; i < nu-1; i++ {
		u := float64(i) / float64(nu-1)
		for j := 1; j < nv-1; j++ {
			v := float64(j) / float64(nv-1)
			p := r3.Add(
				r3.Add(r3.Scale(1-v, pos(grid[i][0])), r3.Scale(v, pos(grid[i][nv-1]))),
				r3.Add(r3.Scale(1-u, pos(grid[0][j])), r3.Scale(u, pos(grid[nu-1][j]))),
			)
			corner := r3.Add(
				r3.Add(r3.Scale((1-u)*(1-v), c0), r3.Scale(u*(1-v), c1)),
				r3.Add(r3.Scale(u*v, c2), r3.Scale((1-u)*v, c3)),
			)
			grid[i][j] = t.add(r3.Sub(p, corner), Topo{Type: OnFace, Index: face})
		}
	}

	ft := FaceTess{Structured: true}
	for j := 0; j < nv-1; j++ {
		for i := 0; i < nu-1; i++ {
			ft.Quads = append(ft.Quads, [4]int{grid[i][j], grid[i+1][j], grid[i+1][j+1], grid[i][j+1]})
		}
	}
	return ft, true
}

// earClip triangulates a simple polygon ring of global ids in its Newell plane
func (t *Tessellation) earClip(ring []int) ([][3]int, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("boundary has %d points", len(ring))
	}

	var normal r3.Vec
	for i := range ring {
		a, b := t.Points[ring[i]-1].Pos, t.Points[ring[(i+1)%len(ring)]-1].Pos
		normal.X += (a.Y - b.Y) * (a.Z + b.Z)
		normal.Y += (a.Z - b.Z) * (a.X + b.X)
		normal.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if r3.Norm(normal) == 0 {
		return nil, fmt.Errorf("boundary encloses no area")
	}
	normal = r3.Unit(normal)
	ref := r3.Vec{X: 1}
	if math.Abs(normal.X) > 0.9 {
		ref = r3.Vec{Y: 1}
	}
	ax := r3.Unit(r3.Cross(ref, normal))
	ay := r3.Cross(normal, ax)

	type v2 struct{ x, y float64 }
	uv := make(map[int]v2, len(ring))
	for _, id := range ring {
		p := t.Points[id-1].Pos
		uv[id] = v2{r3.Dot(p, ax), r3.Dot(p, ay)}
	}
	cross := func(a, b, c int) float64 {
		pa, pb, pc := uv[a], uv[b], uv[c]
		return (pb.x-pa.x)*(pc.y-pa.y) - (pb.y-pa.y)*(pc.x-pa.x)
	}
	scale := 0.0
	for _, p := range uv {
		scale = math.Max(scale, math.Max(math.Abs(p.x), math.Abs(p.y)))
	}
	eps := 1e-12 * math.Max(scale*scale, 1)

	// Points on the candidate diagonal block the ear too
	inside := func(p, a, b, c int) bool {
		return cross(a, b, p) >= -eps && cross(b, c, p) >= -eps && cross(c, a, p) >= -eps
	}

	poly := append([]int(nil), ring...)
	var tris [][3]int
	for len(poly) > 3 {
		found := false
		for i := range poly {
			a, b, c := poly[(i+len(poly)-1)%len(poly)], poly[i], poly[(i+1)%len(poly)]
			if cross(a, b, c) <= eps {
				continue
			}
			ear := true
			for _, p := range poly {
				if p == a || p == b || p == c {
					continue
				}
				if inside(p, a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			poly = append(poly[:i], poly[i+1:]...)
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("triangulation failed with %d points remaining", len(poly))
		}
	}
	if cross(poly[0], poly[1], poly[2]) <= eps {
		return nil, fmt.Errorf("triangulation left a degenerate cell")
	}
	tris = append(tris, [3]int{poly[0], poly[1], poly[2]})
	return tris, nil
}

func sum(v []int) int {
	s := 0
	for _, x := range v {
		s += x
	}
	return s
}
