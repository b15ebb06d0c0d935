package geom

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Reserved attribute names linking CAD entities to engineering records
const (
	AttrGroup            = "capsGroup"
	AttrLoad             = "capsLoad"
	AttrConstraint       = "capsConstraint"
	AttrBound            = "capsBound"
	AttrConnect          = "capsConnect"
	AttrConnectLink      = "capsConnectLink"
	AttrResponse         = "capsResponse"
	AttrIgnore           = "capsIgnore"
	AttrDiscipline       = "capsDiscipline"
	AttrCoordinateSystem = "capsCoordinateSystem"
	AttrQuadMesh         = "capsQuadMesh"
)

// BodyKind classifies a body by its highest-dimension topology
type BodyKind int

const (
	NodeBody BodyKind = iota
	WireBody
	FaceBody
	SheetBody
	SolidBody
)

var bodyKindNames = map[BodyKind]string{
	NodeBody:  "node",
	WireBody:  "wire",
	FaceBody:  "face",
	SheetBody: "sheet",
	SolidBody: "solid",
}

func (k BodyKind) String() string {
	if s, ok := bodyKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("BodyKind(%d)", int(k))
}

// ParseBodyKind converts a kind name ("node", "wire", "face", "sheet", "solid")
func ParseBodyKind(s string) (BodyKind, error) {
	for k, name := range bodyKindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown body kind %q", s)
}

// AttrKind is the value type carried by an attribute
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrReal
	AttrInt
	AttrCSys
)

// Attr is a single named attribute on a body, face, edge or node.
// Coordinate-system attributes carry 12 reals: origin, x-axis, y-axis, z-axis.
type Attr struct {
	Name  string
	Kind  AttrKind
	Str   string
	Reals []float64
	Ints  []int
}

// Attrs is an ordered attribute list; names are unique within a list
type Attrs []Attr

// Get returns the attribute with the given name
func (a Attrs) Get(name string) (Attr, bool) {
	for _, at := range a {
		if at.Name == name {
			return at, true
		}
	}
	return Attr{}, false
}

// String returns the string value of a string attribute
func (a Attrs) String(name string) (string, bool) {
	at, ok := a.Get(name)
	if !ok || at.Kind != AttrString {
		return "", false
	}
	return at.Str, true
}

// Has reports whether the attribute is present regardless of its kind
func (a Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Set replaces or appends an attribute
func (a *Attrs) Set(at Attr) {
	for i := range *a {
		if (*a)[i].Name == at.Name {
			(*a)[i] = at
			return
		}
	}
	*a = append(*a, at)
}

// SetString is a convenience for Set with a string attribute
func (a *Attrs) SetString(name, value string) {
	a.Set(Attr{Name: name, Kind: AttrString, Str: value})
}

// CSys returns the coordinate-system attributes in declaration order
func (a Attrs) CSys() []Attr {
	var out []Attr
	for _, at := range a {
		if at.Kind == AttrCSys {
			out = append(out, at)
		}
	}
	return out
}

// Node is a topological vertex
type Node struct {
	Pos   r3.Vec
	Attrs Attrs
}

// Edge is a straight topological edge between two nodes (1-based node indices)
type Edge struct {
	Nodes      [2]int
	Degenerate bool
	Attrs      Attrs
}

// LoopEdge references an edge of the body (1-based) with its sense in the loop
type LoopEdge struct {
	Edge  int
	Sense int
}

// Loop is a closed sequence of edges bounding a face
type Loop []LoopEdge

// Face is a topological face bounded by one or more loops
type Face struct {
	Loops []Loop
	Attrs Attrs
}

// Body is the data contract consumed from the CAD kernel. Entity indices
// used across the package are 1-based, matching the kernel's convention.
type Body struct {
	Name  string
	Kind  BodyKind
	Attrs Attrs
	Nodes []Node
	Edges []Edge
	Faces []Face
}

// IsStructural reports whether the body participates in the structural model
func (b *Body) IsStructural() bool {
	d, ok := b.Attrs.String(AttrDiscipline)
	if !ok {
		return true
	}
	return strings.EqualFold(d, "Structure")
}

// Ignored reports whether the capsIgnore attribute is present
func Ignored(a Attrs) bool {
	return a.Has(AttrIgnore)
}

// EdgeEnds returns the end positions of an edge (1-based index)
func (b *Body) EdgeEnds(edge int) (r3.Vec, r3.Vec) {
	e := b.Edges[edge-1]
	return b.Nodes[e.Nodes[0]-1].Pos, b.Nodes[e.Nodes[1]-1].Pos
}

// EdgeLength returns the arc length of an edge
func (b *Body) EdgeLength(edge int) float64 {
	p0, p1 := b.EdgeEnds(edge)
	return r3.Norm(r3.Sub(p1, p0))
}

// EdgeDirection returns the unit tangent of an edge in its own orientation.
// Degenerate edges return the zero vector.
func (b *Body) EdgeDirection(edge int) r3.Vec {
	p0, p1 := b.EdgeEnds(edge)
	d := r3.Sub(p1, p0)
	n := r3.Norm(d)
	if n < degenerateLength {
		return r3.Vec{}
	}
	return r3.Scale(1/n, d)
}

// IsDegenerate reports whether the edge is flagged or has no length
func (b *Body) IsDegenerate(edge int) bool {
	return b.Edges[edge-1].Degenerate || b.EdgeLength(edge) < degenerateLength
}

const degenerateLength = 1e-12

// BoundingBox returns the axis-aligned bounds of all nodes
func (b *Body) BoundingBox() (lo, hi r3.Vec) {
	if len(b.Nodes) == 0 {
		return
	}
	lo, hi = b.Nodes[0].Pos, b.Nodes[0].Pos
	for _, n := range b.Nodes[1:] {
		lo = r3.Vec{X: math.Min(lo.X, n.Pos.X), Y: math.Min(lo.Y, n.Pos.Y), Z: math.Min(lo.Z, n.Pos.Z)}
		hi = r3.Vec{X: math.Max(hi.X, n.Pos.X), Y: math.Max(hi.Y, n.Pos.Y), Z: math.Max(hi.Z, n.Pos.Z)}
	}
	return lo, hi
}

// Size is the bounding box diagonal, the reference length for relative tessellation parameters
func (b *Body) Size() float64 {
	lo, hi := b.BoundingBox()
	return r3.Norm(r3.Sub(hi, lo))
}

// NodeEdges returns, for each node (1-based), the edges incident to it
func (b *Body) NodeEdges() [][]int {
	out := make([][]int, len(b.Nodes)+1)
	for i, e := range b.Edges {
		out[e.Nodes[0]] = append(out[e.Nodes[0]], i+1)
		if e.Nodes[1] != e.Nodes[0] {
			out[e.Nodes[1]] = append(out[e.Nodes[1]], i+1)
		}
	}
	return out
}

// EdgeFaces returns, for each edge (1-based), the faces whose loops use it
func (b *Body) EdgeFaces() [][]int {
	out := make([][]int, len(b.Edges)+1)
	for fi, f := range b.Faces {
		for _, loop := range f.Loops {
			for _, le := range loop {
				if n := len(out[le.Edge]); n == 0 || out[le.Edge][n-1] != fi+1 {
					out[le.Edge] = append(out[le.Edge], fi+1)
				}
			}
		}
	}
	return out
}

// LoopNodes returns the loop's start node for each edge, following the edge senses
func (b *Body) LoopNodes(loop Loop) []int {
	nodes := make([]int, len(loop))
	for i, le := range loop {
		e := b.Edges[le.Edge-1]
		if le.Sense < 0 {
			nodes[i] = e.Nodes[1]
		} else {
			nodes[i] = e.Nodes[0]
		}
	}
	return nodes
}
