package geom

import "gonum.org/v1/gonum/spatial/r3"

// Plate builds a planar rectangular face body in the XY plane with its
// corner at origin. Edges run counter-clockwise: bottom, right, top, left.
func Plate(name string, origin r3.Vec, lx, ly float64) *Body {
	corners := []r3.Vec{
		origin,
		r3.Add(origin, r3.Vec{X: lx}),
		r3.Add(origin, r3.Vec{X: lx, Y: ly}),
		r3.Add(origin, r3.Vec{Y: ly}),
	}
	b := &Body{Name: name, Kind: FaceBody}
	for _, c := range corners {
		b.Nodes = append(b.Nodes, Node{Pos: c})
	}
	for i := 0; i < 4; i++ {
		b.Edges = append(b.Edges, Edge{Nodes: [2]int{i + 1, (i+1)%4 + 1}})
	}
	b.Faces = []Face{{Loops: []Loop{{{1, 1}, {2, 1}, {3, 1}, {4, 1}}}}}
	return b
}

// Polygon builds a planar single-face body from the given boundary points
func Polygon(name string, points ...r3.Vec) *Body {
	b := &Body{Name: name, Kind: FaceBody}
	var loop Loop
	for i, p := range points {
		b.Nodes = append(b.Nodes, Node{Pos: p})
		b.Edges = append(b.Edges, Edge{Nodes: [2]int{i + 1, (i+1)%len(points) + 1}})
		loop = append(loop, LoopEdge{Edge: i + 1, Sense: 1})
	}
	b.Faces = []Face{{Loops: []Loop{loop}}}
	return b
}

// Polyline builds an open wire body through the given points
func Polyline(name string, points ...r3.Vec) *Body {
	b := &Body{Name: name, Kind: WireBody}
	for i, p := range points {
		b.Nodes = append(b.Nodes, Node{Pos: p})
		if i > 0 {
			b.Edges = append(b.Edges, Edge{Nodes: [2]int{i, i + 1}})
		}
	}
	return b
}

// Point builds a node body
func Point(name string, pos r3.Vec) *Body {
	return &Body{Name: name, Kind: NodeBody, Nodes: []Node{{Pos: pos}}}
}
