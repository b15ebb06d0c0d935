package geom

import "fmt"

// ValidationError represents a topology validation error
type ValidationError struct {
	Body   string
	Entity string
	Index  int
	msg    string
}

func (e *ValidationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("body %q: %s", e.Body, e.msg)
	}
	return fmt.Sprintf("body %q: %s %d: %s", e.Body, e.Entity, e.Index, e.msg)
}

// Validate checks that the body's topology references are consistent
func (b *Body) Validate() error {
	if len(b.Nodes) == 0 {
		return &ValidationError{Body: b.Name, msg: "body has no nodes"}
	}
	switch b.Kind {
	case NodeBody:
		if len(b.Nodes) != 1 || len(b.Edges) != 0 || len(b.Faces) != 0 {
			return &ValidationError{Body: b.Name, msg: "node body must have exactly one node and no edges or faces"}
		}
	case WireBody:
		if len(b.Edges) == 0 {
			return &ValidationError{Body: b.Name, msg: "wire body has no edges"}
		}
	default:
		if len(b.Faces) == 0 {
			return &ValidationError{Body: b.Name, msg: fmt.Sprintf("%s body has no faces", b.Kind)}
		}
	}

	for i, e := range b.Edges {
		for _, n := range e.Nodes {
			if n < 1 || n > len(b.Nodes) {
				return &ValidationError{Body: b.Name, Entity: "edge", Index: i + 1,
					msg: fmt.Sprintf("node %d out of range [1, %d]", n, len(b.Nodes))}
			}
		}
	}

	for i, f := range b.Faces {
		if len(f.Loops) == 0 {
			return &ValidationError{Body: b.Name, Entity: "face", Index: i + 1, msg: "face has no loops"}
		}
		for _, loop := range f.Loops {
			if len(loop) == 0 {
				return &ValidationError{Body: b.Name, Entity: "face", Index: i + 1, msg: "empty loop"}
			}
			for _, le := range loop {
				if le.Edge < 1 || le.Edge > len(b.Edges) {
					return &ValidationError{Body: b.Name, Entity: "face", Index: i + 1,
						msg: fmt.Sprintf("loop edge %d out of range [1, %d]", le.Edge, len(b.Edges))}
				}
				if le.Sense != 1 && le.Sense != -1 {
					return &ValidationError{Body: b.Name, Entity: "face", Index: i + 1,
						msg: fmt.Sprintf("loop edge %d has invalid sense %d", le.Edge, le.Sense)}
				}
			}
			// Loops must close: the end of each edge is the start of the next
			nodes := b.LoopNodes(loop)
			for j, le := range loop {
				e := b.Edges[le.Edge-1]
				end := e.Nodes[1]
				if le.Sense < 0 {
					end = e.Nodes[0]
				}
				if end != nodes[(j+1)%len(loop)] {
					return &ValidationError{Body: b.Name, Entity: "face", Index: i + 1,
						msg: fmt.Sprintf("loop is not closed at edge %d", le.Edge)}
				}
			}
		}
	}

	for _, at := range b.CoordSystems() {
		if len(at.Reals) != 12 {
			return &ValidationError{Body: b.Name,
				msg: fmt.Sprintf("coordinate system %q must have 12 values, got %d", at.Name, len(at.Reals))}
		}
	}

	return nil
}

// CoordSystems returns every coordinate-system attribute on the body in scan
// order: body, faces, edges, nodes.
func (b *Body) CoordSystems() []Attr {
	out := b.Attrs.CSys()
	for _, f := range b.Faces {
		out = append(out, f.Attrs.CSys()...)
	}
	for _, e := range b.Edges {
		out = append(out, e.Attrs.CSys()...)
	}
	for _, n := range b.Nodes {
		out = append(out, n.Attrs.CSys()...)
	}
	return out
}
