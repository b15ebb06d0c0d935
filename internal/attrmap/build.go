package attrmap

import (
	"fmt"

	"github.com/alexiusacademia/gofea/internal/geom"
)

// Set holds one map per semantic category
type Set struct {
	Group       *Map
	Constraint  *Map
	Load        *Map
	Transfer    *Map
	Connect     *Map
	Response    *Map
	CoordSystem *Map
}

// NewSet creates a set of empty maps
func NewSet() *Set {
	return &Set{
		Group:       New(geom.AttrGroup),
		Constraint:  New(geom.AttrConstraint),
		Load:        New(geom.AttrLoad),
		Transfer:    New(geom.AttrBound),
		Connect:     New(geom.AttrConnect),
		Response:    New(geom.AttrResponse),
		CoordSystem: New("coordinate system"),
	}
}

// Build scans the structural bodies and fills every category. Per body the
// scan order is the body itself (node bodies only), faces, edges, nodes.
// capsConnectLink values share the capsConnect index space.
func Build(bodies []*geom.Body) (*Set, error) {
	s := NewSet()
	for _, b := range bodies {
		if !b.IsStructural() {
			continue
		}
		if b.Kind == geom.NodeBody {
			if err := s.scan(b.Attrs, b.Name, "body", 0); err != nil {
				return nil, err
			}
		}
		for i, f := range b.Faces {
			if err := s.scan(f.Attrs, b.Name, "face", i+1); err != nil {
				return nil, err
			}
		}
		for i, e := range b.Edges {
			if err := s.scan(e.Attrs, b.Name, "edge", i+1); err != nil {
				return nil, err
			}
		}
		for i, n := range b.Nodes {
			if err := s.scan(n.Attrs, b.Name, "node", i+1); err != nil {
				return nil, err
			}
		}
		// Coordinate systems are named by their attribute, wherever they sit
		for _, cs := range b.CoordSystems() {
			s.CoordSystem.Add(cs.Name)
		}
	}
	return s, nil
}

func (s *Set) scan(attrs geom.Attrs, body, entity string, index int) error {
	targets := []struct {
		attr string
		m    *Map
	}{
		{geom.AttrGroup, s.Group},
		{geom.AttrConstraint, s.Constraint},
		{geom.AttrLoad, s.Load},
		{geom.AttrBound, s.Transfer},
		{geom.AttrConnect, s.Connect},
		{geom.AttrConnectLink, s.Connect},
		{geom.AttrResponse, s.Response},
	}
	for _, t := range targets {
		at, ok := attrs.Get(t.attr)
		if !ok {
			continue
		}
		if at.Kind != geom.AttrString {
			return fmt.Errorf("body %q %s %d: attribute %s must be a string", body, entity, index, t.attr)
		}
		t.m.Add(at.Str)
	}
	return nil
}
