package mesh

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexiusacademia/gofea/internal/attrmap"
	"github.com/alexiusacademia/gofea/internal/geom"
	"github.com/alexiusacademia/gofea/internal/tess"
)

// ErrMissingGroup is returned when an entity that produces elements carries no capsGroup
var ErrMissingGroup = errors.New("missing capsGroup attribute")

// Build converts a tessellation into a mesh and tags it with analysis data.
// Node bodies give one node element, wire bodies one line element per free
// edge and other bodies one element per face cell. Entities carrying
// capsIgnore produce no elements and the nodes they leave unreferenced are
// removed.
func Build(t *tess.Tessellation, maps *attrmap.Set) (*Mesh, error) {
	return (&Builder{}).Build(t, maps)
}

// Builder builds meshes and logs through Logger, or slog.Default when nil
type Builder struct {
	Logger *slog.Logger
}

func (mb *Builder) logger() *slog.Logger {
	if mb.Logger != nil {
		return mb.Logger
	}
	return slog.Default()
}

// Build is the package-level Build with the builder's logger
func (mb *Builder) Build(t *tess.Tessellation, maps *attrmap.Set) (*Mesh, error) {
	b := t.Body
	m := &Mesh{Name: b.Name, AnalysisType: MeshStructure, Source: t}

	m.Nodes = make([]Node, len(t.Points))
	for i, p := range t.Points {
		m.Nodes[i] = Node{ID: i + 1, Pos: p.Pos, Topo: p.Topo}
	}

	add := func(typ ElementType, conn []int, topo tess.Topo) {
		m.Elements = append(m.Elements, Element{
			ID:           len(m.Elements) + 1,
			Type:         typ,
			Connectivity: conn,
			Topo:         topo,
		})
	}

	skipped := false
	switch b.Kind {
	case geom.NodeBody:
		topo := tess.Topo{Type: tess.OnBody}
		if err := requireGroup(b, b.Attrs, topo); err != nil {
			return nil, err
		}
		add(NodeElement, []int{1}, topo)

	case geom.WireBody:
		onFace := b.EdgeFaces()
		for i, et := range t.Edges {
			edge := i + 1
			if b.IsDegenerate(edge) || len(onFace[edge]) > 0 {
				continue
			}
			attrs := b.Edges[i].Attrs
			if geom.Ignored(attrs) {
				skipped = true
				continue
			}
			topo := tess.Topo{Type: tess.OnEdge, Index: edge}
			if err := requireGroup(b, attrs, topo); err != nil {
				return nil, err
			}
			for k := 0; k+1 < len(et.Global); k++ {
				add(Line, []int{et.Global[k], et.Global[k+1]}, topo)
			}
		}

	default:
		for i, ft := range t.Faces {
			attrs := b.Faces[i].Attrs
			if geom.Ignored(attrs) {
				skipped = true
				continue
			}
			topo := tess.Topo{Type: tess.OnFace, Index: i + 1}
			if err := requireGroup(b, attrs, topo); err != nil {
				return nil, err
			}
			for _, tri := range ft.Tris {
				add(Triangle, []int{tri[0], tri[1], tri[2]}, topo)
			}
			for _, q := range ft.Quads {
				add(Quadrilateral, []int{q[0], q[1], q[2], q[3]}, topo)
			}
		}
	}

	if err := mb.SetAnalysisData(m, maps); err != nil {
		return nil, err
	}
	if skipped {
		if n := m.RemoveUnusedNodes(); n > 0 {
			mb.logger().Debug("removed unused nodes", "mesh", m.Name, "count", n)
		}
	}
	m.UpdateQuickRef()
	return m, nil
}

func requireGroup(b *geom.Body, attrs geom.Attrs, topo tess.Topo) error {
	if _, ok := attrs.String(geom.AttrGroup); ok {
		return nil
	}
	if topo.Type == tess.OnBody {
		return fmt.Errorf("body %q: %w", b.Name, ErrMissingGroup)
	}
	return fmt.Errorf("body %q %s %d: %w", b.Name, topo.Type, topo.Index, ErrMissingGroup)
}

// SetAnalysisData tags every node and element with structural data resolved
// from the attributes of its topology. A combined mesh is tagged through its
// references.
func SetAnalysisData(m *Mesh, maps *attrmap.Set) error {
	return (&Builder{}).SetAnalysisData(m, maps)
}

// SetAnalysisData is the package-level SetAnalysisData with the builder's logger
func (mb *Builder) SetAnalysisData(m *Mesh, maps *attrmap.Set) error {
	if m.Source == nil {
		if len(m.References) == 0 {
			return fmt.Errorf("mesh %q has no source topology", m.Name)
		}
		for _, ref := range m.References {
			if err := mb.SetAnalysisData(ref.Mesh, maps); err != nil {
				return err
			}
			copyAnalysis(m, ref)
		}
		return nil
	}

	r := newResolver(m.Source.Body, maps)
	for i := range m.Nodes {
		n := &m.Nodes[i]
		d, err := r.resolve(r.inherited(n.Topo), n.Topo)
		if err != nil {
			return err
		}
		n.Analysis = d
	}
	global := make(map[tess.Topo]bool)
	for i := range m.Elements {
		e := &m.Elements[i]
		d, err := r.resolve([]geom.Attrs{r.own(e.Topo)}, e.Topo)
		if err != nil {
			return err
		}
		if d.CoordID == Unset && !global[e.Topo] {
			global[e.Topo] = true
			mb.logger().Debug("no coordinate system, using global", "mesh", m.Name,
				"entity", e.Topo.Type.String(), "index", e.Topo.Index)
		}
		e.MarkerID = d.AttrIndex
		e.Analysis = d
	}
	return nil
}

func copyAnalysis(m *Mesh, ref Reference) {
	for _, n := range ref.Mesh.Nodes {
		if dst, ok := m.NodeByID(n.ID + ref.NodeOffset); ok {
			dst.Analysis = cloneAnalysis(n.Analysis)
		}
	}
	for _, e := range ref.Mesh.Elements {
		if dst, ok := m.ElementByID(e.ID + ref.ElementOffset); ok {
			dst.Analysis = cloneAnalysis(e.Analysis)
			dst.MarkerID = e.MarkerID
		}
	}
}

func cloneAnalysis(a AnalysisData) AnalysisData {
	if d, ok := a.(*FeaData); ok && d != nil {
		c := *d
		return &c
	}
	return a
}

type resolver struct {
	body      *geom.Body
	maps      *attrmap.Set
	nodeEdges [][]int
	edgeFaces [][]int
}

func newResolver(b *geom.Body, maps *attrmap.Set) *resolver {
	return &resolver{
		body:      b,
		maps:      maps,
		nodeEdges: b.NodeEdges(),
		edgeFaces: b.EdgeFaces(),
	}
}

func (r *resolver) own(topo tess.Topo) geom.Attrs {
	if r.body.Kind == geom.NodeBody {
		return r.body.Attrs
	}
	switch topo.Type {
	case tess.OnNode:
		return r.body.Nodes[topo.Index-1].Attrs
	case tess.OnEdge:
		return r.body.Edges[topo.Index-1].Attrs
	case tess.OnFace:
		return r.body.Faces[topo.Index-1].Attrs
	}
	return r.body.Attrs
}

// inherited lists attribute sources for a point from most to least specific:
// a node falls back to its edges then their faces, an edge point to its faces
func (r *resolver) inherited(topo tess.Topo) []geom.Attrs {
	chain := []geom.Attrs{r.own(topo)}
	if r.body.Kind == geom.NodeBody {
		return chain
	}
	addFaces := func(edge int, seen map[int]bool) {
		for _, f := range r.edgeFaces[edge] {
			if seen[f] {
				continue
			}
			seen[f] = true
			if attrs := r.body.Faces[f-1].Attrs; !geom.Ignored(attrs) {
				chain = append(chain, attrs)
			}
		}
	}
	switch topo.Type {
	case tess.OnNode:
		edges := r.nodeEdges[topo.Index]
		for _, e := range edges {
			if attrs := r.body.Edges[e-1].Attrs; !geom.Ignored(attrs) {
				chain = append(chain, attrs)
			}
		}
		seen := make(map[int]bool)
		for _, e := range edges {
			addFaces(e, seen)
		}
	case tess.OnEdge:
		addFaces(topo.Index, make(map[int]bool))
	}
	return chain
}

func (r *resolver) resolve(chain []geom.Attrs, topo tess.Topo) (*FeaData, error) {
	d := &FeaData{}
	targets := []struct {
		attr string
		m    *attrmap.Map
		dst  *int
	}{
		{geom.AttrGroup, r.maps.Group, &d.AttrIndex},
		{geom.AttrConstraint, r.maps.Constraint, &d.ConstraintIndex},
		{geom.AttrLoad, r.maps.Load, &d.LoadIndex},
		{geom.AttrBound, r.maps.Transfer, &d.TransferIndex},
		{geom.AttrConnect, r.maps.Connect, &d.ConnectIndex},
		{geom.AttrConnectLink, r.maps.Connect, &d.ConnectLinkIndex},
		{geom.AttrResponse, r.maps.Response, &d.ResponseIndex},
		{geom.AttrCoordinateSystem, r.maps.CoordSystem, &d.CoordID},
	}
	for _, t := range targets {
		name, ok := lookup(chain, t.attr)
		if !ok {
			continue
		}
		idx, err := t.m.Index(name)
		if err != nil {
			return nil, fmt.Errorf("body %q %s %d: %w", r.body.Name, topo.Type, topo.Index, err)
		}
		*t.dst = idx
	}
	return d, nil
}

func lookup(chain []geom.Attrs, name string) (string, bool) {
	for _, attrs := range chain {
		if s, ok := attrs.String(name); ok {
			return s, true
		}
	}
	return "", false
}
