package fea

import (
	"container/heap"
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexiusacademia/gofea/internal/mesh"
)

// connections synthesizes connection elements for every connect tuple.
// Element ids continue after the highest mesh element id.
func (as *assembly) connections() error {
	specs, err := parseAll("connection", as.in.Connect, connectionSchema, as.p.Units,
		func(name string, id int) connectionSpec {
			return connectionSpec{Weighting: 1, GlueNumMaster: 5}
		})
	if err != nil {
		return err
	}

	next := as.p.Mesh.MaxElementID() + 1
	var out []Connection
	for i, spec := range specs {
		t := as.in.Connect[i]
		src, err := as.p.Maps.Connect.Index(t.Name)
		if err != nil {
			as.log.Warn("No capsConnect attribute matches connection.", "connection", t.Name)
			continue
		}
		sources := as.nodesWhere(func(d *mesh.FeaData) bool { return d.ConnectIndex == src })

		var conns []Connection
		switch {
		case spec.Glue:
			conns, err = as.glue(t.Name, spec, sources)
		case len(spec.GroupName) > 0:
			set, err2 := as.indexSet("connection", t.Name, spec.GroupName, as.p.Maps.Connect)
			if err2 != nil {
				return err2
			}
			dests := as.nodesWhere(func(d *mesh.FeaData) bool { return set[d.ConnectIndex] })
			conns = fanOut(spec, sources, dests)
		default:
			dests := as.nodesWhere(func(d *mesh.FeaData) bool { return d.ConnectLinkIndex == src })
			conns = fanOut(spec, sources, dests)
		}
		if err != nil {
			return err
		}
		if len(conns) == 0 {
			as.log.Warn("Connection produced no elements.", "connection", t.Name, "sources", len(sources))
		}
		for k := range conns {
			conns[k].Name = t.Name
			conns[k].ConnectionID = i + 1
			conns[k].ElementID = next
			next++
		}
		out = append(out, conns...)
	}
	as.p.Connections = out
	return nil
}

func newConnection(spec connectionSpec) Connection {
	return Connection{
		Type:           spec.Type,
		DOFDependent:   spec.DOFDependent,
		ComponentStart: spec.ComponentStart,
		ComponentEnd:   spec.ComponentEnd,
		StiffnessConst: spec.StiffnessConst,
		DampingConst:   spec.DampingConst,
		StressCoeff:    spec.StressCoeff,
		Mass:           spec.Mass,
	}
}

// fanOut pairs sources with destinations. RigidBodyInterpolate collapses
// each source into one element with every destination as a master; other
// types get one element per pair.
func fanOut(spec connectionSpec, sources, dests []int) []Connection {
	if len(dests) == 0 {
		return nil
	}
	var out []Connection
	for _, s := range sources {
		if spec.Type == RigidBodyInterpolate {
			c := newConnection(spec)
			c.Connectivity = [2]int{s, mesh.Unset}
			c.Masters = interpolationMasters(&c, spec, dests)
			out = append(out, c)
			continue
		}
		for _, d := range dests {
			if d == s {
				continue
			}
			c := newConnection(spec)
			c.Connectivity = [2]int{s, d}
			out = append(out, c)
		}
	}
	return out
}

func interpolationMasters(c *Connection, spec connectionSpec, masters []int) []int {
	ids := make([]int, 0, len(masters))
	for _, m := range masters {
		if m == c.Connectivity[0] {
			continue
		}
		ids = append(ids, m)
		c.MasterWeighting = append(c.MasterWeighting, spec.Weighting)
		c.MasterComponent = append(c.MasterComponent, spec.ComponentEnd)
	}
	return ids
}

// glue ties every source to its nearest destinations. A non-positive search
// radius means unbounded.
func (as *assembly) glue(name string, spec connectionSpec, sources []int) ([]Connection, error) {
	if spec.Type != RigidBodyInterpolate {
		return nil, &InputError{Category: "connection", Tuple: name, Field: "glue",
			Err: errors.New("glue is only supported for RigidBodyInterpolate")}
	}
	if spec.GlueNumMaster < 1 {
		return nil, &InputError{Category: "connection", Tuple: name, Field: "glueNumMaster",
			Err: errors.New("must be at least 1")}
	}

	isSource := make(map[int]bool, len(sources))
	for _, s := range sources {
		isSource[s] = true
	}
	var dests []int
	if len(spec.GroupName) > 0 {
		set, err := as.indexSet("connection", name, spec.GroupName, as.p.Maps.Connect)
		if err != nil {
			return nil, err
		}
		dests = as.nodesWhere(func(d *mesh.FeaData) bool { return set[d.ConnectIndex] })
	} else {
		for _, n := range as.p.Mesh.Nodes {
			if !isSource[n.ID] {
				dests = append(dests, n.ID)
			}
		}
	}

	var out []Connection
	for _, s := range sources {
		sn, _ := as.p.Mesh.NodeByID(s)
		masters := nearest(as.p.Mesh, sn.Pos, dests, s, spec.GlueSearchRadius, spec.GlueNumMaster)
		if len(masters) == 0 {
			as.log.Warn("No glue masters within the search radius.", "connection", name, "node", s,
				"radius", spec.GlueSearchRadius)
			continue
		}
		c := newConnection(spec)
		c.Connectivity = [2]int{s, mesh.Unset}
		c.Masters = interpolationMasters(&c, spec, masters)
		out = append(out, c)
	}
	return out, nil
}

// candidate is a destination node at some distance from the slave. order is
// the scan position and breaks distance ties in favor of the first found.
type candidate struct {
	node  int
	dist  float64
	order int
}

// farthestFirst is a max-heap: its root is the candidate evicted next
type farthestFirst []candidate

func (h farthestFirst) Len() int { return len(h) }
func (h farthestFirst) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist > h[j].dist
	}
	return h[i].order > h[j].order
}
func (h farthestFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *farthestFirst) Push(x any)   { *h = append(*h, x.(candidate)) }
func (h *farthestFirst) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

// nearest returns up to k destination ids within radius of p, closest first
func nearest(m *mesh.Mesh, p r3.Vec, dests []int, skip int, radius float64, k int) []int {
	h := make(farthestFirst, 0, k)
	for order, id := range dests {
		if id == skip {
			continue
		}
		n, ok := m.NodeByID(id)
		if !ok {
			continue
		}
		d := r3.Norm(r3.Sub(n.Pos, p))
		if radius > 0 && d > radius {
			continue
		}
		c := candidate{node: id, dist: d, order: order}
		if h.Len() < k {
			heap.Push(&h, c)
			continue
		}
		// ties keep the earlier candidate
		if d < h[0].dist {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}
	ids := make([]int, h.Len())
	for i := len(ids) - 1; i >= 0; i-- {
		ids[i] = heap.Pop(&h).(candidate).node
	}
	return ids
}
