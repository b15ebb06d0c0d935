// Package mesh holds the analysis mesh built from a body tessellation: nodes,
// elements, their structural analysis payload and the bookkeeping needed to
// combine several body meshes into one problem mesh.
package mesh

import (
	"errors"
	"fmt"

	"github.com/alexiusacademia/gofea/internal/tess"
	"gonum.org/v1/gonum/spatial/r3"
)

// Unset marks an index in FeaData that no attribute resolved
const Unset = 0

// ElementType is the cell shape of an element
type ElementType int

const (
	UnknownElement ElementType = iota
	NodeElement
	Line
	Triangle
	Triangle6
	Quadrilateral
	Quadrilateral8
)

// NumNodes returns the connectivity length for the type
func (t ElementType) NumNodes() int {
	switch t {
	case NodeElement:
		return 1
	case Line:
		return 2
	case Triangle:
		return 3
	case Triangle6:
		return 6
	case Quadrilateral:
		return 4
	case Quadrilateral8:
		return 8
	}
	return 0
}

func (t ElementType) String() string {
	switch t {
	case NodeElement:
		return "Node"
	case Line:
		return "Line"
	case Triangle:
		return "Triangle"
	case Triangle6:
		return "Triangle_6"
	case Quadrilateral:
		return "Quadrilateral"
	case Quadrilateral8:
		return "Quadrilateral_8"
	}
	return fmt.Sprintf("ElementType(%d)", int(t))
}

// ElementTypes lists every concrete type in reporting order
var ElementTypes = []ElementType{NodeElement, Line, Triangle, Triangle6, Quadrilateral, Quadrilateral8}

// ElementSubType refines an element from the property bound to it
type ElementSubType int

const (
	SubTypeNone ElementSubType = iota
	ConcentratedMassElement
	BarElement
	BeamElement
	ShellElement
	MembraneElement
	ShearElement
)

func (s ElementSubType) String() string {
	switch s {
	case SubTypeNone:
		return "None"
	case ConcentratedMassElement:
		return "ConcentratedMass"
	case BarElement:
		return "Bar"
	case BeamElement:
		return "Beam"
	case ShellElement:
		return "Shell"
	case MembraneElement:
		return "Membrane"
	case ShearElement:
		return "Shear"
	}
	return fmt.Sprintf("ElementSubType(%d)", int(s))
}

// AnalysisType names the discipline of a mesh's analysis payload
type AnalysisType int

const (
	UnknownAnalysis AnalysisType = iota
	MeshStructure
)

func (a AnalysisType) String() string {
	if a == MeshStructure {
		return "MeshStructure"
	}
	return "Unknown"
}

// AnalysisData is the per-node and per-element payload. The only variant is
// *FeaData; the unexported method keeps the set closed.
type AnalysisData interface {
	AnalysisType() AnalysisType
	isAnalysisData()
}

// FeaData is the structural payload. Indices are 1-based into the matching
// attribute map and Unset when nothing resolved.
type FeaData struct {
	PropertyID       int
	AttrIndex        int
	CoordID          int
	ConstraintIndex  int
	LoadIndex        int
	TransferIndex    int
	ConnectIndex     int
	ConnectLinkIndex int
	ResponseIndex    int
	SubType          ElementSubType
}

func (*FeaData) AnalysisType() AnalysisType { return MeshStructure }
func (*FeaData) isAnalysisData() {}

// Node is a mesh vertex
type Node struct {
	ID       int
	Pos      r3.Vec
	Topo     tess.Topo
	Analysis AnalysisData
}

// Fea returns the node's structural payload, nil if it has none
func (n *Node) Fea() *FeaData {
	d, _ := n.Analysis.(*FeaData)
	return d
}

// Element is a mesh cell referencing nodes by id
type Element struct {
	ID           int
	Type         ElementType
	Connectivity []int
	MarkerID     int
	Topo         tess.Topo
	Analysis     AnalysisData
}

// Fea returns the element's structural payload, nil if it has none
func (e *Element) Fea() *FeaData {
	d, _ := e.Analysis.(*FeaData)
	return d
}

// Reference records a mesh folded into a combined mesh and the id offsets
// applied to its nodes and elements
type Reference struct {
	Mesh          *Mesh
	NodeOffset    int
	ElementOffset int
}

// Mesh is a set of nodes and elements. Ids are unique within the mesh but
// need not be contiguous after unused nodes have been removed.
type Mesh struct {
	Name         string
	AnalysisType AnalysisType
	Nodes        []Node
	Elements     []Element
	QuickRef     QuickRef
	References   []Reference
	Source       *tess.Tessellation

	nodeIndex    map[int]int
	elementIndex map[int]int
}

// NodeByID returns the node with the given id
func (m *Mesh) NodeByID(id int) (*Node, bool) {
	if m.nodeIndex == nil || len(m.nodeIndex) != len(m.Nodes) {
		m.nodeIndex = make(map[int]int, len(m.Nodes))
		for i, n := range m.Nodes {
			m.nodeIndex[n.ID] = i
		}
	}
	i, ok := m.nodeIndex[id]
	if !ok || i >= len(m.Nodes) || m.Nodes[i].ID != id {
		return nil, false
	}
	return &m.Nodes[i], true
}

// ElementByID returns the element with the given id
func (m *Mesh) ElementByID(id int) (*Element, bool) {
	if m.elementIndex == nil || len(m.elementIndex) != len(m.Elements) {
		m.elementIndex = make(map[int]int, len(m.Elements))
		for i, e := range m.Elements {
			m.elementIndex[e.ID] = i
		}
	}
	i, ok := m.elementIndex[id]
	if !ok || i >= len(m.Elements) || m.Elements[i].ID != id {
		return nil, false
	}
	return &m.Elements[i], true
}

// Reindex drops the id lookup tables after Nodes or Elements were edited in place
func (m *Mesh) Reindex() {
	m.nodeIndex = nil
	m.elementIndex = nil
}

// MaxNodeID returns the largest node id, 0 for an empty mesh
func (m *Mesh) MaxNodeID() int {
	top := 0
	for _, n := range m.Nodes {
		if n.ID > top {
			top = n.ID
		}
	}
	return top
}

// MaxElementID returns the largest element id, 0 for an empty mesh
func (m *Mesh) MaxElementID() int {
	top := 0
	for _, e := range m.Elements {
		if e.ID > top {
			top = e.ID
		}
	}
	return top
}

// Validate checks id uniqueness and connectivity
func (m *Mesh) Validate() error {
	var errs []error
	nodes := make(map[int]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		if n.ID <= 0 {
			errs = append(errs, fmt.Errorf("mesh %q: node id %d is not positive", m.Name, n.ID))
		}
		if nodes[n.ID] {
			errs = append(errs, fmt.Errorf("mesh %q: duplicate node id %d", m.Name, n.ID))
		}
		nodes[n.ID] = true
	}
	elements := make(map[int]bool, len(m.Elements))
	for _, e := range m.Elements {
		if elements[e.ID] {
			errs = append(errs, fmt.Errorf("mesh %q: duplicate element id %d", m.Name, e.ID))
		}
		elements[e.ID] = true
		if len(e.Connectivity) != e.Type.NumNodes() {
			errs = append(errs, fmt.Errorf("mesh %q: element %d is a %s with %d nodes",
				m.Name, e.ID, e.Type, len(e.Connectivity)))
		}
		for _, id := range e.Connectivity {
			if !nodes[id] {
				errs = append(errs, fmt.Errorf("mesh %q: element %d references missing node %d", m.Name, e.ID, id))
			}
		}
	}
	return errors.Join(errs...)
}

// RemoveUnusedNodes drops nodes no element references. Remaining ids are kept.
func (m *Mesh) RemoveUnusedNodes() int {
	used := make(map[int]bool, len(m.Nodes))
	for _, e := range m.Elements {
		for _, id := range e.Connectivity {
			used[id] = true
		}
	}
	kept := m.Nodes[:0]
	for _, n := range m.Nodes {
		if used[n.ID] {
			kept = append(kept, n)
		}
	}
	removed := len(m.Nodes) - len(kept)
	m.Nodes = kept
	m.nodeIndex = nil
	return removed
}
