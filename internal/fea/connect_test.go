package fea

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/alexiusacademia/gofea/internal/attrmap"
	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type testNode struct {
	pos     r3.Vec
	connect int
	link    int
}

// connectInputs builds a mesh of loose nodes plus one line element so
// connection element ids have something to continue from
func connectInputs(nodes ...testNode) Inputs {
	m := &mesh.Mesh{Name: "loose", AnalysisType: mesh.MeshStructure}
	for i, n := range nodes {
		m.Nodes = append(m.Nodes, mesh.Node{
			ID:       i + 1,
			Pos:      n.pos,
			Analysis: &mesh.FeaData{ConnectIndex: n.connect, ConnectLinkIndex: n.link},
		})
	}
	m.Elements = []mesh.Element{{ID: 7, Type: mesh.Line, Connectivity: []int{1, 2}, Analysis: &mesh.FeaData{}}}
	m.UpdateQuickRef()

	maps := attrmap.NewSet()
	maps.Connect.Add("slave")
	maps.Connect.Add("master")
	return Inputs{Mesh: m, Maps: maps}
}

func TestExplicitConnections(t *testing.T) {
	in := connectInputs(
		testNode{pos: r3.Vec{}, connect: 1},
		testNode{pos: r3.Vec{X: 1}, connect: 1},
		testNode{pos: r3.Vec{Y: 1}, connect: 2},
		testNode{pos: r3.Vec{X: 1, Y: 1}, connect: 2},
	)

	t.Run("pairwise", func(t *testing.T) {
		in.Connect = []Tuple{{"slave", `{"connectionType":"Spring","groupName":"master","stiffnessConst":1e3}`}}
		var p Problem
		require.NoError(t, quiet().Assemble(&p, in))
		require.Len(t, p.Connections, 4)
		want := [][2]int{{1, 3}, {1, 4}, {2, 3}, {2, 4}}
		for i, c := range p.Connections {
			assert.Equal(t, want[i], c.Connectivity)
			assert.Equal(t, 8+i, c.ElementID)
			assert.Equal(t, 1, c.ConnectionID)
			assert.Equal(t, Spring, c.Type)
			assert.Equal(t, 1e3, c.StiffnessConst)
		}
	})

	t.Run("interpolating", func(t *testing.T) {
		in.Connect = []Tuple{{"slave", `{"connectionType":"RigidBodyInterpolate","groupName":"master","componentNumberEnd":123}`}}
		var p Problem
		require.NoError(t, quiet().Assemble(&p, in))
		require.Len(t, p.Connections, 2)
		for i, c := range p.Connections {
			assert.Equal(t, i+1, c.Connectivity[0])
			assert.Equal(t, []int{3, 4}, c.Masters)
			assert.Equal(t, []float64{1, 1}, c.MasterWeighting)
			assert.Equal(t, []int{123, 123}, c.MasterComponent)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		in.Connect = []Tuple{{"slave", `{"connectionType":"Spring","groupName":"rib"}`}}
		var p Problem
		err := quiet().Assemble(&p, in)
		assert.ErrorIs(t, err, ErrUnresolved)
		assert.ErrorContains(t, err, `unknown capsConnect "rib"`)
	})
}

func TestConnectLink(t *testing.T) {
	in := connectInputs(
		testNode{pos: r3.Vec{}, connect: 1},
		testNode{pos: r3.Vec{X: 1}},
		testNode{pos: r3.Vec{X: 2}, link: 1},
		testNode{pos: r3.Vec{X: 3}, link: 2},
	)
	in.Connect = []Tuple{{"slave", `{"connectionType":"RigidBody","dofDependent":123456}`}}

	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.Connections, 1)
	assert.Equal(t, [2]int{1, 3}, p.Connections[0].Connectivity)
	assert.Equal(t, 123456, p.Connections[0].DOFDependent)
}

func TestGlue(t *testing.T) {
	nodes := []testNode{
		{pos: r3.Vec{}, connect: 1},
		{pos: r3.Vec{X: 3}, connect: 2},
		{pos: r3.Vec{X: 1}, connect: 2},
		{pos: r3.Vec{Y: 2}, connect: 2},
		{pos: r3.Vec{Y: 1}, connect: 2},
		{pos: r3.Vec{X: 5}, connect: 2},
	}

	tests := []struct {
		name   string
		value  string
		master []int
	}{
		{"closest within radius", `{"glueNumMaster":3,"glueSearchRadius":4}`, []int{3, 5, 4}},
		{"fewer than max", `{"glueNumMaster":10,"glueSearchRadius":2.5}`, []int{3, 5, 4}},
		{"tie keeps first found", `{"glueNumMaster":1,"glueSearchRadius":4}`, []int{3}},
		{"unbounded radius", `{"glueNumMaster":5}`, []int{3, 5, 4, 2, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := connectInputs(nodes...)
			in.Connect = []Tuple{{"slave", `{"connectionType":"RigidBodyInterpolate","glue":true,"groupName":"master",` + tt.value[1:]}}
			var p Problem
			require.NoError(t, quiet().Assemble(&p, in))
			require.Len(t, p.Connections, 1)
			assert.Equal(t, tt.master, p.Connections[0].Masters)
			assert.Equal(t, 1, p.Connections[0].Connectivity[0])
		})
	}
}

func TestGlueWithoutGroupUsesAllOtherNodes(t *testing.T) {
	in := connectInputs(
		testNode{pos: r3.Vec{}, connect: 1},
		testNode{pos: r3.Vec{Z: 2}},
		testNode{pos: r3.Vec{Z: 1}},
	)
	in.Connect = []Tuple{{"slave", `{"connectionType":"RigidBodyInterpolate","glue":true,"glueNumMaster":1}`}}
	var p Problem
	require.NoError(t, quiet().Assemble(&p, in))
	require.Len(t, p.Connections, 1)
	assert.Equal(t, []int{3}, p.Connections[0].Masters)
}

func TestGlueNoMasters(t *testing.T) {
	in := connectInputs(
		testNode{pos: r3.Vec{}, connect: 1},
		testNode{pos: r3.Vec{X: 9}, connect: 2},
	)
	in.Connect = []Tuple{{"slave", `{"connectionType":"RigidBodyInterpolate","glue":true,"groupName":"master","glueSearchRadius":1}`}}

	var buf bytes.Buffer
	a := &Assembler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	var p Problem
	require.NoError(t, a.Assemble(&p, in))
	assert.Empty(t, p.Connections)
	assert.Contains(t, buf.String(), "No glue masters within the search radius.")
}

func TestGlueRequiresInterpolation(t *testing.T) {
	in := connectInputs(testNode{pos: r3.Vec{}, connect: 1}, testNode{pos: r3.Vec{X: 1}, connect: 2})
	in.Connect = []Tuple{{"slave", `{"connectionType":"Spring","glue":true}`}}
	var p Problem
	err := quiet().Assemble(&p, in)
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "glue", ie.Field)
}

func TestNearestOrdersByDistance(t *testing.T) {
	m := &mesh.Mesh{}
	for i, x := range []float64{4, 2, 3, 1, 2} {
		m.Nodes = append(m.Nodes, mesh.Node{ID: i + 1, Pos: r3.Vec{X: x}})
	}
	assert.Equal(t, []int{4, 2, 5}, nearest(m, r3.Vec{}, []int{1, 2, 3, 4, 5}, 0, 0, 3))
	assert.Equal(t, []int{2}, nearest(m, r3.Vec{}, []int{1, 2, 3, 4, 5}, 4, 0, 1), "skipped node is never a master")
}
