package mesh

// Combine concatenates meshes into one. Node and element ids of each mesh are
// shifted past the largest ids of the meshes before it; connectivity follows.
// The offsets are kept in References so analysis data can be re-tagged later.
func Combine(name string, meshes ...*Mesh) *Mesh {
	out := &Mesh{Name: name, AnalysisType: MeshStructure}
	nodeOffset, elementOffset := 0, 0
	for _, m := range meshes {
		for _, n := range m.Nodes {
			n.ID += nodeOffset
			n.Analysis = cloneAnalysis(n.Analysis)
			out.Nodes = append(out.Nodes, n)
		}
		for _, e := range m.Elements {
			conn := make([]int, len(e.Connectivity))
			for i, id := range e.Connectivity {
				conn[i] = id + nodeOffset
			}
			e.ID += elementOffset
			e.Connectivity = conn
			e.Analysis = cloneAnalysis(e.Analysis)
			out.Elements = append(out.Elements, e)
		}
		out.References = append(out.References, Reference{
			Mesh:          m,
			NodeOffset:    nodeOffset,
			ElementOffset: elementOffset,
		})
		nodeOffset += m.MaxNodeID()
		elementOffset += m.MaxElementID()
	}
	out.UpdateQuickRef()
	return out
}
