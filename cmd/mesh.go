package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/diagram"
	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/mesh"
)

var (
	meshFile   string
	meshView   string
	meshWidth  int
	meshHeight int
	meshTess   tessFlags
)

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Tessellate and mesh a model",
	Long: `Tessellate the structural bodies of a model and combine them into
one mesh. Prints the element counts per type and per capsGroup.

Examples:
  gofea mesh --file wing.json
  gofea mesh -f wing.json --quad --view xz`,
	RunE: runMesh,
}

func init() {
	rootCmd.AddCommand(meshCmd)

	meshCmd.Flags().StringVarP(&meshFile, "file", "f", "", "Path to model JSON file [required]")
	meshCmd.MarkFlagRequired("file")

	meshCmd.Flags().StringVar(&meshView, "view", "", "Print an ASCII plan view on a plane (xy, xz, yz)")
	meshCmd.Flags().IntVar(&meshWidth, "width", 60, "Plan view width in characters")
	meshCmd.Flags().IntVar(&meshHeight, "height", 20, "Plan view height in characters")
	meshTess.register(meshCmd)
}

func runMesh(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd, meshFile, &meshTess)
	if err != nil {
		return err
	}
	in, err := s.model.Mesh(&fea.Assembler{Logger: s.log})
	if err != nil {
		return fmt.Errorf("meshing %s: %w", s.model.Name, err)
	}
	m := in.Mesh

	fmt.Println()
	fmt.Print(diagram.DrawMeshSummary(m, in.Maps))
	fmt.Println()

	fmt.Println("TESSELLATION:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Relative edge length:\t%g\n", s.model.Params.RelEdgeLength)
	fmt.Fprintf(w, "  Relative sag:\t%g\n", s.model.Params.RelSag)
	fmt.Fprintf(w, "  Max angle:\t%g°\n", s.model.Params.MaxAngle)
	fmt.Fprintf(w, "  Edge points:\t%d to %d\n", s.model.Params.EdgePointMin, s.model.Params.EdgePointMax)
	fmt.Fprintf(w, "  Quad mesh:\t%t\n", s.model.Params.QuadMesh)
	w.Flush()
	fmt.Println()

	if len(m.References) > 1 {
		fmt.Println("COMBINED MESHES:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Body\tNodes\tElements\tNode offset\tElement offset\n")
		fmt.Fprintf(w, "  ────\t─────\t────────\t───────────\t──────────────\n")
		for _, ref := range m.References {
			fmt.Fprintf(w, "  %s\t%d\t%d\t%d\t%d\n", ref.Mesh.Name, len(ref.Mesh.Nodes), len(ref.Mesh.Elements),
				ref.NodeOffset, ref.ElementOffset)
		}
		w.Flush()
		fmt.Println()
	}

	if meshView != "" {
		plane, err := diagram.ParsePlane(meshView)
		if err != nil {
			return err
		}
		fmt.Print(diagram.DrawPlanView(m, plane, constrainedByAttr(m), meshWidth, meshHeight))
		fmt.Println()
	}
	return nil
}

// constrainedByAttr marks the nodes carrying a capsConstraint attribute
func constrainedByAttr(m *mesh.Mesh) map[int]bool {
	set := map[int]bool{}
	for i := range m.Nodes {
		if d := m.Nodes[i].Fea(); d != nil && d.ConstraintIndex != mesh.Unset {
			set[m.Nodes[i].ID] = true
		}
	}
	return set
}
