package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/diagram"
)

var (
	plotFile   string
	plotOutput string
	plotPlane  string
	plotTess   tessFlags
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Export a picture of the assembled mesh",
	Long: `Assemble a model and draw its mesh projected on a plane. Constrained
nodes are marked with triangles and connection elements are dashed.
The image format follows the output extension (png, svg, pdf).

Examples:
  gofea plot --file wing.json --output wing.png
  gofea plot -f wing.json -o out/wing.svg --plane xz`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringVarP(&plotFile, "file", "f", "", "Path to model JSON file [required]")
	plotCmd.MarkFlagRequired("file")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "mesh.png", "Output image (png, svg, pdf)")
	plotCmd.Flags().StringVar(&plotPlane, "plane", "xy", "Projection plane (xy, xz, yz)")
	plotTess.register(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	plane, err := diagram.ParsePlane(plotPlane)
	if err != nil {
		return err
	}
	s, err := loadSession(cmd, plotFile, &plotTess)
	if err != nil {
		return err
	}
	p, err := s.assemble()
	if err != nil {
		return err
	}
	if err := diagram.ExportMesh(p, plane, plotOutput); err != nil {
		return fmt.Errorf("exporting mesh: %w", err)
	}
	fmt.Printf("  ✓ Mesh exported to: %s\n", plotOutput)
	return nil
}
