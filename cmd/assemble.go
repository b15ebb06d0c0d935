package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/diagram"
	"github.com/alexiusacademia/gofea/internal/fea"
)

var (
	assembleFile string
	assembleTess tessFlags
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build the finite element problem of a model",
	Long: `Mesh a model and assemble its finite element problem: coordinate
systems, materials, properties, constraints, supports, connections,
loads, analyses and design records.

Settings are resolved from flags, then GOFEA_* environment variables
(also read from --env), then the --config run file.

Examples:
  gofea assemble --file wing.json
  gofea assemble -f wing.json --config gofea.hcl --log-level debug`,
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringVarP(&assembleFile, "file", "f", "", "Path to model JSON file [required]")
	assembleCmd.MarkFlagRequired("file")
	assembleTess.register(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd, assembleFile, &assembleTess)
	if err != nil {
		return err
	}
	p, err := s.assemble()
	if err != nil {
		return err
	}
	printProblem(s.model.Name, p)
	return nil
}

func printProblem(name string, p *fea.Problem) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("     FINITE ELEMENT PROBLEM - %s\n", strings.ToUpper(name))
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	if p.Units != nil {
		fmt.Printf("  Unit system: %s\n", p.Units.Name)
		fmt.Println()
	}

	fmt.Print(diagram.DrawMeshSummary(p.Mesh, p.Maps))
	fmt.Println()

	if len(p.CoordSystems) > 0 {
		section("COORDINATE SYSTEMS:")
		w := table("ID", "Name", "Type", "Origin")
		for _, c := range p.CoordSystems {
			fmt.Fprintf(w, "  %d\t%s\t%s\t(%g, %g, %g)\n", c.ID, c.Name, c.Type, c.Origin.X, c.Origin.Y, c.Origin.Z)
		}
		w.Flush()
		fmt.Println()
	}

	if len(p.Materials) > 0 {
		section("MATERIALS:")
		w := table("ID", "Name", "Type", "E", "ν", "ρ")
		for _, m := range p.Materials {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%g\t%g\t%g\n", m.ID, m.Name, m.Type, m.YoungModulus, m.PoissonRatio, m.Density)
		}
		w.Flush()
		fmt.Println()
	}

	if len(p.Properties) > 0 {
		section("PROPERTIES:")
		w := table("ID", "Name", "Type", "Material", "Elements")
		for _, pr := range p.Properties {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%d\n", pr.ID, pr.Name, pr.Type, pr.Material, pr.ElementCount)
		}
		w.Flush()
		fmt.Println()
	}

	if len(p.Constraints)+len(p.Supports) > 0 {
		section("CONSTRAINTS AND SUPPORTS:")
		w := table("ID", "Name", "Kind", "DOF", "Grids")
		for _, c := range p.Constraints {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%d\n", c.ID, c.Name, c.Type, c.DOF, len(c.GridIDs))
		}
		for _, sp := range p.Supports {
			fmt.Fprintf(w, "  %d\t%s\tsupport\t%d\t%d\n", sp.ID, sp.Name, sp.DOF, len(sp.GridIDs))
		}
		w.Flush()
		fmt.Println()
	}

	if len(p.Connections) > 0 {
		section("CONNECTIONS:")
		w := table("Element", "Name", "Type", "Node", "Other", "Masters")
		for _, c := range p.Connections {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%d\t%v\n", c.ElementID, c.Name, c.Type, c.Connectivity[0], c.Connectivity[1], c.Masters)
		}
		w.Flush()
		fmt.Println()
	}

	if len(p.Loads) > 0 {
		section("LOADS:")
		w := table("ID", "Name", "Type", "Grids", "Elements")
		for _, l := range p.Loads {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%d\n", l.ID, l.Name, l.Type, len(l.GridIDs), len(l.ElementIDs))
		}
		w.Flush()
		fmt.Println()
	}

	if len(p.Analyses) > 0 {
		section("ANALYSES:")
		w := table("ID", "Name", "Type", "Loads", "Constraints", "Supports")
		for _, a := range p.Analyses {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%v\t%v\t%v\n", a.ID, a.Name, a.Type, a.LoadIDs, a.ConstraintIDs, a.SupportIDs)
		}
		w.Flush()
		fmt.Println()
	}

	design := []string{}
	add := func(label string, n int) {
		if n > 0 {
			design = append(design, fmt.Sprintf("%-26s %d", label+":", n))
		}
	}
	add("Design variables", len(p.DesignVariables))
	add("Design variable relations", len(p.DesignVariableRelations))
	add("Design constraints", len(p.DesignConstraints))
	add("Design responses", len(p.DesignResponses))
	add("Design equations", len(p.DesignEquations))
	add("Design equation responses", len(p.DesignEquationResponses))
	add("Design table constants", len(p.DesignTable))
	add("Optimization parameters", len(p.OptParams))
	if len(design) > 0 {
		fmt.Print(diagram.DrawSummaryBox("DESIGN", design))
		fmt.Println()
	}
}

func section(title string) {
	fmt.Println(title)
	fmt.Println("───────────────────────────────────────────────────────────────")
}

// table starts a tabwriter with a header row and its underline
func table(cols ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	rule := make([]string, len(cols))
	for i, c := range cols {
		rule[i] = strings.Repeat("─", len([]rune(c)))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(cols, "\t"))
	fmt.Fprintf(w, "  %s\n", strings.Join(rule, "\t"))
	return w
}
