package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/diagram"
	"github.com/alexiusacademia/gofea/internal/report"
	"github.com/alexiusacademia/gofea/internal/results"
)

var (
	resultsFile   string
	resultsOutput string
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Summarize a nodal displacement table",
	Long: `Read a whitespace separated nodal result table and print the
displacement extremes. The header line names the columns:

  # node u1 u2 u3

Examples:
  gofea results --results disp.txt
  gofea results -r disp.txt -o disp.xlsx`,
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().StringVarP(&resultsFile, "results", "r", "", "Path to nodal result table [required]")
	resultsCmd.MarkFlagRequired("results")
	resultsCmd.Flags().StringVarP(&resultsOutput, "output", "o", "", "Also write the table to an xlsx workbook")
}

func runResults(cmd *cobra.Command, args []string) error {
	t, err := results.ParseFile(resultsFile)
	if err != nil {
		return err
	}
	sum := t.DisplacementSummary()

	fmt.Println()
	fmt.Print(diagram.DrawSummaryBox("DISPLACEMENT", []string{
		fmt.Sprintf("Nodes:            %d", len(t.Nodes)),
		fmt.Sprintf("Max |u|:          %.6g (node %d)", sum.MaxMagnitude, sum.NodeAtMax),
	}))
	fmt.Println()

	section("COMPONENT EXTREMES:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Max |u1|:\t%.6g\n", sum.MaxX)
	fmt.Fprintf(w, "  Max |u2|:\t%.6g\n", sum.MaxY)
	fmt.Fprintf(w, "  Max |u3|:\t%.6g\n", sum.MaxZ)
	fmt.Fprintf(w, "  Columns:\t%v\n", t.FieldNames())
	w.Flush()
	fmt.Println()

	if resultsOutput != "" {
		if err := report.Save(resultsOutput, report.ResultSheets(t)); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		fmt.Printf("  ✓ Results written to: %s\n", resultsOutput)
	}
	return nil
}
