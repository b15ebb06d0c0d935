package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/report"
)

var (
	reportFile   string
	reportOutput string
	reportTess   tessFlags
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the assembled problem to an Excel workbook",
	Long: `Assemble a model and write the problem to an xlsx workbook with
one sheet per record category.

Examples:
  gofea report --file wing.json --output wing.xlsx`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFile, "file", "f", "", "Path to model JSON file [required]")
	reportCmd.MarkFlagRequired("file")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "problem.xlsx", "Output workbook")
	reportTess.register(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd, reportFile, &reportTess)
	if err != nil {
		return err
	}
	p, err := s.assemble()
	if err != nil {
		return err
	}
	sheets := report.Sheets(p)
	if err := report.Save(reportOutput, sheets); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("  ✓ %d sheets written to: %s\n", len(sheets), reportOutput)
	return nil
}
