package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/units"
	"github.com/alexiusacademia/gofea/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gofea",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gofea v%s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		fmt.Println("Finite Element Problem Builder")
		fmt.Printf("Unit systems: %s, %s, %s\n", units.SI.Name, units.MMTS.Name, units.US.Name)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
