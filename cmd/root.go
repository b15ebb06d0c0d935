package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gofea/internal/config"
	"github.com/alexiusacademia/gofea/internal/fea"
	"github.com/alexiusacademia/gofea/internal/logging"
	"github.com/alexiusacademia/gofea/internal/model"
	"github.com/alexiusacademia/gofea/internal/version"
)

var (
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "gofea",
	Short: "Finite element problem builder",
	Long: `gofea - Go Finite Element Problem Builder

A CLI tool that turns attributed geometry into a finite element
problem: a structural mesh plus materials, properties, constraints,
supports, loads, connections, analyses and design records.

Model files are JSON documents holding the bodies, their
attributes and the input tuples of every record category.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gofea v%-49s║\n", version.Version)
		fmt.Println("  ║   Go Finite Element Problem Builder                       ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Tessellation and meshing of attributed bodies")
		fmt.Println("    • Material, property, constraint, load and analysis records")
		fmt.Println("    • Connection synthesis, including nearest-node glue")
		fmt.Println("    • Design variables, constraints, responses and equations")
		fmt.Println("    • Mesh plots and Excel reports")
		fmt.Println()
		fmt.Println("  Use 'gofea --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to HCL run file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to env file (ignored when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// tessFlags are the tessellation overrides accepted by the commands that
// mesh a model
type tessFlags struct {
	quad    bool
	edgeMin int
	edgeMax int
	relEdge float64
}

func (f *tessFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.quad, "quad", false, "Mesh faces with quadrilaterals")
	cmd.Flags().IntVar(&f.edgeMin, "edge-min", 0, "Minimum points per edge")
	cmd.Flags().IntVar(&f.edgeMax, "edge-max", 0, "Maximum points per edge")
	cmd.Flags().Float64Var(&f.relEdge, "rel-edge", 0, "Edge length relative to the body size")
}

// apply copies the flags the user set into the overrides
func (f *tessFlags) apply(cmd *cobra.Command, t *config.Tessellation) {
	if cmd.Flags().Changed("quad") {
		t.QuadMesh = &f.quad
	}
	if cmd.Flags().Changed("edge-min") {
		t.EdgePointMin = &f.edgeMin
	}
	if cmd.Flags().Changed("edge-max") {
		t.EdgePointMax = &f.edgeMax
	}
	if cmd.Flags().Changed("rel-edge") {
		t.RelEdgeLength = &f.relEdge
	}
}

// session is a loaded model with its resolved settings
type session struct {
	cfg   *config.Config
	log   *slog.Logger
	model *model.Model
}

// loadSession resolves the settings (flag > env > run file > defaults),
// builds the logger and loads the model with the overrides applied.
// tf may be nil for commands without tessellation flags.
func loadSession(cmd *cobra.Command, modelPath string, tf *tessFlags) (*session, error) {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if tf != nil {
		tf.apply(cmd, &cfg.Tessellation)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	m, err := model.LoadFromFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	m.Params = cfg.Tessellation.Apply(m.Params)
	if err := m.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.UnitSystem != "" {
		m.Inputs.UnitSystem = cfg.UnitSystem
	}
	log.Debug("model loaded", "file", modelPath, "bodies", len(m.Bodies),
		"quad", m.Params.QuadMesh, "relEdgeLength", m.Params.RelEdgeLength)
	return &session{cfg: cfg, log: log, model: m}, nil
}

// assemble meshes the session's model and builds the problem
func (s *session) assemble() (*fea.Problem, error) {
	p, err := s.model.Assemble(&fea.Assembler{Logger: s.log})
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", s.model.Name, err)
	}
	return p, nil
}
