package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/config"
)

var (
	configFile string
	preset     string
	dataPath   string
	logLevel   string

	t0        float64
	tf        float64
	size      int
	steps     int
	evolve    int
	average   int
	workers   int
	seed      int64
	precision int

	noStore     bool
	metricsFile string
	useTUI      bool
	showPlot    bool
	echo        bool
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "isingsim [output]",
		Short:        "2D Ising model temperature sweep",
		Long:         "Runs cluster-flip Monte Carlo over a temperature ladder and writes T,U,M_rms rows as CSV.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: runSweep,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataPath, "data", config.DefaultDataPath, "run archive (sqlite)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")

	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&t0, "t0", config.DefaultT0, "first temperature")
	f.Float64Var(&tf, "tf", config.DefaultTf, "last temperature")
	f.IntVar(&size, "size", config.DefaultSize, "lattice side length")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of ladder temperatures")
	f.IntVar(&evolve, "evolve", config.DefaultEvolveSteps, "burn-in cluster steps per temperature")
	f.IntVar(&average, "average", config.DefaultAverageSteps, "averaged cluster steps per temperature")
	f.IntVar(&workers, "workers", 0, "worker count (0: one per CPU, minus one)")
	f.Int64Var(&seed, "seed", 0, "base random seed (0: from clock)")
	f.IntVar(&precision, "precision", config.DefaultPrecision, "significant digits in the CSV")
	f.BoolVar(&noStore, "no-store", false, "do not archive the run")
	f.StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file when done")
	f.BoolVar(&useTUI, "tui", false, "show a live progress view")
	f.BoolVar(&showPlot, "plot", false, "plot the curves when done")
	f.BoolVar(&echo, "echo", false, "also print rows to stdout as they are written")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, magnetization and specific heat",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate the critical temperature",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [path]",
		Short: "write an archived run as CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&precision, "precision", config.DefaultPrecision, "significant digits in the CSV")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s T %g..%g  size %d  steps %d  evolve %d  average %d\n",
					name, p.T0, p.Tf, p.Size, p.Steps, p.EvolveSteps, p.AverageSteps)
			}
			return nil
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write an editable config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(listCmd, showCmd, plotCmd, analyzeCmd, exportCSVCmd, presetsCmd, initConfigCmd)
	return rootCmd
}

func writeConfig(cmd *cobra.Command, args []string) error {
	path := "isingsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Apply(p)
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}
