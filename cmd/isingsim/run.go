package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/metrics"
	"github.com/san-kum/isingsim/internal/storage"
	"github.com/san-kum/isingsim/internal/sweep"
	"github.com/san-kum/isingsim/internal/viz"
)

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Apply(p)
	}

	if configFile != "" {
		fileCfg, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("tf") {
		cfg.Tf = tf
	}
	if flags.Changed("size") {
		cfg.Size = size
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("evolve") {
		cfg.EvolveSteps = evolve
	}
	if flags.Changed("average") {
		cfg.AverageSteps = average
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("data") {
		cfg.DataPath = dataPath
	}
	if len(args) > 0 {
		cfg.Output = args[0]
	}

	return cfg, cfg.Validate()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return err
	}
	cfg.ResolveSeed()

	temps, err := sweep.Ladder(cfg.T0, cfg.Tf, cfg.Steps)
	if err != nil {
		return err
	}

	sched, err := sweep.New(sweep.Options{
		Size:         cfg.Size,
		EvolveSteps:  cfg.EvolveSteps,
		AverageSteps: cfg.AverageSteps,
		Workers:      cfg.Workers,
		Seed:         cfg.Seed,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	// open the output before any simulation work
	out, err := export.Create(cfg.Output, cfg.Precision)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	nworkers := sched.Workers(len(temps))
	collector.SetWorkers(nworkers)
	sched.AddObserver(collector)

	log.WithField("seed", cfg.Seed).Infof("sweeping %d temperatures on a %dx%d lattice with %d workers",
		len(temps), cfg.Size, cfg.Size, nworkers)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var sink sweep.Sink = out
	if echo && !useTUI {
		sink = export.Tee(out, export.NewCSVSink(cmd.OutOrStdout(), cfg.Precision))
	}

	start := time.Now()
	var results []sweep.Result
	if useTUI {
		results, err = runWithTUI(ctx, sched, temps, cfg.Size, sink)
	} else {
		results, err = sched.Run(ctx, temps, sink)
	}
	elapsed := time.Since(start)

	err = finishOutput(out, err)

	// a failed sink still leaves a complete result set worth keeping
	complete := len(results) == len(temps)
	if (err == nil || errors.Is(err, sweep.ErrSink)) && complete {
		if !noStore {
			if id, serr := archive(cmd.Context(), cfg, nworkers, elapsed, results); serr != nil {
				log.WithError(serr).Error("failed to archive run")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "run id: %s\n", id)
			}
		}
		printSummary(cmd.OutOrStdout(), cfg, nworkers, elapsed, results)
		if showPlot {
			fmt.Fprintln(cmd.OutOrStdout(), viz.PlotSweep(results, cfg.Size))
		}
	}

	if metricsFile != "" {
		if merr := collector.WriteTextfile(metricsFile); merr != nil {
			log.WithError(merr).Warn("failed to write metrics")
		}
	}

	return err
}

// finishOutput publishes the CSV when the sweep completed, even past a sink
// failure, and discards it when the sweep aborted.
func finishOutput(out *export.FileSink, runErr error) error {
	if runErr != nil && !errors.Is(runErr, sweep.ErrSink) {
		if derr := out.Discard(); derr != nil {
			log.WithError(derr).Warn("failed to remove staged output")
		}
		return runErr
	}
	if cerr := out.Close(); cerr != nil && runErr == nil {
		return fmt.Errorf("%w: %w", sweep.ErrSink, cerr)
	}
	return runErr
}

func runWithTUI(ctx context.Context, sched *sweep.Scheduler, temps []float64, size int, sink sweep.Sink) ([]sweep.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// log lines would tear the view
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	p := tea.NewProgram(viz.NewProgress(len(temps), size, cancel))
	sched.AddObserver(viz.ProgramObserver{P: p})

	type outcome struct {
		results []sweep.Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := sched.Run(ctx, temps, sink)
		done <- outcome{results, err}
		p.Send(viz.DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view: %w", err)
	}
	o := <-done
	return o.results, o.err
}

func archive(ctx context.Context, cfg *config.Config, nworkers int, elapsed time.Duration, results []sweep.Result) (string, error) {
	st, err := storage.Open(cfg.DataPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	id, err := st.Save(ctx, storage.RunMetadata{
		Timestamp:    time.Now(),
		Size:         cfg.Size,
		T0:           cfg.T0,
		Tf:           cfg.Tf,
		Steps:        cfg.Steps,
		EvolveSteps:  cfg.EvolveSteps,
		AverageSteps: cfg.AverageSteps,
		Workers:      nworkers,
		Seed:         cfg.Seed,
		Elapsed:      elapsed,
		Output:       cfg.Output,
	}, results)
	if err != nil {
		return "", err
	}
	log.WithField("archive", st.Path()).WithField("run", id).Debug("run archived")
	return id, nil
}

func printSummary(w io.Writer, cfg *config.Config, nworkers int, elapsed time.Duration, results []sweep.Result) {
	rows := [][2]string{
		{"output", cfg.Output},
		{"lattice", fmt.Sprintf("%dx%d", cfg.Size, cfg.Size)},
		{"temperatures", strconv.Itoa(len(results))},
		{"workers", strconv.Itoa(nworkers)},
		{"seed", strconv.FormatInt(cfg.Seed, 10)},
		{"elapsed", elapsed.Round(time.Millisecond).String()},
	}
	if s, err := analysis.Summarize(results, cfg.Size); err == nil {
		rows = append(rows,
			[2]string{"Tc estimate", fmt.Sprintf("%.4f (%+.2f%% vs %.4f)", s.Tc, 100*s.Deviation, analysis.OnsagerTc)},
		)
	}
	fmt.Fprintln(w, viz.KeyValues("SWEEP COMPLETE", rows))
}
