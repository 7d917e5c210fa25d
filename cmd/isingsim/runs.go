package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/storage"
	"github.com/san-kum/isingsim/internal/sweep"
	"github.com/san-kum/isingsim/internal/viz"
)

func openStore() (*storage.Store, error) {
	if _, err := os.Stat(dataPath); err != nil {
		return nil, fmt.Errorf("no run archive at %s: %w", dataPath, err)
	}
	return storage.Open(dataPath)
}

func loadRun(cmd *cobra.Command, id string) (*storage.RunMetadata, []sweep.Result, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	points, err := st.LoadPoints(cmd.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	return meta, points, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tT0\tTF\tSTEPS\tWORKERS\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%d\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.T0,
			run.Tf,
			run.Steps,
			run.Workers,
			run.Elapsed.Round(time.Millisecond),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, points, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), viz.KeyValues(meta.ID, [][2]string{
		{"time", meta.Timestamp.Format("2006-01-02 15:04:05")},
		{"lattice", fmt.Sprintf("%dx%d", meta.Size, meta.Size)},
		{"ladder", fmt.Sprintf("%g..%g in %d", meta.T0, meta.Tf, meta.Steps)},
		{"evolve/average", fmt.Sprintf("%d/%d", meta.EvolveSteps, meta.AverageSteps)},
		{"workers", strconv.Itoa(meta.Workers)},
		{"seed", strconv.FormatInt(meta.Seed, 10)},
		{"elapsed", meta.Elapsed.Round(time.Millisecond).String()},
		{"output", meta.Output},
	}))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tU\tM_RMS\tWORKER")
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%g\t%g\t%d\n", p.Temperature, p.Energy, p.MagnetizationRMS, p.Worker)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, points, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no data to plot")
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.PlotSweep(points, meta.Size))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, points, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	s, err := analysis.Summarize(points, meta.Size)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.KeyValues("ANALYSIS "+meta.ID, [][2]string{
		{"Tc (C peak)", fmt.Sprintf("%.4f", s.Tc)},
		{"C max", fmt.Sprintf("%.4f", s.PeakHeat)},
		{"Onsager Tc", fmt.Sprintf("%.4f", analysis.OnsagerTc)},
		{"deviation", fmt.Sprintf("%+.2f%%", 100*s.Deviation)},
		{"chi peak T", fmt.Sprintf("%.4f", s.ChiPeakT)},
		{"u at T0", fmt.Sprintf("%.4f", s.GroundEnergy)},
		{"m at T0", fmt.Sprintf("%.4f", s.GroundMagnetization)},
		{"u at Tf", fmt.Sprintf("%.4f", s.HotEnergy)},
		{"m at Tf", fmt.Sprintf("%.4f", s.HotMagnetization)},
	}))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, points, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no data to export")
	}

	if len(args) == 2 {
		return export.WriteFile(args[1], points, precision)
	}

	sink := export.NewCSVSink(cmd.OutOrStdout(), precision)
	if err := sink.WriteHeader(); err != nil {
		return err
	}
	for _, p := range points {
		if err := sink.Write(p); err != nil {
			return err
		}
	}
	return nil
}
