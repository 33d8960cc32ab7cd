// Command balticfit fits the linear-Gaussian food-web network described by
// a YAML model file to a CSV time series, and exports the posterior
// marginal columns of the requested hidden nodes.
//
// Usage:
//
//	balticfit fit --config model.yaml --data series.csv --out results/
//
// The CSV must carry a header row and one column per declared node, in
// declaration order; empty, NA, or NaN fields are missing values. Outputs
// are plain numeric columns (one value per line, in time order):
// <node>.mean.txt and <node>.var.txt per reported node, plus loglik.txt
// with the winning run's log-likelihood trace and params.txt with the
// trained parameter groups.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luusitalo/BalticFoodwebModel/config"
	"github.com/luusitalo/BalticFoodwebModel/dataset"
	"github.com/luusitalo/BalticFoodwebModel/fit"
	"github.com/luusitalo/BalticFoodwebModel/marginals"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "balticfit:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "balticfit",
		Short:         "Fit a linear-Gaussian temporal food-web model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFitCmd())

	return root
}

func newFitCmd() *cobra.Command {
	var (
		configPath string
		dataPath   string
		outDir     string
		workers    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Train by multi-restart EM and export posterior marginals",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			return runFit(cmd, configPath, dataPath, outDir, workers, logger)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML model description (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "CSV time series with header row (required)")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for result columns")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel restarts (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "per-restart progress logging")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runFit(cmd *cobra.Command, configPath, dataPath, outDir string, workers int, logger *slog.Logger) error {
	cf, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer cf.Close()
	cfg, err := config.Load(cf)
	if err != nil {
		return err
	}
	tpl, err := cfg.Template()
	if err != nil {
		return err
	}

	df, err := os.Open(dataPath)
	if err != nil {
		return err
	}
	defer df.Close()
	data, err := dataset.ReadCSV(df, tpl.N())
	if err != nil {
		return err
	}
	// Hidden columns are latent by construction, whatever the file holds.
	data = data.MaskHidden(cfg.Observed())

	ug, err := unroll.New(tpl, data.T())
	if err != nil {
		return err
	}
	logger.Info("unrolled network",
		"nodes", ug.Len(), "edges", ug.NumEdges(), "horizon", data.T())

	opts := append(cfg.FitOptions(), fit.WithLogger(logger))
	if workers > 0 {
		opts = append(opts, fit.WithWorkers(workers))
	}
	best, err := fit.Run(cmd.Context(), ug, data, opts...)
	if err != nil {
		return err
	}

	series, err := marginals.Extract(ug, best.Result.Store, data, cfg.ReportIndices())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, s := range series {
		if err := writeColumn(filepath.Join(outDir, s.Name+".mean.txt"), s.Means()); err != nil {
			return err
		}
		if err := writeColumn(filepath.Join(outDir, s.Name+".var.txt"), s.Variances()); err != nil {
			return err
		}
	}
	if err := writeColumn(filepath.Join(outDir, "loglik.txt"), best.Result.Trace); err != nil {
		return err
	}
	if err := writeParams(filepath.Join(outDir, "params.txt"), cfg, tpl.N(), best); err != nil {
		return err
	}
	logger.Info("wrote results", "dir", outDir, "series", len(series))

	return nil
}

func writeColumn(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return marginals.WriteColumn(f, values)
}

// writeParams dumps the trained groups in a stable, human-readable layout:
// one line per group, slice-1 groups first.
func writeParams(path string, cfg *config.Config, n int, best *fit.Best) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	store := best.Result.Store
	for id := 0; id < store.NumGroups(); id++ {
		g := store.Group(id)
		name := cfg.Nodes[id%n].Name
		slice := "slice1"
		if id >= n {
			slice = "slice2+"
		}
		if _, err := fmt.Fprintf(f, "%s %s weights=%v intercept=%g variance=%g\n",
			name, slice, g.Weights, g.Intercept, g.Variance); err != nil {
			return err
		}
	}

	return nil
}
