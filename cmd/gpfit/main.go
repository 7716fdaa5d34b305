// Command gpfit fits a Gaussian process regression model to a CSV training
// set and reports the selected hyperparameters and log-likelihood. The last
// CSV column is the target; every preceding column is an input dimension.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mogpkit/mogp"
	"github.com/mogpkit/mogp/accel"
	"github.com/mogpkit/mogp/fit"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		engine     string
		nugget     float64
		restarts   int
		seed       int64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "gpfit <data.csv>",
		Short: "Fit a Gaussian process emulator to a CSV training set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("engine") {
				cfg.Engine = engine
			}
			if cmd.Flags().Changed("nugget") {
				cfg.Nugget = nugget
			}
			if cmd.Flags().Changed("restarts") {
				cfg.Restarts = restarts
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			return run(args[0], cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&engine, "engine", "reference", "covariance backend: reference or simd")
	cmd.Flags().Float64Var(&nugget, "nugget", -1, "fixed diagonal nugget; negative for adaptive")
	cmd.Flags().IntVar(&restarts, "restarts", 2, "perturbed optimization restarts")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for restart perturbations")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	return cmd
}

func run(path string, cfg config, out io.Writer) error {
	x, y, err := readTrainingCSV(path)
	if err != nil {
		return err
	}
	n, d := x.Dims()

	var opts []mogp.Option
	if cfg.Nugget >= 0 {
		opts = append(opts, mogp.WithNugget(cfg.Nugget))
	}

	var model mogp.Emulator
	switch cfg.Engine {
	case "simd":
		model, err = accel.New(x, y, opts...)
	default:
		model, err = mogp.New(x, y, opts...)
	}
	if err != nil {
		return err
	}

	targets := make([]float64, n)
	mat.Col(targets, 0, y)
	meanY, stdY := stat.MeanStdDev(targets, nil)
	log.WithFields(log.Fields{
		"examples":   n,
		"dimensions": d,
		"target_mu":  meanY,
		"target_sd":  stdY,
		"engine":     cfg.Engine,
	}).Info("gpfit: training set loaded")

	start := cfg.Start
	if len(start) == 0 {
		start = make([]float64, d+1)
	}
	result, err := fit.MAP(model, start, &fit.Settings{
		Restarts: cfg.Restarts,
		Seed:     cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("fitting failed: %w", err)
	}

	fmt.Fprintf(out, "%v\n", model)
	fmt.Fprintf(out, "theta: %v\n", result.Theta)
	fmt.Fprintf(out, "log-likelihood: %.8g\n", result.LogLikelihood)
	return nil
}

// readTrainingCSV loads a CSV file whose final column is the target value.
func readTrainingCSV(path string) (*mat.Dense, *mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty training set", path)
	}
	cols := len(records[0])
	if cols < 2 {
		return nil, nil, fmt.Errorf("%s: need at least one input column and one target column", path)
	}

	// Skip a header row if the first field is not numeric.
	rows := records
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		rows = records[1:]
	}
	n := len(rows)
	if n == 0 {
		return nil, nil, fmt.Errorf("%s: no data rows", path)
	}

	x := mat.NewDense(n, cols-1, nil)
	y := mat.NewVecDense(n, nil)
	for i, rec := range rows {
		if len(rec) != cols {
			return nil, nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, i+1, len(rec), cols)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: row %d field %d: %w", path, i+1, j+1, err)
			}
			if j == cols-1 {
				y.SetVec(i, v)
			} else {
				x.Set(i, j, v)
			}
		}
	}
	return x, y, nil
}
