package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/stratbench-lab/stratbench/internal/compare"
	"github.com/stratbench-lab/stratbench/internal/datasource"
	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/metrics"
	"github.com/stratbench-lab/stratbench/internal/optimizer"
	"github.com/stratbench-lab/stratbench/internal/results"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/simulator"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var dateLayouts = cli.TimestampConfig{
	Layouts: []string{"2006-01-02", time.RFC3339},
}

// loadSeries opens the data file through DuckDB and loads the requested
// symbol and date range.
func loadSeries(cmd *cli.Command, log *logger.Logger) (*series.PriceSeries, error) {
	source, err := datasource.NewDuckDB("", log)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	if err := source.InitializeFile(cmd.String("data")); err != nil {
		return nil, err
	}

	start := optional.None[time.Time]()
	if t := cmd.Timestamp("start"); !t.IsZero() {
		start = optional.Some(t)
	}

	end := optional.None[time.Time]()
	if t := cmd.Timestamp("end"); !t.IsZero() {
		end = optional.Some(t)
	}

	return source.Load(cmd.String("symbol"), start, end)
}

func printYAML(value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}

	fmt.Print(string(data))

	return nil
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))

	return nil
}

// backtestAction runs every configured strategy over the series and
// reports its metrics.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	config, err := LoadAppConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	priceSeries, err := loadSeries(cmd, log)
	if err != nil {
		return err
	}

	sim, err := simulator.New(config.Simulator, log)
	if err != nil {
		return err
	}

	var store *results.Store
	if path := cmd.String("store"); path != "" {
		store, err = results.NewStore(path, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Initialize(); err != nil {
			return err
		}
	}

	bar := progressbar.Default(int64(len(config.Strategies)), "backtesting")

	for _, spec := range config.Strategies {
		strat, err := spec.Build()
		if err != nil {
			return err
		}

		curve, trades, err := sim.Run(priceSeries, strat)
		if err != nil {
			return err
		}

		report := metrics.Compute(curve, trades, config.RiskFreeRate, config.PeriodsPerYear)

		fmt.Printf("\n--- %s ---\n", strat.Name())
		if err := printYAML(report); err != nil {
			return err
		}

		if output := cmd.String("output"); output != "" {
			path := fmt.Sprintf("%s-%s.yaml", output, strat.Name())
			if err := types.WriteMetricsReport(path, report); err != nil {
				return err
			}
		}

		if store != nil {
			runID, err := store.SaveRun(priceSeries.Symbol(), strat.Name(), report, trades)
			if err != nil {
				return err
			}

			fmt.Printf("saved run %s\n", runID)
		}

		_ = bar.Add(1)
	}

	return nil
}

// compareAction ranks the configured strategies on one metric.
func compareAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	config, err := LoadAppConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	priceSeries, err := loadSeries(cmd, log)
	if err != nil {
		return err
	}

	strategies := make([]strategy.Strategy, 0, len(config.Strategies))
	for _, spec := range config.Strategies {
		strat, err := spec.Build()
		if err != nil {
			return err
		}

		strategies = append(strategies, strat)
	}

	comparator, err := compare.New(config.Simulator, config.RiskFreeRate, config.PeriodsPerYear, log)
	if err != nil {
		return err
	}

	metricName := cmd.String("metric")

	ranked, err := comparator.RankBy(priceSeries, strategies, metricName)
	if err != nil {
		return err
	}

	if cmd.Bool("csv") {
		rendered, err := compare.RenderCSV(ranked)
		if err != nil {
			return err
		}

		fmt.Print(rendered)

		return nil
	}

	fmt.Println(compare.RenderTable(ranked, metricName))

	return nil
}

// optimizeAction sweeps the configured parameter grid with walk-forward
// validation. Ctrl-C aborts between candidates.
func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	config, err := LoadAppConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	priceSeries, err := loadSeries(cmd, log)
	if err != nil {
		return err
	}

	factory, err := strategy.FactoryFor(config.Optimize.Strategy)
	if err != nil {
		return err
	}

	bar := progressbar.Default(int64(config.Optimize.Grid.Size()), "optimizing")

	optimizerConfig := optimizer.Config{
		Simulator:      config.Simulator,
		Grid:           config.Optimize.Grid,
		WalkForward:    config.Optimize.WalkForward,
		ScoreMetric:    config.Optimize.ScoreMetric,
		RiskFreeRate:   config.RiskFreeRate,
		PeriodsPerYear: config.PeriodsPerYear,
		Parallelism:    config.Optimize.Parallelism,
		Progress: func(completed, total int) {
			_ = bar.Add(1)
		},
	}

	opt, err := optimizer.New(optimizerConfig, factory, log)
	if err != nil {
		return err
	}

	result, err := opt.Optimize(ctx, priceSeries)
	if err != nil {
		return err
	}

	fmt.Println()

	if path := cmd.String("store"); path != "" {
		store, err := results.NewStore(path, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Initialize(); err != nil {
			return err
		}

		sweepID, err := store.SaveSweep(cmd.String("symbol"), config.Optimize.Strategy, *result)
		if err != nil {
			return err
		}

		log.Info("sweep saved", zap.String("sweep_id", sweepID))
	}

	// JSON keeps the optional train/test scores readable (null for failed
	// candidates).
	return printJSON(result)
}

func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Path to a CSV or Parquet bar file",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "symbol",
			Aliases:  []string{"s"},
			Usage:    "Symbol to load from the data file",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
		},
		&cli.TimestampFlag{
			Name:   "start",
			Usage:  "Start date in `YYYY-MM-DD` format",
			Config: dateLayouts,
		},
		&cli.TimestampFlag{
			Name:   "end",
			Usage:  "End date in `YYYY-MM-DD` format",
			Config: dateLayouts,
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "stratbench",
		Usage:   "Evaluate, compare, and optimize trading strategies offline",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "backtest",
				Usage: "Run the configured strategies and report their metrics",
				Flags: append(dataFlags(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Prefix for per-strategy YAML report files",
					},
					&cli.StringFlag{
						Name:  "store",
						Usage: "DuckDB file to persist runs into",
					},
				),
				Action: backtestAction,
			},
			{
				Name:  "compare",
				Usage: "Rank the configured strategies on one metric",
				Flags: append(dataFlags(),
					&cli.StringFlag{
						Name:    "metric",
						Aliases: []string{"m"},
						Usage:   "Metric to rank by",
						Value:   types.MetricSharpeRatio,
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Emit CSV instead of a table",
					},
				),
				Action: compareAction,
			},
			{
				Name:  "optimize",
				Usage: "Grid-search strategy parameters with walk-forward validation",
				Flags: append(dataFlags(),
					&cli.StringFlag{
						Name:  "store",
						Usage: "DuckDB file to persist the sweep into",
					},
				),
				Action: optimizeAction,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
