package main

import (
	"os"

	"github.com/stratbench-lab/stratbench/internal/optimizer"
	"github.com/stratbench-lab/stratbench/internal/simulator"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"gopkg.in/yaml.v2"
)

// StrategySpec names a built-in strategy kind and its parameters.
type StrategySpec struct {
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params"`
}

// Build instantiates the strategy through its registered factory.
func (s StrategySpec) Build() (strategy.Strategy, error) {
	factory, err := strategy.FactoryFor(s.Kind)
	if err != nil {
		return nil, err
	}

	return factory(strategy.ParameterSet(s.Params))
}

// OptimizeSpec configures the optimize command.
type OptimizeSpec struct {
	Strategy    string                  `yaml:"strategy"`
	Grid        optimizer.ParameterGrid `yaml:"grid"`
	WalkForward optimizer.WalkForward   `yaml:"walk_forward"`
	ScoreMetric string                  `yaml:"score_metric"`
	Parallelism int                     `yaml:"parallelism"`
}

// AppConfig is the YAML configuration surface of the CLI.
type AppConfig struct {
	Simulator      simulator.Config `yaml:"simulator"`
	RiskFreeRate   float64          `yaml:"risk_free_rate"`
	PeriodsPerYear float64          `yaml:"periods_per_year"`
	Strategies     []StrategySpec   `yaml:"strategies"`
	Optimize       OptimizeSpec     `yaml:"optimize"`
}

// DefaultAppConfig mirrors the simulator defaults with a daily-bar
// annualization and one sensible strategy.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Simulator:      simulator.DefaultConfig(),
		RiskFreeRate:   0.0,
		PeriodsPerYear: 252,
		Strategies: []StrategySpec{
			{
				Kind:   strategy.KindSMACrossover,
				Params: map[string]float64{"fast_period": 10, "slow_period": 30},
			},
		},
		Optimize: OptimizeSpec{
			Strategy: strategy.KindSMACrossover,
			Grid: optimizer.ParameterGrid{
				"fast_period": {5, 10, 20},
				"slow_period": {30, 50, 100},
			},
			WalkForward: optimizer.WalkForward{TrainBars: 252, TestBars: 63, StepBars: 63},
			ScoreMetric: types.MetricSharpeRatio,
		},
	}
}

// LoadAppConfig reads a config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadAppConfig(path string) (AppConfig, error) {
	config := DefaultAppConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	if config.PeriodsPerYear <= 0 {
		config.PeriodsPerYear = 252
	}

	return config, nil
}
