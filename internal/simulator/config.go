package simulator

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/simulator/commission"
	"github.com/stratbench-lab/stratbench/internal/simulator/slippage"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// Config is the validated configuration surface of the execution
// simulator.
type Config struct {
	InitialCapital  float64              `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting cash in account currency,minimum=0"`
	CommissionModel commission.ModelName `yaml:"commission_model" json:"commission_model" jsonschema:"title=Commission Model,description=Commission schedule applied to every fill"`
	// CommissionRate is the percentage rate for the percentage model and
	// the per-unit fee for the per-share model.
	CommissionRate float64            `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate"`
	SlippageModel  slippage.ModelName `yaml:"slippage_model" json:"slippage_model" jsonschema:"title=Slippage Model"`
	// SlippageBps is the fixed spread (fixed_bps) or the impact
	// coefficient (volume_impact) in basis points.
	SlippageBps float64 `yaml:"slippage_bps" json:"slippage_bps" jsonschema:"title=Slippage Basis Points"`
	// MinConfidence is the minimum signal confidence required to act on a
	// BUY.
	MinConfidence float64 `yaml:"min_signal_confidence" json:"min_signal_confidence" jsonschema:"title=Minimum Signal Confidence,minimum=0,maximum=1"`
	// CashReserveFloor is cash that is never committed to a position.
	CashReserveFloor float64 `yaml:"cash_reserve_floor" json:"cash_reserve_floor" jsonschema:"title=Cash Reserve Floor,minimum=0"`
	// MaxPositionFraction caps a single position at this fraction of
	// current equity.
	MaxPositionFraction float64 `yaml:"max_position_size_fraction" json:"max_position_size_fraction" jsonschema:"title=Max Position Size Fraction"`
	// StopLossPct, when set, places a stop this fraction below the entry
	// fill price.
	StopLossPct optional.Option[float64] `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop Loss Percentage"`
}

// configValidation carries the cross-field rules validator can express.
type configValidation struct {
	MinConfidence       float64 `validate:"gte=0,lte=1"`
	MaxPositionFraction float64 `validate:"gt=0,lte=1"`
	CashReserveFloor    float64 `validate:"gte=0"`
}

// UnmarshalYAML implements custom unmarshaling so the optional stop-loss
// round-trips through a plain pointer.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		InitialCapital      float64              `yaml:"initial_capital"`
		CommissionModel     commission.ModelName `yaml:"commission_model"`
		CommissionRate      float64              `yaml:"commission_rate"`
		SlippageModel       slippage.ModelName   `yaml:"slippage_model"`
		SlippageBps         float64              `yaml:"slippage_bps"`
		MinConfidence       float64              `yaml:"min_signal_confidence"`
		CashReserveFloor    float64              `yaml:"cash_reserve_floor"`
		MaxPositionFraction float64              `yaml:"max_position_size_fraction"`
		StopLossPct         *float64             `yaml:"stop_loss_pct"`
	}

	var plain plainConfig
	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.InitialCapital = plain.InitialCapital
	c.CommissionModel = plain.CommissionModel
	c.CommissionRate = plain.CommissionRate
	c.SlippageModel = plain.SlippageModel
	c.SlippageBps = plain.SlippageBps
	c.MinConfidence = plain.MinConfidence
	c.CashReserveFloor = plain.CashReserveFloor
	c.MaxPositionFraction = plain.MaxPositionFraction

	if plain.StopLossPct != nil {
		c.StopLossPct = optional.Some(*plain.StopLossPct)
	} else {
		c.StopLossPct = optional.None[float64]()
	}

	return nil
}

// Validate checks the configuration and returns a configuration error for
// the first violated rule.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return errors.Newf(errors.ErrCodeInvalidCapital, "initial capital must be positive, got %v", c.InitialCapital)
	}

	if c.CommissionRate < 0 {
		return errors.Newf(errors.ErrCodeInvalidCommission, "commission rate must not be negative, got %v", c.CommissionRate)
	}

	if c.SlippageBps < 0 {
		return errors.Newf(errors.ErrCodeInvalidSlippage, "slippage must not be negative, got %v", c.SlippageBps)
	}

	if c.StopLossPct.IsSome() {
		stop := c.StopLossPct.Unwrap()
		if stop <= 0 || stop >= 1 {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "stop loss pct must be in (0, 1), got %v", stop)
		}
	}

	validate := validator.New()
	err := validate.Struct(configValidation{
		MinConfidence:       c.MinConfidence,
		MaxPositionFraction: c.MaxPositionFraction,
		CashReserveFloor:    c.CashReserveFloor,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid simulator configuration", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[float64]" {
				return &jsonschema.Schema{
					Type: "number",
				}
			}

			if strings.Contains(t.String(), "commission.ModelName") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission.AllModelNames,
				}
			}

			if strings.Contains(t.String(), "slippage.ModelName") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: slippage.AllModelNames,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "simulator-config"
	schema.Description = "Configuration schema for the execution simulator"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns a Config with conservative defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapital:      100000,
		CommissionModel:     commission.ModelNamePercentage,
		CommissionRate:      0.001,
		SlippageModel:       slippage.ModelNameZero,
		SlippageBps:         0,
		MinConfidence:       0.5,
		CashReserveFloor:    0,
		MaxPositionFraction: 1.0,
		StopLossPct:         optional.None[float64](),
	}
}

// TestConfig returns a frictionless Config for deterministic tests.
func TestConfig(initialCapital float64) Config {
	return Config{
		InitialCapital:      initialCapital,
		CommissionModel:     commission.ModelNameZero,
		CommissionRate:      0,
		SlippageModel:       slippage.ModelNameZero,
		SlippageBps:         0,
		MinConfidence:       0.5,
		CashReserveFloor:    0,
		MaxPositionFraction: 1.0,
		StopLossPct:         optional.None[float64](),
	}
}
