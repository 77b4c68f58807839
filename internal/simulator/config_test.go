package simulator

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultsAreValid() {
	config := DefaultConfig()
	suite.NoError(config.Validate())

	test := TestConfig(100000)
	suite.NoError(test.Validate())
}

func (suite *ConfigTestSuite) TestValidateRejections() {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode errors.ErrorCode
	}{
		{
			name:     "zero capital",
			mutate:   func(c *Config) { c.InitialCapital = 0 },
			wantCode: errors.ErrCodeInvalidCapital,
		},
		{
			name:     "negative capital",
			mutate:   func(c *Config) { c.InitialCapital = -1000 },
			wantCode: errors.ErrCodeInvalidCapital,
		},
		{
			name:     "negative commission",
			mutate:   func(c *Config) { c.CommissionRate = -0.001 },
			wantCode: errors.ErrCodeInvalidCommission,
		},
		{
			name:     "negative slippage",
			mutate:   func(c *Config) { c.SlippageBps = -5 },
			wantCode: errors.ErrCodeInvalidSlippage,
		},
		{
			name:     "stop loss at one",
			mutate:   func(c *Config) { c.StopLossPct = optional.Some(1.0) },
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "stop loss at zero",
			mutate:   func(c *Config) { c.StopLossPct = optional.Some(0.0) },
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "confidence above one",
			mutate:   func(c *Config) { c.MinConfidence = 1.5 },
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "zero position fraction",
			mutate:   func(c *Config) { c.MaxPositionFraction = 0 },
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
	}

	for _, tc := range tests {
		config := DefaultConfig()
		tc.mutate(&config)

		err := config.Validate()
		suite.Require().Error(err, tc.name)
		suite.True(errors.HasCode(err, tc.wantCode), tc.name)
		suite.True(errors.IsConfigurationError(err), tc.name)
	}
}

func (suite *ConfigTestSuite) TestUnmarshalYAML() {
	raw := `
initial_capital: 250000
commission_model: per_share
commission_rate: 0.005
slippage_model: fixed_bps
slippage_bps: 2
min_signal_confidence: 0.6
cash_reserve_floor: 1000
max_position_size_fraction: 0.25
stop_loss_pct: 0.08
`

	var config Config
	suite.Require().NoError(yaml.Unmarshal([]byte(raw), &config))
	suite.NoError(config.Validate())

	suite.InDelta(250000.0, config.InitialCapital, 1e-9)
	suite.EqualValues("per_share", config.CommissionModel)
	suite.EqualValues("fixed_bps", config.SlippageModel)
	suite.InDelta(0.25, config.MaxPositionFraction, 1e-9)
	suite.Require().True(config.StopLossPct.IsSome())
	suite.InDelta(0.08, config.StopLossPct.Unwrap(), 1e-9)
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLWithoutStopLoss() {
	raw := `
initial_capital: 100000
commission_model: zero
slippage_model: zero
min_signal_confidence: 0.5
max_position_size_fraction: 1.0
`

	var config Config
	suite.Require().NoError(yaml.Unmarshal([]byte(raw), &config))
	suite.NoError(config.Validate())
	suite.True(config.StopLossPct.IsNone())
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := DefaultConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schemaJSON, "initial_capital")
	suite.Contains(schemaJSON, "stop_loss_pct")
	suite.Contains(schemaJSON, "percentage")
	suite.Contains(schemaJSON, "volume_impact")
}
