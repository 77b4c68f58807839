package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/stratbench-lab/stratbench/internal/strategy Strategy
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/stratbench-lab/stratbench/internal/datasource DataSource
//go:generate mockgen -destination=./mock_commission.go -package=mocks github.com/stratbench-lab/stratbench/internal/simulator/commission Model
//go:generate mockgen -destination=./mock_slippage.go -package=mocks github.com/stratbench-lab/stratbench/internal/simulator/slippage Model
