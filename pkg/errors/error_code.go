package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Always surfaced to the caller,
	// never retried.
	ErrCodeInvalidConfiguration     ErrorCode = 100
	ErrCodeInvalidCapital           ErrorCode = 101
	ErrCodeInvalidCommission        ErrorCode = 102
	ErrCodeInvalidSlippage          ErrorCode = 103
	ErrCodeInvalidConfidence        ErrorCode = 104
	ErrCodeInvalidPositionFraction  ErrorCode = 105
	ErrCodeInvalidPeriods           ErrorCode = 106
	ErrCodeEmptyParameterGrid       ErrorCode = 107
	ErrCodeInvalidWalkForwardWindow ErrorCode = 108
	ErrCodeInvalidScoreMetric       ErrorCode = 109
	ErrCodeInvalidParameter         ErrorCode = 110

	// Data errors (200-299). Malformed price input aborts the run.
	ErrCodeEmptySeries        ErrorCode = 200
	ErrCodeNonMonotonicSeries ErrorCode = 201
	ErrCodeDuplicateTimestamp ErrorCode = 202
	ErrCodeDataNotFound       ErrorCode = 203
	ErrCodeQueryFailed        ErrorCode = 204
	ErrCodeDataParseFailed    ErrorCode = 205

	// Strategy errors (300-399)
	ErrCodeStrategyNotFound    ErrorCode = 300
	ErrCodeStrategyConfigError ErrorCode = 301
	ErrCodeStrategyEvaluation  ErrorCode = 302
	ErrCodeInsufficientHistory ErrorCode = 303

	// Simulation errors (400-499)
	ErrCodeSimulationFailed ErrorCode = 400
	ErrCodeInvalidSignal    ErrorCode = 401

	// Optimization errors (500-599)
	ErrCodeCandidateFailed     ErrorCode = 500
	ErrCodeOptimizationAborted ErrorCode = 501
	ErrCodeUnknownMetric       ErrorCode = 502
	ErrCodeResultStoreFailed   ErrorCode = 503
	ErrCodeNoStrategies        ErrorCode = 504
)

// IsConfigurationError reports whether the error carries a configuration
// error code (100-199).
func IsConfigurationError(err error) bool {
	code := GetCode(err)

	return code >= 100 && code < 200
}

// IsDataError reports whether the error carries a data error code (200-299).
func IsDataError(err error) bool {
	code := GetCode(err)

	return code >= 200 && code < 300
}
