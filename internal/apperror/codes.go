package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Engine-specific error codes
const (
	// Transport / session errors
	CodeConnectionFailed   Code = "CONNECTION_FAILED"
	CodeConnectionDropped  Code = "CONNECTION_DROPPED"
	CodeMalformedFrame     Code = "MALFORMED_FRAME"
	CodeSendFailed         Code = "SEND_FAILED"
	CodeProtocolVersion    Code = "PROTOCOL_VERSION_MISMATCH"
	CodeMaintenanceMode    Code = "MAINTENANCE_MODE"

	// Authentication errors
	CodeAuthFailed          Code = "AUTH_FAILED"
	CodeCapabilityShortfall Code = "CAPABILITY_SHORTFALL"

	// Subscription errors
	CodeSubscriptionFailed   Code = "SUBSCRIPTION_FAILED"
	CodeSubscriptionTimeout  Code = "SUBSCRIPTION_TIMEOUT"
	CodeUnknownChannel       Code = "UNKNOWN_CHANNEL"

	// Order book errors
	CodeInvalidBookLevel   Code = "INVALID_BOOK_LEVEL"
	CodeCrossedBook        Code = "CROSSED_BOOK"
	CodeUnknownSymbol      Code = "UNKNOWN_SYMBOL"

	// Wallet errors
	CodeWalletStale          Code = "WALLET_STALE"
	CodeRecomputeRateLimited Code = "RECOMPUTE_RATE_LIMITED"

	// Solver errors
	CodeSolverTimeout     Code = "SOLVER_TIMEOUT"
	CodeSolverBadGraph    Code = "SOLVER_BAD_GRAPH"
	CodeSolverDivideByZero Code = "SOLVER_DIVIDE_BY_ZERO"
	CodeNoAdmissibleCycle Code = "NO_ADMISSIBLE_CYCLE"

	// Order-chain errors
	CodeChainStepFailed       Code = "CHAIN_STEP_FAILED"
	CodeChainStepTimeout      Code = "CHAIN_STEP_TIMEOUT"
	CodeChainCompensating     Code = "CHAIN_COMPENSATING"
	CodeChainTotalTimeout     Code = "CHAIN_TOTAL_TIMEOUT"
	CodeChainAlreadyActive    Code = "CHAIN_ALREADY_ACTIVE"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
