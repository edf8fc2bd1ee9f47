package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Transport / session errors
	CodeConnectionFailed:  "Failed to connect to venue stream",
	CodeConnectionDropped: "Venue connection dropped",
	CodeMalformedFrame:    "Received malformed venue frame",
	CodeSendFailed:        "Failed to send outbound frame",
	CodeProtocolVersion:   "Venue protocol version mismatch",
	CodeMaintenanceMode:   "Venue is in maintenance mode",

	// Authentication errors
	CodeAuthFailed:          "Authentication with venue failed",
	CodeCapabilityShortfall: "Authenticated session lacks required trading capabilities",

	// Subscription errors
	CodeSubscriptionFailed:  "Channel subscription failed",
	CodeSubscriptionTimeout: "Channel subscription confirmation timed out",
	CodeUnknownChannel:      "Received data for an unknown channel id",

	// Order book errors
	CodeInvalidBookLevel: "Invalid order book level",
	CodeCrossedBook:      "Order book best bid is not below best ask",
	CodeUnknownSymbol:    "Unknown trading symbol",

	// Wallet errors
	CodeWalletStale:          "Wallet balance is stale pending recompute",
	CodeRecomputeRateLimited: "Wallet recompute request rate-limited",

	// Solver errors
	CodeSolverTimeout:      "Cycle solver exceeded its time budget",
	CodeSolverBadGraph:     "Cycle solver was given an inconsistent currency graph",
	CodeSolverDivideByZero: "Cycle solver encountered a zero-rate edge",
	CodeNoAdmissibleCycle:  "No admissible arbitrage cycle found",

	// Order-chain errors
	CodeChainStepFailed:    "Order chain step failed",
	CodeChainStepTimeout:   "Order chain step deadline exceeded",
	CodeChainCompensating:  "Order chain is compensating after a failed step",
	CodeChainTotalTimeout:  "Order chain exceeded its total time budget",
	CodeChainAlreadyActive: "An order chain is already active",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
