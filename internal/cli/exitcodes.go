package cli

// Exit codes for the todo client
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitRequestFailure indicates the server answered with an error status
	ExitRequestFailure = 1

	// ExitConfigError indicates a configuration file or flag error
	ExitConfigError = 3

	// ExitNetworkError indicates a connection error or timeout
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
