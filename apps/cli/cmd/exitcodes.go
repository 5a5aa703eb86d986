package cmd

// Exit codes for the secprobe CLI
const (
	// ExitSuccess indicates the run completed, whatever the individual calls returned
	ExitSuccess = 0

	// ExitRunError indicates a sequence could not start or write its log
	ExitRunError = 1

	// ExitConfigError indicates a missing or invalid configuration
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
