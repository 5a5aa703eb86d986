package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version   = "dev"
	buildTime = "unknown"

	verboseFlag bool

	// logger carries diagnostics; result lines never go through it
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "secprobe",
	Short: "Probe a security resolution service. Log every call.",
	Long: `secprobe drives a list of ticker identifiers through the resolve,
keyword search and bulk search endpoints of a security resolution service,
one call at a time, and writes one timed result line per call to a log file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verboseFlag)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
}

// newLogger builds the diagnostic logger, debug level when verbose
var newLogger = func(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// Execute runs the CLI and exits with the code carried by the error, if any
func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// execute runs the root command and flushes the logger whether or not the
// command failed. Cobra skips post-run hooks after an error.
func execute() error {
	defer func() {
		_ = logger.Sync()
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("SECPROBE_VERBOSE", false), "Debug-level diagnostic logs on stderr (env: SECPROBE_VERBOSE)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// exitError attaches an exit code to an error returned by a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps a command error to a process exit code. Errors raised by
// cobra itself (unknown flags, wrong arguments) are usage errors.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitUsageError
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
