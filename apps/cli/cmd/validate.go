package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without calling the service",
	Long: `Load the configuration the same way run does, check it, and print the
endpoints and log files a run started now would use.

Examples:
  secprobe validate
  secprobe validate --config appsettings.json --env-file .env`,
	Args: cobra.NoArgs,
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVar(&configFlag, "config", getEnvString("SECPROBE_CONFIG", ""), "Path to config file (env: SECPROBE_CONFIG)")
	validateCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("SECPROBE_ENV_FILE", ""), "Path to .env file loaded before the config (env: SECPROBE_ENV_FILE)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(configFlag, envFileFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	for _, w := range cfg.Warnings {
		fmt.Fprintf(cmd.OutOrStderr(), "warning: %s\n", w)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Invalid configuration:\n%v\n", err)
		return withExitCode(ExitConfigError, fmt.Errorf("validation failed"))
	}

	endpoints, err := buildEndpoints(cfg, time.Now())
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Valid configuration\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Identifiers: %s\n", cfg.FilePaths.DriverFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Timeout:     %s\n", cfg.Timeout)
	for _, ep := range endpoints {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s -> %s\n", ep.Sequence, ep.URL, ep.LogPath)
	}

	return nil
}
