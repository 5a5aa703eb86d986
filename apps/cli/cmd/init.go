package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/secprobe/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new secprobe project",
	Long: `Initialize a new secprobe project in the current directory.

This creates:
  - secprobe.yaml  - Configuration file with endpoints and log paths
  - ids.txt        - Example identifier file, one ticker per line

Examples:
  secprobe init
  secprobe init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

// sampleConfig is the configuration written by init. The token is read from
// the environment at load time.
func sampleConfig() *config.Config {
	return &config.Config{
		APIURLs: config.APIURLs{
			Resolve:       "https://api.example.com/api/securities/resolve",
			SearchKeyword: "https://api.example.com/api/securities/search/",
			Search:        "https://api.example.com/api/securities/search",
		},
		FilePaths: config.FilePaths{
			DriverFile:           "ids.txt",
			LogOutFileForResolve: "logs/resolve_{timestamp}.log",
			LogOutFileForSearch:  "logs/search_{timestamp}.log",
		},
		BearerToken: "${SECPROBE_TOKEN}",
		Timeout:     config.DefaultTimeout,
		Sequences:   append([]string(nil), config.AllSequences...),
	}
}

const sampleIdentifiers = "AAPL\nMSFT\nGOOG\n"

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initProject(cmd, cwd, forceInit)
}

func initProject(cmd *cobra.Command, dir string, force bool) error {
	configFile := filepath.Join(dir, "secprobe.yaml")
	idsFile := filepath.Join(dir, "ids.txt")

	if !force {
		for _, f := range []string{configFile, idsFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	if err := sampleConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(idsFile, []byte(sampleIdentifiers), 0644); err != nil {
		return fmt.Errorf("failed to create identifier file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", idsFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nsecprobe project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Set SECPROBE_TOKEN and edit the ApiUrls, then run 'secprobe run'.\n")

	return nil
}
