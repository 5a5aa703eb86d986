package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/secprobe/packages/core/config"
	"github.com/abdul-hamid-achik/secprobe/packages/core/env"
	"github.com/abdul-hamid-achik/secprobe/packages/http"
	"github.com/abdul-hamid-achik/secprobe/packages/probe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the probe sequences against the configured service",
	Long: `Run the resolve, keyword search and bulk search sequences concurrently.

Every sequence reads the same identifier file. Resolve and keyword search
send one call per identifier; bulk search sends the whole list in a single
call. Each call produces one line on stdout and in the sequence's log file.

Examples:
  secprobe run
  secprobe run --config appsettings.json
  secprobe run --env-file .env --only resolve,keyword
  secprobe run --ids tickers.txt --timeout 30s`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

var (
	configFlag   string
	envFileFlag  string
	tokenFlag    string
	idsFlag      string
	timeoutFlag  string
	onlyFlag     string
	proxyFlag    string
	insecureFlag bool
	noColorFlag  bool
)

func init() {
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("SECPROBE_CONFIG", ""), "Path to config file (env: SECPROBE_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("SECPROBE_ENV_FILE", ""), "Path to .env file loaded before the config (env: SECPROBE_ENV_FILE)")
	runCmd.Flags().StringVar(&tokenFlag, "token", "", "Bearer token, overrides BearerToken")
	runCmd.Flags().StringVar(&idsFlag, "ids", "", "Identifier file, overrides FilePaths.DriverFile")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "Per-call timeout (e.g., 30s, 5m), overrides Timeout")
	runCmd.Flags().StringVar(&onlyFlag, "only", "", "Comma-separated sequences to run: resolve, keyword, search")
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("SECPROBE_PROXY", ""), "Proxy URL for HTTP requests (env: SECPROBE_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("SECPROBE_INSECURE", false), "Disable SSL certificate validation (env: SECPROBE_INSECURE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("SECPROBE_NO_COLOR", false), "Disable colored output (env: SECPROBE_NO_COLOR)")
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(configFlag, envFileFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	if err := applyRunFlags(cfg); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if err := cfg.Validate(); err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("invalid configuration:\n%w", err))
	}

	noColor := noColorFlag || cfg.GetNoColor()

	client := http.NewClient(clientOptions(cfg)...)
	defer client.CloseIdleConnections()

	endpoints, err := buildEndpoints(cfg, time.Now())
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	runner := probe.NewRunner(client, cfg.FilePaths.DriverFile, endpoints,
		probe.WithLogger(logger),
		probe.WithConsole(cmd.OutOrStdout()),
		probe.WithNoColor(noColor),
	)

	reporter := probe.NewReporter(
		probe.WithReportWriter(cmd.OutOrStdout()),
		probe.WithReportNoColor(noColor),
	)
	reporter.Header(version, runner.RunID(), cfg.FilePaths.DriverFile, endpoints)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping after the calls in flight...")
			cancel()
		case <-ctx.Done():
		}
	}()

	result, runErr := runner.Run(ctx)
	reporter.Summary(result)

	if runErr != nil {
		return withExitCode(ExitRunError, runErr)
	}
	return nil
}

// loadRunConfig loads the optional dotenv file, then the config file. Config
// warnings, such as unset ${VAR} references, are logged.
func loadRunConfig(configPath, envFile string) (*config.Config, error) {
	if envFile != "" {
		if _, err := env.LoadAndExportDotEnv(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	for _, w := range cfg.Warnings {
		logger.Warn("config warning", zap.String("warning", w))
	}
	return cfg, nil
}

// applyRunFlags overrides file values with the flags that were given
func applyRunFlags(cfg *config.Config) error {
	if tokenFlag != "" {
		cfg.BearerToken = tokenFlag
	}
	if idsFlag != "" {
		cfg.FilePaths.DriverFile = idsFlag
	}
	if proxyFlag != "" {
		cfg.Proxy = proxyFlag
	}
	if insecureFlag {
		cfg.ValidateSSL = config.BoolPtr(false)
	}

	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		cfg.Timeout = timeout
	}

	if onlyFlag != "" {
		sequences := parseList(onlyFlag)
		if len(sequences) == 0 {
			return fmt.Errorf("--only needs at least one sequence")
		}
		cfg.Sequences = sequences
	}

	return nil
}

func clientOptions(cfg *config.Config) []http.ClientOption {
	opts := []http.ClientOption{
		http.WithBearerToken(cfg.BearerToken),
		http.WithTimeout(cfg.Timeout),
		http.WithValidateSSL(cfg.GetValidateSSL()),
	}
	if cfg.Proxy != "" {
		opts = append(opts, http.WithProxy(cfg.Proxy))
	}
	return opts
}

// buildEndpoints returns one endpoint per enabled sequence, in the fixed
// resolve, keyword, search order, with log paths stamped with start.
func buildEndpoints(cfg *config.Config, start time.Time) ([]probe.Endpoint, error) {
	paths := cfg.LogPaths(start)

	urls := map[string]string{
		config.SequenceResolve: cfg.APIURLs.Resolve,
		config.SequenceKeyword: cfg.APIURLs.SearchKeyword,
		config.SequenceSearch:  cfg.APIURLs.Search,
	}
	logs := map[string]string{
		config.SequenceResolve: paths.Resolve,
		config.SequenceKeyword: paths.Keyword,
		config.SequenceSearch:  paths.BulkSearch,
	}

	var endpoints []probe.Endpoint
	for _, name := range config.AllSequences {
		if !cfg.Enabled(name) {
			continue
		}
		seq, err := probe.ParseSequence(name)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, probe.Endpoint{
			Sequence: seq,
			URL:      urls[name],
			LogPath:  logs[name],
		})
	}

	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no sequence enabled")
	}
	return endpoints, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
