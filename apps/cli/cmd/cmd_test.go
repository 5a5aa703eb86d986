package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/secprobe/packages/core/config"
	"github.com/abdul-hamid-achik/secprobe/packages/probe"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func resetRunFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		configFlag, envFileFlag, tokenFlag, idsFlag = "", "", "", ""
		timeoutFlag, onlyFlag, proxyFlag = "", "", ""
		insecureFlag, noColorFlag, verboseFlag = false, false, false
	}
	reset()
	t.Cleanup(reset)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitConfigError, exitCode(withExitCode(ExitConfigError, errors.New("bad"))))
	assert.Equal(t, ExitRunError, exitCode(fmt.Errorf("wrapped: %w", withExitCode(ExitRunError, errors.New("log")))))
	assert.Equal(t, ExitUsageError, exitCode(errors.New(`unknown flag: --nope`)))
	assert.Nil(t, withExitCode(ExitRunError, nil))
}

func TestApplyRunFlags(t *testing.T) {
	resetRunFlags(t)

	tokenFlag = "flag-token"
	idsFlag = "other.txt"
	timeoutFlag = "30s"
	onlyFlag = "resolve, keyword"
	insecureFlag = true

	cfg := config.DefaultConfig()
	cfg.BearerToken = "file-token"
	require.NoError(t, applyRunFlags(cfg))

	assert.Equal(t, "flag-token", cfg.BearerToken)
	assert.Equal(t, "other.txt", cfg.FilePaths.DriverFile)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"resolve", "keyword"}, cfg.Sequences)
	assert.False(t, cfg.GetValidateSSL())
}

func TestApplyRunFlags_Invalid(t *testing.T) {
	resetRunFlags(t)

	timeoutFlag = "soon"
	assert.Error(t, applyRunFlags(config.DefaultConfig()))

	timeoutFlag = ""
	onlyFlag = " , "
	assert.Error(t, applyRunFlags(config.DefaultConfig()))
}

func TestBuildEndpoints(t *testing.T) {
	cfg := sampleConfig()
	start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	endpoints, err := buildEndpoints(cfg, start)
	require.NoError(t, err)
	require.Len(t, endpoints, 3)

	assert.Equal(t, probe.Resolve, endpoints[0].Sequence)
	assert.Equal(t, cfg.APIURLs.Resolve, endpoints[0].URL)
	assert.Equal(t, "logs/resolve_20240309_140507.log", endpoints[0].LogPath)

	assert.Equal(t, probe.Keyword, endpoints[1].Sequence)
	assert.Equal(t, cfg.APIURLs.SearchKeyword, endpoints[1].URL)
	assert.Equal(t, "logs/search_20240309_140507.log", endpoints[1].LogPath)

	assert.Equal(t, probe.BulkSearch, endpoints[2].Sequence)
	assert.Equal(t, cfg.APIURLs.Search, endpoints[2].URL)
	assert.Equal(t, "logs/search_20240309_140507_bulk.log", endpoints[2].LogPath)
}

func TestBuildEndpoints_Subset(t *testing.T) {
	cfg := sampleConfig()
	cfg.Sequences = []string{config.SequenceSearch, config.SequenceResolve}

	endpoints, err := buildEndpoints(cfg, time.Now())
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, probe.Resolve, endpoints[0].Sequence, "run order is fixed")
	assert.Equal(t, probe.BulkSearch, endpoints[1].Sequence)
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, initProject(cmd, dir, false))
	assert.Contains(t, out.String(), "secprobe.yaml")

	t.Setenv("SECPROBE_TOKEN", "abc")
	cfg, err := config.LoadConfig(filepath.Join(dir, "secprobe.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.BearerToken)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.NoError(t, cfg.Validate())

	ids, err := os.ReadFile(filepath.Join(dir, "ids.txt"))
	require.NoError(t, err)
	assert.Equal(t, sampleIdentifiers, string(ids))

	err = initProject(cmd, dir, false)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	assert.NoError(t, initProject(cmd, dir, true))
}

func TestRunCommand_EndToEnd(t *testing.T) {
	resetRunFlags(t)

	var (
		mu           sync.Mutex
		bulkKeywords []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/resolve", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer e2e-token", r.Header.Get("Authorization"))
		var req probe.ResolveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string][]map[string]string{
			req.Key(): {{"PpaSecurityId": "X1"}, {"PpaSecurityId": "X2"}},
		})
	})
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{}, {}, {}]`))
	})
	mux.HandleFunc("/bulk", func(w http.ResponseWriter, r *http.Request) {
		var req probe.BulkSearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		bulkKeywords = req.Keywords
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	idsPath := filepath.Join(dir, "ids.txt")
	require.NoError(t, os.WriteFile(idsPath, []byte("AAPL\nMSFT\n"), 0644))

	configYAML := fmt.Sprintf(`ApiUrls:
  Resolve: %[1]s/resolve
  SearchKeyword: %[1]s/search/
  Search: %[1]s/bulk
FilePaths:
  DriverFile: %[2]s
  LogOutFileForResolve: %[3]s/resolve_{0}.log
  LogOutFileForSearch: %[3]s/search_{0}.log
BearerToken: ${SECPROBE_E2E_TOKEN}
Timeout: 10s
`, server.URL, idsPath, dir)
	configPath := filepath.Join(dir, "secprobe.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SECPROBE_E2E_TOKEN=e2e-token\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SECPROBE_E2E_TOKEN") })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--config", configPath, "--env-file", envPath, "--no-color"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, ":AAPL resolved in [")
	assert.Contains(t, text, "[Security count = 2, PPA Ids = X1 | X2]")
	assert.Contains(t, text, "/search/MSFT?Limit=10&LocalOnly=true found 3 in ")
	assert.Contains(t, text, "PROBE SUMMARY")
	mu.Lock()
	assert.Equal(t, []string{"AAPL", "MSFT"}, bulkKeywords)
	mu.Unlock()

	logs, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 3)

	for _, path := range logs {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if strings.HasSuffix(path, "_bulk.log") {
			assert.Len(t, lines, 1, path)
		} else {
			assert.Len(t, lines, 2, path)
		}
	}
}

func TestRunCommand_ConfigErrors(t *testing.T) {
	resetRunFlags(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "secprobe.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ApiUrls:\n  Resolve: http://localhost/resolve\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"run", "--config", configPath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
	assert.Contains(t, err.Error(), "BearerToken is required")

	rootCmd.SetArgs([]string{"run", "--config", filepath.Join(dir, "missing.yaml")})
	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

// countingSyncer records log output and how often it was flushed
type countingSyncer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	syncs int
}

func (s *countingSyncer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *countingSyncer) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs++
	return nil
}

func TestExecute_SyncsLoggerWhenCommandFails(t *testing.T) {
	resetRunFlags(t)

	ws := &countingSyncer{}
	original := newLogger
	newLogger = func(verbose bool) (*zap.Logger, error) {
		core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), ws, zapcore.DebugLevel)
		return zap.New(core), nil
	}
	t.Cleanup(func() {
		newLogger = original
		logger = zap.NewNop()
	})

	dir := t.TempDir()
	configPath := filepath.Join(dir, "secprobe.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("BearerToken: ${SECPROBE_SYNC_TEST_UNSET}\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"run", "--config", configPath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := execute()
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))

	ws.mu.Lock()
	defer ws.mu.Unlock()
	assert.Equal(t, 1, ws.syncs)
	assert.Contains(t, ws.buf.String(), "SECPROBE_SYNC_TEST_UNSET")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "secprobe version dev")
}
