package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appSettings = `{
  "ApiUrls": {
    "Resolve": "https://svc.example.com/api/securities/resolve",
    "SearchKeyword": "https://svc.example.com/api/securities/search/",
    "Search": "https://svc.example.com/api/securities/search"
  },
  "FilePaths": {
    "DriverFile": "ids.txt",
    "LogOutFileForResolve": "logs/resolve_{0}.log",
    "LogOutFileForSearch": "logs/search_{0}.log"
  },
  "BearerToken": "static-token"
}`

func TestParse_AppSettingsJSON(t *testing.T) {
	cfg, err := Parse([]byte(appSettings))
	require.NoError(t, err)

	assert.Equal(t, "https://svc.example.com/api/securities/resolve", cfg.APIURLs.Resolve)
	assert.Equal(t, "https://svc.example.com/api/securities/search/", cfg.APIURLs.SearchKeyword)
	assert.Equal(t, "ids.txt", cfg.FilePaths.DriverFile)
	assert.Equal(t, "static-token", cfg.BearerToken)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, AllSequences, cfg.Sequences)
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
	assert.NoError(t, cfg.Validate())
}

func TestParse_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("SECPROBE_TEST_TOKEN", "from-env")

	data := `
ApiUrls:
  Resolve: https://svc/resolve
FilePaths:
  DriverFile: ids.txt
  LogOutFileForResolve: resolve_{timestamp}.log
BearerToken: ${SECPROBE_TEST_TOKEN}
Timeout: 30s
Sequences: [resolve]
ValidateSSL: false
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.BearerToken)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"resolve"}, cfg.Sequences)
	assert.True(t, cfg.Enabled(SequenceResolve))
	assert.False(t, cfg.Enabled(SequenceKeyword))
	assert.False(t, cfg.GetValidateSSL())
	assert.Empty(t, cfg.Warnings)
	assert.NoError(t, cfg.Validate())
}

func TestParse_MissingEnvVariableWarns(t *testing.T) {
	cfg, err := Parse([]byte("BearerToken: ${SECPROBE_TEST_SURELY_UNSET}\n"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.BearerToken)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "SECPROBE_TEST_SURELY_UNSET")
}

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestParse_ExpandsAfterDecoding(t *testing.T) {
	token := `a"b\c: #d`
	lookup := lookupFrom(map[string]string{"TOKEN": token, "SSL": "false", "TIMEOUT": "45s"})

	tests := []struct {
		name string
		data string
	}{
		{
			name: "json",
			data: `{"BearerToken": "${TOKEN}", "ValidateSSL": false, "Timeout": "${TIMEOUT}"}`,
		},
		{
			name: "yaml plain scalars",
			data: "BearerToken: ${TOKEN}\nValidateSSL: ${SSL}\nTimeout: ${TIMEOUT}\n",
		},
		{
			name: "yaml single quoted",
			data: "BearerToken: '${TOKEN}'\nValidateSSL: ${SSL}\nTimeout: '${TIMEOUT}'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse([]byte(tt.data), lookup)
			require.NoError(t, err)
			assert.Equal(t, token, cfg.BearerToken)
			assert.False(t, cfg.GetValidateSSL())
			assert.Equal(t, 45*time.Second, cfg.Timeout)
			assert.Empty(t, cfg.Warnings)
		})
	}
}

func TestParse_LeavesODataParametersAlone(t *testing.T) {
	cfg, err := parse([]byte(`ApiUrls: {Search: "https://svc/search?$filter=x"}`), lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "https://svc/search?$filter=x", cfg.APIURLs.Search)
}

func TestParse_KeysAreCaseInsensitive(t *testing.T) {
	data := `{
  "apiUrls": {
    "resolve": "https://svc/resolve",
    "searchKeyword": "https://svc/search/",
    "SEARCH": "https://svc/search"
  },
  "filePaths": {
    "driverFile": "ids.txt",
    "logOutFileForResolve": "resolve_{0}.log",
    "logOutFileForSearch": "search_{0}.log"
  },
  "bearerToken": "t",
  "sequences": ["resolve"]
}`
	cfg, err := parse([]byte(data), lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "https://svc/resolve", cfg.APIURLs.Resolve)
	assert.Equal(t, "https://svc/search/", cfg.APIURLs.SearchKeyword)
	assert.Equal(t, "https://svc/search", cfg.APIURLs.Search)
	assert.Equal(t, "ids.txt", cfg.FilePaths.DriverFile)
	assert.Equal(t, "search_{0}.log", cfg.FilePaths.LogOutFileForSearch)
	assert.Equal(t, "t", cfg.BearerToken)
	assert.Equal(t, []string{"resolve"}, cfg.Sequences)
	assert.Empty(t, cfg.Warnings)
	assert.NoError(t, cfg.Validate())
}

func TestParse_UnknownTopLevelKeyWarns(t *testing.T) {
	data := `{"Logging": {"LogLevel": {"Default": "Information"}}, "BearerToken": "t"}`
	cfg, err := parse([]byte(data), lookupFrom(nil))
	require.NoError(t, err)

	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], `unknown key "Logging"`)
	assert.Equal(t, "t", cfg.BearerToken)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := parse(nil, lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.Warnings)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("ApiUrls: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.BearerToken = "" },
			wantErr: "BearerToken is required",
		},
		{
			name:    "missing driver file",
			mutate:  func(c *Config) { c.FilePaths.DriverFile = "" },
			wantErr: "FilePaths.DriverFile is required",
		},
		{
			name:    "missing keyword url",
			mutate:  func(c *Config) { c.APIURLs.SearchKeyword = "" },
			wantErr: "ApiUrls.SearchKeyword is required",
		},
		{
			name:    "unknown sequence",
			mutate:  func(c *Config) { c.Sequences = []string{"resolve", "bogus"} },
			wantErr: `unknown sequence "bogus"`,
		},
		{
			name: "disabled sequence needs no url",
			mutate: func(c *Config) {
				c.Sequences = []string{SequenceResolve}
				c.APIURLs.Search = ""
				c.APIURLs.SearchKeyword = ""
				c.FilePaths.LogOutFileForSearch = ""
			},
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: "Timeout cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(appSettings))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogPaths(t *testing.T) {
	cfg, err := Parse([]byte(appSettings))
	require.NoError(t, err)

	start := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*3600))
	paths := cfg.LogPaths(start)

	assert.Equal(t, "logs/resolve_20260304_100607.log", paths.Resolve)
	assert.Equal(t, "logs/search_20260304_100607.log", paths.Keyword)
	assert.Equal(t, "logs/search_20260304_100607_bulk.log", paths.BulkSearch)
}

func TestLogPaths_ExplicitBulkTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilePaths.LogOutFileForSearch = "search_{0}.log"
	cfg.FilePaths.LogOutFileForBulkSearch = "bulk-{timestamp}.txt"

	paths := cfg.LogPaths(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "bulk-20260102_030405.txt", paths.BulkSearch)
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := FindAndLoadConfig(dir)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "appsettings.json"), []byte(appSettings), 0644))
	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "static-token", cfg.BearerToken)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "secprobe.yaml"), []byte("BearerToken: yaml-token\n"), 0644))
	cfg, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "yaml-token", cfg.BearerToken)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(appSettings))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "secprobe.yaml")
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.APIURLs, loaded.APIURLs)
	assert.Equal(t, cfg.FilePaths, loaded.FilePaths)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
}
