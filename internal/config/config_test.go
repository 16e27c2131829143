package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp switches into an empty temp dir so no config.yaml or .env is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

// unsetEnv clears key for the duration of the test and restores it after.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	for _, env := range legacyEnv {
		unsetEnv(t, env)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Company name", "Total Customer ARR"}, cfg.Revenue.RequiredFields)
	assert.Equal(t, "Company name", cfg.Revenue.NameColumn)
	assert.Equal(t, "Total Customer ARR", cfg.Revenue.ARRColumn)
	assert.Equal(t, "https://canny.io/api/v1", cfg.Canny.BaseURL)
	assert.Equal(t, 100, cfg.Canny.PageSize)
	assert.Equal(t, "fixed", cfg.Canny.Pagination)
	assert.InDelta(t, 5.0, cfg.Canny.RateLimit, 0.001)
	assert.Equal(t, 30, cfg.Canny.TimeoutSecs)
	assert.Equal(t, "Bot User", cfg.Slack.Username)
	assert.Equal(t, "Canny.io Company with naming mismatch to revenue report:", cfg.Slack.Header)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoadLegacyEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("REQUIRED_FIELDS", "Company name, Total Customer ARR,Owner")
	t.Setenv("REVENUE_FILE", "/data/hubspot.xlsx")
	t.Setenv("TOTAL_COMPANIES", "450")
	t.Setenv("API_KEY", "canny-key")
	t.Setenv("SLACKBOT_OAUTH_TOKEN", "xoxb-123")
	t.Setenv("SLACK_CHANNEL", "C0REVENUE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Company name", "Total Customer ARR", "Owner"}, cfg.Revenue.RequiredFields)
	assert.Equal(t, "/data/hubspot.xlsx", cfg.Revenue.File)
	assert.Equal(t, 450, cfg.Canny.TotalCompanies)
	assert.Equal(t, "canny-key", cfg.Canny.APIKey)
	assert.Equal(t, "xoxb-123", cfg.Slack.Token)
	assert.Equal(t, "C0REVENUE", cfg.Slack.Channel)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)
	unsetEnv(t, "TOTAL_COMPANIES")

	yaml := `
revenue:
  file: export.csv
  required_fields:
    - Company name
    - Total Customer ARR
    - Deal stage
  skip_rows: 2
  csv_delimiter: ";"
canny:
  total_companies: 1200
  pagination: exhaustive
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "export.csv", cfg.Revenue.File)
	assert.Equal(t, []string{"Company name", "Total Customer ARR", "Deal stage"}, cfg.Revenue.RequiredFields)
	assert.Equal(t, 2, cfg.Revenue.SkipRows)
	assert.Equal(t, ';', cfg.Revenue.Delimiter())
	assert.Equal(t, 1200, cfg.Canny.TotalCompanies)
	assert.Equal(t, "exhaustive", cfg.Canny.Pagination)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 100, cfg.Canny.PageSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
canny:
  page_size: 50
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MRR_CANNY_PAGE_SIZE", "25")
	t.Setenv("MRR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Canny.PageSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadPrefixedEnvForLegacyKey(t *testing.T) {
	chdirTemp(t)
	unsetEnv(t, "API_KEY")
	t.Setenv("MRR_CANNY_API_KEY", "prefixed-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-key", cfg.Canny.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	unsetEnv(t, "API_KEY")
	unsetEnv(t, "SLACK_CHANNEL")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_KEY=from-dotenv\nSLACK_CHANNEL=C-dotenv\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("SLACK_CHANNEL=C-local\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Canny.APIKey)
	assert.Equal(t, "C-local", cfg.Slack.Channel)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("canny: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestSplitFields(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitFields([]string{"a, b", " ", "c"}))
	assert.Nil(t, splitFields(nil))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config that passes every validation mode.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Revenue.File = "revenue.xlsx"
	cfg.Canny.APIKey = "canny-key"
	cfg.Canny.TotalCompanies = 500
	cfg.Canny.PageSize = 100
	cfg.Canny.Pagination = "fixed"
	cfg.Slack.Token = "xoxb-token"
	cfg.Slack.Channel = "C123"
	return cfg
}

func TestValidateSync_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("sync"))
	assert.NoError(t, cfg.Validate("dry-run"))
	assert.NoError(t, cfg.Validate("revenue"))
	assert.NoError(t, cfg.Validate("companies"))
}

func TestValidateSync_MissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.Canny.PageSize = 100
	cfg.Canny.Pagination = "fixed"

	err := cfg.Validate("sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revenue.file is required")
	assert.Contains(t, err.Error(), "canny.api_key is required")
	assert.Contains(t, err.Error(), "canny.total_companies must be > 0")
	assert.Contains(t, err.Error(), "slack.token is required")
	assert.Contains(t, err.Error(), "slack.channel is required")
}

func TestValidateDryRun_SkipsSlack(t *testing.T) {
	cfg := validDefaults()
	cfg.Slack = SlackConfig{}

	assert.NoError(t, cfg.Validate("dry-run"))
	assert.Error(t, cfg.Validate("sync"))
}

func TestValidateCompanies_Pagination(t *testing.T) {
	cfg := validDefaults()

	cfg.Canny.Pagination = "exhaustive"
	cfg.Canny.TotalCompanies = 0
	assert.NoError(t, cfg.Validate("companies"))

	cfg.Canny.Pagination = "cursor"
	err := cfg.Validate("companies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canny.pagination must be fixed or exhaustive")

	cfg.Canny.Pagination = "fixed"
	cfg.Canny.PageSize = 101
	err = cfg.Validate("companies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canny.page_size must be between 1 and 100")
}

func TestValidateRevenue_OnlyNeedsFile(t *testing.T) {
	cfg := &Config{}
	cfg.Revenue.File = "export.csv"
	assert.NoError(t, cfg.Validate("revenue"))
}

func TestValidateRevenue_TableLayout(t *testing.T) {
	cfg := &Config{}
	cfg.Revenue.File = "export.csv"
	cfg.Revenue.SkipRows = -1
	cfg.Revenue.CSVDelimiter = ";;"

	err := cfg.Validate("revenue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revenue.skip_rows must be >= 0")
	assert.Contains(t, err.Error(), "revenue.csv_delimiter must be a single character")

	cfg.Revenue.SkipRows = 1
	cfg.Revenue.CSVDelimiter = "\t"
	assert.NoError(t, cfg.Validate("revenue"))
	assert.Equal(t, '\t', cfg.Revenue.Delimiter())

	cfg.Revenue.CSVDelimiter = ""
	assert.Equal(t, rune(0), cfg.Revenue.Delimiter())
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
