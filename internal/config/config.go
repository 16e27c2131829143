package config

import (
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Revenue RevenueConfig `yaml:"revenue" mapstructure:"revenue"`
	Canny   CannyConfig   `yaml:"canny" mapstructure:"canny"`
	Slack   SlackConfig   `yaml:"slack" mapstructure:"slack"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// RevenueConfig locates the CRM revenue export and its columns.
type RevenueConfig struct {
	File           string   `yaml:"file" mapstructure:"file"`
	Sheet          string   `yaml:"sheet" mapstructure:"sheet"`
	RequiredFields []string `yaml:"required_fields" mapstructure:"required_fields"`
	NameColumn     string   `yaml:"name_column" mapstructure:"name_column"`
	ARRColumn      string   `yaml:"arr_column" mapstructure:"arr_column"`
	SkipRows       int      `yaml:"skip_rows" mapstructure:"skip_rows"`
	CSVDelimiter   string   `yaml:"csv_delimiter" mapstructure:"csv_delimiter"`
}

// Delimiter returns the CSV field separator, or 0 for the default comma.
func (r RevenueConfig) Delimiter() rune {
	for _, c := range r.CSVDelimiter {
		return c
	}
	return 0
}

// CannyConfig holds Canny API settings.
type CannyConfig struct {
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	TotalCompanies int     `yaml:"total_companies" mapstructure:"total_companies"`
	PageSize       int     `yaml:"page_size" mapstructure:"page_size"`
	Pagination     string  `yaml:"pagination" mapstructure:"pagination"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SlackConfig holds the bot credentials and destination for mismatch reports.
type SlackConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	Channel  string `yaml:"channel" mapstructure:"channel"`
	Username string `yaml:"username" mapstructure:"username"`
	Header   string `yaml:"header" mapstructure:"header"`
	APIURL   string `yaml:"api_url" mapstructure:"api_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// legacyEnv maps config keys to the environment names used by the original
// .env files.
var legacyEnv = map[string]string{
	"revenue.required_fields": "REQUIRED_FIELDS",
	"revenue.file":            "REVENUE_FILE",
	"canny.total_companies":   "TOTAL_COMPANIES",
	"canny.api_key":           "API_KEY",
	"slack.token":             "SLACKBOT_OAUTH_TOKEN",
	"slack.channel":           "SLACK_CHANNEL",
}

// envFiles are loaded in order; variables already set are never overwritten.
var envFiles = []string{".env.local", ".env"}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "MRR_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", env)
		}
	}

	// Defaults
	v.SetDefault("revenue.required_fields", []string{"Company name", "Total Customer ARR"})
	v.SetDefault("revenue.name_column", "Company name")
	v.SetDefault("revenue.arr_column", "Total Customer ARR")
	v.SetDefault("revenue.skip_rows", 0)
	v.SetDefault("revenue.csv_delimiter", "")
	v.SetDefault("canny.base_url", "https://canny.io/api/v1")
	v.SetDefault("canny.total_companies", 0)
	v.SetDefault("canny.page_size", 100)
	v.SetDefault("canny.pagination", "fixed")
	v.SetDefault("canny.rate_limit", 5.0)
	v.SetDefault("canny.timeout_secs", 30)
	v.SetDefault("slack.username", "Bot User")
	v.SetDefault("slack.header", "Canny.io Company with naming mismatch to revenue report:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Revenue.RequiredFields = splitFields(cfg.Revenue.RequiredFields)

	return &cfg, nil
}

// splitFields flattens comma-separated entries and trims each column name.
func splitFields(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, f := range strings.Split(entry, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}

// Validate checks that the settings needed by the given command are present.
// Every problem is reported, not just the first.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "sync":
		errs = append(errs, c.validateRevenue()...)
		errs = append(errs, c.validateCanny()...)
		errs = append(errs, c.validateSlack()...)
	case "dry-run":
		errs = append(errs, c.validateRevenue()...)
		errs = append(errs, c.validateCanny()...)
	case "revenue":
		errs = append(errs, c.validateRevenue()...)
	case "companies":
		errs = append(errs, c.validateCanny()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateRevenue() []string {
	var errs []string
	if c.Revenue.File == "" {
		errs = append(errs, "revenue.file is required (REVENUE_FILE)")
	}
	if c.Revenue.SkipRows < 0 {
		errs = append(errs, "revenue.skip_rows must be >= 0")
	}
	if utf8.RuneCountInString(c.Revenue.CSVDelimiter) > 1 {
		errs = append(errs, "revenue.csv_delimiter must be a single character")
	}
	return errs
}

func (c *Config) validateCanny() []string {
	var errs []string
	if c.Canny.APIKey == "" {
		errs = append(errs, "canny.api_key is required (API_KEY)")
	}
	if c.Canny.PageSize < 1 || c.Canny.PageSize > 100 {
		errs = append(errs, "canny.page_size must be between 1 and 100")
	}
	switch c.Canny.Pagination {
	case "fixed":
		if c.Canny.TotalCompanies <= 0 {
			errs = append(errs, "canny.total_companies must be > 0 (TOTAL_COMPANIES)")
		}
	case "exhaustive":
	default:
		errs = append(errs, "canny.pagination must be fixed or exhaustive")
	}
	return errs
}

func (c *Config) validateSlack() []string {
	var errs []string
	if c.Slack.Token == "" {
		errs = append(errs, "slack.token is required (SLACKBOT_OAUTH_TOKEN)")
	}
	if c.Slack.Channel == "" {
		errs = append(errs, "slack.channel is required (SLACK_CHANNEL)")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.Output != "" {
		zapCfg.OutputPaths = []string{cfg.Output}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
