package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config carries everything the console needs to operate against the
// accounts API. A zero-value Config with only APIBaseURL set is usable:
// ApplyDefaults fills in the rest, so embedding hosts can hand the console
// a literal instead of going through the environment.
type Config struct {
	Env string

	// APIBaseURL is the host root the endpoint paths are joined onto.
	APIBaseURL  string `validate:"required,url"`
	HTTPTimeout time.Duration

	// Operator identity forwarded on the auth probe and uploader context.
	UserEmail string `validate:"omitempty,email"`
	UserID    string

	Listing Listing
	Jobs    Jobs
	Bulk    Bulk
	Exports Exports
	Upload  Upload
	Log     Log
}

// Listing tunes the directory view.
type Listing struct {
	PageSize       int
	SearchDebounce time.Duration
	LookupCacheTTL time.Duration
}

// Jobs tunes the background-job poller.
type Jobs struct {
	PollInterval time.Duration
	MaxAge       time.Duration
	FailureLimit int
}

// Bulk tunes the sequential bulk executor.
type Bulk struct {
	Pace    time.Duration
	Workers int
}

// Exports governs local snapshot/backup output.
type Exports struct {
	Dir            string
	BackupsEnabled bool
}

// Upload carries the onboarding options forwarded to the upload endpoints.
type Upload struct {
	Percentile        string
	SendNotifications bool
	NotificationEmail string
}

// Log tunes structured logging output.
type Log struct {
	Level  string
	Format string
}

// Load resolves configuration from the environment and an optional .env
// file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.APIBaseURL = v.GetString("API_BASE_URL")
	cfg.HTTPTimeout = parseDuration(v.GetString("HTTP_TIMEOUT"), 10*time.Second)
	cfg.UserEmail = v.GetString("USER_EMAIL")
	cfg.UserID = v.GetString("USER_ID")

	cfg.Listing = Listing{
		PageSize:       v.GetInt("PAGE_SIZE"),
		SearchDebounce: parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
		LookupCacheTTL: parseDuration(v.GetString("LOOKUP_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Jobs = Jobs{
		PollInterval: parseDuration(v.GetString("JOB_POLL_INTERVAL"), 3*time.Second),
		MaxAge:       parseDuration(v.GetString("JOB_MAX_AGE"), 30*time.Minute),
		FailureLimit: v.GetInt("JOB_FAILURE_LIMIT"),
	}

	cfg.Bulk = Bulk{
		Pace:    parseDuration(v.GetString("BULK_PACE"), 100*time.Millisecond),
		Workers: v.GetInt("BULK_WORKERS"),
	}

	cfg.Exports = Exports{
		Dir:            v.GetString("EXPORTS_DIR"),
		BackupsEnabled: v.GetBool("ENABLE_DELETE_BACKUPS"),
	}

	cfg.Upload = Upload{
		Percentile:        v.GetString("UPLOAD_PERCENTILE"),
		SendNotifications: v.GetBool("UPLOAD_SEND_NOTIFICATIONS"),
		NotificationEmail: v.GetString("UPLOAD_NOTIFICATION_EMAIL"),
	}

	cfg.Log = Log{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

// ApplyDefaults fills zero-value fields so a hand-built Config behaves like
// a loaded one.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.Listing.PageSize <= 0 {
		c.Listing.PageSize = 50
	}
	if c.Listing.SearchDebounce <= 0 {
		c.Listing.SearchDebounce = 300 * time.Millisecond
	}
	if c.Listing.LookupCacheTTL <= 0 {
		c.Listing.LookupCacheTTL = 10 * time.Minute
	}
	if c.Jobs.PollInterval <= 0 {
		c.Jobs.PollInterval = 3 * time.Second
	}
	if c.Jobs.MaxAge <= 0 {
		c.Jobs.MaxAge = 30 * time.Minute
	}
	if c.Jobs.FailureLimit <= 0 {
		c.Jobs.FailureLimit = 5
	}
	if c.Bulk.Pace <= 0 {
		c.Bulk.Pace = 100 * time.Millisecond
	}
	if c.Bulk.Workers <= 0 {
		c.Bulk.Workers = 1
	}
	if c.Exports.Dir == "" {
		c.Exports.Dir = "./exports"
	}
	if c.Upload.Percentile == "" {
		c.Upload.Percentile = "75"
	}
}

// Validate checks structural requirements after defaults were applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid console configuration")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("HTTP_TIMEOUT", "10s")

	v.SetDefault("USER_EMAIL", "")
	v.SetDefault("USER_ID", "")

	v.SetDefault("PAGE_SIZE", 50)
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("LOOKUP_CACHE_TTL", "10m")

	v.SetDefault("JOB_POLL_INTERVAL", "3s")
	v.SetDefault("JOB_MAX_AGE", "30m")
	v.SetDefault("JOB_FAILURE_LIMIT", 5)

	v.SetDefault("BULK_PACE", "100ms")
	v.SetDefault("BULK_WORKERS", 1)

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("ENABLE_DELETE_BACKUPS", true)

	v.SetDefault("UPLOAD_PERCENTILE", "75")
	v.SetDefault("UPLOAD_SEND_NOTIFICATIONS", true)
	v.SetDefault("UPLOAD_NOTIFICATION_EMAIL", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
