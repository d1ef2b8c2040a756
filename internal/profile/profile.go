package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/Avaneesh16/Travel-Genie/server/timezone"
)

// EnvPrefix prefixes every environment variable read by the profile.
const EnvPrefix = "TRAVELGENIE"

// Calendar backends.
const (
	BackendStore  = "store"
	BackendGoogle = "google"
	BackendICS    = "ics"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string `mapstructure:"mode"`
	// Addr is the binding address for server
	Addr string `mapstructure:"addr"`
	// Port is the binding port for server
	Port int `mapstructure:"port"`
	// Data is the data directory
	Data string `mapstructure:"data"`
	// DSN points to where travel-genie stores its own data
	DSN string `mapstructure:"dsn"`
	// Driver is the database driver (sqlite or postgres)
	Driver string `mapstructure:"driver"`
	// Version is the current version of server
	Version string `mapstructure:"version"`

	// Timezone every date phrase is resolved in.
	Timezone string `mapstructure:"timezone"`

	// Calendar backend: store, google or ics.
	CalendarBackend       string `mapstructure:"calendar_backend"`
	GoogleCredentialsFile string `mapstructure:"google_credentials_file"`
	GoogleTokenFile       string `mapstructure:"google_token_file"`
	GoogleCalendarID      string `mapstructure:"google_calendar_id"`
	ICSPath               string `mapstructure:"ics_path"`
	// ICSRefresh is a cron spec for reloading the ICS file; empty disables it.
	ICSRefresh string `mapstructure:"ics_refresh"`

	// Conversational fallback.
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIModel   string `mapstructure:"openai_model"`

	// Optional L2 cache.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`

	// Per-session chat rate limit.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	// MaxConcurrentChats bounds chats talking to the calendar backend at once.
	MaxConcurrentChats int64 `mapstructure:"max_concurrent_chats"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"mode":                    "dev",
		"addr":                    "",
		"port":                    8081,
		"data":                    ".",
		"dsn":                     "",
		"driver":                  "sqlite",
		"version":                 "0.1.0",
		"timezone":                "America/Denver",
		"calendar_backend":        BackendStore,
		"google_credentials_file": "credentials.json",
		"google_calendar_id":      "primary",
		"google_token_file":       "token.json",
		"ics_path":                "calendar.ics",
		"ics_refresh":             "",
		"openai_api_key":          "",
		"openai_base_url":         "https://api.openai.com/v1",
		"openai_model":            "gpt-4o-mini",
		"redis_addr":              "",
		"redis_password":          "",
		"rate_limit":              2.0,
		"rate_burst":              5,
		"max_concurrent_chats":    int64(8),
		"log_level":               "info",
		"log_format":              "text",
	}
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an OpenAI-compatible key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.OpenAIAPIKey != ""
}

// Location returns the configured zone, or UTC when it does not load.
func (p *Profile) Location() *time.Location {
	return timezone.Resolve(time.UTC, p.Timezone)
}

// SlogLevel maps LogLevel to a slog level.
func (p *Profile) SlogLevel() slog.Level {
	switch strings.ToLower(p.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + "_" + key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from TRAVELGENIE_* environment variables,
// falling back to the defaults for anything unset.
func (p *Profile) FromEnv() {
	d := Defaults()
	str := func(key string) string {
		def, _ := d[strings.ToLower(key)].(string)
		return getEnvOrDefault(key, def)
	}

	p.Mode = str("MODE")
	p.Addr = str("ADDR")
	p.Port, _ = strconv.Atoi(getEnvOrDefault("PORT", strconv.Itoa(d["port"].(int))))
	p.Data = str("DATA")
	p.DSN = str("DSN")
	p.Driver = str("DRIVER")
	p.Version = str("VERSION")
	p.Timezone = str("TIMEZONE")
	p.CalendarBackend = str("CALENDAR_BACKEND")
	p.GoogleCredentialsFile = str("GOOGLE_CREDENTIALS_FILE")
	p.GoogleTokenFile = str("GOOGLE_TOKEN_FILE")
	p.GoogleCalendarID = str("GOOGLE_CALENDAR_ID")
	p.ICSPath = str("ICS_PATH")
	p.ICSRefresh = str("ICS_REFRESH")
	p.OpenAIAPIKey = str("OPENAI_API_KEY")
	p.OpenAIBaseURL = str("OPENAI_BASE_URL")
	p.OpenAIModel = str("OPENAI_MODEL")
	p.RedisAddr = str("REDIS_ADDR")
	p.RedisPassword = str("REDIS_PASSWORD")
	p.LogLevel = str("LOG_LEVEL")
	p.LogFormat = str("LOG_FORMAT")

	p.RateLimit, _ = strconv.ParseFloat(getEnvOrDefault("RATE_LIMIT", "2"), 64)
	p.RateBurst, _ = strconv.Atoi(getEnvOrDefault("RATE_BURST", "5"))
	p.MaxConcurrentChats, _ = strconv.ParseInt(getEnvOrDefault("MAX_CONCURRENT_CHATS", "8"), 10, 64)
}

// NewViper returns a viper instance with defaults and the TRAVELGENIE_ env prefix.
// When configFile is set it is read as YAML.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}
	return v, nil
}

// FromViper decodes every setting from v.
func FromViper(v *viper.Viper) (*Profile, error) {
	p := &Profile{}
	// Every key has a default so AutomaticEnv overrides reach Unmarshal.
	if err := v.Unmarshal(p); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile")
	}
	return p, nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "travelgenie")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/travelgenie"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("travelgenie_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.Timezone == "" {
		p.Timezone = timezone.DefaultTimezone
	}
	if _, err := timezone.ParseTimezone(p.Timezone); err != nil {
		return errors.Wrap(err, "failed to load timezone")
	}

	switch p.CalendarBackend {
	case "":
		p.CalendarBackend = BackendStore
	case BackendStore, BackendGoogle, BackendICS:
	default:
		return errors.Errorf("unknown calendar backend %q", p.CalendarBackend)
	}
	if p.CalendarBackend == BackendICS && p.ICSPath == "" {
		return errors.New("ics backend requires ics_path")
	}

	return nil
}
