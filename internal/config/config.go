package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	// ConfigFileVariable names an optional YAML file layered between the defaults
	// and the environment.
	ConfigFileVariable = "LEDGER_CONFIG_FILE"

	// DevelopmentJWTSecret is the default signing secret. Only the memory backend
	// accepts it.
	DevelopmentJWTSecret = "local-development-secret"
)

type Config struct {
	Postgres PostgresConfig `koanf:"postgres"`
	HTTP     HTTPConfig     `koanf:"http"`
	Store    StoreConfig    `koanf:"store"`
	Operator OperatorConfig `koanf:"operator"`
	Log      LogConfig      `koanf:"log"`
	Report   ReportConfig   `koanf:"report"`
	Auth     AuthConfig     `koanf:"auth"`
	AMQP     AMQPConfig     `koanf:"amqp"`
	Digest   DigestConfig   `koanf:"digest"`
}

type PostgresConfig struct {
	Address  string `koanf:"address"`
	Port     string `koanf:"port"`
	DB       string `koanf:"db"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type HTTPConfig struct {
	Port string `koanf:"port"`
}

type StoreConfig struct {
	Backend        string `koanf:"backend"`
	MigrateOnStart bool   `koanf:"migrate_on_start"`
}

type OperatorConfig struct {
	Workers int `koanf:"workers"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ReportConfig struct {
	Timezone     string        `koanf:"timezone"`
	WeekStart    string        `koanf:"week_start"`
	PageSize     int           `koanf:"page_size"`
	StoreTimeout time.Duration `koanf:"store_timeout"`

	// Resolved by Validate.
	Location *time.Location `koanf:"-"`
	Weekday  time.Weekday   `koanf:"-"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type AMQPConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

type DigestConfig struct {
	Schedule string `koanf:"schedule"`
}

// In all cases the default behavior should be for the docker compose setup
var defaults = map[string]interface{}{
	"postgres.address":       "localhost",
	"postgres.port":          "5433",
	"postgres.db":            "postgres",
	"postgres.username":      "postgres",
	"postgres.password":      "testpassword",
	"http.port":              "9446",
	"store.backend":          BackendPostgres,
	"store.migrate_on_start": false,
	"operator.workers":       4,
	"log.level":              "info",
	"report.timezone":        "UTC",
	"report.week_start":      "monday",
	"report.page_size":       10,
	"report.store_timeout":   "5s",
	"auth.jwt_secret":        DevelopmentJWTSecret,
	"auth.token_ttl":         "17520h",
	"amqp.url":               "",
	"amqp.exchange":          "ledger.events",
	"digest.schedule":        "",
}

var envKeys = map[string]string{
	"POSTGRES_ADDRESS":     "postgres.address",
	"POSTGRES_PORT":        "postgres.port",
	"POSTGRES_DB":          "postgres.db",
	"POSTGRES_USERNAME":    "postgres.username",
	"POSTGRES_PASSWORD":    "postgres.password",
	"HTTP_PORT":            "http.port",
	"STORE_BACKEND":        "store.backend",
	"MIGRATE_ON_START":     "store.migrate_on_start",
	"OPERATOR_WORKERS":     "operator.workers",
	"LOG_LEVEL":            "log.level",
	"REPORT_TIMEZONE":      "report.timezone",
	"REPORT_WEEK_START":    "report.week_start",
	"REPORT_PAGE_SIZE":     "report.page_size",
	"REPORT_STORE_TIMEOUT": "report.store_timeout",
	"AUTH_JWT_SECRET":      "auth.jwt_secret",
	"AUTH_TOKEN_TTL":       "auth.token_ttl",
	"AMQP_URL":             "amqp.url",
	"AMQP_EXCHANGE":        "amqp.exchange",
	"DIGEST_SCHEDULE":      "digest.schedule",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ProcessEnvironmentVariables() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigFileVariable); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("", ".", func(name string) string {
		return envKeys[name]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.Postgres.Username + ":" +
		c.Postgres.Password + "@" + c.Postgres.Address + ":" +
		c.Postgres.Port + "/" + c.Postgres.DB + "?sslmode=disable"
}

// Validate checks every setting and resolves the report location and weekday.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("REPORT_TIMEZONE %q is not a known timezone", c.Report.Timezone))
	} else {
		c.Report.Location = loc
	}

	weekday, ok := weekdays[strings.ToLower(strings.TrimSpace(c.Report.WeekStart))]
	if !ok {
		errs = append(errs, fmt.Sprintf("REPORT_WEEK_START %q is not a weekday", c.Report.WeekStart))
	} else {
		c.Report.Weekday = weekday
	}

	if c.Report.PageSize < 1 {
		errs = append(errs, "REPORT_PAGE_SIZE must be at least 1")
	}
	if c.Report.StoreTimeout <= 0 {
		errs = append(errs, "REPORT_STORE_TIMEOUT must be positive")
	}
	if c.Store.Backend != BackendPostgres && c.Store.Backend != BackendMemory {
		errs = append(errs, fmt.Sprintf("STORE_BACKEND %q must be %q or %q", c.Store.Backend, BackendPostgres, BackendMemory))
	}
	if c.Operator.Workers < 1 {
		errs = append(errs, "OPERATOR_WORKERS must be at least 1")
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "AUTH_JWT_SECRET is required")
	} else if c.Auth.JWTSecret == DevelopmentJWTSecret && c.Store.Backend == BackendPostgres {
		errs = append(errs, "AUTH_JWT_SECRET must be set when STORE_BACKEND is postgres")
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, "AUTH_TOKEN_TTL must be positive")
	}
	if c.Digest.Schedule != "" {
		if _, err := cron.ParseStandard(c.Digest.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("DIGEST_SCHEDULE %q: %v", c.Digest.Schedule, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
