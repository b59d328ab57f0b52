// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"millstock/internal/core/types"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the full configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	ERP       ERPConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Period    PeriodConfig
	Quality   QualityConfig
	Scheduler SchedulerConfig
	Reference ReferenceConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// IsDevelopment reports whether the service runs in development mode.
func (s ServerConfig) IsDevelopment() bool { return s.Env == "development" }

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Driver   string
	DSN      string
	MaxConns int32
	MinConns int32
}

// ERPConfig holds the read-only ERP connections. Empty DSNs disable the source.
type ERPConfig struct {
	SalesDSN      string
	ProductionDSN string
	CacheTTL      time.Duration
}

// RedisConfig configures the ERP cache. An empty address disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Disabled  bool
}

// PeriodConfig closes every date before ClosedUntil for changes.
type PeriodConfig struct {
	ClosedUntil types.Date
}

type QualityConfig struct {
	Rules string
}

type SchedulerConfig struct {
	RebuildCron    string
	RebuildDays    int
	AuditCron      string
	AuditRetention time.Duration
}

type ReferenceConfig struct {
	Workbook string
}

// Load reads the environment (and envFile or ./.env when present) into a validated Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var errs []error
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORAGE", StoragePostgres)),
			DSN:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getInt("DB_MAX_CONNS", 20, &errs)),
			MinConns: int32(getInt("DB_MIN_CONNS", 2, &errs)),
		},
		ERP: ERPConfig{
			SalesDSN:      os.Getenv("ERP_SALES_DSN"),
			ProductionDSN: os.Getenv("ERP_PRODUCTION_DSN"),
			CacheTTL:      getDuration("ERP_CACHE_TTL", 5*time.Minute, &errs),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0, &errs),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
			Issuer:    getEnv("JWT_ISSUER", "millstock"),
			Disabled:  getBool("AUTH_DISABLED", false, &errs),
		},
		Quality: QualityConfig{
			Rules: os.Getenv("QUALITY_RULES"),
		},
		Scheduler: SchedulerConfig{
			RebuildCron:    getEnv("REBUILD_CRON", "30 1 * * *"),
			RebuildDays:    getInt("REBUILD_DAYS", 7, &errs),
			AuditCron:      getEnv("AUDIT_CLEANUP_CRON", "0 3 * * 0"),
			AuditRetention: getDuration("AUDIT_RETENTION", 365*24*time.Hour, &errs),
		},
		Reference: ReferenceConfig{
			Workbook: os.Getenv("REFERENCE_WORKBOOK"),
		},
	}

	if v := os.Getenv("CLOSED_UNTIL"); v != "" {
		d, err := types.ParseDate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CLOSED_UNTIL: %w", err))
		}
		cfg.Period.ClosedUntil = d
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}

	switch c.Database.Driver {
	case StoragePostgres:
		if c.Database.DSN == "" {
			return errors.New("DATABASE_URL must be provided when STORAGE=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Database.Driver)
	}
	if c.Database.MaxConns < 1 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return errors.New("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max >= 1")
	}

	if !c.Auth.Disabled && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided unless AUTH_DISABLED=true")
	}
	if c.Auth.Disabled && !c.Server.IsDevelopment() {
		return errors.New("AUTH_DISABLED is only allowed with APP_ENV=development")
	}

	if c.Scheduler.RebuildDays < 1 {
		return errors.New("REBUILD_DAYS must be at least 1")
	}
	if c.ERP.CacheTTL <= 0 {
		return errors.New("ERP_CACHE_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
