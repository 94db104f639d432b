package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/toeiclab/toeic-backend/internal/data/db"
	httpMW "github.com/toeiclab/toeic-backend/internal/http/middleware"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/envutil"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
)

const devJWTSecret = "defaultsecret"

type Config struct {
	Port    string `yaml:"port"`
	LogMode string `yaml:"log_mode"`

	DB    db.Config       `yaml:"db"`
	Redis bus.RedisConfig `yaml:"redis"`

	JWTSecretKey string `yaml:"jwt_secret_key"`

	ProgressWindowMinutes         int           `yaml:"progress_window_minutes"`
	RecommendationHistoryLimit    int           `yaml:"recommendation_history_limit"`
	RecommendationRefreshInterval time.Duration `yaml:"recommendation_refresh_interval"`

	CORSOrigins    []string                 `yaml:"cors_allowed_origins"`
	MetricsEnabled bool                     `yaml:"metrics_enabled"`
	Otel           observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Port:                          "8080",
		LogMode:                       "development",
		DB:                            db.Config{Driver: db.DriverPostgres, Port: "5432"},
		Redis:                         bus.RedisConfig{Channel: bus.DefaultChannel},
		ProgressWindowMinutes:         int(core.DefaultEligibilityWindow / time.Minute),
		RecommendationHistoryLimit:    core.DefaultHistoryLimit,
		RecommendationRefreshInterval: 15 * time.Minute,
		CORSOrigins:                   httpMW.DefaultAllowedOrigins,
		MetricsEnabled:                true,
		Otel:                          observability.OtelConfig{ServiceName: "toeic-backend", SampleRatio: 1},
	}
}

// LoadConfig layers defaults, the optional YAML file named by CONFIG_FILE,
// and environment variables, in that order.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if cfg.JWTSecretKey == "" && !cfg.Production() {
		cfg.JWTSecretKey = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envutil.String("DATABASE_DSN", cfg.DB.DSN)
	cfg.DB.Host = envutil.String("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envutil.String("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envutil.String("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envutil.String("POSTGRES_NAME", cfg.DB.Name)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)

	cfg.ProgressWindowMinutes = envutil.Int("PROGRESS_WINDOW_MINUTES", cfg.ProgressWindowMinutes)
	cfg.RecommendationHistoryLimit = envutil.Int("RECOMMENDATION_HISTORY_LIMIT", cfg.RecommendationHistoryLimit)
	cfg.RecommendationRefreshInterval = envutil.Duration("RECOMMENDATION_REFRESH_INTERVAL", cfg.RecommendationRefreshInterval)

	cfg.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", envutil.String("APP_ENV", cfg.Otel.Environment))
	cfg.Otel.Version = envutil.String("APP_VERSION", cfg.Otel.Version)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_TRACES_SAMPLER_ARG", cfg.Otel.SampleRatio)
}

func (c Config) Production() bool {
	switch strings.ToLower(strings.TrimSpace(c.LogMode)) {
	case "prod", "production":
		return true
	}
	return false
}

func (c Config) ProgressWindow() time.Duration {
	return time.Duration(c.ProgressWindowMinutes) * time.Minute
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.ProgressWindowMinutes <= 0 {
		errs = append(errs, fmt.Errorf("PROGRESS_WINDOW_MINUTES must be positive, got %d", c.ProgressWindowMinutes))
	}
	if c.RecommendationHistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("RECOMMENDATION_HISTORY_LIMIT must be positive, got %d", c.RecommendationHistoryLimit))
	}
	if c.RecommendationRefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("RECOMMENDATION_REFRESH_INTERVAL must not be negative, got %s", c.RecommendationRefreshInterval))
	}
	if c.Production() && (c.JWTSecretKey == "" || c.JWTSecretKey == devJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be set in production"))
	}
	return errors.Join(errs...)
}
