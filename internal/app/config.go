package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/jobs/orderaudit"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type Config struct {
	Env      string
	LogMode  string
	LogLevel string

	HTTPAddr       string
	RequestTimeout time.Duration
	CORSOrigins    []string

	DB db.Config

	DefaultLimit  int
	MaxLimit      int
	ReorderTries  int
	VerifyDensity bool

	RedisAddr    string
	RedisChannel string

	MetricsEnabled bool
	Otel           observability.OtelConfig

	AuditSchedule string
	AuditMode     orderaudit.Mode
	AuditRPS      float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("HTTP_REQUEST_TIMEOUT", 15*time.Second)
	v.SetDefault("CORS_ORIGINS", "")

	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_NAME", "lms")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)

	v.SetDefault("PAGINATION_DEFAULT_LIMIT", 10)
	v.SetDefault("PAGINATION_MAX_LIMIT", 0)
	v.SetDefault("REORDER_MAX_ATTEMPTS", 3)
	v.SetDefault("REORDER_VERIFY_DENSITY", false)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_CHANNEL", "")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "lms-backend")
	v.SetDefault("OTEL_EXPORTER", "otlp")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("OTEL_EXPORTER_OTLP_HEADERS", "")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
	v.SetDefault("APP_VERSION", "dev")

	v.SetDefault("ORDER_AUDIT_SCHEDULE", "*/15 * * * *")
	v.SetDefault("ORDER_AUDIT_MODE", string(orderaudit.ModeReport))
	v.SetDefault("ORDER_AUDIT_RPS", 50.0)
}

// LoadConfig reads an optional .env file, then the environment. log may be
// nil before the logger exists.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	cfg := fromViper(v)
	if log != nil {
		log.Info("config loaded",
			"env", cfg.Env,
			"http_addr", cfg.HTTPAddr,
			"db_driver", cfg.DB.Driver,
			"redis", cfg.RedisAddr != "",
			"metrics", cfg.MetricsEnabled,
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Env:      v.GetString("APP_ENV"),
		LogMode:  v.GetString("LOG_MODE"),
		LogLevel: v.GetString("LOG_LEVEL"),

		HTTPAddr:       v.GetString("HTTP_ADDR"),
		RequestTimeout: v.GetDuration("HTTP_REQUEST_TIMEOUT"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),

		DB: db.Config{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("POSTGRES_HOST"),
			Port:         v.GetString("POSTGRES_PORT"),
			User:         v.GetString("POSTGRES_USER"),
			Password:     v.GetString("POSTGRES_PASSWORD"),
			Name:         v.GetString("POSTGRES_NAME"),
			SSLMode:      v.GetString("POSTGRES_SSLMODE"),
			SQLitePath:   v.GetString("SQLITE_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},

		DefaultLimit:  v.GetInt("PAGINATION_DEFAULT_LIMIT"),
		MaxLimit:      v.GetInt("PAGINATION_MAX_LIMIT"),
		ReorderTries:  v.GetInt("REORDER_MAX_ATTEMPTS"),
		VerifyDensity: v.GetBool("REORDER_VERIFY_DENSITY"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisChannel: v.GetString("REDIS_CHANNEL"),

		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
			Exporter:    v.GetString("OTEL_EXPORTER"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			Headers:     observability.ParseHeaders(v.GetString("OTEL_EXPORTER_OTLP_HEADERS")),
			SampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
		},

		AuditSchedule: strings.TrimSpace(v.GetString("ORDER_AUDIT_SCHEDULE")),
		AuditMode:     orderaudit.ParseMode(v.GetString("ORDER_AUDIT_MODE")),
		AuditRPS:      v.GetFloat64("ORDER_AUDIT_RPS"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
