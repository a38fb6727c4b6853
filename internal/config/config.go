package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/patient-registry/pkg/validator"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Events    EventsConfig    `mapstructure:"events"`
	Email     EmailConfig     `mapstructure:"email"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	// Path is the SQLite database file, or ":memory:".
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	// URL is the PostgreSQL connection string.
	URL string `mapstructure:"url" validate:"required_if=Driver postgres"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error fatal"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"gt=0"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path" validate:"startswith=/"`
	Namespace string `mapstructure:"namespace" validate:"required"`
}

type EventsConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=none redis rabbitmq"`
	RedisURL    string `mapstructure:"redis_url" validate:"required_if=Driver redis"`
	RabbitMQURL string `mapstructure:"rabbitmq_url" validate:"required_if=Driver rabbitmq"`
	Exchange    string `mapstructure:"exchange"`
	Topic       string `mapstructure:"topic" validate:"required"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required_if=Enabled true"`
}

// envOverrides are read with envconfig after the file has been applied; any
// non-empty value wins over the file.
type envOverrides struct {
	Port           int      `envconfig:"PORT"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	DatabaseDriver string   `envconfig:"DATABASE_DRIVER"`
	DatabasePath   string   `envconfig:"DATABASE_PATH"`
	DatabaseURL    string   `envconfig:"DATABASE_URL"`
	LogLevel       string   `envconfig:"LOG_LEVEL"`
	LogFormat      string   `envconfig:"LOG_FORMAT"`
	EventsDriver   string   `envconfig:"EVENTS_DRIVER"`
	RedisURL       string   `envconfig:"REDIS_URL"`
	RabbitMQURL    string   `envconfig:"RABBITMQ_URL"`
	SMTPHost       string   `envconfig:"SMTP_HOST"`
	SMTPPort       int      `envconfig:"SMTP_PORT"`
	SMTPUsername   string   `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string   `envconfig:"SMTP_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 10<<20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/clinic.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "patient_registry")

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.exchange", "clinic.events")
	v.SetDefault("events.topic", "patient.registered")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)
}

// LoadConfig reads config.yml from path (or CONFIG_FILE, or the usual
// directories), applies environment overrides and validates the result.
// A missing config file is not an error: defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if len(env.AllowedOrigins) > 0 {
		origins := make([]string, 0, len(env.AllowedOrigins))
		for _, o := range env.AllowedOrigins {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
	setString(&cfg.Database.Driver, env.DatabaseDriver)
	setString(&cfg.Database.Path, env.DatabasePath)
	setString(&cfg.Database.URL, env.DatabaseURL)
	setString(&cfg.Log.Level, strings.ToLower(env.LogLevel))
	setString(&cfg.Log.Format, strings.ToLower(env.LogFormat))
	setString(&cfg.Events.Driver, env.EventsDriver)
	setString(&cfg.Events.RedisURL, env.RedisURL)
	setString(&cfg.Events.RabbitMQURL, env.RabbitMQURL)
	setString(&cfg.Email.Host, env.SMTPHost)
	if env.SMTPPort != 0 {
		cfg.Email.Port = env.SMTPPort
	}
	setString(&cfg.Email.Username, env.SMTPUsername)
	setString(&cfg.Email.Password, env.SMTPPassword)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
