package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "brain2-conceptmap/internal/errors"
)

var validate = validator.New()

// Load builds the configuration from defaults, the file named by CONFIG_FILE
// and the environment.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit file path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeYAML(&cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewValidation(fmt.Sprintf("invalid configuration: %v", err)).
			WithCode(apperrors.CodeInvalidConfig)
	}
	if c.IsProduction() && c.LLM.Provider == ProviderMock {
		return apperrors.NewValidation("mock llm provider is not allowed in production").
			WithCode(apperrors.CodeInvalidConfig)
	}
	if c.Auth.JWTSecret != "" && c.Auth.JWTPublicKey != "" {
		return apperrors.NewValidation("configure either a jwt secret or a jwt public key, not both").
			WithCode(apperrors.CodeInvalidConfig)
	}
	return nil
}

func mergeYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewInternal("read config file "+path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.NewValidation(fmt.Sprintf("parse config file %s: %v", path, err)).
			WithCode(apperrors.CodeInvalidConfig)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = Environment(getEnv("ENVIRONMENT", string(cfg.Environment)))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Version = getEnv("VERSION", cfg.Version)

	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Canvas.Width = getEnvFloat("CANVAS_WIDTH", cfg.Canvas.Width)
	cfg.Canvas.Height = getEnvFloat("CANVAS_HEIGHT", cfg.Canvas.Height)

	cfg.View.MinZoom = getEnvFloat("VIEW_MIN_ZOOM", cfg.View.MinZoom)
	cfg.View.MaxZoom = getEnvFloat("VIEW_MAX_ZOOM", cfg.View.MaxZoom)

	cfg.Notes.Source = getEnv("NOTES_SOURCE", cfg.Notes.Source)
	cfg.Notes.Path = getEnv("NOTES_PATH", cfg.Notes.Path)
	cfg.Notes.Watch = getEnvBool("NOTES_WATCH", cfg.Notes.Watch)
	cfg.Notes.TableName = getEnv("TABLE_NAME", cfg.Notes.TableName)
	cfg.Notes.UserID = getEnv("NOTES_USER_ID", cfg.Notes.UserID)
	cfg.Notes.Region = getEnv("AWS_REGION", cfg.Notes.Region)
	cfg.Notes.Endpoint = getEnv("DYNAMODB_ENDPOINT", cfg.Notes.Endpoint)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", cfg.LLM.Timeout)

	cfg.Observability.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.Observability.EnableMetrics)
	cfg.Observability.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.Observability.EnableTracing)
	cfg.Observability.TracingEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Observability.TracingEndpoint)

	cfg.Events.EventBusName = getEnv("EVENT_BUS_NAME", cfg.Events.EventBusName)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTPublicKey = getEnv("JWT_PUBLIC_KEY", cfg.Auth.JWTPublicKey)
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = getEnvList("JWT_AUDIENCE", cfg.Auth.Audience)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
