package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ModelName is the hosted model the query responder talks to.
const ModelName = "gemini-1.0-pro"

// ErrMissing is wrapped by every MissingError.
var ErrMissing = errors.New("missing configuration")

type Config struct {
	Server   ServerConfig
	GCP      GCPConfig
	Backends BackendConfig
	Dispatch DispatchConfig
	Sink     SinkConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Firebase FirebaseConfig
	App      AppConfig

	// DotenvLoaded reports whether a .env file was found by Load.
	DotenvLoaded bool
}

type ServerConfig struct {
	Port        string   `env:"PORT" validate:"required"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

type GCPConfig struct {
	ProjectID     string `env:"GCP_PROJECT" validate:"required"`
	Region        string `env:"FUNCTION_REGION" validate:"required"`
	ProcessorID   string `env:"DOC_AI_PROCESSOR_ID" validate:"required"`
	DocAILocation string `env:"DOC_AI_LOCATION"`
}

type BackendConfig struct {
	Model   string `env:"MODEL_BACKEND" validate:"oneof=mock vertex"`
	Extract string `env:"EXTRACT_BACKEND" validate:"oneof=mock gcp"`
}

type DispatchConfig struct {
	Rate  float64 `env:"DISPATCH_RATE" validate:"gt=0"`
	Burst int     `env:"DISPATCH_BURST" validate:"gte=1"`
}

type SinkConfig struct {
	Kind string        `env:"RESULT_SINK" validate:"oneof=none redis postgres"`
	TTL  time.Duration `env:"RESULT_TTL"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
}

type FirebaseConfig struct {
	CredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
}

type AppConfig struct {
	Environment string `env:"APP_ENV"`
	LogLevel    string `env:"LOG_LEVEL"`
	Version     string `env:"APP_VERSION"`
}

// MissingError lists the environment variables that a handler needs but
// were not set.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	if len(e.Vars) == 1 {
		return e.Vars[0] + " environment variable not set."
	}
	return strings.Join(e.Vars, ", ") + " environment variables not set."
}

func (e *MissingError) Unwrap() error { return ErrMissing }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report env var names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from the environment. A .env file is honoured
// when present. Load never fails on a missing project or processor ID: those
// are checked per handler by ValidateRouter and ValidateQuery so that each
// handler can report the problem through its own channel.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	region := getEnv("FUNCTION_REGION", "us-central1")
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		GCP: GCPConfig{
			ProjectID:     getEnv("GCP_PROJECT", ""),
			Region:        region,
			ProcessorID:   getEnv("DOC_AI_PROCESSOR_ID", ""),
			DocAILocation: getEnv("DOC_AI_LOCATION", region),
		},
		Backends: BackendConfig{
			Model:   getEnv("MODEL_BACKEND", "mock"),
			Extract: getEnv("EXTRACT_BACKEND", "mock"),
		},
		Dispatch: DispatchConfig{
			Rate:  getEnvAsFloat("DISPATCH_RATE", 4),
			Burst: getEnvAsInt("DISPATCH_BURST", 8),
		},
		Sink: SinkConfig{
			Kind: getEnv("RESULT_SINK", "none"),
			TTL:  getEnvAsDuration("RESULT_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "hio"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		DotenvLoaded: loaded,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the process-wide settings that every entry point shares.
func (c *Config) Validate() error {
	err := validate.StructPartial(c,
		"Server.Port",
		"Backends.Model",
		"Backends.Extract",
		"Dispatch.Rate",
		"Dispatch.Burst",
		"Sink.Kind",
	)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid %s=%q (%s %s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("validate config: %w", err)
}

// ValidateRouter checks what the document router needs before dispatching.
func (c *Config) ValidateRouter() error {
	return c.requirePresent("GCP.ProjectID", "GCP.ProcessorID")
}

// ValidateQuery checks what the query responder needs before answering.
func (c *Config) ValidateQuery() error {
	return c.requirePresent("GCP.ProjectID")
}

func (c *Config) requirePresent(fields ...string) error {
	err := validate.StructPartial(c, fields...)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	missing := &MissingError{}
	for _, fe := range verrs {
		missing.Vars = append(missing.Vars, fe.Field())
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
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
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
