package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the single configuration surface for the process: every knob
// named in §6 plus the ambient server/db/search settings the teacher's own
// Config carried. Loaded once in cmd/server/main.go and threaded through
// every C1-C10 constructor.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Auth        AuthConfig
	GenAI       GenAIConfig
	Processing  ProcessingConfig
	Scheduler   SchedulerConfig
	LegalCase   LegalCaseProviderConfig
	OpenSearch  OpenSearchConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Port           string
	Production     bool
	AllowedOrigins string
}

// DatabaseConfig builds the pgx connection string consumed by
// internal/repository.Connect.
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	UseSSL   bool
}

func (d DatabaseConfig) DSN() string {
	sslmode := "disable"
	if d.UseSSL {
		sslmode = "require"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, sslmode)
}

// StorageConfig is the subset of §6's AWS_REGION/S3_BUCKET the object store
// gateway needs; pkg/objectstore.Config itself carries endpoint/credential
// overrides for S3-compatible local testing.
type StorageConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	MaxUploadBytes  int64
}

type AuthConfig struct {
	JWTSecret string
}

// GenAIConfig drives pkg/genai.Gateway construction: provider selection,
// credentials, and the retry/semaphore/timeout knobs of §4.1.
type GenAIConfig struct {
	Provider         string // "openai" or "mock"
	APIKey           string
	Model            string
	MaxInFlight      int
	RetryMaxAttempts int
	RetryInitial     time.Duration
	RetryMax         time.Duration
	CallTimeout      time.Duration
	PromptsPath      string
	RulesPath        string
}

type ProcessingConfig struct {
	MaxClassifyWorkers int
	MaxExtractWorkers  int
}

// SchedulerConfig drives the cron-triggered legal-case sync job (C8).
type SchedulerConfig struct {
	Timezone      string
	CronBatchSize int
	ExternalRPM   int
	StaleAfter    time.Duration
	LockTTL       time.Duration
}

// LegalCaseProviderConfig drives pkg/legalcase/provider.Client (C3): the
// external judicial API's base URL and static API key.
type LegalCaseProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type OpenSearchConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseSSL   bool
	Index    string
}

type LoggingConfig struct {
	Level              string
	EnableRequestLog   bool
	EnableErrorDetails bool
	EnableStackTrace   bool
}

func Load() (*Config, error) {
	environment := getEnv("ENVIRONMENT", "local")
	if getEnvBool("PRODUCTION", false) {
		environment = "production"
	}

	var defaultOrigins string
	if environment == "local" {
		defaultOrigins = "http://localhost:3000,http://localhost:5173"
	}

	opensearchPort, err := parseEnvInt("OPENSEARCH_PORT", 9200)
	if err != nil {
		return nil, err
	}

	maxUploadBytes, err := parseEnvInt64("MAX_UPLOAD_BYTES", 25*1024*1024)
	if err != nil {
		return nil, err
	}

	maxClassifyWorkers, err := parseEnvInt("MAX_CLASSIFY_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	maxExtractWorkers, err := parseEnvInt("MAX_EXTRACT_WORKERS", 6)
	if err != nil {
		return nil, err
	}

	iaMaxInFlight, err := parseEnvInt("IA_MAX_IN_FLIGHT", 4)
	if err != nil {
		return nil, err
	}

	retryMaxAttempts, err := parseEnvInt("RETRY_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}

	retryInitial, err := parseEnvDuration("RETRY_INITIAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	retryMax, err := parseEnvDuration("RETRY_MAX", 10*time.Second)
	if err != nil {
		return nil, err
	}

	iaTimeoutSeconds, err := parseEnvInt("IA_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	cronBatchSize, err := parseEnvInt("CRON_BATCH_SIZE", 20)
	if err != nil {
		return nil, err
	}

	externalRPM, err := parseEnvInt("EXTERNAL_RPM", 60)
	if err != nil {
		return nil, err
	}

	datajudTimeoutSeconds, err := parseEnvInt("DATAJUD_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: environment,
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Production:     environment == "production" || getEnvBool("PRODUCTION", false),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", defaultOrigins),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Username: getEnv("DB_USERNAME", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_DATABASE", "pescasolic"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Storage: StorageConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MaxUploadBytes:  maxUploadBytes,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		GenAI: GenAIConfig{
			Provider:         getEnv("GENAI_PROVIDER", "openai"),
			APIKey:           getEnv("OPENAI_API_KEY", ""),
			Model:            getEnv("OPENAI_MODEL", "gpt-4"),
			MaxInFlight:      iaMaxInFlight,
			RetryMaxAttempts: retryMaxAttempts,
			RetryInitial:     retryInitial,
			RetryMax:         retryMax,
			CallTimeout:      time.Duration(iaTimeoutSeconds) * time.Second,
			PromptsPath:      getEnv("PROMPTS_PATH", "config/prompts.yaml"),
			RulesPath:        getEnv("RULES_PATH", "config/rules.txt"),
		},
		Processing: ProcessingConfig{
			MaxClassifyWorkers: maxClassifyWorkers,
			MaxExtractWorkers:  maxExtractWorkers,
		},
		Scheduler: SchedulerConfig{
			Timezone:      getEnv("SCHED_TIMEZONE", "America/Sao_Paulo"),
			CronBatchSize: cronBatchSize,
			ExternalRPM:   externalRPM,
			StaleAfter:    getEnvDuration("SCHED_STALE_AFTER", 72*time.Hour),
			LockTTL:       getEnvDuration("SCHED_LOCK_TTL", 30*time.Minute),
		},
		LegalCase: LegalCaseProviderConfig{
			BaseURL: getEnv("DATAJUD_BASE_URL", ""),
			APIKey:  getEnv("DATAJUD_API_KEY", ""),
			Timeout: time.Duration(datajudTimeoutSeconds) * time.Second,
		},
		OpenSearch: OpenSearchConfig{
			Host:     getEnv("OPENSEARCH_HOST", ""),
			Port:     opensearchPort,
			Username: getEnv("OPENSEARCH_USERNAME", ""),
			Password: getEnv("OPENSEARCH_PASSWORD", ""),
			UseSSL:   getEnvBool("OPENSEARCH_USE_SSL", environment != "local"),
			Index:    getEnv("OPENSEARCH_INDEX", "pescasolic-dashboard"),
		},
		Logging: LoggingConfig{
			Level:              getEnv("LOG_LEVEL", "info"),
			EnableRequestLog:   getEnvBool("ENABLE_REQUEST_LOGGING", true),
			EnableErrorDetails: getEnvBool("ENABLE_ERROR_DETAILS", environment == "local"),
			EnableStackTrace:   getEnvBool("ENABLE_STACK_TRACE", environment == "local"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateGenAI(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) validateGenAI() error {
	if c.GenAI.Provider != "openai" && c.GenAI.Provider != "mock" {
		return fmt.Errorf("GENAI_PROVIDER must be 'openai' or 'mock'")
	}
	if c.GenAI.Provider == "openai" && c.GenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when GENAI_PROVIDER=openai")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Server.Production
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseEnvInt parses an environment variable as an integer with error handling.
func parseEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number", key)
	}
	return intValue, nil
}

// parseEnvInt64 parses an environment variable as an int64 with error handling.
func parseEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number", key)
	}
	return intValue, nil
}

// parseEnvDuration parses an environment variable as a duration with error handling.
func parseEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration", key)
	}
	return duration, nil
}
