package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTestEnv sets environment variables for testing and returns a cleanup function.
func setTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()

	originalValues := make(map[string]string)
	originalExists := make(map[string]bool)

	for key := range envVars {
		if val, exists := os.LookupEnv(key); exists {
			originalValues[key] = val
			originalExists[key] = true
		}
	}

	for key, value := range envVars {
		os.Setenv(key, value)
	}

	return func() {
		for key := range envVars {
			if originalExists[key] {
				os.Setenv(key, originalValues[key])
			} else {
				os.Unsetenv(key)
			}
		}
	}
}

func minimalEnv() map[string]string {
	return map[string]string{
		"ENVIRONMENT": "local",
		"PORT":        "8080",
		"JWT_SECRET":  "test-secret",
		"S3_BUCKET":   "test-bucket",
	}
}

func TestLoadMinimalConfig(t *testing.T) {
	// The default provider is openai, which requires an API key.
	cleanup := setTestEnv(t, mergeEnv(minimalEnv(), map[string]string{"OPENAI_API_KEY": "test-key"}))
	defer cleanup()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "openai", cfg.GenAI.Provider)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cleanup := setTestEnv(t, mergeEnv(minimalEnv(), map[string]string{
		"GENAI_PROVIDER": "mock",
	}))
	defer cleanup()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.GenAI.MaxInFlight)
	assert.Equal(t, 3, cfg.GenAI.RetryMaxAttempts)
	assert.Equal(t, 20, cfg.Scheduler.CronBatchSize)
	assert.Equal(t, 60, cfg.Scheduler.ExternalRPM)
	assert.Equal(t, int64(25*1024*1024), cfg.Storage.MaxUploadBytes)
}

func TestValidateServerConfig(t *testing.T) {
	tests := []struct {
		name        string
		port        string
		shouldError bool
		errorMsg    string
	}{
		{name: "valid port", port: "8080"},
		{name: "non-numeric port", port: "nope", shouldError: true, errorMsg: "PORT must be a valid number"},
		{name: "port too low", port: "0", shouldError: true, errorMsg: "PORT must be between 1 and 65535"},
		{name: "port too high", port: "70000", shouldError: true, errorMsg: "PORT must be between 1 and 65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setTestEnv(t, mergeEnv(minimalEnv(), map[string]string{"PORT": tt.port, "GENAI_PROVIDER": "mock"}))
			defer cleanup()

			_, err := Load()
			if tt.shouldError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateStorageRequiresBucket(t *testing.T) {
	env := minimalEnv()
	delete(env, "S3_BUCKET")
	cleanup := setTestEnv(t, env)
	defer cleanup()

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET is required")
}

func TestValidateAuthRequiresJWTSecret(t *testing.T) {
	env := minimalEnv()
	delete(env, "JWT_SECRET")
	cleanup := setTestEnv(t, env)
	defer cleanup()

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestValidateGenAIProvider(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		shouldError bool
		errorMsg    string
	}{
		{
			name:    "mock provider needs no api key",
			envVars: map[string]string{"GENAI_PROVIDER": "mock"},
		},
		{
			name:        "unknown provider rejected",
			envVars:     map[string]string{"GENAI_PROVIDER": "anthropic"},
			shouldError: true,
			errorMsg:    "GENAI_PROVIDER must be 'openai' or 'mock'",
		},
		{
			name:        "openai provider requires api key",
			envVars:     map[string]string{"GENAI_PROVIDER": "openai"},
			shouldError: true,
			errorMsg:    "OPENAI_API_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setTestEnv(t, mergeEnv(minimalEnv(), tt.envVars))
			defer cleanup()

			_, err := Load()
			if tt.shouldError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDSNBuildsPostgresURL(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Username: "u", Password: "p", Database: "d"}
	assert.Equal(t, "postgres://u:p@db:5432/d?sslmode=disable", db.DSN())

	db.UseSSL = true
	assert.Equal(t, "postgres://u:p@db:5432/d?sslmode=require", db.DSN())
}

func mergeEnv(base map[string]string, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
