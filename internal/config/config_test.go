package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("AI_SERVICE_BASE_URL", "http://ai.test:8000")
	t.Setenv("S3_BUCKET", "fashion-images")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "fashion", cfg.MongoDatabase)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, 60*time.Second, cfg.AIServiceTimeout)
	assert.Equal(t, 3, cfg.AIRetryMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.AIRetryInitialDelay)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AI_SERVICE_TIMEOUT", "90s")
	t.Setenv("AI_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("AI_RETRY_INITIAL_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.AIServiceTimeout)
	assert.Equal(t, 5, cfg.AIRetryMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.AIRetryInitialDelay)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_RETRY_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("AI_SERVICE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.AIRetryMaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.AIServiceTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{
		AIServiceBaseURL:   "http://ai.test:8000",
		S3Bucket:           "fashion-images",
		JWTSecret:          "test-secret",
		AIRetryMaxAttempts: 3,
	}
	assert.NoError(t, base.Validate())

	missing := base
	missing.AIServiceBaseURL = ""
	assert.ErrorContains(t, missing.Validate(), "AI_SERVICE_BASE_URL")

	missing = base
	missing.S3Bucket = ""
	assert.ErrorContains(t, missing.Validate(), "S3_BUCKET")

	missing = base
	missing.JWTSecret = ""
	assert.ErrorContains(t, missing.Validate(), "JWT_SECRET")

	bad := base
	bad.AIRetryMaxAttempts = 0
	assert.ErrorContains(t, bad.Validate(), "AI_RETRY_MAX_ATTEMPTS")
}
