package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MODEL_SOURCE", "")
	t.Setenv("SCORER_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10000", cfg.Server.Port)
	assert.Equal(t, ModelSourceBuiltin, cfg.Model.Source)
	assert.Equal(t, ScorerModeLocal, cfg.Scorer.Mode)
	assert.True(t, cfg.Model.Fallback)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Scorer.Timeout)
	assert.False(t, cfg.DatabaseEnabled())
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_SOURCE", "S3")
	t.Setenv("MODEL_BUCKET", "models-bucket")
	t.Setenv("MODEL_FALLBACK", "false")
	t.Setenv("SCORER_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ModelSourceS3, cfg.Model.Source)
	assert.Equal(t, "models-bucket", cfg.Model.Bucket)
	assert.False(t, cfg.Model.Fallback)
	assert.Equal(t, 250*time.Millisecond, cfg.Scorer.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.DatabaseEnabled())
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("SCORER_TIMEOUT", "soon")
	t.Setenv("MODEL_FALLBACK", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Scorer.Timeout)
	assert.True(t, cfg.Model.Fallback)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080"},
			Model:  ModelConfig{Source: ModelSourceBuiltin},
			Scorer: ScorerConfig{Mode: ScorerModeLocal, Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "PORT"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Model.Source = ModelSourceS3; c.Model.Key = "k" }, wantErr: "MODEL_BUCKET"},
		{name: "file without path", mutate: func(c *Config) { c.Model.Source = ModelSourceFile }, wantErr: "MODEL_PATH"},
		{name: "unknown source", mutate: func(c *Config) { c.Model.Source = "gcs" }, wantErr: "MODEL_SOURCE"},
		{name: "remote without url", mutate: func(c *Config) { c.Scorer.Mode = ScorerModeRemote }, wantErr: "SCORER_URL"},
		{name: "unknown mode", mutate: func(c *Config) { c.Scorer.Mode = "batch" }, wantErr: "SCORER_MODE"},
		{name: "zero timeout", mutate: func(c *Config) { c.Scorer.Timeout = 0 }, wantErr: "SCORER_TIMEOUT"},
		{name: "negative burst", mutate: func(c *Config) { c.RateLimit.Burst = -1 }, wantErr: "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
