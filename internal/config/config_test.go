package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg := FromViper()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.AppOrigin)
	assert.False(t, cfg.Features.Passkeys)
	assert.False(t, cfg.Features.MultiBudget)
	assert.True(t, cfg.Features.Assignments)
	assert.Equal(t, 15*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 1025, cfg.SMTP.Port)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("FEATURE_MULTI_BUDGET", "true")
	t.Setenv("FEATURE_ASSIGNMENTS", "false")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_ORIGIN", "https://budget.example.com/")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port", "9090", "--seed=false"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.True(t, cfg.Features.MultiBudget)
	assert.False(t, cfg.Features.Assignments)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://budget.example.com", cfg.Server.AppOrigin)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.DevSeed)
}

func TestValidate(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg := FromViper()
	cfg.Server.Port = ""
	cfg.SMTP.Port = 0
	cfg.Auth.SessionTTL = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server port")
	assert.Contains(t, err.Error(), "smtp port")
	assert.Contains(t, err.Error(), "session ttl")
}
