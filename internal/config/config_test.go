package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("VOTE_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.VoteTimeout)
	assert.False(t, cfg.RequirePhoneVerification)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:campusvote.db")
	t.Setenv("VOTE_TIMEOUT", "750ms")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REQUIRE_PHONE_VERIFICATION", "true")
	t.Setenv("OTP_RATE_LIMIT", "2.5")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:campusvote.db", cfg.DatabaseDSN)
	assert.Equal(t, 750*time.Millisecond, cfg.VoteTimeout)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.RequirePhoneVerification)
	assert.Equal(t, 2.5, cfg.OTPRateLimit)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("VOTE_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.VoteTimeout)
}

func TestOTPBypassCode(t *testing.T) {
	tests := []struct {
		name string
		env  string
		code string
		want string
	}{
		{name: "development honours bypass", env: EnvDevelopment, code: "123456", want: "123456"},
		{name: "production ignores bypass", env: EnvProduction, code: "123456", want: ""},
		{name: "development without bypass", env: EnvDevelopment, code: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Env: tt.env, OTPDevBypassCode: tt.code}
			assert.Equal(t, tt.want, cfg.OTPBypassCode())
		})
	}
}
