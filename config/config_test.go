package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DB_NAME", "members")
	t.Setenv("DB_USERNAME", "user")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DB.Engine)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "1.0.0", cfg.Terms.CurrentVersion)
	assert.Equal(t, []byte("secret"), cfg.Auth.AccessTokenSecret)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "member:number", cfg.Valkey.Prefix)
	assert.Equal(t, 2*time.Minute, cfg.Valkey.ReservationTTL)
	assert.Equal(t, "member-service", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
}

func TestLoadProdSSLMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "require", cfg.DB.SSLMode)
	assert.False(t, cfg.Telemetry.OTLPInsecure)
}

func TestLoadMissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("DB_NAME", "members")
	t.Setenv("DB_USERNAME", "user")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingDBName(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_INSTANCE_IDENTIFIER", "")
	t.Setenv("DB_USERNAME", "user")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDBInstanceIdentifierFallback(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_INSTANCE_IDENTIFIER", "members-prod")
	t.Setenv("DB_USERNAME", "user")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "members-prod", cfg.DB.Name)
}

func TestLoadTermsVersionOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TERMS_CURRENT_VERSION", "2.1.0")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "2.1.0", cfg.Terms.CurrentVersion)
}

func TestLoadInvalidValkeyDB(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VALKEY_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidReservationTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VALKEY_RESERVATION_TTL", "nope")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseCSV("a, b"))
	assert.Equal(t, []string{"a"}, parseCSV("a,,"))
	assert.Nil(t, parseCSV(""))
}

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders("x-api-key=abc, x-team = core,malformed")
	assert.Equal(t, map[string]string{"x-api-key": "abc", "x-team": "core"}, headers)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "true")
	assert.True(t, getEnvBool("FLAG", false))

	t.Setenv("FLAG", "not-bool")
	assert.False(t, getEnvBool("FLAG", false))

	t.Setenv("FLAG", "")
	assert.True(t, getEnvBool("FLAG", true))
}
