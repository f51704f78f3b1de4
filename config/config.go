package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	DB        DatabaseConfig
	Auth      AuthConfig
	Terms     TermsConfig
	CORS      CORSConfig
	Valkey    ValkeyConfig
	Telemetry TelemetryConfig
}

type DatabaseConfig struct {
	Engine   string
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	AccessTokenSecret []byte
	Issuer            string
	AccessCookieName  string
}

type TermsConfig struct {
	// CurrentVersion is compared by exact string equality against the
	// version stored on each profile at acceptance time.
	CurrentVersion string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ValkeyConfig struct {
	Addr           string
	Password       string
	DB             int
	Prefix         string
	ReservationTTL time.Duration
}

type TelemetryConfig struct {
	ServiceName          string
	ServiceVersion       string
	OTLPEndpoint         string
	OTLPTracesEndpoint   string
	OTLPMetricsEndpoint  string
	OTLPProtocol         string
	OTLPHeaders          map[string]string
	OTLPInsecure         bool
	ExportTimeout        time.Duration
	MetricExportInterval time.Duration
}

func Load() (Config, error) {
	appEnv := getEnv("APP_ENV", "dev")
	port := getEnv("APP_PORT", "8080")

	dbName := getEnv("DB_NAME", "")
	if dbName == "" {
		dbName = os.Getenv("DB_INSTANCE_IDENTIFIER")
	}

	accessSecret := os.Getenv("JWT_ACCESS_SECRET")
	if accessSecret == "" {
		return Config{}, errors.New("JWT_ACCESS_SECRET must be set")
	}

	corsOrigins := parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	valkeyDB, err := strconv.Atoi(getEnv("VALKEY_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid VALKEY_DB: %w", err)
	}
	reservationTTL, err := time.ParseDuration(getEnv("VALKEY_RESERVATION_TTL", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid VALKEY_RESERVATION_TTL: %w", err)
	}

	exportTimeout, err := time.ParseDuration(getEnv("OTEL_EXPORT_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_EXPORT_TIMEOUT: %w", err)
	}
	metricInterval, err := time.ParseDuration(getEnv("OTEL_METRIC_EXPORT_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_METRIC_EXPORT_INTERVAL: %w", err)
	}

	dbSSLMode := getEnv("DB_SSLMODE", "")
	if dbSSLMode == "" {
		if appEnv == "prod" {
			dbSSLMode = "require"
		} else {
			dbSSLMode = "disable"
		}
	}

	cfg := Config{
		AppEnv: appEnv,
		Port:   port,
		DB: DatabaseConfig{
			Engine:   getEnv("DB_ENGINE", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     dbName,
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  dbSSLMode,
		},
		Auth: AuthConfig{
			AccessTokenSecret: []byte(accessSecret),
			Issuer:            getEnv("JWT_ISSUER", "rideshare-auth"),
			AccessCookieName:  getEnv("AUTH_ACCESS_COOKIE_NAME", "access_token"),
		},
		Terms: TermsConfig{
			CurrentVersion: getEnv("TERMS_CURRENT_VERSION", "1.0.0"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Valkey: ValkeyConfig{
			Addr:           getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:       getEnv("VALKEY_PASSWORD", ""),
			DB:             valkeyDB,
			Prefix:         getEnv("VALKEY_PREFIX", "member:number"),
			ReservationTTL: reservationTTL,
		},
		Telemetry: TelemetryConfig{
			ServiceName:          getEnv("OTEL_SERVICE_NAME", "member-service"),
			ServiceVersion:       getEnv("OTEL_SERVICE_VERSION", "dev"),
			OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPTracesEndpoint:   getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""),
			OTLPMetricsEndpoint:  getEnv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", ""),
			OTLPProtocol:         getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			OTLPHeaders:          parseHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", "")),
			OTLPInsecure:         getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", appEnv != "prod"),
			ExportTimeout:        exportTimeout,
			MetricExportInterval: metricInterval,
		},
	}

	if cfg.DB.Name == "" || cfg.DB.Username == "" {
		return Config{}, errors.New("DB_NAME (or DB_INSTANCE_IDENTIFIER) and DB_USERNAME must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	var results []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func parseHeaders(value string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range parseCSV(value) {
		key, val, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return headers
}
