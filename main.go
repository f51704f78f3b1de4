package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"member-service/config"
	"member-service/db"
	"member-service/gate"
	"member-service/handlers"
	"member-service/routes"
	"member-service/secretmanager"
	"member-service/store"
	"member-service/telemetry"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	loadEnv             = godotenv.Load
	loadConfig          = config.Load
	connectDB           = db.Connect
	newReservationStore = func(cfg config.ValkeyConfig) (store.NumberReservations, error) {
		return store.NewValkeyReservationStore(cfg)
	}
	initTelemetry  = telemetry.Init
	setupRoutes    = routes.SetupRoutes
	listenAndServe = http.ListenAndServe
	getSecret      = secretmanager.GetSecret
	logFatal       = log.Fatal
)

func loadSecretMap(secretName string) (map[string]string, error) {
	secretJSON, err := getSecret(secretName)
	if err != nil {
		return nil, err
	}
	secrets := make(map[string]string)
	if err := json.Unmarshal([]byte(secretJSON), &secrets); err != nil {
		return nil, err
	}
	return secrets, nil
}

func loadProdSecrets() error {
	jwtSecrets, err := loadSecretMap("prod/jwt")
	if err != nil {
		return fmt.Errorf("error retrieving JWT secret: %w", err)
	}
	for key, value := range jwtSecrets {
		os.Setenv(key, value)
	}

	pgSecrets, err := getSecret("prod/postgres")
	if err != nil {
		return fmt.Errorf("error retrieving Postgres secret: %w", err)
	}
	var pgValues map[string]interface{}
	if err := json.Unmarshal([]byte(pgSecrets), &pgValues); err != nil {
		return fmt.Errorf("error parsing Postgres secret JSON: %w", err)
	}
	os.Setenv("DB_USERNAME", pgValues["username"].(string))
	os.Setenv("DB_PASSWORD", pgValues["password"].(string))
	os.Setenv("DB_ENGINE", pgValues["engine"].(string))
	os.Setenv("DB_HOST", pgValues["host"].(string))
	os.Setenv("DB_PORT", fmt.Sprintf("%v", pgValues["port"]))
	os.Setenv("DB_INSTANCE_IDENTIFIER", pgValues["dbInstanceIdentifier"].(string))

	valkeySecrets, err := loadSecretMap("prod/valkey")
	if err == nil {
		for key, value := range valkeySecrets {
			os.Setenv(key, value)
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		logFatal(err)
	}
}

func run() error {
	if err := loadEnv(); err != nil {
		log.Println("No .env file found; using system environment variables")
	}
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	log.Println("Environment:", appEnv)

	if appEnv == "prod" {
		if err := loadProdSecrets(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	shutdownTelemetry, err := initTelemetry(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("telemetry error: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("telemetry shutdown error: %v", err)
		}
	}()

	if err := connectDB(cfg.DB); err != nil {
		return err
	}

	reservations, err := newReservationStore(cfg.Valkey)
	if err != nil {
		return fmt.Errorf("valkey connection error: %w", err)
	}
	defer reservations.Close()

	profiles := store.NewPostgresProfileStore()
	termsGate := gate.New(profiles, reservations, cfg.Terms.CurrentVersion, cfg.Valkey.ReservationTTL)

	memberHandler := handlers.NewMemberHandler(termsGate)
	router := setupRoutes(cfg, memberHandler)

	corsOpts := []gorillaHandlers.CORSOption{
		gorillaHandlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		gorillaHandlers.AllowCredentials(),
	}

	handler := otelhttp.NewHandler(gorillaHandlers.CORS(corsOpts...)(router), "member-service")

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s in %s environment (CORS: %s)", port, cfg.AppEnv, strings.Join(cfg.CORS.AllowedOrigins, ","))
	return listenAndServe(":"+port, handler)
}
