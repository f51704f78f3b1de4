package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"member-service/config"

	_ "github.com/lib/pq" // Postgres driver
)

var (
	DB     *sql.DB
	openDB = sql.Open
)

// Connect opens the profile database and verifies the connection before the
// global handle is published. Pool limits are sized for a small stateless
// service instance.
func Connect(cfg config.DatabaseConfig) error {
	if cfg.Engine != "postgres" {
		return fmt.Errorf("unsupported database engine: %s", cfg.Engine)
	}

	conn, err := openDB("postgres", dsn(cfg))
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}

	DB = conn
	log.Printf("Connected to Postgres database %q on %s:%s", cfg.Name, cfg.Host, cfg.Port)
	return nil
}

func dsn(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLMode)
}
