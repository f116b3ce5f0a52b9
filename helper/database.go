package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds all connection parameters for a PostgreSQL database
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration creates a database configuration from environment variables.
// A .env file in the working directory is loaded first if present.
// Required variables: DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD.
// Optional: DB_SCHEMA (default "public"), DB_SSLMODE (default "disable").
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// Ignore error, envs can also be set directly
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Database: os.Getenv("DB_DATABASE"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   os.Getenv("DB_SCHEMA"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" || config.Password == "" {
		return nil, fmt.Errorf("missing required database environment variables (DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD)")
	}

	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// ConnectionString returns the postgres connection string for the configuration
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
		c.Schema,
	)
}

// Database wraps an sql.DB instance with a name and logger
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a database connection and verifies it with a ping.
// It panics if the connection cannot be established, as nothing works without it.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	err = db.Ping()
	if err != nil {
		log.Panicf("error pinging database: %v", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Name:     name,
		Instance: db,
		Logger:   logger,
	}
}

// NewTestDatabase creates a database connection for tests with a default logger
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelWarn,
		},
	}
	logger := slog.New(NewPrettyHandler(os.Stdout, opts))

	return NewDatabase("test", config, logger)
}

// SetTestDatabaseConfigEnvs sets the database environment variables for tests
// to point at a local postgres container on the given port.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", port)
	t.Setenv("DB_DATABASE", "database")
	t.Setenv("DB_USERNAME", "user")
	t.Setenv("DB_PASSWORD", "password")
	t.Setenv("DB_SCHEMA", "public")
	t.Setenv("DB_SSLMODE", "disable")
}
