package helper

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MustStartPostgresContainer starts a postgres container for tests and examples.
// It returns a teardown function, the mapped host port and any startup error.
func MustStartPostgresContainer() (func(context.Context, ...testcontainers.TerminateOption) error, string, error) {
	var (
		dbName     = "database"
		dbPassword = "password"
		dbUsername = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:17-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUsername),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, "", err
	}

	return dbContainer.Terminate, dbPort.Port(), nil
}
