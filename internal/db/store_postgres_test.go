package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapdb/internal/logging"
)

const (
	defaultPostgreSQLPort = 5432
	dbConnectionTimeout   = 5 * time.Second
)

// postgresTestDSN builds the test database URL from TEST_DB_* variables.
func postgresTestDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnvOrDefault("TEST_DB_USER", "test_user"), getEnvOrDefault("TEST_DB_PASSWORD", "test_password")),
		Host:     fmt.Sprintf("%s:%d", getEnvOrDefault("TEST_DB_HOST", "localhost"), getEnvIntOrDefault("TEST_DB_PORT", defaultPostgreSQLPort)),
		Path:     "/" + getEnvOrDefault("TEST_DB_NAME", "nmapdb_test"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// openPostgres connects to the test database or skips the test.
func openPostgres(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbConnectionTimeout)
	defer cancel()

	store, err := Open(ctx, &Config{DSN: postgresTestDSN()}, logging.Discard())
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}

	dropTables := func() {
		_, _ = store.db.Exec("DROP TABLE IF EXISTS ports")
		_, _ = store.db.Exec("DROP TABLE IF EXISTS hosts")
	}
	dropTables()
	t.Cleanup(func() {
		dropTables()
		_ = store.Close()
	})
	return store
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	store := openPostgres(t)

	require.NoError(t, store.ExecSchema(ctx, "schema.sql", DefaultSchema()))
	require.NoError(t, store.Begin(ctx))

	assert.True(t, store.InsertHost(ctx, testHost).OK())

	// The rejected row must not abort the surrounding transaction.
	dup := store.InsertHost(ctx, testHost)
	assert.Equal(t, InsertConstraintViolation, dup.Outcome)

	assert.True(t, store.InsertPort(ctx, testPort).OK())
	assert.True(t, store.InsertPort(ctx, testPort).OK())
	require.NoError(t, store.Commit())

	var hosts, ports int
	require.NoError(t, store.db.Get(&hosts, "SELECT COUNT(*) FROM hosts"))
	require.NoError(t, store.db.Get(&ports, "SELECT COUNT(*) FROM ports"))
	assert.Equal(t, 1, hosts)
	assert.Equal(t, 2, ports)
}
