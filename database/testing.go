package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// PostgresURLEnv names the variable that switches test databases from SQLite to Postgres.
const PostgresURLEnv = "AIRPORT_TEST_POSTGRES_URL"

// TestingT is an interface for testing compatibility.
type TestingT interface {
	Logf(format string, args ...any)
	FailNow()
	Cleanup(func())
}

// SetupTestDatabase creates an isolated test database.
// It uses a private in-memory SQLite database unless PostgresURLEnv is set, in which
// case it creates a fresh schema on that Postgres server.
func SetupTestDatabase(t TestingT) *sql.DB {
	var id = fmt.Sprintf("test_%s", uuid.New().String()[0:8])

	if connURL := os.Getenv(PostgresURLEnv); connURL != "" {
		return setupPostgres(t, connURL, id)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", id))
	if err != nil {
		t.Logf("failed to open sqlite database: %v", err)
		t.FailNow()
	}

	// A shared in-memory database lives as long as one connection does.
	conn.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func setupPostgres(t TestingT, connURL, schema string) *sql.DB {
	// First, connect to create the schema
	conn, err := sql.Open("postgres", connURL)
	if err != nil {
		t.Logf("failed to connect to database. Is your local database running?: %v", err)
		t.FailNow()
	}

	_, err = conn.Exec("CREATE SCHEMA IF NOT EXISTS " + schema)
	if err != nil {
		t.Logf("Failed to create schema %s", schema)
		t.Logf("Error: %s", err)
		t.FailNow()
	}

	conn.Close()

	var separator = "?"
	if strings.Contains(connURL, "?") {
		separator = "&"
	}

	conn, err = sql.Open("postgres", fmt.Sprintf("%s%ssearch_path=%s", connURL, separator, schema))
	if err != nil {
		t.Logf("failed to connect to database with schema: %v", err)
		t.FailNow()
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}
