// Package testutil provisions an isolated PostgreSQL database per test,
// migrates it, and tears it down afterwards.
//
// Grounded on original_source/service/src/service.rs's TestConfig/Drop
// pair: a uuid-suffixed database name, created via the server connection
// and dropped via the same connection once the test finishes, with any
// lingering backends terminated first so the DROP DATABASE doesn't block.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/rsvp/config"
)

// MigrationsPath is the directory golang-migrate reads migration files
// from, relative to the package under test. Overridable for packages that
// live deeper in the tree.
var MigrationsPath = "../../migrations"

// TestDB is a migrated, per-test PostgreSQL database and a pool connected
// to it.
type TestDB struct {
	Pool   *pgxpool.Pool
	Config config.DBConfig
}

// NewTestDB reads base (server connection details, no dbname) from the
// RESERVATIONS_TEST_DB_HOST, RESERVATIONS_TEST_DB_USER and
// RESERVATIONS_TEST_DB_PASSWORD env vars, falling back to localhost defaults,
// creates a database named test_<uuid>, migrates it, and registers a
// t.Cleanup that drops it.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	base := baseDBConfig()
	base.DBName = fmt.Sprintf("test_%s", uuid.New().String())

	ctx := context.Background()

	adminPool, err := pgxpool.New(ctx, base.ServerURL())
	if err != nil {
		t.Fatalf("testutil: connect to server: %v", err)
	}
	defer adminPool.Close()

	if _, err := adminPool.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %q`, base.DBName)); err != nil {
		t.Fatalf("testutil: create database %s: %v", base.DBName, err)
	}

	t.Cleanup(func() {
		dropDatabase(base)
	})

	if err := migrateUp(base.URL()); err != nil {
		t.Fatalf("testutil: migrate %s: %v", base.DBName, err)
	}

	pool, err := pgxpool.New(ctx, base.URL())
	if err != nil {
		t.Fatalf("testutil: connect to %s: %v", base.DBName, err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool, Config: base}
}

func baseDBConfig() config.DBConfig {
	return config.DBConfig{
		Host:        envOr("RESERVATIONS_TEST_DB_HOST", "localhost"),
		Port:        5432,
		User:        envOr("RESERVATIONS_TEST_DB_USER", "postgres"),
		Password:    envOr("RESERVATIONS_TEST_DB_PASSWORD", ""),
		MaxConnects: 5,
	}
}

func migrateUp(url string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", MigrationsPath), url)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func dropDatabase(base config.DBConfig) {
	ctx := context.Background()

	adminPool, err := pgxpool.New(ctx, base.ServerURL())
	if err != nil {
		return
	}
	defer adminPool.Close()

	adminPool.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE pid <> pg_backend_pid() AND datname = $1`, base.DBName)

	adminPool.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS %q`, base.DBName))
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
