package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dataprofhq/engine/pkg/config"
)

// PostgresTestImage backs warehouse integration tests.
const PostgresTestImage = "postgres:16-alpine"

// TestWarehouse holds a shared PostgreSQL container seeded with profiling
// fixture tables, plus connection details in both pool and config form.
type TestWarehouse struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	Config    *config.WarehouseConfig
}

var (
	sharedWarehouse     *TestWarehouse
	sharedWarehouseOnce sync.Once
	sharedWarehouseErr  error
)

// GetTestWarehouse returns a shared PostgreSQL container for integration
// tests. The container is created once and reused across all tests in the
// run; its fixture schema is loaded at startup.
func GetTestWarehouse(t *testing.T) *TestWarehouse {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedWarehouseOnce.Do(func() {
		sharedWarehouse, sharedWarehouseErr = setupWarehouse()
	})

	if sharedWarehouseErr != nil {
		t.Fatalf("Failed to setup test warehouse: %v", sharedWarehouseErr)
	}

	return sharedWarehouse
}

// fixtureSchema is the profiling target: a table covering the numeric,
// string, datetime and boolean column categories, NULLs included, plus a
// column with no semantic mapping.
const fixtureSchema = `
CREATE TABLE public.profiling_fixture (
	id         integer PRIMARY KEY,
	age        integer,
	name       character varying(64),
	created_at timestamp without time zone,
	active     boolean,
	search_doc tsvector
);
INSERT INTO public.profiling_fixture (id, age, name, created_at, active) VALUES
	(1, 10, 'ann',  '2020-01-01 00:00:00', true),
	(2, 20, 'bob',  '2021-06-15 12:00:00', true),
	(3, NULL, NULL, NULL,                  false),
	(4, 20, 'carol','2021-12-31 23:59:59', NULL);
`

func setupWarehouse() (*TestWarehouse, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresTestImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "warehouse_test",
			"POSTGRES_USER":     "profiler",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://profiler:test_password@%s:%s/warehouse_test?sslmode=disable",
		host, port.Port())

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if _, err := pool.Exec(ctx, fixtureSchema); err != nil {
		return nil, fmt.Errorf("failed to load fixture schema: %w", err)
	}

	return &TestWarehouse{
		Container: container,
		Pool:      pool,
		Config: &config.WarehouseConfig{
			Type:     "postgres",
			Host:     host,
			Port:     port.Int(),
			User:     "profiler",
			Password: "test_password",
			Database: "warehouse_test",
			SSLMode:  "disable",
		},
	}, nil
}
