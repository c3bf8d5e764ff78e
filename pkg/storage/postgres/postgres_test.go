package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rhuss/buchung/pkg/storage"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	// Verify podman is running.
	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("buchung_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestPostgres_PutAndGet(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	rec := storage.Record{
		"id":     7,
		"number": 3,
		"places": 4,
		"isVip":  true,
	}
	if err := store.Put(ctx, storage.CollectionTables, "7", rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, storage.CollectionTables, "7")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Numbers come back as float64 after the JSONB round-trip.
	if got["number"] != float64(3) {
		t.Errorf("number = %v (%T), want 3", got["number"], got["number"])
	}
	if got["isVip"] != true {
		t.Errorf("isVip = %v, want true", got["isVip"])
	}
}

func TestPostgres_GetMissingKey(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.Get(context.Background(), storage.CollectionTables, "999")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want storage.ErrNotFound", err)
	}
}

func TestPostgres_PutUpsertsLastWriteWins(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	first := storage.Record{"id": 1, "places": 4}
	second := storage.Record{"id": 1, "places": 8}

	if err := store.Put(ctx, storage.CollectionTables, "1", first); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := store.Put(ctx, storage.CollectionTables, "1", second); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := store.Get(ctx, storage.CollectionTables, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got["places"] != float64(8) {
		t.Errorf("places = %v, want 8", got["places"])
	}

	records, err := store.Scan(ctx, storage.CollectionTables)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("record count = %d, want 1", len(records))
	}
}

func TestPostgres_ScanIsScopedToCollection(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.Put(ctx, storage.CollectionTables, "1", storage.Record{"id": 1}); err != nil {
		t.Fatalf("Put table: %v", err)
	}
	if err := store.Put(ctx, storage.CollectionReservations, "r1", storage.Record{"id": "r1", "tableNumber": 1}); err != nil {
		t.Fatalf("Put reservation: %v", err)
	}

	tables, err := store.Scan(ctx, storage.CollectionTables)
	if err != nil {
		t.Fatalf("Scan tables: %v", err)
	}
	reservations, err := store.Scan(ctx, storage.CollectionReservations)
	if err != nil {
		t.Fatalf("Scan reservations: %v", err)
	}

	if len(tables) != 1 || len(reservations) != 1 {
		t.Errorf("tables = %d, reservations = %d, want 1 and 1", len(tables), len(reservations))
	}
	if _, ok := reservations[0]["tableNumber"]; !ok {
		t.Error("reservation record lost tableNumber")
	}
}

func TestPostgres_HealthCheck(t *testing.T) {
	store := setupTestDB(t)

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
