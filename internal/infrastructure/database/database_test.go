package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
)

// openTestDB opens a file-backed database in a temp directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(context.Background(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(context.Background(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})

	t.Run("in memory", func(t *testing.T) {
		db, err := Open(context.Background(), Config{Path: MemoryPath, WALMode: true, BusyTimeout: 1})
		if err != nil {
			t.Fatalf("Open(:memory:) error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		ctx := context.Background()
		if _, err := db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)"); err != nil {
			t.Fatalf("create table: %v", err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO t (v) VALUES (7)"); err != nil {
			t.Fatalf("insert: %v", err)
		}
		var v int
		if err := db.QueryRowContext(ctx, "SELECT v FROM t").Scan(&v); err != nil {
			t.Fatalf("select: %v", err)
		}
		if v != 7 {
			t.Errorf("v = %d, want 7", v)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Open(ctx, Config{Path: MemoryPath}); err == nil {
			t.Error("Open() with cancelled context error = nil, want error")
		}
	})
}

func TestFromConfig(t *testing.T) {
	got := FromConfig(config.DatabaseConfig{Path: "/data/sigos.db", WALMode: true, BusyTimeout: 3})
	want := Config{Path: "/data/sigos.db", WALMode: true, BusyTimeout: 3}
	if got != want {
		t.Errorf("FromConfig() = %+v, want %+v", got, want)
	}
}

// TestHealthCheck verifies the health check functionality.
func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() on closed database error = nil, want error")
	}
}

// TestBeginTx verifies rollback discards and commit keeps writes.
func TestBeginTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (2)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestExecContext_WrapsErrors(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.ExecContext(context.Background(), "NOT SQL"); err == nil {
		t.Error("ExecContext() error = nil, want error")
	}
}
