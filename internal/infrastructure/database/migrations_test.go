package database

import (
	"context"
	"embed"
	"io/fs"
	"testing"
	"testing/fstest"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

func testMigrations(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(testMigrationsFS, "testdata")
	if err != nil {
		t.Fatalf("fs.Sub() error = %v", err)
	}
	return sub
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	if err != nil {
		t.Fatalf("checking table %s: %v", name, err)
	}
	return count == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations(t)

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "test_events") {
		t.Fatal("test_events table not created")
	}

	// Second run is a no-op.
	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	applied, pending, err := db.GetMigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "20260101_000000" {
		t.Errorf("applied = %+v, want one record 20260101_000000", applied)
	}
	if applied[0].AppliedAt.IsZero() {
		t.Error("AppliedAt is zero")
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestMigrate_NilFS(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Fatalf("Migrate(nil) error = %v", err)
	}
	if !tableExists(t, db, "schema_migrations") {
		t.Error("schema_migrations table not created")
	}
}

func TestMigrate_FailureStops(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"20260101_000000_first.up.sql":  {Data: []byte("CREATE TABLE first (id INTEGER);")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE oops (")},
		"20260103_000000_third.up.sql":  {Data: []byte("CREATE TABLE third (id INTEGER);")},
	}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() error = nil, want error from broken migration")
	}
	if !tableExists(t, db, "first") {
		t.Error("first migration was not kept")
	}
	if tableExists(t, db, "third") {
		t.Error("third migration ran after a failure")
	}

	_, pending, err := db.GetMigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations(t)

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "test_events") {
		t.Error("test_events table still exists after MigrateDown")
	}

	// Nothing applied: no-op.
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Errorf("MigrateDown() with nothing applied error = %v", err)
	}
}

func TestMigrateDown_NoDownSQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"20260101_000000_only_up.up.sql": {Data: []byte("CREATE TABLE only_up (id INTEGER);")},
	}

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, fsys); err == nil {
		t.Error("MigrateDown() error = nil, want missing down SQL error")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20261019_120000_signal_log.up.sql", "20261019_120000", true, true},
		{"20261019_120000_signal_log.down.sql", "20261019_120000", false, true},
		{"20261019_120000_signal_log.sql", "", false, false},
		{"README.md", "", false, false},
		{"bad.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.name)
			if version != tt.wantVersion || isUp != tt.wantUp || ok != tt.wantOK {
				t.Errorf("parseMigrationFilename(%q) = (%q, %v, %v), want (%q, %v, %v)",
					tt.name, version, isUp, ok, tt.wantVersion, tt.wantUp, tt.wantOK)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	if got := extractMigrationName("20261019_120000_signal_log.up.sql"); got != "signal_log" {
		t.Errorf("extractMigrationName() = %q, want signal_log", got)
	}
}
