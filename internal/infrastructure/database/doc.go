// Package database provides SQLite connectivity for SigOS Core.
//
// The controller keeps its event log and rule transition history in a
// single SQLite file. This package opens it with WAL mode and a busy
// timeout, and applies the schema migrations embedded by the migrations
// package.
//
// Usage:
//
//	db, err := database.Open(ctx, database.FromConfig(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
