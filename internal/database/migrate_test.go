package database

import (
	"path/filepath"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	// Startup runs this every time, so a second pass must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		t.Fatalf("query members: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty members table, got %d rows", n)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
