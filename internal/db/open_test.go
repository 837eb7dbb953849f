package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmuhire/parkgate/internal/db"
)

// TestOpen_FileBacked opens a file-backed database the same way the
// binaries do. This exercises the package's own driver registration: no
// other package in this test binary imports the sqlite driver, so a missing
// registration fails here with "unknown driver".
func TestOpen_FileBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "parkgate.db")

	conn, err := db.Open(ctx, db.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	// Migrations applied: the sessions table must exist and be queryable.
	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions;").Scan(&n); err != nil {
		t.Fatalf("query sessions after open: %v", err)
	}
	if n != 0 {
		t.Errorf("fresh database must have no sessions, got %d", n)
	}

	// A second open against the same file must not re-apply migrations.
	conn2, err := db.Open(ctx, db.Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn2.Close()

	if err := conn2.QueryRowContext(ctx, "SELECT COUNT(*) FROM violations;").Scan(&n); err != nil {
		t.Fatalf("query violations after reopen: %v", err)
	}
}
