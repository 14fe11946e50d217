package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// setupTestDB opens a migrated database in a per-test temp directory.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "keyprov.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return db
}
