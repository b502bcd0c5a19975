package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/db"
)

// NewTestDB creates a migrated SQLite database in a temp dir.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "punch.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close(database)
	})
	return database
}
