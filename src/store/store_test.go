package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/database"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// newTestDB opens a throwaway database with the full production schema.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	db := database.DB
	t.Cleanup(func() { db.Close() })
	return db
}
