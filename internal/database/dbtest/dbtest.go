// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/database"
)

// Open returns a migrated database stored under t.TempDir().
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Options{
		Dialect:      "sqlite",
		DSN:          filepath.Join(t.TempDir(), "catalog.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
