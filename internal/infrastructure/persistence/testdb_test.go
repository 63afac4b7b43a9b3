package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}
