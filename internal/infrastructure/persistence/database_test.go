package persistence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		mock.ExpectPing()

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)
	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	mockDB.SetMaxOpenConns(7)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 7, stats.MaxOpenConnections)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestOpenSQLite(t *testing.T) {
	t.Run("in memory with foreign keys", func(t *testing.T) {
		db, err := OpenSQLite("")
		require.NoError(t, err)
		defer db.Close()

		var enabled int
		require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
		assert.Equal(t, 1, enabled)

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)
		assert.NoError(t, db.Ping(context.Background()))
	})

	t.Run("file database keeps its schema between opens", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ceramica.db")
		first, err := OpenSQLite(path)
		require.NoError(t, err)
		require.NoError(t, AutoMigrate(first.DB))
		require.NoError(t, first.Close())

		second, err := OpenSQLite(path)
		require.NoError(t, err)
		defer second.Close()
		assert.True(t, second.DB.Migrator().HasTable("produccion_inventory"))
	})
}
