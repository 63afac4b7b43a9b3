package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProduccionRepository creates a repository on the postgres dialect
// with a mocked SQL connection
func newMockProduccionRepository(t *testing.T) (*GormProduccionRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormProduccionRepository(gormDB), mock, mockDB
}

func TestGormProduccionRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	repo, mock, mockDB := newMockProduccionRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "producto", "etapa", "color", "quantity", "apartados", "vendidos", "version"}).
		AddRow(id.String(), "Taza", "ESMALTADO", "Azul", 10, 4, 0, 3)

	mock.ExpectQuery(`SELECT \* FROM "produccion_inventory" WHERE id = \$1 ORDER BY .* LIMIT \$2 FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	item, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 4, item.Apartados)
	assert.Equal(t, 3, item.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProduccionRepository_SaveWithLock(t *testing.T) {
	item := &inventory.ProduccionItem{
		VersionedEntity: shared.NewVersionedEntity(),
		Producto:        "Taza",
		Etapa:           "ESMALTADO",
		Color:           "Azul",
		Quantity:        10,
	}
	item.ID = uuid.New()
	item.Version = 5

	t.Run("updates when the stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockProduccionRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "produccion_inventory" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), item))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a concurrency conflict when no row matched", func(t *testing.T) {
		repo, mock, mockDB := newMockProduccionRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "produccion_inventory" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), item)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func seedProduccion(t *testing.T, repo *GormProduccionRepository, producto, etapa, color string, quantity int) *inventory.ProduccionItem {
	t.Helper()
	item, err := inventory.NewProduccionItem(producto, etapa, color, quantity, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestGormProduccionRepository_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("canonical key is unique", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		seedProduccion(t, repo, "Taza", "Esmaltado", "Azul", 5)

		dup, err := inventory.NewProduccionItem("taza ", "ESMALTÁDO", "azul", 1, 0)
		require.NoError(t, err)
		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("find by key uses canonical values", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		seeded := seedProduccion(t, repo, "Plato Hondo", "Biscocho", "Blanco", 5)

		found, err := repo.FindByKey(ctx, shared.CanonicalKey("plato hondo"), "BISCOCHO", "BLANCO")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, found.ID)
	})

	t.Run("matching rows come in stage preference order", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		seedProduccion(t, repo, "Taza", "Crudo", "Azul", 5)
		seedProduccion(t, repo, "Taza", "Terminado", "Azul", 5)
		seedProduccion(t, repo, "Taza", "Pulido", "Azul", 5)
		seedProduccion(t, repo, "Taza", "Esmaltado", "Azul", 5)
		seedProduccion(t, repo, "Taza", "Terminado", "Rojo", 5)

		items, err := repo.FindMatchingForUpdate(ctx, "TAZA", "AZUL")
		require.NoError(t, err)
		require.Len(t, items, 4)
		stages := []string{items[0].EtapaKey, items[1].EtapaKey, items[2].EtapaKey, items[3].EtapaKey}
		assert.Equal(t, []string{"TERMINADO", "ESMALTADO", "CRUDO", "PULIDO"}, stages)
	})

	t.Run("availability sums per stage", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		esm := seedProduccion(t, repo, "Taza", "Esmaltado", "Azul", 10)
		seedProduccion(t, repo, "Taza", "Crudo", "Azul", 4)

		require.NoError(t, esm.Reserve(3))
		require.NoError(t, repo.SaveWithLock(ctx, esm))

		rows, err := repo.Availability(ctx, "TAZA", "AZUL")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, inventory.StageAvailability{Etapa: "ESMALTADO", Quantity: 10, Apartados: 3, Available: 7}, rows[0])
		assert.Equal(t, inventory.StageAvailability{Etapa: "CRUDO", Quantity: 4, Apartados: 0, Available: 4}, rows[1])
	})

	t.Run("low stock filter compares availability with the minimum", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		low, err := inventory.NewProduccionItem("Taza", "Terminado", "Azul", 3, 5)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, low))
		ok, err := inventory.NewProduccionItem("Plato", "Terminado", "Azul", 30, 5)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, ok))

		filter := shared.DefaultFilter().With("low_stock", "true")
		items, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, low.ID, items[0].ID)

		n, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		item := seedProduccion(t, repo, "Taza", "Terminado", "Azul", 10)

		first, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		require.NoError(t, first.Input(2))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Input(5))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)

		stored, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, stored.Quantity)
	})

	t.Run("check constraint backs apartados <= quantity", func(t *testing.T) {
		repo := NewGormProduccionRepository(newTestDB(t))
		item := seedProduccion(t, repo, "Taza", "Terminado", "Azul", 2)

		item.Apartados = 3
		item.IncrementVersion()
		assert.ErrorIs(t, repo.SaveWithLock(ctx, item), shared.ErrInvalidState)
	})

	t.Run("delete of a row with allocation history is rejected", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormProduccionRepository(db)
		allocs := NewGormAllocationRepository(db)
		item := seedProduccion(t, repo, "Taza", "Terminado", "Azul", 2)

		a, err := inventory.NewAllocation(item.ID, inventory.Owner{Type: inventory.OwnerPedidoItem, ID: uuid.New(), ParentID: uuid.New()}, 1)
		require.NoError(t, err)
		require.NoError(t, a.MarkReleased())
		require.NoError(t, allocs.Create(ctx, a))

		assert.ErrorIs(t, repo.Delete(ctx, item.ID), shared.ErrInvalidState)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}
