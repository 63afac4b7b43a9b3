package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormQuotationRepository_FindByIDForUpdate_LocksHeader(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	repo := NewGormQuotationRepository(gormDB)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "quotations" WHERE id = \$1 ORDER BY .* LIMIT \$2 FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "folio", "status", "version"}).
			AddRow(id.String(), "COT-2026-0001", "accepted", 4))
	mock.ExpectQuery(`SELECT \* FROM "quotation_items" WHERE quotation_id = \$1 ORDER BY position ASC`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quotation_id", "position", "producto", "quantity"}).
			AddRow(uuid.NewString(), id.String(), 0, "Plato", 10))

	q, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ventas.QuotationAccepted, q.Status)
	require.Len(t, q.Items, 1)
	assert.Equal(t, "Plato", q.Items[0].Producto)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPedidoRepository_OnePedidoPerQuotation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	quotations := NewGormQuotationRepository(db)
	pedidos := NewGormPedidoRepository(db)

	q, err := ventas.NewQuotation("COT-2026-0001", ventas.QuotationInput{
		ClientName: "Hotel Colonial",
		Currency:   shared.CurrencyMXN,
		Items:      []ventas.LineInput{line("Plato", "Azul", 10)},
	})
	require.NoError(t, err)
	require.NoError(t, quotations.Create(ctx, q))

	newPedido := func(folio string, quotationID *uuid.UUID) *ventas.Pedido {
		p, err := ventas.NewPedido(folio, ventas.PedidoInput{
			ClientName:  "Hotel Colonial",
			QuotationID: quotationID,
			Items:       []ventas.LineInput{line("Plato", "Azul", 10)},
		})
		require.NoError(t, err)
		return p
	}

	require.NoError(t, pedidos.Create(ctx, newPedido("PED-2026-0001", &q.ID)))
	err = pedidos.Create(ctx, newPedido("PED-2026-0002", &q.ID))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// pedidos without a quotation are not constrained
	require.NoError(t, pedidos.Create(ctx, newPedido("PED-2026-0003", nil)))
	require.NoError(t, pedidos.Create(ctx, newPedido("PED-2026-0004", nil)))
}
