package inventory_test

import (
	"context"
	"errors"
	"testing"

	appinventory "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbalajeService_InputFromProduccion(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		producto    string
		quantity    int
		wantErr     error
		wantPacked  int
		wantProdQty int
	}{
		{name: "moves pieces", producto: "Plato", quantity: 4, wantPacked: 4, wantProdQty: 6},
		{name: "not enough in produccion", producto: "Plato", quantity: 11, wantErr: shared.ErrInsufficientStock, wantProdQty: 10},
		{name: "different product", producto: "Taza", quantity: 1, wantErr: shared.ErrInvalidInput, wantProdQty: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			prod := env.seed(t, "Plato", "Terminado", "Azul", 10)
			packed, err := env.embalaje.Create(ctx, appinventory.EmbalajeInput{
				Producto: tt.producto, Color: "Azul", Presentacion: "Caja 6",
			}, nil)
			require.NoError(t, err)

			_, err = env.embalaje.Input(ctx, packed.ID, appinventory.PackInput{
				Quantity: tt.quantity, FromProduccionID: &prod.ID,
			}, nil)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}

			got, err := env.embalaje.Get(ctx, packed.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPacked, got.Quantity)
			assert.Equal(t, tt.wantProdQty, env.row(t, prod.ID).Quantity)
		})
	}
}

func TestEmbalajeService_OutputAndAdjust(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := uuid.New()
	item, err := env.embalaje.Create(ctx, appinventory.EmbalajeInput{
		Producto: "Taza", Color: "Rojo", Presentacion: "Pieza", Quantity: 10, MinQuantity: 4,
	}, &owner)
	require.NoError(t, err)

	_, err = env.embalaje.Output(ctx, item.ID, 11, "", nil)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	got, err := env.embalaje.Output(ctx, item.ID, 7, "envío", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	unread, err := env.repos.NotificationRepo().CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	got, err = env.embalaje.Adjust(ctx, item.ID, 20, "conteo", nil)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Quantity)

	moves, err := env.embalaje.Movements(ctx, item.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(3), moves.Total)
	assert.Equal(t, 17, moves.Items[0].Delta)
}

func TestEmbalajeService_UniqueKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.embalaje.Create(ctx, appinventory.EmbalajeInput{Producto: "Taza", Color: "Rojo", Presentacion: "Caja"}, nil)
	require.NoError(t, err)
	_, err = env.embalaje.Create(ctx, appinventory.EmbalajeInput{Producto: "TAZA", Color: "rojo ", Presentacion: "caja"}, nil)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}
