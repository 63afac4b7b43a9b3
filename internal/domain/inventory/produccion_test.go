package inventory

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(t *testing.T, qty int) *ProduccionItem {
	t.Helper()
	item, err := NewProduccionItem("Plato Hondo", "Esmaltado", "Azul", qty, 0)
	require.NoError(t, err)
	return item
}

func TestNewProduccionItem(t *testing.T) {
	t.Run("canonicalizes keys", func(t *testing.T) {
		item, err := NewProduccionItem(" Plato Hondo ", "esmaltádo ", "azul", 10, 2)
		require.NoError(t, err)
		assert.Equal(t, "Plato Hondo", item.Producto)
		assert.Equal(t, "ESMALTADO", item.Etapa)
		assert.Equal(t, "PLATO HONDO", item.ProductoKey)
		assert.Equal(t, "ESMALTADO", item.EtapaKey)
		assert.Equal(t, "AZUL", item.ColorKey)
		assert.Equal(t, 1, item.Version)
	})

	t.Run("rejects missing names", func(t *testing.T) {
		_, err := NewProduccionItem("Plato", "", "Azul", 1, 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewProduccionItem("Plato", "Crudo", "Azul", -1, 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestProduccionItem_Counters(t *testing.T) {
	item := newItem(t, 10)

	require.NoError(t, item.Reserve(4))
	assert.Equal(t, 4, item.Apartados)
	assert.Equal(t, 6, item.Available())

	err := item.Output(7)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, 10, item.Quantity)

	require.NoError(t, item.Output(6))
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, 0, item.Available())

	err = item.Reserve(1)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	require.NoError(t, item.Consume(3))
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 1, item.Apartados)
	assert.Equal(t, 3, item.Vendidos)

	err = item.Consume(2)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, item.Release(1))
	assert.Equal(t, 0, item.Apartados)
	assert.Equal(t, 1, item.Available())

	err = item.Release(1)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestProduccionItem_VersionBumps(t *testing.T) {
	item := newItem(t, 5)
	require.NoError(t, item.Input(1))
	require.NoError(t, item.Reserve(1))
	require.NoError(t, item.Release(1))
	assert.Equal(t, 4, item.Version)

	_ = item.Output(100)
	assert.Equal(t, 4, item.Version, "failed operations leave the version alone")
}

func TestProduccionItem_Adjust(t *testing.T) {
	item := newItem(t, 10)
	require.NoError(t, item.Reserve(6))

	_, err := item.Adjust(5)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	delta, err := item.Adjust(6)
	require.NoError(t, err)
	assert.Equal(t, -4, delta)
	assert.Equal(t, 0, item.Available())

	delta, err = item.Adjust(20)
	require.NoError(t, err)
	assert.Equal(t, 14, delta)
}

func TestProduccionItem_CanDelete(t *testing.T) {
	item := newItem(t, 3)
	assert.NoError(t, item.CanDelete())
	require.NoError(t, item.Reserve(1))
	assert.True(t, errors.Is(item.CanDelete(), shared.ErrInvalidState))
}

func TestProduccionItem_IsBelowMinimum(t *testing.T) {
	item, err := NewProduccionItem("Taza", "Terminado", "Blanco", 10, 5)
	require.NoError(t, err)
	assert.False(t, item.IsBelowMinimum())
	require.NoError(t, item.Reserve(6))
	assert.True(t, item.IsBelowMinimum())
}

func TestStageRank(t *testing.T) {
	assert.Less(t, StageRank("TERMINADO"), StageRank("ESMALTADO"))
	assert.Less(t, StageRank("BISCOCHO"), StageRank("CRUDO"))
	assert.Greater(t, StageRank("SECADO"), StageRank("CRUDO"))
	assert.Equal(t, StageRank("SECADO"), StageRank("OTRA"))
}

func TestAllocation_Lifecycle(t *testing.T) {
	owner := Owner{Type: OwnerPedidoItem, ID: uuid.New(), ParentID: uuid.New()}
	a, err := NewAllocation(uuid.New(), owner, 5)
	require.NoError(t, err)
	assert.True(t, a.IsActive())

	part, err := a.Split(2)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Quantity)
	assert.Equal(t, 2, part.Quantity)
	assert.Equal(t, a.OwnerID, part.OwnerID)
	assert.Equal(t, a.InventoryID, part.InventoryID)
	assert.NotEqual(t, a.ID, part.ID)

	_, err = a.Split(3)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	require.NoError(t, part.MarkConsumed())
	assert.Equal(t, AllocationConsumed, part.Status)
	assert.NotNil(t, part.ConsumedAt)
	assert.True(t, errors.Is(part.MarkReleased(), shared.ErrInvalidState))

	require.NoError(t, a.MarkReleased())
	assert.NotNil(t, a.ReleasedAt)
}

func TestNewAllocation_Validation(t *testing.T) {
	tests := []struct {
		name  string
		owner Owner
		qty   int
	}{
		{"bad owner type", Owner{Type: "order", ID: uuid.New(), ParentID: uuid.New()}, 1},
		{"missing owner", Owner{Type: OwnerKitItem}, 1},
		{"zero quantity", Owner{Type: OwnerKitItem, ID: uuid.New(), ParentID: uuid.New()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAllocation(uuid.New(), tt.owner, tt.qty)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestEmbalajeItem(t *testing.T) {
	item, err := NewEmbalajeItem("Plato", "Azul", "Caja 6", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "CAJA 6", item.PresentacionKey)

	require.NoError(t, item.Input(3))
	assert.True(t, errors.Is(item.Output(6), shared.ErrInsufficientStock))
	require.NoError(t, item.Output(5))
	assert.Equal(t, 0, item.Quantity)

	delta, err := item.Adjust(4)
	require.NoError(t, err)
	assert.Equal(t, 4, delta)
}

func TestNewProduccionMovement(t *testing.T) {
	item := newItem(t, 8)
	require.NoError(t, item.Reserve(3))
	ref := uuid.New()
	m := NewProduccionMovement(item, MovementReserve, 3, Reference{Type: "pedido", ID: &ref}, "", nil)
	assert.Equal(t, InventoryProduccion, m.InventoryType)
	assert.Equal(t, 8, m.QuantityAfter)
	assert.Equal(t, 3, m.ApartadosAfter)
	assert.Equal(t, "pedido", m.ReferenceType)
}

func TestProduccionItem_JSONIncludesAvailable(t *testing.T) {
	item := newItem(t, 10)
	require.NoError(t, item.Reserve(4))

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.EqualValues(t, 10, out["quantity"])
	assert.EqualValues(t, 4, out["apartados"])
	assert.EqualValues(t, 6, out["available"])
	assert.Equal(t, item.ID.String(), out["id"])
	assert.NotContains(t, out, "producto_key")
}

func TestProduccionItem_RenameWhileReserved(t *testing.T) {
	item := newItem(t, 10)
	require.NoError(t, item.Reserve(4))

	err := item.Rename("Taza", "Esmaltado", "Azul")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	err = item.Rename("Plato Hondo", "Esmaltado", "Rojo")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, "Plato Hondo", item.Producto)

	require.NoError(t, item.Rename("plato  hondo", "Biscocho", "azul"))
	assert.Equal(t, "BISCOCHO", item.EtapaKey)
}
