package ventas

import (
	"errors"
	"testing"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines() []LineInput {
	return []LineInput{
		{Producto: "Plato", Color: "Azul", Quantity: 4, UnitPrice: decimal.RequireFromString("125.50")},
		{Producto: "Taza", Color: "Blanco", Quantity: 10, UnitPrice: decimal.RequireFromString("40")},
	}
}

func TestNewQuotation_Totals(t *testing.T) {
	q, err := NewQuotation("COT-2025-0001", QuotationInput{
		ClientName: "Hotel Sol",
		TaxRate:    decimal.RequireFromString("0.16"),
		Items:      lines(),
	})
	require.NoError(t, err)
	assert.Equal(t, QuotationDraft, q.Status)
	assert.Equal(t, shared.CurrencyMXN, q.Currency)
	assert.Equal(t, "902", q.Subtotal.String())
	assert.Equal(t, "144.32", q.Tax.String())
	assert.Equal(t, "1046.32", q.Total.String())
	assert.Equal(t, 2, q.Items[1].Position)
	assert.Equal(t, q.ID, q.Items[0].QuotationID)
}

func TestNewQuotation_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   QuotationInput
	}{
		{"no client", QuotationInput{Items: lines()}},
		{"no items", QuotationInput{ClientName: "A"}},
		{"bad currency", QuotationInput{ClientName: "A", Currency: "EUR", Items: lines()}},
		{"bad tax", QuotationInput{ClientName: "A", TaxRate: decimal.NewFromInt(2), Items: lines()}},
		{"zero quantity", QuotationInput{ClientName: "A", Items: []LineInput{{Producto: "P", Color: "C"}}}},
		{"negative price", QuotationInput{ClientName: "A", Items: []LineInput{{Producto: "P", Color: "C", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuotation("COT-2025-0001", tt.in)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestQuotation_StatusFlow(t *testing.T) {
	q, err := NewQuotation("COT-2025-0002", QuotationInput{ClientName: "A", Items: lines()})
	require.NoError(t, err)

	assert.True(t, errors.Is(q.TransitionTo(QuotationAccepted), shared.ErrInvalidState))
	require.NoError(t, q.TransitionTo(QuotationSent))
	require.NoError(t, q.Update(QuotationInput{ClientName: "B", Items: lines()}))
	require.NoError(t, q.TransitionTo(QuotationAccepted))
	assert.False(t, q.IsEditable())
	assert.True(t, errors.Is(q.Update(QuotationInput{ClientName: "C", Items: lines()}), shared.ErrInvalidState))

	p, err := NewPedido("PED-2025-0001", PedidoInput{ClientName: q.ClientName, QuotationID: &q.ID, Items: q.Lines()})
	require.NoError(t, err)
	require.NoError(t, q.MarkConverted(p.ID))
	assert.Equal(t, QuotationConverted, q.Status)
	assert.Equal(t, p.ID, *q.PedidoID)
	assert.True(t, errors.Is(q.MarkConverted(p.ID), shared.ErrInvalidState))
	assert.True(t, errors.Is(q.TransitionTo("archived"), shared.ErrInvalidInput))
}

func TestPedidoStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to PedidoStatus
		want     bool
	}{
		{PedidoPending, PedidoConfirmed, true},
		{PedidoPending, PedidoCancelled, true},
		{PedidoPending, PedidoDelivered, false},
		{PedidoConfirmed, PedidoDelivered, true},
		{PedidoConfirmed, PedidoCancelled, true},
		{PedidoConfirmed, PedidoPending, false},
		{PedidoCancelled, PedidoPending, true},
		{PedidoCancelled, PedidoConfirmed, false},
		{PedidoDelivered, PedidoCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPedido_Lifecycle(t *testing.T) {
	p, err := NewPedido("PED-2025-0002", PedidoInput{ClientName: "Tienda", Items: lines()})
	require.NoError(t, err)
	assert.Equal(t, "902", p.Total.String())
	assert.Equal(t, "PLATO", p.Items[0].ProductoKey)
	assert.Equal(t, 1, p.Version)

	require.NoError(t, p.Confirm())
	assert.NotNil(t, p.ConfirmedAt)
	assert.True(t, errors.Is(p.Update(PedidoInput{ClientName: "X", Items: lines()}), shared.ErrInvalidState))

	err = p.Deliver()
	assert.True(t, errors.Is(err, shared.ErrInvalidState), "items not allocated")

	p.Items[0].Allocated = 4
	p.Items[1].Allocated = 10
	require.NoError(t, p.Deliver())
	assert.Equal(t, PedidoDelivered, p.Status)
	assert.True(t, errors.Is(p.Cancel(), shared.ErrInvalidState))
	assert.True(t, errors.Is(p.CanDelete(), shared.ErrInvalidState))
}

func TestPedido_CancelAndReopen(t *testing.T) {
	p, err := NewPedido("PED-2025-0003", PedidoInput{ClientName: "Tienda", Items: lines()})
	require.NoError(t, err)
	require.NoError(t, p.Confirm())
	require.NoError(t, p.Cancel())
	assert.NotNil(t, p.CancelledAt)
	assert.NoError(t, p.CanDelete())
	assert.False(t, p.AcceptsAllocations())

	require.NoError(t, p.Reopen())
	assert.Equal(t, PedidoPending, p.Status)
	assert.Nil(t, p.ConfirmedAt)
	assert.Nil(t, p.CancelledAt)
	assert.True(t, p.AcceptsAllocations())
}

func TestPedido_Item(t *testing.T) {
	p, err := NewPedido("PED-2025-0004", PedidoInput{ClientName: "Tienda", Items: lines()})
	require.NoError(t, err)
	it, err := p.Item(p.Items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Taza", it.Producto)
	it.Allocated = 3
	assert.Equal(t, 7, p.Items[1].Pending())
	assert.Len(t, p.ItemIDs(), 2)
}
