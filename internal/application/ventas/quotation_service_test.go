package ventas_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderQuotation(ctx context.Context, q *ventas.Quotation) ([]byte, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func quotationInput() ventas.QuotationInput {
	return ventas.QuotationInput{
		ClientName: "Hotel Colonial",
		Currency:   shared.CurrencyMXN,
		TaxRate:    decimal.RequireFromString("0.16"),
		Items: []ventas.LineInput{
			{Producto: "Plato", Color: "Azul", Quantity: 10, UnitPrice: decimal.NewFromInt(50)},
			{Producto: "Taza", Color: "Blanco", Quantity: 5, UnitPrice: decimal.NewFromInt(30)},
		},
	}
}

func TestQuotationService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newVentasEnv(t)

	q, err := env.quotations.Create(ctx, quotationInput(), nil)
	require.NoError(t, err)
	assert.Regexp(t, `^COT-\d{4}-0001$`, q.Folio)
	assert.Equal(t, ventas.QuotationDraft, q.Status)
	assert.True(t, decimal.NewFromInt(650).Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(754).Equal(q.Total))

	in := quotationInput()
	in.Items = in.Items[:1]
	q, err = env.quotations.Update(ctx, q.ID, in)
	require.NoError(t, err)
	got, err := env.quotations.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	_, err = env.quotations.Convert(ctx, q.ID, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidState), "draft quotations cannot be converted")

	_, err = env.quotations.ChangeStatus(ctx, q.ID, ventas.QuotationAccepted)
	assert.True(t, errors.Is(err, shared.ErrInvalidState), "draft cannot jump to accepted")

	for _, st := range []ventas.QuotationStatus{ventas.QuotationSent, ventas.QuotationAccepted} {
		_, err = env.quotations.ChangeStatus(ctx, q.ID, st)
		require.NoError(t, err)
	}

	_, err = env.quotations.Update(ctx, q.ID, in)
	assert.True(t, errors.Is(err, shared.ErrInvalidState), "accepted quotations are read-only")
	assert.True(t, errors.Is(env.quotations.Delete(ctx, q.ID), shared.ErrInvalidState))

	p, err := env.quotations.Convert(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, ventas.PedidoPending, p.Status)
	require.NotNil(t, p.QuotationID)
	assert.Equal(t, q.ID, *p.QuotationID)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 10, p.Items[0].Quantity)

	got, err = env.quotations.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, ventas.QuotationConverted, got.Status)
	require.NotNil(t, got.PedidoID)
	assert.Equal(t, p.ID, *got.PedidoID)

	_, err = env.quotations.Convert(ctx, q.ID, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidState), "a quotation converts once")
}

func TestQuotationService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newVentasEnv(t)
	q, err := env.quotations.Create(ctx, quotationInput(), nil)
	require.NoError(t, err)

	require.NoError(t, env.quotations.Delete(ctx, q.ID))
	_, err = env.quotations.Get(ctx, q.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestQuotationService_PDF(t *testing.T) {
	ctx := context.Background()
	env := newVentasEnv(t)
	q, err := env.quotations.Create(ctx, quotationInput(), nil)
	require.NoError(t, err)

	t.Run("without renderer", func(t *testing.T) {
		_, _, err := env.quotations.PDF(ctx, q.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("renders", func(t *testing.T) {
		r := new(mockRenderer)
		r.On("RenderQuotation", mock.Anything, mock.MatchedBy(func(got *ventas.Quotation) bool {
			return got.ID == q.ID && len(got.Items) == 2
		})).Return([]byte("%PDF-1.4"), nil).Once()
		env.quotations.SetRenderer(r)

		pdf, name, err := env.quotations.PDF(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), pdf)
		assert.Equal(t, q.Folio+".pdf", name)
		r.AssertExpectations(t)
	})

	t.Run("renderer failure", func(t *testing.T) {
		r := new(mockRenderer)
		r.On("RenderQuotation", mock.Anything, mock.Anything).Return(nil, errors.New("chrome crashed"))
		env.quotations.SetRenderer(r)

		_, _, err := env.quotations.PDF(ctx, q.ID)
		assert.EqualError(t, err, "chrome crashed")
	})
}
