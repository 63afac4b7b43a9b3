package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	appinventory "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/application/uow"
	appventas "github.com/ceramica/backend/internal/application/ventas"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ventasSetup struct {
	DB         *TestDB
	Produccion *appinventory.ProduccionService
	Pedidos    *appventas.PedidoService
	Quotations *appventas.QuotationService
	Scope      *persistence.GormTransactionScope
}

func newVentasSetup(t *testing.T) *ventasSetup {
	t.Helper()
	testDB := NewSharedTestDB(t)
	testDB.CleanTables()

	repos := persistence.NewRepositories(testDB.DB)
	scope := persistence.NewGormTransactionScope(testDB.DB)
	allocator := appinventory.NewAllocator(zap.NewNop())
	return &ventasSetup{
		DB:         testDB,
		Produccion: appinventory.NewProduccionService(repos.ProduccionRepo(), repos.MovementRepo(), repos.AllocationRepo(), scope, allocator, nil),
		Pedidos:    appventas.NewPedidoService(repos.PedidoRepo(), repos.AllocationRepo(), scope, allocator, nil),
		Quotations: appventas.NewQuotationService(repos.QuotationRepo(), scope, nil),
		Scope:      scope,
	}
}

func (s *ventasSetup) stock(t *testing.T, producto, etapa, color string, qty int) *inventory.ProduccionItem {
	t.Helper()
	row, err := s.Produccion.Create(context.Background(), appinventory.ProduccionInput{
		Producto: producto, Etapa: etapa, Color: color, Quantity: qty,
	}, nil)
	require.NoError(t, err)
	return row
}

func (s *ventasSetup) pedido(t *testing.T, producto, color string, qty int) *ventas.Pedido {
	t.Helper()
	p, err := s.Pedidos.Create(context.Background(), ventas.PedidoInput{
		ClientName: "Casa Talavera",
		Items:      []ventas.LineInput{{Producto: producto, Color: color, Quantity: qty, UnitPrice: decimal.NewFromInt(120)}},
	}, nil)
	require.NoError(t, err)
	return p
}

func TestPedidoLifecycle_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	s := newVentasSetup(t)
	row := s.stock(t, "Plato", "Terminado", "Azul", 10)
	p := s.pedido(t, "Plato", "Azul", 6)

	confirmed, err := s.Pedidos.Confirm(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ventas.PedidoConfirmed, confirmed.Status)

	got, err := s.Produccion.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Apartados)
	assert.Equal(t, 4, got.Available())

	delivered, err := s.Pedidos.Deliver(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, ventas.PedidoDelivered, delivered.Status)

	got, err = s.Produccion.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, 0, got.Apartados)
	assert.Equal(t, 6, got.Vendidos)

	drifts, err := s.Produccion.Reconcile(ctx, false, nil)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestPedidoConfirm_ConcurrentOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	s := newVentasSetup(t)
	row := s.stock(t, "Taza", "Terminado", "Rojo", 5)

	const workers = 4
	pedidos := make([]*ventas.Pedido, workers)
	for i := range pedidos {
		pedidos[i] = s.pedido(t, "Taza", "Rojo", 2)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		short     int
	)
	for _, p := range pedidos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Pedidos.Confirm(ctx, p.ID, nil, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, shared.ErrInsufficientStock):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// five pieces cover two pedidos of two
	assert.Equal(t, 2, confirmed)
	assert.Equal(t, workers-2, short)

	got, err := s.Produccion.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Apartados)
	assert.LessOrEqual(t, got.Apartados, got.Quantity)
}

func TestProduccion_CheckConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	s := newVentasSetup(t)
	row := s.stock(t, "Jarra", "Esmaltado", "Verde", 3)

	err := s.DB.DB.Exec("UPDATE produccion_inventory SET apartados = 4 WHERE id = ?", row.ID).Error
	assert.Error(t, err, "apartados may not exceed quantity")

	err = s.DB.DB.Exec("UPDATE produccion_inventory SET quantity = -1 WHERE id = ?", row.ID).Error
	assert.Error(t, err, "quantity may not go negative")
}

func TestProduccion_ApartadosMatchAllocations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	s := newVentasSetup(t)
	row := s.stock(t, "Florero", "Terminado", "Azul", 6)

	err := s.DB.DB.Exec("UPDATE produccion_inventory SET apartados = 1 WHERE id = ?", row.ID).Error
	assert.Error(t, err, "apartados without allocations fail at commit")

	err = s.Scope.Execute(ctx, func(repos uow.Repositories) error {
		a, err := inventory.NewAllocation(row.ID, inventory.Owner{
			Type: inventory.OwnerPedidoItem, ID: uuid.New(), ParentID: uuid.New(),
		}, 2)
		if err != nil {
			return err
		}
		return repos.AllocationRepo().Create(ctx, a)
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState, "an allocation the row does not count is rejected")

	// a regular confirmation writes both sides in one transaction
	p := s.pedido(t, "Florero", "Azul", 2)
	_, err = s.Pedidos.Confirm(ctx, p.ID, nil, nil)
	require.NoError(t, err)

	got, err := s.Produccion.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Apartados)

	err = s.DB.DB.Exec("UPDATE allocations SET status = 'released' WHERE inventory_id = ?", row.ID).Error
	assert.Error(t, err, "releasing behind the counter fails at commit")
}

func TestQuotationConvert_Concurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	s := newVentasSetup(t)

	q, err := s.Quotations.Create(ctx, ventas.QuotationInput{
		ClientName: "Hotel Colonial",
		Currency:   shared.CurrencyMXN,
		Items:      []ventas.LineInput{{Producto: "Plato", Color: "Azul", Quantity: 10, UnitPrice: decimal.NewFromInt(50)}},
	}, nil)
	require.NoError(t, err)
	for _, st := range []ventas.QuotationStatus{ventas.QuotationSent, ventas.QuotationAccepted} {
		_, err = s.Quotations.ChangeStatus(ctx, q.ID, st)
		require.NoError(t, err)
	}

	const workers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		converted int
		rejected  int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Quotations.Convert(ctx, q.ID, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				converted++
			case errors.Is(err, shared.ErrInvalidState):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, converted)
	assert.Equal(t, workers-1, rejected)

	var pedidos int64
	require.NoError(t, s.DB.DB.Model(&ventas.Pedido{}).Where("quotation_id = ?", q.ID).Count(&pedidos).Error)
	assert.Equal(t, int64(1), pedidos)
}
