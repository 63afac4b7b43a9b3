package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/catalog"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pedidoInput(lines ...ventas.LineInput) ventas.PedidoInput {
	return ventas.PedidoInput{ClientName: "Hotel Sol", Items: lines}
}

func line(producto, color string, qty int) ventas.LineInput {
	return ventas.LineInput{Producto: producto, Color: color, Quantity: qty, UnitPrice: decimal.NewFromInt(50)}
}

func TestGormPedidoRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("update replaces items and checks the version", func(t *testing.T) {
		repo := NewGormPedidoRepository(newTestDB(t))
		p, err := ventas.NewPedido("PED-2026-0001", pedidoInput(line("Taza", "Azul", 2), line("Plato", "Rojo", 1)))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))

		stale, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)

		require.NoError(t, p.Update(pedidoInput(line("Jarra", "Verde", 4))))
		require.NoError(t, repo.Update(ctx, p))

		stored, err := repo.FindByIDForUpdate(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, "Jarra", stored.Items[0].Producto)
		assert.Equal(t, 2, stored.Version)
		assert.True(t, decimal.NewFromInt(200).Equal(stored.Total))

		require.NoError(t, stale.Update(pedidoInput(line("Taza", "Azul", 1))))
		assert.ErrorIs(t, repo.Update(ctx, stale), shared.ErrConcurrencyConflict)
	})

	t.Run("last folio orders by length then value", func(t *testing.T) {
		repo := NewGormPedidoRepository(newTestDB(t))
		for _, folio := range []string{"PED-2026-9999", "PED-2026-10000", "PED-2025-20000"} {
			p, err := ventas.NewPedido(folio, pedidoInput(line("Taza", "Azul", 1)))
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, p))
		}

		last, err := repo.LastFolio(ctx, "PED-2026-")
		require.NoError(t, err)
		assert.Equal(t, "PED-2026-10000", last)

		none, err := repo.LastFolio(ctx, "PED-2027-")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("status filter and search", func(t *testing.T) {
		repo := NewGormPedidoRepository(newTestDB(t))
		a, err := ventas.NewPedido("PED-2026-0001", ventas.PedidoInput{ClientName: "Hotel Sol", Items: []ventas.LineInput{line("Taza", "Azul", 1)}})
		require.NoError(t, err)
		b, err := ventas.NewPedido("PED-2026-0002", ventas.PedidoInput{ClientName: "Café 100%", Items: []ventas.LineInput{line("Taza", "Azul", 1)}})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		require.NoError(t, b.Confirm())
		require.NoError(t, repo.SaveStatus(ctx, b))

		confirmed, err := repo.FindAll(ctx, shared.DefaultFilter().With("status", string(ventas.PedidoConfirmed)))
		require.NoError(t, err)
		require.Len(t, confirmed, 1)
		assert.Equal(t, b.ID, confirmed[0].ID)

		f := shared.DefaultFilter()
		f.Search = "100%"
		found, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Café 100%", found[0].ClientName)
	})
}

func TestGormAllocationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	produccion := NewGormProduccionRepository(db)
	repo := NewGormAllocationRepository(db)

	row := seedProduccion(t, produccion, "Taza", "Terminado", "Azul", 20)
	parent := uuid.New()
	lineA, lineB := uuid.New(), uuid.New()

	mk := func(owner uuid.UUID, qty int) *inventory.Allocation {
		a, err := inventory.NewAllocation(row.ID, inventory.Owner{Type: inventory.OwnerPedidoItem, ID: owner, ParentID: parent}, qty)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
		return a
	}
	mk(lineA, 3)
	mk(lineA, 2)
	released := mk(lineB, 4)
	require.NoError(t, released.MarkReleased())
	require.NoError(t, repo.Update(ctx, released))
	mk(lineB, 1)

	sums, err := repo.SumActiveByOwners(ctx, inventory.OwnerPedidoItem, []uuid.UUID{lineA, lineB})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{lineA: 5, lineB: 1}, sums)

	byInventory, err := repo.SumActiveByInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, byInventory[row.ID])

	active, err := repo.FindActiveByOwner(ctx, inventory.OwnerPedidoItem, lineA)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, 3, active[0].Quantity, "oldest first")

	all, err := repo.FindByParent(ctx, inventory.OwnerPedidoItem, parent)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.NotNil(t, all[0].Inventory)
	assert.Equal(t, "TERMINADO", all[0].Inventory.EtapaKey)

	stored, err := repo.FindByID(ctx, released.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.AllocationReleased, stored.Status)
	assert.NotNil(t, stored.ReleasedAt)
}

func TestGormEcommerceRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	kits := NewGormKitRepository(db)
	pedidos := NewGormEcommercePedidoRepository(db)

	kit, err := ecommerce.NewKit(ecommerce.KitInput{SKU: "KIT-DESAYUNO", Name: "Desayuno", Price: decimal.NewFromInt(450), Active: true},
		[]ecommerce.KitItemInput{{Producto: "Taza", Color: "Azul", QuantityPerKit: 2}, {Producto: "Plato", Color: "Azul", QuantityPerKit: 2}})
	require.NoError(t, err)
	require.NoError(t, kits.Create(ctx, kit))

	dup, err := ecommerce.NewKit(ecommerce.KitInput{SKU: "KIT-DESAYUNO", Name: "Otro", Active: true},
		[]ecommerce.KitItemInput{{Producto: "Taza", Color: "Azul", QuantityPerKit: 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, kits.Create(ctx, dup), shared.ErrAlreadyExists)

	t.Run("replace items", func(t *testing.T) {
		locked, err := kits.FindByIDForUpdate(ctx, kit.ID)
		require.NoError(t, err)
		require.Len(t, locked.Items, 2)

		header := ecommerce.KitInput{SKU: locked.SKU, Name: locked.Name, Price: locked.Price, Active: locked.Active}
		require.NoError(t, locked.Revise(header, []ecommerce.KitItemInput{{Producto: "Jarra", Color: "Blanco", QuantityPerKit: 1}}))
		require.NoError(t, kits.Update(ctx, locked, true))

		stored, err := kits.FindByID(ctx, kit.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, "JARRA", stored.Items[0].ProductoKey)
	})

	t.Run("count open pedidos by kit", func(t *testing.T) {
		newOrder := func(ext string) *ecommerce.Pedido {
			p, err := ecommerce.NewPedido(ecommerce.PedidoInput{
				Channel: ecommerce.ChannelWeb, ExternalOrderID: ext, CustomerName: "Ana",
				Items: []ecommerce.ItemInput{{KitID: kit.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(450)}},
			})
			require.NoError(t, err)
			require.NoError(t, pedidos.Create(ctx, p))
			return p
		}
		newOrder("W-1")
		shipped := newOrder("W-2")
		cancelled := newOrder("W-3")

		require.NoError(t, shipped.Ship())
		require.NoError(t, pedidos.Save(ctx, shipped))
		require.NoError(t, cancelled.Cancel())
		require.NoError(t, pedidos.Save(ctx, cancelled))

		n, err := pedidos.CountOpenByKit(ctx, kit.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		byKit, err := pedidos.FindAll(ctx, shared.DefaultFilter().With("kit_id", kit.ID))
		require.NoError(t, err)
		assert.Len(t, byKit, 3)

		again, err := ecommerce.NewPedido(ecommerce.PedidoInput{
			Channel: ecommerce.ChannelWeb, ExternalOrderID: "W-1", CustomerName: "Ana",
			Items: []ecommerce.ItemInput{{KitID: kit.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.ErrorIs(t, pedidos.Create(ctx, again), shared.ErrAlreadyExists)
	})
}

func TestGormLedgerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLedgerRepository(newTestDB(t))
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	add := func(currency shared.Currency, typ finance.EntryType, amount int64, bank string) *finance.LedgerEntry {
		e, err := finance.NewLedgerEntry(currency, finance.LedgerInput{
			Date: day, Description: "mov", Amount: decimal.NewFromInt(amount), EntryType: typ, BankAccount: bank,
		}, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))
		return e
	}
	usd := add(shared.CurrencyUSD, finance.EntryIncome, 100, "BBVA")
	add(shared.CurrencyUSD, finance.EntryExpense, 30, "BBVA")
	add(shared.CurrencyUSD, finance.EntryIncome, 50, "Banorte")
	add(shared.CurrencyMXN, finance.EntryIncome, 9000, "BBVA")

	t.Run("books are isolated", func(t *testing.T) {
		_, err := repo.FindByID(ctx, shared.CurrencyMXN, usd.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, shared.CurrencyMXN, usd.ID), shared.ErrNotFound)

		n, err := repo.Count(ctx, shared.CurrencyUSD, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("summary per bank account", func(t *testing.T) {
		rows, err := repo.Summary(ctx, shared.CurrencyUSD, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		byBank := map[string]finance.BankBalance{}
		for _, r := range rows {
			byBank[r.BankAccount] = r
		}
		bbva := byBank["BBVA"]
		assert.True(t, decimal.NewFromInt(100).Equal(bbva.Income))
		assert.True(t, decimal.NewFromInt(30).Equal(bbva.Expense))
		assert.True(t, decimal.NewFromInt(70).Equal(bbva.Balance))
		assert.True(t, decimal.NewFromInt(50).Equal(byBank["Banorte"].Balance))
	})
}

func TestGormCotizacionRepository_Summary(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCotizacionRepository(newTestDB(t))
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, in := range []finance.CotizacionInput{
		{Date: day, Concept: "Venta", Amount: decimal.NewFromInt(100), Currency: shared.CurrencyMXN, MovementType: finance.MovementIngreso},
		{Date: day, Concept: "Venta", Amount: decimal.NewFromInt(50), Currency: shared.CurrencyMXN, MovementType: finance.MovementIngreso},
		{Date: day, Concept: "Gas", Amount: decimal.NewFromInt(20), Currency: shared.CurrencyMXN, MovementType: finance.MovementEgreso},
	} {
		c, err := finance.NewCotizacion(in, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, c))
	}

	totals, err := repo.Summary(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, finance.MovementEgreso, totals[0].MovementType)
	assert.Equal(t, int64(2), totals[1].Count)
	assert.True(t, decimal.NewFromInt(150).Equal(totals[1].Total))
}

func TestGormTaskRepository_Projects(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	taskRepo := NewGormTaskRepository(db)
	projects := NewGormProjectRepository(db)

	project, err := tasks.NewProject(tasks.ProjectInput{Name: "Horno nuevo"}, nil)
	require.NoError(t, err)
	require.NoError(t, projects.Create(ctx, project))

	for i, status := range []tasks.Status{tasks.StatusPending, tasks.StatusInProgress, tasks.StatusCompleted} {
		task, err := tasks.NewTask(tasks.TaskInput{Title: "t" + string(rune('a'+i)), ProjectID: &project.ID}, nil)
		require.NoError(t, err)
		if status != tasks.StatusPending {
			require.NoError(t, task.ChangeStatus(tasks.StatusInProgress))
		}
		if status == tasks.StatusCompleted {
			require.NoError(t, task.ChangeStatus(tasks.StatusCompleted))
		}
		require.NoError(t, taskRepo.Create(ctx, task))
	}

	total, completed, err := taskRepo.CountByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), completed)

	require.NoError(t, taskRepo.DetachProject(ctx, project.ID))
	total, _, err = taskRepo.CountByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormPersonalTaskRepository_Owner(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPersonalTaskRepository(newTestDB(t))
	owner, other := uuid.New(), uuid.New()

	task, err := tasks.NewPersonalTask(owner, "Llamar proveedor", "", tasks.PriorityHigh, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, task))

	_, err = repo.FindByIDForOwner(ctx, other, task.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	found, err := repo.FindByIDForOwner(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Llamar proveedor", found.Title)

	mine, err := repo.FindAll(ctx, shared.DefaultFilter().With("owner_id", other))
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGormNotificationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormNotificationRepository(newTestDB(t))
	user, other := uuid.New(), uuid.New()

	for _, u := range []uuid.UUID{user, user, other} {
		n, err := notification.New(u, notification.TypeSystem, "Aviso", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, n))
	}

	unread, err := repo.CountUnread(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	marked, err := repo.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err = repo.CountUnread(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	list, err := repo.FindAllForUser(ctx, user, shared.DefaultFilter().With("read", true))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, repo.Delete(ctx, other, list[0].ID), shared.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, user, list[0].ID))
}

func TestGormAreaRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAreaRepository(newTestDB(t))

	area, err := catalog.NewArea("Producción", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, area))

	again, err := catalog.NewArea("produccion", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, again), shared.ErrAlreadyExists)

	sub, err := catalog.NewSubarea(area.ID, "Esmaltes", "")
	require.NoError(t, err)
	require.NoError(t, repo.CreateSubarea(ctx, sub))
	dupSub, err := catalog.NewSubarea(area.ID, "ESMALTES", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.CreateSubarea(ctx, dupSub), shared.ErrAlreadyExists)

	found, err := repo.FindByName(ctx, "PRODUCCION")
	require.NoError(t, err)
	require.Len(t, found.Subareas, 1)

	require.NoError(t, repo.Delete(ctx, area.ID))
	_, err = repo.FindSubarea(ctx, area.ID, sub.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos uow.Repositories) error {
		area, err := catalog.NewArea("Ventas", "")
		require.NoError(t, err)
		require.NoError(t, repos.AreaRepo().Create(ctx, area))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	areas, err := NewRepositories(db).AreaRepo().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, areas, "rolled back")

	require.NoError(t, scope.Execute(ctx, func(repos uow.Repositories) error {
		area, err := catalog.NewArea("Ventas", "")
		if err != nil {
			return err
		}
		return repos.AreaRepo().Create(ctx, area)
	}))
	areas, err = NewRepositories(db).AreaRepo().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, areas, 1)
}
