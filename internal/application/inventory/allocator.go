package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Allocator moves produccion stock in and out of apartados on behalf of
// pedido and kit lines. Every method runs inside the caller's transaction:
// repos must come from uow.TransactionScope.Execute. Rows are locked with
// FindByIDForUpdate and written with SaveWithLock.
type Allocator struct {
	logger  *zap.Logger
	metrics *telemetry.InventoryMetrics
}

// NewAllocator creates a new Allocator
func NewAllocator(logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{logger: logger}
}

// SetMetrics sets the business counters (optional)
func (a *Allocator) SetMetrics(m *telemetry.InventoryMetrics) {
	a.metrics = m
}

// Reserve reserves n pieces of one inventory row for owner
func (a *Allocator) Reserve(ctx context.Context, repos uow.Repositories, inventoryID uuid.UUID, owner inventory.Owner, n int, by *uuid.UUID) (alloc *inventory.Allocation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "allocator", "reserve",
		attribute.String("owner_type", string(owner.Type)), attribute.Int("quantity", n))
	defer func() { telemetry.EndSpan(span, err) }()

	row, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	return a.reserveRow(ctx, repos, row, owner, n, by)
}

// ReserveMatching spreads n pieces over every stage row of producto/color,
// most finished stage first. Nothing is written when the rows together hold
// fewer than n available pieces.
func (a *Allocator) ReserveMatching(ctx context.Context, repos uow.Repositories, producto, color string, owner inventory.Owner, n int, by *uuid.UUID) (allocs []inventory.Allocation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "allocator", "reserve_matching",
		attribute.String("owner_type", string(owner.Type)), attribute.Int("quantity", n))
	defer func() { telemetry.EndSpan(span, err) }()

	if n <= 0 {
		return nil, shared.InvalidInput("reserve quantity must be positive")
	}
	rows, err := repos.ProduccionRepo().FindMatchingForUpdate(ctx, shared.CanonicalKey(producto), shared.CanonicalKey(color))
	if err != nil {
		return nil, err
	}
	total := 0
	for i := range rows {
		total += rows[i].Available()
	}
	if total < n {
		a.metrics.Shortage(ctx, string(owner.Type))
		return nil, shared.InsufficientStock("only %d of %s %s available, %d requested", total, producto, color, n)
	}

	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: "reserve_matching",
		telemetry.ProfilingLabelOwner:     string(owner.Type),
	}, func(ctx context.Context) {
		remaining := n
		for i := range rows {
			if remaining == 0 {
				break
			}
			take := min(rows[i].Available(), remaining)
			if take == 0 {
				continue
			}
			var alloc *inventory.Allocation
			alloc, err = a.reserveRow(ctx, repos, &rows[i], owner, take, by)
			if err != nil {
				return
			}
			allocs = append(allocs, *alloc)
			remaining -= take
		}
	})
	if err != nil {
		return nil, err
	}
	return allocs, nil
}

func (a *Allocator) reserveRow(ctx context.Context, repos uow.Repositories, row *inventory.ProduccionItem, owner inventory.Owner, n int, by *uuid.UUID) (*inventory.Allocation, error) {
	alloc, err := inventory.NewAllocation(row.ID, owner, n)
	if err != nil {
		return nil, err
	}
	alloc.CreatedBy = by

	wasBelow := row.IsBelowMinimum()
	if err := row.Reserve(n); err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			a.metrics.Shortage(ctx, string(owner.Type))
		}
		return nil, err
	}
	if err := repos.ProduccionRepo().SaveWithLock(ctx, row); err != nil {
		return nil, err
	}
	if err := repos.AllocationRepo().Create(ctx, alloc); err != nil {
		return nil, fmt.Errorf("failed to create allocation: %w", err)
	}
	mv := inventory.NewProduccionMovement(row, inventory.MovementReserve, n, reference(owner.Type, owner.ParentID), "", by)
	if err := repos.MovementRepo().Create(ctx, mv); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}
	a.metrics.Reserved(ctx, string(owner.Type), n)
	if !wasBelow && row.IsBelowMinimum() {
		if err := a.NotifyLowStock(ctx, repos, row, by); err != nil {
			return nil, err
		}
	}
	return alloc, nil
}

// Release gives back n reserved pieces of an owner line, newest allocation
// first. n <= 0 releases everything the line holds.
func (a *Allocator) Release(ctx context.Context, repos uow.Repositories, ownerType inventory.OwnerType, ownerID uuid.UUID, n int, by *uuid.UUID) (released int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "allocator", "release", attribute.String("owner_type", string(ownerType)))
	defer func() { telemetry.EndSpan(span, err) }()

	allocs, n, err := a.activeFor(ctx, repos, ownerType, ownerID, n)
	if err != nil || n == 0 {
		return 0, err
	}
	remaining := n
	for i := len(allocs) - 1; i >= 0 && remaining > 0; i-- {
		take := min(allocs[i].Quantity, remaining)
		if err := a.releaseOne(ctx, repos, &allocs[i], take, by); err != nil {
			return 0, err
		}
		remaining -= take
	}
	return n, nil
}

// ReleaseAllocation releases one whole active allocation
func (a *Allocator) ReleaseAllocation(ctx context.Context, repos uow.Repositories, alloc *inventory.Allocation, by *uuid.UUID) error {
	if !alloc.IsActive() {
		return shared.InvalidState("allocation is already %s", alloc.Status)
	}
	return a.releaseOne(ctx, repos, alloc, alloc.Quantity, by)
}

func (a *Allocator) releaseOne(ctx context.Context, repos uow.Repositories, alloc *inventory.Allocation, n int, by *uuid.UUID) error {
	if err := a.settle(ctx, repos, alloc, n, (*inventory.Allocation).MarkReleased); err != nil {
		return err
	}
	row, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, alloc.InventoryID)
	if err != nil {
		return err
	}
	if err := row.Release(n); err != nil {
		return err
	}
	if err := repos.ProduccionRepo().SaveWithLock(ctx, row); err != nil {
		return err
	}
	mv := inventory.NewProduccionMovement(row, inventory.MovementRelease, -n, reference(alloc.OwnerType, alloc.ParentID), "", by)
	if err := repos.MovementRepo().Create(ctx, mv); err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}
	a.metrics.Released(ctx, string(alloc.OwnerType), n)
	return nil
}

// Consume delivers n reserved pieces of an owner line, oldest allocation
// first. n <= 0 consumes everything the line holds.
func (a *Allocator) Consume(ctx context.Context, repos uow.Repositories, ownerType inventory.OwnerType, ownerID uuid.UUID, n int, by *uuid.UUID) (consumed int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "allocator", "consume", attribute.String("owner_type", string(ownerType)))
	defer func() { telemetry.EndSpan(span, err) }()

	allocs, n, err := a.activeFor(ctx, repos, ownerType, ownerID, n)
	if err != nil || n == 0 {
		return 0, err
	}
	remaining := n
	for i := 0; i < len(allocs) && remaining > 0; i++ {
		take := min(allocs[i].Quantity, remaining)
		if err := a.consumeOne(ctx, repos, &allocs[i], take, by); err != nil {
			return 0, err
		}
		remaining -= take
	}
	return n, nil
}

func (a *Allocator) consumeOne(ctx context.Context, repos uow.Repositories, alloc *inventory.Allocation, n int, by *uuid.UUID) error {
	if err := a.settle(ctx, repos, alloc, n, (*inventory.Allocation).MarkConsumed); err != nil {
		return err
	}
	row, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, alloc.InventoryID)
	if err != nil {
		return err
	}
	wasBelow := row.IsBelowMinimum()
	if err := row.Consume(n); err != nil {
		return err
	}
	if err := repos.ProduccionRepo().SaveWithLock(ctx, row); err != nil {
		return err
	}
	mv := inventory.NewProduccionMovement(row, inventory.MovementConsume, -n, reference(alloc.OwnerType, alloc.ParentID), "", by)
	if err := repos.MovementRepo().Create(ctx, mv); err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}
	a.metrics.Consumed(ctx, string(alloc.OwnerType), n)
	if !wasBelow && row.IsBelowMinimum() {
		return a.NotifyLowStock(ctx, repos, row, by)
	}
	return nil
}

// settle marks n pieces of alloc with mark, splitting off the marked part
// when n is less than the allocation.
func (a *Allocator) settle(ctx context.Context, repos uow.Repositories, alloc *inventory.Allocation, n int, mark func(*inventory.Allocation) error) error {
	if n == alloc.Quantity {
		if err := mark(alloc); err != nil {
			return err
		}
		return repos.AllocationRepo().Update(ctx, alloc)
	}
	part, err := alloc.Split(n)
	if err != nil {
		return err
	}
	if err := repos.AllocationRepo().Update(ctx, alloc); err != nil {
		return err
	}
	if err := mark(part); err != nil {
		return err
	}
	return repos.AllocationRepo().Create(ctx, part)
}

// activeFor loads the active allocations of an owner line and resolves n
// against their total.
func (a *Allocator) activeFor(ctx context.Context, repos uow.Repositories, ownerType inventory.OwnerType, ownerID uuid.UUID, n int) ([]inventory.Allocation, int, error) {
	allocs, err := repos.AllocationRepo().FindActiveByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for i := range allocs {
		total += allocs[i].Quantity
	}
	if n <= 0 {
		return allocs, total, nil
	}
	if n > total {
		return nil, 0, shared.InvalidState("only %d pieces are allocated, %d requested", total, n)
	}
	return allocs, n, nil
}

// NotifyLowStock tells the row's creator, or the acting user, that the
// row dropped below its minimum.
func (a *Allocator) NotifyLowStock(ctx context.Context, repos uow.Repositories, row *inventory.ProduccionItem, by *uuid.UUID) error {
	a.metrics.LowStock(ctx, string(inventory.InventoryProduccion))
	recipient := row.CreatedBy
	if recipient == nil {
		recipient = by
	}
	if recipient == nil {
		a.logger.Warn("low stock without recipient",
			zap.String("inventory_id", row.ID.String()),
			zap.Int("available", row.Available()))
		return nil
	}
	n, err := notification.New(*recipient, notification.TypeStockLow,
		fmt.Sprintf("Stock bajo: %s %s", row.Producto, row.Color),
		fmt.Sprintf("%s en %s tiene %d disponibles (mínimo %d)", row.Producto, row.Etapa, row.Available(), row.MinQuantity),
		"/produccion/"+row.ID.String())
	if err != nil {
		return err
	}
	return repos.NotificationRepo().Create(ctx, n)
}

// Drift is a row whose apartados disagree with its active allocations
type Drift struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	Producto    string    `json:"producto"`
	Etapa       string    `json:"etapa"`
	Color       string    `json:"color"`
	Quantity    int       `json:"quantity"`
	Apartados   int       `json:"apartados"`
	Allocated   int       `json:"allocated"`
	Fixed       bool      `json:"fixed"`
	Reason      string    `json:"reason,omitempty"`
}

// Reconcile compares every row's apartados with the sum of its active
// allocations. With fix, apartados is rewritten to the sum unless the sum
// exceeds the row quantity.
func (a *Allocator) Reconcile(ctx context.Context, repos uow.Repositories, fix bool, by *uuid.UUID) (drifts []Drift, err error) {
	ctx, span := telemetry.StartSpan(ctx, "allocator", "reconcile", attribute.Bool("fix", fix))
	defer func() { telemetry.EndSpan(span, err) }()

	sums, err := repos.AllocationRepo().SumActiveByInventory(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := repos.ProduccionRepo().FindAll(ctx, shared.Filter{OrderBy: "producto", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}
	drifts = []Drift{}
	for i := range rows {
		allocated := sums[rows[i].ID]
		if rows[i].Apartados == allocated {
			continue
		}
		d := Drift{
			InventoryID: rows[i].ID,
			Producto:    rows[i].Producto,
			Etapa:       rows[i].Etapa,
			Color:       rows[i].Color,
			Quantity:    rows[i].Quantity,
			Apartados:   rows[i].Apartados,
			Allocated:   allocated,
		}
		if fix {
			settled, err := a.fixDrift(ctx, repos, &d, by)
			if err != nil {
				return nil, err
			}
			if settled {
				continue
			}
		}
		a.metrics.Drift(ctx, d.Fixed)
		drifts = append(drifts, d)
	}
	if len(drifts) > 0 {
		a.logger.Warn("apartados drift detected", zap.Int("rows", len(drifts)), zap.Bool("fix", fix))
	}
	return drifts, nil
}

// fixDrift rewrites apartados from the allocations visible once the row is
// locked. settled reports that the row no longer drifts under the lock.
func (a *Allocator) fixDrift(ctx context.Context, repos uow.Repositories, d *Drift, by *uuid.UUID) (settled bool, err error) {
	row, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, d.InventoryID)
	if err != nil {
		return false, err
	}
	allocated, err := repos.AllocationRepo().SumActiveForInventory(ctx, row.ID)
	if err != nil {
		return false, err
	}
	d.Quantity, d.Apartados, d.Allocated = row.Quantity, row.Apartados, allocated
	if row.Apartados == allocated {
		return true, nil
	}
	if allocated > row.Quantity {
		d.Reason = fmt.Sprintf("active allocations (%d) exceed quantity (%d)", allocated, row.Quantity)
		return false, nil
	}
	delta := allocated - row.Apartados
	row.Apartados = allocated
	row.IncrementVersion()
	if err := repos.ProduccionRepo().SaveWithLock(ctx, row); err != nil {
		return false, err
	}
	mv := inventory.NewProduccionMovement(row, inventory.MovementAdjust, 0, inventory.Reference{Type: "reconcile"},
		fmt.Sprintf("apartados corrected by %+d", delta), by)
	if err := repos.MovementRepo().Create(ctx, mv); err != nil {
		return false, fmt.Errorf("failed to record movement: %w", err)
	}
	d.Fixed = true
	return false, nil
}

func reference(ownerType inventory.OwnerType, parentID uuid.UUID) inventory.Reference {
	typ := "pedido"
	if ownerType == inventory.OwnerKitItem {
		typ = "kit"
	}
	return inventory.Reference{Type: typ, ID: &parentID}
}
