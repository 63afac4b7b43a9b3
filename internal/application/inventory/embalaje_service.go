package inventory

import (
	"context"
	"fmt"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// EmbalajeInput holds the editable fields of a packed-goods row
type EmbalajeInput struct {
	Producto     string
	Color        string
	Presentacion string
	Quantity     int
	MinQuantity  int
	Notes        string
}

// PackInput adds packed pieces, optionally taken from a produccion row
type PackInput struct {
	Quantity         int
	FromProduccionID *uuid.UUID
	Notes            string
}

// EmbalajeService handles packed-goods inventory
type EmbalajeService struct {
	repo       inventory.EmbalajeRepository
	movements  inventory.MovementRepository
	scope      uow.TransactionScope
	produccion *ProduccionService
	metrics    *telemetry.InventoryMetrics
}

// NewEmbalajeService creates a new EmbalajeService
func NewEmbalajeService(repo inventory.EmbalajeRepository, movements inventory.MovementRepository, scope uow.TransactionScope, produccion *ProduccionService) *EmbalajeService {
	return &EmbalajeService{repo: repo, movements: movements, scope: scope, produccion: produccion}
}

// SetMetrics sets the business counters (optional)
func (s *EmbalajeService) SetMetrics(m *telemetry.InventoryMetrics) {
	s.metrics = m
}

// List returns one page of rows
func (s *EmbalajeService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.EmbalajeItem], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.EmbalajeItem]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.EmbalajeItem]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one row
func (s *EmbalajeService) Get(ctx context.Context, id uuid.UUID) (*inventory.EmbalajeItem, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a row
func (s *EmbalajeService) Create(ctx context.Context, in EmbalajeInput, by *uuid.UUID) (*inventory.EmbalajeItem, error) {
	item, err := inventory.NewEmbalajeItem(in.Producto, in.Color, in.Presentacion, in.Quantity, in.MinQuantity)
	if err != nil {
		return nil, err
	}
	item.Notes = in.Notes
	item.CreatedBy = by
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.EmbalajeRepo().Create(ctx, item); err != nil {
			return err
		}
		if item.Quantity == 0 {
			return nil
		}
		return repos.MovementRepo().Create(ctx,
			inventory.NewEmbalajeMovement(item, inventory.MovementInput, item.Quantity, inventory.Reference{}, "initial quantity", by))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update renames a row and changes its minimum and notes
func (s *EmbalajeService) Update(ctx context.Context, id uuid.UUID, in EmbalajeInput) (*inventory.EmbalajeItem, error) {
	if in.MinQuantity < 0 {
		return nil, shared.InvalidInput("min_quantity cannot be negative")
	}
	var item *inventory.EmbalajeItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if item, err = repos.EmbalajeRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := item.Rename(in.Producto, in.Color, in.Presentacion); err != nil {
			return err
		}
		item.MinQuantity = in.MinQuantity
		item.Notes = in.Notes
		item.IncrementVersion()
		return repos.EmbalajeRepo().SaveWithLock(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a row
func (s *EmbalajeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Input adds packed pieces. With FromProduccionID the same quantity leaves
// that produccion row in the same transaction.
func (s *EmbalajeService) Input(ctx context.Context, id uuid.UUID, in PackInput, by *uuid.UUID) (*inventory.EmbalajeItem, error) {
	return s.change(ctx, id, func(repos uow.Repositories, item *inventory.EmbalajeItem) (*inventory.Movement, error) {
		ref := inventory.Reference{}
		if in.FromProduccionID != nil {
			src, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, *in.FromProduccionID)
			if err != nil {
				return nil, err
			}
			if src.ProductoKey != item.ProductoKey || src.ColorKey != item.ColorKey {
				return nil, shared.InvalidInput("produccion row is %s %s, embalaje row is %s %s",
					src.Producto, src.Color, item.Producto, item.Color)
			}
			toRef := inventory.Reference{Type: "embalaje", ID: &item.ID}
			if err := s.produccion.output(ctx, repos, src, in.Quantity, inventory.MovementOutput, toRef, in.Notes, by); err != nil {
				return nil, err
			}
			ref = inventory.Reference{Type: "produccion", ID: &src.ID}
		}
		if err := item.Input(in.Quantity); err != nil {
			return nil, err
		}
		return inventory.NewEmbalajeMovement(item, inventory.MovementInput, in.Quantity, ref, in.Notes, by), nil
	})
}

// Output removes packed pieces
func (s *EmbalajeService) Output(ctx context.Context, id uuid.UUID, n int, notes string, by *uuid.UUID) (*inventory.EmbalajeItem, error) {
	return s.change(ctx, id, func(repos uow.Repositories, item *inventory.EmbalajeItem) (*inventory.Movement, error) {
		wasBelow := item.IsBelowMinimum()
		if err := item.Output(n); err != nil {
			return nil, err
		}
		if !wasBelow && item.IsBelowMinimum() {
			if err := s.notifyLowStock(ctx, repos, item, by); err != nil {
				return nil, err
			}
		}
		return inventory.NewEmbalajeMovement(item, inventory.MovementOutput, -n, inventory.Reference{}, notes, by), nil
	})
}

// Adjust sets the counted quantity
func (s *EmbalajeService) Adjust(ctx context.Context, id uuid.UUID, quantity int, reason string, by *uuid.UUID) (*inventory.EmbalajeItem, error) {
	return s.change(ctx, id, func(repos uow.Repositories, item *inventory.EmbalajeItem) (*inventory.Movement, error) {
		delta, err := item.Adjust(quantity)
		if err != nil {
			return nil, err
		}
		return inventory.NewEmbalajeMovement(item, inventory.MovementAdjust, delta, inventory.Reference{}, reason, by), nil
	})
}

// Movements lists the movement history of a row
func (s *EmbalajeService) Movements(ctx context.Context, id uuid.UUID, filter shared.Filter) (shared.Paginated[inventory.Movement], error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return shared.Paginated[inventory.Movement]{}, err
	}
	items, total, err := s.movements.FindByInventory(ctx, inventory.InventoryEmbalaje, id, filter)
	if err != nil {
		return shared.Paginated[inventory.Movement]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *EmbalajeService) change(ctx context.Context, id uuid.UUID, fn func(uow.Repositories, *inventory.EmbalajeItem) (*inventory.Movement, error)) (*inventory.EmbalajeItem, error) {
	var item *inventory.EmbalajeItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if item, err = repos.EmbalajeRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		mv, err := fn(repos, item)
		if err != nil {
			return err
		}
		if err := repos.EmbalajeRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, mv)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *EmbalajeService) notifyLowStock(ctx context.Context, repos uow.Repositories, item *inventory.EmbalajeItem, by *uuid.UUID) error {
	s.metrics.LowStock(ctx, string(inventory.InventoryEmbalaje))
	recipient := item.CreatedBy
	if recipient == nil {
		recipient = by
	}
	if recipient == nil {
		return nil
	}
	n, err := notification.New(*recipient, notification.TypeStockLow,
		fmt.Sprintf("Embalaje bajo: %s %s", item.Producto, item.Color),
		fmt.Sprintf("%s %s (%s) tiene %d piezas (mínimo %d)", item.Producto, item.Color, item.Presentacion, item.Quantity, item.MinQuantity),
		"/embalaje/"+item.ID.String())
	if err != nil {
		return err
	}
	return repos.NotificationRepo().Create(ctx, n)
}
