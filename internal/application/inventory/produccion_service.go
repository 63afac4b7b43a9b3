package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProduccionInput holds the editable fields of a produccion row
type ProduccionInput struct {
	Producto    string
	Etapa       string
	Color       string
	Quantity    int
	MinQuantity int
	Notes       string
}

// TransferInput moves available pieces to another stage
type TransferInput struct {
	FromID   uuid.UUID
	ToEtapa  string
	Quantity int
	Notes    string
}

// TransferResult holds both rows after a transfer
type TransferResult struct {
	From *inventory.ProduccionItem `json:"from"`
	To   *inventory.ProduccionItem `json:"to"`
}

// ProduccionService handles produccion inventory operations
type ProduccionService struct {
	repo      inventory.ProduccionRepository
	movements inventory.MovementRepository
	allocs    inventory.AllocationRepository
	scope     uow.TransactionScope
	allocator *Allocator
	logger    *zap.Logger
}

// NewProduccionService creates a new ProduccionService
func NewProduccionService(
	repo inventory.ProduccionRepository,
	movements inventory.MovementRepository,
	allocs inventory.AllocationRepository,
	scope uow.TransactionScope,
	allocator *Allocator,
	logger *zap.Logger,
) *ProduccionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProduccionService{
		repo:      repo,
		movements: movements,
		allocs:    allocs,
		scope:     scope,
		allocator: allocator,
		logger:    logger,
	}
}

// List returns one page of rows
func (s *ProduccionService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.ProduccionItem], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.ProduccionItem]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.ProduccionItem]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one row
func (s *ProduccionService) Get(ctx context.Context, id uuid.UUID) (*inventory.ProduccionItem, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a row; an initial quantity is recorded as an input movement
func (s *ProduccionService) Create(ctx context.Context, in ProduccionInput, by *uuid.UUID) (*inventory.ProduccionItem, error) {
	item, err := inventory.NewProduccionItem(in.Producto, in.Etapa, in.Color, in.Quantity, in.MinQuantity)
	if err != nil {
		return nil, err
	}
	item.Notes = in.Notes
	item.CreatedBy = by

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.ProduccionRepo().Create(ctx, item); err != nil {
			return err
		}
		if item.Quantity == 0 {
			return nil
		}
		mv := inventory.NewProduccionMovement(item, inventory.MovementInput, item.Quantity, inventory.Reference{}, "initial quantity", by)
		return repos.MovementRepo().Create(ctx, mv)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update renames a row and changes its minimum and notes. Quantities only
// change through input, output, adjust and allocations.
func (s *ProduccionService) Update(ctx context.Context, id uuid.UUID, in ProduccionInput) (*inventory.ProduccionItem, error) {
	if in.MinQuantity < 0 {
		return nil, shared.InvalidInput("min_quantity cannot be negative")
	}
	var item *inventory.ProduccionItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		item, err = repos.ProduccionRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := item.Rename(in.Producto, in.Etapa, in.Color); err != nil {
			return err
		}
		item.MinQuantity = in.MinQuantity
		item.Notes = in.Notes
		item.IncrementVersion()
		return repos.ProduccionRepo().SaveWithLock(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a row that holds no reservations
func (s *ProduccionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		item, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := item.CanDelete(); err != nil {
			return err
		}
		return repos.ProduccionRepo().Delete(ctx, id)
	})
}

// Input adds produced pieces
func (s *ProduccionService) Input(ctx context.Context, id uuid.UUID, n int, notes string, by *uuid.UUID) (*inventory.ProduccionItem, error) {
	return s.change(ctx, id, func(repos uow.Repositories, item *inventory.ProduccionItem) (*inventory.Movement, error) {
		if err := item.Input(n); err != nil {
			return nil, err
		}
		return inventory.NewProduccionMovement(item, inventory.MovementInput, n, inventory.Reference{}, notes, by), nil
	})
}

// Output removes unreserved pieces
func (s *ProduccionService) Output(ctx context.Context, id uuid.UUID, n int, notes string, by *uuid.UUID) (*inventory.ProduccionItem, error) {
	return s.change(ctx, id, func(repos uow.Repositories, item *inventory.ProduccionItem) (*inventory.Movement, error) {
		if err := s.output(ctx, repos, item, n, inventory.MovementOutput, inventory.Reference{}, notes, by); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// Adjust sets the counted quantity; it cannot drop below apartados
func (s *ProduccionService) Adjust(ctx context.Context, id uuid.UUID, quantity int, reason string, by *uuid.UUID) (*inventory.ProduccionItem, error) {
	return s.change(ctx, id, func(repos uow.Repositories, item *inventory.ProduccionItem) (*inventory.Movement, error) {
		wasBelow := item.IsBelowMinimum()
		delta, err := item.Adjust(quantity)
		if err != nil {
			return nil, err
		}
		if !wasBelow && item.IsBelowMinimum() {
			if err := s.allocator.NotifyLowStock(ctx, repos, item, by); err != nil {
				return nil, err
			}
		}
		return inventory.NewProduccionMovement(item, inventory.MovementAdjust, delta, inventory.Reference{}, reason, by), nil
	})
}

// change locks a row, applies fn and saves the row and the movement fn returns
func (s *ProduccionService) change(ctx context.Context, id uuid.UUID, fn func(uow.Repositories, *inventory.ProduccionItem) (*inventory.Movement, error)) (*inventory.ProduccionItem, error) {
	var item *inventory.ProduccionItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		item, err = repos.ProduccionRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		mv, err := fn(repos, item)
		if err != nil {
			return err
		}
		if mv == nil {
			return nil
		}
		if err := repos.ProduccionRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, mv)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// output takes n available pieces from a locked row, saves it and records
// the movement. Used by Output, Transfer and packing into embalaje.
func (s *ProduccionService) output(ctx context.Context, repos uow.Repositories, item *inventory.ProduccionItem, n int, kind inventory.MovementKind, ref inventory.Reference, notes string, by *uuid.UUID) error {
	wasBelow := item.IsBelowMinimum()
	if err := item.Output(n); err != nil {
		return err
	}
	if err := repos.ProduccionRepo().SaveWithLock(ctx, item); err != nil {
		return err
	}
	mv := inventory.NewProduccionMovement(item, kind, -n, ref, notes, by)
	if err := repos.MovementRepo().Create(ctx, mv); err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}
	if !wasBelow && item.IsBelowMinimum() {
		return s.allocator.NotifyLowStock(ctx, repos, item, by)
	}
	return nil
}

// Transfer moves available pieces to the same product and color in another
// stage, creating the destination row when it does not exist.
func (s *ProduccionService) Transfer(ctx context.Context, in TransferInput, by *uuid.UUID) (*TransferResult, error) {
	if in.Quantity <= 0 {
		return nil, shared.InvalidInput("quantity must be positive")
	}
	toKey := shared.CanonicalKey(in.ToEtapa)
	if toKey == "" {
		return nil, shared.InvalidInput("to_etapa is required")
	}
	res := &TransferResult{}
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		from, err := repos.ProduccionRepo().FindByIDForUpdate(ctx, in.FromID)
		if err != nil {
			return err
		}
		if from.EtapaKey == toKey {
			return shared.InvalidInput("source row is already in stage %s", toKey)
		}
		to, err := s.destination(ctx, repos, from, in.ToEtapa, by)
		if err != nil {
			return err
		}
		ref := inventory.Reference{Type: "transfer", ID: &to.ID}
		if err := s.output(ctx, repos, from, in.Quantity, inventory.MovementTransferOut, ref, in.Notes, by); err != nil {
			return err
		}
		if err := to.Input(in.Quantity); err != nil {
			return err
		}
		if err := repos.ProduccionRepo().SaveWithLock(ctx, to); err != nil {
			return err
		}
		back := inventory.Reference{Type: "transfer", ID: &from.ID}
		mv := inventory.NewProduccionMovement(to, inventory.MovementTransferIn, in.Quantity, back, in.Notes, by)
		if err := repos.MovementRepo().Create(ctx, mv); err != nil {
			return err
		}
		res.From, res.To = from, to
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("produccion transfer",
		zap.String("from", res.From.ID.String()),
		zap.String("to", res.To.ID.String()),
		zap.Int("quantity", in.Quantity))
	return res, nil
}

func (s *ProduccionService) destination(ctx context.Context, repos uow.Repositories, from *inventory.ProduccionItem, etapa string, by *uuid.UUID) (*inventory.ProduccionItem, error) {
	found, err := repos.ProduccionRepo().FindByKey(ctx, from.ProductoKey, shared.CanonicalKey(etapa), from.ColorKey)
	if err == nil {
		return repos.ProduccionRepo().FindByIDForUpdate(ctx, found.ID)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	to, err := inventory.NewProduccionItem(from.Producto, etapa, from.Color, 0, 0)
	if err != nil {
		return nil, err
	}
	to.CreatedBy = by
	if err := repos.ProduccionRepo().Create(ctx, to); err != nil {
		return nil, err
	}
	return to, nil
}

// Movements lists the movement history of a row, newest first
func (s *ProduccionService) Movements(ctx context.Context, id uuid.UUID, filter shared.Filter) (shared.Paginated[inventory.Movement], error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return shared.Paginated[inventory.Movement]{}, err
	}
	items, total, err := s.movements.FindByInventory(ctx, inventory.InventoryProduccion, id, filter)
	if err != nil {
		return shared.Paginated[inventory.Movement]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Allocations lists the active allocations held against a row
func (s *ProduccionService) Allocations(ctx context.Context, id uuid.UUID) ([]inventory.Allocation, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.allocs.FindActiveByInventory(ctx, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []inventory.Allocation{}
	}
	return out, nil
}

// Availability sums every stage of a product and color
func (s *ProduccionService) Availability(ctx context.Context, producto, color string) ([]inventory.StageAvailability, error) {
	if producto == "" || color == "" {
		return nil, shared.InvalidInput("producto and color are required")
	}
	out, err := s.repo.Availability(ctx, shared.CanonicalKey(producto), shared.CanonicalKey(color))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []inventory.StageAvailability{}
	}
	return out, nil
}

// Reconcile checks apartados against active allocations and optionally fixes them
func (s *ProduccionService) Reconcile(ctx context.Context, fix bool, by *uuid.UUID) ([]Drift, error) {
	var drifts []Drift
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		drifts, err = s.allocator.Reconcile(ctx, repos, fix, by)
		return err
	})
	return drifts, err
}
