package ventas

import (
	"context"
	"time"

	appinventory "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExplicitAllocation pins part of a line to a specific produccion row
type ExplicitAllocation struct {
	ItemID      uuid.UUID
	InventoryID uuid.UUID
	Quantity    int
}

// PedidoService handles ventas pedidos and their stock reservations
type PedidoService struct {
	repo      ventas.PedidoRepository
	allocs    inventory.AllocationRepository
	scope     uow.TransactionScope
	allocator *appinventory.Allocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewPedidoService creates a new PedidoService
func NewPedidoService(
	repo ventas.PedidoRepository,
	allocs inventory.AllocationRepository,
	scope uow.TransactionScope,
	allocator *appinventory.Allocator,
	logger *zap.Logger,
) *PedidoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PedidoService{repo: repo, allocs: allocs, scope: scope, allocator: allocator, logger: logger, now: time.Now}
}

// List returns one page of pedido headers
func (s *PedidoService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ventas.Pedido], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ventas.Pedido]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ventas.Pedido]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a pedido with its items and how much of each is allocated
func (s *PedidoService) Get(ctx context.Context, id uuid.UUID) (*ventas.Pedido, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fillAllocated(ctx, s.allocs, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Create adds a pending pedido with the next PED folio of the year
func (s *PedidoService) Create(ctx context.Context, in ventas.PedidoInput, by *uuid.UUID) (*ventas.Pedido, error) {
	var p *ventas.Pedido
	err := withFolioRetry(func() error {
		return s.scope.Execute(ctx, func(repos uow.Repositories) error {
			folio, err := nextFolio(ctx, repos.PedidoRepo().LastFolio, ventas.PedidoFolioPrefix, s.now())
			if err != nil {
				return err
			}
			if p, err = ventas.NewPedido(folio, in); err != nil {
				return err
			}
			p.CreatedBy = by
			return repos.PedidoRepo().Create(ctx, p)
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces header and lines of a pending pedido. Manual allocations
// held by the old lines are released first.
func (s *PedidoService) Update(ctx context.Context, id uuid.UUID, in ventas.PedidoInput, by *uuid.UUID) (*ventas.Pedido, error) {
	var p *ventas.Pedido
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if p, err = repos.PedidoRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		old := p.ItemIDs()
		if err := p.Update(in); err != nil {
			return err
		}
		if err := s.releaseItems(ctx, repos, old, by); err != nil {
			return err
		}
		return repos.PedidoRepo().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a pending or cancelled pedido, releasing anything it holds
func (s *PedidoService) Delete(ctx context.Context, id uuid.UUID, by *uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		p, err := repos.PedidoRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.CanDelete(); err != nil {
			return err
		}
		if err := s.releaseItems(ctx, repos, p.ItemIDs(), by); err != nil {
			return err
		}
		return repos.PedidoRepo().Delete(ctx, id)
	})
}

// Confirm reserves stock for every line and confirms the pedido. Explicit
// allocations are applied first; whatever remains per line is reserved
// from matching rows. Any shortage aborts the whole confirmation.
func (s *PedidoService) Confirm(ctx context.Context, id uuid.UUID, explicit []ExplicitAllocation, by *uuid.UUID) (*ventas.Pedido, error) {
	return s.mutate(ctx, id, func(repos uow.Repositories, p *ventas.Pedido) error {
		if err := p.Confirm(); err != nil {
			return err
		}
		for _, ea := range explicit {
			if _, err := s.allocate(ctx, repos, p, ea.ItemID, ea.InventoryID, ea.Quantity, by); err != nil {
				return err
			}
		}
		for i := range p.Items {
			item := &p.Items[i]
			pending := item.Pending()
			if pending == 0 {
				continue
			}
			allocs, err := s.allocator.ReserveMatching(ctx, repos, item.Producto, item.Color, itemOwner(p, item), pending, by)
			if err != nil {
				return err
			}
			for _, a := range allocs {
				item.Allocated += a.Quantity
			}
		}
		return repos.PedidoRepo().SaveStatus(ctx, p)
	})
}

// Deliver consumes every active allocation of a confirmed pedido
func (s *PedidoService) Deliver(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*ventas.Pedido, error) {
	return s.mutate(ctx, id, func(repos uow.Repositories, p *ventas.Pedido) error {
		if err := p.Deliver(); err != nil {
			return err
		}
		for i := range p.Items {
			if _, err := s.allocator.Consume(ctx, repos, inventory.OwnerPedidoItem, p.Items[i].ID, 0, by); err != nil {
				return err
			}
			p.Items[i].Allocated = 0
		}
		return repos.PedidoRepo().SaveStatus(ctx, p)
	})
}

// Cancel releases every active allocation of a pending or confirmed pedido
func (s *PedidoService) Cancel(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*ventas.Pedido, error) {
	return s.mutate(ctx, id, func(repos uow.Repositories, p *ventas.Pedido) error {
		if err := p.Cancel(); err != nil {
			return err
		}
		if err := s.releaseItems(ctx, repos, p.ItemIDs(), by); err != nil {
			return err
		}
		for i := range p.Items {
			p.Items[i].Allocated = 0
		}
		return repos.PedidoRepo().SaveStatus(ctx, p)
	})
}

// Reopen returns a cancelled pedido to pending; nothing is reserved until
// it is confirmed again.
func (s *PedidoService) Reopen(ctx context.Context, id uuid.UUID) (*ventas.Pedido, error) {
	return s.mutate(ctx, id, func(repos uow.Repositories, p *ventas.Pedido) error {
		if err := p.Reopen(); err != nil {
			return err
		}
		return repos.PedidoRepo().SaveStatus(ctx, p)
	})
}

// ChangeStatus dispatches a target status to the matching operation
func (s *PedidoService) ChangeStatus(ctx context.Context, id uuid.UUID, status ventas.PedidoStatus, by *uuid.UUID) (*ventas.Pedido, error) {
	switch status {
	case ventas.PedidoConfirmed:
		return s.Confirm(ctx, id, nil, by)
	case ventas.PedidoDelivered:
		return s.Deliver(ctx, id, by)
	case ventas.PedidoCancelled:
		return s.Cancel(ctx, id, by)
	case ventas.PedidoPending:
		return s.Reopen(ctx, id)
	}
	return nil, shared.InvalidInput("invalid pedido status %q", status)
}

// Allocate reserves pieces of a specific produccion row for one line
func (s *PedidoService) Allocate(ctx context.Context, id, itemID, inventoryID uuid.UUID, quantity int, by *uuid.UUID) (*inventory.Allocation, error) {
	var alloc *inventory.Allocation
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		p, err := s.load(ctx, repos, id)
		if err != nil {
			return err
		}
		if !p.AcceptsAllocations() {
			return shared.InvalidState("pedido %s is %s and does not accept allocations", p.Folio, p.Status)
		}
		alloc, err = s.allocate(ctx, repos, p, itemID, inventoryID, quantity, by)
		return err
	})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// ReleaseAllocation releases one allocation held by the pedido
func (s *PedidoService) ReleaseAllocation(ctx context.Context, id, allocationID uuid.UUID, by *uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		p, err := repos.PedidoRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !p.AcceptsAllocations() {
			return shared.InvalidState("pedido %s is %s and does not accept allocation changes", p.Folio, p.Status)
		}
		alloc, err := repos.AllocationRepo().FindByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if alloc.OwnerType != inventory.OwnerPedidoItem || alloc.ParentID != p.ID {
			return shared.NotFound("allocation")
		}
		return s.allocator.ReleaseAllocation(ctx, repos, alloc, by)
	})
}

// Allocations lists every allocation of the pedido, with its inventory row
func (s *PedidoService) Allocations(ctx context.Context, id uuid.UUID) ([]inventory.Allocation, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.allocs.FindByParent(ctx, inventory.OwnerPedidoItem, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []inventory.Allocation{}
	}
	return out, nil
}

// mutate locks the pedido with its allocation state and runs fn in one transaction
func (s *PedidoService) mutate(ctx context.Context, id uuid.UUID, fn func(uow.Repositories, *ventas.Pedido) error) (*ventas.Pedido, error) {
	var p *ventas.Pedido
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if p, err = s.load(ctx, repos, id); err != nil {
			return err
		}
		return fn(repos, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("pedido status changed", zap.String("folio", p.Folio), zap.String("status", string(p.Status)))
	return p, nil
}

func (s *PedidoService) load(ctx context.Context, repos uow.Repositories, id uuid.UUID) (*ventas.Pedido, error) {
	p, err := repos.PedidoRepo().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fillAllocated(ctx, repos.AllocationRepo(), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PedidoService) allocate(ctx context.Context, repos uow.Repositories, p *ventas.Pedido, itemID, inventoryID uuid.UUID, quantity int, by *uuid.UUID) (*inventory.Allocation, error) {
	item, err := p.Item(itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, shared.InvalidInput("allocation quantity must be positive")
	}
	if quantity > item.Pending() {
		return nil, shared.InvalidState("item %s %s needs %d more pieces, %d requested",
			item.Producto, item.Color, item.Pending(), quantity)
	}
	row, err := repos.ProduccionRepo().FindByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if row.ProductoKey != item.ProductoKey || row.ColorKey != item.ColorKey {
		return nil, shared.InvalidInput("inventory row is %s %s, item is %s %s",
			row.Producto, row.Color, item.Producto, item.Color)
	}
	alloc, err := s.allocator.Reserve(ctx, repos, inventoryID, itemOwner(p, item), quantity, by)
	if err != nil {
		return nil, err
	}
	item.Allocated += quantity
	return alloc, nil
}

func (s *PedidoService) releaseItems(ctx context.Context, repos uow.Repositories, itemIDs []uuid.UUID, by *uuid.UUID) error {
	for _, itemID := range itemIDs {
		if _, err := s.allocator.Release(ctx, repos, inventory.OwnerPedidoItem, itemID, 0, by); err != nil {
			return err
		}
	}
	return nil
}

func itemOwner(p *ventas.Pedido, item *ventas.PedidoItem) inventory.Owner {
	return inventory.Owner{Type: inventory.OwnerPedidoItem, ID: item.ID, ParentID: p.ID}
}

// fillAllocated sets Allocated on every item from active allocations
func fillAllocated(ctx context.Context, allocs inventory.AllocationRepository, p *ventas.Pedido) error {
	sums, err := allocs.SumActiveByOwners(ctx, inventory.OwnerPedidoItem, p.ItemIDs())
	if err != nil {
		return err
	}
	for i := range p.Items {
		p.Items[i].Allocated = sums[p.Items[i].ID]
	}
	return nil
}
