// Package ecommerce orchestrates kits sold online and the orders that take
// them from stock.
package ecommerce

import (
	"context"

	appinventory "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KitService handles kits and the produccion stock held by their assembled units
type KitService struct {
	repo      ecommerce.KitRepository
	allocs    inventory.AllocationRepository
	scope     uow.TransactionScope
	allocator *appinventory.Allocator
	logger    *zap.Logger
}

// NewKitService creates a new KitService
func NewKitService(
	repo ecommerce.KitRepository,
	allocs inventory.AllocationRepository,
	scope uow.TransactionScope,
	allocator *appinventory.Allocator,
	logger *zap.Logger,
) *KitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KitService{repo: repo, allocs: allocs, scope: scope, allocator: allocator, logger: logger}
}

// List returns one page of kits with their items
func (s *KitService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ecommerce.Kit], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ecommerce.Kit]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ecommerce.Kit]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a kit with its items
func (s *KitService) Get(ctx context.Context, id uuid.UUID) (*ecommerce.Kit, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a kit with no assembled stock
func (s *KitService) Create(ctx context.Context, in ecommerce.KitInput, items []ecommerce.KitItemInput, by *uuid.UUID) (*ecommerce.Kit, error) {
	k, err := ecommerce.NewKit(in, items)
	if err != nil {
		return nil, err
	}
	k.CreatedBy = by
	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Update changes the kit header. Items are replaced when items is not nil,
// which requires zero stock and no open order referencing the kit.
func (s *KitService) Update(ctx context.Context, id uuid.UUID, in ecommerce.KitInput, items []ecommerce.KitItemInput) (*ecommerce.Kit, error) {
	var k *ecommerce.Kit
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if k, err = repos.KitRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if items != nil {
			open, err := repos.EcommercePedidoRepo().CountOpenByKit(ctx, id)
			if err != nil {
				return err
			}
			if open > 0 {
				return shared.InvalidState("kit %s is referenced by %d open pedidos, items cannot change", k.SKU, open)
			}
		}
		if err := k.Revise(in, items); err != nil {
			return err
		}
		return repos.KitRepo().Update(ctx, k, items != nil)
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

// Delete removes a kit with no stock and no open orders
func (s *KitService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		k, err := repos.KitRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := k.CanDelete(); err != nil {
			return err
		}
		open, err := repos.EcommercePedidoRepo().CountOpenByKit(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return shared.InvalidState("kit %s is referenced by %d open pedidos", k.SKU, open)
		}
		return repos.KitRepo().Delete(ctx, id)
	})
}

// AdjustStock assembles (delta > 0) or disassembles (delta < 0) kits.
// Assembling reserves delta × quantity_per_kit pieces of every item from
// produccion; disassembling releases them. Either every item succeeds or
// nothing changes.
func (s *KitService) AdjustStock(ctx context.Context, id uuid.UUID, delta int, by *uuid.UUID) (*ecommerce.Kit, error) {
	if delta == 0 {
		return nil, shared.InvalidInput("delta cannot be zero")
	}
	var k *ecommerce.Kit
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if k, err = repos.KitRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := k.AdjustStock(delta); err != nil {
			return err
		}
		for _, item := range k.Items {
			owner := kitOwner(k, item)
			if delta > 0 {
				if _, err := s.allocator.ReserveMatching(ctx, repos, item.Producto, item.Color, owner, delta*item.QuantityPerKit, by); err != nil {
					return err
				}
				continue
			}
			if _, err := s.allocator.Release(ctx, repos, owner.Type, owner.ID, -delta*item.QuantityPerKit, by); err != nil {
				return err
			}
		}
		return repos.KitRepo().Update(ctx, k, false)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("kit stock adjusted",
		zap.String("sku", k.SKU),
		zap.Int("delta", delta),
		zap.Int("stock", k.Stock),
	)
	return k, nil
}

// Allocations lists every allocation made for the kit's items
func (s *KitService) Allocations(ctx context.Context, id uuid.UUID) ([]inventory.Allocation, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.allocs.FindByParent(ctx, inventory.OwnerKitItem, id)
}

func kitOwner(k *ecommerce.Kit, item ecommerce.KitItem) inventory.Owner {
	return inventory.Owner{Type: inventory.OwnerKitItem, ID: item.ID, ParentID: k.ID}
}
