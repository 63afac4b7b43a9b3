package ecommerce

import (
	"context"
	"errors"
	"slices"

	appinventory "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DetailsInput holds the fields editable on a pending order
type DetailsInput struct {
	CustomerName    string
	ShippingAddress string
	Notes           string
}

// PedidoService handles e-commerce orders. Orders take assembled kits from
// stock; delivery consumes the produccion pieces those kits hold.
type PedidoService struct {
	repo      ecommerce.PedidoRepository
	scope     uow.TransactionScope
	allocator *appinventory.Allocator
	logger    *zap.Logger
}

// NewPedidoService creates a new PedidoService
func NewPedidoService(repo ecommerce.PedidoRepository, scope uow.TransactionScope, allocator *appinventory.Allocator, logger *zap.Logger) *PedidoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PedidoService{repo: repo, scope: scope, allocator: allocator, logger: logger}
}

// List returns one page of orders
func (s *PedidoService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ecommerce.Pedido], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ecommerce.Pedido]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ecommerce.Pedido]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns an order with its items
func (s *PedidoService) Get(ctx context.Context, id uuid.UUID) (*ecommerce.Pedido, error) {
	return s.repo.FindByID(ctx, id)
}

// Create records an order and takes its kits from stock
func (s *PedidoService) Create(ctx context.Context, in ecommerce.PedidoInput, by *uuid.UUID) (*ecommerce.Pedido, error) {
	p, err := ecommerce.NewPedido(in)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = by
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		for _, it := range lockOrder(p.Items) {
			k, err := repos.KitRepo().FindByIDForUpdate(ctx, it.KitID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.InvalidInput("kit %s does not exist", it.KitID)
				}
				return err
			}
			if err := k.Take(it.Quantity); err != nil {
				return err
			}
			if err := repos.KitRepo().Update(ctx, k, false); err != nil {
				return err
			}
		}
		return repos.EcommercePedidoRepo().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("ecommerce pedido created",
		zap.String("channel", string(p.Channel)),
		zap.String("external_order_id", p.ExternalOrderID),
	)
	return p, nil
}

// Update changes customer details of a pending order
func (s *PedidoService) Update(ctx context.Context, id uuid.UUID, in DetailsInput) (*ecommerce.Pedido, error) {
	return s.mutate(ctx, id, func(_ uow.Repositories, p *ecommerce.Pedido) error {
		if err := p.UpdateDetails(in.CustomerName, in.ShippingAddress, in.Notes); err != nil {
			return err
		}
		p.IncrementVersion()
		return nil
	})
}

// Delete removes a delivered or cancelled order
func (s *PedidoService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		p, err := repos.EcommercePedidoRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.CanDelete(); err != nil {
			return err
		}
		return repos.EcommercePedidoRepo().Delete(ctx, id)
	})
}

// Ship marks a pending order as shipped
func (s *PedidoService) Ship(ctx context.Context, id uuid.UUID) (*ecommerce.Pedido, error) {
	return s.mutate(ctx, id, func(_ uow.Repositories, p *ecommerce.Pedido) error {
		return p.Ship()
	})
}

// Deliver marks the order delivered and consumes quantity × quantity_per_kit
// pieces from each kit item's reservations.
func (s *PedidoService) Deliver(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*ecommerce.Pedido, error) {
	return s.mutate(ctx, id, func(repos uow.Repositories, p *ecommerce.Pedido) error {
		if err := p.Deliver(); err != nil {
			return err
		}
		for _, it := range p.Items {
			k, err := repos.KitRepo().FindByID(ctx, it.KitID)
			if err != nil {
				return err
			}
			for _, item := range k.Items {
				if _, err := s.allocator.Consume(ctx, repos, inventory.OwnerKitItem, item.ID, it.Quantity*item.QuantityPerKit, by); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Cancel marks the order cancelled and returns its kits to stock
func (s *PedidoService) Cancel(ctx context.Context, id uuid.UUID) (*ecommerce.Pedido, error) {
	return s.mutate(ctx, id, func(repos uow.Repositories, p *ecommerce.Pedido) error {
		if err := p.Cancel(); err != nil {
			return err
		}
		for _, it := range lockOrder(p.Items) {
			k, err := repos.KitRepo().FindByIDForUpdate(ctx, it.KitID)
			if err != nil {
				return err
			}
			if err := k.Restore(it.Quantity); err != nil {
				return err
			}
			if err := repos.KitRepo().Update(ctx, k, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// ChangeStatus dispatches to Ship, Deliver or Cancel
func (s *PedidoService) ChangeStatus(ctx context.Context, id uuid.UUID, status ecommerce.Status, by *uuid.UUID) (*ecommerce.Pedido, error) {
	switch status {
	case ecommerce.StatusShipped:
		return s.Ship(ctx, id)
	case ecommerce.StatusDelivered:
		return s.Deliver(ctx, id, by)
	case ecommerce.StatusCancelled:
		return s.Cancel(ctx, id)
	case ecommerce.StatusPending:
		return nil, shared.InvalidState("e-commerce pedidos cannot return to pending")
	default:
		return nil, shared.InvalidInput("invalid status %q", status)
	}
}

func (s *PedidoService) mutate(ctx context.Context, id uuid.UUID, fn func(uow.Repositories, *ecommerce.Pedido) error) (*ecommerce.Pedido, error) {
	var p *ecommerce.Pedido
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if p, err = repos.EcommercePedidoRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := fn(repos, p); err != nil {
			return err
		}
		return repos.EcommercePedidoRepo().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// lockOrder sorts lines by kit id so concurrent orders lock kits in the
// same order.
func lockOrder(items []ecommerce.PedidoItem) []ecommerce.PedidoItem {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b ecommerce.PedidoItem) int {
		return slices.Compare(a.KitID[:], b.KitID[:])
	})
	return out
}
