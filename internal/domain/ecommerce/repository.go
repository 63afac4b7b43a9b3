package ecommerce

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// KitRepository persists kits with their items
type KitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Kit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Kit, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Kit, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, k *Kit) error
	// Update writes the header, checking the version. With replaceItems the
	// stored items are deleted and k.Items inserted.
	Update(ctx context.Context, k *Kit, replaceItems bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PedidoRepository persists e-commerce pedidos
type PedidoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Pedido, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Pedido, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Pedido, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, p *Pedido) error
	// Save writes header fields, checking the version.
	Save(ctx context.Context, p *Pedido) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOpenByKit(ctx context.Context, kitID uuid.UUID) (int64, error)
}
