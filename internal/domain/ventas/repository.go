package ventas

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QuotationRepository persists quotations with their items
type QuotationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)
	// FindByIDForUpdate locks the quotation header for the rest of the
	// transaction, then loads its items.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Quotation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Quotation, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, q *Quotation) error
	// Update writes the header and replaces all items.
	Update(ctx context.Context, q *Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error
	LastFolio(ctx context.Context, prefix string) (string, error)
}

// PedidoRepository persists pedidos with their items
type PedidoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Pedido, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Pedido, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Pedido, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, p *Pedido) error
	// Update writes the header and replaces all items, checking the version.
	Update(ctx context.Context, p *Pedido) error
	// SaveStatus writes status fields only, checking the version.
	SaveStatus(ctx context.Context, p *Pedido) error
	Delete(ctx context.Context, id uuid.UUID) error
	LastFolio(ctx context.Context, prefix string) (string, error)
}
