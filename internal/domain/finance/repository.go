package finance

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerRepository persists ledger entries. Every call is scoped to one
// currency book; an entry from the other book is not found.
type LedgerRepository interface {
	FindByID(ctx context.Context, currency shared.Currency, id uuid.UUID) (*LedgerEntry, error)
	FindAll(ctx context.Context, currency shared.Currency, filter shared.Filter) ([]LedgerEntry, error)
	Count(ctx context.Context, currency shared.Currency, filter shared.Filter) (int64, error)
	Summary(ctx context.Context, currency shared.Currency, filter shared.Filter) ([]BankBalance, error)
	Create(ctx context.Context, e *LedgerEntry) error
	Update(ctx context.Context, e *LedgerEntry) error
	Delete(ctx context.Context, currency shared.Currency, id uuid.UUID) error
}

// FacturaRepository persists facturas
type FacturaRepository interface {
	FindByEntry(ctx context.Context, entryID uuid.UUID) ([]Factura, error)
	FindForEntry(ctx context.Context, entryID, id uuid.UUID) (*Factura, error)
	Create(ctx context.Context, f *Factura) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEntry(ctx context.Context, entryID uuid.UUID) error
}

// CotizacionRepository persists cotizaciones
type CotizacionRepository interface {
	shared.Repository[Cotizacion]
	Summary(ctx context.Context, filter shared.Filter) ([]CotizacionTotal, error)
}
