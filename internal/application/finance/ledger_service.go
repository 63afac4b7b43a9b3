// Package finance implements the USD and MXN ledgers with their facturas,
// and the cotizaciones cash-movement book.
package finance

import (
	"context"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerService handles both ledger books. Every call names the book; an
// entry of the other book behaves as missing.
type LedgerService struct {
	repo     finance.LedgerRepository
	facturas finance.FacturaRepository
	scope    uow.TransactionScope
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo finance.LedgerRepository, facturas finance.FacturaRepository, scope uow.TransactionScope) *LedgerService {
	return &LedgerService{repo: repo, facturas: facturas, scope: scope}
}

// List returns one page of entries of a book
func (s *LedgerService) List(ctx context.Context, currency shared.Currency, filter shared.Filter) (shared.Paginated[finance.LedgerEntry], error) {
	items, err := s.repo.FindAll(ctx, currency, filter)
	if err != nil {
		return shared.Paginated[finance.LedgerEntry]{}, err
	}
	total, err := s.repo.Count(ctx, currency, filter)
	if err != nil {
		return shared.Paginated[finance.LedgerEntry]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns an entry of a book
func (s *LedgerService) Get(ctx context.Context, currency shared.Currency, id uuid.UUID) (*finance.LedgerEntry, error) {
	return s.repo.FindByID(ctx, currency, id)
}

// Create adds an entry to a book
func (s *LedgerService) Create(ctx context.Context, currency shared.Currency, in finance.LedgerInput, by *uuid.UUID) (*finance.LedgerEntry, error) {
	e, err := finance.NewLedgerEntry(currency, in, by)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the editable fields of an entry
func (s *LedgerService) Update(ctx context.Context, currency shared.Currency, id uuid.UUID, in finance.LedgerInput) (*finance.LedgerEntry, error) {
	e, err := s.repo.FindByID(ctx, currency, id)
	if err != nil {
		return nil, err
	}
	if err := e.Update(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an entry with its attachments and facturas
func (s *LedgerService) Delete(ctx context.Context, currency shared.Currency, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.LedgerRepo().FindByID(ctx, currency, id); err != nil {
			return err
		}
		if err := repos.FacturaRepo().DeleteByEntry(ctx, id); err != nil {
			return err
		}
		if err := repos.AttachmentRepo().DeleteByOwner(ctx, records.LedgerOwner(currency), id); err != nil {
			return err
		}
		return repos.LedgerRepo().Delete(ctx, currency, id)
	})
}

// Summary totals the entries matching the filter, per bank account
func (s *LedgerService) Summary(ctx context.Context, currency shared.Currency, filter shared.Filter) (finance.LedgerSummary, error) {
	rows, err := s.repo.Summary(ctx, currency, filter)
	if err != nil {
		return finance.LedgerSummary{}, err
	}
	return finance.NewLedgerSummary(currency, rows), nil
}

// Facturas lists the facturas of an entry
func (s *LedgerService) Facturas(ctx context.Context, currency shared.Currency, entryID uuid.UUID) ([]finance.Factura, error) {
	if _, err := s.repo.FindByID(ctx, currency, entryID); err != nil {
		return nil, err
	}
	out, err := s.facturas.FindByEntry(ctx, entryID)
	if out == nil && err == nil {
		out = []finance.Factura{}
	}
	return out, err
}

// AddFactura attaches a factura to an entry. A folio fiscal can only be
// registered once.
func (s *LedgerService) AddFactura(ctx context.Context, currency shared.Currency, entryID uuid.UUID, in finance.FacturaInput, by *uuid.UUID) (*finance.Factura, error) {
	f, err := finance.NewFactura(entryID, in, by)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.LedgerRepo().FindByID(ctx, currency, entryID); err != nil {
			return err
		}
		return repos.FacturaRepo().Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// RemoveFactura deletes a factura of an entry
func (s *LedgerService) RemoveFactura(ctx context.Context, currency shared.Currency, entryID, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.LedgerRepo().FindByID(ctx, currency, entryID); err != nil {
			return err
		}
		if _, err := repos.FacturaRepo().FindForEntry(ctx, entryID, id); err != nil {
			return err
		}
		return repos.FacturaRepo().Delete(ctx, id)
	})
}
