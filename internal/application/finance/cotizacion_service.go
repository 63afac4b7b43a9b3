package finance

import (
	"context"

	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CotizacionService handles cash-movement entries
type CotizacionService struct {
	repo finance.CotizacionRepository
}

// NewCotizacionService creates a new CotizacionService
func NewCotizacionService(repo finance.CotizacionRepository) *CotizacionService {
	return &CotizacionService{repo: repo}
}

// List returns one page of cotizaciones
func (s *CotizacionService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[finance.Cotizacion], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[finance.Cotizacion]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[finance.Cotizacion]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a cotizacion by ID
func (s *CotizacionService) Get(ctx context.Context, id uuid.UUID) (*finance.Cotizacion, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a cotizacion
func (s *CotizacionService) Create(ctx context.Context, in finance.CotizacionInput, by *uuid.UUID) (*finance.Cotizacion, error) {
	c, err := finance.NewCotizacion(in, by)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (s *CotizacionService) Update(ctx context.Context, id uuid.UUID, in finance.CotizacionInput) (*finance.Cotizacion, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a cotizacion
func (s *CotizacionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Summary totals the matching cotizaciones per currency and movement type
func (s *CotizacionService) Summary(ctx context.Context, filter shared.Filter) ([]finance.CotizacionTotal, error) {
	out, err := s.repo.Summary(ctx, filter)
	if out == nil && err == nil {
		out = []finance.CotizacionTotal{}
	}
	return out, err
}
