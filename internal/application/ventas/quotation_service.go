package ventas

import (
	"context"
	"errors"
	"time"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// folioAttempts bounds retries when two requests race for the same folio
const folioAttempts = 3

// QuotationRenderer turns a quotation into a PDF document
type QuotationRenderer interface {
	RenderQuotation(ctx context.Context, q *ventas.Quotation) ([]byte, error)
}

// QuotationService handles ventas quotations
type QuotationService struct {
	repo     ventas.QuotationRepository
	scope    uow.TransactionScope
	renderer QuotationRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(repo ventas.QuotationRepository, scope uow.TransactionScope, logger *zap.Logger) *QuotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationService{repo: repo, scope: scope, logger: logger, now: time.Now}
}

// SetRenderer sets the PDF renderer (optional; PDF returns INVALID_STATE without it)
func (s *QuotationService) SetRenderer(r QuotationRenderer) {
	s.renderer = r
}

// List returns one page of quotations
func (s *QuotationService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ventas.Quotation], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ventas.Quotation]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ventas.Quotation]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a quotation with its items
func (s *QuotationService) Get(ctx context.Context, id uuid.UUID) (*ventas.Quotation, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a draft quotation with the next COT folio of the year
func (s *QuotationService) Create(ctx context.Context, in ventas.QuotationInput, by *uuid.UUID) (*ventas.Quotation, error) {
	var q *ventas.Quotation
	err := withFolioRetry(func() error {
		return s.scope.Execute(ctx, func(repos uow.Repositories) error {
			folio, err := nextFolio(ctx, repos.QuotationRepo().LastFolio, ventas.QuotationFolioPrefix, s.now())
			if err != nil {
				return err
			}
			if q, err = ventas.NewQuotation(folio, in); err != nil {
				return err
			}
			q.CreatedBy = by
			return repos.QuotationRepo().Create(ctx, q)
		})
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces header and items of a draft or sent quotation
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, in ventas.QuotationInput) (*ventas.Quotation, error) {
	var q *ventas.Quotation
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if q, err = repos.QuotationRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := q.Update(in); err != nil {
			return err
		}
		return repos.QuotationRepo().Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a draft or sent quotation
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		q, err := repos.QuotationRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !q.IsEditable() {
			return shared.InvalidState("quotation %s is %s and cannot be deleted", q.Folio, q.Status)
		}
		return repos.QuotationRepo().Delete(ctx, id)
	})
}

// ChangeStatus moves the quotation along draft → sent → accepted|rejected|expired
func (s *QuotationService) ChangeStatus(ctx context.Context, id uuid.UUID, status ventas.QuotationStatus) (*ventas.Quotation, error) {
	var q *ventas.Quotation
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if q, err = repos.QuotationRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := q.TransitionTo(status); err != nil {
			return err
		}
		return repos.QuotationRepo().Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Convert creates a pending pedido from an accepted quotation and marks the
// quotation converted.
func (s *QuotationService) Convert(ctx context.Context, id uuid.UUID, by *uuid.UUID) (*ventas.Pedido, error) {
	var p *ventas.Pedido
	err := withFolioRetry(func() error {
		return s.scope.Execute(ctx, func(repos uow.Repositories) error {
			q, err := repos.QuotationRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if q.Status != ventas.QuotationAccepted {
				return shared.InvalidState("only accepted quotations can be converted, quotation %s is %s", q.Folio, q.Status)
			}
			folio, err := nextFolio(ctx, repos.PedidoRepo().LastFolio, ventas.PedidoFolioPrefix, s.now())
			if err != nil {
				return err
			}
			p, err = ventas.NewPedido(folio, ventas.PedidoInput{
				ClientName:  q.ClientName,
				ContactID:   q.ContactID,
				QuotationID: &q.ID,
				Notes:       q.Notes,
				Items:       q.Lines(),
			})
			if err != nil {
				return err
			}
			p.CreatedBy = by
			if err := repos.PedidoRepo().Create(ctx, p); err != nil {
				return err
			}
			if err := q.MarkConverted(p.ID); err != nil {
				return err
			}
			return repos.QuotationRepo().Update(ctx, q)
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("quotation converted", zap.String("quotation_id", id.String()), zap.String("pedido", p.Folio))
	return p, nil
}

// PDF renders the quotation and returns the document with its file name
func (s *QuotationService) PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.InvalidState("PDF rendering is not configured")
	}
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.RenderQuotation(ctx, q)
	if err != nil {
		return nil, "", err
	}
	return pdf, q.Folio + ".pdf", nil
}

func nextFolio(ctx context.Context, last func(context.Context, string) (string, error), prefix string, at time.Time) (string, error) {
	prev, err := last(ctx, shared.FolioPrefix(prefix, at))
	if err != nil {
		return "", err
	}
	return shared.NextFolio(prefix, at, prev), nil
}

// withFolioRetry reruns fn while it fails on a duplicate folio
func withFolioRetry(fn func() error) error {
	var err error
	for range folioAttempts {
		if err = fn(); !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	return err
}
