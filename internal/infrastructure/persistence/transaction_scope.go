package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/catalog"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/ceramica/backend/internal/domain/ventas"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. If fn returns an error,
// the transaction is rolled back. Constraint failures raised at commit map
// to domain errors like those raised by statements.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
	return translateError(err, "transaction")
}

// gormRepositories builds repositories bound to one *gorm.DB, which is a
// transaction inside Execute.
type gormRepositories struct {
	db *gorm.DB
}

// NewRepositories returns repositories bound to db
func NewRepositories(db *gorm.DB) uow.Repositories {
	return &gormRepositories{db: db}
}

func (r *gormRepositories) ProduccionRepo() inventory.ProduccionRepository {
	return NewGormProduccionRepository(r.db)
}

func (r *gormRepositories) EmbalajeRepo() inventory.EmbalajeRepository {
	return NewGormEmbalajeRepository(r.db)
}

func (r *gormRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.db)
}

func (r *gormRepositories) AllocationRepo() inventory.AllocationRepository {
	return NewGormAllocationRepository(r.db)
}

func (r *gormRepositories) QuotationRepo() ventas.QuotationRepository {
	return NewGormQuotationRepository(r.db)
}

func (r *gormRepositories) PedidoRepo() ventas.PedidoRepository {
	return NewGormPedidoRepository(r.db)
}

func (r *gormRepositories) KitRepo() ecommerce.KitRepository {
	return NewGormKitRepository(r.db)
}

func (r *gormRepositories) EcommercePedidoRepo() ecommerce.PedidoRepository {
	return NewGormEcommercePedidoRepository(r.db)
}

func (r *gormRepositories) TaskRepo() tasks.TaskRepository {
	return NewGormTaskRepository(r.db)
}

func (r *gormRepositories) PersonalTaskRepo() tasks.PersonalTaskRepository {
	return NewGormPersonalTaskRepository(r.db)
}

func (r *gormRepositories) ProjectRepo() tasks.ProjectRepository {
	return NewGormProjectRepository(r.db)
}

func (r *gormRepositories) ContactRepo() records.ContactRepository {
	return NewGormContactRepository(r.db)
}

func (r *gormRepositories) DocumentRepo() records.DocumentRepository {
	return NewGormDocumentRepository(r.db)
}

func (r *gormRepositories) AttachmentRepo() records.AttachmentRepository {
	return NewGormAttachmentRepository(r.db)
}

func (r *gormRepositories) LedgerRepo() finance.LedgerRepository {
	return NewGormLedgerRepository(r.db)
}

func (r *gormRepositories) FacturaRepo() finance.FacturaRepository {
	return NewGormFacturaRepository(r.db)
}

func (r *gormRepositories) CotizacionRepo() finance.CotizacionRepository {
	return NewGormCotizacionRepository(r.db)
}

func (r *gormRepositories) NotificationRepo() notification.Repository {
	return NewGormNotificationRepository(r.db)
}

func (r *gormRepositories) AreaRepo() catalog.AreaRepository {
	return NewGormAreaRepository(r.db)
}

var (
	_ uow.TransactionScope = (*GormTransactionScope)(nil)
	_ uow.Repositories     = (*gormRepositories)(nil)
)
