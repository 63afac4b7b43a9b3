// Package uow defines the unit of work shared by the application services.
package uow

import (
	"context"

	"github.com/ceramica/backend/internal/domain/catalog"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/ceramica/backend/internal/domain/ventas"
)

// TransactionScope runs work inside one database transaction.
type TransactionScope interface {
	// Execute runs fn within a transaction. The transaction is rolled back
	// when fn returns an error and committed otherwise.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository. Inside Execute all of them
// share the same transaction.
type Repositories interface {
	ProduccionRepo() inventory.ProduccionRepository
	EmbalajeRepo() inventory.EmbalajeRepository
	MovementRepo() inventory.MovementRepository
	AllocationRepo() inventory.AllocationRepository
	QuotationRepo() ventas.QuotationRepository
	PedidoRepo() ventas.PedidoRepository
	KitRepo() ecommerce.KitRepository
	EcommercePedidoRepo() ecommerce.PedidoRepository
	TaskRepo() tasks.TaskRepository
	PersonalTaskRepo() tasks.PersonalTaskRepository
	ProjectRepo() tasks.ProjectRepository
	ContactRepo() records.ContactRepository
	DocumentRepo() records.DocumentRepository
	AttachmentRepo() records.AttachmentRepository
	LedgerRepo() finance.LedgerRepository
	FacturaRepo() finance.FacturaRepository
	CotizacionRepo() finance.CotizacionRepository
	NotificationRepo() notification.Repository
	AreaRepo() catalog.AreaRepository
}
