package persistence

import (
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

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&catalog.Area{}, &catalog.Subarea{},
		&tasks.Project{}, &tasks.Task{}, &tasks.PersonalTask{},
		&records.Contact{}, &records.Document{}, &records.Attachment{},
		&finance.LedgerEntry{}, &finance.Factura{}, &finance.Cotizacion{},
		&notification.Notification{},
		&inventory.ProduccionItem{}, &inventory.EmbalajeItem{},
		&inventory.Movement{}, &inventory.Allocation{},
		&ventas.Quotation{}, &ventas.QuotationItem{},
		&ventas.Pedido{}, &ventas.PedidoItem{},
		&ecommerce.Kit{}, &ecommerce.KitItem{},
		&ecommerce.Pedido{}, &ecommerce.PedidoItem{},
	}
}

// AutoMigrate creates the schema from the entity definitions. Deployed
// databases use the SQL migrations; this serves tests and local SQLite.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
