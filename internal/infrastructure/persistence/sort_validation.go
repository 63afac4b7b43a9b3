package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

func sortFields(fields ...string) map[string]bool {
	m := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

var (
	ProduccionSortFields   = sortFields("producto", "etapa", "color", "quantity", "apartados", "vendidos", "min_quantity")
	EmbalajeSortFields     = sortFields("producto", "color", "presentacion", "quantity", "min_quantity")
	MovementSortFields     = sortFields("kind", "delta")
	QuotationSortFields    = sortFields("folio", "client_name", "status", "valid_until", "total")
	PedidoSortFields       = sortFields("folio", "client_name", "status", "delivery_date", "total", "confirmed_at", "delivered_at")
	KitSortFields          = sortFields("sku", "name", "price", "stock")
	EcommerceSortFields    = sortFields("channel", "external_order_id", "customer_name", "status", "total", "shipped_at")
	TaskSortFields         = sortFields("title", "status", "priority", "due_date", "completed_at")
	PersonalTaskSortFields = sortFields("title", "status", "priority", "due_date")
	ProjectSortFields      = sortFields("name", "status", "start_date", "end_date")
	ContactSortFields      = sortFields("name", "company", "email")
	DocumentSortFields     = sortFields("title", "category")
	LedgerSortFields       = sortFields("date", "amount", "bank_account", "entry_type")
	CotizacionSortFields   = sortFields("date", "amount", "concept", "movement_type")
	NotificationSortFields = sortFields("read")
)
