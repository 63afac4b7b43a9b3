package ventas

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PedidoFolioPrefix prefixes pedido folios
const PedidoFolioPrefix = "PED"

// PedidoStatus represents the status of a sales order
type PedidoStatus string

const (
	PedidoPending   PedidoStatus = "pending"
	PedidoConfirmed PedidoStatus = "confirmed"
	PedidoDelivered PedidoStatus = "delivered"
	PedidoCancelled PedidoStatus = "cancelled"
)

// IsValid checks if the status is a valid PedidoStatus
func (s PedidoStatus) IsValid() bool {
	switch s {
	case PedidoPending, PedidoConfirmed, PedidoDelivered, PedidoCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s PedidoStatus) CanTransitionTo(target PedidoStatus) bool {
	switch s {
	case PedidoPending:
		return target == PedidoConfirmed || target == PedidoCancelled
	case PedidoConfirmed:
		return target == PedidoDelivered || target == PedidoCancelled
	case PedidoCancelled:
		return target == PedidoPending
	case PedidoDelivered:
		return false
	}
	return false
}

// Pedido is a wholesale sales order. Stock is reserved for its items on
// confirmation and consumed on delivery.
type Pedido struct {
	shared.VersionedEntity
	Folio        string          `gorm:"type:varchar(20);not null;uniqueIndex" json:"folio"`
	ClientName   string          `gorm:"type:varchar(200);not null" json:"client_name"`
	ContactID    *uuid.UUID      `gorm:"type:uuid" json:"contact_id,omitempty"`
	QuotationID  *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"quotation_id,omitempty"`
	Status       PedidoStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Total        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
	DeliveredAt  *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	Items        []PedidoItem    `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (Pedido) TableName() string {
	return "pedidos"
}

// PedidoItem is one line of a pedido
type PedidoItem struct {
	shared.BaseEntity
	PedidoID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"pedido_id"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Producto    string          `gorm:"type:varchar(200);not null" json:"producto"`
	Color       string          `gorm:"type:varchar(100);not null" json:"color"`
	ProductoKey string          `gorm:"type:varchar(200);not null" json:"-"`
	ColorKey    string          `gorm:"type:varchar(100);not null" json:"-"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    int             `gorm:"not null;check:chk_pedido_item_quantity,quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
	// Allocated is filled from active allocations when the pedido is read.
	Allocated int `gorm:"-" json:"allocated"`
}

// TableName returns the table name for GORM
func (PedidoItem) TableName() string {
	return "pedido_items"
}

// Pending returns how many pieces of the line still need stock
func (i *PedidoItem) Pending() int {
	if i.Allocated >= i.Quantity {
		return 0
	}
	return i.Quantity - i.Allocated
}

// PedidoInput holds the editable fields of a pedido
type PedidoInput struct {
	ClientName   string
	ContactID    *uuid.UUID
	QuotationID  *uuid.UUID
	DeliveryDate *time.Time
	Notes        string
	Items        []LineInput
}

// NewPedido creates a pending pedido
func NewPedido(folio string, in PedidoInput) (*Pedido, error) {
	p := &Pedido{
		VersionedEntity: shared.NewVersionedEntity(),
		Folio:           folio,
		Status:          PedidoPending,
		QuotationID:     in.QuotationID,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces header fields and lines while the pedido is pending
func (p *Pedido) Update(in PedidoInput) error {
	if p.Status != PedidoPending {
		return shared.InvalidState("pedido %s is %s, only pending pedidos can be edited", p.Folio, p.Status)
	}
	if err := p.apply(in); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Pedido) apply(in PedidoInput) error {
	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		return shared.InvalidInput("client_name is required")
	}
	lines, err := validateLines(in.Items)
	if err != nil {
		return err
	}
	p.ClientName = client
	p.ContactID = in.ContactID
	p.DeliveryDate = in.DeliveryDate
	p.Notes = in.Notes
	p.Items = make([]PedidoItem, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		lt := shared.LineTotal(l.Quantity, l.UnitPrice)
		p.Items[i] = PedidoItem{
			BaseEntity:  shared.NewBaseEntity(),
			PedidoID:    p.ID,
			Position:    i + 1,
			Producto:    l.Producto,
			Color:       l.Color,
			ProductoKey: shared.CanonicalKey(l.Producto),
			ColorKey:    shared.CanonicalKey(l.Color),
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   lt,
		}
		total = total.Add(lt)
	}
	p.Total = total
	return nil
}

// Item returns the line with the given id
func (p *Pedido) Item(id uuid.UUID) (*PedidoItem, error) {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i], nil
		}
	}
	return nil, shared.NotFound("pedido item")
}

// ItemIDs returns the ids of all lines
func (p *Pedido) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	return ids
}

// FullyAllocated reports whether every line has all its pieces reserved
func (p *Pedido) FullyAllocated() bool {
	for _, it := range p.Items {
		if it.Allocated < it.Quantity {
			return false
		}
	}
	return true
}

func (p *Pedido) transition(target PedidoStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.InvalidState("cannot change pedido %s from %s to %s", p.Folio, p.Status, target)
	}
	p.Status = target
	p.IncrementVersion()
	return nil
}

// Confirm moves a pending pedido to confirmed
func (p *Pedido) Confirm() error {
	if err := p.transition(PedidoConfirmed); err != nil {
		return err
	}
	now := time.Now()
	p.ConfirmedAt = &now
	return nil
}

// Deliver moves a confirmed pedido to delivered. All lines must be fully allocated.
func (p *Pedido) Deliver() error {
	if p.Status == PedidoConfirmed && !p.FullyAllocated() {
		return shared.InvalidState("pedido %s has items without reserved stock", p.Folio)
	}
	if err := p.transition(PedidoDelivered); err != nil {
		return err
	}
	now := time.Now()
	p.DeliveredAt = &now
	return nil
}

// Cancel moves a pending or confirmed pedido to cancelled
func (p *Pedido) Cancel() error {
	if err := p.transition(PedidoCancelled); err != nil {
		return err
	}
	now := time.Now()
	p.CancelledAt = &now
	return nil
}

// Reopen returns a cancelled pedido to pending with nothing reserved
func (p *Pedido) Reopen() error {
	if err := p.transition(PedidoPending); err != nil {
		return err
	}
	p.ConfirmedAt = nil
	p.CancelledAt = nil
	return nil
}

// AcceptsAllocations reports whether stock may be reserved or released manually
func (p *Pedido) AcceptsAllocations() bool {
	return p.Status == PedidoPending || p.Status == PedidoConfirmed
}

// CanDelete returns an error unless the pedido is pending or cancelled
func (p *Pedido) CanDelete() error {
	if p.Status != PedidoPending && p.Status != PedidoCancelled {
		return shared.InvalidState("pedido %s is %s and cannot be deleted", p.Folio, p.Status)
	}
	return nil
}
