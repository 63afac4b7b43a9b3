package ecommerce

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel is the sales channel an order came from
type Channel string

const (
	ChannelWeb          Channel = "web"
	ChannelMercadoLibre Channel = "mercadolibre"
	ChannelAmazon       Channel = "amazon"
	ChannelShopify      Channel = "shopify"
	ChannelOther        Channel = "other"
)

// IsValid checks if the channel is known
func (c Channel) IsValid() bool {
	switch c {
	case ChannelWeb, ChannelMercadoLibre, ChannelAmazon, ChannelShopify, ChannelOther:
		return true
	}
	return false
}

// Status is the status of an e-commerce pedido
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusShipped || target == StatusDelivered || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered || target == StatusCancelled
	}
	return false
}

// IsOpen reports whether the order still holds kit stock
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusShipped
}

// Pedido is an order received through an online channel. Kits leave stock
// when the order is created.
type Pedido struct {
	shared.VersionedEntity
	Channel         Channel         `gorm:"type:varchar(20);not null;uniqueIndex:idx_ecommerce_external,priority:1" json:"channel"`
	ExternalOrderID string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_ecommerce_external,priority:2" json:"external_order_id"`
	CustomerName    string          `gorm:"type:varchar(200);not null" json:"customer_name"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total"`
	Notes           string          `gorm:"type:text" json:"notes"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	Items           []PedidoItem    `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (Pedido) TableName() string {
	return "ecommerce_pedidos"
}

// PedidoItem is one kit line of an e-commerce pedido
type PedidoItem struct {
	shared.BaseEntity
	PedidoID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"pedido_id"`
	KitID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"kit_id"`
	Quantity  int             `gorm:"not null;check:chk_ecommerce_item_quantity,quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}

// TableName returns the table name for GORM
func (PedidoItem) TableName() string {
	return "ecommerce_pedido_items"
}

// ItemInput describes one ordered kit
type ItemInput struct {
	KitID     uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// PedidoInput holds the fields of a new order
type PedidoInput struct {
	Channel         Channel
	ExternalOrderID string
	CustomerName    string
	ShippingAddress string
	Notes           string
	Items           []ItemInput
}

// NewPedido creates a pending e-commerce pedido
func NewPedido(in PedidoInput) (*Pedido, error) {
	if !in.Channel.IsValid() {
		return nil, shared.InvalidInput("invalid channel %q", in.Channel)
	}
	ext := strings.TrimSpace(in.ExternalOrderID)
	if ext == "" {
		return nil, shared.InvalidInput("external_order_id is required")
	}
	if len(in.Items) == 0 {
		return nil, shared.InvalidInput("at least one item is required")
	}
	p := &Pedido{
		VersionedEntity: shared.NewVersionedEntity(),
		Channel:         in.Channel,
		ExternalOrderID: ext,
		Status:          StatusPending,
	}
	if err := p.UpdateDetails(in.CustomerName, in.ShippingAddress, in.Notes); err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool, len(in.Items))
	total := decimal.Zero
	for i, it := range in.Items {
		if it.KitID == uuid.Nil {
			return nil, shared.InvalidInput("item %d: kit_id is required", i+1)
		}
		if seen[it.KitID] {
			return nil, shared.InvalidInput("item %d: kit listed twice", i+1)
		}
		seen[it.KitID] = true
		if it.Quantity <= 0 {
			return nil, shared.InvalidInput("item %d: quantity must be positive", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, shared.InvalidInput("item %d: unit price cannot be negative", i+1)
		}
		lt := shared.LineTotal(it.Quantity, it.UnitPrice)
		p.Items = append(p.Items, PedidoItem{
			BaseEntity: shared.NewBaseEntity(),
			PedidoID:   p.ID,
			KitID:      it.KitID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			LineTotal:  lt,
		})
		total = total.Add(lt)
	}
	p.Total = total
	return p, nil
}

// UpdateDetails changes customer data; allowed while pending
func (p *Pedido) UpdateDetails(customer, address, notes string) error {
	if p.Status != StatusPending {
		return shared.InvalidState("pedido %s is %s, only pending pedidos can be edited", p.ExternalOrderID, p.Status)
	}
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return shared.InvalidInput("customer_name is required")
	}
	p.CustomerName = customer
	p.ShippingAddress = address
	p.Notes = notes
	return nil
}

func (p *Pedido) transition(target Status) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.InvalidState("cannot change pedido %s from %s to %s", p.ExternalOrderID, p.Status, target)
	}
	p.Status = target
	p.IncrementVersion()
	return nil
}

// Ship marks a pending order as shipped
func (p *Pedido) Ship() error {
	if err := p.transition(StatusShipped); err != nil {
		return err
	}
	now := time.Now()
	p.ShippedAt = &now
	return nil
}

// Deliver marks the order as delivered
func (p *Pedido) Deliver() error {
	if err := p.transition(StatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	p.DeliveredAt = &now
	return nil
}

// Cancel marks the order as cancelled
func (p *Pedido) Cancel() error {
	if err := p.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	p.CancelledAt = &now
	return nil
}

// CanDelete returns an error while the order still holds kit stock
func (p *Pedido) CanDelete() error {
	if p.Status.IsOpen() {
		return shared.InvalidState("pedido %s is %s, cancel it before deleting", p.ExternalOrderID, p.Status)
	}
	return nil
}
