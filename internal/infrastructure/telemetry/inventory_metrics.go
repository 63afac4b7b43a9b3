package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InventoryMetrics counts pieces moving through the allocation lifecycle.
// A nil *InventoryMetrics records nothing.
type InventoryMetrics struct {
	reserved  metric.Int64Counter
	released  metric.Int64Counter
	consumed  metric.Int64Counter
	shortages metric.Int64Counter
	lowStock  metric.Int64Counter
	drifts    metric.Int64Counter
}

// NewInventoryMetrics registers the inventory instruments on meter
func NewInventoryMetrics(meter metric.Meter) (*InventoryMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("NewInventoryMetrics: meter cannot be nil")
	}
	m := &InventoryMetrics{}
	var err error
	if m.reserved, err = meter.Int64Counter("inventory.pieces.reserved",
		metric.WithDescription("Pieces moved into apartados"), metric.WithUnit("{piece}")); err != nil {
		return nil, err
	}
	if m.released, err = meter.Int64Counter("inventory.pieces.released",
		metric.WithDescription("Pieces released from apartados"), metric.WithUnit("{piece}")); err != nil {
		return nil, err
	}
	if m.consumed, err = meter.Int64Counter("inventory.pieces.consumed",
		metric.WithDescription("Reserved pieces delivered and counted as vendidos"), metric.WithUnit("{piece}")); err != nil {
		return nil, err
	}
	if m.shortages, err = meter.Int64Counter("inventory.reservation.shortages",
		metric.WithDescription("Reservations rejected for insufficient stock")); err != nil {
		return nil, err
	}
	if m.lowStock, err = meter.Int64Counter("inventory.low_stock.alerts",
		metric.WithDescription("Rows that dropped below their minimum")); err != nil {
		return nil, err
	}
	if m.drifts, err = meter.Int64Counter("inventory.reconcile.drifts",
		metric.WithDescription("Rows whose apartados disagreed with active allocations")); err != nil {
		return nil, err
	}
	return m, nil
}

// Reserved records n pieces reserved for an owner type
func (m *InventoryMetrics) Reserved(ctx context.Context, ownerType string, n int) {
	if m == nil {
		return
	}
	m.reserved.Add(ctx, int64(n), metric.WithAttributes(attribute.String("owner_type", ownerType)))
}

// Released records n pieces released
func (m *InventoryMetrics) Released(ctx context.Context, ownerType string, n int) {
	if m == nil {
		return
	}
	m.released.Add(ctx, int64(n), metric.WithAttributes(attribute.String("owner_type", ownerType)))
}

// Consumed records n pieces delivered
func (m *InventoryMetrics) Consumed(ctx context.Context, ownerType string, n int) {
	if m == nil {
		return
	}
	m.consumed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("owner_type", ownerType)))
}

// Shortage records a rejected reservation
func (m *InventoryMetrics) Shortage(ctx context.Context, ownerType string) {
	if m == nil {
		return
	}
	m.shortages.Add(ctx, 1, metric.WithAttributes(attribute.String("owner_type", ownerType)))
}

// LowStock records a row dropping under its minimum
func (m *InventoryMetrics) LowStock(ctx context.Context, inventoryType string) {
	if m == nil {
		return
	}
	m.lowStock.Add(ctx, 1, metric.WithAttributes(attribute.String("inventory_type", inventoryType)))
}

// Drift records a row found out of balance by reconciliation
func (m *InventoryMetrics) Drift(ctx context.Context, fixed bool) {
	if m == nil {
		return
	}
	m.drifts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("fixed", fixed)))
}
