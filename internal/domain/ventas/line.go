package ventas

import (
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineInput describes one requested line of a quotation or pedido
type LineInput struct {
	Producto    string
	Color       string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (l LineInput) validate(pos int) (LineInput, error) {
	l.Producto = strings.TrimSpace(l.Producto)
	l.Color = strings.TrimSpace(l.Color)
	if l.Producto == "" || l.Color == "" {
		return l, shared.InvalidInput("item %d: producto and color are required", pos+1)
	}
	if l.Quantity <= 0 {
		return l, shared.InvalidInput("item %d: quantity must be positive", pos+1)
	}
	if l.UnitPrice.IsNegative() {
		return l, shared.InvalidInput("item %d: unit price cannot be negative", pos+1)
	}
	return l, nil
}

func validateLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, shared.InvalidInput("at least one item is required")
	}
	out := make([]LineInput, len(lines))
	for i, l := range lines {
		v, err := l.validate(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
