package enums

import "fmt"

// StockEventType maps to the stock_event_type enum in Postgres and names the
// kind of movement a stock ledger entry records.
type StockEventType string

const (
	StockEventTypePurchase   StockEventType = "purchase"
	StockEventTypeSale       StockEventType = "sale"
	StockEventTypeAdjustment StockEventType = "adjustment"
	StockEventTypeReturn     StockEventType = "return"
	StockEventTypeDamaged    StockEventType = "damaged"
	StockEventTypeLost       StockEventType = "lost"
)

var validStockEventTypes = []StockEventType{
	StockEventTypePurchase,
	StockEventTypeSale,
	StockEventTypeAdjustment,
	StockEventTypeReturn,
	StockEventTypeDamaged,
	StockEventTypeLost,
}

// String implements fmt.Stringer.
func (t StockEventType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical stock event enum.
func (t StockEventType) IsValid() bool {
	for _, candidate := range validStockEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockEventType converts raw input into a StockEventType.
func ParseStockEventType(value string) (StockEventType, error) {
	for _, candidate := range validStockEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock event type %q", value)
}
