package flatten

import "fmt"

// DateParseError reports an order_date value that is not a valid calendar
// date in any accepted representation.
type DateParseError struct {
	OrderID string
	Value   string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("order %s: unparseable order_date %q", e.OrderID, e.Value)
}

// InvalidItemError reports a line item whose quantity or unit_price is
// negative or non-numeric. The whole order is rejected, never a partial
// set of its rows.
type InvalidItemError struct {
	OrderID string
	Index   int
	Field   string
	Value   any
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("order %s: item %d: invalid %s %v", e.OrderID, e.Index, e.Field, e.Value)
}
