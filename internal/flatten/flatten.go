package flatten

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"storesales/internal/order"
)

// epochNanoThreshold separates epoch milliseconds from epoch nanoseconds
// when order_date arrives as a bare number. Values at or above 1e15 read
// as nanoseconds (2025 in ns is ~1.7e18; in ms it is ~1.7e12).
const epochNanoThreshold = 1e15

// Flatten produces exactly one OrderRow and len(o.Items) ItemRows from a
// decoded order. It is deterministic: the same order always yields
// identical rows, and item rows keep the source item ordering.
//
// The partition key (order_year, order_month) is derived once from the
// order date and copied onto every item row, so the two datasets can never
// disagree on an order's partition.
func Flatten(o *order.Order) (OrderRow, []ItemRow, error) {
	t, err := parseOrderDate(o.OrderDate)
	if err != nil {
		return OrderRow{}, nil, &DateParseError{OrderID: o.OrderID, Value: o.OrderDate}
	}

	row := OrderRow{
		OrderID:         o.OrderID,
		OrderDate:       t.Format("2006-01-02"),
		CustomerID:      o.Customer.ID,
		CustomerCountry: o.Customer.Country,
		CustomerSegment: o.Customer.Segment,
		SalesChannel:    o.SalesChannel,
		PaymentMethod:   o.Payment.Method,
		PaymentStatus:   o.Payment.Status,
		Currency:        o.Payment.Currency,
		OrderYear:       fmt.Sprintf("%04d", t.Year()),
		OrderMonth:      fmt.Sprintf("%02d", int(t.Month())),
	}

	items := make([]ItemRow, 0, len(o.Items))
	var derivedTotal float64
	for i, it := range o.Items {
		qty, ok := numeric(it.Quantity)
		if !ok || qty < 0 {
			return OrderRow{}, nil, &InvalidItemError{OrderID: o.OrderID, Index: i, Field: "quantity", Value: it.Quantity}
		}
		price, ok := numeric(it.UnitPrice)
		if !ok || price < 0 {
			return OrderRow{}, nil, &InvalidItemError{OrderID: o.OrderID, Index: i, Field: "unit_price", Value: it.UnitPrice}
		}

		line := round2(qty * price)
		derivedTotal += line

		items = append(items, ItemRow{
			OrderID:    o.OrderID,
			ProductID:  it.ProductID,
			Category:   it.Category,
			Quantity:   qty,
			UnitPrice:  price,
			LineTotal:  line,
			OrderYear:  row.OrderYear,
			OrderMonth: row.OrderMonth,
		})
	}

	// A provided order_total is trusted as-is; there is deliberately no
	// reconciliation against the item sum, to tolerate upstream rounding.
	if o.OrderTotal != nil {
		row.OrderTotal = *o.OrderTotal
	} else {
		row.OrderTotal = round2(derivedTotal)
	}

	return row, items, nil
}

// parseOrderDate handles the date representations seen in raw exports:
// date-only strings, RFC3339 timestamps, and epoch values in milliseconds
// or nanoseconds. The result is UTC.
func parseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		if float64(n) >= epochNanoThreshold {
			return time.Unix(0, n).UTC(), nil
		}
		return time.UnixMilli(n).UTC(), nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// numeric coerces a raw JSON scalar to float64.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
