// Package order defines the decoded, typed representation of a raw nested
// order document and the decoder that produces it.
//
// Raw documents arrive as semi-structured JSON objects (one monthly file is
// a JSON array of them). Nothing upstream enforces a schema, so every
// required-field and shape check happens here, once, at the decode boundary.
// Downstream stages (flattening, partition writing) operate only on the
// typed Order value and never touch the raw map again.
package order

// Customer holds the nested customer object of a raw order.
type Customer struct {
	ID      string
	Country string
	Segment string
}

// Payment holds the nested payment object of a raw order.
type Payment struct {
	Method   string
	Status   string
	Currency string
}

// Item is one order line. Quantity and UnitPrice keep the raw JSON value
// (string or json.Number); numeric coercion is the flattening stage's job
// so that a bad line item is reported as an item error, not a decode error.
type Item struct {
	ProductID string
	Category  string
	Quantity  any
	UnitPrice any
}

// Order is the normalized in-memory form of one raw order document.
//
// OrderDate keeps the source's literal date representation: an ISO date
// ("2025-02-15"), an RFC3339 timestamp, or an epoch value in milliseconds
// or nanoseconds rendered as digits. Calendar parsing happens during
// flattening.
type Order struct {
	OrderID      string
	OrderDate    string
	SalesChannel string
	Customer     Customer
	Payment      Payment
	Items        []Item

	// OrderTotal is nil when the source omits the field or carries an
	// explicit null; the flattening stage then derives it from the items.
	OrderTotal *float64
}
