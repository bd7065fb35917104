package order

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Decode validates one raw order document and returns its typed form.
//
// index is the document's zero-based position in the batch; it is only used
// to identify the record in errors when the document carries no usable
// order_id. Decode is a pure transform: it never mutates the raw map and
// has no side effects.
//
// Field lookup is tolerant of key casing ("Order_ID" finds "order_id"), and
// identifiers that arrive as JSON numbers are normalized to strings.
func Decode(raw map[string]any, index int) (*Order, error) {
	ref := refFor(raw, index)

	fail := func(field, reason string) (*Order, error) {
		return nil, &MalformedRecordError{Ref: ref, Field: field, Reason: reason}
	}

	id, ok := scalarString(lookup(raw, "order_id"))
	if !ok || id == "" {
		return fail("order_id", "missing or not a scalar identifier")
	}

	date, ok := scalarString(firstPresent(raw, "order_date", "order_timestamp"))
	if !ok || date == "" {
		return fail("order_date", "missing or not a date string/epoch value")
	}

	o := &Order{
		OrderID:   id,
		OrderDate: date,
	}

	if ch, ok := scalarString(lookup(raw, "sales_channel")); ok {
		o.SalesChannel = ch
	}

	cust, err := nestedObject(raw, "customer")
	if err != nil {
		return fail("customer", err.Error())
	}
	o.Customer = Customer{
		ID:      stringField(cust, "id"),
		Country: stringField(cust, "country"),
		Segment: stringField(cust, "segment"),
	}

	pay, err := nestedObject(raw, "payment")
	if err != nil {
		return fail("payment", err.Error())
	}
	o.Payment = Payment{
		Method:   stringField(pay, "method"),
		Status:   stringField(pay, "status"),
		Currency: stringField(pay, "currency"),
	}

	itemsVal, present := lookupOk(raw, "items")
	if !present {
		return fail("items", "missing")
	}
	switch items := itemsVal.(type) {
	case nil:
		// Explicit null reads as "no line items"; the order itself stays valid.
		o.Items = nil
	case []any:
		o.Items = make([]Item, 0, len(items))
		for i, el := range items {
			m, ok := el.(map[string]any)
			if !ok {
				return fail("items", fmt.Sprintf("element %d is not an object", i))
			}
			o.Items = append(o.Items, Item{
				ProductID: stringField(m, "product_id"),
				Category:  stringField(m, "category"),
				Quantity:  lookup(m, "quantity"),
				UnitPrice: lookup(m, "unit_price"),
			})
		}
	default:
		return fail("items", fmt.Sprintf("not a sequence (got %T)", itemsVal))
	}

	// order_total: absent, null, or unparseable all mean "derive from items"
	// downstream. Upstream sometimes coerces bad totals to null, so an
	// unparseable value is deliberately not a decode failure.
	if v := lookup(raw, "order_total"); v != nil {
		if f, ok := toFloat(v); ok {
			o.OrderTotal = &f
		}
	}

	return o, nil
}

// refFor builds the error reference for a raw document: its order_id when
// readable, else the positional index.
func refFor(raw map[string]any, index int) string {
	if id, ok := scalarString(lookup(raw, "order_id")); ok && id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}

// lookup returns the value for key, matching case-insensitively when no
// exact key exists. Missing keys return nil.
func lookup(m map[string]any, key string) any {
	v, _ := lookupOk(m, key)
	return v
}

func lookupOk(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// firstPresent returns the value of the first key present in m.
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := lookupOk(m, k); ok && v != nil {
			return v
		}
	}
	return nil
}

// nestedObject fetches a required nested object field.
func nestedObject(m map[string]any, key string) (map[string]any, error) {
	v, ok := lookupOk(m, key)
	if !ok || v == nil {
		return nil, fmt.Errorf("missing")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not an object (got %T)", v)
	}
	return obj, nil
}

// stringField reads an optional scalar field as a string, normalizing
// numeric identifiers. Absent or non-scalar values become "".
func stringField(m map[string]any, key string) string {
	s, _ := scalarString(lookup(m, key))
	return s
}

// scalarString renders a scalar JSON value (string or number) as a string.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

// toFloat coerces a scalar JSON value to float64.
func toFloat(v any) (float64, bool) {
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
