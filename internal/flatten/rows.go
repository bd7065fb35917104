// Package flatten turns one decoded order into flat fact rows: exactly one
// row for fact_orders and one row per line item for fact_order_items.
package flatten

import "storesales/internal/partition"

// OrderRow is one fact_orders row. The column set and types are a stable
// contract with the downstream catalog: schema inference runs over every
// partition ever written, so names and types must not drift between
// invocations.
//
// OrderYear and OrderMonth tag the row for partition routing but are
// excluded from the Parquet file schema; they are encoded in the output
// path instead.
type OrderRow struct {
	OrderID         string  `parquet:"order_id" json:"order_id"`
	OrderDate       string  `parquet:"order_date" json:"order_date"`
	CustomerID      string  `parquet:"customer_id" json:"customer_id"`
	CustomerCountry string  `parquet:"customer_country" json:"customer_country"`
	CustomerSegment string  `parquet:"customer_segment" json:"customer_segment"`
	SalesChannel    string  `parquet:"sales_channel" json:"sales_channel"`
	PaymentMethod   string  `parquet:"payment_method" json:"payment_method"`
	PaymentStatus   string  `parquet:"payment_status" json:"payment_status"`
	Currency        string  `parquet:"currency" json:"currency"`
	OrderTotal      float64 `parquet:"order_total" json:"order_total"`

	OrderYear  string `parquet:"-" json:"order_year"`
	OrderMonth string `parquet:"-" json:"order_month"`
}

// PartitionKey implements partition.Row.
func (r OrderRow) PartitionKey() partition.Key {
	return partition.Key{Year: r.OrderYear, Month: r.OrderMonth}
}

// ItemRow is one fact_order_items row. It joins to OrderRow on order_id
// (many-to-one) and always carries its parent order's partition key, never
// one derived from item-level data.
type ItemRow struct {
	OrderID   string  `parquet:"order_id" json:"order_id"`
	ProductID string  `parquet:"product_id" json:"product_id"`
	Category  string  `parquet:"category" json:"category"`
	Quantity  float64 `parquet:"quantity" json:"quantity"`
	UnitPrice float64 `parquet:"unit_price" json:"unit_price"`
	LineTotal float64 `parquet:"line_total" json:"line_total"`

	OrderYear  string `parquet:"-" json:"order_year"`
	OrderMonth string `parquet:"-" json:"order_month"`
}

// PartitionKey implements partition.Row.
func (r ItemRow) PartitionKey() partition.Key {
	return partition.Key{Year: r.OrderYear, Month: r.OrderMonth}
}
