// Command genorders writes a synthetic batch of nested order documents,
// shaped like the upstream export the flatten job consumes. Useful for
// local runs and load checks without pulling real data.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

func main() {
	var (
		count      int
		outputFile string
		seed       int64
		badPct     int
	)
	flag.IntVar(&count, "count", 100, "number of orders to generate")
	flag.StringVar(&outputFile, "output", "orders.json", "output file")
	flag.Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	flag.IntVar(&badPct, "bad-pct", 0, "percentage of deliberately malformed documents (0-100)")
	flag.Parse()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if err := generateOrders(count, outputFile, seed, badPct); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

var (
	countries = []string{"US", "DE", "GB", "FR", "JP"}
	segments  = []string{"consumer", "business", "enterprise"}
	channels  = []string{"web", "mobile", "store", "marketplace"}
	methods   = []string{"card", "paypal", "invoice", "giftcard"}
	statuses  = []string{"paid", "pending", "refunded"}
	products  = []string{"p-100", "p-200", "p-300", "p-400", "p-500"}
	cats      = []string{"electronics", "apparel", "home", "toys", "grocery"}
)

func generateOrders(count int, outputFile string, seed int64, badPct int) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	docs := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		if badPct > 0 && rng.Intn(100) < badPct {
			docs = append(docs, malformedDoc(rng, i))
			continue
		}
		docs = append(docs, orderDoc(rng, base, i))
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	log.Printf("generated %d orders to %s (seed=%d)", count, outputFile, seed)
	return nil
}

func orderDoc(rng *rand.Rand, base time.Time, i int) map[string]any {
	nItems := 1 + rng.Intn(4)
	items := make([]map[string]any, 0, nItems)
	total := 0.0
	for j := 0; j < nItems; j++ {
		qty := 1 + rng.Intn(5)
		price := float64(100+rng.Intn(9900)) / 100
		total += float64(qty) * price
		items = append(items, map[string]any{
			"product_id": products[rng.Intn(len(products))],
			"category":   cats[rng.Intn(len(cats))],
			"quantity":   qty,
			"unit_price": price,
		})
	}

	// Spread orders over the year so several partitions appear.
	ts := base.Add(time.Duration(rng.Intn(365*24)) * time.Hour)

	doc := map[string]any{
		"order_id":      fmt.Sprintf("ord-%06d", i+1),
		"order_date":    ts.Format(time.RFC3339),
		"sales_channel": channels[rng.Intn(len(channels))],
		"customer": map[string]any{
			"id":      fmt.Sprintf("cust-%04d", 1+rng.Intn(500)),
			"country": countries[rng.Intn(len(countries))],
			"segment": segments[rng.Intn(len(segments))],
		},
		"payment": map[string]any{
			"method":   methods[rng.Intn(len(methods))],
			"status":   statuses[rng.Intn(len(statuses))],
			"currency": "USD",
		},
		"items": items,
	}

	// Emit the date in every format the job accepts, and leave out the
	// total sometimes so the derived path gets exercised.
	switch rng.Intn(4) {
	case 0:
		doc["order_date"] = ts.Format("2006-01-02")
	case 1:
		doc["order_date"] = fmt.Sprintf("%d", ts.UnixMilli())
	}
	if rng.Intn(5) != 0 {
		doc["order_total"] = float64(int(total*100)) / 100
	}

	return doc
}

// malformedDoc produces documents the job should reject, one per failure
// mode, so error-path behavior can be rehearsed with realistic input.
func malformedDoc(rng *rand.Rand, i int) map[string]any {
	base := map[string]any{
		"order_id":      fmt.Sprintf("bad-%06d", i+1),
		"order_date":    "2025-03-10",
		"sales_channel": "web",
		"customer":      map[string]any{"id": "cust-0001", "country": "US", "segment": "consumer"},
		"payment":       map[string]any{"method": "card", "status": "paid", "currency": "USD"},
		"items":         []map[string]any{},
	}
	switch rng.Intn(4) {
	case 0:
		delete(base, "order_id")
	case 1:
		base["order_date"] = "not-a-date"
	case 2:
		delete(base, "items")
	default:
		base["items"] = []map[string]any{{
			"product_id": "p-100",
			"category":   "toys",
			"quantity":   -2,
			"unit_price": 9.99,
		}}
	}
	return base
}
