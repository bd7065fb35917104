package pipeline

import "sync"

// sampleLimit caps how many failure messages are echoed to the log; the
// full list still lands in the Summary.
const sampleLimit = 3

// errAgg aggregates error messages across goroutines, keeping the first N
// for log output.
type errAgg struct {
	mu    sync.Mutex
	limit int
	count int
	first []string
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit}
}

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}
