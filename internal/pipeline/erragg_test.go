package pipeline

import (
	"fmt"
	"sync"
	"testing"
)

func TestErrAgg_KeepsFirstN(t *testing.T) {
	agg := newErrAgg(3)
	for i := 0; i < 10; i++ {
		agg.add(fmt.Sprintf("failure %d", i))
	}

	if agg.count != 10 {
		t.Fatalf("count=%d; want 10", agg.count)
	}
	if len(agg.first) != 3 {
		t.Fatalf("samples=%d; want 3", len(agg.first))
	}
	if agg.first[0] != "failure 0" || agg.first[2] != "failure 2" {
		t.Fatalf("samples=%v; want first three in order", agg.first)
	}
}

func TestErrAgg_Concurrent(t *testing.T) {
	agg := newErrAgg(5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.add("x")
		}()
	}
	wg.Wait()

	if agg.count != 50 {
		t.Fatalf("count=%d; want 50", agg.count)
	}
	if len(agg.first) != 5 {
		t.Fatalf("samples=%d; want 5", len(agg.first))
	}
}
