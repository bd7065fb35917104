package order

import (
	"strings"
	"testing"
)

func TestReadAll_Array(t *testing.T) {
	in := `[{"order_id":"A1"},{"order_id":"A2"},{"order_id":"A3"}]`

	docs, err := ReadAll(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("docs=%d; want 3", len(docs))
	}
	for i, want := range []string{"A1", "A2", "A3"} {
		if got := docs[i]["order_id"]; got != want {
			t.Fatalf("docs[%d].order_id=%v; want %s", i, got, want)
		}
	}
}

func TestReadAll_NDJSON(t *testing.T) {
	in := `{"order_id":"A1"}
{"order_id":"A2"}
{"order_id":"A3"}`

	docs, err := ReadAll(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("docs=%d; want 3", len(docs))
	}
	if docs[2]["order_id"] != "A3" {
		t.Fatalf("docs[2].order_id=%v; want A3", docs[2]["order_id"])
	}
}

func TestReadAll_SingleObject(t *testing.T) {
	docs, err := ReadAll(strings.NewReader(`{"order_id":"A1"}`))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(docs) != 1 || docs[0]["order_id"] != "A1" {
		t.Fatalf("docs=%v; want one A1 document", docs)
	}
}

func TestReadAll_Empty(t *testing.T) {
	docs, err := ReadAll(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("docs=%d; want 0", len(docs))
	}
}

func TestReadAll_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"scalar root", `42`},
		{"array with non-object element", `[{"order_id":"A1"}, 42]`},
		{"truncated array", `[{"order_id":"A1"},`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadAll(strings.NewReader(tc.in)); err == nil {
				t.Fatalf("ReadAll accepted %q", tc.in)
			}
		})
	}
}

// Numbers must survive as json.Number so money fields keep their exact
// source text until coercion.
func TestReadAll_PreservesNumbers(t *testing.T) {
	docs, err := ReadAll(strings.NewReader(`[{"order_id":"A1","order_total":21.10}]`))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	n, ok := docs[0]["order_total"].(interface{ String() string })
	if !ok {
		t.Fatalf("order_total decoded as %T; want json.Number", docs[0]["order_total"])
	}
	if n.String() != "21.10" {
		t.Fatalf("order_total=%s; want 21.10 verbatim", n.String())
	}
}
