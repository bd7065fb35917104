// Raw document reading for batch inputs.
//
// The upstream contract is one JSON array of order objects per monthly
// file, but exports occasionally arrive as NDJSON (one object per line),
// so both shapes are accepted:
//
//	[{"order_id":"A1",...},{"order_id":"A2",...}]
//
//	{"order_id":"A1",...}
//	{"order_id":"A2",...}
package order

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Decoder reads raw order documents one object at a time from a stream.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder constructs a streaming Decoder. Numbers are decoded as
// json.Number so identifier and money fields keep their exact source form.
func NewDecoder(r io.Reader) *Decoder {
	d := json.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d}
}

// Next reads the next top-level JSON object as a raw document. Non-object
// values in the stream are skipped to be robust to junk lines. EOF is
// returned when the stream is exhausted.
func (d *Decoder) Next() (map[string]any, error) {
	for {
		var raw any
		if err := d.dec.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("raw order decode: %w", err)
		}

		if m, ok := raw.(map[string]any); ok {
			return m, nil
		}
	}
}

// ReadAll reads an entire batch input: a single top-level JSON array of
// objects, a single object, or NDJSON. Any trailing NDJSON content after
// the first top-level value is consumed as well.
func ReadAll(r io.Reader) ([]map[string]any, error) {
	d := json.NewDecoder(r)
	d.UseNumber()

	var out []map[string]any

	var root any
	if err := d.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("raw order decode root: %w", err)
	}

	switch v := root.(type) {
	case map[string]any:
		out = append(out, v)

	case []any:
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("raw order decode: element %d in array is not an object", i)
			}
			out = append(out, obj)
		}

	default:
		return nil, fmt.Errorf("raw order decode: unsupported top-level JSON type %T", v)
	}

	dec := NewDecoder(io.MultiReader(d.Buffered(), r))
	for {
		m, err := dec.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		out = append(out, m)
	}

	return out, nil
}
