package order

import "fmt"

// MalformedRecordError reports a raw document that failed decoding: a
// required field is absent or has the wrong shape (e.g. items is not a
// sequence, customer is not an object).
//
// Ref identifies the offending document: the order_id when one could be
// read from the raw map, otherwise the document's zero-based position in
// the batch rendered as "#<n>".
type MalformedRecordError struct {
	Ref    string
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: field %q: %s", e.Ref, e.Field, e.Reason)
}
