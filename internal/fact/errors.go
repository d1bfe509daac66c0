package fact

import "fmt"

// OverflowError reports an unsigned integer whose magnitude does not fit in
// the signed 64-bit representation used by number facts. The extraction
// session is aborted; no number fact is recorded for the element.
type OverflowError struct {
	Elem  ElemID
	Value uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("element %d: unsigned value %d overflows signed 64-bit range", e.Elem, e.Value)
}

// NonStringKeyError reports a map key that has no string payload while the
// string-key schema variant is in effect.
type NonStringKeyError struct {
	Map ElemID
	Key ElemID
}

func (e *NonStringKeyError) Error() string {
	return fmt.Sprintf("map %d: key element %d is not a string, but the string-key schema was requested", e.Map, e.Key)
}

// UnsupportedError reports a value kind the backend cannot materialize,
// e.g. floating point values in the Souffle schema.
type UnsupportedError struct {
	Elem ElemID
	Kind Kind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("element %d: backend does not support %s values", e.Elem, e.Kind)
}
