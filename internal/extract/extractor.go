// Package extract implements the single-pass traversal that flattens a value
// tree into facts. The extractor assigns each visited node a fresh element id
// and calls out to a fact.Backend to materialize the facts; it holds no fact
// state of its own.
package extract

import (
	"math"

	"github.com/agentic-research/edb/internal/fact"
	"github.com/agentic-research/edb/internal/value"
)

// Extractor walks values and emits facts. One extractor serves one session;
// element ids keep increasing across multiple Extract calls so independent
// inputs never collide. Not safe for concurrent use.
type Extractor struct {
	backend fact.Backend
	next    fact.ElemID

	// id of the most recently completed node; read by the parent frame
	// right after a child's Accept returns.
	last fact.ElemID
}

// New returns an extractor that writes facts to backend. Ids start at 1.
func New(backend fact.Backend) *Extractor {
	return &Extractor{backend: backend, next: 1}
}

// Extract walks v and returns the element id assigned to its root.
// Ids are assigned in pre-order: a parent's id is lower than every
// descendant's id, and the whole sequence is strictly increasing.
//
// On error the session is poisoned: facts already handed to the backend stay
// put, and the caller should discard the backend's output.
func (e *Extractor) Extract(v value.Value) (fact.ElemID, error) {
	if err := v.Accept(e); err != nil {
		return 0, err
	}
	return e.last, nil
}

// ExtractRoot extracts v and records it as the root element of the input
// identified by source. Callers processing several inputs into one session
// must supply a distinct source index per input.
func (e *Extractor) ExtractRoot(source int, v value.Value) (fact.ElemID, error) {
	id, err := e.Extract(v)
	if err != nil {
		return 0, err
	}
	if err := e.backend.AddRoot(source, id); err != nil {
		return 0, err
	}
	return id, nil
}

// begin allocates the next element id and registers its kind.
func (e *Extractor) begin(kind fact.Kind) (fact.ElemID, error) {
	id := e.next
	if err := e.backend.AddElem(id, kind); err != nil {
		return 0, err
	}
	e.next++
	return id, nil
}

// child extracts a nested value and returns its id.
func (e *Extractor) child(v value.Value) (fact.ElemID, error) {
	if err := v.Accept(e); err != nil {
		return 0, err
	}
	return e.last, nil
}

func (e *Extractor) scalar(kind fact.Kind, emit func(fact.ElemID) error) error {
	id, err := e.begin(kind)
	if err != nil {
		return err
	}
	if err := emit(id); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitBool(v bool) error {
	return e.scalar(fact.KindBool, func(id fact.ElemID) error {
		return e.backend.AddBool(id, v)
	})
}

func (e *Extractor) VisitInt8(v int8) error   { return e.number(fact.KindI8, int64(v)) }
func (e *Extractor) VisitInt16(v int16) error { return e.number(fact.KindI16, int64(v)) }
func (e *Extractor) VisitInt32(v int32) error { return e.number(fact.KindI32, int64(v)) }
func (e *Extractor) VisitInt64(v int64) error { return e.number(fact.KindI64, v) }

func (e *Extractor) VisitUint8(v uint8) error   { return e.number(fact.KindU8, int64(v)) }
func (e *Extractor) VisitUint16(v uint16) error { return e.number(fact.KindU16, int64(v)) }
func (e *Extractor) VisitUint32(v uint32) error { return e.number(fact.KindU32, int64(v)) }

// VisitUint64 canonicalizes to the signed 64-bit representation used by
// number facts. Values beyond MaxInt64 fail instead of wrapping; the type
// fact for the element is already recorded, but no payload fact is.
func (e *Extractor) VisitUint64(v uint64) error {
	id, err := e.begin(fact.KindU64)
	if err != nil {
		return err
	}
	if v > math.MaxInt64 {
		return &fact.OverflowError{Elem: id, Value: v}
	}
	if err := e.backend.AddNumber(id, int64(v)); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) number(kind fact.Kind, v int64) error {
	return e.scalar(kind, func(id fact.ElemID) error {
		return e.backend.AddNumber(id, v)
	})
}

func (e *Extractor) VisitFloat32(v float32) error {
	return e.scalar(fact.KindF32, func(id fact.ElemID) error {
		return e.backend.AddFloat(id, float64(v))
	})
}

func (e *Extractor) VisitFloat64(v float64) error {
	return e.scalar(fact.KindF64, func(id fact.ElemID) error {
		return e.backend.AddFloat(id, v)
	})
}

func (e *Extractor) VisitChar(v rune) error {
	return e.scalar(fact.KindChar, func(id fact.ElemID) error {
		return e.backend.AddString(id, string(v))
	})
}

func (e *Extractor) VisitString(v string) error {
	return e.scalar(fact.KindStr, func(id fact.ElemID) error {
		return e.backend.AddString(id, v)
	})
}

func (e *Extractor) VisitBytes(v []byte) error {
	return e.scalar(fact.KindBytes, func(id fact.ElemID) error {
		return e.backend.AddBytes(id, v)
	})
}

func (e *Extractor) VisitUnit() error {
	id, err := e.begin(fact.KindUnit)
	if err != nil {
		return err
	}
	e.last = id
	return nil
}

// Options are encoded as enum variants of type "Option": None is the unit
// variant at index 0, Some the newtype variant at index 1.
func (e *Extractor) VisitNone() error {
	return e.VisitUnitVariant("Option", "None", 0)
}

func (e *Extractor) VisitSome(v value.Value) error {
	return e.VisitNewtypeVariant("Option", "Some", 1, v)
}

func (e *Extractor) VisitUnitStruct(name string) error {
	id, err := e.begin(fact.KindUnitStruct)
	if err != nil {
		return err
	}
	if err := e.backend.AddStructType(id, name, nil); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitNewtypeStruct(name string, v value.Value) error {
	id, err := e.begin(fact.KindNewtypeStruct)
	if err != nil {
		return err
	}
	child, err := e.child(v)
	if err != nil {
		return err
	}
	if err := e.backend.AddTupleEntry(id, 0, child); err != nil {
		return err
	}
	if err := e.backend.AddStructType(id, name, nil); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitTupleStruct(name string, items []value.Value) error {
	id, err := e.tupleLike(fact.KindTupleStruct, items)
	if err != nil {
		return err
	}
	if err := e.backend.AddStructType(id, name, nil); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitStruct(name string, fields []value.Field) error {
	id, err := e.structLike(fact.KindStruct, fields)
	if err != nil {
		return err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	if err := e.backend.AddStructType(id, name, names); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitSeq(items []value.Value) error {
	id, err := e.begin(fact.KindSeq)
	if err != nil {
		return err
	}
	for pos, item := range items {
		child, err := e.child(item)
		if err != nil {
			return err
		}
		if err := e.backend.AddSeqEntry(id, pos, child); err != nil {
			return err
		}
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitTuple(items []value.Value) error {
	id, err := e.tupleLike(fact.KindTuple, items)
	if err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitMap(entries []value.MapEntry) error {
	id, err := e.begin(fact.KindMap)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		key, err := e.child(entry.Key)
		if err != nil {
			return err
		}
		val, err := e.child(entry.Value)
		if err != nil {
			return err
		}
		if err := e.backend.AddMapEntry(id, key, val); err != nil {
			return err
		}
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitUnitVariant(name, variant string, idx int) error {
	id, err := e.begin(fact.KindUnitVariant)
	if err != nil {
		return err
	}
	if err := e.backend.AddVariantType(id, name, variant, idx); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitNewtypeVariant(name, variant string, idx int, v value.Value) error {
	id, err := e.begin(fact.KindNewtypeVariant)
	if err != nil {
		return err
	}
	child, err := e.child(v)
	if err != nil {
		return err
	}
	if err := e.backend.AddTupleEntry(id, 0, child); err != nil {
		return err
	}
	if err := e.backend.AddVariantType(id, name, variant, idx); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitTupleVariant(name, variant string, idx int, items []value.Value) error {
	id, err := e.tupleLike(fact.KindTupleVariant, items)
	if err != nil {
		return err
	}
	if err := e.backend.AddVariantType(id, name, variant, idx); err != nil {
		return err
	}
	e.last = id
	return nil
}

func (e *Extractor) VisitStructVariant(name, variant string, idx int, fields []value.Field) error {
	id, err := e.structLike(fact.KindStructVariant, fields)
	if err != nil {
		return err
	}
	if err := e.backend.AddVariantType(id, name, variant, idx); err != nil {
		return err
	}
	e.last = id
	return nil
}

// tupleLike emits the element and its positional tuple links.
func (e *Extractor) tupleLike(kind fact.Kind, items []value.Value) (fact.ElemID, error) {
	id, err := e.begin(kind)
	if err != nil {
		return 0, err
	}
	for pos, item := range items {
		child, err := e.child(item)
		if err != nil {
			return 0, err
		}
		if err := e.backend.AddTupleEntry(id, pos, child); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// structLike emits the element and its named field links.
func (e *Extractor) structLike(kind fact.Kind, fields []value.Field) (fact.ElemID, error) {
	id, err := e.begin(kind)
	if err != nil {
		return 0, err
	}
	for _, f := range fields {
		child, err := e.child(f.Value)
		if err != nil {
			return 0, err
		}
		if err := e.backend.AddStructEntry(id, f.Name, child); err != nil {
			return 0, err
		}
	}
	return id, nil
}

var _ value.Visitor = (*Extractor)(nil)
