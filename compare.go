package sneequals

import (
	"math"
	"reflect"
	"strconv"

	"github.com/indutny/sneequals/value"
)

// IsChanged reports whether newCandidate differs from old over the accesses
// this session recorded. It is side-effect-free and repeatable, usable any
// time after Unwrap.
//
// Untouched data is assumed irrelevant: an object the session never read
// into compares as unchanged no matter what it contains. That is the core
// of the sneaky optimization, a deliberate policy rather than an oversight.
// The converse holds for a Source used whole by reference: distinct objects
// are never equivalent, however deeply identical.
func (s *Session) IsChanged(old, newCandidate value.Value) bool {
	return s.isChanged(s.resolve(old), s.resolve(newCandidate))
}

// IsEqual is the negation of IsChanged.
func (s *Session) IsEqual(old, newCandidate value.Value) bool {
	return !s.IsChanged(old, newCandidate)
}

func (s *Session) isChanged(old, next value.Value) bool {
	if old.Kind() != next.Kind() {
		// Degenerate comparison input; type mismatch is just "changed".
		return true
	}

	switch o := old.(type) {
	case value.Null:
		return false
	case value.Bool:
		return o != next.(value.Bool)
	case value.Int:
		return o != next.(value.Int)
	case value.Float:
		return !floatIdentical(float64(o), float64(next.(value.Float)))
	case value.String:
		return o != next.(value.String)
	case value.Opaque:
		return !opaqueIdentical(o, next.(value.Opaque))
	}

	// Containers from here on.
	if old == next {
		return false
	}

	switch t := s.ledger[old].(type) {
	case nil:
		// Never read into: untouched data compares as unchanged.
		return false
	case touchSelf:
		return true
	case *touchRecord:
		return s.recordChanged(t, old, next)
	default:
		return true
	}
}

func (s *Session) recordChanged(rec *touchRecord, old, next value.Value) bool {
	if rec.allOwnKeys {
		oldObj, okOld := old.(value.Obj)
		nextObj, okNext := next.(value.Obj)
		if !okOld || !okNext {
			return true
		}
		if !value.SameKeySet(oldObj, nextObj) {
			return true
		}
	} else {
		for _, k := range rec.ownKeys.list() {
			if rawHasOwn(old, k) != rawHasOwn(next, k) {
				return true
			}
		}
	}

	for _, k := range rec.hasKeys.list() {
		if rawHas(old, k) != rawHas(next, k) {
			return true
		}
	}

	for _, k := range rec.keys.list() {
		if s.isChanged(s.resolve(rawGet(old, k)), s.resolve(rawGet(next, k))) {
			return true
		}
	}

	return false
}

// rawGet reads a recorded key off a container without tracking. Array
// element keys are decimal strings and "length" maps to the length itself,
// matching how the facades record them.
func rawGet(v value.Value, key string) value.Value {
	switch c := v.(type) {
	case value.Obj:
		return c.Get(key)
	case value.Arr:
		if key == lengthKey {
			return value.Int(c.Len())
		}
		if i, err := strconv.Atoi(key); err == nil {
			return c.Index(i)
		}
		return value.Null{}
	default:
		return value.Null{}
	}
}

func rawHas(v value.Value, key string) bool {
	switch c := v.(type) {
	case value.Obj:
		return c.Has(key)
	case value.Arr:
		return arrayHasKey(c, key)
	default:
		return false
	}
}

func rawHasOwn(v value.Value, key string) bool {
	switch c := v.(type) {
	case value.Obj:
		return c.HasOwn(key)
	case value.Arr:
		return arrayHasKey(c, key)
	default:
		return false
	}
}

func arrayHasKey(a value.Arr, key string) bool {
	if key == lengthKey {
		return true
	}
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0 && i < a.Len()
}

// floatIdentical treats NaN as identical to NaN, so a recorded NaN read
// does not invalidate forever.
func floatIdentical(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// opaqueIdentical compares opaque leaves by Go equality when both payloads
// are comparable; anything else is conservatively "changed".
func opaqueIdentical(a, b value.Opaque) bool {
	if a.V == nil || b.V == nil {
		return a.V == nil && b.V == nil
	}
	ta, tb := reflect.TypeOf(a.V), reflect.TypeOf(b.V)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a.V == b.V
}
