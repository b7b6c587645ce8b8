package sneequals

import (
	"strconv"

	"github.com/indutny/sneequals/value"
)

// lengthKey is the ledger key recording that an array's length was read.
const lengthKey = "length"

// trackedObject is the interception wrapper for object-shaped Sources. It
// implements value.Obj: reads update the touch ledger and return tracked
// sub-values; mutations are rejected.
type trackedObject struct {
	sess *Session
	src  value.Obj
}

func (*trackedObject) Kind() value.Kind { return value.KindObject }

func (t *trackedObject) trackedSource() value.Value { return t.src }
func (t *trackedObject) owner() *Session            { return t.sess }

func (t *trackedObject) check(op string) {
	if t.sess.revoked {
		panic(&RevokedError{Op: op})
	}
}

// Get records a value read of key and returns the tracked sub-value. Deep
// chains are tracked transitively, one level per actual access.
func (t *trackedObject) Get(key string) value.Value {
	t.check("get")
	if rec := t.sess.record(value.Value(t.src)); rec != nil {
		rec.keys.add(key)
	}
	return t.sess.Track(t.src.Get(key))
}

// Has records a containment check of key. It does not track the value.
func (t *trackedObject) Has(key string) bool {
	t.check("has")
	if rec := t.sess.record(value.Value(t.src)); rec != nil {
		rec.hasKeys.add(key)
	}
	return t.src.Has(key)
}

// HasOwn records an own-presence check of key, unless the record is already
// in full-enumeration mode.
func (t *trackedObject) HasOwn(key string) bool {
	t.check("has-own")
	if rec := t.sess.record(value.Value(t.src)); rec != nil && !rec.allOwnKeys {
		rec.ownKeys.add(key)
	}
	return t.src.HasOwn(key)
}

// Keys records a full own-key enumeration. Comparison then requires exact
// key-set equality; values of keys not otherwise read stay free.
func (t *trackedObject) Keys() []string {
	t.check("keys")
	if rec := t.sess.record(value.Value(t.src)); rec != nil {
		rec.allOwnKeys = true
	}
	return t.src.Keys()
}

// Len reveals the own-key count, which is key-set information, so it is
// recorded as a full enumeration.
func (t *trackedObject) Len() int {
	t.check("len")
	if rec := t.sess.record(value.Value(t.src)); rec != nil {
		rec.allOwnKeys = true
	}
	return t.src.Len()
}

// Set always panics with *ReadOnlyError, session state notwithstanding.
func (t *trackedObject) Set(key string, _ value.Value) {
	panic(&ReadOnlyError{Op: "set", Key: key})
}

// Delete always panics with *ReadOnlyError.
func (t *trackedObject) Delete(key string) {
	panic(&ReadOnlyError{Op: "delete", Key: key})
}

// trackedArray is the interception wrapper for array Sources. Element reads
// are recorded under decimal index keys, length reads under "length", so
// the comparator and path reporter share one key vocabulary with objects.
type trackedArray struct {
	sess *Session
	src  value.Arr
}

func (*trackedArray) Kind() value.Kind { return value.KindArray }

func (t *trackedArray) trackedSource() value.Value { return t.src }
func (t *trackedArray) owner() *Session            { return t.sess }

func (t *trackedArray) check(op string) {
	if t.sess.revoked {
		panic(&RevokedError{Op: op})
	}
}

// Index records a value read of element i and returns it tracked.
func (t *trackedArray) Index(i int) value.Value {
	t.check("index")
	if rec := t.sess.record(value.Value(t.src)); rec != nil {
		rec.keys.add(strconv.Itoa(i))
	}
	return t.sess.Track(t.src.Index(i))
}

// Len records a length read.
func (t *trackedArray) Len() int {
	t.check("len")
	if rec := t.sess.record(value.Value(t.src)); rec != nil {
		rec.keys.add(lengthKey)
	}
	return t.src.Len()
}

// SetIndex always panics with *ReadOnlyError.
func (t *trackedArray) SetIndex(i int, _ value.Value) {
	panic(&ReadOnlyError{Op: "set-index", Key: strconv.Itoa(i)})
}

// Append always panics with *ReadOnlyError.
func (t *trackedArray) Append(value.Value) {
	panic(&ReadOnlyError{Op: "append"})
}
