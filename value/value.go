package value

import "errors"

// ErrFrozen is the panic value raised by mutating methods on frozen
// containers. Mutating frozen data is a programmer error, like writing to a
// nil map, so it panics rather than returning an error.
var ErrFrozen = errors.New("value: cannot mutate frozen container")

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
	KindOpaque
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindOpaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// Value is a dynamic value: one of Null, Bool, Int, Float, String, *Object,
// *Array, or Opaque. Tracking facades in the root package also implement
// Value (reporting KindObject or KindArray); everything else should treat
// the set of implementations as closed.
type Value interface {
	Kind() Kind
}

// Null is the absent value. Reading a missing object key yields Null.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// Bool is a boolean scalar.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Int is an integer scalar. Always int64.
type Int int64

func (Int) Kind() Kind { return KindInt }

// Float is a floating-point scalar.
type Float float64

func (Float) Kind() Kind { return KindFloat }

// String is a string scalar.
type String string

func (String) Kind() Kind { return KindString }

// Opaque wraps an arbitrary Go value as an untracked leaf. The engine never
// descends into it; comparison is Go equality when the wrapped type is
// comparable, otherwise always "changed".
type Opaque struct {
	V any
}

func (Opaque) Kind() Kind { return KindOpaque }

// Obj is the capability interface for object-shaped values. *Object
// implements it directly; tracking facades implement it with access
// recording. Mutating methods on facades and on frozen objects panic.
type Obj interface {
	Value

	// Get returns the value under key, or Null if absent.
	Get(key string) Value

	// Has reports whether key is present, including keys a future
	// prototype-like mechanism could contribute. For plain objects this is
	// the same check as HasOwn; facades record the two differently.
	Has(key string) bool

	// HasOwn reports whether key is an own key of the object.
	HasOwn(key string) bool

	// Keys returns the own keys in insertion order.
	Keys() []string

	// Len returns the number of own keys.
	Len() int

	// Set binds key to v, appending to key order when key is new.
	Set(key string, v Value)

	// Delete removes key. Removing an absent key is a no-op.
	Delete(key string)
}

// Arr is the capability interface for array-shaped values, mirroring Obj.
type Arr interface {
	Value

	// Index returns the element at i, or Null when out of range.
	Index(i int) Value

	// Len returns the element count.
	Len() int

	// SetIndex replaces the element at i. Panics when out of range.
	SetIndex(i int, v Value)

	// Append adds v at the end.
	Append(v Value)
}

// Object is a plain, insertion-ordered, string-keyed container. The zero
// value is not usable; construct with NewObject or ObjectOf. Objects are
// identified by pointer: two structurally equal objects are distinct
// Sources to the tracking engine.
type Object struct {
	keys    []string
	entries map[string]Value
	frozen  bool
}

// NewObject returns an empty mutable object.
func NewObject() *Object {
	return &Object{entries: make(map[string]Value)}
}

// Pair is a key/value pair for ObjectOf.
type Pair struct {
	Key string
	Val Value
}

// P builds a Pair.
func P(key string, v Value) Pair {
	return Pair{Key: key, Val: v}
}

// ObjectOf builds an object from pairs, preserving pair order as key order.
func ObjectOf(pairs ...Pair) *Object {
	obj := &Object{
		keys:    make([]string, 0, len(pairs)),
		entries: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		obj.Set(p.Key, p.Val)
	}
	return obj
}

func (*Object) Kind() Kind { return KindObject }

// Get returns the value under key, or Null if absent.
func (o *Object) Get(key string) Value {
	if v, ok := o.entries[key]; ok {
		return v
	}
	return Null{}
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.entries[key]
	return ok
}

// HasOwn reports whether key is an own key. Identical to Has for plain
// objects; kept separate so Obj consumers can express the distinction.
func (o *Object) HasOwn(key string) bool {
	_, ok := o.entries[key]
	return ok
}

// Keys returns the own keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of own keys.
func (o *Object) Len() int {
	return len(o.entries)
}

// Set binds key to v. New keys append to the key order; existing keys keep
// their position. Panics with ErrFrozen on a frozen object.
func (o *Object) Set(key string, v Value) {
	if o.frozen {
		panic(ErrFrozen)
	}
	if _, ok := o.entries[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = v
}

// Delete removes key and its position in the key order.
// Panics with ErrFrozen on a frozen object.
func (o *Object) Delete(key string) {
	if o.frozen {
		panic(ErrFrozen)
	}
	if _, ok := o.entries[key]; !ok {
		return
	}
	delete(o.entries, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Freeze makes the object immutable and returns it. Freezing is shallow and
// irreversible; nested values stay as they are.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

// Frozen reports whether the object is frozen.
func (o *Object) Frozen() bool {
	return o.frozen
}

// Array is a plain ordered container, identified by pointer like Object.
type Array struct {
	elems  []Value
	frozen bool
}

// NewArray returns an array holding elems.
func NewArray(elems ...Value) *Array {
	return &Array{elems: elems}
}

func (*Array) Kind() Kind { return KindArray }

// Index returns the element at i, or Null when i is out of range.
func (a *Array) Index(i int) Value {
	if i < 0 || i >= len(a.elems) {
		return Null{}
	}
	return a.elems[i]
}

// Len returns the element count.
func (a *Array) Len() int {
	return len(a.elems)
}

// SetIndex replaces the element at i. Panics with ErrFrozen on a frozen
// array and panics on out-of-range i.
func (a *Array) SetIndex(i int, v Value) {
	if a.frozen {
		panic(ErrFrozen)
	}
	a.elems[i] = v
}

// Append adds v at the end. Panics with ErrFrozen on a frozen array.
func (a *Array) Append(v Value) {
	if a.frozen {
		panic(ErrFrozen)
	}
	a.elems = append(a.elems, v)
}

// Freeze makes the array immutable and returns it. Shallow, irreversible.
func (a *Array) Freeze() *Array {
	a.frozen = true
	return a
}

// Frozen reports whether the array is frozen.
func (a *Array) Frozen() bool {
	return a.frozen
}

// Frozen reports whether v is a frozen container. Non-containers are never
// frozen.
func Frozen(v Value) bool {
	switch c := v.(type) {
	case *Object:
		return c.frozen
	case *Array:
		return c.frozen
	default:
		return false
	}
}

// CopyUnfrozen returns a shallow unfrozen copy of a container: same keys and
// element identities, fresh container identity, frozen flag cleared. Used
// for copy-on-write when a frozen container enters the tracking boundary.
// Non-containers are returned as-is.
func CopyUnfrozen(v Value) Value {
	switch c := v.(type) {
	case *Object:
		cp := &Object{
			keys:    make([]string, len(c.keys)),
			entries: make(map[string]Value, len(c.entries)),
		}
		copy(cp.keys, c.keys)
		for k, e := range c.entries {
			cp.entries[k] = e
		}
		return cp
	case *Array:
		cp := &Array{elems: make([]Value, len(c.elems))}
		copy(cp.elems, c.elems)
		return cp
	default:
		return v
	}
}

// SameKeySet reports whether a and b have exactly the same own keys,
// ignoring order and values.
func SameKeySet(a, b Obj) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.Keys() {
		if !b.HasOwn(k) {
			return false
		}
	}
	return true
}
