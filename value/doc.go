// Package value provides the dynamic value model the tracking engine
// operates on.
//
// Go has no field-access trap, so consumers reach into nested data through
// an explicit capability API: the Obj and Arr interfaces. Plain containers
// (*Object, *Array) implement them directly; the tracking facades in the
// root package implement the same interfaces and record every access. Code
// written against Obj/Arr works identically on tracked and untracked data.
//
// Only *Object and *Array participate in tracking. Scalars pass through the
// tracking boundary unchanged, and Opaque wraps any other Go value as an
// untracked leaf.
package value
