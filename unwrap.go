package sneequals

import (
	"strconv"

	"github.com/indutny/sneequals/value"
)

// Unwrap walks a derived result, replacing nested facades with their
// underlying Sources and finalizing the ledger. Call it exactly once per
// derived value, after all reads are done.
//
// A facade found in the result means its Source was used whole, by
// reference: that Source's ledger entry goes terminal, so any structural
// difference in it registers as a change. Fresh containers produced by the
// derivation are walked recursively; fields whose identity changes while
// unwrapping are recorded on the fresh parent's own touch record, so the
// result composes correctly when fed into another session.
//
// Panics with *RevokedError after End.
func (s *Session) Unwrap(result value.Value) value.Value {
	if s.revoked {
		panic(&RevokedError{Op: "unwrap"})
	}
	// The visited set is scoped to this call: a self-referential derived
	// structure is entered once and finalized by whichever caller entered
	// it first.
	visited := make(map[value.Value]bool)
	return s.unwrap(result, visited)
}

func (s *Session) unwrap(v value.Value, visited map[value.Value]bool) value.Value {
	if f, ok := v.(sourced); ok {
		src := f.trackedSource()
		f.owner().markSelf(src)
		return src
	}

	switch c := v.(type) {
	case *value.Object:
		if visited[v] {
			return v
		}
		visited[v] = true

		out := c
		for _, k := range c.Keys() {
			child := c.Get(k)
			u := s.unwrap(child, visited)
			if !identityChanged(child, u) {
				continue
			}
			if out == c && c.Frozen() {
				// Fresh result froze itself; swap in an unfrozen copy so
				// the facade can be stripped out of it.
				out = value.CopyUnfrozen(c).(*value.Object)
				visited[value.Value(out)] = true
			}
			out.Set(k, u)
			if rec := s.record(value.Value(out)); rec != nil {
				rec.keys.add(k)
			}
		}
		return out

	case *value.Array:
		if visited[v] {
			return v
		}
		visited[v] = true

		out := c
		for i := 0; i < c.Len(); i++ {
			child := c.Index(i)
			u := s.unwrap(child, visited)
			if !identityChanged(child, u) {
				continue
			}
			if out == c && c.Frozen() {
				out = value.CopyUnfrozen(c).(*value.Array)
				visited[value.Value(out)] = true
			}
			out.SetIndex(i, u)
			if rec := s.record(value.Value(out)); rec != nil {
				rec.keys.add(strconv.Itoa(i))
			}
		}
		return out

	default:
		return v
	}
}

// identityChanged reports whether unwrapping replaced a container. Only
// containers and facades can change identity; comparing them is pointer
// comparison, which keeps incomparable Opaque payloads out of ==.
func identityChanged(before, after value.Value) bool {
	switch before.(type) {
	case *value.Object, *value.Array:
		return before != after
	default:
		if _, ok := before.(sourced); ok {
			return before != after
		}
		return false
	}
}
