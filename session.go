package sneequals

import "github.com/indutny/sneequals/value"

// Session is one tracking session: it owns the facades it hands out and the
// touch ledger recording every access made through them. Sessions are not
// safe for concurrent use.
//
// The ledger and the facade cache are identity-keyed (container pointers)
// and non-owning in spirit: the session only observes application data, it
// never mutates it.
type Session struct {
	// ledger maps a Source to its touch entry.
	ledger map[value.Value]touch

	// facades maps a Source to the one facade wrapping it, so repeated
	// traversal into the same Source preserves reference equality.
	facades map[value.Value]value.Value

	// copies maps a frozen original to its unfrozen working copy. The copy
	// stands in as the Source for tracking and comparison.
	copies map[value.Value]value.Value

	revoked bool
}

// NewSession creates an empty tracking session.
func NewSession() *Session {
	return &Session{
		ledger:  make(map[value.Value]touch),
		facades: make(map[value.Value]value.Value),
		copies:  make(map[value.Value]value.Value),
	}
}

// sourced is implemented by tracking facades; it recovers the wrapped
// Source and the owning session. The back-reference is used for identity
// recovery only, never for mutation.
type sourced interface {
	trackedSource() value.Value
	owner() *Session
}

// Track wraps v in a tracking facade owned by this session. Scalars,
// opaque leaves, and anything else that is not a plain container pass
// through unchanged. Tracking the same Source twice returns the same
// facade. Frozen containers are replaced by an unfrozen shallow copy first
// (writes remain forbidden either way; the copy only lets the engine hand
// out tracked sub-values).
//
// Panics with *RevokedError after End.
func (s *Session) Track(v value.Value) value.Value {
	if s.revoked {
		panic(&RevokedError{Op: "track"})
	}
	if f, ok := v.(sourced); ok {
		if f.owner() == s {
			// Already one of ours; no duplicate interception layers.
			return v
		}
		// A facade from another session stands for its Source; wrapping it
		// directly would key this session's ledger by the foreign facade,
		// which comparison never resolves to.
		v = stripFacade(v)
	}
	switch v.Kind() {
	case value.KindObject, value.KindArray:
	default:
		return v
	}

	src := v
	if cp, ok := s.copies[src]; ok {
		src = cp
	} else if value.Frozen(src) {
		cp = value.CopyUnfrozen(src)
		s.copies[src] = cp
		src = cp
	}

	if f, ok := s.facades[src]; ok {
		return f
	}

	var f value.Value
	switch c := src.(type) {
	case value.Obj:
		f = &trackedObject{sess: s, src: c}
	case value.Arr:
		f = &trackedArray{sess: s, src: c}
	default:
		return v
	}
	s.facades[src] = f
	return f
}

// TrackAll is the batch form of Track over multiple roots sharing this
// session.
func (s *Session) TrackAll(vs ...value.Value) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = s.Track(v)
	}
	return out
}

// End revokes every facade this session produced. Idempotent. Any further
// access through a revoked facade panics with *RevokedError. The touch
// ledger survives, so IsChanged and AffectedPaths keep working.
func (s *Session) End() {
	s.revoked = true
	s.facades = nil
}

// Ended reports whether End has been called.
func (s *Session) Ended() bool {
	return s.revoked
}

// record returns the touchRecord for src, creating it lazily. Returns nil
// when the entry is terminal: bookkeeping is a no-op past that point.
func (s *Session) record(src value.Value) *touchRecord {
	switch t := s.ledger[src].(type) {
	case touchSelf:
		return nil
	case *touchRecord:
		return t
	default:
		rec := &touchRecord{}
		s.ledger[src] = rec
		return rec
	}
}

// markSelf transitions src's ledger entry to the terminal marker.
func (s *Session) markSelf(src value.Value) {
	s.ledger[src] = touchSelf{}
}

// resolve maps v to the Source this session knows it by: facades are
// stripped and frozen originals swap to their working copy. Values the
// session never saw come back unchanged.
func (s *Session) resolve(v value.Value) value.Value {
	for {
		if f, ok := v.(sourced); ok {
			v = f.trackedSource()
			continue
		}
		switch v.(type) {
		case *value.Object, *value.Array:
			if cp, ok := s.copies[v]; ok {
				v = cp
				continue
			}
		}
		return v
	}
}

// stripFacade unwinds facade layers from any session, returning the
// innermost Source. Unlike Session.resolve it does not consult the copies
// table.
func stripFacade(v value.Value) value.Value {
	for {
		f, ok := v.(sourced)
		if !ok {
			return v
		}
		v = f.trackedSource()
	}
}
