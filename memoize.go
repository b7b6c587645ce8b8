package sneequals

import "github.com/indutny/sneequals/value"

// Func is a derived-value function over tracked arguments. For memoization
// to be correct it must be pure: a function of its arguments only, no
// hidden external reads.
type Func func(args ...value.Value) value.Value

// MemoOption configures Memoize.
type MemoOption func(*memoConfig)

type memoConfig struct {
	keyed  bool
	onHit  func()
	onMiss func(s *Session, args, prev []value.Value)
}

// WithKeyedCache keys cache entries by the identity of the first container
// argument instead of keeping a single last-call slot. One result is
// retained per key; it is still a last-value cache, not an LRU.
func WithKeyedCache() MemoOption {
	return func(c *memoConfig) { c.keyed = true }
}

// WithOnHit installs an observer invoked on every cache hit. Observers are
// instrumentation side channels and never affect cache semantics.
func WithOnHit(fn func()) MemoOption {
	return func(c *memoConfig) { c.onHit = fn }
}

// WithOnMiss installs an observer invoked on every cache miss with the new
// session, the resolved arguments, and the previous entry's arguments (nil
// on the first call).
func WithOnMiss(fn func(s *Session, args, prev []value.Value)) MemoOption {
	return func(c *memoConfig) { c.onMiss = fn }
}

type memoEntry struct {
	session *Session
	sources []value.Value
	result  value.Value
}

// Memoize wraps fn in a sneaky-equality cache. Each call resolves the
// arguments to their Sources; if the matched entry's session reports no
// change for every positional argument, the cached result is returned
// without invoking fn. Otherwise fn runs against fresh tracked facades, its
// result is unwrapped, and the entry is replaced — ending the replaced
// entry's tracking session.
//
// The returned function is not safe for concurrent use, like everything
// else here.
func Memoize(fn Func, opts ...MemoOption) Func {
	var cfg memoConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var slot *memoEntry
	var keyedEntries map[value.Value]*memoEntry
	if cfg.keyed {
		keyedEntries = make(map[value.Value]*memoEntry)
	}

	return func(args ...value.Value) value.Value {
		sources := make([]value.Value, len(args))
		for i, a := range args {
			sources[i] = stripFacade(a)
		}

		key, hasKey := memoKey(cfg, sources)
		var entry *memoEntry
		if cfg.keyed && hasKey {
			entry = keyedEntries[key]
		} else {
			// Keyed mode without a container key shares the single slot.
			entry = slot
		}

		if entry != nil && unchangedArgs(entry, sources) {
			if cfg.onHit != nil {
				cfg.onHit()
			}
			return entry.result
		}

		s := NewSession()
		tracked := make([]value.Value, len(sources))
		for i, src := range sources {
			tracked[i] = s.Track(src)
		}
		result := s.Unwrap(fn(tracked...))

		resolved := make([]value.Value, len(sources))
		for i, src := range sources {
			resolved[i] = s.resolve(src)
		}

		var prev []value.Value
		if entry != nil {
			prev = entry.sources
			entry.session.End()
		}

		next := &memoEntry{session: s, sources: resolved, result: result}
		if cfg.keyed {
			if hasKey {
				keyedEntries[key] = next
			} else {
				slot = next
			}
		} else {
			slot = next
		}

		if cfg.onMiss != nil {
			cfg.onMiss(s, resolved, prev)
		}
		return result
	}
}

// memoKey picks the keyed-cache key: the first argument, when it is a
// container (identity-keyed). Scalar-only calls fall back to the single
// slot even in keyed mode.
func memoKey(cfg memoConfig, sources []value.Value) (value.Value, bool) {
	if !cfg.keyed || len(sources) == 0 {
		return nil, false
	}
	switch sources[0].(type) {
	case *value.Object, *value.Array:
		return sources[0], true
	default:
		return nil, false
	}
}

func unchangedArgs(entry *memoEntry, sources []value.Value) bool {
	if len(entry.sources) != len(sources) {
		return false
	}
	for i, src := range sources {
		if entry.session.IsChanged(entry.sources[i], src) {
			return false
		}
	}
	return true
}
