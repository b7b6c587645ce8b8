// Package sneequals implements fine-grained, path-level dependency tracking
// over nested value graphs, and the "sneaky" structural equality built on
// it: only the sub-properties a computation actually read are compared on
// the next candidate input.
//
// Typical flow:
//
//	s := sneequals.NewSession()
//	tracked := s.Track(input)
//	derived := compute(tracked.(value.Obj)) // reads are recorded
//	derived = s.Unwrap(derived)
//	s.End()
//
//	s.IsChanged(input, nextInput) // consults only the recorded reads
//
// Memoize composes the pieces into a last-value selector cache.
//
// Sessions are single-threaded: the engine assumes exclusive access to the
// tracked graph while a session is open, and treats it as immutable input.
// Multiple independent sessions may coexist and nest.
package sneequals
