package sneequals

// touch is the per-Source ledger entry: either a field-level touchRecord or
// the terminal touchSelf marker. A Source has exactly one entry at a time;
// transitioning to touchSelf discards field-level detail.
type touch interface {
	isTouch()
}

// touchSelf marks a Source that was used whole, by reference, in a derived
// result. Once terminal, any structural difference at all counts as a
// change, so finer-grained records are superseded.
type touchSelf struct{}

func (touchSelf) isTouch() {}

// touchRecord accumulates the access modes observed on one Source.
type touchRecord struct {
	// keys holds keys whose value was read. The comparator recurses into
	// these. Array element reads use decimal index keys; length reads use
	// "length".
	keys keySet

	// hasKeys holds keys checked for containment, independent of any read.
	hasKeys keySet

	// ownKeys holds keys checked for own presence. Ignored once allOwnKeys
	// is set.
	ownKeys keySet

	// allOwnKeys records that the full own-key enumeration was observed.
	// The comparator then checks key-set equality instead of individual
	// presence.
	allOwnKeys bool
}

func (*touchRecord) isTouch() {}

// keySet is an insertion-ordered string set. Order backs the path-reporting
// output; it carries no semantic weight in comparison.
type keySet struct {
	order []string
	seen  map[string]struct{}
}

func (s *keySet) add(k string) {
	if _, ok := s.seen[k]; ok {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[k] = struct{}{}
	s.order = append(s.order, k)
}

func (s *keySet) list() []string {
	return s.order
}

func (s *keySet) len() int {
	return len(s.order)
}
