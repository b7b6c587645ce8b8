package sneequals

import (
	"strconv"
	"strings"

	"github.com/indutny/sneequals/value"
)

// AffectedPaths reports every access this session recorded under v, one
// path string per touch, rooted at "$":
//
//	$.user.name      value read (recursion bottomed out here)
//	$.items[0]       array element read
//	$#self           used whole by reference (terminal)
//	$.user#keys      full own-key enumeration
//	$.user#has:role  containment check of "role"
//	$.user#own:role  own-presence check of "role"
//
// Paths come out in insertion order of the underlying sets; no stability
// beyond that is guaranteed. Purely observational: calling this never
// affects caching or comparison.
func (s *Session) AffectedPaths(v value.Value) []string {
	out := []string{}
	visited := make(map[value.Value]bool)
	s.walkPaths(s.resolve(v), "$", visited, &out)
	return out
}

func (s *Session) walkPaths(v value.Value, path string, visited map[value.Value]bool, out *[]string) {
	switch v.(type) {
	case *value.Object, *value.Array:
	default:
		// Scalar leaf: the read that got us here is the touch.
		*out = append(*out, path)
		return
	}
	if visited[v] {
		return
	}
	visited[v] = true

	switch t := s.ledger[v].(type) {
	case touchSelf:
		*out = append(*out, path+"#self")
	case *touchRecord:
		if t.allOwnKeys {
			*out = append(*out, path+"#keys")
		} else {
			for _, k := range t.ownKeys.list() {
				*out = append(*out, path+"#own:"+k)
			}
		}
		for _, k := range t.hasKeys.list() {
			*out = append(*out, path+"#has:"+k)
		}
		for _, k := range t.keys.list() {
			s.walkPaths(s.resolve(rawGet(v, k)), path+pathSegment(v, k), visited, out)
		}
	default:
		// Container read but never entered.
		*out = append(*out, path)
	}
}

// pathSegment renders one key as a path component: dotted for
// identifier-like keys, bracketed indices for array element keys, quoted
// brackets otherwise.
func pathSegment(parent value.Value, key string) string {
	if _, ok := parent.(value.Arr); ok && key != lengthKey {
		return "[" + key + "]"
	}
	if isIdentifier(key) {
		return "." + key
	}
	if _, err := strconv.Atoi(key); err == nil {
		return "[" + key + "]"
	}
	return "[" + strconv.Quote(key) + "]"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// PathList joins affected paths into one newline-separated block, handy for
// diagnostics and golden files.
func PathList(paths []string) string {
	return strings.Join(paths, "\n")
}
