// Package selector compiles read-spec strings into executable read plans
// over a tracked value graph. It is the CLI's stand-in for an application's
// derived-value function: each spec describes one access the derivation
// performs, and executing the plan through a tracking facade records
// exactly those accesses.
//
// Grammar, one spec per string:
//
//	user.name          read the value at the path
//	items[2].id        array index read
//	items[*]           iterate the array (length + every element)
//	user.*             enumerate own keys
//	user.role?         containment check of "role"
//	user.role?own      own-presence check of "role"
//	user["odd key"]    quoted key segment
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/indutny/sneequals/value"
)

// Op is the terminal operation of a compiled spec.
type Op int

const (
	// OpRead places the value at the path into the derived result.
	OpRead Op = iota
	// OpHas places the containment-check result for the final key.
	OpHas
	// OpHasOwn places the own-presence-check result for the final key.
	OpHasOwn
	// OpKeys places the full own-key enumeration of the path.
	OpKeys
	// OpEach places every element of the array at the path.
	OpEach
)

// Step is one navigation segment: an object key or an array index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Spec is a compiled read spec.
type Spec struct {
	// Raw is the original spec string; it keys the derived result.
	Raw string

	// Steps navigate from the root to the operand of Op. For OpHas and
	// OpHasOwn the final key is carried in Key instead, since the check
	// happens on the parent.
	Steps []Step

	// Key is the checked key for OpHas/OpHasOwn.
	Key string

	Op Op
}

// ParseError reports a malformed read spec.
type ParseError struct {
	Spec    string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("read spec %q at %d: %s", e.Spec, e.Pos, e.Message)
}

// ExecError reports a read plan that does not fit the document shape.
type ExecError struct {
	Spec    string
	Path    string
	Message string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("read spec %q: %s: %s", e.Spec, e.Path, e.Message)
}

// Compile parses every spec string, failing on the first malformed one.
func Compile(raw []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(raw))
	for _, r := range raw {
		s, err := parse(r)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func parse(raw string) (Spec, error) {
	spec := Spec{Raw: raw, Op: OpRead}
	s := raw

	// Trailing presence markers.
	if strings.HasSuffix(s, "?own") {
		spec.Op = OpHasOwn
		s = strings.TrimSuffix(s, "?own")
	} else if strings.HasSuffix(s, "?") {
		spec.Op = OpHas
		s = strings.TrimSuffix(s, "?")
	}

	p := &parser{spec: raw, src: s}
	steps, trailer, err := p.steps()
	if err != nil {
		return Spec{}, err
	}

	switch trailer {
	case trailerNone:
	case trailerStar:
		if spec.Op != OpRead {
			return Spec{}, &ParseError{Spec: raw, Pos: len(s), Message: "cannot combine .* with a presence marker"}
		}
		spec.Op = OpKeys
	case trailerEach:
		if spec.Op != OpRead {
			return Spec{}, &ParseError{Spec: raw, Pos: len(s), Message: "cannot combine [*] with a presence marker"}
		}
		spec.Op = OpEach
	}

	if spec.Op == OpHas || spec.Op == OpHasOwn {
		if len(steps) == 0 || steps[len(steps)-1].IsIndex {
			return Spec{}, &ParseError{Spec: raw, Pos: len(s), Message: "presence marker requires a trailing key segment"}
		}
		spec.Key = steps[len(steps)-1].Key
		steps = steps[:len(steps)-1]
	}
	if len(steps) == 0 && spec.Op == OpRead {
		return Spec{}, &ParseError{Spec: raw, Pos: 0, Message: "empty spec"}
	}

	spec.Steps = steps
	return spec, nil
}

type trailerKind int

const (
	trailerNone trailerKind = iota
	trailerStar
	trailerEach
)

type parser struct {
	spec string
	src  string
	pos  int
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Spec: p.spec, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) steps() ([]Step, trailerKind, error) {
	var steps []Step
	first := true
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == '.':
			p.pos++
			if p.pos < len(p.src) && p.src[p.pos] == '*' {
				p.pos++
				if p.pos != len(p.src) {
					return nil, trailerNone, p.errf(".* must end the spec")
				}
				return steps, trailerStar, nil
			}
			key, err := p.ident()
			if err != nil {
				return nil, trailerNone, err
			}
			steps = append(steps, Step{Key: key})
		case c == '[':
			step, each, err := p.bracket()
			if err != nil {
				return nil, trailerNone, err
			}
			if each {
				if p.pos != len(p.src) {
					return nil, trailerNone, p.errf("[*] must end the spec")
				}
				return steps, trailerEach, nil
			}
			steps = append(steps, step)
		case first:
			key, err := p.ident()
			if err != nil {
				return nil, trailerNone, err
			}
			steps = append(steps, Step{Key: key})
		default:
			return nil, trailerNone, p.errf("unexpected character %q", c)
		}
		first = false
	}
	return steps, trailerNone, nil
}

func (p *parser) ident() (string, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' || c == '[' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("expected key segment")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) bracket() (Step, bool, error) {
	p.pos++ // consume '['
	if p.pos >= len(p.src) {
		return Step{}, false, p.errf("unterminated bracket")
	}
	if p.src[p.pos] == '*' {
		p.pos++
		if p.pos >= len(p.src) || p.src[p.pos] != ']' {
			return Step{}, false, p.errf("expected ] after *")
		}
		p.pos++
		return Step{}, true, nil
	}
	if p.src[p.pos] == '"' {
		rest := p.src[p.pos:]
		key, err := strconv.Unquote(quotedPrefix(rest))
		if err != nil {
			return Step{}, false, p.errf("bad quoted key: %v", err)
		}
		p.pos += len(quotedPrefix(rest))
		if p.pos >= len(p.src) || p.src[p.pos] != ']' {
			return Step{}, false, p.errf("expected ] after quoted key")
		}
		p.pos++
		return Step{Key: key}, false, nil
	}
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return Step{}, false, p.errf("unterminated bracket")
	}
	digits := p.src[p.pos : p.pos+end]
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 {
		return Step{}, false, p.errf("bad array index %q", digits)
	}
	p.pos += end + 1
	return Step{Index: idx, IsIndex: true}, false, nil
}

// quotedPrefix returns the leading Go-quoted string of s, including quotes.
// A quote is closing only when preceded by an even run of backslashes, so
// keys ending in an escaped backslash terminate correctly.
func quotedPrefix(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		backslashes := 0
		for j := i - 1; j > 0 && s[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return s[:i+1]
		}
	}
	return s
}

// Execute runs compiled specs against a (typically tracked) root and
// collects the derived result, keyed by raw spec string.
func Execute(root value.Value, specs []Spec) (*value.Object, error) {
	result := value.NewObject()
	for _, spec := range specs {
		v, err := execute(root, spec)
		if err != nil {
			return nil, err
		}
		result.Set(spec.Raw, v)
	}
	return result, nil
}

func execute(root value.Value, spec Spec) (value.Value, error) {
	cur := root
	path := "$"
	for _, step := range spec.Steps {
		var err error
		cur, path, err = navigate(cur, path, step, spec.Raw)
		if err != nil {
			return nil, err
		}
	}

	switch spec.Op {
	case OpRead:
		return cur, nil
	case OpHas:
		obj, ok := cur.(value.Obj)
		if !ok {
			return nil, &ExecError{Spec: spec.Raw, Path: path, Message: "not an object"}
		}
		return value.Bool(obj.Has(spec.Key)), nil
	case OpHasOwn:
		obj, ok := cur.(value.Obj)
		if !ok {
			return nil, &ExecError{Spec: spec.Raw, Path: path, Message: "not an object"}
		}
		return value.Bool(obj.HasOwn(spec.Key)), nil
	case OpKeys:
		obj, ok := cur.(value.Obj)
		if !ok {
			return nil, &ExecError{Spec: spec.Raw, Path: path, Message: "not an object"}
		}
		keys := value.NewArray()
		for _, k := range obj.Keys() {
			keys.Append(value.String(k))
		}
		return keys, nil
	case OpEach:
		arr, ok := cur.(value.Arr)
		if !ok {
			return nil, &ExecError{Spec: spec.Raw, Path: path, Message: "not an array"}
		}
		out := value.NewArray()
		for i := 0; i < arr.Len(); i++ {
			out.Append(arr.Index(i))
		}
		return out, nil
	default:
		return nil, &ExecError{Spec: spec.Raw, Path: path, Message: "unsupported operation"}
	}
}

func navigate(cur value.Value, path string, step Step, raw string) (value.Value, string, error) {
	if step.IsIndex {
		arr, ok := cur.(value.Arr)
		if !ok {
			return nil, "", &ExecError{Spec: raw, Path: path, Message: "not an array"}
		}
		return arr.Index(step.Index), path + "[" + strconv.Itoa(step.Index) + "]", nil
	}
	obj, ok := cur.(value.Obj)
	if !ok {
		return nil, "", &ExecError{Spec: raw, Path: path, Message: "not an object"}
	}
	return obj.Get(step.Key), path + "." + step.Key, nil
}
