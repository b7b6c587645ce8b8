package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for v. This is the only
// serialization used for document fingerprints and golden snapshots.
//
// Key differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes, not
//     insertion order)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Floats use shortest round-trip form
//
// Opaque leaves and tracking facades are not serializable and return an
// error; unwrap a derived result before marshaling it.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Float:
		return marshalCanonicalFloat(buf, float64(val))
	case String:
		data, err := marshalCanonicalString(string(val))
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	case *Array:
		buf.WriteByte('[')
		for i := 0; i < val.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, val.Index(i)); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case *Object:
		keys := val.Keys()
		sortKeysUTF16(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kdata, err := marshalCanonicalString(k)
			if err != nil {
				return fmt.Errorf("object key %q: %w", k, err)
			}
			buf.Write(kdata)
			buf.WriteByte(':')
			if err := marshalCanonical(buf, val.Get(k)); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case Opaque:
		return fmt.Errorf("opaque value %T is not serializable", val.V)
	default:
		return fmt.Errorf("value of kind %s is not serializable (tracking facade?)", v.Kind())
	}
}

// marshalCanonicalFloat writes a float in shortest round-trip form.
// NaN and infinities have no JSON representation and return an error.
func marshalCanonicalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("float %v is not representable in JSON", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// strconv uses "1e+06" where ECMAScript prints "1000000"; expand small
	// exponents so integral doubles serialize without an exponent.
	if exp := strings.IndexAny(s, "eE"); exp >= 0 {
		if e, err := strconv.Atoi(s[exp+1:]); err == nil && e > -7 && e < 21 {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	buf.WriteString(s)
	return nil
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization. RFC 8785 compliance:
//   - No HTML escaping (<, >, & are NOT escaped)
//   - U+2028 and U+2029 are NOT escaped
//   - Only control characters (U+0000-U+001F), backslash, and quote are
//     escaped
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	// Go's encoder escapes U+2028/U+2029 for JavaScript embedding; RFC 8785
	// wants the literal characters.
	return unescapeU2028U2029(result), nil
}

// unescapeU2028U2029 converts `\u2028` and `\u2029` escape sequences back to
// literal characters, leaving \\u2028 (escaped backslash followed by text)
// intact.
func unescapeU2028U2029(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] == '\\' && i+5 < len(data) && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			// An even number of preceding backslashes means this backslash
			// starts a real \u202x escape.
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, " "...)
				} else {
					out = append(out, " "...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}

// sortKeysUTF16 sorts keys by UTF-16 code units as required by RFC 8785.
// Go's sort.Strings compares UTF-8 bytes, which orders supplementary-plane
// characters differently.
func sortKeysUTF16(keys []string) {
	slices.SortFunc(keys, compareKeysUTF16)
}

func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
