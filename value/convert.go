package value

import "fmt"

// FromAny converts decoded JSON/YAML data (maps, slices, scalars) into a
// Value graph. Map iteration order is not deterministic in Go, so object key
// order follows sortedAnyKeys for reproducible graphs. Unknown types become
// Opaque leaves.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(val)
	case int:
		return Int(val)
	case int64:
		return Int(val)
	case float64:
		// YAML and JSON decoders produce float64 for all numbers; keep
		// integral values as Int so comparisons behave predictably.
		if val == float64(int64(val)) && val >= -1<<53 && val <= 1<<53 {
			return Int(int64(val))
		}
		return Float(val)
	case float32:
		return FromAny(float64(val))
	case string:
		return String(val)
	case []any:
		arr := NewArray()
		for _, elem := range val {
			arr.Append(FromAny(elem))
		}
		return arr
	case map[string]any:
		obj := NewObject()
		for _, k := range sortedAnyKeys(val) {
			obj.Set(k, FromAny(val[k]))
		}
		return obj
	case map[any]any:
		// yaml.v2-style maps; keys coerced to strings.
		obj := NewObject()
		str := make(map[string]any, len(val))
		for k, e := range val {
			str[fmt.Sprintf("%v", k)] = e
		}
		for _, k := range sortedAnyKeys(str) {
			obj.Set(k, FromAny(str[k]))
		}
		return obj
	case Value:
		return val
	default:
		return Opaque{V: v}
	}
}

// ToAny converts a Value graph back to plain Go data suitable for
// encoding/json or yaml. Opaque leaves unwrap to their Go value.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case Opaque:
		return val.V
	case *Array:
		out := make([]any, val.Len())
		for i := range out {
			out[i] = ToAny(val.Index(i))
		}
		return out
	case *Object:
		out := make(map[string]any, val.Len())
		for _, k := range val.Keys() {
			out[k] = ToAny(val.Get(k))
		}
		return out
	default:
		// Tracking facades land here; callers should unwrap first.
		if o, ok := v.(Obj); ok {
			out := make(map[string]any, o.Len())
			for _, k := range o.Keys() {
				out[k] = ToAny(o.Get(k))
			}
			return out
		}
		if a, ok := v.(Arr); ok {
			out := make([]any, a.Len())
			for i := range out {
				out[i] = ToAny(a.Index(i))
			}
			return out
		}
		return nil
	}
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeysUTF16(keys)
	return keys
}
