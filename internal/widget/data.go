package widget

import "github.com/jask/slicewidgets/internal/surface"

// Record data comes back from several codecs (msgpack, JSON, TOML), each
// with its own idea of what a number or a list is. These helpers read it
// back leniently.

// Float reads a number.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Int reads an integral number.
func Int(v any) (int, bool) {
	f, ok := Float(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Vec3 reads a three-element list of numbers.
func Vec3(v any) (surface.Vec3, bool) {
	var out surface.Vec3
	switch l := v.(type) {
	case surface.Vec3:
		return l, true
	case []float64:
		if len(l) != 3 {
			return out, false
		}
		copy(out[:], l)
		return out, true
	case []any:
		if len(l) != 3 {
			return out, false
		}
		for i, e := range l {
			f, ok := Float(e)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	}
	return out, false
}

// List encodes p for a Record.
func List(p surface.Vec3) []float64 {
	return []float64{p[0], p[1], p[2]}
}
