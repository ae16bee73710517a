package eval

import (
	"encoding/json"
	"math"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// ToValue converts a record value to a comparable ast.Value.
//
// Accepted: every signed and unsigned integer type, float32/float64 holding
// a whole number (JSON decoders produce these), json.Number holding an
// integer, string, and ast.Value. Anything else reports false.
func ToValue(v any) (ast.Value, bool) {
	switch val := v.(type) {
	case ast.Value:
		return val, true
	case string:
		return ast.StringValue(val), true
	case int:
		return ast.IntValue(int64(val)), true
	case int8:
		return ast.IntValue(int64(val)), true
	case int16:
		return ast.IntValue(int64(val)), true
	case int32:
		return ast.IntValue(int64(val)), true
	case int64:
		return ast.IntValue(val), true
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return ast.IntValue(int64(val)), true
	case uint16:
		return ast.IntValue(int64(val)), true
	case uint32:
		return ast.IntValue(int64(val)), true
	case uint64:
		return fromUint(val)
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return ast.IntValue(i), true
		}
		if f, err := val.Float64(); err == nil {
			return fromFloat(f)
		}
		return ast.Value{}, false
	default:
		return ast.Value{}, false
	}
}

func fromUint(u uint64) (ast.Value, bool) {
	if u > math.MaxInt64 {
		return ast.Value{}, false
	}
	return ast.IntValue(int64(u)), true
}

// fromFloat accepts whole numbers inside the exactly representable range.
func fromFloat(f float64) (ast.Value, bool) {
	const maxExact = 1 << 53
	if f != math.Trunc(f) || f > maxExact || f < -maxExact {
		return ast.Value{}, false
	}
	return ast.IntValue(int64(f)), true
}
