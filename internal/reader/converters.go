package reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// ToNumeric converts numeric text to an integer or float value. Values that
// are already numeric or null are returned as they are; anything else is an
// error, which leaves the original cell untouched.
func ToNumeric(v types.Value) (types.Value, error) {
	switch v.Kind() {
	case types.KindNull, types.KindInt, types.KindFloat, types.KindDecimal:
		return v, nil
	case types.KindString:
		s, _ := v.Str()
		s = strings.TrimSpace(s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return types.Int(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return types.Float(f), nil
		}
		return v, fmt.Errorf("%q is not numeric", s)
	default:
		return v, fmt.Errorf("%s value is not numeric", v.Kind())
	}
}

// ToString renders any non-null value as text.
func ToString(v types.Value) (types.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	return types.String(v.String()), nil
}
