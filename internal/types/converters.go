package types

// Converter coerces a single cell value while a file is being parsed.
// Returning an error leaves the original value in place.
type Converter func(Value) (Value, error)

// Converters maps a column name to the converter applied to its cells.
type Converters map[string]Converter

// Apply runs the converter registered for column, if any. A failing
// conversion passes the original value through unchanged.
func (c Converters) Apply(column string, v Value) Value {
	conv, ok := c[column]
	if !ok || conv == nil {
		return v
	}
	out, err := conv(v)
	if err != nil {
		return v
	}
	return out
}
