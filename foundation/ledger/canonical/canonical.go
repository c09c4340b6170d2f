// Package canonical renders nested key/value data into a deterministic byte
// form so identical logical content always hashes identically, regardless of
// the order in which keys were inserted.
package canonical

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Marshal renders the specified value into its canonical byte form. The
// output is JSON compatible with every mapping's keys sorted bytewise
// ascending at every level of nesting. Array order is preserved. Floats
// render with the fewest digits that round-trip and never use exponent
// notation, so 25.0 renders as 25 and 15.5 as 15.5.
func Marshal(v any) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf, err := appendValue(buf, v)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

// appendValue dispatches on the value's type and appends its rendering.
func appendValue(buf []byte, v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return append(buf, "null"...), nil

	case bool:
		if v {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil

	case string:
		return appendString(buf, v), nil

	case int:
		return strconv.AppendInt(buf, int64(v), 10), nil

	case int64:
		return strconv.AppendInt(buf, v, 10), nil

	case uint64:
		return strconv.AppendUint(buf, v, 10), nil

	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("canonical: unsupported float value %v", v)
		}
		return strconv.AppendFloat(buf, v, 'f', -1, 64), nil

	case []any:
		return appendArray(buf, v)

	case map[string]any:
		return appendMapping(buf, v)

	default:
		return nil, fmt.Errorf("canonical: unsupported type %T", v)
	}
}

// appendMapping renders a mapping with its keys sorted bytewise ascending.
func appendMapping(buf []byte, m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, k)
		buf = append(buf, ':')

		var err error
		buf, err = appendValue(buf, m[k])
		if err != nil {
			return nil, err
		}
	}

	return append(buf, '}'), nil
}

// appendArray renders a sequence keeping its element order.
func appendArray(buf []byte, a []any) ([]byte, error) {
	buf = append(buf, '[')
	for i, v := range a {
		if i > 0 {
			buf = append(buf, ',')
		}

		var err error
		buf, err = appendValue(buf, v)
		if err != nil {
			return nil, err
		}
	}

	return append(buf, ']'), nil
}

const hexDigits = "0123456789abcdef"

// appendString renders a string with minimal JSON escaping. Multi-byte
// UTF-8 sequences pass through unmodified.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')

	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '"':
			buf = append(buf, '\\', '"')
		case b == '\\':
			buf = append(buf, '\\', '\\')
		case b == '\n':
			buf = append(buf, '\\', 'n')
		case b == '\r':
			buf = append(buf, '\\', 'r')
		case b == '\t':
			buf = append(buf, '\\', 't')
		case b < 0x20:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
		default:
			buf = append(buf, b)
		}
	}

	return append(buf, '"')
}
