package profile

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
)

// IsChanged reports whether a and b differ once both are reduced to their
// canonical serialization. Values that cannot be serialized count as changed
// unless they are deeply equal.
func IsChanged(a, b any) bool {
	left, errA := Canonical(a)
	right, errB := Canonical(b)
	if errA != nil || errB != nil {
		if errA != nil && errB != nil {
			return !reflect.DeepEqual(a, b)
		}
		return true
	}
	return left != right
}

// Canonical returns a serialization of v that is stable under object key
// order and numeric formatting. Null object members are dropped, so a null
// field and a missing field serialize the same way.
func Canonical(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	out, err := json.Marshal(normalize(generic))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func normalize(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			if item == nil {
				continue
			}
			out[key] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalize(item)
		}
		return out
	case json.Number:
		return normalizeNumber(value)
	default:
		return value
	}
}

func normalizeNumber(n json.Number) json.Number {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return json.Number(strconv.FormatInt(i, 10))
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return n
	}
	if f == float64(int64(f)) && f >= -1<<53 && f <= 1<<53 {
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}
