package domain

import (
	"encoding/json"
	"strconv"
)

// Backend payloads are decoded into map[string]any with json.Number for
// numbers. The same entity arrives with different field names depending on
// the endpoint, so lookups go through an ordered list of candidate keys.

// Lookup returns obj[key] when obj is a JSON object and the value is not null.
func Lookup(obj any, key string) (any, bool) {
	m, ok := obj.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Text renders a scalar JSON value as a string. Objects and arrays render
// as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// FirstText returns the first candidate key whose value renders non-empty.
func FirstText(obj any, keys ...string) string {
	for _, k := range keys {
		v, ok := Lookup(obj, k)
		if !ok {
			continue
		}
		if s := Text(v); s != "" {
			return s
		}
	}
	return ""
}

// Number converts a JSON scalar into a float. Strings are parsed.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
