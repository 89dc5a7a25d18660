package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// object is a loosely typed JSON object. Accessors take alias keys in
// priority order and return zero values on any type mismatch.
type object map[string]any

func decode(raw []byte) object {
	if len(raw) == 0 {
		return nil
	}
	var o map[string]any
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	return o
}

func asObject(v any) object {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func (o object) str(keys ...string) string {
	for _, k := range keys {
		switch v := o[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	return ""
}

func (o object) num(keys ...string) *float64 {
	for _, k := range keys {
		var f float64
		switch v := o[k].(type) {
		case float64:
			f = v
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return &f
	}
	return nil
}

func (o object) integer(keys ...string) *int {
	f := o.num(keys...)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

func (o object) boolean(keys ...string) bool {
	for _, k := range keys {
		if b, ok := o[k].(bool); ok {
			return b
		}
	}
	return false
}

func (o object) obj(keys ...string) object {
	for _, k := range keys {
		if m := asObject(o[k]); m != nil {
			return m
		}
	}
	return nil
}

func (o object) list(keys ...string) []any {
	for _, k := range keys {
		if l, ok := o[k].([]any); ok {
			return l
		}
	}
	return nil
}

func (o object) objects(keys ...string) []object {
	var out []object
	for _, v := range o.list(keys...) {
		if m := asObject(v); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (o object) strs(keys ...string) []string {
	var out []string
	for _, v := range o.list(keys...) {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
