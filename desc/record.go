// Package desc defines the shape of a descriptor record, the untyped,
// dynamically-keyed input that the classifier, ingestion engine, and import
// composer all consume. Records arrive from an external text parser or from
// decoding JSON/YAML, so their shape is only known by field presence, not by
// a discriminator tag.
package desc

// Record is a single descriptor: a message, enum, service, extend block, or
// field, represented the way encoding/json and gopkg.in/yaml.v3 decode an
// object into interface{} — a map keyed by the field name, with values that
// are themselves string, bool, float64/int, []any, or map[string]any.
type Record map[string]any

// String returns the string value of key, if present and a string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the bool value of key, defaulting to false if absent. It is
// used for flag-shaped options such as convertFieldsToCamelCase.
func (r Record) Bool(key string) bool {
	v, ok := r[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Int returns the integer value of key, accepting the numeric types that
// JSON and YAML decoders produce (float64, int, int64).
func (r Record) Int(key string) (int64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Slice returns the ordered sequence value of key.
func (r Record) Slice(key string) ([]any, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// Records returns the ordered sequence value of key, coercing each element
// to a Record. An element that is not itself a mapping is skipped.
func (r Record) Records(key string) []Record {
	raw, ok := r.Slice(key)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Record(m))
		} else if rec, ok := v.(Record); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Map returns the mapping value of key.
func (r Record) Map(key string) (map[string]any, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	default:
		return nil, false
	}
}

// Has reports whether key is present at all, regardless of value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}
