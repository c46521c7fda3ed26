// Package ragify provides the core pipeline composition model: a Record
// carrying data through an ordered sequence of named Components, each
// independently enable-able and failure-isolated.
package ragify

// Record is the mutable key-value carrier threaded through a pipeline run.
//
// Keys form an implicit, growing contract between components: each stage reads
// keys written by its predecessors and writes new keys for its successors.
// There is no schema enforcement; a component must tolerate a missing expected
// key and substitute a documented default rather than fail.
type Record map[string]any

// NewRecord creates an empty Record.
func NewRecord() Record {
	return make(Record)
}

// Clone returns a shallow copy of the record. Values are shared; key
// additions and removals on the copy do not affect the original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the string value for key, or "" when absent or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value for key, accepting int, int64 and float64
// representations. Returns 0 when absent or not numeric.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the float value for key, accepting float64, float32 and int
// representations. Returns 0 when absent or not numeric.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Bool returns the boolean value for key, or false when absent or not a bool.
func (r Record) Bool(key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

// StringSlice returns the string slice for key. Accepts []string directly and
// []any holding strings. Returns nil when absent or of another shape.
func (r Record) StringSlice(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns the nested map value for key, or nil when absent.
func (r Record) Map(key string) map[string]any {
	if v, ok := r[key].(map[string]any); ok {
		return v
	}
	return nil
}
