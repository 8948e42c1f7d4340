package types

// Record is one object in a resource collection: a mapping from field name to
// arbitrary JSON-compatible value. The client treats records opaquely; a
// persisted record carries an "id" field, an unpersisted one does not.
type Record map[string]any

// RecordSet is an ordered sequence of records, as returned by list and bulk
// operations.
type RecordSet []Record

// ID returns the record's "id" field as an int. The second return is false
// when the field is absent or not numeric. JSON numbers decode as float64,
// so both forms are accepted.
func (r Record) ID() (int, bool) {
	v, ok := r["id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetString returns the named field as a string, or "" when the field is
// absent or not a string.
func (r Record) GetString(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
