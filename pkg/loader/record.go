package loader

// Record is one input row: a mapping whose keys keep their document order.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a Record from keys in display order. Keys missing from
// values read as nil.
func NewRecord(keys []string, values map[string]any) Record {
	k := make([]string, len(keys))
	copy(k, keys)
	v := make(map[string]any, len(values))
	for key, val := range values {
		v[key] = val
	}
	return Record{keys: k, values: v}
}

// Keys returns the record's keys in document order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r Record) Len() int { return len(r.keys) }

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Map returns the record as a plain map, e.g. for expression evaluation.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
