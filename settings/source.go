package settings

import "sort"

// Source is a single read-only configuration source. Sources are merged by
// Store.Merge in increasing priority order; a later source overrides an
// earlier one for the keys it defines.
type Source interface {
	// Name identifies the source for diagnostics (e.g. "defaults",
	// "descriptor", "file:/var/forgekit/forgekit.properties").
	Name() string

	// Get returns the value for key and whether the source defines it.
	Get(key string) (string, bool)

	// Keys returns every key the source defines.
	Keys() []string
}

// MapSource is an in-memory Source backed by a map. It serves process
// defaults, web-descriptor parameters, and explicit standalone settings.
type MapSource struct {
	name   string
	values map[string]string
}

// NewMapSource creates a MapSource with a copy of the given values.
func NewMapSource(name string, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, values: copied}
}

// Name returns the source identifier.
func (s *MapSource) Name() string { return s.name }

// Get returns the value for key and whether it is defined.
func (s *MapSource) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the defined keys in sorted order so merges are deterministic.
func (s *MapSource) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
