package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// ErrFrozen is returned by mutating calls after the store has been frozen.
var ErrFrozen = errors.New("settings: store is frozen")

// Store is the merged runtime view over an ordered list of Sources. Keys are
// case-insensitive (viper semantics); the last merged source wins per key.
//
// A Store may carry a write target: the properties file later Save calls
// land in. If no target was set explicitly, merging a FileSource assigns the
// store the path of the most recently merged file source, so writes land in
// a predictable place.
type Store struct {
	v              *viper.Viper
	target         string
	targetExplicit bool
	merged         []string
	frozen         bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{v: viper.New()}
}

// Merge applies the sources in increasing priority order: a key defined by a
// later source overrides the value from an earlier one.
func (s *Store) Merge(sources ...Source) error {
	if s.frozen {
		return ErrFrozen
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, key := range src.Keys() {
			if val, ok := src.Get(key); ok {
				s.v.Set(key, val)
			}
		}
		s.merged = append(s.merged, src.Name())

		if fs, ok := src.(*FileSource); ok && !s.targetExplicit {
			s.target = fs.Path()
		}
	}
	return nil
}

// MergedSources returns the names of the merged sources in merge order.
func (s *Store) MergedSources() []string {
	out := make([]string, len(s.merged))
	copy(out, s.merged)
	return out
}

// Set assigns a single key. It fails once the store is frozen.
func (s *Store) Set(key, value string) error {
	if s.frozen {
		return ErrFrozen
	}
	s.v.Set(key, value)
	return nil
}

// SetTarget explicitly assigns the write target, disabling the self-naming
// behavior of Merge.
func (s *Store) SetTarget(path string) {
	s.target = path
	s.targetExplicit = true
}

// Target returns the current write target, "" if none.
func (s *Store) Target() string { return s.target }

// Freeze makes the store read-only. Bootstrap freezes the store after the
// merge phase; managers only ever observe the frozen view.
func (s *Store) Freeze() { s.frozen = true }

// Frozen reports whether the store has been frozen.
func (s *Store) Frozen() bool { return s.frozen }

// Save persists the merged keys to the write target as a properties file.
// Keys are written in their case-insensitive (lowercased) store form.
func (s *Store) Save() error {
	if s.target == "" {
		return errors.New("settings: no write target configured")
	}

	props := properties.NewProperties()
	for _, key := range s.Keys() {
		if _, _, err := props.Set(key, s.v.GetString(key)); err != nil {
			return fmt.Errorf("settings: encode %s: %w", key, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.target), 0o755); err != nil {
		return fmt.Errorf("settings: create target directory: %w", err)
	}

	f, err := os.Create(s.target)
	if err != nil {
		return fmt.Errorf("settings: create %s: %w", s.target, err)
	}
	defer f.Close()

	if _, err := props.Write(f, properties.UTF8); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.target, err)
	}
	return nil
}

// IsSet reports whether any merged source defined the key.
func (s *Store) IsSet(key string) bool { return s.v.IsSet(key) }

// Keys returns all merged keys, sorted, in their store (lowercased) form.
func (s *Store) Keys() []string {
	keys := s.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// GetString returns the value for key, or def when the key is undefined.
func (s *Store) GetString(key, def string) string {
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetString(key)
}

// GetInt returns the integer value for key, or def when undefined or
// unparsable.
func (s *Store) GetInt(key string, def int) int {
	if !s.v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(s.v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns the boolean value for key, or def when undefined.
func (s *Store) GetBool(key string, def bool) bool {
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetBool(key)
}

// GetDuration returns the duration value for key, or def when undefined.
func (s *Store) GetDuration(key string, def time.Duration) time.Duration {
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetDuration(key)
}

// GetStrings returns the value for key split on commas and whitespace,
// or nil when the key is undefined.
func (s *Store) GetStrings(key string) []string {
	if !s.v.IsSet(key) {
		return nil
	}
	raw := s.v.GetString(key)
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
