package settings

import (
	"fmt"
	"os"
	"sort"

	"github.com/magiconair/properties"
)

// FileSource is a Source backed by a key=value properties file. A missing or
// unreadable file yields an empty source — the load error is retained for
// diagnostics but never aborts a merge, so a partially available deployment
// still boots with best-effort defaults.
type FileSource struct {
	path    string
	props   *properties.Properties
	loadErr error
}

// NewFileSource loads the properties file at path. The returned source is
// usable even when the file does not exist; check Err for the load outcome.
func NewFileSource(path string) *FileSource {
	s := &FileSource{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		s.loadErr = fmt.Errorf("load settings file %s: %w", path, err)
		return s
	}

	props, err := properties.Load(data, properties.UTF8)
	if err != nil {
		s.loadErr = fmt.Errorf("parse settings file %s: %w", path, err)
		return s
	}

	s.props = props
	return s
}

// Name returns "file:<path>".
func (s *FileSource) Name() string { return "file:" + s.path }

// Path returns the backing file path. The path is defined even when the file
// does not exist yet; Store adopts it as a write target during merge.
func (s *FileSource) Path() string { return s.path }

// Err returns the load error, or nil if the file was read successfully.
func (s *FileSource) Err() error { return s.loadErr }

// Get returns the value for key and whether the file defines it.
func (s *FileSource) Get(key string) (string, bool) {
	if s.props == nil {
		return "", false
	}
	return s.props.Get(key)
}

// Keys returns the defined keys in sorted order.
func (s *FileSource) Keys() []string {
	if s.props == nil {
		return nil
	}
	keys := s.props.Keys()
	sort.Strings(keys)
	return keys
}
