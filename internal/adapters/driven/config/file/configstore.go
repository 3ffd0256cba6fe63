package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file name inside the codebook home.
const ConfigFile = "config.toml"

// ConfigStore keeps settings in a TOML file. Keys are dotted in memory
// ("ai.provider") and written as tables ([ai] provider = ...).
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens dir/config.toml, or HomeDir()/config.toml when dir
// is empty. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		dir = home
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, ConfigFile)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	str, _ := s.values[key].(string)
	return str
}

// GetInt accepts the int64 TOML decodes to and the int Set stores.
func (s *ConfigStore) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.values[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// Set keeps the previous value when the file cannot be written.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	s.values[key] = value
	if err := s.write(); err != nil {
		s.restore(key, prev, had)
		return err
	}
	return nil
}

func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.write(); err != nil {
		s.restore(key, prev, had)
		return err
	}
	return nil
}

func (s *ConfigStore) restore(key string, prev any, had bool) {
	if had {
		s.values[key] = prev
		return
	}
	delete(s.values, key)
}

func (s *ConfigStore) Path() string { return s.path }

// write replaces the file through a rename so a crash never leaves it half
// written. Caller holds mu.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nest(s.values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ConfigFile+".*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	// API keys live here: CreateTemp already uses 0600.
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.values = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var tables map[string]any
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.values = make(map[string]any)
	flatten(tables, "", s.values)
	return nil
}

// flatten copies nested tables into out under dotted keys.
func flatten(tables map[string]any, prefix string, out map[string]any) {
	for key, value := range tables {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flatten(table, key, out)
			continue
		}
		out[key] = value
	}
}

// nest is the inverse of flatten. A key that would need to be both a value
// and a table keeps its dotted form at the top level.
func nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	// "ai" sorts before "ai.model", so scalars claim their name first.
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		table, ok := tableFor(root, parts[:len(parts)-1])
		if !ok {
			root[key] = flat[key]
			continue
		}
		table[parts[len(parts)-1]] = flat[key]
	}
	return root
}

// tableFor walks or creates the tables along path. It fails when a scalar
// already occupies a segment.
func tableFor(root map[string]any, path []string) (map[string]any, bool) {
	table := root
	for _, part := range path {
		child, exists := table[part]
		if !exists {
			next := make(map[string]any)
			table[part] = next
			table = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return nil, false
		}
		table = next
	}
	return table, true
}
