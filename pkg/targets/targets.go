// Package targets loads the named URL batches polled by the relay from
// YAML/JSON files.
package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Target is one named batch of URLs fetched together.
type Target struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	URLs    []string          `json:"urls" yaml:"urls"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
}

type configFile struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// Registry holds the targets loaded from a config file.
type Registry struct {
	mu      sync.RWMutex
	targets []Target
	idx     map[string]Target
}

// LoadRegistry loads the target registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("targets file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	return parseRegistry(raw, filepath.Ext(path))
}

func parseRegistry(raw []byte, ext string) (*Registry, error) {
	file, err := decodeFile(raw, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}

	reg := &Registry{
		targets: make([]Target, len(file.Targets)),
		idx:     make(map[string]Target, len(file.Targets)),
	}
	for i := range file.Targets {
		t := sanitizeTarget(file.Targets[i])
		if err := validateTarget(t); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, exists := reg.idx[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		reg.targets[i] = t
		reg.idx[t.ID] = t
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func decodeFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err == nil {
			return file, nil
		}
	}

	return configFile{}, errors.New("targets file format not recognized (expected YAML or JSON)")
}

func sanitizeTarget(t Target) Target {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)

	urls := make([]string, 0, len(t.URLs))
	for _, u := range t.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	t.URLs = urls

	if len(t.Headers) > 0 {
		headers := make(map[string]string, len(t.Headers))
		for k, v := range t.Headers {
			key, val := strings.TrimSpace(k), strings.TrimSpace(v)
			if key == "" || val == "" {
				continue
			}
			headers[key] = val
		}
		t.Headers = headers
	}

	if t.Enabled == nil {
		def := true
		t.Enabled = &def
	}
	return t
}

func validateTarget(t Target) error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("name is required for target %q", t.ID)
	}
	if len(t.URLs) == 0 {
		return fmt.Errorf("at least one url is required for target %q", t.ID)
	}
	return nil
}

// EnabledValue returns the enabled flag defaulting to true.
func (t Target) EnabledValue() bool {
	if t.Enabled == nil {
		return true
	}
	return *t.Enabled
}

// ByID returns the target with the given id.
func (r *Registry) ByID(id string) (Target, bool) {
	if r == nil {
		return Target{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Target{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.idx[id]
	return t, ok
}

// All returns every configured target.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Enabled returns the targets that are enabled.
func (r *Registry) Enabled() []Target {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Target, 0, len(all))
	for _, t := range all {
		if t.EnabledValue() {
			out = append(out, t)
		}
	}
	return out
}
