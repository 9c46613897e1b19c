package context

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preferences pins a preferred backend and device name across runs, loaded
// from an optional on-disk file so a host doesn't have to hardcode or
// reflag its audio choice every invocation.
type Preferences struct {
	Backend        string `yaml:"backend"`
	PlaybackDevice string `yaml:"playback_device"`
	CaptureDevice  string `yaml:"capture_device"`
}

// LoadPreferences reads a YAML preferences file from path. A missing file
// is not an error: it returns a zero Preferences so callers can treat "no
// file" and "no preference expressed" identically.
func LoadPreferences(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("context: read preferences: %w", err)
	}
	var p Preferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("context: parse preferences: %w", err)
	}
	return p, nil
}

// SavePreferences writes p to path as YAML, creating or truncating the file.
func SavePreferences(path string, p Preferences) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("context: marshal preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("context: write preferences: %w", err)
	}
	return nil
}

// SelectBackend reorders factories so the one named by preferred (if any
// and if present) is tried first, preserving the relative order of the
// rest. Names are matched against each pair's NamedBackendFactory.Name,
// not against a constructed Backend.Name(), so no factory is invoked here
// and no backend is probed twice.
func SelectBackend(preferred string, named []NamedBackendFactory) []BackendFactory {
	if preferred == "" {
		factories := make([]BackendFactory, len(named))
		for i, n := range named {
			factories[i] = n.Factory
		}
		return factories
	}
	ordered := make([]BackendFactory, 0, len(named))
	var rest []BackendFactory
	for _, n := range named {
		if n.Name == preferred {
			ordered = append(ordered, n.Factory)
		} else {
			rest = append(rest, n.Factory)
		}
	}
	return append(ordered, rest...)
}

// NamedBackendFactory pairs a BackendFactory with the name it's known by in
// a preferences file, without requiring the factory to run just to learn
// its name.
type NamedBackendFactory struct {
	Name    string
	Factory BackendFactory
}
