// Package config loads the optional YAML defaults file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Beastly713/bpcs/pkg/bpcs"
)

// DefaultFile is looked up in the home directory when no --config is given.
const DefaultFile = ".bpcs.yaml"

// ServerConfig configures `bpcs serve`.
type ServerConfig struct {
	Address     string `yaml:"address"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// Settings are defaults for every command. Flags given on the command line
// take precedence.
type Settings struct {
	Threshold int          `yaml:"threshold"`
	Encrypt   bool         `yaml:"encrypt"`
	Randomize bool         `yaml:"randomize"`
	OutputDir string       `yaml:"output_dir"` // empty: next to the input
	LogLevel  string       `yaml:"log_level"`
	Server    ServerConfig `yaml:"server"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Threshold: bpcs.DefaultThreshold,
		LogLevel:  "info",
		Server: ServerConfig{
			Address:     "127.0.0.1:8080",
			MaxUploadMB: 32,
		},
	}
}

// Load reads filename over the defaults. Keys missing from the file keep
// their default value.
func Load(filename string) (*Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return s, nil
}

// DefaultPath is $HOME/.bpcs.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultFile), nil
}

// LoadDefault loads $HOME/.bpcs.yaml when it exists and the defaults otherwise.
func LoadDefault() (*Settings, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	s, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return s, err
}

// Save writes s as YAML. The file may hold nothing sensitive, but it is
// still created owner-only.
func Save(filename string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Threshold < 1 || s.Threshold > bpcs.MaxComplexity {
		return fmt.Errorf("threshold %d out of range 1..%d", s.Threshold, bpcs.MaxComplexity)
	}
	if s.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", s.Server.MaxUploadMB)
	}
	return nil
}
