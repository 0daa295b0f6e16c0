// Package userconfig stores per-user CLI state outside the project, in
// ~/.config/banban/config.json.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	configDirName  = "banban"
	configFileName = "config.json"
)

// UserConfig is the content of the user config file
type UserConfig struct {
	SelectedServerURL string `json:"selected_server_url"`
}

// Store reads and writes one user config file
type Store struct {
	Path string
}

// Default returns the store under the user's home directory
func Default() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return &Store{Path: filepath.Join(homeDir, ".config", configDirName, configFileName)}, nil
}

// Load reads the file. A missing file is an empty config.
func (s *Store) Load() (*UserConfig, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file %s: %w", s.Path, err)
	}
	return &cfg, nil
}

// Save replaces the file through a rename so a crash never leaves it half written
func (s *Store) Save(cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), configFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	return os.Rename(tmp.Name(), s.Path)
}

// SelectedServer returns the remembered server URL, empty when none
func (s *Store) SelectedServer() (string, error) {
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	return cfg.SelectedServerURL, nil
}

// SetSelectedServer remembers serverURL. An empty URL forgets the selection.
func (s *Store) SetSelectedServer(serverURL string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if cfg.SelectedServerURL == serverURL {
		return nil
	}
	cfg.SelectedServerURL = serverURL
	return s.Save(cfg)
}
