// Package settings persists host application state between runs as a
// small TOML file.
package settings

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Tab identifies which view a client surface last had selected.
type Tab string

// Known tabs
const (
	TabSetup    Tab = "setup"
	TabTerminal Tab = "terminal"
	TabConfig   Tab = "config"
)

// Settings is the persisted application state.
type Settings struct {
	JarPath    string `toml:"jar_path" json:"jar_path"`
	AutoStart  bool   `toml:"auto_start" json:"auto_start"`
	DefaultTab Tab    `toml:"default_tab" json:"default_tab"`
	ConfigPath string `toml:"config_path" json:"config_path"`
}

// Load reads settings from path. A missing file yields defaults. The
// default tab is always forced back to setup on load, regardless of what
// was stored; this is a deliberate startup policy, not a round-trip bug.
func Load(path string) (Settings, error) {
	s := Settings{DefaultTab: TabSetup}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, err
	}

	s.DefaultTab = TabSetup
	return s, nil
}

// Store saves settings to a fixed path. Save may be called on every host
// tick; writes are skipped while the serialized form is unchanged, so
// disk state stays eventually consistent without per-tick churn.
type Store struct {
	Path string

	last []byte
}

// Save persists the given settings if they differ from the last
// successful write.
func (st *Store) Save(s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	if bytes.Equal(data, st.last) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(st.Path), 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(st.Path, data, 0o600); err != nil {
		return err
	}

	st.last = data
	return nil
}

// DefaultPath returns the settings file location under the user's
// configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "thetactl", "settings.toml"), nil
}
