package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/cipherguard2/cipherguard2/internal/log"
)

const (
	// AppName is used for XDG directory names and file names.
	AppName = "cipherguard2"

	// EnvConfigFile names the environment variable holding an explicit
	// configuration file path.
	EnvConfigFile = "CIPHERGUARD2_CONFIG"

	// DefaultLogFormat lets the logger pick text for terminals and JSON otherwise.
	DefaultLogFormat = log.FormatAuto

	// DefaultHistoryLimit is the number of sessions kept in the history store.
	DefaultHistoryLimit = 100
)

// Config holds the resolved runtime configuration.
type Config struct {
	// LogFormat is the encoding of log output on stderr.
	LogFormat log.Format

	// DataDir holds the history database.
	// Defaults to the XDG data directory (~/.local/share/cipherguard2 on Linux).
	DataDir string

	// History enables recording each session in the history store.
	History bool

	// HistoryLimit is how many sessions to keep. Zero keeps all of them.
	HistoryLimit int

	// ConfigFilePath is the file the values were loaded from.
	// Empty when only defaults are in effect.
	ConfigFilePath string
}

// NewConfig returns a Config filled with defaults.
func NewConfig() *Config {
	return &Config{
		LogFormat:    DefaultLogFormat,
		DataDir:      XDGDataDir(),
		History:      true,
		HistoryLimit: DefaultHistoryLimit,
	}
}

// XDGDataDir returns the XDG data directory for CipherGuard2.
// On Linux: ~/.local/share/cipherguard2
// On macOS: ~/Library/Application Support/cipherguard2
// On Windows: %LOCALAPPDATA%\cipherguard2
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for CipherGuard2.
// On Linux: ~/.config/cipherguard2
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply overrides c with every value set in f.
func (c *Config) Apply(f *File) error {
	if f == nil {
		return nil
	}
	if f.LogFormat != "" {
		format, err := log.ParseFormat(f.LogFormat)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLogFormat, f.LogFormat)
		}
		c.LogFormat = format
	}
	if f.DataDir != "" {
		c.DataDir = expandHome(f.DataDir)
	}
	if f.History != nil {
		c.History = *f.History
	}
	if f.HistoryLimit != nil {
		c.HistoryLimit = *f.HistoryLimit
	}
	return nil
}

// Validate returns the first problem found in c.
func (c *Config) Validate() error {
	if _, err := log.ParseFormat(string(c.LogFormat)); err != nil {
		return ErrInvalidLogFormat
	}
	if c.HistoryLimit < 0 {
		return ErrInvalidHistoryLimit
	}
	if c.History && c.DataDir == "" {
		return ErrEmptyDataDir
	}
	return nil
}
