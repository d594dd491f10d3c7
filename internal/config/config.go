// Package config loads the sidebar settings: built-in defaults, then the TOML
// file, then DOCPANEL_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sokinpui/docpanel/internal/analysis"
	"github.com/sokinpui/docpanel/internal/fs"
)

const fileName = "config.toml"

// Host types.
const (
	HostNvim      = "nvim"
	HostClipboard = "clipboard"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type NvimConfig struct {
	// Listen is the Neovim RPC address; empty falls back to $NVIM.
	Listen string `toml:"listen"`
	// Write saves the buffer after every edit.
	Write bool `toml:"write"`
}

type ClipboardConfig struct {
	// File is read for the whole-document text. Empty uses the clipboard.
	File string `toml:"file"`
}

type ChatConfig struct {
	IncludeSelection bool `toml:"include_selection"`
	IncludeDocument  bool `toml:"include_document"`
}

type Config struct {
	APIURL           string          `toml:"api_url"`
	Host             string          `toml:"host"`
	RequestTimeout   string          `toml:"request_timeout"`
	HandshakeTimeout string          `toml:"handshake_timeout"`
	StateDir         string          `toml:"state_dir,omitempty"`
	Debug            bool            `toml:"debug"`
	Nvim             NvimConfig      `toml:"nvim"`
	Clipboard        ClipboardConfig `toml:"clipboard"`
	Chat             ChatConfig      `toml:"chat"`

	// Path is the file the config was read from, empty when none was.
	Path string `toml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIURL:           analysis.DefaultBaseURL,
		Host:             HostNvim,
		RequestTimeout:   "30s",
		HandshakeTimeout: "5s",
		Chat:             ChatConfig{IncludeSelection: true},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/docpanel/config.toml.
func DefaultPath() (string, error) {
	dir, err := fs.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads path over the defaults and applies environment overrides. A
// missing file at the default location is not an error; a missing file that
// was asked for explicitly is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	path, err := fs.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	switch {
	case fs.FileExists(path):
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, key := range md.Undecoded() {
			log.Printf("config: ignoring unknown key %q in %s", key.String(), path)
		}
		cfg.Path = path
	case explicit:
		return nil, fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCPANEL_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("DOCPANEL_HOST"); v != "" {
		c.Host = v
	}
	if CheckDebug() {
		c.Debug = true
	}
}

// CheckDebug reports whether DOCPANEL_DEBUG is set to a true value.
func CheckDebug() bool {
	debug := strings.ToLower(os.Getenv("DOCPANEL_DEBUG"))
	return debug == "true" || debug == "1"
}

// RequestTimeoutDuration parses RequestTimeout. Zero disables the timeout.
func (c *Config) RequestTimeoutDuration() (time.Duration, error) {
	return parseDuration("request_timeout", c.RequestTimeout)
}

// HandshakeTimeoutDuration parses HandshakeTimeout.
func (c *Config) HandshakeTimeoutDuration() (time.Duration, error) {
	return parseDuration("handshake_timeout", c.HandshakeTimeout)
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalid, name)
	}
	return d, nil
}

// Validate checks the merged settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q is not an http(s) URL", ErrInvalid, c.APIURL)
	}
	switch c.Host {
	case HostNvim, HostClipboard:
	default:
		return fmt.Errorf("%w: host must be %q or %q, got %q", ErrInvalid, HostNvim, HostClipboard, c.Host)
	}
	if _, err := c.RequestTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.HandshakeTimeoutDuration(); err != nil {
		return err
	}
	return nil
}
