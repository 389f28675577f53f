package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent tutor configuration stored as config.toml
// in the .tutor/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Client    ClientConfig    `toml:"client"`
	Render    RenderConfig    `toml:"render"`
	Chat      ChatConfig      `toml:"chat"`
	DevServer DevServerConfig `toml:"devserver"`
}

// ClientConfig holds settings for commands that talk to the learning
// assistant backend. APITarget is a full URL (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
	Model     string `toml:"model,omitempty"`

	// Timeout bounds a single request, including a whole chat stream.
	// Parsed with time.ParseDuration; "0" disables it.
	Timeout string `toml:"timeout,omitempty"`
}

// RenderConfig controls how answers are drawn in the terminal.
type RenderConfig struct {
	// Style is the glamour style: auto, dark, light or notty.
	Style              string `toml:"style,omitempty"`
	WordWrap           uint   `toml:"word_wrap,omitempty"`
	IntervalMS         uint   `toml:"interval_ms,omitempty"`
	BoundaryIntervalMS uint   `toml:"boundary_interval_ms,omitempty"`
}

// ChatConfig holds limits applied before a message is sent.
type ChatConfig struct {
	MaxImageBytes uint `toml:"max_image_bytes,omitempty"`
}

// DevServerConfig holds settings for "tutor devserver".
type DevServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// RequestTimeout parses Client.Timeout. An empty value yields the default.
func (c *Config) RequestTimeout() (time.Duration, error) {
	raw := c.Client.Timeout
	if raw == "" {
		raw = defaultClientTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid client.timeout %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid client.timeout %q: must not be negative", raw)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			v := *field(c)
			if v == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(v), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			c.Client.Timeout = v
			return nil
		},
	},
	"render.style": {
		get: func(c *Config) string { return c.Render.Style },
		set: func(c *Config, v string) error {
			if !IsValidStyle(v) {
				return fmt.Errorf("invalid value for render.style: %q (available: %v)", v, ValidStyles())
			}
			c.Render.Style = v
			return nil
		},
	},
	"render.word_wrap":            uintKey("render.word_wrap", func(c *Config) *uint { return &c.Render.WordWrap }),
	"render.interval_ms":          uintKey("render.interval_ms", func(c *Config) *uint { return &c.Render.IntervalMS }),
	"render.boundary_interval_ms": uintKey("render.boundary_interval_ms", func(c *Config) *uint { return &c.Render.BoundaryIntervalMS }),
	"chat.max_image_bytes":        uintKey("chat.max_image_bytes", func(c *Config) *uint { return &c.Chat.MaxImageBytes }),
	"devserver.listen": {
		get: func(c *Config) string { return c.DevServer.Listen },
		set: func(c *Config, v string) error { c.DevServer.Listen = v; return nil },
	},
}

// ValidStyles returns the accepted render.style values.
func ValidStyles() []string {
	return []string{StyleAuto, StyleDark, StyleLight, StyleNoTTY}
}

// IsValidStyle reports whether s is an accepted render.style value.
func IsValidStyle(s string) bool {
	for _, v := range ValidStyles() {
		if s == v {
			return true
		}
	}
	return false
}
