package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/tutor/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads config.toml (if found via
// dotdir resolution), and binds environment variables with the TUTOR_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (TUTOR_CLIENT_API_TARGET, TUTOR_CLIENT_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("TUTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("client.api_target", d.Client.APITarget)
	v.SetDefault("client.model", d.Client.Model)
	v.SetDefault("client.timeout", d.Client.Timeout)

	v.SetDefault("render.style", d.Render.Style)
	v.SetDefault("render.word_wrap", d.Render.WordWrap)
	v.SetDefault("render.interval_ms", d.Render.IntervalMS)
	v.SetDefault("render.boundary_interval_ms", d.Render.BoundaryIntervalMS)

	v.SetDefault("chat.max_image_bytes", d.Chat.MaxImageBytes)

	v.SetDefault("devserver.listen", d.DevServer.Listen)
}

// FromViper materializes the effective configuration after flags, env and
// file values have been merged.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
			Model:     v.GetString("client.model"),
			Timeout:   v.GetString("client.timeout"),
		},
		Render: RenderConfig{
			Style:              v.GetString("render.style"),
			WordWrap:           v.GetUint("render.word_wrap"),
			IntervalMS:         v.GetUint("render.interval_ms"),
			BoundaryIntervalMS: v.GetUint("render.boundary_interval_ms"),
		},
		Chat: ChatConfig{
			MaxImageBytes: v.GetUint("chat.max_image_bytes"),
		},
		DevServer: DevServerConfig{
			Listen: v.GetString("devserver.listen"),
		},
	}

	if cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	if !IsValidStyle(cfg.Render.Style) {
		return nil, fmt.Errorf("invalid render.style %q (available: %v)", cfg.Render.Style, ValidStyles())
	}
	if _, err := cfg.RequestTimeout(); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}
