package config

// Render styles understood by render.Markdown.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

const (
	defaultClientAPITarget = "http://localhost:8081"
	defaultClientModel     = "glm-4.6v-Flash"
	defaultClientTimeout   = "5m"

	defaultRenderWordWrap           = 80
	defaultRenderIntervalMS         = 240
	defaultRenderBoundaryIntervalMS = 140

	defaultChatMaxImageBytes = 10 << 20

	defaultDevServerListen = ":8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
			Model:     defaultClientModel,
			Timeout:   defaultClientTimeout,
		},
		Render: RenderConfig{
			Style:              StyleAuto,
			WordWrap:           defaultRenderWordWrap,
			IntervalMS:         defaultRenderIntervalMS,
			BoundaryIntervalMS: defaultRenderBoundaryIntervalMS,
		},
		Chat: ChatConfig{
			MaxImageBytes: defaultChatMaxImageBytes,
		},
		DevServer: DevServerConfig{
			Listen: defaultDevServerListen,
		},
	}
}
