// Package configcmder provides the config command for managing persistent
// tutor configuration stored in the .tutor/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/config"
)

const configLongDesc string = `Manage persistent tutor configuration.

Configuration is stored as config.toml in the .tutor/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  client.api_target, client.model, client.timeout,
  render.style, render.word_wrap, render.interval_ms,
  render.boundary_interval_ms, chat.max_image_bytes,
  devserver.listen

Use subcommands to get, set, or list configuration values:
  tutor config set <key> <value>    Set a configuration value
  tutor config get <key>            Get a configuration value
  tutor config list                 List all configuration values

Examples:
  tutor config set client.api_target http://localhost:8080
  tutor config set render.style light
  tutor config get client.model
  tutor config list`

const configShortDesc string = "Manage persistent tutor configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func openConfig(out io.Writer, configDir string) (*config.Configer, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	fmt.Fprintf(out, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return cfger, nil
}
