// Package cmdenv builds what the backend-facing commands share: effective
// config, logger, API client and the stored login session.
package cmdenv

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/dotdir"
	"github.com/papercomputeco/tutor/pkg/logger"
	"github.com/papercomputeco/tutor/pkg/render"
	"github.com/papercomputeco/tutor/pkg/session"
	"github.com/papercomputeco/tutor/pkg/throttle"
)

// Env is the resolved environment of one command invocation.
type Env struct {
	ConfigDir string
	Debug     bool

	Config  *config.Config
	Logger  *slog.Logger
	Client  *api.Client
	Session api.Session
}

// AddClientFlags registers --api-target, --model and --timeout on cmd.
func AddClientFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPITarget, new(string))
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagModel, new(string))
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, new(string))
}

// Load resolves configuration for cmd without requiring a session. Flags
// registered from config.ClientFlags and config.ChatFlags are bound.
func Load(cmd *cobra.Command) (*Env, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.ClientFlags, []string{
		config.FlagAPITarget,
		config.FlagModel,
		config.FlagTimeout,
	})
	config.BindRegisteredFlags(v, cmd, config.ChatFlags, []string{
		config.FlagStyle,
		config.FlagWordWrap,
		config.FlagMaxImage,
	})
	config.BindRegisteredFlags(v, cmd, config.DevServerFlags, []string{
		config.FlagListen,
	})

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &Env{
		ConfigDir: configDir,
		Debug:     debug,
		Config:    cfg,
		Logger: logger.New(
			logger.WithDebug(debug),
			logger.WithPretty(true),
			logger.WithSource(debug),
			logger.WithWriter(cmd.ErrOrStderr()),
		),
	}, nil
}

// Connect is Load plus an API client and the current session.
func Connect(cmd *cobra.Command) (*Env, error) {
	env, err := Load(cmd)
	if err != nil {
		return nil, err
	}

	timeout, err := env.Config.RequestTimeout()
	if err != nil {
		return nil, err
	}

	env.Client, err = api.NewClient(api.Config{
		BaseURL: env.Config.Client.APITarget,
		Timeout: timeout,
		Logger:  env.Logger,
	})
	if err != nil {
		return nil, err
	}

	mgr, err := session.NewManager(env.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	env.Session, err = mgr.Current()
	if errors.Is(err, session.ErrNoSession) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return env, nil
}

// Throttle returns the render throttle settings from config.
func (e *Env) Throttle() throttle.Config {
	return throttle.Config{
		Interval:         time.Duration(e.Config.Render.IntervalMS) * time.Millisecond,
		BoundaryInterval: time.Duration(e.Config.Render.BoundaryIntervalMS) * time.Millisecond,
	}
}

// DotDir returns the resolved .tutor directory.
func (e *Env) DotDir() (string, error) {
	return dotdir.NewManager().Target(e.ConfigDir)
}

// Markdown returns the answer renderer configured for output w. On a
// terminal narrower than render.word_wrap it wraps at the terminal width.
func (e *Env) Markdown(w io.Writer) *render.Markdown {
	style := render.ResolveStyle(e.Config.Render.Style, IsTerminal(w))
	wrap := int(e.Config.Render.WordWrap)
	if cols := TerminalWidth(w); cols > 0 && (wrap == 0 || cols < wrap) {
		wrap = cols
	}
	return render.NewMarkdown(style, wrap)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of w in columns, or 0 when w is not a
// terminal.
func TerminalWidth(w any) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return cols
}

// UseLogger replaces the logger, rebuilding the API client around it.
// Full-screen commands use it to move logs off the terminal.
func (e *Env) UseLogger(log *slog.Logger) error {
	e.Logger = log
	if e.Client == nil {
		return nil
	}

	timeout, err := e.Config.RequestTimeout()
	if err != nil {
		return err
	}
	e.Client, err = api.NewClient(api.Config{
		BaseURL: e.Config.Client.APITarget,
		Timeout: timeout,
		Logger:  log,
	})
	return err
}
