// Package chatcmder provides the chat command: a full-screen chat with the
// learning assistant, a plain line-oriented fallback and one-shot sends.
package chatcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/chat"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/dotdir"
	"github.com/papercomputeco/tutor/pkg/logger"
	"github.com/papercomputeco/tutor/pkg/render"
)

type chatCommander struct {
	newConversation bool
	conversationID  string
	image           string
	plain           bool

	style    string
	wordWrap uint
	maxImage uint
}

const chatLongDesc string = `Chat with the learning assistant.

Replies stream in as they are generated. When the model thinks before it
answers, its reasoning is shown in a collapsible "Thinking" panel above the
answer. When output is not a terminal, the reasoning and then the answer are
printed once the reply is complete.

Without a message, an interactive session starts: full screen on a terminal,
line by line otherwise or with --plain. With a message, it is sent once and
the answer printed. An empty message sends just the attached image.

The last conversation used is resumed unless --new or --conversation is
given. Inside a session:
  /new            start a new conversation
  /image <path>   attach an image to the next message
  /exit           leave

Examples:
  tutor chat
  tutor chat --new
  tutor chat "explain the epsilon-delta definition of a limit"
  tutor chat --image ./problem.png "what is wrong with my proof?"
  tutor chat --plain -c 3f2a9c1e`

const chatShortDesc string = "Chat with the learning assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmder.newConversation && cmder.conversationID != "" {
				return fmt.Errorf("--new and --conversation are mutually exclusive")
			}
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&cmder.newConversation, "new", false, "Start a new conversation")
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Continue the conversation with this id")
	cmd.Flags().StringVarP(&cmder.image, "image", "i", "", "Attach an image to the first message")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Use the line-oriented interface even on a terminal")

	cmdenv.AddClientFlags(cmd)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagStyle, &cmder.style)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagWordWrap, &cmder.wordWrap)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagMaxImage, &cmder.maxImage)

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, args []string) error {
	env, err := cmdenv.Connect(cmd)
	if err != nil {
		return err
	}

	fullScreen := len(args) == 0 && !c.plain &&
		cmdenv.IsTerminal(cmd.OutOrStdout()) && cmdenv.IsTerminal(cmd.InOrStdin())

	// Sessions keep a log file in the dot directory. The full-screen UI
	// logs only there; the plain session also keeps its stderr logger.
	if len(args) == 0 {
		dir, err := env.DotDir()
		if err != nil {
			return err
		}
		log, f, err := logger.File(dir, env.Debug)
		if err != nil {
			return err
		}
		defer f.Close()
		if !fullScreen {
			log = logger.Multi(env.Logger, log)
		}
		if err := env.UseLogger(log); err != nil {
			return err
		}
	}

	conv, err := c.openConversation(env)
	if err != nil {
		return err
	}

	if c.image != "" {
		if err := conv.Attach(c.image); err != nil {
			return err
		}
	}

	switch {
	case len(args) > 0:
		return sendOnce(cmd, env, conv, strings.Join(args, " "))
	case fullScreen:
		return runTUI(cmd, env, conv)
	default:
		return runPlain(cmd, env, conv)
	}
}

func (c *chatCommander) openConversation(env *cmdenv.Env) (*conversation, error) {
	timeout, err := env.Config.RequestTimeout()
	if err != nil {
		return nil, err
	}

	conv := &conversation{
		sender: chat.NewSender(chat.SenderConfig{
			Client:   env.Client,
			Session:  env.Session,
			Throttle: env.Throttle(),
			Logger:   env.Logger,
		}),
		ddm:       dotdir.NewManager(),
		configDir: env.ConfigDir,
		logger:    env.Logger,
		model:     env.Config.Client.Model,
		timeout:   timeout,
		maxImage:  int64(env.Config.Chat.MaxImageBytes),
	}

	switch {
	case c.conversationID != "":
		conv.id = c.conversationID
	case c.newConversation:
		conv.Reset()
	default:
		active, err := conv.ddm.LoadActive(env.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("loading active conversation: %w", err)
		}
		if active != nil {
			conv.id = active.SessionID
			conv.title = active.Title
		}
	}

	return conv, nil
}

// sendOnce sends a single message and prints the reply.
func sendOnce(cmd *cobra.Command, env *cmdenv.Env, conv *conversation, message string) error {
	out := cmd.OutOrStdout()
	term := render.NewTerminal(render.TerminalConfig{
		Out:      out,
		TTY:      cmdenv.IsTerminal(out),
		Width:    cmdenv.TerminalWidth(out),
		Markdown: env.Markdown(out),
	})

	err := conv.Send(cmd.Context(), message, term)
	term.Finish()

	if classify(err) == severityWarn {
		cliui.Warn(cmd.ErrOrStderr(), "%v", err)
		return nil
	}
	return err
}

// report prints a failed send and says whether the session can continue.
func report(w io.Writer, err error) bool {
	switch classify(err) {
	case severityWarn:
		cliui.Warn(w, "%v", err)
	case severityFail:
		cliui.Fail(w, err)
	case severityFatal:
		return false
	}
	return true
}
