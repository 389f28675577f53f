package chatcmder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/chat"
	"github.com/papercomputeco/tutor/pkg/dotdir"
	"github.com/papercomputeco/tutor/pkg/utils"
)

// conversation is one chat thread as the front ends see it: the current
// conversation id, a pending image attachment and the active pointer in
// the dot directory.
type conversation struct {
	sender    *chat.Sender
	ddm       *dotdir.Manager
	configDir string
	logger    *slog.Logger

	model    string
	timeout  time.Duration
	maxImage int64

	id    string
	title string
	image string
}

// Send runs one chat cycle into r. A created or continued conversation
// becomes the active one even when the cycle failed part way.
func (c *conversation) Send(ctx context.Context, message string, r chat.Renderer) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.sender.Send(ctx, chat.Input{
		ConversationID: c.id,
		Message:        message,
		Model:          c.model,
		Image:          c.image,
	}, r)
	if reply == nil {
		return err
	}

	c.image = ""
	c.id = reply.ConversationID
	if reply.Created || c.title == "" {
		c.title = utils.FormatTitle(message, utils.TopicTitleLen)
	}

	if saveErr := c.ddm.SaveActive(&dotdir.ActiveConversation{
		SessionID: c.id,
		Title:     c.title,
		Model:     c.model,
		UpdatedAt: time.Now(),
	}, c.configDir); saveErr != nil {
		c.logger.Warn("saving active conversation", "error", saveErr)
	}

	return err
}

// Attach loads an image for the next Send.
func (c *conversation) Attach(path string) error {
	img, err := chat.LoadImage(path, c.maxImage)
	if err != nil {
		return err
	}
	c.image = img
	return nil
}

// Attached reports whether an image waits for the next Send.
func (c *conversation) Attached() bool {
	return c.image != ""
}

// Reset starts a fresh conversation on the next Send.
func (c *conversation) Reset() {
	c.id = ""
	c.title = ""
	c.image = ""
	if err := c.ddm.ClearActive(c.configDir); err != nil {
		c.logger.Warn("clearing active conversation", "error", err)
	}
}

// Title is the display title, or the default for a fresh conversation.
func (c *conversation) Title() string {
	if c.title == "" {
		return utils.DefaultTitle
	}
	return c.title
}

// ID is the current conversation id, empty before the first send.
func (c *conversation) ID() string {
	return c.id
}

// severity says how a send outcome is reported. Incomplete replies are kept
// and only warned about. Auth failures end the session.
type severity int

const (
	severityNone severity = iota
	severityWarn
	severityFail
	severityFatal
)

func classify(err error) severity {
	switch {
	case err == nil:
		return severityNone
	case errors.Is(err, chat.ErrIncomplete):
		return severityWarn
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrNoSession):
		return severityFatal
	default:
		return severityFail
	}
}

// parseCommand splits a slash command line. ok is false for plain text.
func parseCommand(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(line, " ")
	switch name {
	case "/exit", "/quit", "/new", "/image":
		return name, strings.TrimSpace(arg), true
	}
	return "", "", false
}
