package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/logger"
	"github.com/papercomputeco/tutor/pkg/stream"
	"github.com/papercomputeco/tutor/pkg/throttle"
)

// TimeoutMessage is reported when the caller's deadline expires mid-reply.
const TimeoutMessage = "timed out waiting for the model"

// Client is the part of the API client a Sender needs.
type Client interface {
	NewConversation(ctx context.Context, s api.Session, title, model string) (string, error)
	StreamChat(ctx context.Context, s api.Session, r api.ChatRequest) (io.ReadCloser, error)
}

// Input is one user turn.
type Input struct {
	// ConversationID continues an existing conversation. When empty a new
	// conversation is created first.
	ConversationID string

	Message string
	Model   string

	// Image is an optional data URL, see LoadImage.
	Image string
}

// Reply is what a send produced, even when it failed part way.
type Reply struct {
	ConversationID string

	// Created is true when this send started the conversation.
	Created bool

	Thinking string
	Content  string
}

// SenderConfig configures a Sender.
type SenderConfig struct {
	Client   Client
	Session  api.Session
	Throttle throttle.Config
	Logger   *slog.Logger
}

// Sender runs chat cycles against the backend. Only one Send may run at a
// time per conversation.
type Sender struct {
	client   Client
	session  api.Session
	throttle throttle.Config
	logger   *slog.Logger
}

func NewSender(cfg SenderConfig) *Sender {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Sender{
		client:   cfg.Client,
		session:  cfg.Session,
		throttle: cfg.Throttle,
		logger:   log,
	}
}

// Send delivers in and streams the reply into r. The returned Reply is
// non-nil whenever a conversation id was settled, so callers can keep the
// partial transcript. The error is a transport error, a *ProtocolError,
// ErrEmptyCompletion, ErrIncomplete or nil.
func (s *Sender) Send(ctx context.Context, in Input, r Renderer) (*Reply, error) {
	if strings.TrimSpace(in.Message) == "" && in.Image == "" {
		return nil, ErrEmptyInput
	}

	reply := &Reply{ConversationID: in.ConversationID}
	if reply.ConversationID == "" {
		id, err := s.client.NewConversation(ctx, s.session, "", in.Model)
		switch {
		case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrNoSession):
			return nil, err
		case err != nil:
			id = "session_" + uuid.NewString()
			s.logger.Warn("creating conversation failed, using a local session id",
				"error", err,
				"session_id", id,
			)
		}
		reply.ConversationID = id
		reply.Created = true
	}

	body, err := s.client.StreamChat(ctx, s.session, api.ChatRequest{
		SessionID: reply.ConversationID,
		Message:   in.Message,
		Model:     in.Model,
		Image:     in.Image,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return reply, &ProtocolError{Message: TimeoutMessage}
		}
		return reply, fmt.Errorf("sending message: %w", err)
	}
	defer body.Close()

	cycle := NewCycle(r, s.throttle)
	readErr := s.pump(ctx, stream.NewReader(body, s.logger), cycle)
	outcome := cycle.End()

	reply.Thinking = cycle.Thinking()
	reply.Content = cycle.Content()

	if readErr != nil && errors.Is(outcome, ErrIncomplete) {
		return reply, fmt.Errorf("reading reply: %w", readErr)
	}
	return reply, outcome
}

// pump applies frames until the cycle is terminal or the stream ends. A
// deadline on ctx becomes an error frame. Other read errors are returned.
func (s *Sender) pump(ctx context.Context, rd *stream.Reader, cycle *Cycle) error {
	for {
		f, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				cycle.Apply(stream.Error(TimeoutMessage))
				return nil
			}
			return err
		}

		s.logger.Debug("stream frame", "kind", f.Kind, "bytes", len(f.Text))
		cycle.Apply(f)
		if cycle.Terminal() {
			if n := rd.Dropped(); n > 0 {
				s.logger.Debug("dropped malformed stream lines", "count", n)
			}
			return nil
		}
	}
}
