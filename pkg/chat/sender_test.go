package chat_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/chat"
)

type fakeClient struct {
	convID    string
	convErr   error
	created   int
	body      io.Reader
	streamErr error
	requests  []api.ChatRequest
}

func (f *fakeClient) NewConversation(_ context.Context, _ api.Session, _, _ string) (string, error) {
	f.created++
	return f.convID, f.convErr
}

func (f *fakeClient) StreamChat(_ context.Context, _ api.Session, r api.ChatRequest) (io.ReadCloser, error) {
	f.requests = append(f.requests, r)
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return io.NopCloser(f.body), nil
}

const happyStream = `{"message":{"thinking":"The user asks "}}
{"message":{"thinking":"about limits."}}
{"message":{"content":"A **limit** "}}
{"message":{"content":"describes behaviour."}}
{"done":true}
`

var _ = Describe("Sender", func() {
	var (
		client *fakeClient
		rec    *recorder
		sender *chat.Sender
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recorder{}
		client = &fakeClient{convID: "42", body: strings.NewReader(happyStream)}
		sender = chat.NewSender(chat.SenderConfig{
			Client:  client,
			Session: api.Session{Token: "t"},
		})
	})

	It("creates a conversation and streams the reply", func() {
		reply, err := sender.Send(ctx, chat.Input{Message: "what is a limit?", Model: "m"}, rec)
		Expect(err).NotTo(HaveOccurred())

		Expect(reply.ConversationID).To(Equal("42"))
		Expect(reply.Created).To(BeTrue())
		Expect(reply.Thinking).To(Equal("The user asks about limits."))
		Expect(reply.Content).To(Equal("A **limit** describes behaviour."))

		Expect(client.requests).To(HaveLen(1))
		Expect(client.requests[0].SessionID).To(Equal("42"))
		Expect(client.requests[0].Message).To(Equal("what is a limit?"))
		Expect(client.requests[0].Model).To(Equal("m"))

		answers := rec.Answers()
		Expect(answers[len(answers)-1]).To(Equal("A **limit** describes behaviour."))
	})

	It("continues an existing conversation", func() {
		reply, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "and continuity?"}, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ConversationID).To(Equal("7"))
		Expect(reply.Created).To(BeFalse())
		Expect(client.created).To(Equal(0))
	})

	It("rejects empty input", func() {
		_, err := sender.Send(ctx, chat.Input{Message: "  \n"}, rec)
		Expect(err).To(MatchError(chat.ErrEmptyInput))
		Expect(client.requests).To(BeEmpty())
	})

	It("accepts an image without text", func() {
		_, err := sender.Send(ctx, chat.Input{ConversationID: "7", Image: "data:image/png;base64,AA=="}, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(client.requests[0].Image).To(Equal("data:image/png;base64,AA=="))
	})

	It("falls back to a local session id when creation fails", func() {
		client.convErr = errors.New("connection refused")

		reply, err := sender.Send(ctx, chat.Input{Message: "hi"}, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ConversationID).To(HavePrefix("session_"))
		Expect(client.requests[0].SessionID).To(Equal(reply.ConversationID))
	})

	It("returns authorization failures", func() {
		client.convErr = &api.StatusError{StatusCode: 401, Message: "expired"}

		reply, err := sender.Send(ctx, chat.Input{Message: "hi"}, rec)
		Expect(err).To(MatchError(api.ErrUnauthorized))
		Expect(reply).To(BeNil())
		Expect(client.requests).To(BeEmpty())
	})

	It("wraps transport failures", func() {
		client.streamErr = errors.New("connection reset")

		reply, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		Expect(err).To(MatchError(ContainSubstring("sending message: connection reset")))
		Expect(reply.ConversationID).To(Equal("7"))
	})

	It("turns a request deadline into a timeout", func() {
		client.streamErr = context.DeadlineExceeded

		_, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		var pe *chat.ProtocolError
		Expect(errors.As(err, &pe)).To(BeTrue())
		Expect(pe.Message).To(Equal(chat.TimeoutMessage))
	})

	It("reports server errors from the stream", func() {
		client.body = strings.NewReader("{\"message\":{\"content\":\"Par\"}}\n{\"error\":\"model overloaded\"}\n")

		reply, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		Expect(err).To(MatchError("model overloaded"))
		Expect(reply.Content).To(Equal("Par"))
	})

	It("reports an empty completion", func() {
		client.body = strings.NewReader("{\"done\":true}\n")

		_, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		Expect(err).To(MatchError(chat.ErrEmptyCompletion))
	})

	It("reports a stream that ends early", func() {
		client.body = strings.NewReader("{\"message\":{\"content\":\"Half\"}}\n")

		reply, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		Expect(err).To(MatchError(chat.ErrIncomplete))
		Expect(reply.Content).To(Equal("Half"))
	})

	It("reports read errors with the partial reply", func() {
		client.body = io.MultiReader(
			strings.NewReader("{\"message\":{\"content\":\"Half\"}}\n"),
			iotest.ErrReader(errors.New("connection reset by peer")),
		)

		reply, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		Expect(err).To(MatchError(ContainSubstring("reading reply")))
		Expect(err).To(MatchError(ContainSubstring("connection reset by peer")))
		Expect(reply.Content).To(Equal("Half"))
	})

	It("handles a final line without a newline", func() {
		client.body = strings.NewReader("{\"message\":{\"content\":\"ok\"}}\n{\"done\":true}")

		reply, err := sender.Send(ctx, chat.Input{ConversationID: "7", Message: "hi"}, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Content).To(Equal("ok"))
	})
})
