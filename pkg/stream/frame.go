// Package stream decodes the line-delimited JSON chat stream returned by
// POST /api/unified/chat/stream into typed frames.
//
// The wire carries one JSON object per "\n"-terminated line. Deliveries from
// the transport do not line up with lines, so Decoder buffers the trailing
// partial line between Feed calls and Finish parses whatever is left when
// the body ends. Reader wraps both behind a pull-style Next.
package stream

// Kind identifies what a Frame carries.
type Kind int

const (
	// KindThinking is a fragment of the model's reasoning text.
	KindThinking Kind = iota + 1

	// KindContent is a fragment of the markdown answer.
	KindContent

	// KindDone marks successful completion of the stream.
	KindDone

	// KindError carries a server-reported failure message.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindThinking:
		return "thinking"
	case KindContent:
		return "content"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Frame is one decoded unit of the chat stream. Text holds the delta for
// thinking and content frames and the message for error frames; it is
// empty for done frames.
type Frame struct {
	Kind Kind
	Text string
}

// Terminal reports whether the frame ends the stream.
func (f Frame) Terminal() bool {
	return f.Kind == KindDone || f.Kind == KindError
}

func Thinking(text string) Frame { return Frame{Kind: KindThinking, Text: text} }
func Content(text string) Frame  { return Frame{Kind: KindContent, Text: text} }
func Done() Frame                { return Frame{Kind: KindDone} }
func Error(msg string) Frame     { return Frame{Kind: KindError, Text: msg} }
