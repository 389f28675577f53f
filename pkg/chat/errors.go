package chat

import "errors"

var (
	// ErrEmptyCompletion means the stream finished successfully without a
	// single thinking or content fragment.
	ErrEmptyCompletion = errors.New("the model returned nothing, try again or switch models")

	// ErrIncomplete means the transport ended before a done or error frame.
	// Whatever was rendered is kept; callers usually report it as a warning.
	ErrIncomplete = errors.New("the reply ended before the model finished")

	// ErrEmptyInput rejects a send with neither text nor an image.
	ErrEmptyInput = errors.New("type a message or attach an image")

	// ErrImageTooLarge rejects an attachment over the configured limit.
	ErrImageTooLarge = errors.New("image is too large")

	// ErrNotImage rejects an attachment that does not sniff as an image.
	ErrNotImage = errors.New("attachment is not an image")
)

// ProtocolError is a failure the server reported inside the stream.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}
