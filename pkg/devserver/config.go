// Package devserver is a local stand-in for the learning-assistant backend.
// It serves the conversation, chat stream, knowledge-base, question and
// wrongbook endpoints from memory with scripted model replies.
package devserver

import (
	"time"

	"k8s.io/utils/clock"
)

// Config is the dev server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Token is the only bearer token accepted. Empty accepts any
	// non-empty token.
	Token string

	// ChunkDelay is the pause between stream chunks.
	ChunkDelay time.Duration

	// BodyLimit caps request bodies; larger requests get a 413.
	// Zero uses DefaultBodyLimit.
	BodyLimit int

	Clock clock.Clock
}

const DefaultBodyLimit = 12 << 20
