package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const readBufferSize = 32 * 1024

// Reader pulls frames from an io.Reader, typically an HTTP response body.
//
//	┌──────────────────┐
//	│ source io.Reader │  arbitrary byte chunks
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│  UTF-8 carry     │  split runes held back
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│ Decoder.Feed     │  complete lines → frames
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│   Reader.Next    │
//	└──────────────────┘
//
// Reader never closes src; the caller owns it.
type Reader struct {
	src   io.Reader
	dec   *Decoder
	buf   []byte
	carry []byte
	queue []Frame
	err   error
}

// NewReader returns a Reader decoding frames from src.
func NewReader(src io.Reader, log *slog.Logger) *Reader {
	return &Reader{
		src: src,
		dec: NewDecoder(log),
		buf: make([]byte, readBufferSize),
	}
}

// Next blocks until the next frame is available. After the source is
// exhausted and the trailing line has been decoded, Next returns io.EOF.
// A read error other than io.EOF is returned once queued frames drain and
// on every call after that.
func (r *Reader) Next() (Frame, error) {
	for {
		if len(r.queue) > 0 {
			f := r.queue[0]
			r.queue = r.queue[1:]
			return f, nil
		}
		if r.err != nil {
			return Frame{}, r.err
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.queue = append(r.queue, r.dec.Feed(r.decode(r.buf[:n]))...)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if len(r.carry) > 0 {
				tail := strings.ToValidUTF8(string(r.carry), string(utf8.RuneError))
				r.carry = nil
				r.queue = append(r.queue, r.dec.Feed(tail)...)
			}
			r.queue = append(r.queue, r.dec.Finish()...)
			r.err = io.EOF
		default:
			r.err = fmt.Errorf("reading chat stream: %w", err)
		}
	}
}

// Dropped returns how many malformed lines have been skipped so far.
func (r *Reader) Dropped() int {
	return r.dec.Dropped()
}

// decode converts p to text, holding back an incomplete trailing UTF-8
// sequence until the next read completes it.
func (r *Reader) decode(p []byte) string {
	data := p
	if len(r.carry) > 0 {
		data = append(r.carry, p...)
	}

	cut := incompleteSuffix(data)
	r.carry = append([]byte(nil), data[cut:]...)

	return string(data[:cut])
}

// incompleteSuffix returns the index where a trailing partial rune begins,
// or len(p) when p ends on a rune boundary.
func incompleteSuffix(p []byte) int {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:]) {
			return len(p)
		}
		return i
	}
	return len(p)
}
