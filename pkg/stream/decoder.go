package stream

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/papercomputeco/tutor/pkg/logger"
)

// Decoder splits incrementally delivered text into lines and classifies
// each complete line. It is not safe for concurrent use; one goroutine
// drives it for the lifetime of a stream.
type Decoder struct {
	// pending holds text after the last "\n" seen so far.
	pending string
	dropped int
	logger  *slog.Logger
}

// NewDecoder returns a Decoder that logs dropped lines at debug level.
// A nil logger discards them.
func NewDecoder(log *slog.Logger) *Decoder {
	if log == nil {
		log = logger.Nop()
	}
	return &Decoder{logger: log}
}

// Feed appends chunk to the pending buffer and returns the frames of every
// line it completed, in order.
func (d *Decoder) Feed(chunk string) []Frame {
	data := d.pending + chunk

	var frames []Frame
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		frames = append(frames, d.parseLine(data[:i])...)
		data = data[i+1:]
	}
	d.pending = data

	return frames
}

// Finish parses whatever remains in the pending buffer. The transport may
// close without a trailing newline, so the last line is still honored.
func (d *Decoder) Finish() []Frame {
	line := d.pending
	d.pending = ""
	return d.parseLine(line)
}

// Pending returns the buffered partial line.
func (d *Decoder) Pending() string {
	return d.pending
}

// Dropped returns how many non-blank lines were discarded as malformed.
func (d *Decoder) Dropped() int {
	return d.dropped
}

func (d *Decoder) parseLine(line string) []Frame {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(line), &v); err != nil {
		d.dropped++
		d.logger.Debug("dropping malformed stream line", "error", err, "line", line)
		return nil
	}

	obj, ok := v.(map[string]any)
	if !ok {
		d.dropped++
		d.logger.Debug("dropping non-object stream line", "line", line)
		return nil
	}

	return Classify(obj)
}
