package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/tutor/pkg/api"
)

// Scripts are picked by a leading command in the chat message.
const (
	ScriptDefault = "default"
	ScriptError   = "/error"
	ScriptEmpty   = "/empty"
	ScriptCut     = "/cut"
	ScriptPlain   = "/plain"
)

// chunkSize splits lines across writes so clients see partial lines.
const chunkSize = 7

// scriptFor returns the stream lines for a message. Frames use every
// field shape a backend may send so clients exercise the full cascade.
func scriptFor(message string, hasImage bool) (lines []map[string]any, answer string) {
	fields := strings.Fields(message)
	cmd := ScriptDefault
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		cmd = fields[0]
	}

	switch cmd {
	case ScriptError:
		return []map[string]any{
			{"message": map[string]any{"thinking": "Checking the request. "}},
			{"message": map[string]any{"content": "Partial "}},
			{"type": "error", "message": "the model is overloaded, try again later"},
		}, "Partial "

	case ScriptEmpty:
		return []map[string]any{{"done": true}}, ""

	case ScriptCut:
		return []map[string]any{
			{"message": map[string]any{"content": "This reply stops "}},
			{"content": "half way"},
		}, "This reply stops half way"

	case ScriptPlain:
		return []map[string]any{
			{"response": "No thinking, "},
			{"type": "message", "content": "just an answer."},
			{"type": "done"},
		}, "No thinking, just an answer."
	}

	topic := strings.Join(fields, " ")
	if topic == "" && hasImage {
		topic = "the attached image"
	}

	content := []string{
		fmt.Sprintf("## %s\n\n", topic),
		"Here is a short explanation. ",
		"A **limit** describes the value a function approaches.\n\n",
		"- start from the definition\n",
		"- work an example\n\n",
		"```text\nlim x->a f(x) = L\n```\n",
	}

	lines = []map[string]any{
		{"message": map[string]any{"role": "assistant", "thinking": "The student asks about "}},
		{"thinking": topic + ". "},
		{"message": map[string]any{"thinking": "I will keep it short."}},
	}
	for i, c := range content {
		if i%2 == 0 {
			lines = append(lines, map[string]any{"message": map[string]any{"role": "assistant", "content": c}})
		} else {
			lines = append(lines, map[string]any{"type": "message", "content": c})
		}
	}
	lines = append(lines, map[string]any{"done": true, "message": map[string]any{"content": ""}})

	return lines, strings.Join(content, "")
}

func (s *Server) handleChatStream(c *fiber.Ctx) error {
	var req api.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SessionID == "" {
		return badRequest(c, "sessionId is required")
	}
	if strings.TrimSpace(req.Message) == "" && req.Image == "" {
		return badRequest(c, "message or image is required")
	}

	user := api.Message{Role: "user", Content: req.Message}
	if req.Image != "" {
		user.Images = []string{req.Image}
	}
	s.store.appendMessage(req.SessionID, req.Model, user)

	lines, answer := scriptFor(req.Message, req.Image != "")

	s.logger.Debug("streaming scripted reply",
		"session_id", req.SessionID,
		"lines", len(lines),
	)

	// The RequestCtx is recycled after the handler returns, so the writer
	// goroutine only sees copies.
	sessionID, model := req.SessionID, req.Model

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()

		for _, line := range lines {
			data, err := json.Marshal(line)
			if err != nil {
				_ = pw.CloseWithError(err)
				return
			}
			data = append(data, '\n')

			for len(data) > 0 {
				n := min(chunkSize, len(data))
				if _, err := pw.Write(data[:n]); err != nil {
					s.logger.Debug("client went away", "session_id", sessionID, "error", err)
					return
				}
				data = data[n:]
			}

			if s.config.ChunkDelay > 0 {
				s.config.Clock.Sleep(s.config.ChunkDelay)
			}
		}

		if answer != "" {
			s.store.appendMessage(sessionID, model, api.Message{Role: "assistant", Content: answer})
		}
	}()

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}
