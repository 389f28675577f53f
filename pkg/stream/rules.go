package stream

// DefaultErrorMessage is reported when an error frame names no message.
const DefaultErrorMessage = "the model reported an error"

// Rule extracts a text fragment from one known frame shape. Extract reports
// ok when the shape matched, even if the extracted text is empty; an empty
// match still stops the cascade.
type Rule struct {
	Name    string
	Extract func(obj map[string]any) (text string, ok bool)
}

// ThinkingRules are tried in order to find a reasoning fragment.
// Only non-empty strings match.
var ThinkingRules = []Rule{
	{Name: "message.thinking", Extract: nonEmptyAt("message", "thinking")},
	{Name: "thinking", Extract: nonEmptyAt("thinking")},
}

// ContentRules are tried in order to find an answer fragment.
var ContentRules = []Rule{
	{Name: "typed message", Extract: typedMessage},
	{Name: "message.content", Extract: stringAt("message", "content")},
	{Name: "content", Extract: stringAt("content")},
	{Name: "response", Extract: stringAt("response")},
}

// FirstMatch applies rules in order and returns the text of the first rule
// that matches along with its name.
func FirstMatch(rules []Rule, obj map[string]any) (text string, rule string, ok bool) {
	for _, r := range rules {
		if text, ok := r.Extract(obj); ok {
			return text, r.Name, true
		}
	}
	return "", "", false
}

// Classify turns one decoded JSON object into frames. Errors win over done,
// done wins over deltas, and an object carrying both reasoning and answer
// text yields the thinking frame before the content frame.
func Classify(obj map[string]any) []Frame {
	if truthy(obj["error"]) || obj["type"] == "error" {
		return []Frame{Error(errorMessage(obj))}
	}

	if obj["done"] == true || obj["type"] == "done" {
		return []Frame{Done()}
	}

	var frames []Frame
	if text, _, ok := FirstMatch(ThinkingRules, obj); ok {
		frames = append(frames, Thinking(text))
	}
	if text, _, ok := FirstMatch(ContentRules, obj); ok && text != "" {
		frames = append(frames, Content(text))
	}
	return frames
}

func errorMessage(obj map[string]any) string {
	for _, key := range []string{"message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return DefaultErrorMessage
}

// typedMessage matches {"type":"message","content":"..."} with non-empty content.
func typedMessage(obj map[string]any) (string, bool) {
	if obj["type"] != "message" {
		return "", false
	}
	s, ok := obj["content"].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func stringAt(path ...string) func(map[string]any) (string, bool) {
	return func(obj map[string]any) (string, bool) {
		v, ok := lookup(obj, path...)
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		return s, ok
	}
}

func nonEmptyAt(path ...string) func(map[string]any) (string, bool) {
	str := stringAt(path...)
	return func(obj map[string]any) (string, bool) {
		s, ok := str(obj)
		return s, ok && s != ""
	}
}

func lookup(obj map[string]any, path ...string) (any, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// truthy follows JSON-in-the-browser truthiness: null, false, 0 and ""
// are false, everything else is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
