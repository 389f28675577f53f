package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/papercomputeco/tutor/pkg/api"
)

type conversation struct {
	summary  api.ConversationSummary
	messages []api.Message
}

type attempt struct {
	questionID int64
	chosen     string
	correct    bool
	at         api.Timestamp
}

// store holds all dev server state in memory.
type store struct {
	mu    sync.Mutex
	clock clock.PassiveClock

	conversations map[string]*conversation

	documents []api.Document
	summaries map[int64]string

	questions    map[int64]api.Question
	nextQuestion int64
	attempts     []attempt

	groups        map[int64]*api.Group
	nextGroup     int64
	questionGroup map[int64]int64
}

func newStore(clk clock.PassiveClock) *store {
	now := api.Timestamp{Time: clk.Now()}
	return &store{
		clock:         clk,
		conversations: map[string]*conversation{},
		documents: []api.Document{
			{ID: 1, Title: "Calculus I lecture notes", Status: "READY", SegmentCount: 42, UpdatedAt: now},
			{ID: 2, Title: "Linear algebra handbook", Status: "READY", SegmentCount: 31, UpdatedAt: now},
		},
		summaries: map[int64]string{
			1: "Limits, continuity and derivatives of single-variable functions.",
			2: "Vector spaces, linear maps, eigenvalues and diagonalization.",
		},
		questions:     map[int64]api.Question{},
		nextQuestion:  1,
		groups:        map[int64]*api.Group{},
		nextGroup:     1,
		questionGroup: map[int64]int64{},
	}
}

func (s *store) now() api.Timestamp {
	return api.Timestamp{Time: s.clock.Now()}
}

func (s *store) createConversation(title, model string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.conversations[id] = &conversation{summary: api.ConversationSummary{
		SessionID: id,
		Title:     title,
		ModelName: model,
		UpdatedAt: s.now(),
	}}
	return id
}

func (s *store) listConversations() []api.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.ConversationSummary, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c.summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt.Time) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt.Time)
	})
	return out
}

func (s *store) messages(id string) ([]api.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	return append([]api.Message(nil), c.messages...), true
}

func (s *store) deleteConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return false
	}
	delete(s.conversations, id)
	return true
}

// appendMessage records a turn, creating the conversation when the client
// chats under an id the server never issued.
func (s *store) appendMessage(id, model string, m api.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		c = &conversation{summary: api.ConversationSummary{SessionID: id, ModelName: model}}
		s.conversations[id] = c
	}
	if c.summary.Title == "" || (c.summary.Title == api.DefaultConversationTitle && m.Role == "user" && len(c.messages) == 0) {
		c.summary.Title = m.Content
	}
	c.messages = append(c.messages, m)
	c.summary.UpdatedAt = s.now()
}

func (s *store) listDocuments() []api.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Document(nil), s.documents...)
}

func (s *store) document(id int64) (api.Document, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.documents {
		if d.ID == id {
			return d, s.summaries[id], true
		}
	}
	return api.Document{}, "", false
}

func (s *store) deleteDocument(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.documents {
		if d.ID == id {
			s.documents = append(s.documents[:i], s.documents[i+1:]...)
			delete(s.summaries, id)
			return true
		}
	}
	return false
}

func (s *store) generateQuestions(doc api.Document, count int, types []string, hint string) []api.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic := doc.Title
	if hint != "" {
		topic = hint
	}

	out := make([]api.Question, 0, count)
	for i := range count {
		q := sampleQuestion(types[i%len(types)], topic, i+1)
		q.ID = s.nextQuestion
		q.DocumentID = doc.ID
		s.nextQuestion++
		s.questions[q.ID] = q
		out = append(out, q)
	}
	return out
}

func (s *store) recentQuestions(documentID int64) []api.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []api.Question{}
	for _, q := range s.questions {
		if documentID > 0 && q.DocumentID != documentID {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *store) attempt(id int64, chosen string) (*api.AttemptResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, false
	}

	normalized := api.NormalizeAnswer(q.Kind(), chosen)
	correct := strings.EqualFold(normalized, q.Answer)
	s.attempts = append(s.attempts, attempt{questionID: id, chosen: normalized, correct: correct, at: s.now()})

	return &api.AttemptResult{Correct: correct, Chosen: normalized}, true
}

func (s *store) overview() api.StatsOverview {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out api.StatsOverview
	for _, a := range s.attempts {
		out.TotalAttempts++
		if a.correct {
			out.CorrectAttempts++
		} else {
			out.WrongAttempts++
		}
	}
	if out.TotalAttempts > 0 {
		out.Accuracy = float64(out.CorrectAttempts) / float64(out.TotalAttempts)
	}
	return out
}

func (s *store) wrongbook(f api.WrongbookFilter) []api.WrongbookEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []api.WrongbookEntry{}
	for i := len(s.attempts) - 1; i >= 0; i-- {
		a := s.attempts[i]
		if a.correct {
			continue
		}

		gid, grouped := s.questionGroup[a.questionID]
		switch {
		case f.Ungrouped && grouped:
			continue
		case f.GroupID > 0 && gid != f.GroupID:
			continue
		}

		q := s.questions[a.questionID]
		entry := api.WrongbookEntry{
			Question:  q,
			Chosen:    a.chosen,
			CreatedAt: a.at,
			Snippets: []api.Snippet{{
				DocumentID:   q.DocumentID,
				SegmentIndex: int(q.ID % 7),
				Content:      s.summaries[q.DocumentID],
			}},
		}
		if grouped {
			entry.GroupID = &gid
		}
		out = append(out, entry)
	}
	return out
}

func (s *store) listGroups() []api.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) createGroup(name string) (api.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGroupNameLocked(0, name); err != nil {
		return api.Group{}, err
	}

	g := &api.Group{ID: s.nextGroup, Name: name}
	s.nextGroup++
	s.groups[g.ID] = g
	return *g, nil
}

func (s *store) renameGroup(id int64, name string) (api.Group, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return api.Group{}, false, nil
	}
	if err := s.checkGroupNameLocked(id, name); err != nil {
		return api.Group{}, true, err
	}
	g.Name = name
	return *g, true, nil
}

func (s *store) deleteGroup(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return false
	}
	delete(s.groups, id)
	for q, g := range s.questionGroup {
		if g == id {
			delete(s.questionGroup, q)
		}
	}
	return true
}

func (s *store) assignGroup(questionID int64, groupID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[questionID]; !ok {
		return fmt.Errorf("question %d not found", questionID)
	}
	if groupID == nil {
		delete(s.questionGroup, questionID)
		return nil
	}
	if _, ok := s.groups[*groupID]; !ok {
		return fmt.Errorf("group %d not found", *groupID)
	}
	s.questionGroup[questionID] = *groupID
	return nil
}

func (s *store) checkGroupNameLocked(id int64, name string) error {
	for _, g := range s.groups {
		if g.ID != id && g.Name == name {
			return fmt.Errorf("a group named %q already exists", name)
		}
	}
	return nil
}

func sampleQuestion(kind, topic string, n int) api.Question {
	q := api.Question{Topic: topic, Type: kind}

	switch kind {
	case api.QuestionMultiple:
		q.Stem = fmt.Sprintf("Which statements about %s are true? (%d)", topic, n)
		q.Options = []api.Option{
			{Key: "A", Text: "It is covered in the first chapter."},
			{Key: "B", Text: "It has nothing to do with the course."},
			{Key: "C", Text: "It appears in the worked examples."},
			{Key: "D", Text: "It is never examined."},
		}
		q.Answer = "A,C"
	case api.QuestionJudgment:
		q.Stem = fmt.Sprintf("True or false: %s builds on earlier material. (%d)", topic, n)
		q.Options = []api.Option{{Key: "A", Text: "True"}, {Key: "B", Text: "False"}}
		q.Answer = "A"
	case api.QuestionShort:
		q.Stem = fmt.Sprintf("In one word, what is the central idea of %s? (%d)", topic, n)
		q.Answer = "limit"
	default:
		q.Type = api.QuestionSingle
		q.Stem = fmt.Sprintf("Which chapter introduces %s? (%d)", topic, n)
		q.Options = []api.Option{
			{Key: "A", Text: "Chapter 1"},
			{Key: "B", Text: "Chapter 4"},
			{Key: "C", Text: "Chapter 7"},
			{Key: "D", Text: "The appendix"},
		}
		q.Answer = "A"
	}

	q.Explanation = fmt.Sprintf("The notes introduce %s early and return to it in the examples.", topic)
	return q
}
