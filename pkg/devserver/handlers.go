package devserver

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/tutor/pkg/api"
)

func (s *Server) handleListConversations(c *fiber.Ctx) error {
	return c.JSON(s.store.listConversations())
}

func (s *Server) handleNewConversation(c *fiber.Ctx) error {
	var body struct {
		Title     string `json:"title"`
		ModelName string `json:"modelName"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Title == "" {
		body.Title = api.DefaultConversationTitle
	}

	id := s.store.createConversation(body.Title, body.ModelName)
	return c.SendString(id)
}

func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	msgs, ok := s.store.messages(c.Params("id"))
	if !ok {
		return notFound(c, "conversation not found")
	}
	return c.JSON(msgs)
}

func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	if !s.store.deleteConversation(c.Params("id")) {
		return notFound(c, "conversation not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	return c.JSON(s.store.listDocuments())
}

func (s *Server) handleDocumentSummary(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid document id")
	}

	_, summary, ok := s.store.document(int64(id))
	if !ok {
		return notFound(c, "document not found")
	}
	return c.JSON(fiber.Map{"summary": summary})
}

func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid document id")
	}
	if !s.store.deleteDocument(int64(id)) {
		return notFound(c, "document not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

const maxGenerated = 10

func (s *Server) handleGenerateQuestions(c *fiber.Ctx) error {
	var req api.QuestionGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	doc, _, ok := s.store.document(req.DocumentID)
	if !ok {
		return notFound(c, "document not found")
	}

	count := req.Count
	if count <= 0 {
		count = 3
	}
	count = min(count, maxGenerated)

	types := req.Types
	if len(types) == 0 {
		types = []string{api.QuestionSingle}
	}

	return c.JSON(s.store.generateQuestions(doc, count, types, strings.TrimSpace(req.ChapterHint)))
}

func (s *Server) handleRecentQuestions(c *fiber.Ctx) error {
	return c.JSON(s.store.recentQuestions(int64(c.QueryInt("documentId"))))
}

func (s *Server) handleAttempt(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid question id")
	}

	var body struct {
		Chosen string `json:"chosen"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Chosen) == "" {
		return badRequest(c, "an answer is required")
	}

	res, ok := s.store.attempt(int64(id), body.Chosen)
	if !ok {
		return notFound(c, "question not found")
	}
	return c.JSON(res)
}

func (s *Server) handleStatsOverview(c *fiber.Ctx) error {
	return c.JSON(s.store.overview())
}

func (s *Server) handleWrongbook(c *fiber.Ctx) error {
	f := api.WrongbookFilter{
		GroupID:   int64(c.QueryInt("groupId")),
		Ungrouped: c.QueryBool("ungrouped"),
	}
	return c.JSON(s.store.wrongbook(f))
}

func (s *Server) handleListGroups(c *fiber.Ctx) error {
	return c.JSON(s.store.listGroups())
}

type groupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateGroup(c *fiber.Ctx) error {
	var body groupRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return badRequest(c, "group name is required")
	}

	g, err := s.store.createGroup(name)
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Message: err.Error()})
	}
	return c.JSON(g)
}

func (s *Server) handleRenameGroup(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}

	var body groupRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return badRequest(c, "group name is required")
	}

	g, found, err := s.store.renameGroup(int64(id), name)
	switch {
	case !found:
		return notFound(c, "group not found")
	case err != nil:
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Message: err.Error()})
	}
	return c.JSON(g)
}

func (s *Server) handleDeleteGroup(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	if !s.store.deleteGroup(int64(id)) {
		return notFound(c, "group not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleAssignGroup(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid question id")
	}

	var body struct {
		GroupID *int64 `json:"groupId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := s.store.assignGroup(int64(id), body.GroupID); err != nil {
		return notFound(c, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
