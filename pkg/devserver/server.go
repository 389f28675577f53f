package devserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"k8s.io/utils/clock"

	"github.com/papercomputeco/tutor/pkg/logger"
)

// Server is the dev server.
type Server struct {
	config Config
	store  *store
	logger *slog.Logger
	app    *fiber.App
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewServer creates a dev server seeded with sample documents.
func NewServer(config Config, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if config.Clock == nil {
		config.Clock = clock.RealClock{}
	}
	if config.BodyLimit <= 0 {
		config.BodyLimit = DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
	})

	s := &Server{
		config: config,
		store:  newStore(config.Clock),
		logger: log,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	routes := app.Group("/api", s.requireToken)

	routes.Get("/unified/conversation/list/detail", s.handleListConversations)
	routes.Post("/unified/conversation/new", s.handleNewConversation)
	routes.Get("/unified/conversation/:id", s.handleGetConversation)
	routes.Delete("/unified/conversation/:id", s.handleDeleteConversation)
	routes.Post("/unified/chat/stream", s.handleChatStream)

	routes.Get("/knowledge/documents", s.handleListDocuments)
	routes.Get("/knowledge/documents/:id/summary", s.handleDocumentSummary)
	routes.Delete("/knowledge/documents/:id", s.handleDeleteDocument)

	routes.Post("/questions/generate", s.handleGenerateQuestions)
	routes.Get("/questions/recent", s.handleRecentQuestions)
	routes.Post("/questions/:id/attempt", s.handleAttempt)

	routes.Get("/stats/overview", s.handleStatsOverview)
	routes.Get("/stats/wrongbook", s.handleWrongbook)

	routes.Get("/wrongbook/groups", s.handleListGroups)
	routes.Post("/wrongbook/groups", s.handleCreateGroup)
	routes.Put("/wrongbook/groups/:id", s.handleRenameGroup)
	routes.Delete("/wrongbook/groups/:id", s.handleDeleteGroup)
	routes.Put("/wrongbook/questions/:id/group", s.handleAssignGroup)

	return s
}

// Run starts the dev server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting dev server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the dev server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Handler exposes the app as a net/http handler. Streamed bodies are
// buffered in full before they are written.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) requireToken(c *fiber.Ctx) error {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || (s.config.Token != "" && token != s.config.Token) {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Message: "login expired, please sign in again"})
	}
	return c.Next()
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{Message: msg})
}
