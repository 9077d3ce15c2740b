package httpapi

import (
	"context"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mihhailt/telebridge/internal/logging"
)

// Server exposes the relay over HTTP.
type Server struct {
	app         *fiber.App
	db          *sql.DB
	users       UserService
	relay       RelayService
	attachments AttachmentService
	jwtSecret   []byte
	logger      logging.Logger
}

type Options struct {
	DB          *sql.DB
	Users       UserService
	Relay       RelayService
	Attachments AttachmentService
	JWTSecret   []byte
	Logger      logging.Logger
	Registry    *prometheus.Registry
}

func NewServer(opts Options) *Server {
	s := &Server{
		app:         fiber.New(fiber.Config{DisableStartupMessage: true}),
		db:          opts.DB,
		users:       opts.Users,
		relay:       opts.Relay,
		attachments: opts.Attachments,
		jwtSecret:   opts.JWTSecret,
		logger:      opts.Logger.With("module", "httpapi"),
	}

	s.app.Use(recover.New())

	s.registerRoutes(opts.Registry)

	return s
}

func (s *Server) registerRoutes(registry *prometheus.Registry) {
	s.app.Get("/healthz", s.handleHealthz)

	if registry != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	authGroup := s.app.Group("/auth")
	authGroup.Post("/register", s.handleRegister)
	authGroup.Post("/token", s.handleLogin)
	authGroup.Post("/refresh", s.handleRefresh)

	usersGroup := s.app.Group("/users", s.authRequired)
	usersGroup.Get("/me", s.handleCurrentUser)
	usersGroup.Put("/me", s.handleUpdateProfile)
	usersGroup.Post("/connect-telegram", s.handleConnectTelegram)

	s.app.Post("/telegram/link/:chatID", s.authRequired, s.handleLinkDirect)
	s.app.Delete("/telegram/unlink", s.authRequired, s.handleUnlink)

	messagesGroup := s.app.Group("/messages", s.authRequired)
	messagesGroup.Post("/", s.handleSendMessage)
	messagesGroup.Post("/bot", s.handleSendBotMessage)
	messagesGroup.Get("/", s.handleListMessages)
	messagesGroup.Get("/stats", s.handleMessageStats)
	messagesGroup.Get("/users", s.handleListRecipients)
	messagesGroup.Get("/chat/:userID", s.handleListConversation)

	attachmentsGroup := s.app.Group("/attachments", s.authRequired)
	attachmentsGroup.Post("/presign-upload", s.handlePresignUpload)
	attachmentsGroup.Get("/url", s.handlePresignDownload)
}

// Listen blocks serving HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
