// Package relay is the mail dispatch collaborator of the authentication
// flow: a small HTTP service that accepts {to,subject,body} and delivers it
// over SMTP. It exists so SMTP credentials stay server-side.
package relay

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/gomail.v2"
)

type Logger interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] RELAY "+format+"\n", args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] RELAY "+format+"\n", args...)
}

// Sender delivers one message. The SMTP implementation is the production
// default; tests plug in a stub.
type Sender interface {
	Send(to, subject, text, html string) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(to, subject, text, html string) error

// Send satisfies the Sender interface.
func (f SenderFunc) Send(to, subject, text, html string) error {
	return f(to, subject, text, html)
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds the gomail backed Sender for the given config.
func NewSMTPSender(cfg Config) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.FromEmail,
	}
}

func (s *smtpSender) Send(to, subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	return s.dialer.DialAndSend(m)
}

type sendMailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// Message is an accepted alias for Body kept for older clients.
	Message string `json:"message"`
	HTML    string `json:"html"`
}

// Server is the relay HTTP service.
type Server struct {
	app    *fiber.App
	sender Sender
	logger Logger
}

type ServerOption func(*Server)

// WithLogger overrides the logger.
func WithLogger(logger Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a relay server around the given sender.
// This function panics if sender is nil.
func New(sender Sender, opts ...ServerOption) *Server {
	if sender == nil {
		panic("sender must be provided")
	}

	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		sender: sender,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.app.Post("/send-email", s.sendEmail)

	return s
}

// App exposes the fiber app, e.g. for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails.
func (s *Server) Listen(addr string) error {
	s.logger.Info("email relay listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) sendEmail(ctx *fiber.Ctx) error {
	req := sendMailRequest{}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"ok":    false,
			"error": "unable to parse request body",
		})
	}

	text := req.Body
	if text == "" {
		text = req.Message
	}

	if req.To == "" || req.Subject == "" || (text == "" && req.HTML == "") {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"ok":    false,
			"error": "Missing to/subject/body",
		})
	}

	html := req.HTML
	if html == "" {
		html = strings.ReplaceAll(text, "\n", "<br/>")
	}

	if err := s.sender.Send(req.To, req.Subject, text, html); err != nil {
		s.logger.Error("failed to send email: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{"ok": true})
}
