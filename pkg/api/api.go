// Package api implements the lavue HTTP parse service. Each request runs
// its own driver session over the submitted source.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/backend"
	"github.com/lemonberrylabs/lavue/pkg/driver"
	"github.com/lemonberrylabs/lavue/pkg/lexer"
	"github.com/lemonberrylabs/lavue/pkg/parser"
)

// MaxSourceSize is the largest source accepted per request, in bytes.
const MaxSourceSize = 64 * 1024

// ParseTimeout bounds the work done for one request.
const ParseTimeout = 10 * time.Second

// Server is the HTTP parse service.
type Server struct {
	app  *fiber.App
	opts parser.Options
}

// New creates a server whose sessions use opts.
func New(opts parser.Options) *Server {
	if opts.Precedence == nil {
		opts.Precedence = parser.DefaultPrecedence()
	}
	srv := &Server{opts: opts}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Get("/healthz", srv.health)
	app.Get("/v1/operators", srv.operators)
	app.Post("/v1/parse", srv.parse)
	app.Post("/v1/tokenize", srv.tokenize)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

type sourceRequest struct {
	Source  string `json:"source"`
	Resolve bool   `json:"resolve"`
}

type unitError struct {
	Message string    `json:"message"`
	Kind    string    `json:"kind"`
	Pos     lexer.Pos `json:"pos"`
}

type tokenJSON struct {
	Kind  string    `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Value *float64  `json:"value,omitempty"`
	Pos   lexer.Pos `json:"pos"`
}

func errorJSON(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) operators(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"operators": s.opts.Precedence.Operators()})
}

// readSource parses and validates the request body. A non-nil error means
// the response has already been written.
func (s *Server) readSource(c *fiber.Ctx) (*sourceRequest, bool, error) {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, false, errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT",
			fmt.Sprintf("invalid request body: %v", err))
	}
	if strings.TrimSpace(req.Source) == "" {
		return nil, false, errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "source is required")
	}
	if len(req.Source) > MaxSourceSize {
		return nil, false, errorJSON(c, fiber.StatusRequestEntityTooLarge, "RESOURCE_EXHAUSTED",
			fmt.Sprintf("source size %d exceeds maximum %d bytes", len(req.Source), MaxSourceSize))
	}
	return &req, true, nil
}

func (s *Server) parse(c *fiber.Ctx) error {
	req, ok, err := s.readSource(c)
	if !ok {
		return err
	}

	col := &backend.Collector{}
	var b driver.Backend = col
	if req.Resolve {
		b = backend.Chain{backend.NewRegistry(), col}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), ParseTimeout)
	defer cancel()

	d := driver.New(strings.NewReader(req.Source), driver.Config{Backend: b, Parser: s.opts})
	sum, err := d.Run(ctx)
	if err != nil {
		log.Printf("parse request aborted: %v", err)
		return errorJSON(c, fiber.StatusServiceUnavailable, "DEADLINE_EXCEEDED", err.Error())
	}

	units := make([]*ast.Doc, len(col.Units))
	for i, u := range col.Units {
		units[i] = ast.ToDoc(u)
	}
	errs := make([]unitError, len(sum.Errors))
	for i, e := range sum.Errors {
		errs[i] = toUnitError(e)
	}

	return c.JSON(fiber.Map{
		"units":  units,
		"errors": errs,
		"summary": fiber.Map{
			"definitions": sum.Definitions,
			"externs":     sum.Externs,
			"expressions": sum.Expressions,
			"errors":      len(sum.Errors),
		},
	})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	req, ok, err := s.readSource(c)
	if !ok {
		return err
	}

	tokens := lexer.Tokenize(req.Source)
	items := make([]tokenJSON, len(tokens))
	for i, tok := range tokens {
		item := tokenJSON{Kind: tok.Kind.String(), Text: tok.Text, Pos: tok.Pos}
		if tok.Kind == lexer.KindNumber {
			v := tok.Num
			item.Value = &v
		}
		items[i] = item
	}
	return c.JSON(fiber.Map{"tokens": items})
}

func toUnitError(err error) unitError {
	var perr *parser.Error
	if errors.As(err, &perr) {
		return unitError{Message: perr.Message, Kind: "syntax", Pos: perr.Pos}
	}
	var rerr *backend.ResolveError
	if errors.As(err, &rerr) {
		return unitError{Message: rerr.Message, Kind: "resolve", Pos: rerr.Pos}
	}
	return unitError{Message: err.Error(), Kind: "backend"}
}
