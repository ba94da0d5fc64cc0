// Package web provides the embedded playground UI for the lavue parser.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/backend"
	"github.com/lemonberrylabs/lavue/pkg/driver"
	"github.com/lemonberrylabs/lavue/pkg/parser"
)

//go:embed templates/*.html
var templateFS embed.FS

// MaxSourceSize is the largest form submission the playground parses.
const MaxSourceSize = 64 * 1024

// Handler serves the playground pages.
type Handler struct {
	opts    parser.Options
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	Title string
	Data  interface{}
}

type playgroundContent struct {
	Source    string
	Resolve   bool
	Submitted bool
	Units     []ast.Unit
	Errors    []error
	Summary   *driver.Summary
	Operators map[string]int
}

// New creates a playground handler whose sessions use opts.
func New(opts parser.Options) *Handler {
	if opts.Precedence == nil {
		opts.Precedence = parser.DefaultPrecedence()
	}
	return &Handler{
		opts: opts,
		funcMap: template.FuncMap{
			"sexpr": sexpr,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page, title string, data interface{}) error {
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pageData{Title: title, Data: data}); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds playground routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.playground)
	app.Post("/ui", h.submit)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

func (h *Handler) playground(c *fiber.Ctx) error {
	return h.render(c, "playground.html", "playground", playgroundContent{
		Source:    "def add(a b) a+b*2;\nadd(1, 2)\n",
		Operators: h.opts.Precedence.Operators(),
	})
}

func (h *Handler) submit(c *fiber.Ctx) error {
	src := c.FormValue("source")
	if len(src) > MaxSourceSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).
			SendString(fmt.Sprintf("source size %d exceeds maximum %d bytes", len(src), MaxSourceSize))
	}

	content := playgroundContent{
		Source:    src,
		Resolve:   c.FormValue("resolve") == "on",
		Submitted: true,
		Operators: h.opts.Precedence.Operators(),
	}

	col := &backend.Collector{}
	var b driver.Backend = col
	if content.Resolve {
		b = backend.Chain{backend.NewRegistry(), col}
	}

	d := driver.New(strings.NewReader(src), driver.Config{Backend: b, Parser: h.opts})
	sum, err := d.Run(context.Background())
	if err != nil {
		return c.Status(500).SendString(err.Error())
	}
	content.Units = col.Units
	content.Errors = sum.Errors
	content.Summary = sum

	return h.render(c, "playground.html", "playground", content)
}

// --- Template Helpers ---

func sexpr(u ast.Unit) string {
	return ast.String(u)
}
