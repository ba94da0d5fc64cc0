package web

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/lavue/pkg/parser"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	New(parser.Options{}).Register(app)
	return app
}

func submit(t *testing.T, app *fiber.App, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/ui", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestPlaygroundPage(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ui", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	if !strings.Contains(html, "<textarea") {
		t.Error("expected source form in response")
	}
	if strings.Contains(html, "<h3>Units</h3>") {
		t.Error("expected no results before submission")
	}
}

func TestRootRedirects(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/ui" {
		t.Errorf("expected redirect to /ui, got %q", loc)
	}
}

func TestSubmitShowsUnits(t *testing.T) {
	app := setupTestApp(t)

	code, html := submit(t, app, url.Values{"source": {"def f(x) x*2; f(3)"}})
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	for _, want := range []string{
		"(def (proto f (x)) (* x 2))",
		"(call f 3)",
		"1 definitions",
		"1 expressions",
		"0 errors",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestSubmitShowsErrors(t *testing.T) {
	app := setupTestApp(t)

	code, html := submit(t, app, url.Values{"source": {"def )( extern foo()"}})
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	if !strings.Contains(html, "expect function name in prototype") {
		t.Error("expected syntax error in response")
	}
	if !strings.Contains(html, "(proto foo ())") {
		t.Error("expected trailing extern to be shown")
	}
}

func TestSubmitResolve(t *testing.T) {
	app := setupTestApp(t)

	code, html := submit(t, app, url.Values{"source": {"def f(x) y"}, "resolve": {"on"}})
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	if !strings.Contains(html, "unknown variable name") {
		t.Error("expected resolve error in response")
	}
	if !strings.Contains(html, "No units parsed.") {
		t.Error("expected rejected definition to be dropped")
	}
}

func TestSubmitTooLarge(t *testing.T) {
	app := setupTestApp(t)

	code, _ := submit(t, app, url.Values{"source": {strings.Repeat("1;", MaxSourceSize)}})
	if code != 413 {
		t.Errorf("expected 413, got %d", code)
	}
}
