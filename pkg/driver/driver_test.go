package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lemonberrylabs/lavue/pkg/ast"
	"github.com/lemonberrylabs/lavue/pkg/parser"
)

// collector records accepted units as S-expressions.
type collector struct {
	units []string
}

func (c *collector) Accept(unit ast.Unit) error {
	c.units = append(c.units, ast.String(unit))
	return nil
}

func run(t *testing.T, src string, backend Backend) (*Summary, string) {
	t.Helper()
	var out strings.Builder
	d := New(strings.NewReader(src), Config{Backend: backend, Out: &out})
	sum, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return sum, out.String()
}

func TestStatusOutput(t *testing.T) {
	_, out := run(t, "def f(x) x; extern g(); 1+2", nil)

	want := "ready> Parse a function definition\n" +
		"ready> ready> Parse an extern\n" +
		"ready> ready> Parse top-level expr\n" +
		"ready> "
	if out != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestUnitsReachBackend(t *testing.T) {
	c := &collector{}
	sum, _ := run(t, `
# a small program
extern sin(x);
def twice(a) a+a;
twice(sin(1)) * 2
`, c)

	want := []string{
		"(proto sin (x))",
		"(def (proto twice (a)) (+ a a))",
		"(def (proto __anon_expr ()) (* (call twice (call sin 1)) 2))",
	}
	if diff := cmp.Diff(want, c.units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if sum.Definitions != 1 || sum.Externs != 1 || sum.Expressions != 1 || len(sum.Errors) != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestEmptyInput(t *testing.T) {
	c := &collector{}
	sum, out := run(t, "  # nothing here\n", c)
	if out != "ready> " {
		t.Errorf("expected a single prompt, got %q", out)
	}
	if len(c.units) != 0 || len(sum.Errors) != 0 {
		t.Errorf("expected no units or errors, got %v %v", c.units, sum.Errors)
	}
}

func TestRecoveryKeepsTrailingExtern(t *testing.T) {
	c := &collector{}
	sum, out := run(t, "def )( extern foo()", c)

	if len(sum.Errors) == 0 {
		t.Fatal("expected at least one error")
	}
	if diff := cmp.Diff([]string{"(proto foo ())"}, c.units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "LogError: expect function name in prototype\n") {
		t.Errorf("expected prototype error in output, got %q", out)
	}
	if !strings.Contains(out, "Parse an extern\n") {
		t.Errorf("expected extern status in output, got %q", out)
	}
}

func TestRecoverySkipsOneToken(t *testing.T) {
	c := &collector{}
	sum, out := run(t, ") 4", c)

	if len(sum.Errors) != 1 {
		t.Fatalf("expected one error, got %v", sum.Errors)
	}
	if !strings.Contains(out, "LogError: unknown token when expecting an expression\n") {
		t.Errorf("unexpected output %q", out)
	}
	if diff := cmp.Diff([]string{"(def (proto __anon_expr ()) 4)"}, c.units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoveryMissingComma(t *testing.T) {
	c := &collector{}
	sum, _ := run(t, "foo(1 2); def ok() 1", c)

	if len(sum.Errors) == 0 {
		t.Fatal("expected an error")
	}
	if c.units[len(c.units)-1] != "(def (proto ok ()) 1)" {
		t.Errorf("expected trailing definition to parse, got %v", c.units)
	}
	for _, u := range c.units {
		if strings.Contains(u, "foo") {
			t.Errorf("partial call reached the backend: %s", u)
		}
	}
}

func TestGarbageTerminates(t *testing.T) {
	src := strings.Repeat(")(,;def extern ( 1.2.3 é", 200)
	sum, _ := run(t, src, nil)
	if len(sum.Errors) == 0 {
		t.Error("expected errors for garbage input")
	}
}

func TestBackendFailureRecovers(t *testing.T) {
	var accepted []string
	backend := BackendFunc(func(unit ast.Unit) error {
		if p, ok := unit.(*ast.Prototype); ok && p.Name == "bad" {
			return errors.New("backend rejected bad")
		}
		accepted = append(accepted, ast.String(unit))
		return nil
	})

	sum, out := run(t, "extern bad() extern good()", backend)

	if !strings.Contains(out, "Parse an extern\nLogError: backend rejected bad\n") {
		t.Errorf("expected status then backend error, got %q", out)
	}
	if diff := cmp.Diff([]string{"(proto good ())"}, accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
	if sum.Externs != 1 || len(sum.Errors) != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestBackendFailureKeepsNextExpression(t *testing.T) {
	c := &collector{}
	backend := BackendFunc(func(unit ast.Unit) error {
		if p, ok := unit.(*ast.Prototype); ok && p.Name == "bad" {
			return errors.New("backend rejected bad")
		}
		return c.Accept(unit)
	})

	sum, out := run(t, "extern bad()\n1+2\n", backend)

	want := "ready> Parse an extern\n" +
		"LogError: backend rejected bad\n" +
		"ready> Parse top-level expr\n" +
		"ready> "
	if out != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q", out, want)
	}
	if diff := cmp.Diff([]string{"(def (proto __anon_expr ()) (+ 1 2))"}, c.units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if len(sum.Errors) != 1 || sum.Expressions != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRecoverySkipsSemicolonAtFailure(t *testing.T) {
	c := &collector{}
	sum, out := run(t, "1+;2", c)

	want := "ready> LogError: unknown token when expecting an expression\n" +
		"ready> Parse top-level expr\n" +
		"ready> "
	if out != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q", out, want)
	}
	if diff := cmp.Diff([]string{"(def (proto __anon_expr ()) 2)"}, c.units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if len(sum.Errors) != 1 {
		t.Errorf("expected one error, got %v", sum.Errors)
	}
}

func TestParserOptionsApply(t *testing.T) {
	prec := parser.DefaultPrecedence()
	if err := prec.Set('>', 10); err != nil {
		t.Fatalf("set: %v", err)
	}

	c := &collector{}
	var out strings.Builder
	d := New(strings.NewReader("a > b"), Config{
		Backend: c,
		Out:     &out,
		Parser:  parser.Options{Precedence: prec},
	})
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if diff := cmp.Diff([]string{"(def (proto __anon_expr ()) (> a b))"}, c.units); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomPrompt(t *testing.T) {
	var out strings.Builder
	d := New(strings.NewReader("1"), Config{Out: &out, Prompt: "> "})
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out.String() != "> Parse top-level expr\n> " {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(strings.NewReader("1; 2; 3"), Config{})
	sum, err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sum.Expressions != 0 {
		t.Errorf("expected no units processed, got %+v", sum)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestReadErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	d := New(errReader{err: boom}, Config{})
	_, err := d.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestMessage(t *testing.T) {
	perr := &parser.Error{Message: "expect ')'"}
	if got := Message(perr); got != "expect ')'" {
		t.Errorf("got %q", got)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Errorf("got %q", got)
	}
}
