package translate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minios-linux/yamltr/backend"
)

// ---------------------------------------------------------------------------
// Test backends
// ---------------------------------------------------------------------------

func identityBackend() backend.Backend {
	return backend.Func(func(_ context.Context, text, _, _ string) (string, error) {
		return text, nil
	})
}

func upperBackend() backend.Backend {
	return backend.Func(func(_ context.Context, text, _, _ string) (string, error) {
		return strings.ToUpper(text), nil
	})
}

func failingBackend(err error) backend.Backend {
	return backend.Func(func(context.Context, string, string, string) (string, error) {
		return "", err
	})
}

func newTestTranslator(t *testing.T, b backend.Backend, protected ...string) *Translator {
	t.Helper()
	tr, err := New(Options{
		Backend: b,
		Source:  "en",
		Target:  "tr",
		Protect: NewProtector(protected, MatchKey),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{Target: "tr"}); err == nil {
		t.Error("expected error without backend")
	}
	if _, err := New(Options{Backend: identityBackend()}); err == nil {
		t.Error("expected error without target language")
	}
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func TestText_Translates(t *testing.T) {
	tr := newTestTranslator(t, upperBackend())

	res := tr.Text(context.Background(), Path{"greeting"}, "Hello {name}!")
	if res.Outcome != Translated {
		t.Fatalf("outcome = %v, want translated", res.Outcome)
	}
	if res.Text != "HELLO {name}!" {
		t.Errorf("text = %q, want %q", res.Text, "HELLO {name}!")
	}
}

func TestText_IdentityKeepsVariables(t *testing.T) {
	tr := newTestTranslator(t, identityBackend())

	for _, in := range []string{"Hello {name}!", "Hi %user%", "Click <b>here</b>", "{a}{b} and %c%"} {
		res := tr.Text(context.Background(), Path{"k"}, in)
		if res.Text != in {
			t.Errorf("Text(%q) = %q, want unchanged", in, res.Text)
		}
	}
}

func TestText_TokenShapedSourceTextSurvives(t *testing.T) {
	in := "Type [[VAR0]] to insert {name}"
	res := newTestTranslator(t, backend.Passthrough{}).Text(context.Background(), Path{"help"}, in)
	if res.Outcome != Translated || res.Text != in {
		t.Fatalf("passthrough: outcome=%v text=%q, want translated %q", res.Outcome, res.Text, in)
	}

	res = newTestTranslator(t, upperBackend()).Text(context.Background(), Path{"help"}, "see [[var0]] for {x}")
	if want := "SEE [[var0]] FOR {x}"; res.Text != want {
		t.Fatalf("upper: text = %q, want %q", res.Text, want)
	}
}

func TestText_ProtectedKeyIsSkipped(t *testing.T) {
	var calls atomic.Int32
	b := backend.Func(func(_ context.Context, text, _, _ string) (string, error) {
		calls.Add(1)
		return "changed", nil
	})
	tr := newTestTranslator(t, b, "name")

	res := tr.Text(context.Background(), Path{"user", "name"}, "Admin")
	if res.Outcome != Skipped || res.Text != "Admin" {
		t.Fatalf("got %+v, want skipped Admin", res)
	}
	if calls.Load() != 0 {
		t.Errorf("backend called %d times for a protected value", calls.Load())
	}
}

func TestText_NothingToTranslate(t *testing.T) {
	var calls atomic.Int32
	b := backend.Func(func(_ context.Context, text, _, _ string) (string, error) {
		calls.Add(1)
		return "x", nil
	})
	tr := newTestTranslator(t, b)

	for _, in := range []string{"", "   ", "\n", "{name}", " %user% <br> "} {
		res := tr.Text(context.Background(), Path{"k"}, in)
		if res.Outcome != Untouched || res.Text != in {
			t.Errorf("Text(%q) = %+v, want untouched", in, res)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("backend called %d times", calls.Load())
	}
}

func TestText_BackendErrorFallsBack(t *testing.T) {
	boom := errors.New("service unavailable")
	tr := newTestTranslator(t, failingBackend(boom))

	res := tr.Text(context.Background(), Path{"title"}, "Hello {name}")
	if res.Outcome != FellBack {
		t.Fatalf("outcome = %v, want fell-back", res.Outcome)
	}
	if res.Text != "Hello {name}" {
		t.Errorf("text = %q, want the original input", res.Text)
	}
	var be *backend.Error
	if !errors.As(res.Err, &be) || !errors.Is(res.Err, boom) {
		t.Errorf("err = %v, want backend error wrapping %v", res.Err, boom)
	}
}

func TestText_BackendPanicFallsBack(t *testing.T) {
	b := backend.Func(func(context.Context, string, string, string) (string, error) {
		panic("nil map")
	})
	tr := newTestTranslator(t, b)

	res := tr.Text(context.Background(), Path{"title"}, "Hello")
	if res.Outcome != FellBack || res.Text != "Hello" {
		t.Fatalf("got %+v, want fell-back Hello", res)
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "panic: nil map") {
		t.Errorf("err = %v", res.Err)
	}
}

func TestText_ToleratesMangledPlaceholders(t *testing.T) {
	b := backend.Func(func(_ context.Context, text, _, _ string) (string, error) {
		text = strings.ReplaceAll(text, "[[VAR0]]", "[[ var0 ]]")
		return strings.Replace(text, "Hello", "Merhaba", 1), nil
	})
	tr := newTestTranslator(t, b)

	res := tr.Text(context.Background(), Path{"k"}, "Hello {name}")
	if res.Text != "Merhaba {name}" {
		t.Errorf("text = %q, want %q", res.Text, "Merhaba {name}")
	}
}

func TestText_PreservesSurroundingWhitespace(t *testing.T) {
	b := backend.Func(func(_ context.Context, text, _, _ string) (string, error) {
		if text != "Hello" {
			t.Errorf("backend got %q, want trimmed text", text)
		}
		return " Merhaba\n", nil
	})
	tr := newTestTranslator(t, b)

	res := tr.Text(context.Background(), Path{"k"}, "  Hello\n")
	if res.Text != "  Merhaba\n" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestText_PassesLanguages(t *testing.T) {
	b := backend.Func(func(_ context.Context, text, source, target string) (string, error) {
		return source + ">" + target, nil
	})
	tr, err := New(Options{Backend: b, Source: "auto", Target: "de"})
	if err != nil {
		t.Fatal(err)
	}

	if res := tr.Text(context.Background(), Path{"k"}, "x"); res.Text != "auto>de" {
		t.Errorf("text = %q", res.Text)
	}
}

// ---------------------------------------------------------------------------
// Path / Stats
// ---------------------------------------------------------------------------

func TestPath(t *testing.T) {
	p := Path{"a", "b"}
	c := p.Child("c")
	d := p.Child("d")

	if c.String() != "a.b.c" || d.String() != "a.b.d" {
		t.Errorf("children share storage: %v %v", c, d)
	}
	if c.Key() != "c" || Path(nil).Key() != "" {
		t.Errorf("unexpected keys")
	}
}

func TestStats(t *testing.T) {
	var s Stats
	for _, o := range []Outcome{Translated, Translated, Skipped, FellBack, Untouched} {
		s.Add(o)
	}
	s.Merge(Stats{Translated: 1, Untouched: 2})

	want := Stats{Translated: 3, Skipped: 1, FellBack: 1, Untouched: 3}
	if s != want {
		t.Errorf("stats = %+v, want %+v", s, want)
	}
	if s.Total() != 8 {
		t.Errorf("total = %d, want 8", s.Total())
	}
}

func TestOutcomeString(t *testing.T) {
	if FellBack.String() != "fell-back" || Outcome(42).String() != "outcome(42)" {
		t.Errorf("unexpected outcome strings")
	}
}
