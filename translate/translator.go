// Package translate translates the string values of a YAML document while
// keeping its structure, key order and formatting.
//
// A Translator masks template variables before each backend call, skips
// values under protected keys and falls back to the original text when the
// backend fails. Document fans top-level keys out to a worker pool and
// reassembles the results in input order.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/minios-linux/yamltr/backend"
	"github.com/minios-linux/yamltr/mask"
)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Backend performs the actual translation. Required.
	Backend backend.Backend
	// Source is the source language code ("auto" lets the backend detect it).
	Source string
	// Target is the target language code.
	Target string
	// Protect selects values that are copied verbatim. May be nil.
	Protect *Protector
	// Logger receives per-value log lines. Defaults to a discarding logger.
	Logger *slog.Logger
	// OnResult is called after every string value has been handled. It may
	// be called from several goroutines at once.
	OnResult func(path Path, original string, r Result)
}

// Translator translates single values and whole documents.
// It is safe for concurrent use.
type Translator struct {
	backend  backend.Backend
	source   string
	target   string
	protect  *Protector
	log      *slog.Logger
	onResult func(path Path, original string, r Result)
}

// New creates a Translator.
func New(opts Options) (*Translator, error) {
	if opts.Backend == nil {
		return nil, errors.New("translate: no backend configured")
	}
	if opts.Target == "" {
		return nil, errors.New("translate: no target language")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Translator{
		backend:  opts.Backend,
		source:   opts.Source,
		target:   opts.Target,
		protect:  opts.Protect,
		log:      log,
		onResult: opts.OnResult,
	}, nil
}

// ---------------------------------------------------------------------------
// Single values
// ---------------------------------------------------------------------------

// Text translates one string value found at path.
//
// Protected values come back Skipped, blank or variables-only values come
// back Untouched, and a failing backend yields FellBack with the original
// text. Text never returns a value other than the input or its translation.
func (t *Translator) Text(ctx context.Context, path Path, text string) Result {
	key := path.Key()

	if t.protect.Protected(path) {
		t.log.Info("Skipped", "key", key, "path", path.String(), "value", text)
		return Result{Text: text, Outcome: Skipped}
	}

	lead, core, trail := splitSpace(text)
	if core == "" {
		return Result{Text: text, Outcome: Untouched}
	}

	masked, ph := mask.Mask(core)
	if ph.OnlyVariables(masked) {
		t.log.Debug("Nothing to translate", "path", path.String(), "value", text)
		return Result{Text: text, Outcome: Untouched}
	}

	t.log.Debug("Translating", "path", path.String(), "text", text, "masked", masked,
		"source", t.source, "target", t.target)

	out, err := t.call(ctx, masked)
	if err != nil {
		t.log.Error("Translation error", "path", path.String(), "text", text, "error", err)
		return Result{Text: text, Outcome: FellBack, Err: err}
	}

	if missing := ph.Missing(out); len(missing) > 0 {
		t.log.Warn("Backend dropped placeholders", "path", path.String(), "missing", missing, "output", out)
	}

	translated := lead + ph.Restore(strings.TrimSpace(out)) + trail
	t.log.Info("Translated", "path", path.String(), "from", text, "to", translated)
	return Result{Text: translated, Outcome: Translated}
}

// call invokes the backend and turns a panic into a backend error.
func (t *Translator) call(ctx context.Context, text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &backend.Error{Backend: t.backend.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return t.backend.Translate(ctx, text, t.source, t.target)
}

// splitSpace splits s into its leading whitespace, the trimmed core and the
// trailing whitespace. Backends do not reliably keep surrounding whitespace.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}
