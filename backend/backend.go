// Package backend defines the translation backend capability and the
// concrete adapters yamltr can talk to: Google Translate, OpenAI-compatible
// chat APIs (OpenAI, Groq, Ollama, custom endpoints), Google Gemini and a
// passthrough backend for dry runs.
package backend

import (
	"context"
	"fmt"
)

// Backend translates a single piece of text.
//
// Implementations must be safe for concurrent use. Every failure is
// returned as an *Error.
type Backend interface {
	// Name is the provider ID the backend was created for.
	Name() string
	// Translate returns text translated from source to target. source may
	// be "auto" for backends that detect the language themselves.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Error is a failed backend call.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap returns err as an *Error for the named backend. Errors that already
// are *Error are returned unchanged.
func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	if be, ok := err.(*Error); ok {
		return be
	}
	return &Error{Backend: name, Err: err}
}

// Func adapts a plain function to the Backend interface.
type Func func(ctx context.Context, text, source, target string) (string, error)

// Name implements Backend.
func (f Func) Name() string {
	return "func"
}

// Translate implements Backend.
func (f Func) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := f(ctx, text, source, target)
	if err != nil {
		return "", wrap(f.Name(), err)
	}
	return out, nil
}
