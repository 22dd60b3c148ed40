package backend

import "context"

// Passthrough returns its input unchanged. It is used for --dry-run and in
// tests.
type Passthrough struct{}

// Name implements Backend.
func (Passthrough) Name() string {
	return ProviderPassthrough
}

// Translate implements Backend.
func (Passthrough) Translate(ctx context.Context, text, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrap(ProviderPassthrough, err)
	}
	return text, nil
}
