package translate

import "context"

// Client is the remote translation collaborator. Translate returns one
// result per input text, in input order. Results are typed loosely
// because remote services and stub clients return a variety of shapes;
// the gateway normalizes them into strings.
type Client interface {
	Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]any, error)
	Detect(ctx context.Context, text string) (string, error)
}

// ClientFactory produces a fresh client. The gateway uses it to replace
// a client that starts returning structurally broken responses, and
// tests use it to inject stubs.
type ClientFactory func() (Client, error)
