package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Request is a single-turn generation call.
type Request struct {
	System string
	User   string
}

// Generator abstracts text-generation providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

var (
	// ErrTransport covers network failures and non-success responses.
	ErrTransport = errors.New("llm transport failed")
	// ErrEmptyOutput means the response envelope carried no generated text.
	ErrEmptyOutput = errors.New("llm response has no text")
)

// PromptHash returns a stable fingerprint of a request for logs.
func PromptHash(req Request) string {
	sum := sha256.Sum256([]byte("system: " + req.System + "\n\nuser: " + req.User))
	return hex.EncodeToString(sum[:])
}
