package ai

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned before any network call when no credentials are set.
	ErrNotConfigured = errors.New("ai provider is not configured")
	// ErrEmptyResponse means the provider answered but no reply text could be extracted.
	ErrEmptyResponse = errors.New("ai provider returned no text")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
