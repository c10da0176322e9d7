package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fitmind/fitmind/internal/metrics"
)

const SystemInstruction = "You are FitMind, a friendly mental and physical wellness coach. " +
	"Be warm, encouraging and concise, and tailor advice to what the user has shared about " +
	"their sleep, stress, activity and goals. Always answer in three sections labelled " +
	"\"Direct Answer:\", \"Personalized Guidance:\" and \"Motivation Line:\". " +
	"If the user shows any sign of crisis or self-harm, respond with an empathetic safety message " +
	"and encourage them to contact emergency services or a mental-health professional."

const (
	NotConfiguredReply = "The AI coach is not configured yet. Set GEMINI_API_KEY or GEMINI_BEARER_TOKEN " +
		"to enable AI replies."
	defaultLabel = "Gemini"
)

// Relay forwards a prompt to a provider and always hands back a displayable
// string: provider failures become apologetic replies, never errors.
type Relay struct {
	provider Provider
	label    string
	timeout  time.Duration
}

// NewRelay accepts a nil provider, which behaves as "not configured".
func NewRelay(provider Provider, label string, timeout time.Duration) *Relay {
	if label == "" {
		label = defaultLabel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Relay{provider: provider, label: label, timeout: timeout}
}

func (r *Relay) Reply(ctx context.Context, prompt string) string {
	if r.provider == nil {
		metrics.RelayOutcomes.WithLabelValues("unconfigured").Inc()
		return NotConfiguredReply
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.provider.Chat(cctx, []Message{
		{Role: "system", Content: SystemInstruction},
		{Role: "user", Content: prompt},
	})
	switch {
	case errors.Is(err, ErrNotConfigured):
		metrics.RelayOutcomes.WithLabelValues("unconfigured").Inc()
		return NotConfiguredReply
	case errors.Is(err, ErrEmptyResponse):
		metrics.RelayOutcomes.WithLabelValues("empty").Inc()
		return fmt.Sprintf("(No response from %s)", r.label)
	case err != nil:
		metrics.RelayOutcomes.WithLabelValues("failed").Inc()
		log.Printf("[relay] %s call failed err=%v", r.label, err)
		return fmt.Sprintf("(%s call failed) %v", r.label, err)
	}
	metrics.RelayOutcomes.WithLabelValues("ok").Inc()
	return reply
}
