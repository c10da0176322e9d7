package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiProvider talks to a generative-text endpoint that takes an author/content
// message list. Exactly one credential is used: the API key (sent as the "key"
// query parameter) wins over the bearer token.
type GeminiProvider struct {
	URL             string
	APIKey          string
	BearerToken     string
	MaxOutputTokens int
	Client          *http.Client
}

type geminiText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type geminiMsg struct {
	Author  string       `json:"author"`
	Content []geminiText `json:"content"`
}

type geminiReq struct {
	Messages        []geminiMsg `json:"messages"`
	MaxOutputTokens int         `json:"maxOutputTokens"`
}

func NewGeminiProvider(endpoint, apiKey, bearerToken string, maxOutputTokens int, timeout time.Duration) *GeminiProvider {
	if maxOutputTokens <= 0 {
		maxOutputTokens = 512
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiProvider{
		URL:             strings.TrimSpace(endpoint),
		APIKey:          strings.TrimSpace(apiKey),
		BearerToken:     strings.TrimSpace(bearerToken),
		MaxOutputTokens: maxOutputTokens,
		Client:          &http.Client{Timeout: timeout},
	}
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p.APIKey == "" && p.BearerToken == "" {
		return "", ErrNotConfigured
	}
	if p.Client == nil {
		return "", errors.New("gemini: http client is nil")
	}
	if p.URL == "" {
		return "", errors.New("gemini: endpoint url is required")
	}

	reqBody := geminiReq{
		MaxOutputTokens: p.MaxOutputTokens,
		Messages: func() []geminiMsg {
			out := make([]geminiMsg, 0, len(messages))
			for _, m := range messages {
				out = append(out, geminiMsg{
					Author:  m.Role,
					Content: []geminiText{{Type: "text", Text: m.Content}},
				})
			}
			return out
		}(),
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := p.URL
	if p.APIKey != "" {
		u, err := url.Parse(p.URL)
		if err != nil {
			return "", fmt.Errorf("gemini: bad endpoint url: %w", err)
		}
		q := u.Query()
		q.Set("key", p.APIKey)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey == "" {
		req.Header.Set("Authorization", "Bearer "+p.BearerToken)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("gemini: %s", msg)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	text, ok := extractReply(decoded)
	if !ok {
		return "", ErrEmptyResponse
	}
	return text, nil
}
