package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGeminiProvider_RequestShapeAndAPIKey(t *testing.T) {
	var got geminiReq
	var gotKey, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		gotKey = r.URL.Query().Get("key")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":[{"type":"text","text":"hello back"}]}]}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(server.URL+"/v1/generate", "k-123", "ignored-token", 0, 2*time.Second)
	reply, err := p.Chat(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "hello back" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if gotKey != "k-123" {
		t.Fatalf("expected api key query param, got %q", gotKey)
	}
	if gotAuth != "" {
		t.Fatalf("bearer header must not be sent with api key, got %q", gotAuth)
	}
	if got.MaxOutputTokens != 512 {
		t.Fatalf("expected maxOutputTokens=512, got %d", got.MaxOutputTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Author != "system" || got.Messages[1].Author != "user" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if c := got.Messages[1].Content; len(c) != 1 || c[0].Type != "text" || c[0].Text != "hi" {
		t.Fatalf("unexpected content: %+v", c)
	}
}

func TestGeminiProvider_BearerToken(t *testing.T) {
	var gotAuth, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"candidates":[{"text":"ok"}]}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(server.URL, "", "tok", 256, time.Second)
	if _, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "x"}}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if gotAuth != "Bearer tok" || gotKey != "" {
		t.Fatalf("unexpected auth: header=%q key=%q", gotAuth, gotKey)
	}
}

func TestGeminiProvider_NotConfiguredSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	p := NewGeminiProvider(server.URL, "", "", 0, time.Second)
	if _, err := p.Chat(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no network call")
	}
}

func TestExtractReply_Shapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"content list", `{"candidates":[{"content":[{"type":"text"},{"type":"text","text":"from list"}]}]}`, "from list", true},
		{"content parts", `{"candidates":[{"content":{"parts":[{"text":"from parts"}]}}]}`, "from parts", true},
		{"candidate text", `{"candidates":[{"text":"plain"}]}`, "plain", true},
		{"top-level output", `{"output":"alt output"}`, "alt output", true},
		{"candidate output", `{"candidates":[{"output":"cand output"}]}`, "cand output", true},
		{"top-level content", `{"content":"alt content"}`, "alt content", true},
		{"nested wins over text", `{"candidates":[{"text":"second","content":[{"text":"first"}]}]}`, "first", true},
		{"nothing", `{"candidates":[]}`, "", false},
		{"blank text", `{"candidates":[{"text":"   "}]}`, "", false},
	}
	for _, tc := range cases {
		var data map[string]any
		if err := json.Unmarshal([]byte(tc.body), &data); err != nil {
			t.Fatalf("%s: bad fixture: %v", tc.name, err)
		}
		got, ok := extractReply(data)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s: got (%q,%v) want (%q,%v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRelay_DegradesToStrings(t *testing.T) {
	status := http.StatusOK
	body := `{"candidates":[]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	relay := NewRelay(NewGeminiProvider(server.URL, "k", "", 0, time.Second), "", time.Second)

	if got := relay.Reply(context.Background(), "user: hi"); got != "(No response from Gemini)" {
		t.Fatalf("unexpected empty reply: %q", got)
	}

	status, body = http.StatusInternalServerError, "upstream exploded"
	got := relay.Reply(context.Background(), "user: hi")
	if !strings.HasPrefix(got, "(Gemini call failed) ") || !strings.Contains(got, "upstream exploded") {
		t.Fatalf("unexpected failure reply: %q", got)
	}

	unconfigured := NewRelay(NewGeminiProvider(server.URL, "", "", 0, time.Second), "", time.Second)
	if got := unconfigured.Reply(context.Background(), "user: hi"); got != NotConfiguredReply {
		t.Fatalf("unexpected unconfigured reply: %q", got)
	}
	if got := NewRelay(nil, "", 0).Reply(context.Background(), "x"); got != NotConfiguredReply {
		t.Fatalf("nil provider should read as unconfigured, got %q", got)
	}
}

func TestRelay_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	relay := NewRelay(NewGeminiProvider(server.URL, "k", "", 0, 5*time.Second), "", 50*time.Millisecond)
	got := relay.Reply(context.Background(), "user: hi")
	if !strings.HasPrefix(got, "(Gemini call failed)") {
		t.Fatalf("expected timeout to degrade, got %q", got)
	}
}

type recordingProvider struct {
	last []Message
}

func (p *recordingProvider) Chat(_ context.Context, messages []Message) (string, error) {
	p.last = append([]Message(nil), messages...)
	return "ok", nil
}

func TestRelay_PrependsSystemInstruction(t *testing.T) {
	prov := &recordingProvider{}
	if got := NewRelay(prov, "", time.Second).Reply(context.Background(), "user: hello"); got != "ok" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if len(prov.last) != 2 {
		t.Fatalf("expected two turns, got %d", len(prov.last))
	}
	if prov.last[0].Role != "system" || prov.last[0].Content != SystemInstruction {
		t.Fatalf("unexpected system turn: %+v", prov.last[0])
	}
	if prov.last[1].Role != "user" || prov.last[1].Content != "user: hello" {
		t.Fatalf("unexpected user turn: %+v", prov.last[1])
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(" Fake ", func(ctx context.Context, model string) (Provider, error) {
		return &recordingProvider{}, nil
	})
	if _, err := reg.Get(context.Background(), "FAKE", ""); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := reg.Get(context.Background(), "missing", ""); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewRelayFromSettings(t *testing.T) {
	relay, err := NewRelayFromSettings(context.Background(), Settings{Timeout: time.Second})
	if err != nil {
		t.Fatalf("default relay: %v", err)
	}
	if got := relay.Reply(context.Background(), "user: hi"); got != NotConfiguredReply {
		t.Fatalf("gemini without credentials should be unconfigured, got %q", got)
	}

	ollama, err := NewRelayFromSettings(context.Background(), Settings{Provider: "ollama"})
	if err != nil {
		t.Fatalf("ollama relay: %v", err)
	}
	if ollama.label != "Ollama" {
		t.Fatalf("unexpected label: %q", ollama.label)
	}

	if _, err := NewRelayFromSettings(context.Background(), Settings{Provider: "nope"}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestOllamaProvider_Chat(t *testing.T) {
	var got ollamaChatReq
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"local reply"}}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL+"/", "llama3:latest", time.Second)
	reply, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "local reply" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if got.Model != "llama3:latest" || got.Stream || len(got.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", got)
	}
}
