package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"orbchat/protocol"
	"orbchat/stream"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(0, 0).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var health protocol.HealthResponse
	if err := sonic.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != protocol.HealthyStatus {
		t.Errorf("status = %q", health.Status)
	}
}

func TestServerStreamsScriptedReply(t *testing.T) {
	srv := newTestServer(t)
	client := stream.NewClient(srv.URL, 0)

	var chunks, sentences []string
	var audioSegments int
	h := &stream.Handler{
		OnChunk: func(text string) { chunks = append(chunks, text) },
		OnAudio: func(segment []byte, sentence string) {
			audioSegments++
			sentences = append(sentences, sentence)
			if len(segment) == 0 {
				t.Error("empty audio segment")
			}
		},
	}

	result, err := client.StreamMessage(context.Background(), stream.ModeGeneral,
		protocol.ChatRequest{Message: "ping", TTS: true}, h)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if !result.Completed {
		t.Error("missing completion marker")
	}
	if result.SessionID == "" {
		t.Error("no session id assigned")
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks streamed")
	}
	if !strings.Contains(result.Text, "ping") {
		t.Errorf("reply %q should echo the message", result.Text)
	}
	if audioSegments != len(sentences) || audioSegments == 0 {
		t.Errorf("audio segments = %d, sentences = %d", audioSegments, len(sentences))
	}
}

func TestServerSessionContinuity(t *testing.T) {
	srv := newTestServer(t)
	client := stream.NewClient(srv.URL, 0)

	first, err := client.StreamMessage(context.Background(), stream.ModeGeneral,
		protocol.ChatRequest{Message: "one"}, &stream.Handler{})
	if err != nil {
		t.Fatalf("first message: %v", err)
	}

	second, err := client.StreamMessage(context.Background(), stream.ModeGeneral,
		protocol.ChatRequest{Message: "two", SessionID: &first.SessionID}, &stream.Handler{})
	if err != nil {
		t.Fatalf("second message: %v", err)
	}

	if second.SessionID != first.SessionID {
		t.Errorf("session id changed: %q -> %q", first.SessionID, second.SessionID)
	}
	if !strings.Contains(second.Text, "turn 2") {
		t.Errorf("second reply %q should acknowledge the running session", second.Text)
	}
}

func TestServerRealtimeIncludesSearchResults(t *testing.T) {
	srv := newTestServer(t)
	client := stream.NewClient(srv.URL, 0)

	var results *protocol.SearchResults
	h := &stream.Handler{
		OnSearchResults: func(r *protocol.SearchResults) { results = r },
	}

	_, err := client.StreamMessage(context.Background(), stream.ModeRealtime,
		protocol.ChatRequest{Message: "look this up"}, h)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if results == nil {
		t.Fatal("realtime mode should include search results")
	}
	if results.Query != "look this up" {
		t.Errorf("query = %q", results.Query)
	}
	if len(results.Results) == 0 {
		t.Error("no result cards")
	}
}

func TestServerRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/chat/stream", "application/json",
		strings.NewReader(`{"message":"   ","session_id":null,"tts":false}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var detail protocol.ErrorResponse
	if err := sonic.Unmarshal(body, &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Detail == "" {
		t.Error("error body should carry a detail message")
	}
}

func TestServerRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/chat/stream", "application/json",
		strings.NewReader("{broken"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestServerRejectsGet(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/chat/stream")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
