package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"orbchat/protocol"
)

// Server is a local stand-in for the chat backend. It streams scripted
// replies over the same SSE wire format, which is enough to exercise the
// client end to end without a model behind it.
type Server struct {
	httpServer *http.Server
	chunkDelay time.Duration

	mu    sync.Mutex
	turns map[string]int
}

// A short silent MP3 frame, served as the stub's synthesized speech.
var silentFrame = []byte{
	0xFF, 0xFB, 0x90, 0x64, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

func NewServer(port int, chunkDelay time.Duration) *Server {
	s := &Server{
		chunkDelay: chunkDelay,
		turns:      make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/stream", s.handleChatStream)
	mux.HandleFunc("/chat/realtime/stream", s.handleChatStream)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// No write timeout: responses stay open while streaming.
	}

	return s
}

// Start begins listening for connections
func (s *Server) Start() error {
	log.Printf("Stub backend listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down stub backend...")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	body, _ := sonic.Marshal(protocol.HealthResponse{Status: protocol.HealthyStatus})
	_, _ = w.Write(body)
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	var req protocol.ChatRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeDetail(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	turn := s.bumpTurn(sessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	emit := func(env *protocol.Envelope) bool {
		payload, err := sonic.Marshal(env)
		if err != nil {
			log.Printf("Failed to encode event: %v", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", protocol.Marker, payload); err != nil {
			return false
		}
		flusher.Flush()
		if s.chunkDelay > 0 {
			select {
			case <-r.Context().Done():
				return false
			case <-time.After(s.chunkDelay):
			}
		}
		return r.Context().Err() == nil
	}

	if !emit(protocol.NewSessionEnvelope(sessionID)) {
		return
	}

	realtime := strings.HasPrefix(r.URL.Path, "/chat/realtime")
	if realtime {
		results := scriptedSearch(req.Message)
		if !emit(protocol.NewSearchResultsEnvelope(results)) {
			return
		}
	}

	for _, sentence := range scriptedReply(req.Message, turn) {
		for _, word := range strings.Fields(sentence) {
			if !emit(protocol.NewChunkEnvelope(word + " ")) {
				return
			}
		}
		if req.TTS {
			audio := base64.StdEncoding.EncodeToString(silentFrame)
			if !emit(protocol.NewAudioEnvelope(audio, sentence)) {
				return
			}
		}
	}

	emit(protocol.NewDoneEnvelope(sessionID))
}

func (s *Server) bumpTurn(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sessionID]++
	return s.turns[sessionID]
}

func scriptedReply(message string, turn int) []string {
	if turn > 1 {
		return []string{
			fmt.Sprintf("Still here, turn %d of our conversation.", turn),
			fmt.Sprintf("You said: %s", message),
		}
	}
	return []string{
		"Hello, I am a local stand-in for the chat backend.",
		fmt.Sprintf("You said: %s", message),
	}
}

func scriptedSearch(message string) *protocol.SearchResults {
	return &protocol.SearchResults{
		Query:  message,
		Answer: "Scripted answer from the stub backend.",
		Results: []protocol.SearchResult{
			{
				Title:   "Stub result",
				Content: "A canned search result used during development.",
				URL:     "http://localhost/stub",
				Score:   0.99,
			},
		},
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := sonic.Marshal(protocol.ErrorResponse{Detail: detail})
	_, _ = w.Write(body)
}
