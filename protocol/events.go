// Package protocol defines the wire types exchanged with the assistant
// backend: the chat request body and the newline-delimited SSE envelopes
// streamed back from /chat/stream and /chat/realtime/stream.
package protocol

// Marker is the prefix carried by every meaningful line of the response
// stream. Lines without it (blank separators, comments) are ignored.
const Marker = "data:"

// ChatRequest is the body POSTed once per user message.
// SessionID is null on the first message of a conversation; afterwards it
// echoes the id the backend assigned.
type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
	TTS       bool    `json:"tts"`
}

// Envelope is the JSON payload of a single marker-prefixed stream line.
// All fields are optional and checked independently.
type Envelope struct {
	SessionID     string         `json:"session_id,omitempty"`
	Chunk         string         `json:"chunk,omitempty"`
	Audio         string         `json:"audio,omitempty"` // base64 audio segment
	Sentence      string         `json:"sentence,omitempty"`
	SearchResults *SearchResults `json:"search_results,omitempty"`
	Error         string         `json:"error,omitempty"`
	Done          bool           `json:"done,omitempty"`
}

// SearchResults is the realtime-mode search payload forwarded to the display.
type SearchResults struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// SearchResult is one source card within a SearchResults payload.
type SearchResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// ErrorResponse is the non-streaming error body returned on HTTP failures.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthyStatus is the only Status value treated as online.
const HealthyStatus = "healthy"

// NewChunkEnvelope creates a text-delta envelope.
func NewChunkEnvelope(chunk string) *Envelope {
	return &Envelope{Chunk: chunk}
}

// NewAudioEnvelope creates an audio-segment envelope. The sentence is the
// text the segment was synthesized from, carried for display and debugging.
func NewAudioEnvelope(b64, sentence string) *Envelope {
	return &Envelope{Audio: b64, Sentence: sentence}
}

// NewSessionEnvelope creates the stream-opening envelope that assigns the
// session id.
func NewSessionEnvelope(sessionID string) *Envelope {
	return &Envelope{SessionID: sessionID}
}

// NewSearchResultsEnvelope creates a search-results envelope.
func NewSearchResultsEnvelope(results *SearchResults) *Envelope {
	return &Envelope{SearchResults: results}
}

// NewErrorEnvelope creates a fatal in-stream error envelope.
func NewErrorEnvelope(message string) *Envelope {
	return &Envelope{Error: message, Done: true}
}

// NewDoneEnvelope creates the normal completion envelope.
func NewDoneEnvelope(sessionID string) *Envelope {
	return &Envelope{Done: true, SessionID: sessionID}
}
