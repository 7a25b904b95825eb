package session

import "orbchat/stream"

// Session tracks the state of one conversation with the backend. The first
// streamed response assigns the backend's session id; subsequent requests
// carry it so the server keeps context.
type Session struct {
	ID        string
	Mode      stream.Mode
	TTS       bool
	Streaming bool
}

// New returns a fresh session with no backend id yet.
func New(mode stream.Mode, tts bool) *Session {
	return &Session{Mode: mode, TTS: tts}
}

// RequestID returns the session id pointer for an outgoing request: nil
// until the backend has assigned one.
func (s *Session) RequestID() *string {
	if s.ID == "" {
		return nil
	}
	id := s.ID
	return &id
}

// Adopt records the backend-assigned session id. The first id wins; the
// backend never reassigns mid-conversation.
func (s *Session) Adopt(id string) {
	if s.ID == "" && id != "" {
		s.ID = id
	}
}

// Clear resets the conversation so the next request starts a new backend
// session. Mode and TTS preferences survive.
func (s *Session) Clear() {
	s.ID = ""
	s.Streaming = false
}
