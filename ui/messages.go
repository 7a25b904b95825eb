package ui

import (
	"time"

	"orbchat/protocol"
	"orbchat/session"
	"orbchat/stream"
)

// Request messages carry the generation of the request that produced them.
// The model bumps its generation on every send and on new-chat, so anything
// a cancelled request pushed after the fact is recognized and dropped.

// SessionAssignedMsg carries the backend-assigned session id from the first
// envelope of a response stream.
type SessionAssignedMsg struct {
	Gen uint64
	ID  string
}

// ChunkMsg carries one text delta of the assistant's reply.
type ChunkMsg struct {
	Gen  uint64
	Text string
}

// AudioSegmentMsg carries one decoded audio segment ready for playback.
type AudioSegmentMsg struct {
	Gen      uint64
	Segment  []byte
	Sentence string
}

// SearchResultsMsg carries the realtime-mode search payload.
type SearchResultsMsg struct {
	Gen     uint64
	Results *protocol.SearchResults
}

// StreamFinishedMsg is sent exactly once per request, whether the stream
// completed, failed mid-flight, or never connected.
type StreamFinishedMsg struct {
	Gen    uint64
	Result *stream.Result
	Err    error
}

// PlaybackActiveMsg reports the playback queue transitioning between busy
// and idle.
type PlaybackActiveMsg struct {
	Active bool
}

// HealthMsg carries the result of a backend health probe.
type HealthMsg struct {
	Online bool
}

// healthTickMsg schedules the next health probe.
type healthTickMsg struct{}

// frameTickMsg drives the orb animation.
type frameTickMsg struct {
	At time.Time
}

// storeOpenedMsg delivers the history database once it is ready.
type storeOpenedMsg struct {
	Store *session.Store
}

// clearNoticeMsg clears a transient notice after a timeout.
type clearNoticeMsg struct{}
