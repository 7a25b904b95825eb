// Package stream consumes the assistant backend's event stream: one POST
// per user message, a text/event-stream response parsed line by line, and
// decoded events dispatched to subscriber callbacks.
package stream

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/bytedance/sonic"

	"orbchat/protocol"
)

// Handler receives decoded stream events. Nil callbacks are skipped.
type Handler struct {
	OnSession       func(id string)
	OnChunk         func(text string)
	OnAudio         func(segment []byte, sentence string)
	OnSearchResults func(res *protocol.SearchResults)
	OnDone          func()
}

// StreamError is an application-level error reported inside the stream via
// the envelope's error field. It aborts processing of the current response.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// Reader decodes one streamed chat response. It is single-use: create a new
// Reader per outbound message.
type Reader struct {
	buf       LineBuffer
	text      strings.Builder
	sessionID string
	done      bool
}

// NewReader creates a reader for a single response stream.
func NewReader() *Reader {
	return &Reader{}
}

// Consume reads body to completion, dispatching events to h. It returns a
// *StreamError when the backend reports an in-stream error, the transport
// error when reading fails, and nil on normal completion. Early
// end-of-stream without a done marker also counts as normal completion.
func (r *Reader) Consume(body io.Reader, h *Handler) error {
	chunk := make([]byte, 4096)
	for !r.done {
		n, err := body.Read(chunk)
		if n > 0 {
			if perr := r.Feed(chunk[:n], h); perr != nil {
				return perr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r.Finish(h)
			}
			return err
		}
	}
	return nil
}

// Feed processes one incremental chunk. Split points are irrelevant: any
// chunking of the same bytes produces the same event sequence.
func (r *Reader) Feed(p []byte, h *Handler) error {
	for _, line := range r.buf.Feed(p) {
		if r.done {
			return nil
		}
		if err := r.handleLine(line, h); err != nil {
			return err
		}
	}
	return nil
}

// Finish gives the unterminated tail one best-effort decode. A tail that
// still fails to parse is dropped: mid-stream the reader always waits for
// the newline, so this only runs once no more bytes can arrive.
func (r *Reader) Finish(h *Handler) error {
	if r.done {
		return nil
	}
	if tail := r.buf.Tail(); len(tail) > 0 {
		if err := r.handleLine(tail, h); err != nil {
			return err
		}
	}
	return nil
}

// Text returns the accumulated response text.
func (r *Reader) Text() string {
	return r.text.String()
}

// SessionID returns the id assigned by the backend, if any arrived.
func (r *Reader) SessionID() string {
	return r.sessionID
}

// Done reports whether the completion marker was observed.
func (r *Reader) Done() bool {
	return r.done
}

func (r *Reader) handleLine(line []byte, h *Handler) error {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if !bytes.HasPrefix(line, []byte(protocol.Marker)) {
		// Blank separators and comment lines.
		return nil
	}
	payload := bytes.TrimSpace(line[len(protocol.Marker):])
	if len(payload) == 0 {
		return nil
	}

	var env protocol.Envelope
	if err := sonic.Unmarshal(payload, &env); err != nil {
		// Malformed line, not fatal.
		return nil
	}

	if env.Error != "" {
		return &StreamError{Message: env.Error}
	}

	// Fields are independent; a single line may carry several.
	if env.SessionID != "" {
		r.sessionID = env.SessionID
		if h.OnSession != nil {
			h.OnSession(env.SessionID)
		}
	}
	if env.SearchResults != nil && h.OnSearchResults != nil {
		h.OnSearchResults(env.SearchResults)
	}
	if env.Chunk != "" {
		r.text.WriteString(env.Chunk)
		if h.OnChunk != nil {
			h.OnChunk(env.Chunk)
		}
	}
	if env.Audio != "" {
		segment, err := base64.StdEncoding.DecodeString(env.Audio)
		if err != nil {
			log.Printf("stream: dropping audio segment with bad base64: %v", err)
		} else if h.OnAudio != nil {
			h.OnAudio(segment, env.Sentence)
		}
	}
	if env.Done {
		r.done = true
		if h.OnDone != nil {
			h.OnDone()
		}
	}
	return nil
}
