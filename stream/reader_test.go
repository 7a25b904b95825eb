package stream

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"orbchat/protocol"
)

// event is a flattened record of a handler callback, used to compare runs.
type event struct {
	kind     string
	text     string
	sentence string
}

func recordingHandler(events *[]event) *Handler {
	return &Handler{
		OnSession: func(id string) {
			*events = append(*events, event{kind: "session", text: id})
		},
		OnChunk: func(text string) {
			*events = append(*events, event{kind: "chunk", text: text})
		},
		OnAudio: func(segment []byte, sentence string) {
			*events = append(*events, event{kind: "audio", text: string(segment), sentence: sentence})
		},
		OnSearchResults: func(res *protocol.SearchResults) {
			*events = append(*events, event{kind: "search", text: res.Query})
		},
		OnDone: func() {
			*events = append(*events, event{kind: "done"})
		},
	}
}

func TestReaderBasicConversation(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte("mp3bytes"))
	body := strings.Join([]string{
		`data: {"session_id":"s1"}`,
		`data: {"chunk":"Hi "}`,
		`data: {"chunk":"there"}`,
		fmt.Sprintf(`data: {"audio":%q,"sentence":"Hi there"}`, audio),
		`data: {"done":true}`,
		"",
	}, "\n")

	var events []event
	r := NewReader()
	if err := r.Consume(strings.NewReader(body), recordingHandler(&events)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Text() != "Hi there" {
		t.Errorf("text = %q, want %q", r.Text(), "Hi there")
	}
	if r.SessionID() != "s1" {
		t.Errorf("session id = %q, want s1", r.SessionID())
	}
	if !r.Done() {
		t.Error("expected done marker to be observed")
	}

	want := []event{
		{kind: "session", text: "s1"},
		{kind: "chunk", text: "Hi "},
		{kind: "chunk", text: "there"},
		{kind: "audio", text: "mp3bytes", sentence: "Hi there"},
		{kind: "done"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestReaderSplitInvariance(t *testing.T) {
	body := "data: {\"session_id\":\"s1\"}\n" +
		"data: {\"chunk\":\"alpha \"}\n" +
		"data: {\"chunk\":\"beta\"}\n" +
		"data: {\"done\":true}\n"

	run := func(chunkSize int) ([]event, string) {
		var events []event
		r := NewReader()
		h := recordingHandler(&events)
		for i := 0; i < len(body); i += chunkSize {
			end := i + chunkSize
			if end > len(body) {
				end = len(body)
			}
			if err := r.Feed([]byte(body[i:end]), h); err != nil {
				t.Fatalf("chunk size %d: feed error: %v", chunkSize, err)
			}
		}
		if err := r.Finish(h); err != nil {
			t.Fatalf("chunk size %d: finish error: %v", chunkSize, err)
		}
		return events, r.Text()
	}

	wantEvents, wantText := run(len(body))
	for _, size := range []int{1, 2, 3, 7, 16} {
		events, text := run(size)
		if text != wantText {
			t.Errorf("chunk size %d: text = %q, want %q", size, text, wantText)
		}
		if len(events) != len(wantEvents) {
			t.Errorf("chunk size %d: %d events, want %d", size, len(events), len(wantEvents))
			continue
		}
		for i := range wantEvents {
			if events[i] != wantEvents[i] {
				t.Errorf("chunk size %d: event %d = %+v, want %+v", size, i, events[i], wantEvents[i])
			}
		}
	}
}

func TestReaderInStreamErrorHalts(t *testing.T) {
	body := "data: {\"chunk\":\"partial \"}\n" +
		"data: {\"error\":\"backend overloaded\"}\n" +
		"data: {\"chunk\":\"never seen\"}\n"

	var events []event
	r := NewReader()
	err := r.Consume(strings.NewReader(body), recordingHandler(&events))

	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected *StreamError, got %v", err)
	}
	if streamErr.Message != "backend overloaded" {
		t.Errorf("message = %q, want 'backend overloaded'", streamErr.Message)
	}
	if r.Text() != "partial " {
		t.Errorf("text before the error = %q, want 'partial '", r.Text())
	}
	for _, e := range events {
		if e.text == "never seen" {
			t.Error("chunk after the error was dispatched")
		}
	}
}

func TestReaderIgnoresMalformedAndUnmarkedLines(t *testing.T) {
	body := "not an event line\n" +
		"data: {broken json\n" +
		"\n" +
		"data: {\"chunk\":\"ok\"}\n" +
		"data: {\"done\":true}\n"

	r := NewReader()
	if err := r.Consume(strings.NewReader(body), &Handler{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "ok" {
		t.Errorf("text = %q, want 'ok'", r.Text())
	}
}

func TestReaderDropsBadBase64Audio(t *testing.T) {
	body := "data: {\"audio\":\"!!!not base64!!!\",\"sentence\":\"x\"}\n" +
		"data: {\"done\":true}\n"

	audioCalls := 0
	h := &Handler{OnAudio: func([]byte, string) { audioCalls++ }}

	r := NewReader()
	if err := r.Consume(strings.NewReader(body), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audioCalls != 0 {
		t.Errorf("bad audio segment was dispatched %d times", audioCalls)
	}
	if !r.Done() {
		t.Error("stream should still complete after a dropped segment")
	}
}

func TestReaderTruncatedTailDecodedAtEOF(t *testing.T) {
	// No trailing newline on the final line; EOF gives it one decode.
	body := "data: {\"chunk\":\"first\"}\n" +
		"data: {\"done\":true}"

	r := NewReader()
	if err := r.Consume(strings.NewReader(body), &Handler{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Done() {
		t.Error("unterminated final line should be decoded at end of stream")
	}
}

func TestReaderEmptyChunksNotDispatched(t *testing.T) {
	body := "data: {\"chunk\":\"\"}\n" +
		"data: {\"done\":true}\n"

	chunks := 0
	h := &Handler{OnChunk: func(string) { chunks++ }}
	r := NewReader()
	if err := r.Consume(strings.NewReader(body), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != 0 {
		t.Errorf("empty chunk dispatched %d times", chunks)
	}
}
