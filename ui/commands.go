package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"orbchat/protocol"
	"orbchat/session"
	"orbchat/stream"
)

const (
	framePeriod  = 50 * time.Millisecond
	noticePeriod = 4 * time.Second
)

// waitEventCmd delivers the next message pushed by the streaming and
// playback goroutines. Update re-arms it after every delivery.
func waitEventCmd(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// sendCmd launches the request in its own goroutine. Every event lands on
// the shared channel stamped with the request generation, and
// StreamFinishedMsg is pushed exactly once at the end regardless of how the
// stream went.
func sendCmd(ctx context.Context, gen uint64, client *stream.Client, mode stream.Mode, req protocol.ChatRequest, events chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			h := &stream.Handler{
				OnSession: func(id string) {
					events <- SessionAssignedMsg{Gen: gen, ID: id}
				},
				OnChunk: func(text string) {
					events <- ChunkMsg{Gen: gen, Text: text}
				},
				OnAudio: func(segment []byte, sentence string) {
					events <- AudioSegmentMsg{Gen: gen, Segment: segment, Sentence: sentence}
				},
				OnSearchResults: func(r *protocol.SearchResults) {
					events <- SearchResultsMsg{Gen: gen, Results: r}
				},
			}
			result, err := client.StreamMessage(ctx, mode, req, h)
			events <- StreamFinishedMsg{Gen: gen, Result: result, Err: err}
		}()
		return nil
	}
}

// healthCmd probes the backend once.
func healthCmd(client *stream.Client) tea.Cmd {
	return func() tea.Msg {
		return HealthMsg{Online: client.Healthy(context.Background())}
	}
}

// healthTickCmd schedules the next probe.
func healthTickCmd(period time.Duration) tea.Cmd {
	return tea.Tick(period, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

// frameTickCmd drives the orb at roughly 20fps.
func frameTickCmd() tea.Cmd {
	return tea.Tick(framePeriod, func(t time.Time) tea.Msg {
		return frameTickMsg{At: t}
	})
}

// openStoreCmd opens the history database.
func openStoreCmd(path string) tea.Cmd {
	return func() tea.Msg {
		store, err := session.OpenStore(path)
		if err != nil {
			return nil // history is best effort
		}
		return storeOpenedMsg{Store: store}
	}
}

// clearNoticeCmd fires after a delay to clear transient notices.
func clearNoticeCmd() tea.Cmd {
	return tea.Tick(noticePeriod, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}
