package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// playbackSignal forwards the queue's active transitions into the event
// channel. The queue reports under its own lock, so Set must never block;
// a single notifier goroutine does the delivery and coalesces bursts to
// the latest state, so an older transition can never arrive after a newer
// one.
type playbackSignal struct {
	mu     sync.Mutex
	active bool
	kick   chan struct{}
}

func newPlaybackSignal(events chan<- tea.Msg) *playbackSignal {
	s := &playbackSignal{kick: make(chan struct{}, 1)}
	go func() {
		for range s.kick {
			s.mu.Lock()
			active := s.active
			s.mu.Unlock()
			events <- PlaybackActiveMsg{Active: active}
		}
	}()
	return s
}

// Set records the latest state and wakes the notifier without blocking.
func (s *playbackSignal) Set(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
	select {
	case s.kick <- struct{}{}:
	default:
	}
}
