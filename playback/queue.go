package playback

import (
	"context"
	"log"
	"sync"
)

// Queue plays audio segments in arrival order through a single sink. At most
// one drain loop runs at a time; every loop captures the generation counter
// at start and abandons itself the moment the live counter moves past it, so
// a loop started before a Stop can never touch the sink or the active signal
// after a newer loop took over.
type Queue struct {
	mu         sync.Mutex
	sink       Sink // nil when playback is disabled by configuration
	onActive   func(bool)
	segments   [][]byte
	generation uint64
	suppressed bool
	running    bool
	cancel     context.CancelFunc // cancels the in-flight Play, if any
}

// NewQueue creates a playback queue. A nil sink disables playback: every
// Enqueue becomes a no-op. onActive, if set, is asserted while a drain loop
// runs and cleared when it ends; it is invoked with the queue lock held and
// must not call back into the Queue.
func NewQueue(sink Sink, onActive func(bool)) *Queue {
	return &Queue{sink: sink, onActive: onActive}
}

// Enqueue appends a segment and starts the drain loop if none is running.
// No-op while suppressed (after Stop, until Reset) or when playback is
// disabled.
func (q *Queue) Enqueue(segment []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.suppressed || q.sink == nil {
		return
	}
	q.segments = append(q.segments, segment)
	if !q.running {
		q.running = true
		q.setActive(true)
		go q.drain(q.generation)
	}
}

// Stop suppresses further enqueues, halts the current playback, and clears
// the queue. Idempotent.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.suppressed = true
	q.generation++
	q.segments = nil
	q.running = false
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.setActive(false)
}

// Reset is Stop followed by clearing the suppression, so a fresh turn's
// segments are accepted again. Call before each new outbound message.
func (q *Queue) Reset() {
	q.Stop()
	q.mu.Lock()
	q.suppressed = false
	q.mu.Unlock()
}

// Active reports whether a drain loop is running, including the segment
// currently in the sink.
func (q *Queue) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Pending returns the number of queued, not yet played segments.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.segments)
}

// drain consumes the queue one segment at a time. gen is the generation the
// loop was started under; once the live counter differs, this loop is stale
// and must leave all shared state to its successor.
func (q *Queue) drain(gen uint64) {
	for {
		q.mu.Lock()
		if q.generation != gen || q.suppressed || len(q.segments) == 0 {
			if q.generation == gen {
				q.running = false
				q.setActive(false)
			}
			q.mu.Unlock()
			return
		}
		segment := q.segments[0]
		q.segments = q.segments[1:]
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		sink := q.sink
		q.mu.Unlock()

		// Success and failure both count as completion; the queue moves on.
		if err := sink.Play(ctx, segment); err != nil && ctx.Err() == nil {
			log.Printf("playback: segment failed: %v", err)
		}

		q.mu.Lock()
		if q.generation == gen && q.cancel != nil {
			q.cancel = nil
		}
		q.mu.Unlock()
		cancel()
	}
}

func (q *Queue) setActive(active bool) {
	if q.onActive != nil {
		q.onActive(active)
	}
}
