// Package playback plays streamed audio segments strictly one at a time
// through a single sink, guarding against stale drain loops with a
// generation counter.
package playback

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Sink plays one audio segment to completion. Play must return once the
// segment finished or failed, and should honor ctx cancellation by stopping
// playback early.
type Sink interface {
	Play(ctx context.Context, segment []byte) error
}

// CommandSink plays each segment by running an external player process and
// writing the segment bytes to its stdin. The process exiting is the
// completion signal; cancelling the context kills it.
type CommandSink struct {
	command []string
}

// NewCommandSink creates a sink around a player command line, e.g.
// ["mpg123", "-q", "-"].
func NewCommandSink(command []string) (*CommandSink, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("empty player command")
	}
	return &CommandSink{command: command}, nil
}

// Play runs one player process for one segment.
func (s *CommandSink) Play(ctx context.Context, segment []byte) error {
	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Stdin = bytes.NewReader(segment)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("player %s: %w", s.command[0], err)
	}
	return nil
}
