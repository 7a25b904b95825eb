package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"orbchat/config"
	"orbchat/playback"
	"orbchat/protocol"
	"orbchat/stream"
)

// ask sends one message to the backend and prints the streamed reply. It is
// the headless counterpart of the TUI, handy for scripting and debugging.
func main() {
	mode := flag.String("mode", "", "chat mode: general or realtime (default from config)")
	sessionID := flag.String("session", "", "continue an existing backend session")
	tts := flag.Bool("tts", false, "request audio and play it through the configured player")
	flag.Parse()

	message := strings.Join(flag.Args(), " ")
	if message == "" {
		fmt.Fprintln(os.Stderr, "usage: ask [flags] <message>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	chatMode := stream.Mode(cfg.Mode)
	if *mode != "" {
		chatMode = stream.Mode(*mode)
	}
	if chatMode != stream.ModeGeneral && chatMode != stream.ModeRealtime {
		log.Fatalf("Unknown mode %q", chatMode)
	}

	var sink playback.Sink
	if *tts {
		sink, err = playback.NewCommandSink(cfg.PlayerCommand)
		if err != nil {
			log.Fatalf("Failed to set up audio playback: %v", err)
		}
	}

	client := stream.NewClient(cfg.BackendURL, cfg.HealthTimeout)
	ctx := context.Background()

	if !client.Healthy(ctx) {
		log.Printf("Backend at %s looks offline, trying anyway", cfg.BackendURL)
	}

	req := protocol.ChatRequest{Message: message, TTS: *tts}
	if *sessionID != "" {
		req.SessionID = sessionID
	}

	// Audio segments play strictly after one another, in arrival order.
	queue := playback.NewQueue(sink, nil)
	defer queue.Stop()

	h := &stream.Handler{
		OnSession: func(id string) {
			fmt.Fprintf(os.Stderr, "session: %s\n", id)
		},
		OnChunk: func(text string) {
			fmt.Print(text)
		},
		OnAudio: func(segment []byte, sentence string) {
			queue.Enqueue(segment)
		},
		OnSearchResults: func(r *protocol.SearchResults) {
			fmt.Fprintf(os.Stderr, "search: %s (%d results)\n", r.Query, len(r.Results))
		},
	}

	result, err := client.StreamMessage(ctx, chatMode, req, h)
	fmt.Println()
	if err != nil {
		log.Fatalf("Stream failed: %v", err)
	}
	if !result.Completed {
		log.Printf("Stream ended without a completion marker")
	}

	// Let queued audio finish before exiting.
	for queue.Active() {
		time.Sleep(100 * time.Millisecond)
	}
}
