package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orbchat/server"
)

// stub-server runs a scripted local backend so the client can be developed
// and demoed without the real one.
func main() {
	port := flag.Int("port", 8000, "port to listen on")
	delay := flag.Duration("delay", 40*time.Millisecond, "pause between streamed events")
	flag.Parse()

	srv := server.NewServer(*port, *delay)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}
}
