package main

import (
	"log"
	"os"
	"path/filepath"

	"orbchat/config"
	"orbchat/ui"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The terminal belongs to the TUI, so logging goes to a file.
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				log.SetOutput(f)
				defer f.Close()
			}
		}
	}

	if err := ui.Run(cfg); err != nil {
		log.Fatalf("UI error: %v", err)
	}
}
