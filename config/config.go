package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	BackendURL    string        // Base URL of the assistant backend
	Mode          string        // "general" or "realtime"
	TTS           bool          // Request spoken audio with each message
	PlayerCommand []string      // External player fed one audio segment per run via stdin
	HealthTimeout time.Duration // Budget for the /health probe
	HealthPeriod  time.Duration // Interval between status-bar health probes

	// Orb appearance
	Hue             float64    // Hue offset in degrees
	HoverIntensity  float64    // Activation distortion strength, >= 0
	BackgroundColor [3]float64 // RGB in [0,1], backdrop the orb composites over

	HistoryPath string // SQLite conversation history
	LogFile     string // Client log destination (stdout belongs to the TUI)
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".orbchat")

	config := &Config{
		BackendURL:      "http://localhost:8000",
		Mode:            "general",
		TTS:             true,
		PlayerCommand:   []string{"mpg123", "-q", "-"},
		HealthTimeout:   3 * time.Second,
		HealthPeriod:    30 * time.Second,
		Hue:             0,
		HoverIntensity:  0.4,
		BackgroundColor: [3]float64{0, 0, 0},
		HistoryPath:     filepath.Join(dataDir, "history.db"),
		LogFile:         filepath.Join(dataDir, "client.log"),
	}

	// Optional: BACKEND_URL
	if url := os.Getenv("BACKEND_URL"); url != "" {
		config.BackendURL = strings.TrimRight(url, "/")
	}

	// Optional: CHAT_MODE ("general" or "realtime")
	if mode := os.Getenv("CHAT_MODE"); mode != "" {
		switch mode {
		case "general", "realtime":
			config.Mode = mode
		default:
			return nil, fmt.Errorf("invalid CHAT_MODE: must be 'general' or 'realtime'")
		}
	}

	// Optional: TTS_ENABLED
	if tts := os.Getenv("TTS_ENABLED"); tts != "" {
		b, err := strconv.ParseBool(tts)
		if err != nil {
			return nil, fmt.Errorf("invalid TTS_ENABLED: %w", err)
		}
		config.TTS = b
	}

	// Optional: PLAYER_COMMAND (space-separated, segment bytes arrive on stdin)
	if player := os.Getenv("PLAYER_COMMAND"); player != "" {
		config.PlayerCommand = strings.Fields(player)
	}

	// Optional: HEALTH_TIMEOUT (in seconds)
	if timeout := os.Getenv("HEALTH_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid HEALTH_TIMEOUT: %w", err)
		}
		if t <= 0 {
			return nil, fmt.Errorf("invalid HEALTH_TIMEOUT: must be positive")
		}
		config.HealthTimeout = time.Duration(t) * time.Second
	}

	// Optional: HEALTH_PERIOD (in seconds)
	if period := os.Getenv("HEALTH_PERIOD"); period != "" {
		p, err := strconv.Atoi(period)
		if err != nil {
			return nil, fmt.Errorf("invalid HEALTH_PERIOD: %w", err)
		}
		if p <= 0 {
			return nil, fmt.Errorf("invalid HEALTH_PERIOD: must be positive")
		}
		config.HealthPeriod = time.Duration(p) * time.Second
	}

	// Optional: ORB_HUE (degrees, any real value)
	if hue := os.Getenv("ORB_HUE"); hue != "" {
		h, err := strconv.ParseFloat(hue, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ORB_HUE: %w", err)
		}
		config.Hue = h
	}

	// Optional: ORB_HOVER_INTENSITY (non-negative)
	if intensity := os.Getenv("ORB_HOVER_INTENSITY"); intensity != "" {
		v, err := strconv.ParseFloat(intensity, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ORB_HOVER_INTENSITY: %w", err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid ORB_HOVER_INTENSITY: must be >= 0")
		}
		config.HoverIntensity = v
	}

	// Optional: ORB_BACKGROUND (hex color as in "#1a1a2e")
	if bg := os.Getenv("ORB_BACKGROUND"); bg != "" {
		rgb, err := ParseHexColor(bg)
		if err != nil {
			return nil, fmt.Errorf("invalid ORB_BACKGROUND: %w", err)
		}
		config.BackgroundColor = rgb
	}

	// Optional: HISTORY_PATH
	if path := os.Getenv("HISTORY_PATH"); path != "" {
		config.HistoryPath = path
	}

	// Optional: LOG_FILE
	if path := os.Getenv("LOG_FILE"); path != "" {
		config.LogFile = path
	}

	return config, nil
}

// ParseHexColor converts "#rrggbb" (or "rrggbb") to RGB channels in [0,1].
func ParseHexColor(s string) ([3]float64, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return [3]float64{}, fmt.Errorf("expected 6 hex digits, got %q", s)
	}
	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return [3]float64{}, err
		}
		rgb[i] = float64(v) / 255.0
	}
	return rgb, nil
}
