package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"orbchat/config"
	"orbchat/orb"
	"orbchat/playback"
	"orbchat/protocol"
	"orbchat/session"
	"orbchat/stream"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// entry is one finalized transcript item.
type entry struct {
	Role    string
	Text    string
	Results *protocol.SearchResults
}

// Model is the root bubbletea model for the orbchat TUI.
type Model struct {
	cfg    *config.Config
	client *stream.Client
	sess   *session.Session
	queue  *playback.Queue
	driver *orb.Driver
	view   orbView
	store  *session.Store

	// events carries messages from the streaming and playback goroutines
	// into the update loop.
	events chan tea.Msg

	// Conversation state
	entries []entry
	partial string
	pending string // user message awaiting a session id to persist under

	// Request state. gen identifies the current request; messages stamped
	// with an older generation belong to a cancelled one and are dropped.
	gen          uint64
	streaming    bool
	cancelStream context.CancelFunc
	playing      bool

	// Backend state
	online bool
	probed bool

	// UI state
	input   string
	notice  string
	errText string
	width   int
	height  int
	frame   string
}

// New builds the root model from configuration.
func New(cfg *config.Config) Model {
	events := make(chan tea.Msg, 256)

	var sink playback.Sink
	if len(cfg.PlayerCommand) > 0 {
		s, err := playback.NewCommandSink(cfg.PlayerCommand)
		if err != nil {
			log.Printf("Audio playback disabled: %v", err)
		} else {
			sink = s
		}
	}

	signal := newPlaybackSignal(events)

	return Model{
		cfg:    cfg,
		client: stream.NewClient(cfg.BackendURL, cfg.HealthTimeout),
		sess:   session.New(stream.Mode(cfg.Mode), cfg.TTS),
		queue:  playback.NewQueue(sink, signal.Set),
		driver: orb.NewDriver(cfg.Hue, cfg.HoverIntensity, cfg.BackgroundColor),
		view:   newOrbView(),
		events: events,
	}
}

// Init starts the animation, the health probe loop, the event pump, and the
// history store.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameTickCmd(),
		healthCmd(m.client),
		waitEventCmd(m.events),
		openStoreCmd(m.cfg.HistoryPath),
	)
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cols, rows := m.orbSize()
		m.driver.Resize(cols, rows*2)
		return m, nil

	case frameTickMsg:
		params := m.driver.Advance(msg.At)
		cols, rows := m.orbSize()
		m.frame = m.view.Render(params, cols, rows)
		return m, frameTickCmd()

	case SessionAssignedMsg:
		if msg.Gen != m.gen {
			return m, waitEventCmd(m.events)
		}
		m.sess.Adopt(msg.ID)
		if m.store != nil && m.pending != "" {
			if err := m.store.RecordSession(m.sess.ID, m.sess.Mode); err != nil {
				log.Printf("Failed to record session: %v", err)
			} else if err := m.store.AppendMessage(m.sess.ID, roleUser, m.pending); err != nil {
				log.Printf("Failed to persist message: %v", err)
			}
			m.pending = ""
		}
		return m, waitEventCmd(m.events)

	case ChunkMsg:
		if msg.Gen != m.gen {
			return m, waitEventCmd(m.events)
		}
		m.partial += msg.Text
		return m, waitEventCmd(m.events)

	case AudioSegmentMsg:
		if msg.Gen != m.gen {
			return m, waitEventCmd(m.events)
		}
		m.queue.Enqueue(msg.Segment)
		return m, waitEventCmd(m.events)

	case SearchResultsMsg:
		if msg.Gen != m.gen {
			return m, waitEventCmd(m.events)
		}
		m.entries = append(m.entries, entry{Results: msg.Results})
		return m, waitEventCmd(m.events)

	case StreamFinishedMsg:
		if msg.Gen != m.gen {
			return m, waitEventCmd(m.events)
		}
		m.finishStream(msg)
		return m, waitEventCmd(m.events)

	case PlaybackActiveMsg:
		m.playing = msg.Active
		m.driver.SetActive(m.streaming || m.playing)
		return m, waitEventCmd(m.events)

	case HealthMsg:
		m.online = msg.Online
		m.probed = true
		return m, healthTickCmd(m.cfg.HealthPeriod)

	case healthTickMsg:
		return m, healthCmd(m.client)

	case storeOpenedMsg:
		m.store = msg.Store
		return m, nil

	case clearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// finishStream releases the send lock and finalizes the reply. It runs on
// every outcome so a failed request can never wedge the input.
func (m *Model) finishStream(msg StreamFinishedMsg) {
	m.streaming = false
	m.sess.Streaming = false
	m.driver.SetActive(m.playing)
	m.cancelStream = nil

	text := m.partial
	if msg.Result != nil && msg.Result.Text != "" {
		text = msg.Result.Text
	}
	m.partial = ""
	m.pending = ""

	if text != "" {
		m.entries = append(m.entries, entry{Role: roleAssistant, Text: text})
		if m.store != nil && m.sess.ID != "" {
			if err := m.store.AppendMessage(m.sess.ID, roleAssistant, text); err != nil {
				log.Printf("Failed to persist message: %v", err)
			}
		}
	}

	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		m.errText = msg.Err.Error()
	}
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.quit()

	case "enter":
		return m.submit()

	case "backspace":
		if m.input != "" {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil

	case "ctrl+n":
		return m.newChat()

	case "ctrl+r":
		if m.streaming {
			return m, nil
		}
		if m.sess.Mode == stream.ModeRealtime {
			m.sess.Mode = stream.ModeGeneral
		} else {
			m.sess.Mode = stream.ModeRealtime
		}
		m.notice = fmt.Sprintf("Switched to %s mode", m.sess.Mode)
		return m, clearNoticeCmd()

	case "ctrl+t":
		m.sess.TTS = !m.sess.TTS
		if m.sess.TTS {
			m.notice = "Speech on"
		} else {
			m.notice = "Speech off"
			m.queue.Reset()
		}
		return m, clearNoticeCmd()

	case "ctrl+b":
		m.notice = "Microphone capture is not available here; type instead"
		return m, clearNoticeCmd()

	case " ":
		m.input += " "
		return m, nil

	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		}
		return m, nil
	}
}

// submit sends the typed message. A request in flight keeps the input
// locked until its StreamFinishedMsg arrives.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input)
	if text == "" || m.streaming {
		return m, nil
	}

	m.input = ""
	m.errText = ""
	m.entries = append(m.entries, entry{Role: roleUser, Text: text})

	// Stale audio from the previous turn must never play into this one.
	m.queue.Reset()

	m.streaming = true
	m.sess.Streaming = true
	m.driver.SetActive(true)

	if m.sess.ID != "" && m.store != nil {
		if err := m.store.AppendMessage(m.sess.ID, roleUser, text); err != nil {
			log.Printf("Failed to persist message: %v", err)
		}
	} else {
		m.pending = text
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel
	m.gen++

	req := protocol.ChatRequest{
		Message:   text,
		SessionID: m.sess.RequestID(),
		TTS:       m.sess.TTS,
	}
	return m, sendCmd(ctx, m.gen, m.client, m.sess.Mode, req, m.events)
}

// newChat abandons the current conversation: the in-flight request is
// cancelled, queued audio is discarded, and the next message starts a fresh
// backend session.
func (m Model) newChat() (tea.Model, tea.Cmd) {
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	// Anything the dead request already buffered must not leak into the
	// fresh conversation.
	m.gen++
	m.queue.Reset()
	m.sess.Clear()
	m.entries = nil
	m.partial = ""
	m.pending = ""
	m.errText = ""
	m.streaming = false
	m.driver.SetActive(false)
	m.notice = "New conversation"
	return m, clearNoticeCmd()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelStream != nil {
		m.cancelStream()
	}
	m.queue.Stop()
	if m.store != nil {
		m.store.Close()
	}
	return m, tea.Quit
}

// orbSize returns the orb panel dimensions in cells.
func (m Model) orbSize() (cols, rows int) {
	rows = 9
	if m.height > 0 && m.height < 24 {
		rows = max(3, m.height/3)
	}
	cols = rows * 4
	if m.width > 0 && cols > m.width {
		cols = m.width
	}
	return cols, rows
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	if m.frame != "" {
		sections = append(sections, m.renderOrbPanel())
	}
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderTranscript())
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errText != "" {
		sections = append(sections, errorStyle.Render("Error: ")+errorTextStyle.Render(m.errText))
	}
	if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("ORBCHAT")
	mode := dimStyle.Render(fmt.Sprintf(" — %s mode", m.sess.Mode))

	var tts string
	if m.sess.TTS {
		tts = dimStyle.Render(" [TTS]")
	}

	var health string
	switch {
	case !m.probed:
		health = dimStyle.Render("  ⋯ probing")
	case m.online:
		health = onlineStyle.Render("  ● online")
	default:
		health = offlineStyle.Render("  ○ offline")
	}

	var busy string
	if m.streaming {
		busy = streamingStyle.Render("  ⟳ streaming")
	} else if m.playing {
		busy = streamingStyle.Render("  ♪ speaking")
	}

	return title + mode + tts + health + busy
}

func (m Model) renderOrbPanel() string {
	cols, _ := m.orbSize()
	pad := (m.width - cols) / 2
	if pad <= 0 {
		return m.frame
	}
	indent := strings.Repeat(" ", pad)
	lines := strings.Split(m.frame, "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTranscript() string {
	var lines []string
	textWidth := max(20, m.width-4)

	for _, e := range m.entries {
		if e.Results != nil {
			lines = append(lines, renderSearchCard(e.Results, textWidth)...)
			continue
		}

		label := assistantLabelStyle.Render("orb")
		if e.Role == roleUser {
			label = userLabelStyle.Render("you")
		}
		wrapped := wrapText(e.Text, textWidth)
		lines = append(lines, label+" "+wrapped[0])
		for _, wl := range wrapped[1:] {
			lines = append(lines, "    "+wl)
		}
	}

	if m.partial != "" {
		wrapped := wrapText(m.partial+"▌", textWidth)
		lines = append(lines, assistantLabelStyle.Render("orb")+" "+wrapped[0])
		for _, wl := range wrapped[1:] {
			lines = append(lines, "    "+wl)
		}
	}

	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("  Type a message and press Enter"))
	}

	visible := m.transcriptHeight()
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func renderSearchCard(r *protocol.SearchResults, width int) []string {
	var lines []string
	lines = append(lines, searchTitleStyle.Render("⌕ "+r.Query))
	if r.Answer != "" {
		for _, wl := range wrapText(r.Answer, width-2) {
			lines = append(lines, "  "+wl)
		}
	}
	for _, res := range r.Results {
		lines = append(lines, "  • "+res.Title+" "+searchURLStyle.Render(res.URL))
	}
	return lines
}

func (m Model) renderInput() string {
	cursor := "▌"
	if m.streaming {
		cursor = ""
	}
	return promptStyle.Render("> ") + m.input + cursor
}

func (m Model) renderFooter() string {
	parts := []string{
		footerKeyStyle.Render("Enter") + footerDescStyle.Render(" Send"),
		footerKeyStyle.Render("^N") + footerDescStyle.Render(" New chat"),
		footerKeyStyle.Render("^R") + footerDescStyle.Render(" Mode"),
		footerKeyStyle.Render("^T") + footerDescStyle.Render(" Speech"),
		footerKeyStyle.Render("^B") + footerDescStyle.Render(" Mic"),
		footerKeyStyle.Render("Esc") + footerDescStyle.Render(" Quit"),
	}
	return strings.Join(parts, "  ")
}

// transcriptHeight is the room left between the orb panel and the input.
func (m Model) transcriptHeight() int {
	_, orbRows := m.orbSize()
	// header + orb + dividers(2) + input + footer + notice slack
	reserved := orbRows + 7
	return max(3, m.height-reserved)
}

// Run starts the TUI and blocks until it exits.
func Run(cfg *config.Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Helpers

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			switch {
			case current == "":
				current = word
			case lipgloss.Width(current)+1+lipgloss.Width(word) <= width:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
