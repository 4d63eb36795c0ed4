// Package device implements the interactive runtime: a finite-state control
// loop that coordinates capture, the cancellable analysis request, response
// viewing, archive browsing, and the idle screensaver.
//
// The model follows the single-writer rule: device and presentation state
// are mutated only on the bubbletea update goroutine. Capture and transport
// run as commands on background goroutines and communicate exclusively
// through typed messages; cancellation reaches the transport through a
// context owned by the model.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sightbox/sightbox/internal/archive"
	"github.com/sightbox/sightbox/internal/config"
	"github.com/sightbox/sightbox/internal/luma"
	"github.com/sightbox/sightbox/internal/present"
	"github.com/sightbox/sightbox/internal/prompt"
	"github.com/sightbox/sightbox/internal/quality"
	"github.com/sightbox/sightbox/internal/vision"
)

const noticeTimeout = 4 * time.Second

// Model is the root bubbletea model: the device controller.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger

	camera   Camera
	light    Light
	store    *archive.Store
	index    *archive.Index // nil when the index could not be opened
	analyzer Analyzer

	qualities *quality.Selector
	prompts   *prompt.Selector

	state      State
	savedState State // restored when the screensaver wakes
	notice     string

	// Sending
	cancelSend context.CancelFunc
	sendStart  time.Time

	// Viewing
	view           *present.View
	viewLabel      string
	viewFromBrowse bool

	// Browsing
	entries  []archive.Entry
	captions map[int]string
	selected int

	lastInput time.Time
	width     int
	height    int
}

// New assembles the controller from its collaborators. The selectors are
// built here from the validated configuration tables.
func New(cfg *config.Config, camera Camera, light Light, store *archive.Store,
	index *archive.Index, analyzer Analyzer, logger *slog.Logger) (Model, error) {

	qualities, err := quality.NewSelector(cfg.QualityModes(), cfg.HardCeilingBytes)
	if err != nil {
		return Model{}, err
	}
	prompts, err := prompt.NewSelector(cfg.PromptModes())
	if err != nil {
		return Model{}, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return Model{
		cfg:       cfg,
		logger:    logger,
		camera:    camera,
		light:     light,
		store:     store,
		index:     index,
		analyzer:  analyzer,
		qualities: qualities,
		prompts:   prompts,
		state:     StateViewfinder,
		lastInput: time.Now(),
	}, nil
}

// State returns the current device state.
func (m Model) State() State { return m.state }

// Init starts the idle timer when a screensaver timeout is configured.
func (m Model) Init() tea.Cmd {
	if m.cfg.IdleTimeout() > 0 {
		return idleTickCmd()
	}
	return nil
}

func idleTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return idleTickMsg{}
	})
}

func clearNoticeCmd() tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

// captureCmd runs the capture pipeline off the update goroutine: darkness
// check, optional fill light, capture, size validation, and archiving. The
// image is archived before the transport ever sees it, so a saved image
// exists even if the network step fails or is cancelled.
func captureCmd(camera Camera, light Light, store *archive.Store,
	qualities *quality.Selector, flash config.FlashConfig, logger *slog.Logger) tea.Cmd {

	mode := qualities.Current()
	return func() tea.Msg {
		if flash.Auto {
			frame, err := camera.Frame()
			if err != nil {
				// Fail open: an unreadable preview never blocks capture.
				logger.Warn("viewfinder_frame_unreadable", "error", err)
			} else if luma.IsDark(frame, flash.DarkThreshold) {
				light.Set(true)
				defer light.Set(false)
			}
		}

		data, err := camera.Capture(mode.Resolution)
		if err != nil {
			return captureFailedMsg{err: fmt.Errorf("capture: %w", err)}
		}
		if err := qualities.Validate(len(data)); err != nil {
			return captureFailedMsg{err: err}
		}

		seq, err := store.NextSequence()
		if err != nil {
			return captureFailedMsg{err: err}
		}
		path, err := store.SaveImage(data, seq)
		if err != nil {
			return captureFailedMsg{err: err}
		}

		logger.Info("capture_archived", "seq", seq, "path", path, "bytes", len(data), "mode", mode.Name)
		return captureDoneMsg{data: data, seq: seq, imagePath: path}
	}
}

// analyzeCmd runs one analysis request. The image bytes belong to this
// command from here on; once Analyze returns they are released.
func analyzeCmd(ctx context.Context, analyzer Analyzer, data []byte,
	pm prompt.Mode, seq int, imagePath string, fromBrowse bool) tea.Cmd {

	return func() tea.Msg {
		out := analyzer.Analyze(ctx, data, pm.Text)
		return analysisDoneMsg{
			outcome:    out,
			promptMode: pm,
			seq:        seq,
			imagePath:  imagePath,
			fromBrowse: fromBrowse,
		}
	}
}

func focusCmd(camera Camera, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		if err := camera.Focus(); err != nil {
			logger.Warn("autofocus_failed", "error", err)
		}
		return focusDoneMsg{}
	}
}

// Update processes messages. A panic inside any state handler is caught
// here, logged, and resolved by returning to the viewfinder: a single failed
// operation must never leave the device unresponsive.
func (m Model) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("state_handler_panic", "state", m.state.String(), "panic", r)
			m.state = StateViewfinder
			m.view = nil
			m.cancelSend = nil
			m.notice = "internal error"
			model, cmd = m, clearNoticeCmd()
		}
	}()

	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case captureDoneMsg:
		return m.startSending(msg.data, msg.seq, msg.imagePath, false)

	case captureFailedMsg:
		m.logger.Error("capture_failed", "error", msg.err)
		m.state = StateViewfinder
		m.notice = captureNotice(msg.err)
		return m, clearNoticeCmd()

	case focusDoneMsg:
		if m.state == StateFocusing {
			m.state = StateViewfinder
		}
		return m, nil

	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)

	case clearNoticeMsg:
		m.notice = ""
		return m, nil

	case idleTickMsg:
		timeout := m.cfg.IdleTimeout()
		if timeout > 0 && m.state != StateScreensaver && time.Since(m.lastInput) >= timeout {
			m.logger.Info("screensaver_on", "from", m.state.String())
			m.savedState = m.state
			m.state = StateScreensaver
		}
		return m, idleTickCmd()
	}

	return m, nil
}

// startSending transitions to Sending and launches the transport request.
// The cancel function it stashes is the only channel back into the in-flight
// request.
func (m Model) startSending(data []byte, seq int, imagePath string, fromBrowse bool) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSend = cancel
	m.sendStart = time.Now()
	m.state = StateSending

	pm := m.prompts.Current()
	m.logger.Info("analysis_started", "seq", seq, "prompt", pm.Name, "bytes", len(data))
	return m, analyzeCmd(ctx, m.analyzer, data, pm, seq, imagePath, fromBrowse)
}

func (m Model) handleAnalysisDone(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancelSend != nil {
		m.cancelSend()
		m.cancelSend = nil
	}

	out := msg.outcome
	var cmd tea.Cmd

	switch out.Status {
	case vision.StatusSuccess:
		m.logger.Info("analysis_succeeded", "seq", msg.seq, "elapsed", out.Elapsed, "chars", len(out.Text))
		if _, err := m.store.SaveResponse(out.Text, msg.promptMode.Label, msg.seq, msg.imagePath); err != nil {
			m.logger.Error("response_save_failed", "seq", msg.seq, "error", err)
			m.notice = "response not saved"
			cmd = clearNoticeCmd()
		}
		if m.index != nil {
			c := archive.Caption{
				Sequence:    msg.seq,
				PromptLabel: msg.promptMode.Label,
				Model:       m.cfg.API.Model,
				Elapsed:     out.Elapsed,
				CreatedAt:   time.Now(),
			}
			if err := m.index.Record(c); err != nil {
				m.logger.Warn("caption_record_failed", "seq", msg.seq, "error", err)
			}
		}
		m.view = present.Load(out.Text, !msg.promptMode.NeverTruncate, m.cfg.PresentConfig())

	case vision.StatusCancelled:
		m.logger.Info("analysis_cancelled", "seq", msg.seq, "elapsed", out.Elapsed)
		m.view = present.Load("Analysis cancelled.", false, m.cfg.PresentConfig())

	case vision.StatusFailed:
		m.logger.Error("analysis_failed", "seq", msg.seq, "kind", out.Kind.String(), "message", out.Message)
		m.view = present.Load(fmt.Sprintf("Analysis failed (%s): %s", out.Kind, out.Message), false, m.cfg.PresentConfig())
	}

	m.viewLabel = msg.promptMode.Label
	m.viewFromBrowse = msg.fromBrowse

	// If the screensaver kicked in mid-request, leave the display off and
	// let the next press wake into the finished view.
	if m.state == StateScreensaver {
		m.savedState = StateViewing
	} else {
		m.state = StateViewing
	}
	return m, cmd
}

// handleKey processes one button press. Every press resets the idle timer;
// a press during the screensaver only wakes the display.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.lastInput = time.Now()
	key := msg.String()

	if m.state == StateScreensaver {
		m.logger.Info("screensaver_off", "restore", m.savedState.String())
		m.state = m.savedState
		return m, nil
	}

	switch key {
	case KeyQuit, KeyCtrlC:
		if m.cancelSend != nil {
			m.cancelSend()
		}
		return m, tea.Quit
	}

	switch m.state {
	case StateViewfinder:
		return m.handleViewfinderKey(key)
	case StateSending:
		return m.handleSendingKey(key)
	case StateViewing:
		return m.handleViewingKey(key)
	case StateBrowsing:
		return m.handleBrowsingKey(key)
	default:
		// Focusing and Capturing: the hardware is busy, presses are dropped.
		return m, nil
	}
}

func (m Model) handleViewfinderKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyShutter:
		if m.store.Disabled() {
			m.notice = "storage unavailable"
			return m, clearNoticeCmd()
		}
		m.state = StateCapturing
		return m, captureCmd(m.camera, m.light, m.store, m.qualities, m.cfg.Flash, m.logger)

	case KeyFocus:
		m.state = StateFocusing
		return m, focusCmd(m.camera, m.logger)

	case KeyLeft:
		m.prompts.Cycle(-1)
	case KeyRight:
		m.prompts.Cycle(1)
	case KeyUp:
		m.qualities.Cycle(-1)
	case KeyDown:
		m.qualities.Cycle(1)

	case KeySelect:
		return m.enterBrowse()
	}
	return m, nil
}

func (m Model) handleSendingKey(key string) (tea.Model, tea.Cmd) {
	if key == KeyBack && m.cancelSend != nil {
		// The request worker notices the cancelled context and reports a
		// Cancelled outcome; the transition happens when it arrives.
		m.cancelSend()
	}
	return m, nil
}

func (m Model) handleViewingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyUp:
		m.view.Scroll(-1)
	case KeyDown:
		m.view.Scroll(1)
	case KeySelect:
		m.view.ToggleVerbosity()
	case KeyBack:
		m.view = nil
		if m.viewFromBrowse {
			return m.enterBrowse()
		}
		m.state = StateViewfinder
	}
	return m, nil
}

func (m Model) handleBrowsingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case KeyDown:
		if m.selected < len(m.entries)-1 {
			m.selected++
		}

	case KeyConfirm:
		if m.selected >= len(m.entries) {
			return m, nil
		}
		entry := m.entries[m.selected]
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			m.logger.Error("saved_image_unreadable", "path", entry.Path, "error", err)
			m.notice = "could not read image"
			return m, clearNoticeCmd()
		}
		return m.startSending(data, entry.Sequence, entry.Path, true)

	case KeySelect, KeyBack:
		m.state = StateViewfinder
		m.entries = nil
		m.captions = nil
	}
	return m, nil
}

// enterBrowse loads the archive listing and its captions.
func (m Model) enterBrowse() (tea.Model, tea.Cmd) {
	entries, err := m.store.ListSaved()
	if err != nil {
		m.logger.Error("archive_list_failed", "error", err)
		m.state = StateViewfinder
		m.notice = "archive unavailable"
		return m, clearNoticeCmd()
	}

	m.entries = entries
	m.captions = make(map[int]string, len(entries))
	if m.index != nil {
		for _, e := range entries {
			if c, err := m.index.Lookup(e.Sequence); err == nil && c != nil {
				m.captions[e.Sequence] = fmt.Sprintf("%s · %.1fs", c.PromptLabel, c.Elapsed.Seconds())
			}
		}
	}

	m.selected = len(entries) - 1 // newest last, start there
	if m.selected < 0 {
		m.selected = 0
	}
	m.state = StateBrowsing
	return m, nil
}

func captureNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, quality.ErrOversized):
		return "image too large"
	case errors.Is(err, archive.ErrStorageDisabled):
		return "storage unavailable"
	default:
		return "capture failed"
	}
}
