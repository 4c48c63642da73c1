// Package tui provides a Bubble Tea terminal user interface for bandcamp-mosaic.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/bandcamp-mosaic/internal/cache"
	"github.com/handiism/bandcamp-mosaic/internal/config"
	"github.com/handiism/bandcamp-mosaic/internal/download"
	"github.com/handiism/bandcamp-mosaic/internal/model"
	"github.com/handiism/bandcamp-mosaic/internal/mosaic"
	"github.com/handiism/bandcamp-mosaic/internal/source"
	"github.com/spf13/afero"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateLoading
	StateAcquiring
	StateComposing
	StateComplete
	StateError
)

const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	albums    int
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	// Pipeline
	manager *download.Manager
	store   *cache.Store
	events  chan download.ProgressEvent

	// Results
	done    int
	total   int
	summary download.Summary
	mosaic  mosaic.Result

	// Options
	retryMisses bool
	skipMosaic  bool
	verbose     bool

	width  int
	height int
}

// NewModel creates a new TUI model using settings for the cache, output and
// network parameters.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "library.tsv or ~/Music"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		events:    make(chan download.ProgressEvent, 256),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries a single progress event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// LoadDoneMsg is sent when the album list has been read and the
	// acquisition pipeline is ready.
	LoadDoneMsg struct {
		IDs     []model.AlbumIdentity
		Manager *download.Manager
		Store   *cache.Store
		Cleared int
		Err     error
	}

	// AcquireDoneMsg is sent when acquisition finished or was cancelled.
	AcquireDoneMsg struct {
		Summary download.Summary
		Err     error
	}

	// MosaicDoneMsg is sent when the mosaic has been built.
	MosaicDoneMsg struct {
		Result mosaic.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateLoading || m.state == StateAcquiring || m.state == StateComposing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateLoading
				return m, tea.Batch(
					loadSource(strings.TrimSpace(m.textInput.Value()), m.settings, m.retryMisses, m.events),
					m.spinner.Tick,
				)
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.retryMisses = !m.retryMisses
			}
			return m, nil

		case "ctrl+n":
			if m.state == StateInput {
				m.skipMosaic = !m.skipMosaic
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.appendLog(msg.Event)

	case LoadDoneMsg:
		if m.state != StateLoading {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.albums = len(msg.IDs)
		m.total = len(msg.IDs)
		m.manager = msg.Manager
		m.store = msg.Store
		if msg.Cleared > 0 {
			m.appendLog(download.ProgressEvent{
				Message: fmt.Sprintf("Cleared %d miss markers", msg.Cleared),
				Level:   download.LevelInfo,
			})
		}
		m.state = StateAcquiring
		cmds = append(cmds, runAcquisition(m.ctx, m.manager, msg.IDs), m.tickProgress())

	case AcquireDoneMsg:
		if m.state != StateAcquiring {
			return m, nil
		}
		m.drainEvents()
		m.summary = msg.Summary
		m.done = msg.Summary.Processed()
		if msg.Err != nil || m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
			break
		}
		if m.skipMosaic {
			m.state = StateComplete
			break
		}
		m.state = StateComposing
		cmds = append(cmds, buildMosaic(m.ctx, m.settings, m.store), m.spinner.Tick)

	case MosaicDoneMsg:
		if m.state != StateComposing {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.mosaic = msg.Result
		m.state = StateComplete

	case TickMsg:
		if m.manager != nil && m.state == StateAcquiring {
			m.done, m.total = m.manager.GetProgress()
			m.drainEvents()

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) reset() Model {
	m.cancel()
	next := NewModel(m.settings)
	next.width, next.height = m.width, m.height
	next.progress.Width = m.progress.Width
	next.retryMisses, next.skipMosaic, next.verbose = m.retryMisses, m.skipMosaic, m.verbose
	next.textInput.SetValue(m.textInput.Value())
	return next
}

func (m *Model) appendLog(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			m.appendLog(event)
		default:
			return
		}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎨 Bandcamp Mosaic"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Build a cover mosaic from your album list"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateLoading:
		b.WriteString(m.viewBusy("Reading albums..."))
	case StateAcquiring:
		b.WriteString(m.viewAcquiring())
	case StateComposing:
		b.WriteString(m.viewBusy("Building mosaic..."))
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Album list (TSV export or music folder):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Retry previous misses (ctrl+r)\n", checkbox(m.retryMisses)))
	b.WriteString(fmt.Sprintf("  %s Skip mosaic (ctrl+n)\n", checkbox(m.skipMosaic)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cache: %s | Output: %s", m.settings.CacheDir, m.settings.OutputPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewBusy(label string) string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(label))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewAcquiring() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d unique albums", m.albums)))
	b.WriteString("\n\n")

	var percent float64
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Albums: %d/%d", m.done, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	s := m.summary
	text := fmt.Sprintf(
		"✨ Done!\n\n"+
			"Albums:  %d\n"+
			"Found:   %d\n"+
			"Missed:  %d\n"+
			"Cached:  %d",
		s.Total, s.Resolved, s.Missed, s.Cached,
	)
	if s.Collisions > 0 {
		text += fmt.Sprintf("\nSkipped: %d (cache key collisions)", s.Collisions)
	}

	switch {
	case m.skipMosaic:
	case m.mosaic.Tiles == 0:
		text += "\n\nNo images found."
	default:
		text += fmt.Sprintf("\n\nMosaic built with %d albums:\n%s", m.mosaic.Tiles, m.mosaic.OutputPath)
	}

	b.WriteString(boxStyle.Render(text))
	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+r: retry misses • ctrl+n: skip mosaic • ctrl+o: verbose • esc: quit"
	case StateLoading, StateAcquiring, StateComposing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: run again • q: quit"
	}
	return ""
}

// loadSource reads the album list and prepares the cache and the manager.
// Progress events are pushed to events without blocking; the model drains
// them on every tick.
func loadSource(path string, settings *config.Settings, retryMisses bool, events chan<- download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		ids, err := source.Load(path)
		if err != nil {
			return LoadDoneMsg{Err: err}
		}

		store, err := cache.NewStore(afero.NewOsFs(), settings.CacheDir)
		if err != nil {
			return LoadDoneMsg{Err: err}
		}

		var cleared int
		if retryMisses {
			if cleared, err = store.ClearMisses(); err != nil {
				return LoadDoneMsg{Err: err}
			}
		}

		acquirer := download.NewAcquirerFromSettings(settings, store)
		manager := download.NewManager(settings, acquirer, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		})

		return LoadDoneMsg{IDs: ids, Manager: manager, Store: store, Cleared: cleared}
	}
}

// runAcquisition runs the manager in the background.
func runAcquisition(ctx context.Context, manager *download.Manager, ids []model.AlbumIdentity) tea.Cmd {
	return func() tea.Msg {
		summary, err := manager.Run(ctx, ids)
		return AcquireDoneMsg{Summary: summary, Err: err}
	}
}

// buildMosaic composes every cached cover into the configured output file.
func buildMosaic(ctx context.Context, settings *config.Settings, store *cache.Store) tea.Cmd {
	return func() tea.Msg {
		res, err := mosaic.NewCompositor(afero.NewOsFs(), settings).BuildFromCache(ctx, store, settings.OutputPath)
		return MosaicDoneMsg{Result: res, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
