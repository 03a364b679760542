// Package tui provides a Bubble Tea terminal user interface for the
// recording downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tdika/zoom-recording-downloader/internal/config"
	"github.com/tdika/zoom-recording-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2D8CFF")).
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
	StateReady State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	creds    *config.Credentials
	logs     []LogEntry
	err      error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64

	summary      download.Summary
	taskCount    int
	manifestPath string

	// Options
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model. Credentials are loaded from the
// environment before the UI starts.
func NewModel(settings *config.Settings, creds *config.Credentials) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2D8CFF"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateReady,
		spinner:  sp,
		progress: prog,
		settings: settings,
		creds:    creds,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when enumeration completes.
	InitDoneMsg struct {
		Manager  *download.Manager
		Tasks    int
		Manifest string
		Err      error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Summary download.Summary
		Err     error
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
			if m.state == StateReady {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateReady {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeRun(), m.spinner.Tick)
			}

		case "v":
			if m.state == StateReady {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a fresh run
				m.state = StateReady
				m.logs = nil
				m.err = nil
				m.downloadedFiles = 0
				m.totalFiles = 0
				m.receivedBytes = 0
				m.totalBytes = 0
				m.manager = nil
				m.summary = download.Summary{}
				m.taskCount = 0
				m.manifestPath = ""
				m.ctx, m.cancel = context.WithCancel(context.Background())
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.taskCount = msg.Tasks
			m.manifestPath = msg.Manifest
			m.state = StateDownloading
			// Start the actual downloads and tick for progress updates
			cmds = append(cmds, m.startDownloads(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.summary = msg.Summary
		if m.manager != nil {
			received, total, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.totalBytes = total
			m.downloadedFiles = files
			m.totalFiles = totalFiles
		}
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			received, total, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.totalBytes = total
			m.downloadedFiles = files
			m.totalFiles = totalFiles

			var percent float64
			if totalFiles > 0 {
				percent = float64(files) / float64(totalFiles)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
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

	// Header
	b.WriteString(titleStyle.Render("Zoom Recording Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download cloud recordings for every user on the account"))
	b.WriteString("\n\n")

	switch m.state {
	case StateReady:
		b.WriteString(m.viewReady())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewReady() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Ready to enumerate recordings"))
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Run:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Account:     %s\n", m.creds.AccountID))
	b.WriteString(fmt.Sprintf("  Months back: %d\n", m.settings.MonthsBack))
	b.WriteString(fmt.Sprintf("  Workers:     %d\n", m.settings.MaxConcurrentDownloads))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Enumerating users and recordings..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d video file(s)", m.taskCount)))
	b.WriteString("\n")
	if m.manifestPath != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Manifest: %s", m.manifestPath)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Progress bar
	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.downloadedFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete\n\n"+
			"Successful downloads: %d\n"+
			"Failed downloads:     %d\n"+
			"Size: %.2f MB\n\n"+
			"Saved to: %s",
		m.summary.Succeeded,
		m.summary.Failed,
		float64(m.receivedBytes)/1024/1024,
		m.summary.Dir,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
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
		prefix := "*"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "x"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "+"
		case download.LevelInfo:
			style = infoStyle
			prefix = ">"
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
	case StateReady:
		return "enter: start | v: verbose | esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run | q: quit"
	}
	return ""
}

// initializeRun enumerates recordings and writes the manifest.
func (m *Model) initializeRun() tea.Cmd {
	return func() tea.Msg {
		// Progress events are not sent directly; the UI polls via
		// TickMsg while downloads run.
		manager := download.NewManager(m.settings, m.creds, nil)

		if err := manager.Initialize(m.ctx); err != nil {
			return InitDoneMsg{Err: err}
		}

		manifestPath, err := manager.WriteManifest()
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Manager:  manager,
			Tasks:    len(manager.Tasks()),
			Manifest: manifestPath,
		}
	}
}

// startDownloads runs the download pool in the background.
func (m *Model) startDownloads() tea.Cmd {
	return func() tea.Msg {
		if m.manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := m.manager.StartDownloads(m.ctx)
		return DownloadDoneMsg{
			Summary: m.manager.Summary(),
			Err:     err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, creds *config.Credentials) error {
	p := tea.NewProgram(NewModel(settings, creds), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
