package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timesheets-app/timesheets/internal/model"
	"github.com/timesheets-app/timesheets/internal/timer"
)

// Controller is the part of the timer service the watch view drives.
type Controller interface {
	Status(ctx context.Context) timer.Status
	Pause(ctx context.Context) timer.Status
	Resume(ctx context.Context) timer.Status
	Stop(ctx context.Context) timer.Status
}

// LinesFunc loads the timesheet lines shown under the timer.
type LinesFunc func(ctx context.Context) ([]*model.TimesheetView, error)

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// refreshMsg is sent when the lines need reloading.
type refreshMsg struct{}

type keyMap struct {
	Toggle  key.Binding
	Stop    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Stop, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// WatchConfig holds configuration for the watch view.
type WatchConfig struct {
	Timer Controller
	Lines LinesFunc
	// TickInterval is how often the clock is redrawn.
	TickInterval time.Duration
	MaxLines     int
	Now          func() time.Time
}

// WatchModel is the bubbletea model for "timer watch".
type WatchModel struct {
	ctx   context.Context
	timer Controller
	lines LinesFunc

	// Data
	status timer.Status
	today  []*model.TimesheetView

	// UI state
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	// Configuration
	tickInterval time.Duration
	maxLines     int
	now          func() time.Time
}

// NewWatchModel creates a new watch model.
func NewWatchModel(ctx context.Context, cfg WatchConfig) *WatchModel {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.MaxLines == 0 {
		cfg.MaxLines = 8
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = StyleSpinner

	return &WatchModel{
		ctx:          ctx,
		timer:        cfg.Timer,
		lines:        cfg.Lines,
		spinner:      sp,
		help:         help.New(),
		keys:         defaultKeys(),
		tickInterval: cfg.TickInterval,
		maxLines:     cfg.MaxLines,
		now:          cfg.Now,
	}
}

// Init initializes the model.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tickCmd(),
		m.refreshCmd(),
	)
}

// Update handles messages and updates the model.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		// The timer may be changed by another process between ticks.
		m.status = m.timer.Status(m.ctx)
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		return m, m.tickCmd()

	case refreshMsg:
		m.loadData()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *WatchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		switch m.status.State {
		case model.TimerRunning:
			m.apply(m.timer.Pause(m.ctx))
		case model.TimerPaused:
			m.apply(m.timer.Resume(m.ctx))
		default:
			m.setMessage("No active timer. Use 'timesheets timer start <timesheet-id>'", 3*time.Second)
		}
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if m.status.State == model.TimerIdle {
			m.setMessage("No active timer to stop", 2*time.Second)
			return m, nil
		}
		m.apply(m.timer.Stop(m.ctx))
		m.loadData()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loadData()
		m.setMessage("Refreshed", time.Second)
		return m, nil
	}

	return m, nil
}

// apply records the outcome of a timer action.
func (m *WatchModel) apply(st timer.Status) {
	if !st.Success {
		m.err = st.Err()
		return
	}
	m.err = nil
	m.status = st
	if st.Message != "" {
		m.setMessage(st.Message, 2*time.Second)
	}
}

// View renders the watch view.
func (m *WatchModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	status := NewStatusComponent(m.status, m.activeLine(), m.width)
	status.Spinner = m.spinner.View()
	sections = append(sections, status.View())

	if m.lines != nil {
		lines := NewLinesComponent(m.today, m.width, m.maxLines)
		lines.ActiveID = m.status.TimesheetID
		sections = append(sections, lines.View())
	}

	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title and the clock.
func (m *WatchModel) renderHeader() string {
	title := StyleTitle.Render("Timesheet Timer")
	now := StyleSubtitle.Render(m.now().Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", now) + "\n"
}

// activeLine returns the loaded line bound to the timer, if any.
func (m *WatchModel) activeLine() *model.TimesheetView {
	if m.status.TimesheetID == 0 {
		return nil
	}
	for _, l := range m.today {
		if l.ID == m.status.TimesheetID {
			return l
		}
	}
	return nil
}

// loadData reloads the timer status and today's lines.
func (m *WatchModel) loadData() {
	m.status = m.timer.Status(m.ctx)
	if !m.status.Success {
		m.err = m.status.Err()
		return
	}
	if m.lines == nil {
		m.err = nil
		return
	}
	lines, err := m.lines(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.today = lines
	m.err = nil
}

// setMessage sets a temporary message.
func (m *WatchModel) setMessage(msg string, d time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(d)
}

// tickCmd returns a command that sends a tick message.
func (m *WatchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd returns a command that sends a refresh message.
func (m *WatchModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{}
	}
}

// Run starts the watch view and blocks until the user quits.
func Run(ctx context.Context, cfg WatchConfig) error {
	p := tea.NewProgram(NewWatchModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
