package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/transport"
)

// DefaultWatchInterval is how often the watch view polls the controller.
const DefaultWatchInterval = 5 * time.Second

// Snapshot is one poll of the controller for the watch view.
type Snapshot struct {
	Controller *sprinkler.ControllerVariables
	Status     *sprinkler.StationStatus
	Stations   *sprinkler.StationNamesAndAttributes
}

// FetchFunc produces a fresh Snapshot.
type FetchFunc func(ctx context.Context) (*Snapshot, error)

// ClientFetcher polls /jc and /js on every call. Station names are read
// once up front and reused.
func ClientFetcher(client *sprinkler.Client, pw string, stations *sprinkler.StationNamesAndAttributes) FetchFunc {
	return func(ctx context.Context) (*Snapshot, error) {
		cv, err := client.GetControllerVariables(ctx, pw)
		if err != nil {
			return nil, err
		}
		st, err := client.GetStationStatus(ctx, pw)
		if err != nil {
			return nil, err
		}
		return &Snapshot{Controller: cv, Status: st, Stations: stations}, nil
	}
}

type watchKeyMap struct {
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh}, {k.Help, k.Quit}}
}

var watchKeys = watchKeyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh now"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type snapshotMsg struct {
	snap *Snapshot
	err  error
}

// tickMsg carries the generation it was scheduled for so a manual refresh
// does not leave a second polling loop running.
type tickMsg struct {
	gen int
}

// WatchModel is the bubbletea model behind "opensprinkler-cfg watch".
type WatchModel struct {
	ctx      context.Context
	fetch    FetchFunc
	interval time.Duration
	title    string

	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     watchKeyMap

	snap      *Snapshot
	err       error
	loading   bool
	gen       int
	updatedAt time.Time
	width     int
}

// NewWatchModel creates a watch model polling fetch every interval.
func NewWatchModel(ctx context.Context, title string, fetch FetchFunc, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	return WatchModel{
		ctx:      ctx,
		fetch:    fetch,
		interval: interval,
		title:    title,
		spinner:  s,
		progress: progress.New(progress.WithSolidFill(string(InfoColor)), progress.WithWidth(20), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     watchKeys,
		loading:  true,
		width:    GetTerminalWidth(),
	}
}

func (m WatchModel) fetchCmd() tea.Cmd {
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		snap, err := fetch(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m WatchModel) scheduleTick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchCmd())
		}

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
		m.help.Width = m.width
		return m, nil

	case snapshotMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.updatedAt = time.Now()
		}
		m.gen++
		return m, m.scheduleTick()

	case tickMsg:
		if msg.gen != m.gen || m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchCmd())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder

	title := HeaderTitleStyle.Render(strings.ToUpper(m.title))
	if m.loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(title)
	b.WriteString("\n")

	if m.snap == nil {
		if m.err != nil {
			b.WriteString(ErrorMessageStyle.Render("  " + transport.ShortMessage(m.err)))
			b.WriteString("\n")
		} else {
			b.WriteString(HelpStyle.Render("Connecting..."))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
		return b.String()
	}

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n\n")
	b.WriteString(m.renderStations())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorMessageStyle.Render("  Last poll failed: " + transport.ShortMessage(m.err)))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render(fmt.Sprintf("Updated %s, every %s", m.updatedAt.Format("15:04:05"), m.interval)))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m WatchModel) renderStatusLine() string {
	cv := m.snap.Controller
	var parts []string

	if cv.IsEnabled() {
		parts = append(parts, Badge("ENABLED", SuccessColor))
	} else {
		parts = append(parts, Badge("DISABLED", ErrorColor))
	}
	if cv.RainDelayActive() {
		parts = append(parts, Badge("RAIN DELAY", WarningColor))
	}
	if cv.Sensor1Active() {
		parts = append(parts, Badge("SENSOR 1", InfoColor))
	}
	if cv.Sensor2Active() {
		parts = append(parts, Badge("SENSOR 2", InfoColor))
	}
	if cv.QueuePaused() {
		parts = append(parts, Badge(fmt.Sprintf("PAUSED %ds", cv.PauseTimer), WarningColor))
	}

	info := ResultValueStyle.Render(cv.DeviceTime().Format("Mon 2006-01-02 15:04:05"))
	return "  " + strings.Join(parts, " ") + "  " + info
}

func (m WatchModel) renderStations() string {
	snap := m.snap
	n := snap.Status.NumStations
	if n == 0 {
		n = len(snap.Status.Status)
	}

	slots := snap.Controller.ProgramStatuses()
	now := snap.Controller.DeviceTime()

	var lines []string
	for sid := 0; sid < n; sid++ {
		name := fmt.Sprintf("S%02d", sid+1)
		var attrs sprinkler.StationAttributes
		if snap.Stations != nil {
			attrs = snap.Stations.Station(sid)
			name = attrs.Name
		}

		label := fmt.Sprintf("%3d  %-20s", sid+1, truncate(name, 20))
		switch {
		case snap.Status.Active(sid):
			line := "  " + StationOnStyle.Render(ValveOpen+" "+label)
			if sid < len(slots) && slots[sid].Remaining > 0 {
				line += "  " + m.renderRemaining(slots[sid], now)
			}
			lines = append(lines, line)
		case attrs.Disabled:
			lines = append(lines, "  "+StationDisabledStyle.Render(ValveClosed+" "+label))
		default:
			line := "  " + StationOffStyle.Render(ValveClosed+" "+label)
			if sid < len(slots) && slots[sid].ProgramID != 0 && slots[sid].Start.After(now) {
				line += "  " + StationOffStyle.Render("queued "+slots[sid].Start.Format("15:04"))
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m WatchModel) renderRemaining(slot sprinkler.ProgramStatus, now time.Time) string {
	elapsed := now.Sub(slot.Start)
	if elapsed < 0 {
		elapsed = 0
	}
	total := elapsed + slot.Remaining
	frac := 0.0
	if total > 0 {
		frac = float64(elapsed) / float64(total)
	}
	return m.progress.ViewAs(frac) + " " + ResultValueStyle.Render(slot.Remaining.String()+" left")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunWatch runs the watch view until the user quits or ctx is done.
func RunWatch(ctx context.Context, title string, fetch FetchFunc, interval time.Duration) error {
	p := tea.NewProgram(NewWatchModel(ctx, title, fetch, interval), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
