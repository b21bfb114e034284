// Terminal fleet monitor built on bubbletea.
package watch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const maxEventLines = 200

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type tickMsg time.Time

type fleetMsg struct {
	rows []AgentRow
	err  error
	at   time.Time
}

type model struct {
	client   *Client
	interval time.Duration

	table      table.Model
	vp         viewport.Model
	events     []string
	lastStatus map[string]string
	fetchErr   error
	lastFetch  time.Time
	width      int
	height     int
	autoscroll bool
}

func newModel(client *Client, interval time.Duration) model {
	cols := []table.Column{
		{Title: "Agent", Width: 12},
		{Title: "Status", Width: 22},
		{Title: "Batt V", Width: 7},
		{Title: "Temp C", Width: 7},
		{Title: "X", Width: 6},
		{Title: "Y", Width: 6},
		{Title: "Cycles", Width: 7},
		{Title: "Last Seen", Width: 20},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))
	return model{
		client:     client,
		interval:   interval,
		table:      t,
		vp:         viewport.New(0, 0),
		lastStatus: make(map[string]string),
		autoscroll: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) fetch() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rows, err := client.Fleet(ctx)
		return fleetMsg{rows: rows, err: err, at: time.Now()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		vpHeight := msg.Height - m.table.Height() - 4
		if vpHeight < 3 {
			vpHeight = 3
		}
		m.vp.Height = vpHeight
		m.refreshEvents()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
		case "up", "k":
			m.vp.LineUp(1)
		case "down", "j":
			m.vp.LineDown(1)
		}
	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())
	case fleetMsg:
		m.fetchErr = msg.err
		m.lastFetch = msg.at
		if msg.err == nil {
			m.apply(msg.rows, msg.at)
		}
	}
	return m, nil
}

// apply updates the table and appends an event line for every status
// transition since the previous poll.
func (m *model) apply(rows []AgentRow, at time.Time) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Info.ID < rows[j].Info.ID })

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if r.Last == nil {
			tableRows = append(tableRows, table.Row{r.Info.ID, r.Info.Status, "-", "-", "-", "-", "-", "never"})
			continue
		}
		tableRows = append(tableRows, table.Row{
			r.Info.ID,
			r.Last.Status,
			fmt.Sprintf("%.2f", r.Last.BatteryVoltage),
			fmt.Sprintf("%.1f", r.Last.Temperature),
			fmt.Sprintf("%.1f", r.Last.X),
			fmt.Sprintf("%.1f", r.Last.Y),
			fmt.Sprintf("%d", r.Last.CycleCount),
			r.Last.Timestamp.Local().Format("2006-01-02 15:04:05"),
		})

		prev, seen := m.lastStatus[r.Info.ID]
		if seen && prev != r.Last.Status {
			line := fmt.Sprintf("[%s] %s: %s -> %s",
				at.Format("15:04:05"), r.Info.ID, prev, r.Last.Status)
			if strings.Contains(r.Last.Status, "LOW_BATTERY") || r.Last.Status == "FAULT" {
				line = warnStyle.Render(line)
			}
			m.events = append(m.events, line)
			if len(m.events) > maxEventLines {
				m.events = m.events[len(m.events)-maxEventLines:]
			}
		}
		m.lastStatus[r.Info.ID] = r.Last.Status
	}
	m.table.SetRows(tableRows)
	m.refreshEvents()
}

func (m *model) refreshEvents() {
	if m.vp.Width == 0 {
		return
	}
	lines := make([]string, 0, len(m.events))
	for _, e := range m.events {
		lines = append(lines, wordwrap.String(e, m.vp.Width))
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("robotops fleet"))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")

	status := fmt.Sprintf("updated %s | q quit | r refresh | s autoscroll",
		m.lastFetch.Format("15:04:05"))
	if m.fetchErr != nil {
		status = errStyle.Render(fmt.Sprintf("poll failed: %v", m.fetchErr))
	}
	b.WriteString(statusStyle.Render(status))
	return b.String()
}

// Run starts the fleet monitor and blocks until the user quits.
func Run(client *Client, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	p := tea.NewProgram(newModel(client, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
