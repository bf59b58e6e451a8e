// Package tui implements the interactive watch view.
//
// The watch view polls one server's status at a fixed cadence and renders
// it as a live-updating terminal dashboard. Polling rides on the library's
// cache, so a cadence at or below the TTL never multiplies upstream
// traffic.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/craftstat/craftstat/pkg/mcsrvstat"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleOnline  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleOffline = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleErr     = lipgloss.NewStyle().Foreground(colorRed)
)

// statusMsg carries one poll result into the update loop.
type statusMsg struct {
	status *mcsrvstat.ServerStatus
	err    error
}

// pollMsg triggers the next poll.
type pollMsg struct{}

// Model is the bubbletea model for the watch view.
type Model struct {
	client   *mcsrvstat.Client
	query    mcsrvstat.Query
	interval time.Duration
	ctx      context.Context

	spinner  spinner.Model
	status   *mcsrvstat.ServerStatus
	err      error
	polledAt time.Time
	fetching bool
	polls    int
}

// NewModel creates a watch model polling q every interval.
func NewModel(ctx context.Context, client *mcsrvstat.Client, q mcsrvstat.Query, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorCyan)
	return Model{
		client:   client,
		query:    q,
		interval: interval,
		ctx:      ctx,
		spinner:  sp,
		fetching: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if !m.fetching {
				m.fetching = true
				// Drop the cached entry so the manual refresh hits upstream.
				_ = m.client.Invalidate(m.ctx, m.query)
				return m, m.fetch()
			}
		}

	case statusMsg:
		m.fetching = false
		m.polls++
		m.polledAt = time.Now()
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		return m, m.schedule()

	case pollMsg:
		m.fetching = true
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		st, err := m.client.GetStatus(m.ctx, m.query)
		return statusMsg{status: st, err: err}
	}
}

func (m Model) schedule() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(m.query.Address()))
	b.WriteString(styleDim.Render(fmt.Sprintf("  (%s)", m.query.Edition)))
	b.WriteString("\n\n")

	switch {
	case m.status == nil && m.err == nil:
		b.WriteString(m.spinner.View())
		b.WriteString(styleDim.Render(" looking up server..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(styleErr.Render("lookup failed"))
		b.WriteString("\n")
		b.WriteString(styleDim.Render("  " + m.err.Error()))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderStatus())
	}

	b.WriteString("\n")
	if !m.polledAt.IsZero() {
		b.WriteString(styleDim.Render(fmt.Sprintf("updated %s · every %s · %d polls",
			m.polledAt.Format("15:04:05"), m.interval, m.polls)))
		b.WriteString("\n")
	}
	b.WriteString(styleDim.Render("r refresh  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderStatus() string {
	st := m.status
	var b strings.Builder

	if st.Online {
		b.WriteString(styleOnline.Render("● online"))
	} else {
		b.WriteString(styleOffline.Render("○ offline"))
	}
	if m.fetching {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styleLabel.Render(label))
		b.WriteString(" ")
		b.WriteString(styleValue.Render(value))
		b.WriteString("\n")
	}

	if st.Players != nil {
		row("players", fmt.Sprintf("%d / %d", st.Players.Online, st.Players.Max))
	}
	if st.Version != nil {
		row("version", *st.Version)
	}
	if st.Motd != nil && len(st.Motd.Clean) > 0 {
		row("motd", strings.Join(st.Motd.Clean, " "))
	}
	if st.Gamemode != nil {
		row("gamemode", *st.Gamemode)
	}
	row("ip", st.IP)
	if st.Latency > 0 {
		row("latency", st.Latency.Round(time.Millisecond).String())
	}

	return b.String()
}
