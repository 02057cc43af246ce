package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
	"github.com/san-kum/flightpid/internal/replay"
)

const (
	frameInterval = time.Second / 30
	graphWindow   = 200
	barWidth      = 20
	maxSpeed      = 64
)

type TickMsg time.Time

// Model steps through a replay result.
type Model struct {
	result  *replay.Result
	head    int
	running bool
	speed   int
	width   int
}

func NewModel(result *replay.Result) Model {
	return Model{
		result:  result,
		running: true,
		speed:   1,
		width:   80,
	}
}

// Run opens the viewer on the terminal and blocks until the user quits.
func Run(result *replay.Result) error {
	_, err := tea.NewProgram(NewModel(result), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Head() int     { return m.head }
func (m Model) Playing() bool { return m.running }
func (m Model) Speed() int    { return m.speed }
func (m Model) last() int     { return len(m.result.Samples) - 1 }
func (m Model) atEnd() bool   { return m.head >= m.last() }
func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.running && m.atEnd() {
				m.head = 0
			}
			m.running = !m.running
		case "right", "l":
			m.running = false
			m.step(1)
		case "left", "h":
			m.running = false
			m.step(-1)
		case "home":
			m.head = 0
		case "end":
			m.head = max(m.last(), 0)
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case TickMsg:
		if m.running {
			m.step(m.speed)
			if m.atEnd() {
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step(n int) {
	m.head += n
	if m.head > m.last() {
		m.head = m.last()
	}
	if m.head < 0 {
		m.head = 0
	}
}

func (m Model) View() string {
	if len(m.result.Samples) == 0 {
		return "no ticks to show\n"
	}
	s := m.result.Samples[m.head]

	var b strings.Builder
	title := fmt.Sprintf("%s  [%s]", strings.ToUpper(m.result.Scenario), s.Controller.Kind)
	b.WriteString(headerStyle.Render(title) + "\n")

	status := statusPlaying.Render(fmt.Sprintf("PLAYING x%d", m.speed))
	if !m.running {
		status = statusPaused.Render("PAUSED")
	}
	fmt.Fprintf(&b, "%s  tick %d/%d  t=%.3fs\n", status, s.Tick, m.last(), s.Time)
	if !s.Output.IsFinite() {
		b.WriteString(warnStyle.Render("non-finite output") + "\n")
	}
	b.WriteString("\n")

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(demandsPanel(s.Input, s.Output)),
		panelStyle.Render(statePanel(s)),
	)
	b.WriteString(panels + "\n")

	if graph := m.throttleGraph(); graph != "" {
		b.WriteString(graphStyle.Render(graph) + "\n")
	}

	b.WriteString(helpStyle.Render("space play/pause · ←/→ step · home/end · +/- speed · q quit"))
	return b.String()
}

func demandsPanel(in, out flight.Demands) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("DEMANDS") + valueStyle.Render("in → out") + "\n")
	rows := []struct {
		name    string
		in, out float64
		lo, hi  float64
	}{
		{"throttle", in.Throttle, out.Throttle, 0, 1},
		{"roll", in.Roll, out.Roll, -1, 1},
		{"pitch", in.Pitch, out.Pitch, -1, 1},
		{"yaw", in.Yaw, out.Yaw, -1, 1},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s%s %s\n",
			labelStyle.Render(r.name),
			valueStyle.Render(fmt.Sprintf("%+.3f → %+.3f", r.in, r.out)),
			levelBar(r.out, r.lo, r.hi, barWidth),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func statePanel(s replay.Sample) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	switch c := s.Controller; c.Kind {
	case control.KindAltitude:
		a := c.Altitude
		row("altitude", fmt.Sprintf("%.3f m", s.State.Altitude))
		row("climb", fmt.Sprintf("%+.3f m/s", s.State.ClimbRate))
		row("target", fmt.Sprintf("%.3f m", a.Target))
		row("integral", fmt.Sprintf("%+.4f", a.ErrorIntegral))
		row("in band", fmt.Sprintf("%t", a.InBand))
	case control.KindAngleRate:
		r := c.AngleRate
		row("rates", fmt.Sprintf("%+.2f %+.2f %+.2f", s.State.RollRate, s.State.PitchRate, s.State.YawRate))
		row("integral", fmt.Sprintf("%+.3f %+.3f %+.3f", r.Roll.Integral, r.Pitch.Integral, r.Yaw.Integral))
		row("configured", fmt.Sprintf("%t", r.Config.Configured()))
	}
	return strings.TrimRight(b.String(), "\n")
}

// throttleGraph plots output throttle over the ticks leading up to the
// play head. Non-finite points are dropped.
func (m Model) throttleGraph() string {
	start := max(m.head-graphWindow+1, 0)
	data := make([]float64, 0, m.head-start+1)
	for _, s := range m.result.Samples[start : m.head+1] {
		if th := s.Output.Throttle; !math.IsNaN(th) && !math.IsInf(th, 0) {
			data = append(data, th)
		}
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(min(m.width-12, graphWindow)),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption("throttle"),
	)
}
