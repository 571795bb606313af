package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/varode/internal/variational"
)

const historyCapacity = 600

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// StepMsg carries one accepted step to the live view.
type StepMsg struct {
	Time   float64
	Y      []float64
	Growth float64 // largest |dy_i/dy0_j|
}

// RunResult signals the end of the integration.
type RunResult struct {
	StopTime float64
	Err      error
}

// Handler is a step handler that feeds the live view. The channel must be
// drained by a running program or the integration blocks.
type Handler struct {
	Steps chan StepMsg
}

func NewHandler() *Handler {
	return &Handler{Steps: make(chan StepMsg, 64)}
}

func (h *Handler) HandleStep(interp *variational.Interpolator, isLast bool) error {
	interp.SetInterpolatedTime(interp.CurrentTime())
	y, err := interp.InterpolatedY()
	if err != nil {
		return err
	}
	dydy0, err := interp.InterpolatedDyDy0()
	if err != nil {
		return err
	}
	growth := 0.0
	for _, row := range dydy0 {
		for _, v := range row {
			growth = math.Max(growth, math.Abs(v))
		}
	}
	msg := StepMsg{Time: interp.CurrentTime(), Y: append([]float64(nil), y...), Growth: growth}
	h.Steps <- msg
	if isLast {
		close(h.Steps)
	}
	return nil
}

func (h *Handler) RequiresDenseOutput() bool { return false }
func (h *Handler) Reset()                    {}

type model struct {
	name    string
	time    float64
	state   []float64
	history []float64
	done    bool
	result  RunResult
	steps   <-chan StepMsg
	results <-chan RunResult
}

func waitForStep(steps <-chan StepMsg, results <-chan RunResult) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg, ok := <-steps:
			if ok {
				return msg
			}
			return <-results
		case res := <-results:
			// the run can fail before the step channel is closed
			return res
		}
	}
}

func (m model) Init() tea.Cmd {
	return waitForStep(m.steps, m.results)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case StepMsg:
		m.time = msg.Time
		m.state = msg.Y
		m.history = append(m.history, msg.Growth)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, waitForStep(m.steps, m.results)
	case RunResult:
		m.done = true
		m.result = msg
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("varode live — %s", m.name)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("t=") + valueStyle.Render(fmt.Sprintf("%.4f", m.time)))
	for i, v := range m.state {
		if i >= 4 {
			break
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("  y%d=", i)) + valueStyle.Render(fmt.Sprintf("%.4f", v)))
	}
	b.WriteString("\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("max |dy/dy0|"))
		b.WriteString(borderStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.done {
		if m.result.Err != nil {
			b.WriteString(labelStyle.Render("failed: ") + m.result.Err.Error() + "\n")
		} else {
			b.WriteString(labelStyle.Render(fmt.Sprintf("finished at t=%.4f", m.result.StopTime)))
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render("press q to quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// Run displays the live view until the integration finishes and the user
// quits. results must receive exactly one RunResult after steps is closed.
func Run(name string, steps <-chan StepMsg, results <-chan RunResult) error {
	p := tea.NewProgram(model{name: name, steps: steps, results: results})
	_, err := p.Run()
	return err
}
