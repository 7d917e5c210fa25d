package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/isingsim/internal/sweep"
)

// ResultMsg carries one completion from the scheduler into the program.
type ResultMsg struct {
	Result      sweep.Result
	Done, Total int
}

// DoneMsg ends the program once the sweep returns.
type DoneMsg struct{ Err error }

// Progress is a bubbletea model showing sweep completion and the energy
// curve filling in as temperatures finish.
type Progress struct {
	total   int
	done    int
	spins   float64
	energy  []float64
	last    sweep.Result
	start   time.Time
	elapsed time.Duration
	err     error
	quit    bool

	// cancel aborts the sweep when the user quits early.
	cancel func()
}

func NewProgress(total, size int, cancel func()) Progress {
	energy := make([]float64, total)
	for i := range energy {
		energy[i] = math.NaN()
	}
	return Progress{
		total:  total,
		spins:  float64(size * size),
		energy: energy,
		start:  time.Now(),
		cancel: cancel,
	}
}

func (m Progress) Init() tea.Cmd { return nil }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			m.quit = true
			return m, tea.Quit
		}
	case ResultMsg:
		m.done = msg.Done
		m.last = msg.Result
		if i := msg.Result.Index; i >= 0 && i < len(m.energy) && m.spins > 0 {
			m.energy[i] = msg.Result.Energy / m.spins
		}
	case DoneMsg:
		m.err = msg.Err
		m.elapsed = time.Since(m.start)
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) Done() int  { return m.done }
func (m Progress) Err() error { return m.err }

func (m Progress) fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m Progress) View() string {
	var sb strings.Builder
	sb.WriteString(Title.Render("ISING SWEEP") + "\n\n")
	sb.WriteString(ProgressBar(m.fraction(), 40))
	sb.WriteString(fmt.Sprintf(" %d/%d\n\n", m.done, m.total))

	if m.done > 0 {
		sb.WriteString(MetricLabel.Render("last T") + MetricValue.Render(formatT(m.last.Temperature)) + "\n")
		sb.WriteString(MetricLabel.Render("worker") + MetricValue.Render(strconv.Itoa(m.last.Worker)) + "\n")
		sb.WriteString(MetricLabel.Render("U per spin") + Sparkline(completed(m.energy), 40) + "\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString("\n" + ErrorText.Render(m.err.Error()) + "\n")
	case m.quit && m.elapsed > 0:
		sb.WriteString("\n" + Subtle.Render("finished in "+m.elapsed.Round(time.Millisecond).String()) + "\n")
	default:
		sb.WriteString("\n" + Subtle.Render("q: abort") + "\n")
	}
	return Panel.Render(sb.String())
}

// completed drops ladder slots that have not finished yet.
func completed(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func formatT(t float64) string {
	return strconv.FormatFloat(t, 'g', 5, 64)
}

// Sender is the subset of *tea.Program used to push messages.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards scheduler completions to a running program.
type ProgramObserver struct {
	P Sender
}

func (o ProgramObserver) OnResult(r sweep.Result, done, total int) {
	o.P.Send(ResultMsg{Result: r, Done: done, Total: total})
}
