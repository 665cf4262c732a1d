// Package ui provides the Bubbletea progress view used while rendering.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E86AB"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	trackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	grStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F18F01"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C73E1D"))
)

// Model is the Bubbletea model for a single render.
type Model struct {
	Name string

	Frames  int
	Total   int
	MinGain float64 // deepest gain reduction seen, dB
	LastGR  float64

	StartTime time.Time
	Elapsed   time.Duration
	Done      bool
	Err       error
}

// NewModel creates a progress model for the named input.
func NewModel(name string) Model {
	return Model{
		Name:      name,
		StartTime: time.Now(),
	}
}

// Init does nothing; progress arrives through Program.Send.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case ProgressMsg:
		m.Frames = msg.Frames
		m.Total = msg.Total
		m.LastGR = msg.GainReductionDB
		m.MinGain = min(m.MinGain, msg.GainReductionDB)
		m.Elapsed = time.Since(m.StartTime)

	case DoneMsg:
		m.Done = true
		m.Err = msg.Err
		m.Elapsed = time.Since(m.StartTime)

		return m, tea.Quit
	}

	return m, nil
}

// Fraction returns the completed share in [0, 1].
func (m Model) Fraction() float64 {
	if m.Total <= 0 {
		return 0
	}

	return min(float64(m.Frames)/float64(m.Total), 1)
}

// View renders the progress bar and the limiter activity.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Rendering " + m.Name))
	sb.WriteString("\n\n  ")

	filled := int(m.Fraction() * barWidth)
	sb.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	sb.WriteString(trackStyle.Render(strings.Repeat("░", barWidth-filled)))
	sb.WriteString(fmt.Sprintf(" %5.1f%%", m.Fraction()*100))

	sb.WriteString("\n  ")
	sb.WriteString(grStyle.Render(fmt.Sprintf("GR %6.2f dB  (max %6.2f dB)", m.LastGR, m.MinGain)))
	sb.WriteString(fmt.Sprintf("  %s", m.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")

	if m.Err != nil {
		sb.WriteString("\n  ")
		sb.WriteString(errStyle.Render("Error: " + m.Err.Error()))
		sb.WriteString("\n")
	}

	return sb.String()
}
