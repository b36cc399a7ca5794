// Package viz renders run summaries for the terminal.
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusDiverged = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))
)

// Summary is what a finished run reports to the terminal.
type Summary struct {
	RunID    string
	Model    string
	Steps    int
	Samples  int
	SimTime  float64
	Elapsed  string
	Diverged bool
	Metrics  map[string]float64
}

// Render draws s as a bordered panel with metrics in name order.
func (s Summary) Render() string {
	var sb strings.Builder

	status := StatusOK.Render("completed")
	if s.Diverged {
		status = StatusDiverged.Render("diverged")
	}
	sb.WriteString(Title.Render(s.Model) + "  " + status + "\n")
	if s.RunID != "" {
		sb.WriteString(Subtle.Render("run "+s.RunID) + "\n")
	}
	sb.WriteString(line("steps", fmt.Sprintf("%d", s.Steps)))
	sb.WriteString(line("samples", fmt.Sprintf("%d", s.Samples)))
	sb.WriteString(line("t", fmt.Sprintf("%.6g s", s.SimTime)))
	if s.Elapsed != "" {
		sb.WriteString(line("wall", s.Elapsed))
	}

	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(line(name, fmt.Sprintf("%.6g", s.Metrics[name])))
	}

	return Panel.Render(strings.TrimRight(sb.String(), "\n"))
}

func line(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-20s", label)) + MetricValue.Render(value) + "\n"
}
