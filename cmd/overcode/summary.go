package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-overcode/pkg/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginRight(2)

	tableBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))
)

// renderSummary draws the experiment totals next to a per-ensemble table.
func renderSummary(exp *config.Experiment, rows []row, elapsed time.Duration) string {
	var stats strings.Builder
	fmt.Fprintf(&stats, "Experiment  %s\n", exp.ID)
	fmt.Fprintf(&stats, "Mode        %s\n", exp.Mode)
	if exp.Mode == config.ModeClustered {
		fmt.Fprintf(&stats, "Overlaps    %v\n", exp.Overlaps)
	}
	fmt.Fprintf(&stats, "Ensembles   %d\n", len(rows))
	fmt.Fprintf(&stats, "Output      %s\n", exp.Output)
	fmt.Fprintf(&stats, "Time taken  %s", formatElapsed(elapsed))

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-4s %-7s %-9s %-9s %-13s", "graph", "run", "nodes", "clusters", "jaccard", "misclassified")))
	for _, rw := range rows {
		jaccard, missed := "-", "-"
		if rw.Eval != nil {
			jaccard = fmt.Sprintf("%.3f", rw.Eval.MeanJaccard)
			missed = fmt.Sprintf("%d", rw.Eval.Misclassified)
			if !rw.Eval.CountMatches {
				missed = warnStyle.Render(missed + "*")
			}
		}
		fmt.Fprintf(&table, "\n%-6d %-4d %-7d %-9d %-9s %s", rw.Graph, rw.Run, rw.Nodes, rw.Clusters, jaccard, missed)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(stats.String()),
		tableBoxStyle.Render(table.String()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("OverCoDe"), body)
}

// formatElapsed prints durations as "1h 2min 3s".
func formatElapsed(d time.Duration) string {
	s := int64(d / time.Second)
	return fmt.Sprintf("%dh %dmin %ds", s/3600, (s/60)%60, s%60)
}
