package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/readlit/internal/stats"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == StateLogging && m.form != nil {
		return docStyle.Render(m.form.View())
	}

	var content string
	switch m.state {
	case StateHeatmap:
		content = m.viewHeatmap()
	case StateStats:
		content = m.viewStats()
	case StateChallenges:
		content = m.viewChallenges()
	}

	parts := []string{m.viewTabs(), content}
	if m.statusMsg != "" {
		status := m.statusMsg
		if strings.HasPrefix(status, "⚠") {
			status = dangerStyle.Render(status)
		}
		parts = append(parts, "  "+status)
	}
	parts = append(parts, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Heatmap", "Stats", "Challenges"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHeatmap() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d (%s)", m.year, m.metric)))
	sb.WriteString("\n\n")

	labels := [7]string{"Mon", "", "Wed", "", "Fri", "", "Sun"}
	for row := 0; row < 7; row++ {
		sb.WriteString(fmt.Sprintf("%4s ", labels[row]))
		for _, week := range m.weeks {
			cell := week.Days[row]
			if !cell.InRange {
				sb.WriteString("  ")
				continue
			}
			sb.WriteString(heatLevelStyles[cell.Level].Render("■"))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Active days: %d   Current streak: %d   Longest streak: %d\n",
		m.heatStats.ActiveDays, m.heatStats.CurrentStreak, m.heatStats.LongestStreak))
	if m.heatStats.BestDay != nil {
		sb.WriteString(fmt.Sprintf("Best day: %s (%d)", m.heatStats.BestDay.Day, m.heatStats.BestDay.Count))
		if m.heatStats.BestWeek != nil {
			sb.WriteString(fmt.Sprintf("   Best week: %d-W%02d (%d)",
				m.heatStats.BestWeek.Year, m.heatStats.BestWeek.Week, m.heatStats.BestWeek.Count))
		}
		sb.WriteString("\n")
	}

	return docStyle.Render(sb.String())
}

func (m Model) viewStats() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Top authors (%d)", m.year)))
	sb.WriteString("\n")
	writeTopList(&sb, m.topAuthors)

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Top genres (%d)", m.year)))
	sb.WriteString("\n")
	writeTopList(&sb, m.topGenres)

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Monthly (%d)", m.year)))
	sb.WriteString("\n")
	for _, p := range m.monthly {
		sb.WriteString(fmt.Sprintf("  %s  %2d finished %6d pages  %s\n",
			p.Month, p.Finished, p.Pages, strings.Repeat("▪", p.Finished)))
	}
	sb.WriteString("\n")

	sb.WriteString(titleStyle.Render("Superlatives"))
	sb.WriteString("\n")
	writePick(&sb, "Fastest read", m.picks.Fastest)
	writePick(&sb, "Slowest read", m.picks.Slowest)
	writePick(&sb, "Biggest book", m.picks.Biggest)
	writePick(&sb, "Highest rated", m.picks.HighestRated)

	return docStyle.Render(sb.String())
}

func writeTopList(sb *strings.Builder, entries []stats.TopEntry) {
	if len(entries) == 0 {
		sb.WriteString("  (none)\n")
	}
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("  %d. %s (%d)\n", i+1, e.Label, e.Count))
	}
	sb.WriteString("\n")
}

func writePick(sb *strings.Builder, label string, p *stats.Pick) {
	if p == nil {
		sb.WriteString(fmt.Sprintf("  %-14s (none)\n", label+":"))
		return
	}
	if p.Value == float64(int(p.Value)) {
		sb.WriteString(fmt.Sprintf("  %-14s %s (%d %s)\n", label+":", p.Title, int(p.Value), p.Unit))
		return
	}
	sb.WriteString(fmt.Sprintf("  %-14s %s (%.1f %s)\n", label+":", p.Title, p.Value, p.Unit))
}

func (m Model) viewChallenges() string {
	var sb strings.Builder

	if len(m.challenges) == 0 {
		sb.WriteString("No current challenges\n")
	}
	for _, row := range m.challenges {
		rec, p := row.Record, row.Progress

		header := fmt.Sprintf("[%s] %s", rec.Kind, rec.Title)
		switch {
		case rec.Claimed():
			sb.WriteString(doneStyle.Render(header + " ✓ claimed"))
		case rec.Completed():
			sb.WriteString(doneStyle.Render(header + " ✓ completed"))
		default:
			sb.WriteString(titleStyle.Render(header))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  %s\n", rec.Detail))
		sb.WriteString(fmt.Sprintf("  %s %d/%d %s (%s)\n",
			progressBar(p.Fraction()), p.Value, p.Target, p.UnitSuffix, p.Remaining()))
		if rec.CanReroll() {
			sb.WriteString("  Reroll available (r)\n")
		}
		sb.WriteString("\n")
	}

	return docStyle.Render(sb.String())
}

func progressBar(fraction float64) string {
	const width = 24
	filled := int(fraction * width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
