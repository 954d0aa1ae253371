package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/netsentinel/sentryview/internal/model"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("NetSentinel · live alerts"))
	b.WriteString("  ")
	if m.feedDead {
		b.WriteString(feedDeadStyle.Render("FEED DEAD — restart to reconnect"))
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%d recent", len(m.alerts))))
	}
	b.WriteString("\n\n")

	if m.active != nil {
		b.WriteString(m.viewDetail())
	} else {
		b.WriteString(m.viewList())
	}

	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) viewList() string {
	if len(m.alerts) == 0 {
		return headerStyle.Render("  waiting for alerts...") + "\n"
	}

	var b strings.Builder
	for i, alert := range m.alerts {
		score := scoreStyle(alert.ThreatScore).Render(fmt.Sprintf("%3.0f", alert.ThreatScore))
		line := fmt.Sprintf("  %s  %-14s %-28s %s",
			score, alert.IncidentID, truncate(alert.MainEvent, 28), alert.Status)
		if i == m.cursor {
			line = selectedStyle.Render("▸" + line[1:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDetail() string {
	return detailBorder.Width(max(20, m.width-4)).Render(m.detail.View())
}

// detailContent renders the active incident for the detail viewport.
func (m Model) detailContent() string {
	inc := m.active
	if inc == nil {
		return ""
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row("Incident", inc.IncidentID)
	row("Event", inc.MainEvent)
	row("Status", inc.Status)
	row("Threat", fmt.Sprintf("%s (%.0f/100)",
		scoreStyle(inc.ThreatScore).Render(strings.ToUpper(model.Severity(inc.ThreatScore))), inc.ThreatScore))
	row("Attacker", inc.AttackerIP)
	row("First seen", model.FormatEpochMilli(inc.FirstSeen))
	row("Last seen", model.FormatEpochMilli(inc.LastSeen))

	if len(inc.Sequence) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Timeline"))
		b.WriteString("\n")
		for _, item := range inc.Sequence {
			b.WriteString(fmt.Sprintf("  %s  %s — %s\n", item.Timestamp, item.Type, item.Details))
		}
	}

	if inc.AISummary != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Analyst report"))
		b.WriteString("\n")
		b.WriteString(inc.AISummary)
		b.WriteString("\n")
	}

	if inc.AIPlaybook != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Response playbook"))
		b.WriteString("\n")
		b.WriteString(inc.AIPlaybook)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpLine() string {
	if m.active != nil {
		return "↑/↓ scroll · m mitigate · esc back · q quit"
	}
	return "↑/↓ move · enter details · s port scan · u UDP flood · q quit"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return s[:n-1] + "…"
}
