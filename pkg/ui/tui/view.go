package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"vkbackup/pkg/ui"
)

// View renders the whole screen
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	width := clamp(m.width-2, 30, 100)
	sections := []string{
		headerStyle.Render("vkbackup · " + m.label),
		m.renderStats(width),
		m.renderPhotos(width),
		m.renderLogs(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("q quit • ? help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderStats(width int) string {
	elapsed := time.Since(m.started)

	status := fmt.Sprintf("%s uploading", m.spinner.View())
	switch {
	case m.finished && m.err != nil:
		status = errorStyle.Render("✗ stopped")
	case m.finished:
		status = successStyle.Render("✓ done")
	case m.total == 0:
		status = pendingStyle.Render("fetching photos")
	}

	rows := []string{
		row("Destination", fmt.Sprintf("%s:%s", m.destination, m.folder)),
		row("Uploaded", fmt.Sprintf("%d/%d", m.uploaded, m.total)),
		row("Size", ui.FormatBytes(m.bytes)),
		row("Elapsed", formatClock(elapsed)),
		row("Status", status),
		m.bar.ViewAs(m.Percent()),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Run"), strings.Join(rows, "\n")),
	)
}

func (m *Model) renderPhotos(width int) string {
	lines := make([]string, 0, len(m.photos)+1)
	for _, p := range m.photos {
		likes := pendingStyle.Render(fmt.Sprintf("♥ %d", p.Likes))
		switch p.State {
		case PhotoActive:
			lines = append(lines, fmt.Sprintf("%s %s %s", m.spinner.View(), valueStyle.Render(p.FileName), likes))
		case PhotoUploaded:
			lines = append(lines, fmt.Sprintf("%s %s %s %s", successStyle.Render("✓"), p.FileName, likes, pendingStyle.Render(ui.FormatBytes(p.Size))))
		case PhotoFailed:
			lines = append(lines, fmt.Sprintf("%s %s %s", errorStyle.Render("✗"), p.FileName, errorStyle.Render(truncate(fmt.Sprint(p.Err), width-len(p.FileName)-8))))
		default:
			lines = append(lines, pendingStyle.Render("• "+p.FileName))
		}
	}
	if remaining := m.total - len(m.photos); remaining > 0 {
		lines = append(lines, pendingStyle.Render(fmt.Sprintf("… %d waiting", remaining)))
	}
	if len(lines) == 0 {
		lines = append(lines, pendingStyle.Render("No photos yet"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Photos"), strings.Join(lines, "\n")),
	)
}

func (m *Model) renderLogs(width int) string {
	visible := 8
	if m.height > 0 {
		visible = clamp(m.height-len(m.photos)-18, 3, 15)
	}

	start := len(m.logs) - visible
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, l := range m.logs[start:] {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			timestampStyle.Render(l.Time.Format("15:04:05")),
			levelStyle(l.Level).Render(fmt.Sprintf("%-7s", l.Level)),
			truncate(l.Message, width-22),
		))
	}
	if len(lines) == 0 {
		lines = append(lines, pendingStyle.Render("No logs yet"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Log"), strings.Join(lines, "\n")),
	)
}

func (m *Model) renderHelp(width int) string {
	help := strings.Join([]string{
		"q, ctrl+c  cancel the run and quit",
		"ctrl+l     clear the log panel",
		"?          toggle this help",
	}, "\n")
	return panelStyle.Width(width).Render(help)
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-12s", label)), valueStyle.Render(value))
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// formatClock formats elapsed time as mm:ss or hh:mm:ss
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
