package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// renderBar draws a probability bar of the given character width.
func renderBar(p float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(p*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// clampLines truncates a block of text to at most h lines.
func clampLines(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= h {
		return s
	}
	return strings.Join(lines[:h], "\n")
}

// ──────────────────────────── Panels ────────────────────────────

// renderRegisterPanel shows the qubit cursor and the applied-gate history.
func (m Model) renderRegisterPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Register — %d qubit(s)", m.numQubits)))
	if m.hasSnap {
		sb.WriteString(dimStyle.Render("  [snapshot held]"))
	}
	sb.WriteString("\n\n")

	for q := m.numQubits - 1; q >= 0; q-- {
		label := fmt.Sprintf("q[%d]", q)
		switch {
		case m.focus == focusSelectTarget && q == m.targetQubit:
			sb.WriteString(targetSelectStyle.Render("▸ " + label + "  (target?)"))
		case m.focus == focusSelectControl && q == m.targetQubit:
			sb.WriteString(targetSelectStyle.Render("▸ " + label + "  (control?)"))
		case q == m.cursorQubit:
			sb.WriteString(cursorStyle.Render("▸ " + label))
		case slicesContains(m.controlQubits, q):
			sb.WriteString(qubitLabelStyle.Render("● " + label))
		default:
			sb.WriteString(qubitLabelStyle.Render("  " + label))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("History"))
	sb.WriteString("\n")
	if len(m.history) == 0 {
		sb.WriteString(dimStyle.Render("  (no gates applied)"))
	} else {
		// Show the most recent entries that fit.
		visible := max(height-m.numQubits-6, 1)
		start := max(len(m.history)-visible, 0)
		for i, entry := range m.history[start:] {
			sb.WriteString(gateStyle.Render(fmt.Sprintf("  %2d. %s", start+i+1, entry)))
			sb.WriteString("\n")
		}
	}

	return registerStyle.Width(width).Height(height).Render(clampLines(sb.String(), height))
}

// renderProbPanel shows |amplitude|² per basis state as a bar chart.
func (m Model) renderProbPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Probabilities"))
	sb.WriteString("\n\n")

	probs := m.reg.Probabilities(m.cur)
	barWidth := max(width-m.numQubits-16, 4)
	rows := height - 4
	for i, p := range probs {
		if i >= rows {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("… %d more basis states", len(probs)-rows)))
			sb.WriteString("\n")
			break
		}
		label := fmt.Sprintf("|%0*b⟩", m.numQubits, i)
		line := fmt.Sprintf("%s %s %6.3f", label, renderBar(p, barWidth), p)
		if p > 1e-9 {
			sb.WriteString(probStyle.Render(line))
		} else {
			sb.WriteString(dimStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	return probPanelStyle.Width(width).Height(height).Render(clampLines(sb.String(), height))
}

// renderCountsPanel shows the histogram of the last measurement run.
func (m Model) renderCountsPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Measurement"))
	sb.WriteString("\n\n")

	if len(m.counts) == 0 {
		sb.WriteString(dimStyle.Render("No shots yet — press m to measure"))
	} else {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%d shots", m.lastShots)))
		sb.WriteString("\n")

		bitstrings := make([]string, 0, len(m.counts))
		for bits := range m.counts {
			bitstrings = append(bitstrings, bits)
		}
		sort.Strings(bitstrings)

		barWidth := max(width-m.numQubits-18, 4)
		for i, bits := range bitstrings {
			if i >= height-5 {
				sb.WriteString(dimStyle.Render(fmt.Sprintf("… %d more outcomes", len(bitstrings)-i)))
				sb.WriteString("\n")
				break
			}
			n := m.counts[bits]
			frac := float64(n) / float64(m.lastShots)
			sb.WriteString(countStyle.Render(fmt.Sprintf("%s %s %5d", bits, renderBar(frac, barWidth), n)))
			sb.WriteString("\n")
		}
	}

	return countsPanelStyle.Width(width).Height(height).Render(clampLines(sb.String(), height))
}

// renderControlsPanel shows key bindings and the transient status line.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(dimStyle.Render("↑↓ qubit  a gate  m measure  p snapshot  f fidelity  n normalize  ctrl+r reset  +/- qubits  q quit"))
	sb.WriteString("\n")
	if m.statusMsg != "" {
		sb.WriteString(statusStyle.Render(m.statusMsg))
	}
	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlays ────────────────────────────

// renderParamInput renders the parameter entry overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s — Parameters", m.pendingGate)))
	sb.WriteString("\n\n")
	sb.WriteString(m.paramInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// renderShotsInput renders the shot-count entry overlay.
func (m Model) renderShotsInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Measure — Shots"))
	sb.WriteString("\n\n")
	sb.WriteString(m.shotsInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("Empty for %d  ⏎ Ok  Esc ✕", defaultShots)))
	return menuBorderStyle.Render(sb.String())
}

// overlayAt composites the overlay string on top of the background at
// position (x, y), padding overlay lines to their visual width.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ov := range ovLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		line := bgLines[row]
		if lipgloss.Width(line) < x {
			line += strings.Repeat(" ", x-lipgloss.Width(line))
		}
		left := truncateToWidth(line, x)
		rightStart := x + lipgloss.Width(ov)
		right := ""
		if lipgloss.Width(line) > rightStart {
			right = cutFromWidth(line, rightStart)
		}
		bgLines[row] = left + ov + right
	}
	return strings.Join(bgLines, "\n")
}

// truncateToWidth returns the prefix of s whose visual width is w,
// ignoring ANSI sequences beyond what lipgloss reports.
func truncateToWidth(s string, w int) string {
	out := ""
	for _, r := range s {
		if lipgloss.Width(out+string(r)) > w {
			break
		}
		out += string(r)
	}
	return out
}

// cutFromWidth returns the suffix of s starting at visual width w.
func cutFromWidth(s string, w int) string {
	skipped := ""
	for i, r := range s {
		if lipgloss.Width(skipped+string(r)) > w {
			return s[i:]
		}
		skipped += string(r)
	}
	return ""
}
