package tui

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"qviz/internal/circuit"
)

const (
	controlsHeight = 4
	barWidth       = 20
	maxProbRows    = 8
)

// stateHeight is the inner height of the state panel.
func (m Model) stateHeight() int {
	return min(max(m.circuit.NumQubits, 1), maxProbRows) + 2
}

// topHeight is the height of the circuit and QASM row.
func (m Model) topHeight() int {
	return max(m.height-controlsHeight-m.stateHeight()-6, 6)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCircuitPanel(circuitWidth, m.topHeight()),
		m.renderQASMPanel(qasmWidth, m.topHeight()),
	)
	frame := lipgloss.JoinVertical(lipgloss.Left,
		topRow,
		m.renderStatePanel(m.width-2, m.stateHeight()),
		m.renderControlsPanel(m.width-2, controlsHeight-2),
	)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam, focusEditParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	case focusEditGate:
		frame = overlayAt(frame, m.renderEditGateMenu(), 2, 2)
	}
	return frame
}

func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	availWidth := width - circuit.LabelWidth - 4
	steps := max(availWidth/circuit.CellWidth, 1)

	start := m.viewStartStep
	if m.cursorStep >= start+steps {
		start = m.cursorStep - steps + 1
	}
	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", start, start+steps-1)
	}

	selecting := m.focus == focusSelectTarget || m.focus == focusSelectControls ||
		m.focus == focusEditTarget || m.focus == focusEditControl
	cursor := &circuit.Position{Step: m.cursorStep, Qubit: m.cursorQubit}
	if selecting {
		cursor.Qubit = m.targetQubit
		if m.editGate != nil && (m.focus == focusEditTarget || m.focus == focusEditControl) {
			cursor.Step = m.editGate.Step
		}
	}
	sb.WriteString(m.circuit.Diagram(circuit.DiagramOptions{
		StartStep: start,
		Steps:     steps,
		Cursor:    cursor,
		Paint:     painter(selecting),
	}))

	switch {
	case selecting:
		prompt := "Select target qubit: "
		if m.focus == focusSelectControls || m.focus == focusEditControl {
			prompt = "Select control qubit: "
		}
		fmt.Fprintf(&sb, "\n  %s  %s%s", activeGateStyle.Render(m.pendingGate), prompt,
			targetSelectStyle.Render(m.circuit.QubitName(m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	default:
		fmt.Fprintf(&sb, "\n  Position: Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())
	if m.parseErr != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(ansi.Truncate(m.parseErr, max(width-4, 10), "…")))
	}

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderStatePanel shows the Bloch vectors beside the basis-state
// probabilities of the last good result.
func (m Model) renderStatePanel(width, height int) string {
	order := "q0 first"
	if m.reverse {
		order = "reversed"
	}
	header := titleStyle.Render("Bloch Vectors") + dimStyle.Render(" ("+order+", r toggles)")

	if m.result == nil {
		body := dimStyle.Render("no state")
		if m.vizErr != "" {
			body = errorStyle.Render(m.vizErr)
		}
		return stateStyle.Width(width).Height(height).Render(header + "\n" + body)
	}

	var left strings.Builder
	left.WriteString(header + "\n")
	for i, v := range m.result.Bloch {
		if i == maxProbRows {
			left.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(m.result.Bloch)-i)))
			break
		}
		fmt.Fprintf(&left, "%s  x %+.3f  y %+.3f  z %+.3f  %s\n",
			qubitLabelStyle.Render(fmt.Sprintf("%-9s", m.result.Labels[i])),
			v.X(), v.Y(), v.Z(), dimStyle.Render(fmt.Sprintf("|r| %.2f", v.Norm())))
	}

	var right strings.Builder
	right.WriteString(titleStyle.Render("Probabilities") + "\n")
	for _, kv := range topProbabilities(m.result.Probabilities, maxProbRows) {
		bar := int(math.Round(kv.p * barWidth))
		fmt.Fprintf(&right, "|%s⟩ %s%s %.3f\n", kv.key,
			barStyle.Render(strings.Repeat("█", bar)),
			dimStyle.Render(strings.Repeat("·", barWidth-bar)), kv.p)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "    ", right.String())
	if m.vizErr != "" {
		body += "\n" + errorStyle.Render(m.vizErr)
	}
	return stateStyle.Width(width).Height(height).Render(body)
}

type probability struct {
	key string
	p   float64
}

// topProbabilities returns the n most likely outcomes, ties broken by key.
func topProbabilities(probs map[string]float64, n int) []probability {
	out := make([]probability, 0, len(probs))
	for _, k := range slices.Sorted(maps.Keys(probs)) {
		out = append(out, probability{k, probs[k]})
	}
	slices.SortStableFunc(out, func(a, b probability) int { return cmp.Compare(b.p, a.p) })
	return out[:min(n, len(out))]
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move qubit  ←→/hl Move step  +/- Qubits  r Reverse Bloch")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate  ")
	sb.WriteString(activeGateStyle.Render("e"))
	sb.WriteString(" Edit gate\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Switch focus  Bksp Delete  ^R Reset  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// renderParamInput renders parameter input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Parameter"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Value: %s_", m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	if m.statusMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.statusMsg))
	}
	return menuBorderStyle.Render(sb.String())
}

// renderEditGateMenu renders the edit gate menu overlay.
func (m Model) renderEditGateMenu() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Edit " + circuit.GateLabel(*m.editGate)))
	sb.WriteString("\n\n")
	for i, opt := range m.editOptions() {
		if i == m.editMenuIdx {
			sb.WriteString(menuSelectedStyle.Render("▸ " + opt.label))
		} else {
			sb.WriteString("  " + opt.label)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Select  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay on top of the background at (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		if idx := y + i; idx >= 0 && idx < len(bgLines) {
			bgLines[idx] = spliceLineAt(bgLines[idx], ovLine, x)
		}
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns of bgLine starting at x with
// overlay, keeping the escape sequences on either side intact.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if pad := x - ansi.StringWidth(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
