package circuit

import (
	"fmt"
	"strings"
)

// Layout constants of the text diagram.
const (
	CellWidth  = 11 // width of each step column in characters
	LabelWidth = 7  // visual width of the wire label area
	gateNameW  = 5  // width of gate name inside box
	gateBoxW   = 7  // ┤ + gateNameW + ├
)

// Role classifies a fragment of the diagram so callers can colour it.
type Role int

const (
	RoleWire Role = iota
	RoleGate
	RoleLabel
	RoleClassicalLabel
	RoleClassicalWire
	RoleConnector
	RoleDim
	RoleCursor
)

// Painter decorates a diagram fragment. The plain painter returns s as is.
type Painter func(role Role, s string) string

func plain(_ Role, s string) string { return s }

// Position is a cell of the diagram grid.
type Position struct {
	Step  int
	Qubit int
}

// DiagramOptions control which part of the circuit is drawn and how.
type DiagramOptions struct {
	StartStep int
	Steps     int       // number of columns, 0 draws every step
	Cursor    *Position // highlighted cell, if any
	Paint     Painter
}

// CellInfo describes what occupies a single cell in the circuit grid.
type CellInfo struct {
	Gate         *Gate
	IsControl    bool
	IsTarget     bool
	VertAbove    bool
	VertBelow    bool
	PassThrough  bool
	MeasureBelow bool
	IsBarrier    bool
}

// CellAt returns rendering information for the cell at (step, qubit).
func (c *Circuit) CellAt(step, qubit int) CellInfo {
	var info CellInfo

	if gate := c.GateAt(step, qubit); gate != nil {
		info.Gate = gate
		for _, ctrl := range gate.ControlQubits() {
			if ctrl == qubit {
				info.IsControl = true
			}
		}
		info.IsTarget = gate.Target == qubit && len(gate.ControlQubits()) > 0
	}

	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step != step {
			continue
		}
		if g.IsBarrier() {
			info.IsBarrier = true
			if info.Gate == nil {
				info.Gate = g
			}
			continue
		}
		if g.IsMeasure() && qubit > g.Target {
			info.MeasureBelow = true
		}
		if len(g.ControlQubits()) == 0 {
			continue
		}
		lo, hi := g.span()
		if qubit >= lo && qubit <= hi {
			info.VertAbove = info.VertAbove || qubit > lo
			info.VertBelow = info.VertBelow || qubit < hi
			if qubit > lo && qubit < hi && info.Gate == nil {
				info.PassThrough = true
			}
		}
	}

	return info
}

// GateLabel returns the short label drawn inside a gate box.
func GateLabel(g Gate) string {
	switch {
	case g.IsMeasure():
		return "M"
	case g.IsReset():
		return "|0>"
	case g.IsNoise:
		return "N"
	case g.IsDagger:
		return g.Type + "†"
	case g.Type == "ID":
		return "I"
	}
	return g.Type
}

// controlSymbol returns the wire symbol for the control qubit of a two-qubit gate.
func controlSymbol(gateType string) string {
	if gateType == "SWAP" {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the target qubit of a controlled gate.
func targetSymbol(gateType string) string {
	switch gateType {
	case "CX", "CCX":
		return "⊕"
	case "CZ":
		return "●"
	case "SWAP":
		return "×"
	}
	return ""
}

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	total := width - n
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// RenderCell returns 3 lines (top, mid, bot) for a single cell, each
// CellWidth visual characters wide.
func RenderCell(info CellInfo, highlight bool, paint Painter) (top, mid, bot string) {
	if paint == nil {
		paint = plain
	}
	emptyRow := strings.Repeat(" ", CellWidth)
	halfW := CellWidth / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", CellWidth-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + paint(RoleConnector, "║") + strings.Repeat(" ", CellWidth-halfW-1)
	dashL := (CellWidth - 1) / 2
	dashR := CellWidth - dashL - 1

	symbolRow := func(sym string) string {
		return strings.Repeat("─", dashL) + paint(RoleGate, sym) + strings.Repeat("─", dashR)
	}
	box := func(label string) (string, string, string) {
		margin := (CellWidth - gateBoxW) / 2
		right := CellWidth - margin - gateBoxW
		return strings.Repeat(" ", margin) + paint(RoleGate, "┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", right),
			strings.Repeat("─", margin) + paint(RoleGate, "┤"+padCenter(label, gateNameW)+"├") + strings.Repeat("─", right),
			strings.Repeat(" ", margin) + paint(RoleGate, "└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", right)
	}

	if highlight {
		innerW := CellWidth - 2
		l, r := (innerW-1)/2, innerW-(innerW-1)/2-1
		edge := paint(RoleCursor, "║")
		top = paint(RoleCursor, "╔"+strings.Repeat("═", innerW)+"╗")
		bot = paint(RoleCursor, "╚"+strings.Repeat("═", innerW)+"╝")
		switch {
		case info.IsBarrier:
			top, bot = vertRow, vertRow
			mid = edge + strings.Repeat("─", l) + "│" + strings.Repeat("─", r) + edge
		case info.Gate != nil && info.IsControl:
			mid = edge + strings.Repeat("─", l) + paint(RoleGate, controlSymbol(info.Gate.Type)) + strings.Repeat("─", r) + edge
		case info.Gate != nil && info.IsTarget && targetSymbol(info.Gate.Type) != "":
			mid = edge + strings.Repeat("─", l) + paint(RoleGate, targetSymbol(info.Gate.Type)) + strings.Repeat("─", r) + edge
		case info.Gate != nil:
			mid = edge + "─┤" + paint(RoleGate, padCenter(GateLabel(*info.Gate), gateNameW)) + "├─" + edge
		case info.PassThrough:
			mid = edge + strings.Repeat("─", l) + "┼" + strings.Repeat("─", r) + edge
		default:
			mid = edge + strings.Repeat("─", innerW) + edge
		}
		return top, mid, bot
	}

	vertical := func(above, below bool) (string, string) {
		t, b := emptyRow, emptyRow
		if above {
			t = vertRow
		}
		if below {
			b = vertRow
		}
		if info.MeasureBelow {
			b = dblVertRow
		}
		return t, b
	}

	switch {
	case info.IsBarrier:
		top, mid, bot = vertRow, strings.Repeat("─", dashL)+"│"+strings.Repeat("─", dashR), vertRow
	case info.Gate != nil && info.IsControl:
		top, bot = vertical(info.VertAbove, info.VertBelow)
		mid = symbolRow(controlSymbol(info.Gate.Type))
	case info.Gate != nil && info.IsTarget && targetSymbol(info.Gate.Type) != "":
		top, bot = vertical(info.VertAbove, info.VertBelow)
		mid = symbolRow(targetSymbol(info.Gate.Type))
	case info.Gate != nil && info.Gate.IsMeasure():
		top, mid, bot = box("M")
		bot = strings.Repeat(" ", halfW) + paint(RoleConnector, "║") + strings.Repeat(" ", CellWidth-halfW-1)
	case info.Gate != nil:
		top, mid, bot = box(GateLabel(*info.Gate))
		if info.MeasureBelow {
			bot = dblVertRow
		}
	case info.PassThrough:
		top, mid = vertRow, strings.Repeat("─", dashL)+"┼"+strings.Repeat("─", dashR)
		bot = vertRow
		if info.MeasureBelow {
			bot = dblVertRow
		}
	case info.MeasureBelow:
		top = dblVertRow
		mid = strings.Repeat("─", dashL) + paint(RoleConnector, "╫") + strings.Repeat("─", dashR)
		bot = dblVertRow
	default:
		top, bot = vertical(info.VertAbove, info.VertBelow)
		mid = strings.Repeat("─", CellWidth)
	}
	return top, mid, bot
}

// Diagram draws the circuit as text: three lines per qubit and a single
// classical wire showing where measurements land.
func (c *Circuit) Diagram(opts DiagramOptions) string {
	paint := opts.Paint
	if paint == nil {
		paint = plain
	}
	steps := opts.Steps
	if steps <= 0 {
		steps = max(c.MaxSteps-opts.StartStep, 1)
	}
	end := opts.StartStep + steps
	qregs := c.QuantumRegisters()

	var sb strings.Builder
	header := strings.Repeat(" ", LabelWidth)
	for step := opts.StartStep; step < end; step++ {
		header += paint(RoleDim, padCenter(fmt.Sprintf("%d", step), CellWidth))
	}
	sb.WriteString(header + "\n")

	for qubit := range c.NumQubits {
		topLine := strings.Repeat(" ", LabelWidth)
		label := shortName(bitName(qregs, qubit))
		midLine := paint(RoleLabel, fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", LabelWidth)

		for step := opts.StartStep; step < end; step++ {
			highlight := opts.Cursor != nil && opts.Cursor.Step == step && opts.Cursor.Qubit == qubit
			top, mid, bot := RenderCell(c.CellAt(step, qubit), highlight, paint)
			topLine += top
			midLine += mid
			botLine += bot
		}
		sb.WriteString(topLine + "\n" + midLine + "\n" + botLine + "\n")
	}

	numClbits := c.NumClbits()
	if numClbits == 0 {
		return sb.String()
	}

	sepLine := strings.Repeat(" ", LabelWidth)
	cbitLine := paint(RoleClassicalLabel, fmt.Sprintf("%-5s", fmt.Sprintf("c%d", numClbits))) + paint(RoleClassicalWire, "══")
	halfW := CellWidth / 2
	for step := opts.StartStep; step < end; step++ {
		m := c.MeasureAtStep(step)
		if m == nil {
			sepLine += strings.Repeat(" ", CellWidth)
			cbitLine += paint(RoleClassicalWire, strings.Repeat("═", CellWidth))
			continue
		}
		sepLine += strings.Repeat(" ", halfW) + paint(RoleConnector, "║") + strings.Repeat(" ", CellWidth-halfW-1)
		bitLabel := fmt.Sprintf("%d", m.Clbit)
		dashL := (CellWidth - 1) / 2
		dashR := max(CellWidth-dashL-1-len(bitLabel), 0)
		cbitLine += paint(RoleClassicalWire, strings.Repeat("═", dashL)) +
			paint(RoleConnector, "╩"+bitLabel) +
			paint(RoleClassicalWire, strings.Repeat("═", dashR))
	}
	sb.WriteString(sepLine + "\n" + cbitLine + "\n")
	return sb.String()
}

// shortName trims register labels to fit the label column.
func shortName(s string) string {
	if len(s) <= 5 {
		return s
	}
	return s[:5]
}
