// Package tui is the terminal circuit editor: a QASM editor, a circuit grid
// with a gate picker and a live Bloch-vector and probability readout.
package tui

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"qviz/internal/circuit"
	"qviz/internal/visualize"
)

// DefaultSavePath is where ctrl+s writes the program.
const DefaultSavePath = "circuit.qasm"

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusInputParam
	focusSelectControls
	focusEditGate
	focusEditParam
	focusEditTarget
	focusEditControl
)

// Model represents the TUI application state.
type Model struct {
	circuit       *circuit.Circuit // source of truth for the grid and the editor
	viz           *visualize.Visualizer
	result        *visualize.Result // last good visualization
	vizErr        string
	parseErr      string
	reverse       bool
	savePath      string
	cursorQubit   int
	cursorStep    int
	viewStartStep int
	width         int
	height        int
	qasmEditor    textarea.Model
	focus         focus
	lastQASM      string
	statusMsg     string

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection state (for multi-qubit gates)
	pendingGate   string
	targetQubit   int
	paramInput    string
	controlQubits []int

	// Edit gate state
	editGate       *circuit.Gate // points into circuit.Gates
	editMenuIdx    int
	editControlIdx int // -1 edits the single Control field
}

// Option configures a Model.
type Option func(*Model)

// WithSavePath overrides the file written by ctrl+s.
func WithSavePath(path string) Option {
	return func(m *Model) { m.savePath = path }
}

// WithReverseBits starts with the Bloch panel listing qubit n-1 first.
func WithReverseBits(reverse bool) Option {
	return func(m *Model) { m.reverse = reverse }
}

// New returns a model editing source. A source that does not parse starts an
// empty four-qubit circuit and shows the error.
func New(viz *visualize.Visualizer, source string, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		viz:        viz,
		qasmEditor: ta,
		focus:      focusCircuit,
		savePath:   DefaultSavePath,
	}
	for _, opt := range opts {
		opt(&m)
	}

	c, err := circuit.Parse(source)
	if err != nil {
		m.parseErr = err.Error()
		c = circuit.New("circuit", 4, 0)
	}
	m.circuit = c
	m.sync()
	return m
}

// sync rewrites the editor from the circuit and recomputes the state.
func (m *Model) sync() {
	qasm := m.circuit.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	m.refresh()
}

// refresh recomputes the Bloch vectors and probabilities of the circuit.
func (m *Model) refresh() {
	res, err := m.viz.VisualizeCircuit(context.Background(), m.circuit, visualize.Options{ReverseBits: m.reverse})
	if err != nil {
		m.vizErr = err.Error()
		return
	}
	m.vizErr = ""
	m.result = res
}

// parseQASMInput re-reads the editor. Invalid programs keep the last good
// circuit and result.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm
	c, err := circuit.Parse(qasm)
	if err != nil {
		m.parseErr = err.Error()
		return
	}
	m.parseErr = ""
	m.circuit = c
	m.cursorQubit = min(m.cursorQubit, max(c.NumQubits-1, 0))
	m.refresh()
}

// parseParams parses a comma-separated list of angles.
func parseParams(input string) ([]float64, error) {
	var params []float64
	for _, part := range strings.Split(input, ",") {
		v, ok := circuit.ParseParam(part)
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q", strings.TrimSpace(part))
		}
		params = append(params, v)
	}
	return params, nil
}

// withDefaults pads params with zeros, or def when none were given, to n
// values.
func withDefaults(params []float64, n int, def float64) []float64 {
	if len(params) == 0 && n == 1 {
		return []float64{def}
	}
	for len(params) < n {
		params = append(params, 0)
	}
	return params[:n]
}

// occupied reports whether any of qubits already holds a gate at step.
func (m *Model) occupied(step int, qubits []int) bool {
	for _, g := range m.circuit.Gates {
		if g.Step == step && g.IsBarrier() {
			return true
		}
	}
	for _, q := range qubits {
		if m.circuit.GateAt(step, q) != nil {
			return true
		}
	}
	return false
}

// ensureClbits widens the classical registers to one bit per qubit.
func (m *Model) ensureClbits() {
	missing := m.circuit.NumQubits - m.circuit.NumClbits()
	if missing <= 0 {
		return
	}
	if len(m.circuit.CRegs) == 0 {
		m.circuit.AddClassicalRegister("c", missing)
		return
	}
	m.circuit.CRegs[len(m.circuit.CRegs)-1].Size += missing
}

func (m *Model) clearPending() {
	m.paramInput = ""
	m.controlQubits = nil
	m.pendingGate = ""
}

// placeGate places a gate on the circuit at the cursor position.
// targetQ is the target qubit for multi-qubit gates (-1 for single-qubit).
// Returns true if placement succeeded, false if blocked by conflict.
func (m *Model) placeGate(gateType string, targetQ int) bool {
	step := m.cursorStep
	var qubitsNeeded []int
	switch gateType {
	case "CX", "CZ", "SWAP", "CH", "CRX", "CRY", "CRZ", "CU1", "MCX":
		qubitsNeeded = []int{m.cursorQubit, targetQ}
	case "CCX":
		qubitsNeeded = append([]int{m.cursorQubit, targetQ}, m.controlQubits...)
	case "BARRIER":
		qubitsNeeded = nil
	default:
		qubitsNeeded = []int{m.cursorQubit}
	}

	conflict := m.occupied(step, qubitsNeeded)
	if gateType == "BARRIER" {
		conflict = slices.ContainsFunc(m.circuit.Gates, func(g circuit.Gate) bool { return g.Step == step })
	}
	if (gateType == "MEASURE" || gateType == "MCX") && m.circuit.MeasureAtStep(step) != nil {
		conflict = true
	}
	if gateType == "MCX" && m.occupied(step+1, []int{targetQ}) {
		conflict = true
	}
	if conflict {
		m.statusMsg = "Cannot place: qubit already used by another gate at this step"
		m.clearPending()
		return false
	}

	params, _ := parseParams(m.paramInput)
	if m.paramInput == "" {
		params = nil
	}

	switch gateType {
	case "CX", "CZ", "SWAP", "CH":
		m.circuit.AddGate(gateType, targetQ, step, m.cursorQubit)
	case "CRX", "CRY", "CRZ", "CU1":
		m.circuit.AddParameterizedGate(gateType, targetQ, step, withDefaults(params, 1, 0), m.cursorQubit)
	case "CCX":
		controls := append([]int{m.cursorQubit}, m.controlQubits...)
		m.circuit.AddMultiControlGate("CCX", targetQ, step, controls)
	case "MCX":
		m.ensureClbits()
		m.circuit.AddMeasure(m.cursorQubit, m.cursorQubit, step)
		m.circuit.AddClassicalControlGate("X", targetQ, step+1, m.cursorQubit)
	case "MEASURE":
		m.ensureClbits()
		m.circuit.AddMeasure(m.cursorQubit, m.cursorQubit, step)
	case "BARRIER":
		m.circuit.AddBarrier(step)
	case "RESET":
		m.circuit.AddReset(m.cursorQubit, step)
	case "RX", "RY", "RZ", "P", "U1", "U2", "U3":
		m.circuit.AddParameterizedGate(gateType, m.cursorQubit, step, withDefaults(params, paramCount(gateType), 0))
	case "SDG", "TDG":
		m.circuit.AddDaggerGate(strings.TrimSuffix(gateType, "DG"), m.cursorQubit, step)
	case "NOISE_DEPOL", "NOISE_AMP", "NOISE_PHASE":
		m.circuit.AddNoise(m.cursorQubit, step, noiseTypes[gateType], withDefaults(params, 1, 0.01)...)
	default:
		m.circuit.AddGate(gateType, m.cursorQubit, step)
	}

	m.clearPending()
	m.cursorStep++
	m.sync()
	return true
}

// validParamKey reports whether key may be typed into a parameter field.
func validParamKey(key string) bool {
	if len(key) != 1 {
		return false
	}
	return strings.ContainsAny(key, "0123456789.,-+eEpi*/")
}

// firstTarget picks a default target next to the cursor qubit.
func (m *Model) firstTarget() int {
	t := m.cursorQubit + 1
	if t >= m.circuit.NumQubits {
		t = m.cursorQubit - 1
	}
	return t
}

// moveSelection steps m.targetQubit by dir, skipping unavailable qubits.
func (m *Model) moveSelection(dir int, unavailable func(int) bool) {
	for next := m.targetQubit + dir; next >= 0 && next < m.circuit.NumQubits; next += dir {
		if !unavailable(next) {
			m.targetQubit = next
			return
		}
	}
}

// beginTarget switches to target selection, or places a single-qubit gate.
func (m *Model) beginTarget(item menuItem) {
	if !item.needsTarget {
		if m.placeGate(item.gateType, -1) {
			m.focus = focusCircuit
		}
		return
	}
	if item.gateType == "CCX" {
		if m.circuit.NumQubits < 3 {
			m.statusMsg = "Toffoli needs at least 3 qubits"
			m.focus = focusCircuit
			return
		}
		m.controlQubits = nil
		m.targetQubit = m.firstTarget()
		m.focus = focusSelectControls
		return
	}
	if m.circuit.NumQubits < 2 {
		m.statusMsg = "Need at least 2 qubits"
		m.focus = focusCircuit
		return
	}
	m.targetQubit = m.firstTarget()
	m.focus = focusSelectTarget
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.qasmEditor.SetWidth(max(msg.Width/3-6, 20))
		m.qasmEditor.SetHeight(max(m.topHeight()-6, 4))

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			return m.updateCircuit(key)
		case focusMenu:
			m.updateMenu(key)
		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "up", "k", "down", "j":
				m.moveSelection(direction(key), func(q int) bool {
					return q == m.cursorQubit || slices.Contains(m.controlQubits, q)
				})
			case "enter":
				if m.placeGate(m.pendingGate, m.targetQubit) {
					m.focus = focusCircuit
				}
			}
		case focusSelectControls:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "up", "k", "down", "j":
				m.moveSelection(direction(key), func(q int) bool { return q == m.cursorQubit })
			case "enter":
				m.controlQubits = append(m.controlQubits, m.targetQubit)
				m.focus = focusSelectTarget
				for q := range m.circuit.NumQubits {
					if q != m.cursorQubit && !slices.Contains(m.controlQubits, q) {
						m.targetQubit = q
						break
					}
				}
			}
		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "backspace":
				m.paramInput = trimLast(m.paramInput)
			case "enter":
				if _, err := parseParams(m.paramInput); m.paramInput != "" && err != nil {
					m.statusMsg = "Invalid parameter: use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				m.beginTarget(gateMenu[m.menuCat].items[m.menuItem])
			default:
				if validParamKey(key) {
					m.paramInput += key
				}
			}
		case focusEditGate:
			m.updateEditGate(key)
		case focusEditParam:
			switch key {
			case "esc":
				m.paramInput = ""
				m.focus = focusEditGate
			case "backspace":
				m.paramInput = trimLast(m.paramInput)
			case "enter":
				if m.paramInput != "" {
					params, err := parseParams(m.paramInput)
					if err != nil {
						m.statusMsg = "Invalid parameter: use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
						break
					}
					if n := len(m.editGate.Params); n > 0 {
						params = withDefaults(params, n, 0)
					}
					m.editGate.Params = params
					m.sync()
				}
				m.paramInput = ""
				m.focus = focusEditGate
			default:
				if validParamKey(key) {
					m.paramInput += key
				}
			}
		case focusEditTarget:
			switch key {
			case "esc":
				m.focus = focusEditGate
			case "up", "k", "down", "j":
				m.moveSelection(direction(key), func(q int) bool {
					return q == m.editGate.Control || slices.Contains(m.editGate.Controls, q)
				})
			case "enter":
				m.editGate.Target = m.targetQubit
				m.sync()
				m.focus = focusEditGate
			}
		case focusEditControl:
			unavailable := map[int]bool{m.editGate.Target: true}
			for ci, cq := range m.editGate.Controls {
				if ci != m.editControlIdx {
					unavailable[cq] = true
				}
			}
			switch key {
			case "esc":
				m.focus = focusEditGate
			case "up", "k", "down", "j":
				m.moveSelection(direction(key), func(q int) bool { return unavailable[q] })
			case "enter":
				if m.editControlIdx == -1 {
					m.editGate.Control = m.targetQubit
				} else if m.editControlIdx < len(m.editGate.Controls) {
					m.editGate.Controls[m.editControlIdx] = m.targetQubit
				}
				m.sync()
				m.focus = focusEditGate
			}
		case focusQASM:
			switch key {
			case "tab", "esc":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func direction(key string) int {
	if key == "up" || key == "k" {
		return -1
	}
	return 1
}

func trimLast(s string) string {
	if s == "" {
		return s
	}
	return s[:len(s)-1]
}

func (m Model) updateCircuit(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "tab":
		m.focus = focusQASM
		m.qasmEditor.Focus()
	case "ctrl+r":
		m.circuit.Gates = nil
		m.circuit.MaxSteps = 0
		m.cursorStep = 0
		m.viewStartStep = 0
		m.sync()
	case "ctrl+s":
		m.save()
	case "r":
		m.reverse = !m.reverse
		m.refresh()
	case "up", "k":
		if m.cursorQubit > 0 {
			m.cursorQubit--
		}
	case "down", "j":
		if m.cursorQubit < m.circuit.NumQubits-1 {
			m.cursorQubit++
		}
	case "left", "h":
		if m.cursorStep > 0 {
			m.cursorStep--
			m.viewStartStep = min(m.viewStartStep, m.cursorStep)
		}
	case "right", "l":
		m.cursorStep++
	case "+", "=":
		if m.circuit.NumQubits >= circuit.MaxQubits {
			m.statusMsg = fmt.Sprintf("At most %d qubits", circuit.MaxQubits)
			break
		}
		m.circuit.Resize(m.circuit.NumQubits + 1)
		m.sync()
	case "-":
		if m.circuit.NumQubits > 1 {
			m.circuit.Resize(m.circuit.NumQubits - 1)
			m.cursorQubit = min(m.cursorQubit, m.circuit.NumQubits-1)
			m.sync()
		}
	case "a":
		m.focus = focusMenu
		m.menuCat = 0
		m.menuItem = 0
	case "backspace", "delete":
		m.circuit.RemoveGateAt(m.cursorStep, m.cursorQubit)
		m.sync()
	case "e":
		if g := m.circuit.GateAt(m.cursorStep, m.cursorQubit); g != nil {
			m.editGate = g
			m.editMenuIdx = 0
			m.focus = focusEditGate
		}
	}
	return m, nil
}

// save writes the program to the save path.
func (m *Model) save() {
	if err := os.WriteFile(m.savePath, []byte(m.circuit.ToQASM()), 0o644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + m.savePath
}

func (m *Model) updateMenu(key string) {
	switch key {
	case "esc":
		m.focus = focusCircuit
	case "up", "k":
		if m.menuItem > 0 {
			m.menuItem--
		}
	case "down", "j":
		if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
			m.menuItem++
		}
	case "left", "h":
		if m.menuCat > 0 {
			m.menuCat--
			m.menuItem = 0
		}
	case "right", "l":
		if m.menuCat < len(gateMenu)-1 {
			m.menuCat++
			m.menuItem = 0
		}
	case "enter":
		item := gateMenu[m.menuCat].items[m.menuItem]
		m.pendingGate = item.gateType
		if paramCount(item.gateType) > 0 {
			m.paramInput = ""
			m.focus = focusInputParam
			return
		}
		m.beginTarget(item)
	}
}

func (m *Model) updateEditGate(key string) {
	if m.editGate == nil {
		m.focus = focusCircuit
		return
	}
	opts := m.editOptions()
	switch key {
	case "esc":
		m.focus = focusCircuit
		m.editGate = nil
	case "up", "k":
		if m.editMenuIdx > 0 {
			m.editMenuIdx--
		}
	case "down", "j":
		if m.editMenuIdx < len(opts)-1 {
			m.editMenuIdx++
		}
	case "enter":
		if m.editMenuIdx >= len(opts) {
			return
		}
		opt := opts[m.editMenuIdx]
		switch opt.action {
		case "edit_param":
			m.paramInput = ""
			m.focus = focusEditParam
		case "edit_target":
			m.targetQubit = m.editGate.Target
			m.focus = focusEditTarget
		case "edit_control":
			m.editControlIdx = opt.ctrlIdx
			if opt.ctrlIdx == -1 {
				m.targetQubit = m.editGate.Control
			} else {
				m.targetQubit = m.editGate.Controls[opt.ctrlIdx]
			}
			m.focus = focusEditControl
		case "delete":
			m.circuit.RemoveGateAt(m.editGate.Step, m.editGate.Target)
			m.editGate = nil
			m.focus = focusCircuit
			m.sync()
		}
	}
}

// editOption represents an option in the edit gate menu.
type editOption struct {
	label   string
	action  string
	ctrlIdx int
}

// editOptions returns the edit actions available for the selected gate.
func (m *Model) editOptions() []editOption {
	g := m.editGate
	if g == nil {
		return nil
	}
	var opts []editOption

	if len(g.Params) > 0 || g.IsNoise {
		var parts []string
		for _, p := range g.Params {
			parts = append(parts, circuit.FormatParam(p))
		}
		paramStr := strings.Join(parts, ", ")
		if paramStr == "" {
			paramStr = "none"
		}
		opts = append(opts, editOption{label: "Parameters: " + paramStr, action: "edit_param"})
	}

	if !g.IsBarrier() {
		opts = append(opts, editOption{
			label:  "Target: " + m.circuit.QubitName(g.Target),
			action: "edit_target",
		})
	}
	if g.Control >= 0 {
		opts = append(opts, editOption{
			label:   "Control: " + m.circuit.QubitName(g.Control),
			action:  "edit_control",
			ctrlIdx: -1,
		})
	}
	for i, ctrl := range g.Controls {
		opts = append(opts, editOption{
			label:   fmt.Sprintf("Control %d: %s", i+1, m.circuit.QubitName(ctrl)),
			action:  "edit_control",
			ctrlIdx: i,
		})
	}

	return append(opts, editOption{label: "Delete gate", action: "delete"})
}
