package tui

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qviz/internal/circuit"
	"qviz/internal/demo"
	"qviz/internal/visualize"
)

var specialKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"backspace": tea.KeyBackspace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"ctrl+s":    tea.KeyCtrlS,
	"ctrl+r":    tea.KeyCtrlR,
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		if typ, ok := specialKeys[k]; ok {
			msg = tea.KeyMsg{Type: typ}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func newModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	m := New(visualize.New(zerolog.Nop()), demo.EditorQASM, opts...)
	require.Empty(t, m.parseErr)
	require.NotNil(t, m.result)
	return m
}

// atFreeStep moves the cursor to the first empty column on qubit 0.
func atFreeStep(m Model) Model {
	m.cursorStep = m.circuit.MaxSteps
	m.cursorQubit = 0
	return m
}

func TestNewComputesState(t *testing.T) {
	m := newModel(t)

	require.Len(t, m.result.Bloch, 2)
	for _, v := range m.result.Bloch {
		assert.InDelta(t, 0, v.Norm(), 1e-9)
	}
	assert.InDelta(t, 0.5, m.result.Probabilities["00"], 1e-9)
	assert.InDelta(t, 0.5, m.result.Probabilities["11"], 1e-9)
	assert.Contains(t, m.qasmEditor.Value(), "cx q[0], q[1];")
}

func TestNewWithInvalidSource(t *testing.T) {
	m := New(visualize.New(zerolog.Nop()), "OPENQASM 3;\nbogus;\n")
	assert.NotEmpty(t, m.parseErr)
	assert.Equal(t, 4, m.circuit.NumQubits)
	require.NotNil(t, m.result)
	assert.Len(t, m.result.Bloch, 4)
}

func TestReverseToggle(t *testing.T) {
	m := newModel(t)
	assert.Equal(t, []string{"qubit 0", "qubit 1"}, m.result.Labels)

	m = press(t, m, "r")
	assert.True(t, m.reverse)
	assert.Equal(t, []string{"qubit 1", "qubit 0"}, m.result.Labels)

	m = press(t, m, "r")
	assert.Equal(t, []string{"qubit 0", "qubit 1"}, m.result.Labels)
}

func TestPlaceSingleQubitGate(t *testing.T) {
	m := atFreeStep(newModel(t))
	step := m.cursorStep

	m = press(t, m, "a", "enter")
	assert.Equal(t, focusCircuit, m.focus)
	g := m.circuit.GateAt(step, 0)
	require.NotNil(t, g)
	assert.Equal(t, "H", g.Type)
	assert.Equal(t, step+1, m.cursorStep)
	assert.Equal(t, 2, strings.Count(m.qasmEditor.Value(), "h q[0];"))
}

func TestPlaceBlockedByConflict(t *testing.T) {
	m := newModel(t)
	before := len(m.circuit.Gates)

	m = press(t, m, "a", "enter")
	assert.Contains(t, m.statusMsg, "Cannot place")
	assert.Len(t, m.circuit.Gates, before)
	assert.Empty(t, m.pendingGate)
}

func TestPlaceControlledGate(t *testing.T) {
	m := atFreeStep(newModel(t))
	step := m.cursorStep

	m = press(t, m, "a", "right", "right", "enter")
	require.Equal(t, focusSelectTarget, m.focus)
	assert.Equal(t, 1, m.targetQubit)

	m = press(t, m, "enter")
	g := m.circuit.GateAt(step, 1)
	require.NotNil(t, g)
	assert.Equal(t, "CX", g.Type)
	assert.Equal(t, 0, g.Control)
	assert.Equal(t, 1, g.Target)
}

func TestPlaceParameterizedGate(t *testing.T) {
	m := atFreeStep(newModel(t))
	step := m.cursorStep

	m = press(t, m, "a", "right", "enter")
	require.Equal(t, focusInputParam, m.focus)

	m = press(t, m, "p", "i", "/", "2", "enter")
	g := m.circuit.GateAt(step, 0)
	require.NotNil(t, g)
	assert.Equal(t, "RX", g.Type)
	require.Len(t, g.Params, 1)
	assert.InDelta(t, math.Pi/2, g.Params[0], 1e-12)
}

func TestInvalidParameterKeepsPrompt(t *testing.T) {
	m := atFreeStep(newModel(t))
	before := len(m.circuit.Gates)

	m = press(t, m, "a", "right", "enter", "p", "enter")
	assert.Equal(t, focusInputParam, m.focus)
	assert.Contains(t, m.statusMsg, "Invalid parameter")
	assert.Len(t, m.circuit.Gates, before)

	m = press(t, m, "esc")
	assert.Equal(t, focusCircuit, m.focus)
	assert.Empty(t, m.paramInput)
}

func TestMeasureThenConditionalX(t *testing.T) {
	m := atFreeStep(newModel(t))
	step := m.cursorStep

	m = press(t, m, "a", "right", "right", "right", "down", "enter", "enter")
	meas := m.circuit.GateAt(step, 0)
	require.NotNil(t, meas)
	assert.True(t, meas.IsMeasure())
	cond := m.circuit.GateAt(step+1, 1)
	require.NotNil(t, cond)
	assert.Equal(t, "X", cond.Type)
	assert.Equal(t, 0, cond.ClassicalControl)
}

func TestEditGateParameter(t *testing.T) {
	m := atFreeStep(newModel(t))
	step := m.cursorStep
	m = press(t, m, "a", "right", "enter", "1", "enter")
	m.cursorStep = step

	m = press(t, m, "e")
	require.Equal(t, focusEditGate, m.focus)
	opts := m.editOptions()
	require.NotEmpty(t, opts)
	assert.Equal(t, "edit_param", opts[0].action)
	assert.Equal(t, "delete", opts[len(opts)-1].action)

	m = press(t, m, "enter", "p", "i", "enter")
	assert.Equal(t, focusEditGate, m.focus)
	assert.InDelta(t, math.Pi, m.circuit.GateAt(step, 0).Params[0], 1e-12)

	m = press(t, m, "down", "down", "enter")
	assert.Equal(t, focusCircuit, m.focus)
	assert.Nil(t, m.circuit.GateAt(step, 0))
}

func TestDeleteAndReset(t *testing.T) {
	m := newModel(t)
	require.NotNil(t, m.circuit.GateAt(0, 0))

	m = press(t, m, "backspace")
	assert.Nil(t, m.circuit.GateAt(0, 0))

	m = press(t, m, "ctrl+r")
	assert.Empty(t, m.circuit.Gates)
	assert.Equal(t, 0, m.cursorStep)
	assert.InDelta(t, 1, m.result.Probabilities["00"], 1e-12)
}

func TestResizeQubits(t *testing.T) {
	m := newModel(t)

	m = press(t, m, "+")
	assert.Equal(t, 3, m.circuit.NumQubits)
	assert.Len(t, m.result.Bloch, 3)

	m.cursorQubit = 2
	m = press(t, m, "-", "-")
	assert.Equal(t, 1, m.circuit.NumQubits)
	assert.Equal(t, 0, m.cursorQubit)
	for _, g := range m.circuit.Gates {
		assert.NotEqual(t, "CX", g.Type)
	}

	m = press(t, m, "-")
	assert.Equal(t, 1, m.circuit.NumQubits)
}

func TestResizeStopsAtLimit(t *testing.T) {
	m := newModel(t)
	for range circuit.MaxQubits {
		m = press(t, m, "+")
	}
	assert.Equal(t, circuit.MaxQubits, m.circuit.NumQubits)
	assert.Equal(t, fmt.Sprintf("At most %d qubits", circuit.MaxQubits), m.statusMsg)
	assert.Len(t, m.result.Bloch, circuit.MaxQubits)
}

func TestEditorRejectsOversizedProgram(t *testing.T) {
	m := newModel(t)
	good := m.result

	m.qasmEditor.SetValue("OPENQASM 2.0;\nqreg q[64];\nh q[0];\n")
	m.parseQASMInput()
	assert.Contains(t, m.parseErr, "limit is 8")
	assert.Equal(t, 2, m.circuit.NumQubits)
	assert.Same(t, good, m.result)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.qasm")
	m := newModel(t, WithSavePath(path))

	m = press(t, m, "ctrl+s")
	assert.Equal(t, "Saved "+path, m.statusMsg)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.circuit.ToQASM(), string(data))
}

func TestEditorParseErrorKeepsLastResult(t *testing.T) {
	m := newModel(t)
	good := m.result

	m.qasmEditor.SetValue("OPENQASM 3;\nqubit[1] q;\nbogus q[0];\n")
	m.parseQASMInput()
	assert.NotEmpty(t, m.parseErr)
	assert.Equal(t, 2, m.circuit.NumQubits)
	assert.Same(t, good, m.result)

	m.qasmEditor.SetValue("OPENQASM 3;\nqubit[1] q;\nx q[0];\n")
	m.parseQASMInput()
	assert.Empty(t, m.parseErr)
	assert.Equal(t, 1, m.circuit.NumQubits)
	require.Len(t, m.result.Bloch, 1)
	assert.InDelta(t, -1, m.result.Bloch[0].Z(), 1e-12)
}

func TestView(t *testing.T) {
	m := newModel(t)
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m = next.(Model)
	view := m.View()
	for _, want := range []string{"Quantum Circuit", "QASM Editor", "Bloch Vectors", "Probabilities", "qubit 1"} {
		assert.Contains(t, view, want)
	}

	m = press(t, m, "a")
	assert.Contains(t, m.View(), "Add Gate")
}

func TestSpliceLineAt(t *testing.T) {
	assert.Equal(t, "abXYef", spliceLineAt("abcdef", "XY", 2))
	assert.Equal(t, "ab  XY", spliceLineAt("ab", "XY", 4))
	assert.Equal(t, "a\nXY\nc", overlayAt("a\nb\nc", "XY", 0, 1))
}

func TestTopProbabilities(t *testing.T) {
	got := topProbabilities(map[string]float64{"00": 0.25, "01": 0.5, "10": 0.25}, 2)
	assert.Equal(t, []probability{{"01", 0.5}, {"00", 0.25}}, got)
}
