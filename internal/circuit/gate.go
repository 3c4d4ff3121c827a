package circuit

import "strings"

// Gate is one instruction placed on the circuit.
type Gate struct {
	Type             string    // upper-case gate type: "H", "CX", "RZ", "MEASURE", ...
	Target           int       // target qubit, -1 for barriers
	Control          int       // -1 if not a controlled gate
	Controls         []int     // control qubits of multi-controlled gates (CCX)
	Step             int       // column in the circuit timeline
	Params           []float64 // angles of parameterized gates
	IsDagger         bool      // adjoint of the base gate (sdg, tdg, sxdg)
	Clbit            int       // classical bit written by MEASURE, -1 otherwise
	ClassicalControl int       // first classical bit of the condition, -1 if unconditional
	ClassicalWidth   int       // number of classical bits compared by the condition
	ClassicalValue   int       // value the condition bits must hold
	IsNoise          bool      // noise annotation, only applied by noisy simulation
	NoiseType        string    // depolarizing, amplitude_damping, phase_damping
}

// gateSpec describes the arity of a supported unitary gate.
type gateSpec struct {
	qubits int
	params int
}

// catalog lists every unitary gate the reader accepts and the simulator
// executes, keyed by Gate.Type.
var catalog = map[string]gateSpec{
	"ID":   {1, 0},
	"H":    {1, 0},
	"X":    {1, 0},
	"Y":    {1, 0},
	"Z":    {1, 0},
	"S":    {1, 0},
	"T":    {1, 0},
	"SX":   {1, 0},
	"RX":   {1, 1},
	"RY":   {1, 1},
	"RZ":   {1, 1},
	"P":    {1, 1},
	"U1":   {1, 1},
	"U2":   {1, 2},
	"U3":   {1, 3},
	"CX":   {2, 0},
	"CY":   {2, 0},
	"CZ":   {2, 0},
	"CH":   {2, 0},
	"SWAP": {2, 0},
	"CRX":  {2, 1},
	"CRY":  {2, 1},
	"CRZ":  {2, 1},
	"CP":   {2, 1},
	"CU1":  {2, 1},
	"CCX":  {3, 0},
}

// aliases maps alternative spellings (QASM 3 stdgates, common names) onto
// catalog entries.
var aliases = map[string]string{
	"I":       "ID",
	"U":       "U3",
	"PHASE":   "P",
	"CNOT":    "CX",
	"CPHASE":  "CP",
	"TOFFOLI": "CCX",
}

// daggerable lists the gates whose adjoint is spelled with a "dg" suffix.
var daggerable = map[string]bool{"S": true, "T": true, "SX": true}

// IsKnownGate reports whether typ is a supported unitary gate type.
func IsKnownGate(typ string) bool {
	_, ok := catalog[typ]
	return ok
}

// resolveGateName maps a QASM gate identifier to a gate type and dagger flag.
func resolveGateName(name string) (typ string, dagger bool, ok bool) {
	typ = strings.ToUpper(name)
	if alias, found := aliases[typ]; found {
		typ = alias
	}
	if _, found := catalog[typ]; found {
		return typ, false, true
	}
	if base, found := strings.CutSuffix(typ, "DG"); found && daggerable[base] {
		return base, true, true
	}
	return "", false, false
}

// Name returns the lower-case instruction name used in QASM output and gate
// counts.
func (g Gate) Name() string {
	switch {
	case g.IsNoise:
		return "noise"
	case g.IsDagger:
		return strings.ToLower(g.Type) + "dg"
	default:
		return strings.ToLower(g.Type)
	}
}

// IsBarrier reports whether the gate is a barrier directive.
func (g Gate) IsBarrier() bool { return g.Type == "BARRIER" }

// IsMeasure reports whether the gate is a measurement.
func (g Gate) IsMeasure() bool { return g.Type == "MEASURE" }

// IsReset reports whether the gate is a reset.
func (g Gate) IsReset() bool { return g.Type == "RESET" }

// IsConditional reports whether the gate only runs when a classical
// condition holds.
func (g Gate) IsConditional() bool { return g.ClassicalControl >= 0 }

// ControlQubits returns the control qubits of a controlled gate, or nil.
// For SWAP it returns the first swapped qubit.
func (g Gate) ControlQubits() []int {
	if len(g.Controls) > 0 {
		return g.Controls
	}
	if g.Control >= 0 {
		return []int{g.Control}
	}
	return nil
}

// Qubits returns the qubits the gate acts on, controls first. Barriers span
// the whole register and return nil.
func (g Gate) Qubits() []int {
	if g.IsBarrier() {
		return nil
	}
	qubits := append([]int{}, g.ControlQubits()...)
	return append(qubits, g.Target)
}

// Clbits returns the classical bits the gate reads or writes.
func (g Gate) Clbits() []int {
	var bits []int
	if g.Clbit >= 0 {
		bits = append(bits, g.Clbit)
	}
	if g.ClassicalControl >= 0 {
		for i := range max(g.ClassicalWidth, 1) {
			bits = append(bits, g.ClassicalControl+i)
		}
	}
	return bits
}

// references reports whether the gate touches the given qubit.
func (g Gate) references(qubit int) bool {
	if g.Target == qubit || g.Control == qubit {
		return true
	}
	for _, ctrl := range g.Controls {
		if ctrl == qubit {
			return true
		}
	}
	return false
}

// span returns the lowest and highest qubit the gate touches.
func (g Gate) span() (lo, hi int) {
	lo, hi = g.Target, g.Target
	for _, q := range g.ControlQubits() {
		lo, hi = min(lo, q), max(hi, q)
	}
	return lo, hi
}

func newGate(typ string, target int) Gate {
	return Gate{
		Type:             typ,
		Target:           target,
		Control:          -1,
		Clbit:            -1,
		ClassicalControl: -1,
	}
}
